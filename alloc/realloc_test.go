package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Realloc always moves: allocate new, copy, free old. The returned reference
// therefore never equals the input.
func Test_Realloc_MovesAndCopiesOnGrow(t *testing.T) {
	h := newTestHeap(t, nil)

	ref, buf, err := h.Alloc(100)
	require.NoError(t, err)
	fillPayload(buf, 0xA5)
	oldLen := len(buf)

	newRef, newBuf, err := h.Realloc(ref, 200)
	require.NoError(t, err)
	require.NotEqual(t, ref, newRef)
	require.GreaterOrEqual(t, len(newBuf), 200)

	// The old payload arrives intact; the tail is fresh space.
	requirePayload(t, newBuf[:oldLen], 0xA5)
	requireHealthy(t, h)
}

func Test_Realloc_ShrinkCopiesPrefix(t *testing.T) {
	h := newTestHeap(t, nil)

	ref, buf, err := h.Alloc(200)
	require.NoError(t, err)
	fillPayload(buf, 0x3C)

	newRef, newBuf, err := h.Realloc(ref, 50)
	require.NoError(t, err)
	require.NotEqual(t, ref, newRef)
	require.GreaterOrEqual(t, len(newBuf), 50)
	requirePayload(t, newBuf[:50], 0x3C)
	requireHealthy(t, h)
}

// The old block is released, so an equal-size request can land right back
// on it (it is the most recently freed, hence the list head).
func Test_Realloc_OldBlockReusable(t *testing.T) {
	h := newTestHeap(t, nil)

	a, _, err := h.Alloc(56)
	require.NoError(t, err)
	_, _, err = h.Alloc(56) // fence so the freed block cannot coalesce
	require.NoError(t, err)

	_, _, err = h.Realloc(a, 56)
	require.NoError(t, err)

	reused, _, err := h.Alloc(56)
	require.NoError(t, err)
	require.Equal(t, a, reused)
	requireHealthy(t, h)
}

func Test_Realloc_NullRefActsAsAlloc(t *testing.T) {
	h := newTestHeap(t, nil)

	ref, buf, err := h.Realloc(NullRef, 100)
	require.NoError(t, err)
	require.NotEqual(t, NullRef, ref)
	require.GreaterOrEqual(t, len(buf), 100)
	requireHealthy(t, h)
}

func Test_Realloc_NonPositiveSizeFrees(t *testing.T) {
	h := newTestHeap(t, nil)

	for _, size := range []int{0, -8} {
		ref, _, err := h.Alloc(64)
		require.NoError(t, err)
		_, _, err = h.Alloc(16) // fence
		require.NoError(t, err)

		newRef, buf, err := h.Realloc(ref, size)
		require.NoError(t, err)
		require.Equal(t, NullRef, newRef)
		require.Nil(t, buf)

		_, err = h.Payload(ref)
		require.ErrorIs(t, err, ErrBadRef, "the block must be freed")
	}
	requireHealthy(t, h)
}

func Test_Realloc_BadRef(t *testing.T) {
	h := newTestHeap(t, nil)

	_, _, err := h.Realloc(Ref(13), 32)
	require.ErrorIs(t, err, ErrBadRef)

	ref, _, err := h.Alloc(64)
	require.NoError(t, err)
	_, _, err = h.Alloc(16) // fence
	require.NoError(t, err)
	require.NoError(t, h.Free(ref))

	_, _, err = h.Realloc(ref, 32)
	require.ErrorIs(t, err, ErrBadRef, "a stale reference must be rejected")
}

// A Realloc large enough to grow the region must still copy correctly and
// must leave other blocks' contents untouched.
func Test_Realloc_AcrossRegionGrowth(t *testing.T) {
	h := newTestHeap(t, &Config{ChunkSize: 512, MissLimit: 40})

	ref, buf, err := h.Alloc(120)
	require.NoError(t, err)
	fillPayload(buf, 0x5A)
	oldLen := len(buf)

	bystander, bbuf, err := h.Alloc(120)
	require.NoError(t, err)
	fillPayload(bbuf, 0x77)

	growsBefore := h.Stats().GrowCalls
	_, newBuf, err := h.Realloc(ref, 1000)
	require.NoError(t, err)
	require.Greater(t, h.Stats().GrowCalls, growsBefore)
	requirePayload(t, newBuf[:oldLen], 0x5A)

	bbuf, err = h.Payload(bystander)
	require.NoError(t, err)
	requirePayload(t, bbuf, 0x77)
	requireHealthy(t, h)
}
