package alloc

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/dirty"
	"github.com/joshuapare/memkit/region"
)

// newTestHeap returns an initialized heap over an in-memory region with a
// small chunk so growth paths trigger quickly in tests.
func newTestHeap(t testing.TB, cfg *Config) *Heap {
	t.Helper()

	if cfg == nil {
		cfg = &Config{ChunkSize: 4096, MissLimit: 40}
	}
	h := New(region.NewBuf(0), nil, cfg)
	require.NoError(t, h.Init())
	return h
}

// newFileHeap returns an initialized heap over a file-backed region with a
// real dirty tracker, plus the image path for reopening.
func newFileHeap(t testing.TB, cfg *Config) (*Heap, *region.File, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "heap.mem")
	r, err := region.Create(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	if cfg == nil {
		cfg = &Config{ChunkSize: 4096, MissLimit: 40}
	}
	h := New(r, dirty.NewTracker(r), cfg)
	require.NoError(t, h.Init())
	return h, r, path
}

// fillPayload stamps a recognizable per-byte pattern derived from seed.
func fillPayload(buf []byte, seed byte) {
	for i := range buf {
		buf[i] = seed ^ byte(i)
	}
}

// requirePayload verifies a pattern written by fillPayload.
func requirePayload(t testing.TB, buf []byte, seed byte) {
	t.Helper()
	for i := range buf {
		if buf[i] != seed^byte(i) {
			t.Fatalf("payload corrupted at byte %d: got 0x%02X, want 0x%02X",
				i, buf[i], seed^byte(i))
		}
	}
}

// requireHealthy runs the consistency checker and fails the test on any
// violation.
func requireHealthy(t testing.TB, h *Heap) {
	t.Helper()
	require.NoError(t, h.Check(0))
}
