package trace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Generate_Deterministic(t *testing.T) {
	cfg := &GenConfig{Ops: 1500, IDs: 40, MinSize: 8, MaxSize: 900, Seed: 42, ResizeBias: 0.2}

	require.Equal(t, Generate(cfg), Generate(cfg), "same seed, same trace")

	other := *cfg
	other.Seed = 43
	require.NotEqual(t, Generate(cfg).Ops, Generate(&other).Ops)
}

// Every generated trace must be a valid replay: ids in range, sizes in
// bounds, allocs only of dead ids, resizes/releases only of live ones, and
// nothing live once it ends.
func Test_Generate_ProducesValidWorkload(t *testing.T) {
	cfg := &GenConfig{Ops: 3000, IDs: 25, MinSize: 16, MaxSize: 333, Seed: 5, ResizeBias: 0.4}
	tr := Generate(cfg)

	require.Equal(t, cfg.IDs, tr.IDs)
	require.GreaterOrEqual(t, len(tr.Ops), cfg.Ops)
	require.Positive(t, tr.SuggestedBytes)

	live := make([]bool, tr.IDs)
	for i, op := range tr.Ops {
		require.GreaterOrEqual(t, op.ID, 0, "op %d", i)
		require.Less(t, op.ID, tr.IDs, "op %d", i)

		switch op.Kind {
		case OpAlloc:
			require.False(t, live[op.ID], "op %d allocates a live id", i)
			live[op.ID] = true
		case OpResize:
			require.True(t, live[op.ID], "op %d resizes a dead id", i)
		case OpRelease:
			require.True(t, live[op.ID], "op %d releases a dead id", i)
			live[op.ID] = false
			continue
		default:
			t.Fatalf("op %d has kind %q", i, op.Kind)
		}
		require.GreaterOrEqual(t, op.Size, cfg.MinSize, "op %d", i)
		require.LessOrEqual(t, op.Size, cfg.MaxSize, "op %d", i)
	}

	for id, l := range live {
		require.False(t, l, "id %d still live at end", id)
	}
}

func Test_Generate_NilUsesDefaults(t *testing.T) {
	tr := Generate(nil)

	require.Equal(t, DefaultGenConfig.IDs, tr.IDs)
	require.GreaterOrEqual(t, len(tr.Ops), DefaultGenConfig.Ops)
	require.Equal(t, 1, tr.Weight)
}

func Test_Generate_ClampsDegenerateConfig(t *testing.T) {
	tr := Generate(&GenConfig{Ops: 10, IDs: 0, MinSize: 50, MaxSize: 10, Seed: 1})

	require.Equal(t, 1, tr.IDs)
	for _, op := range tr.Ops {
		if op.Kind != OpRelease {
			require.Equal(t, 50, op.Size, "max below min clamps to min")
		}
	}
}
