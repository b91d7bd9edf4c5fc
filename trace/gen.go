package trace

import (
	"math/rand"
	"sort"
)

// GenConfig tunes Generate.
type GenConfig struct {
	Ops  int // operations before the final drain
	IDs  int // workload slots; bounds the live set
	Seed int64

	MinSize int // smallest payload request
	MaxSize int // largest payload request

	// ResizeBias is the probability that an op touching a live id resizes
	// it instead of releasing it.
	ResizeBias float64
}

// DefaultGenConfig is used when Generate receives a nil config.
var DefaultGenConfig = GenConfig{
	Ops:        10_000,
	IDs:        512,
	Seed:       1,
	MinSize:    16,
	MaxSize:    4096,
	ResizeBias: 0.25,
}

// Generate builds a synthetic workload: a random walk that allocates while
// the live set has room, resizes and releases live ids per ResizeBias, and
// finally drains everything so the trace round-trips to an empty heap. The
// same config always yields the same trace.
func Generate(cfg *GenConfig) *Trace {
	if cfg == nil {
		cfg = &DefaultGenConfig
	}
	c := *cfg
	if c.IDs < 1 {
		c.IDs = 1
	}
	if c.MinSize < 1 {
		c.MinSize = 1
	}
	if c.MaxSize < c.MinSize {
		c.MaxSize = c.MinSize
	}

	rng := rand.New(rand.NewSource(c.Seed))
	size := func() int { return c.MinSize + rng.Intn(c.MaxSize-c.MinSize+1) }

	dead := make([]int, c.IDs)
	for i := range dead {
		dead[i] = c.IDs - 1 - i // pop order 0, 1, 2, ...
	}
	var live []int
	sizeOf := make([]int, c.IDs)

	var liveBytes, peak int
	tr := &Trace{IDs: c.IDs, Weight: 1, Ops: make([]Op, 0, c.Ops+c.IDs)}

	allocOne := func() {
		id := dead[len(dead)-1]
		dead = dead[:len(dead)-1]
		live = append(live, id)
		sizeOf[id] = size()
		tr.Ops = append(tr.Ops, Op{Kind: OpAlloc, ID: id, Size: sizeOf[id]})
		liveBytes += sizeOf[id]
	}
	releaseAt := func(idx int) {
		id := live[idx]
		live[idx] = live[len(live)-1]
		live = live[:len(live)-1]
		dead = append(dead, id)
		tr.Ops = append(tr.Ops, Op{Kind: OpRelease, ID: id})
		liveBytes -= sizeOf[id]
	}
	resizeAt := func(idx int) {
		id := live[idx]
		liveBytes -= sizeOf[id]
		sizeOf[id] = size()
		tr.Ops = append(tr.Ops, Op{Kind: OpResize, ID: id, Size: sizeOf[id]})
		liveBytes += sizeOf[id]
	}

	for len(tr.Ops) < c.Ops {
		switch {
		case len(live) == 0:
			allocOne()
		case len(dead) == 0 || rng.Float64() >= 0.5:
			idx := rng.Intn(len(live))
			if rng.Float64() < c.ResizeBias {
				resizeAt(idx)
			} else {
				releaseAt(idx)
			}
		default:
			allocOne()
		}
		if liveBytes > peak {
			peak = liveBytes
		}
	}

	// Drain deterministically so a replay ends on an empty heap.
	sort.Ints(live)
	for _, id := range live {
		tr.Ops = append(tr.Ops, Op{Kind: OpRelease, ID: id})
	}

	tr.SuggestedBytes = peak
	return tr
}
