package trace

import (
	"fmt"
	"time"

	"github.com/joshuapare/memkit/alloc"
)

// Allocator is the surface a replay needs from a heap. *alloc.Heap satisfies
// it; tests may substitute their own.
type Allocator interface {
	Alloc(size int) (alloc.Ref, []byte, error)
	Free(ref alloc.Ref) error
	Realloc(ref alloc.Ref, size int) (alloc.Ref, []byte, error)
	Payload(ref alloc.Ref) ([]byte, error)
}

// checker is probed dynamically so replays can audit heaps that support it
// without forcing every Allocator to.
type checker interface {
	Check(verbose int) error
}

// sizer reports the allocator's backing size, for the utilization figure.
type sizer interface {
	Size() int
}

// RunConfig tunes a replay.
type RunConfig struct {
	// Verify fills every allocated payload with a per-id pattern and checks
	// it on resize and release. A mismatch means two blocks overlapped.
	Verify bool

	// CheckEvery runs the heap's consistency checker after every N ops,
	// when the allocator has one. Zero disables.
	CheckEvery int
}

// DefaultRunConfig is used when Run receives a nil config.
var DefaultRunConfig = RunConfig{Verify: true}

// Result summarizes a completed replay.
type Result struct {
	Ops      int `json:"ops"`
	Allocs   int `json:"allocs"`
	Resizes  int `json:"resizes"`
	Releases int `json:"releases"`

	// PeakPayload is the largest aggregate requested payload live at once.
	PeakPayload int64 `json:"peak_payload"`

	// FinalBytes is the allocator's backing size after the last op, when
	// the allocator reports one.
	FinalBytes int `json:"final_bytes,omitempty"`

	// Utilization is PeakPayload / FinalBytes: how much of the grown region
	// the workload actually needed at its high-water mark.
	Utilization float64 `json:"utilization,omitempty"`

	// LiveAtEnd counts ids the trace never released.
	LiveAtEnd int `json:"live_at_end"`

	Elapsed   time.Duration `json:"elapsed_ns"`
	OpsPerSec float64       `json:"ops_per_sec"`
}

// slot tracks one workload id's outstanding block.
type slot struct {
	ref  alloc.Ref
	size int // requested payload bytes, the extent of the fill pattern
}

// pattern derives the fill byte for a workload id.
func pattern(id int) byte {
	return byte(id*131 + 89)
}

// Run replays a trace against an allocator.
//
// Replay state is keyed by workload id: an alloc of a live id or a resize or
// release of a dead one fails with ErrReplay. With Verify on, payload
// patterns are checked before every resize copy and release, so a block
// handed out twice (overlap) surfaces as ErrCorruption even when the heap's
// own structures look sane.
func Run(h Allocator, tr *Trace, cfg *RunConfig) (*Result, error) {
	if cfg == nil {
		cfg = &DefaultRunConfig
	}

	slots := make([]slot, tr.IDs)
	res := &Result{Ops: len(tr.Ops)}
	var liveBytes, liveIDs int64

	start := time.Now()
	for i, op := range tr.Ops {
		s := &slots[op.ID]

		switch op.Kind {
		case OpAlloc:
			if s.ref != alloc.NullRef {
				return nil, fmt.Errorf("op %d: %w: alloc of live id %d", i, ErrReplay, op.ID)
			}
			ref, buf, err := h.Alloc(op.Size)
			if err != nil {
				return nil, fmt.Errorf("op %d: alloc %d bytes for id %d: %w", i, op.Size, op.ID, err)
			}
			if cfg.Verify {
				fill(buf[:op.Size], pattern(op.ID))
			}
			*s = slot{ref: ref, size: op.Size}
			res.Allocs++
			liveBytes += int64(op.Size)
			liveIDs++

		case OpResize:
			if s.ref == alloc.NullRef {
				return nil, fmt.Errorf("op %d: %w: resize of dead id %d", i, ErrReplay, op.ID)
			}
			ref, buf, err := h.Realloc(s.ref, op.Size)
			if err != nil {
				return nil, fmt.Errorf("op %d: resize id %d to %d bytes: %w", i, op.ID, op.Size, err)
			}
			if cfg.Verify {
				n := s.size
				if op.Size < n {
					n = op.Size
				}
				if off := verify(buf[:n], pattern(op.ID)); off >= 0 {
					return nil, fmt.Errorf("op %d: id %d byte %d: %w", i, op.ID, off, ErrCorruption)
				}
				fill(buf[:op.Size], pattern(op.ID))
			}
			liveBytes += int64(op.Size - s.size)
			*s = slot{ref: ref, size: op.Size}
			res.Resizes++

		case OpRelease:
			if s.ref == alloc.NullRef {
				return nil, fmt.Errorf("op %d: %w: release of dead id %d", i, ErrReplay, op.ID)
			}
			if cfg.Verify {
				buf, err := h.Payload(s.ref)
				if err != nil {
					return nil, fmt.Errorf("op %d: payload of id %d: %w", i, op.ID, err)
				}
				if off := verify(buf[:s.size], pattern(op.ID)); off >= 0 {
					return nil, fmt.Errorf("op %d: id %d byte %d: %w", i, op.ID, off, ErrCorruption)
				}
			}
			if err := h.Free(s.ref); err != nil {
				return nil, fmt.Errorf("op %d: release id %d: %w", i, op.ID, err)
			}
			liveBytes -= int64(s.size)
			*s = slot{}
			res.Releases++
			liveIDs--
		}

		if liveBytes > res.PeakPayload {
			res.PeakPayload = liveBytes
		}
		if cfg.CheckEvery > 0 && (i+1)%cfg.CheckEvery == 0 {
			if c, ok := h.(checker); ok {
				if err := c.Check(0); err != nil {
					return nil, fmt.Errorf("op %d: consistency check: %w", i, err)
				}
			}
		}
	}
	res.Elapsed = time.Since(start)
	res.LiveAtEnd = int(liveIDs)

	if secs := res.Elapsed.Seconds(); secs > 0 {
		res.OpsPerSec = float64(res.Ops) / secs
	}
	if sz, ok := h.(sizer); ok {
		res.FinalBytes = sz.Size()
		if res.FinalBytes > 0 {
			res.Utilization = float64(res.PeakPayload) / float64(res.FinalBytes)
		}
	}
	return res, nil
}

// fill stamps buf with a one-byte rolling pattern.
func fill(buf []byte, seed byte) {
	for i := range buf {
		buf[i] = seed ^ byte(i)
	}
}

// verify returns the first offset where buf deviates from the pattern, or -1.
func verify(buf []byte, seed byte) int {
	for i := range buf {
		if buf[i] != seed^byte(i) {
			return i
		}
	}
	return -1
}
