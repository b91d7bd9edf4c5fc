// Package trace reads, writes, generates, and replays allocator workload
// traces. A trace is a line-oriented text file: four numeric header lines
// (suggested heap bytes, id count, op count, weight) followed by one
// operation per line, each naming a workload id:
//
//	a <id> <size>    allocate
//	r <id> <size>    resize
//	f <id>           release
//
// Traces compressed with brotli are recognized by a .br path suffix.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
)

// Op kinds, as they appear in the trace text.
const (
	OpAlloc   = 'a'
	OpResize  = 'r'
	OpRelease = 'f'
)

// Op is one workload operation.
type Op struct {
	Kind byte // OpAlloc, OpResize or OpRelease
	ID   int  // workload slot, 0 <= ID < Trace.IDs
	Size int  // payload bytes for alloc/resize, 0 for release
}

// Trace is a parsed workload.
type Trace struct {
	// SuggestedBytes is the header's heap-size hint. Replays may ignore it;
	// generators set it to the peak live payload they produced.
	SuggestedBytes int

	// IDs is the number of workload slots. Every op's ID is below this.
	IDs int

	// Weight is an opaque scoring knob carried through from the header.
	Weight int

	Ops []Op
}

// Parse reads a trace in text form. The header's op count must match the
// number of operation lines; blank lines are ignored.
func Parse(r io.Reader) (*Trace, error) {
	sc := bufio.NewScanner(r)
	lineNo := 0

	next := func() (string, bool) {
		for sc.Scan() {
			lineNo++
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			return line, true
		}
		return "", false
	}

	header := [4]int{}
	for i := range header {
		line, ok := next()
		if !ok {
			return nil, fmt.Errorf("%w: missing header line %d", ErrSyntax, i+1)
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("%w: header line %d: %q is not a number", ErrSyntax, lineNo, line)
		}
		header[i] = n
	}

	if header[1] < 0 || header[2] < 0 {
		return nil, fmt.Errorf("%w: negative header counts", ErrSyntax)
	}
	tr := &Trace{
		SuggestedBytes: header[0],
		IDs:            header[1],
		Weight:         header[3],
		Ops:            make([]Op, 0, header[2]),
	}

	for {
		line, ok := next()
		if !ok {
			break
		}
		op, err := parseOp(line, tr.IDs)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		tr.Ops = append(tr.Ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning trace: %w", err)
	}

	if len(tr.Ops) != header[2] {
		return nil, fmt.Errorf("%w: header promises %d ops, found %d",
			ErrSyntax, header[2], len(tr.Ops))
	}
	return tr, nil
}

// parseOp decodes one operation line and bounds-checks its id.
func parseOp(line string, ids int) (Op, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Op{}, ErrSyntax
	}
	if len(fields[0]) != 1 {
		return Op{}, fmt.Errorf("%w: unknown op %q", ErrSyntax, fields[0])
	}

	op := Op{Kind: fields[0][0]}
	want := 3
	if op.Kind == OpRelease {
		want = 2
	}
	switch op.Kind {
	case OpAlloc, OpResize, OpRelease:
	default:
		return Op{}, fmt.Errorf("%w: unknown op %q", ErrSyntax, fields[0])
	}
	if len(fields) != want {
		return Op{}, fmt.Errorf("%w: op %q takes %d fields", ErrSyntax, fields[0], want)
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil || id < 0 || id >= ids {
		return Op{}, fmt.Errorf("%w: id %q out of range [0,%d)", ErrSyntax, fields[1], ids)
	}
	op.ID = id

	if want == 3 {
		size, err := strconv.Atoi(fields[2])
		if err != nil || size <= 0 {
			return Op{}, fmt.Errorf("%w: size %q must be a positive number", ErrSyntax, fields[2])
		}
		op.Size = size
	}
	return op, nil
}

// Open reads a trace file, transparently decompressing a .br suffix.
func Open(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".br") {
		r = brotli.NewReader(f)
	}
	tr, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tr, nil
}

// Encode writes the trace in its text form. The header's op count is taken
// from len(t.Ops), not from a stored field, so an edited trace stays
// consistent.
func (t *Trace) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%d\n%d\n%d\n", t.SuggestedBytes, t.IDs, len(t.Ops), t.Weight)
	for _, op := range t.Ops {
		switch op.Kind {
		case OpRelease:
			fmt.Fprintf(bw, "%c %d\n", op.Kind, op.ID)
		default:
			fmt.Fprintf(bw, "%c %d %d\n", op.Kind, op.ID, op.Size)
		}
	}
	return bw.Flush()
}

// WriteFile encodes the trace to path, compressing when the path ends in .br.
func (t *Trace) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	var w io.Writer = f
	var bw *brotli.Writer
	if strings.HasSuffix(path, ".br") {
		bw = brotli.NewWriter(f)
		w = bw
	}

	if err := t.Encode(w); err != nil {
		_ = f.Close()
		return err
	}
	if bw != nil {
		if err := bw.Close(); err != nil {
			_ = f.Close()
			return err
		}
	}
	return f.Close()
}
