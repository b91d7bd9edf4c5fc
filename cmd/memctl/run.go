package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/alloc"
	"github.com/joshuapare/memkit/dirty"
	"github.com/joshuapare/memkit/region"
	"github.com/joshuapare/memkit/trace"
)

var (
	runMaxHeap    int
	runFile       string
	runCheckEvery int
	runNoVerify   bool
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().IntVar(&runMaxHeap, "max-heap", 0, "In-memory heap capacity in bytes (0 = default)")
	cmd.Flags().StringVar(&runFile, "file", "", "Replay against a persisted heap image instead of memory")
	cmd.Flags().IntVar(&runCheckEvery, "check-every", 0, "Run the consistency checker every N ops (0 = off)")
	cmd.Flags().BoolVar(&runNoVerify, "no-verify", false, "Skip payload pattern verification")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <trace>...",
		Short: "Replay workload traces against a heap",
		Long: `The run command replays one or more allocator traces. By default each
trace gets a fresh in-memory heap; with --file all traces run sequentially
against one persisted image, which is committed to disk at the end.

Traces with a .br suffix are decompressed transparently.

Example:
  memctl run workload.trace
  memctl run --check-every 1000 stress1.trace.br stress2.trace.br
  memctl run --file heap.mem --max-heap 67108864 workload.trace
  memctl run workload.trace --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args)
		},
	}
	return cmd
}

// traceReport pairs a trace path with its replay result for --json output.
type traceReport struct {
	Trace  string        `json:"trace"`
	Result *trace.Result `json:"result"`
}

func runRun(args []string) error {
	cfg := &trace.RunConfig{
		Verify:     !runNoVerify,
		CheckEvery: runCheckEvery,
	}

	var (
		fileHeap *alloc.Heap
		fileReg  *region.File
		tracker  *dirty.Tracker
	)
	if runFile != "" {
		var err error
		fileHeap, fileReg, tracker, err = openOrCreateImage(runFile)
		if err != nil {
			return err
		}
		defer fileReg.Close()
	}

	var reports []traceReport
	for _, path := range args {
		printVerbose("Loading trace: %s\n", path)
		tr, err := trace.Open(path)
		if err != nil {
			return err
		}

		h := fileHeap
		if h == nil {
			h = alloc.New(region.NewBuf(runMaxHeap), nil, nil)
		}

		res, err := trace.Run(h, tr, cfg)
		if err != nil {
			printError("replay of %s failed: %v\n", path, err)
			return err
		}
		if err := h.Check(0); err != nil {
			return fmt.Errorf("heap inconsistent after %s: %w", path, err)
		}
		reports = append(reports, traceReport{Trace: path, Result: res})
	}

	if tracker != nil {
		printVerbose("Committing image: %s\n", runFile)
		if err := tracker.Commit(context.Background(), dirty.FlushAuto); err != nil {
			return fmt.Errorf("commit %s: %w", runFile, err)
		}
	}

	if jsonOut {
		return printJSON(reports)
	}
	for _, rep := range reports {
		printInfo("\n%s\n", rep.Trace)
		printInfo("%s", rep.Result.Report())
	}
	return nil
}

// openOrCreateImage attaches to an existing heap image or creates a fresh
// one, wiring a dirty tracker either way.
func openOrCreateImage(path string) (*alloc.Heap, *region.File, *dirty.Tracker, error) {
	if _, err := os.Stat(path); err == nil {
		r, err := region.Open(path)
		if err != nil {
			return nil, nil, nil, err
		}
		dt := dirty.NewTracker(r)
		h, err := alloc.Attach(r, dt, nil)
		if err != nil {
			_ = r.Close()
			return nil, nil, nil, err
		}
		return h, r, dt, nil
	}

	r, err := region.Create(path)
	if err != nil {
		return nil, nil, nil, err
	}
	dt := dirty.NewTracker(r)
	return alloc.New(r, dt, nil), r, dt, nil
}
