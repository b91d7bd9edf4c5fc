package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/alloc"
	"github.com/joshuapare/memkit/region"
)

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <image>",
		Short: "Audit a heap image with the consistency checker",
		Long: `The check command attaches to a persisted heap image and walks every
structural invariant: signature, sentinels, tag agreement, coalescing, and
free-list integrity. With --verbose it prints the block map and list walk.

Example:
  memctl check heap.mem
  memctl check heap.mem --verbose
  memctl check heap.mem --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args)
		},
	}
	return cmd
}

func runCheck(args []string) error {
	path := args[0]

	printVerbose("Opening image: %s\n", path)
	r, err := region.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	h, err := alloc.Attach(r, nil, nil)
	if err == nil {
		level := 0
		if verbose {
			level = 2
		}
		err = h.Check(level)
	}

	result := map[string]interface{}{
		"image": path,
		"bytes": r.Size(),
		"valid": err == nil,
	}
	if err != nil {
		result["error"] = err.Error()
	}

	if jsonOut {
		if jerr := printJSON(result); jerr != nil {
			return jerr
		}
		return err
	}

	if err != nil {
		printInfo("%s: INVALID\n", path)
		return err
	}
	printInfo("%s: OK (%d bytes)\n", path, r.Size())
	return nil
}
