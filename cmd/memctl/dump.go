package main

import (
	"fmt"

	"github.com/bytedance/gopkg/util/xxhash3"
	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/alloc"
	"github.com/joshuapare/memkit/region"
)

var dumpDigest bool

func init() {
	cmd := newDumpCmd()
	cmd.Flags().BoolVar(&dumpDigest, "digest", false, "Print an xxhash3 digest of the raw image")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <image>",
		Short: "Print the block map of a heap image",
		Long: `The dump command lists every block in a heap image in address order:
payload offset, total size, and allocation state.

Example:
  memctl dump heap.mem
  memctl dump heap.mem --digest
  memctl dump heap.mem --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
	return cmd
}

// blockLine is one dumped block for --json output.
type blockLine struct {
	Ref       int  `json:"ref"`
	Size      int  `json:"size"`
	Allocated bool `json:"allocated"`
}

func runDump(args []string) error {
	path := args[0]

	printVerbose("Opening image: %s\n", path)
	r, err := region.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	h, err := alloc.Attach(r, nil, nil)
	if err != nil {
		return err
	}
	blocks, err := h.Blocks()
	if err != nil {
		return err
	}

	var allocated, free, freeBytes int
	lines := make([]blockLine, 0, len(blocks))
	for _, b := range blocks {
		lines = append(lines, blockLine{Ref: int(b.Ref), Size: b.Size, Allocated: b.Allocated})
		if b.Allocated {
			allocated++
		} else {
			free++
			freeBytes += b.Size
		}
	}

	var digest string
	if dumpDigest {
		digest = fmt.Sprintf("%016x", xxhash3.Hash(r.Bytes()))
	}

	if jsonOut {
		result := map[string]interface{}{
			"image":      path,
			"bytes":      r.Size(),
			"allocated":  allocated,
			"free":       free,
			"free_bytes": freeBytes,
			"blocks":     lines,
		}
		if digest != "" {
			result["digest"] = digest
		}
		return printJSON(result)
	}

	printInfo("Heap image: %s (%d bytes)\n", path, r.Size())
	if digest != "" {
		printInfo("digest: %s\n", digest)
	}
	printInfo("\n")
	for _, b := range blocks {
		state := "alloc"
		if !b.Allocated {
			state = "free "
		}
		printInfo("  [0x%06X] size=%-8d %s\n", b.Ref, b.Size, state)
	}
	printInfo("\n%d allocated, %d free (%d free bytes)\n", allocated, free, freeBytes)
	return nil
}
