package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/trace"
)

var (
	genOps        int
	genIDs        int
	genMin        int
	genMax        int
	genSeed       int64
	genResizeBias float64
)

func init() {
	cmd := newGenCmd()
	cmd.Flags().IntVar(&genOps, "ops", trace.DefaultGenConfig.Ops, "Operations before the final drain")
	cmd.Flags().IntVar(&genIDs, "ids", trace.DefaultGenConfig.IDs, "Workload slot count")
	cmd.Flags().IntVar(&genMin, "min", trace.DefaultGenConfig.MinSize, "Smallest payload request in bytes")
	cmd.Flags().IntVar(&genMax, "max", trace.DefaultGenConfig.MaxSize, "Largest payload request in bytes")
	cmd.Flags().Int64Var(&genSeed, "seed", trace.DefaultGenConfig.Seed, "Random seed")
	cmd.Flags().Float64Var(&genResizeBias, "resize-bias", trace.DefaultGenConfig.ResizeBias,
		"Probability that touching a live id resizes instead of releases")
	rootCmd.AddCommand(cmd)
}

func newGenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen <out>",
		Short: "Generate a synthetic workload trace",
		Long: `The gen command writes a seeded synthetic trace. The same flags always
produce the same file. An out path ending in .br is brotli-compressed.

Example:
  memctl gen workload.trace
  memctl gen stress.trace.br --ops 500000 --ids 4096 --max 16384 --seed 7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(args)
		},
	}
	return cmd
}

func runGen(args []string) error {
	out := args[0]

	tr := trace.Generate(&trace.GenConfig{
		Ops:        genOps,
		IDs:        genIDs,
		MinSize:    genMin,
		MaxSize:    genMax,
		Seed:       genSeed,
		ResizeBias: genResizeBias,
	})
	if err := tr.WriteFile(out); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"trace":        out,
			"ops":          len(tr.Ops),
			"ids":          tr.IDs,
			"peak_payload": tr.SuggestedBytes,
			"seed":         genSeed,
		})
	}
	printInfo("wrote %s: %d ops over %d ids, peak payload %d bytes\n",
		out, len(tr.Ops), tr.IDs, tr.SuggestedBytes)
	return nil
}
