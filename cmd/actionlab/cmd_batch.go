package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/actionlab/actionlab/internal/analysis"
)

func newBatchCmd(root *rootOptions) *cobra.Command {
	var (
		clip        clipFlags
		parallelism int
		reports     bool
	)
	cmd := &cobra.Command{
		Use:   "batch <clip.json>...",
		Short: "Analyze many clips concurrently and print one JSON line per clip",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := make([]analysis.Input, 0, len(args))
			for _, path := range args {
				in, err := clip.input(path)
				if err != nil {
					return err
				}
				inputs = append(inputs, in)
			}
			if parallelism <= 0 {
				parallelism = root.cfg.Batch.Parallelism
			}

			ctx := cmd.Context()
			rt, err := root.newRuntime(ctx, reports)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			results, err := rt.analyzer.AnalyzeBatch(ctx, inputs, parallelism)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for i, res := range results {
				line := struct {
					Clip string `json:"clip"`
					analysis.Result
				}{Clip: args[i], Result: res}
				if err := enc.Encode(line); err != nil {
					return fmt.Errorf("encode result: %w", err)
				}
			}
			return nil
		},
	}
	clip.register(cmd)
	cmd.Flags().IntVarP(&parallelism, "parallelism", "p", 0, "Concurrent runs (default from config)")
	cmd.Flags().BoolVar(&reports, "report", false, "Deliver a report event per clip to the configured sinks")
	return cmd
}
