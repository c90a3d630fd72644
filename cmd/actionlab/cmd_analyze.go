package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/actionlab/actionlab/internal/analysis"
	"github.com/actionlab/actionlab/internal/pose"
)

type clipFlags struct {
	hand string
	fps  float64
}

func (f *clipFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.hand, "hand", "", "Bowling hand R or L (overrides the clip)")
	cmd.Flags().Float64Var(&f.fps, "fps", 0, "Frame rate (overrides the clip; default from config when unset)")
}

// input loads a clip file and applies flag overrides.
func (f *clipFlags) input(path string) (analysis.Input, error) {
	clip, err := pose.LoadFile(path)
	if err != nil {
		return analysis.Input{}, err
	}
	in := analysis.Input{Frames: clip.Frames, Hand: clip.Hand, FPS: clip.FPS, Meta: map[string]string{"clip": path}}
	if f.hand != "" {
		in.Hand = f.hand
	}
	if f.fps > 0 {
		in.FPS = f.fps
	}
	return in, nil
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	var (
		clip    clipFlags
		output  string
		reports bool
		compact bool
	)
	cmd := &cobra.Command{
		Use:   "analyze <clip.json>",
		Short: "Analyze one delivery clip and print the result JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := clip.input(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			rt, err := root.newRuntime(ctx, reports)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			res := rt.analyzer.Analyze(ctx, in)
			return writeJSON(cmd.OutOrStdout(), output, res, !compact)
		},
	}
	clip.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the result to a file instead of stdout")
	cmd.Flags().BoolVar(&reports, "report", false, "Deliver a report event to the configured sinks")
	cmd.Flags().BoolVar(&compact, "compact", false, "Single-line JSON")
	return cmd
}

func writeJSON(stdout io.Writer, path string, v any, indent bool) error {
	w := stdout
	if path != "" {
		fh, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer fh.Close()
		w = fh
	}
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
