package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/actionlab/actionlab/internal/pose"
	"github.com/actionlab/actionlab/internal/poseinfer"
)

func newExtractCmd(root *rootOptions) *cobra.Command {
	var (
		framesDir string
		bundleDir string
		fps       float64
		hand      string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "extract --frames <dir>",
		Short: "Run the pose model over decoded frame images and write a clip file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if framesDir == "" {
				return errors.New("--frames is required")
			}
			paths, err := poseinfer.FramePaths(framesDir)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no frame images in %s", framesDir)
			}

			pcfg := root.cfg.Pose
			if bundleDir != "" {
				pcfg.BundleDir = bundleDir
			}
			est, err := poseinfer.Load(pcfg)
			if err != nil {
				return fmt.Errorf("load pose model: %w", err)
			}
			defer est.Close()

			clip, err := est.Extract(cmd.Context(), paths, fps, hand)
			if err != nil {
				return err
			}
			if output == "" {
				return pose.Encode(cmd.OutOrStdout(), clip)
			}
			fh, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer fh.Close()
			return pose.Encode(fh, clip)
		},
	}
	cmd.Flags().StringVar(&framesDir, "frames", "", "Directory of decoded frame images (png, jpeg, bmp, webp)")
	cmd.Flags().StringVar(&bundleDir, "bundle", "", "Pose model bundle dir (overrides config)")
	cmd.Flags().Float64Var(&fps, "fps", 0, "Frame rate recorded in the clip")
	cmd.Flags().StringVar(&hand, "hand", "", "Bowling hand recorded in the clip")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Clip file to write (default stdout)")
	return cmd
}
