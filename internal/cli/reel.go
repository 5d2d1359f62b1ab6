package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"touchdown/internal/config"
	"touchdown/internal/logging"
	"touchdown/internal/pipeline"
	"touchdown/internal/types"
)

func reelCommand() *cobra.Command {
	var (
		url        string
		outDir     string
		overwrite  bool
		highlights string
	)

	cmd := &cobra.Command{
		Use:   "reel [input.mp4]",
		Short: "Cut a highlight reel from a local file or a URL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.WithComponent("reel")

			in := pipeline.Input{
				URL:            url,
				OutputDir:      outDir,
				Overwrite:      overwrite,
				HighlightsJSON: highlights,
			}
			if len(args) == 1 {
				abs, err := filepath.Abs(args[0])
				if err != nil {
					return err
				}
				in.LocalPath = abs
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			res, err := pipeline.Run(ctx, config.Load(), in, logger)
			if err != nil {
				return err
			}
			report(cmd, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Download the video from this URL instead of a local file")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (defaults under the configured output root)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Rebuild even when a cached reel exists")
	cmd.Flags().StringVar(&highlights, "highlights", "", "Cut from a saved clips.json instead of analyzing")

	return cmd
}

func report(cmd *cobra.Command, res types.ReelResult) {
	if res.AlreadyExists {
		cmd.Printf("cached reel: %s\n", res.OutputPath)
		return
	}
	cmd.Printf("reel written: %s (%d clips, %.1fs)\n", res.OutputPath, res.ClipsUsed, res.TotalDuration)
}
