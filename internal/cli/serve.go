package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"touchdown/internal/config"
	"touchdown/internal/logging"
	"touchdown/internal/ports"
	"touchdown/internal/ports/adapters/ffmpeg"
	"touchdown/internal/ports/adapters/fixture"
	"touchdown/internal/ports/adapters/openai"
	"touchdown/internal/ports/adapters/whispercpp"
	"touchdown/internal/ports/adapters/ytdlp"
	"touchdown/internal/reel"
	"touchdown/internal/server"
	"touchdown/internal/store"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and websocket server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := logging.WithComponent("serve")

			st, err := store.Open(cfg.DatabasePath)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.OutputRoot, 0o755); err != nil {
				return err
			}

			video := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath, logger)
			creator := reel.NewCreator(video, reel.Options{
				IntroPath:      cfg.IntroPath,
				OutroPath:      cfg.OutroPath,
				BumperSeconds:  cfg.BumperSeconds,
				ExtractWorkers: cfg.ExtractWorkers,
			}, logger)

			var (
				asr      ports.Transcriber
				analyzer ports.Analyzer
			)
			if cfg.OpenAIAPIKey != "" {
				oa := openai.New(cfg.OpenAIAPIKey, cfg.ChatModel, cfg.WhisperModel, cfg.OpenAIBaseURL)
				asr, analyzer = oa, oa
			} else {
				logger.Warn().Msg("no API key configured, using local transcription and canned highlights")
				asr = whispercpp.New(cfg.WhisperBin, cfg.WhisperModelPath)
				analyzer = fixture.Default()
			}

			hub := server.NewHub(logger)
			tasks := server.NewTasks(st, hub, video, asr, analyzer, ytdlp.New(cfg.YtdlpPath, logger), creator, cfg, logger)
			srv := server.New(st, hub, tasks, cfg, logger)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return srv.Run(ctx)
		},
	}
}
