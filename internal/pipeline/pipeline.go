// Package pipeline wires the adapters into the one-shot command line run:
// acquire a video, transcribe it, pick highlights, and cut the reel.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"touchdown/internal/config"
	"touchdown/internal/ports"
	"touchdown/internal/ports/adapters/ffmpeg"
	"touchdown/internal/ports/adapters/fixture"
	"touchdown/internal/ports/adapters/openai"
	"touchdown/internal/ports/adapters/whispercpp"
	"touchdown/internal/ports/adapters/ytdlp"
	"touchdown/internal/reel"
	"touchdown/internal/types"
)

type Input struct {
	// Exactly one of LocalPath and URL must be set.
	LocalPath string
	URL       string

	OutputDir string
	Overwrite bool

	// HighlightsJSON skips transcription and analysis and cuts directly
	// from a previously saved clips.json.
	HighlightsJSON string
}

func (in Input) Validate() error {
	if in.LocalPath == "" && in.URL == "" {
		return errors.New("either a local file or a URL is required")
	}
	if in.LocalPath != "" && in.URL != "" {
		return errors.New("local file and URL are mutually exclusive")
	}
	if in.LocalPath != "" {
		if _, err := os.Stat(in.LocalPath); err != nil {
			return fmt.Errorf("stat input: %w", err)
		}
	}
	return nil
}

// Run executes the full pipeline and returns the reel result. The analyzer
// backend is picked from the config: hosted when an API key is present,
// local whisper.cpp plus canned highlights otherwise.
func Run(ctx context.Context, cfg config.Config, in Input, logger zerolog.Logger) (types.ReelResult, error) {
	if err := in.Validate(); err != nil {
		return types.ReelResult{}, err
	}

	video := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath, logger)
	creator := reel.NewCreator(video, reel.Options{
		IntroPath:      cfg.IntroPath,
		OutroPath:      cfg.OutroPath,
		BumperSeconds:  cfg.BumperSeconds,
		ExtractWorkers: cfg.ExtractWorkers,
	}, logger)

	outputDir := in.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(cfg.OutputRoot, runName(in))
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return types.ReelResult{}, err
	}

	videoPath := in.LocalPath
	if in.URL != "" {
		logger.Info().Str("url", in.URL).Msg("downloading")
		dl := ytdlp.New(cfg.YtdlpPath, logger)
		dst := filepath.Join(outputDir, "video.mp4")
		info, err := dl.Download(ctx, in.URL, dst)
		if err != nil {
			return types.ReelResult{}, err
		}
		logger.Info().Str("title", info.Title).Float64("duration", info.Duration).Msg("downloaded")
		videoPath = dst
	}

	highlights, err := loadOrAnalyze(ctx, cfg, in, video, videoPath, outputDir, logger)
	if err != nil {
		return types.ReelResult{}, err
	}

	res := creator.Create(ctx, highlights, videoPath, outputDir, in.Overwrite)
	if !res.Success {
		return res, errors.New(res.Error)
	}
	return res, nil
}

func loadOrAnalyze(ctx context.Context, cfg config.Config, in Input, video ports.VideoTool, videoPath, outputDir string, logger zerolog.Logger) ([]types.Highlight, error) {
	if in.HighlightsJSON != "" {
		b, err := os.ReadFile(in.HighlightsJSON)
		if err != nil {
			return nil, fmt.Errorf("read highlights file: %w", err)
		}
		var hs []types.Highlight
		if err := json.Unmarshal(b, &hs); err != nil {
			return nil, fmt.Errorf("decode highlights file: %w", err)
		}
		return hs, nil
	}

	asr, analyzer := backends(cfg, logger)

	logger.Info().Msg("extracting audio")
	audioPath := filepath.Join(outputDir, "audio.wav")
	if err := video.ExtractAudio(ctx, videoPath, audioPath); err != nil {
		return nil, err
	}
	defer os.Remove(audioPath)

	logger.Info().Msg("transcribing")
	tr, err := asr.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("segments", len(tr.Segments)).Msg("transcript ready")

	logger.Info().Msg("analyzing for highlights")
	highlights, err := analyzer.Analyze(ctx, tr, cfg.MaxHighlights)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("highlights", len(highlights)).Msg("analysis complete")

	// Persist the selection so the reel cache can key off it.
	b, err := json.MarshalIndent(highlights, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode highlights: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, reel.SourceName), b, 0o644); err != nil {
		return nil, err
	}
	return highlights, nil
}

// backends selects the transcriber and analyzer pair. Hosted OpenAI when a
// key is configured; otherwise local whisper.cpp with canned highlights so
// the cutting path stays usable offline.
func backends(cfg config.Config, logger zerolog.Logger) (ports.Transcriber, ports.Analyzer) {
	if cfg.OpenAIAPIKey != "" {
		oa := openai.New(cfg.OpenAIAPIKey, cfg.ChatModel, cfg.WhisperModel, cfg.OpenAIBaseURL)
		return oa, oa
	}
	logger.Warn().Msg("no API key configured, using local transcription and canned highlights")
	return whispercpp.New(cfg.WhisperBin, cfg.WhisperModelPath), fixture.Default()
}

func runName(in Input) string {
	src := in.LocalPath
	if src == "" {
		src = in.URL
	}
	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
	name = strings.Trim(name, "-")
	if name == "" {
		name = "input"
	}
	return name
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.Transcriber = (*whispercpp.Adapter)(nil)
var _ ports.Transcriber = (*openai.Adapter)(nil)
var _ ports.Analyzer = (*openai.Adapter)(nil)
var _ ports.Analyzer = (*fixture.Analyzer)(nil)
var _ ports.Downloader = (*ytdlp.Adapter)(nil)
