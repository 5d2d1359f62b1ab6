// Package ytdlp acquires remote videos through the yt-dlp binary.
package ytdlp

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"touchdown/internal/types"
)

type Adapter struct {
	bin    string
	logger zerolog.Logger
}

func New(binPath string, logger zerolog.Logger) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &Adapter{bin: binPath, logger: logger.With().Str("component", "ytdlp").Logger()}
}

// infoJSON is the subset of yt-dlp's --print-json output we consume.
type infoJSON struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	FPS      float64 `json:"fps"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
}

// Download fetches url into dst and returns the coarse metadata yt-dlp
// reports. Callers consume only the local file afterwards.
func (a *Adapter) Download(ctx context.Context, url, dst string) (types.SourceInfo, error) {
	a.logger.Info().Str("url", url).Str("dst", dst).Msg("downloading source video")

	cmd := exec.CommandContext(ctx, a.bin,
		"--no-warnings",
		"--no-playlist",
		"--format", "best[ext=mp4]/best",
		"--print-json",
		"-o", dst,
		url,
	)
	out, err := cmd.Output()
	if err != nil {
		diag := ""
		if ee, ok := err.(*exec.ExitError); ok {
			diag = strings.TrimSpace(string(ee.Stderr))
		}
		return types.SourceInfo{}, fmt.Errorf("yt-dlp %s: %w: %s", url, err, diag)
	}

	var info infoJSON
	if err := json.Unmarshal(out, &info); err != nil {
		return types.SourceInfo{}, fmt.Errorf("parse yt-dlp metadata: %w", err)
	}

	src := types.SourceInfo{
		Title:    info.Title,
		Duration: info.Duration,
		FPS:      info.FPS,
		Width:    info.Width,
		Height:   info.Height,
	}
	if src.Title == "" {
		src.Title = "Untitled"
	}
	return src, nil
}
