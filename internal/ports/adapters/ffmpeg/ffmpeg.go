// Package ffmpeg adapts the ffmpeg and ffprobe binaries to the media
// operations the reel pipeline needs: probing, stream-copy clip extraction,
// bumper normalization, concat-demuxer stitching, audio extraction, and
// thumbnails.
package ffmpeg

import (
	"context"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
	logger  zerolog.Logger
}

func New(ffmpegPath, ffprobePath string, logger zerolog.Logger) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{
		ffmpeg:  ffmpegPath,
		ffprobe: ffprobePath,
		logger:  logger.With().Str("component", "ffmpeg").Logger(),
	}
}

// run executes ffmpeg with -y and the given args, returning the combined
// output for error reporting.
func (a *Adapter) run(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-y", "-hide_banner", "-loglevel", "error"}, args...)
	a.logger.Debug().Strs("args", full).Msg("executing ffmpeg")
	cmd := exec.CommandContext(ctx, a.ffmpeg, full...)
	b, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(b)), err
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

// partialPath returns a hidden sibling name with the same extension, so
// ffmpeg still infers the container format and an interrupted write never
// lands on the final name.
func partialPath(dst string) string {
	dir := filepath.Dir(dst)
	base := filepath.Base(dst)
	ext := filepath.Ext(base)
	return filepath.Join(dir, "."+strings.TrimSuffix(base, ext)+".part"+ext)
}
