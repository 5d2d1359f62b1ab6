package ffmpeg

import (
	"context"
	"fmt"
	"os"

	"touchdown/internal/types"
)

// DefaultBumperSeconds caps intro/outro length so bumpers cannot dominate
// the reel.
const DefaultBumperSeconds = 2.0

// Normalize re-encodes in into out so it can be stream-copy concatenated
// with clips cut from an arbitrary source: truncated to maxDuration seconds,
// H.264 video with a constant frame rate, AAC audio resampled to 44.1 kHz,
// and scaled to the target resolution when the target is known. This is the
// only stage allowed to re-encode; it runs on the small fixed bumpers, never
// on the main clips.
func (a *Adapter) Normalize(ctx context.Context, in string, target types.VideoProperties, maxDuration float64, out string) error {
	if maxDuration <= 0 {
		maxDuration = DefaultBumperSeconds
	}

	args := []string{
		"-i", in,
		"-t", fmtSeconds(maxDuration),
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-ar", "44100",
		"-vsync", "cfr",
	}
	if target.Known() {
		args = append(args, "-vf", fmt.Sprintf("scale=%d:%d", target.Width, target.Height))
	}
	if target.FrameRate > 0 {
		args = append(args, "-r", fmtSeconds(target.FrameRate))
	}

	part := partialPath(out)
	args = append(args, part)
	diag, err := a.run(ctx, args...)
	if err != nil {
		os.Remove(part)
		return &NormalizationError{Input: in, Output: diag, Err: err}
	}
	if err := os.Rename(part, out); err != nil {
		os.Remove(part)
		return &NormalizationError{Input: in, Output: "finalize output", Err: err}
	}
	a.logger.Debug().Str("input", in).Str("output", out).Msg("bumper normalized")
	return nil
}
