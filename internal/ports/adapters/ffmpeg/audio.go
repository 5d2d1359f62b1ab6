package ffmpeg

import (
	"context"
	"fmt"
)

// ExtractAudio writes a mono 16 kHz wav of src's audio track, the format
// the transcription backends expect.
func (a *Adapter) ExtractAudio(ctx context.Context, src, dst string) error {
	out, err := a.run(ctx,
		"-i", src,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		dst,
	)
	if err != nil {
		return fmt.Errorf("extract audio from %s: %w: %s", src, err, out)
	}
	return nil
}

// Thumbnail writes a single frame of src at the given offset.
func (a *Adapter) Thumbnail(ctx context.Context, src string, atSeconds float64, dst string) error {
	out, err := a.run(ctx,
		"-ss", fmtSeconds(atSeconds),
		"-i", src,
		"-vframes", "1",
		dst,
	)
	if err != nil {
		return fmt.Errorf("thumbnail %s: %w: %s", src, err, out)
	}
	return nil
}
