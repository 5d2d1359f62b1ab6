package ffmpeg

import (
	"context"
	"os"
)

// Concat stream-copies the entries of a concat-demuxer list file into dst.
// Cheap by construction: every listed input was either cut from the same
// source or already normalized, so no re-encode is needed.
func (a *Adapter) Concat(ctx context.Context, listPath, dst string) error {
	part := partialPath(dst)
	out, err := a.run(ctx,
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		part,
	)
	if err != nil {
		os.Remove(part)
		return &StitchError{ListPath: listPath, Output: out, Err: err}
	}
	if err := os.Rename(part, dst); err != nil {
		os.Remove(part)
		return &StitchError{ListPath: listPath, Output: "finalize output", Err: err}
	}
	a.logger.Info().Str("output", dst).Msg("clips stitched")
	return nil
}
