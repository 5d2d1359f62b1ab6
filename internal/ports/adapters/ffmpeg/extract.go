package ffmpeg

import (
	"context"
	"fmt"
	"os"
)

// ExtractClip stream-copies the [start-buffer, end+buffer] range of src into
// dst. The buffer widens both edges symmetrically (start clamped at zero) so
// the cut does not land exactly on the highlight boundary. No re-encode
// happens here: boundaries are only as precise as the nearest keyframe,
// which is the accepted trade for speed.
//
// The write targets a hidden partial name and is renamed into place, so dst
// either holds a complete clip or does not exist.
func (a *Adapter) ExtractClip(ctx context.Context, src string, start, end float64, dst string, buffer float64) error {
	if end <= start {
		return &ExtractionError{Source: src, Output: fmt.Sprintf("invalid range %v-%v", start, end), Err: errInvalidRange}
	}
	start, end = clipRange(start, end, buffer)

	part := partialPath(dst)
	out, err := a.run(ctx,
		"-ss", fmtSeconds(start),
		"-t", fmtSeconds(end-start),
		"-i", src,
		"-c", "copy",
		part,
	)
	if err != nil {
		os.Remove(part)
		return &ExtractionError{Source: src, Output: out, Err: err}
	}
	if err := os.Rename(part, dst); err != nil {
		os.Remove(part)
		return &ExtractionError{Source: src, Output: "finalize clip", Err: err}
	}
	a.logger.Debug().Str("clip", dst).Float64("start", start).Float64("end", end).Msg("clip extracted")
	return nil
}

// clipRange widens the cut symmetrically by buffer, clamping the start at
// zero. The end may run past the source; ffmpeg stops at EOF.
func clipRange(start, end, buffer float64) (float64, float64) {
	start -= buffer
	if start < 0 {
		start = 0
	}
	return start, end + buffer
}

var errInvalidRange = fmt.Errorf("end must be after start")
