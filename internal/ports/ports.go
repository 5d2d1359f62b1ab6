package ports

import (
	"context"

	"touchdown/internal/types"
)

// VideoTool abstracts the external media binary pair (ffmpeg/ffprobe).
// All methods block on external CPU/IO-bound work; callers run them off
// whatever goroutine serves requests.
type VideoTool interface {
	// Probe returns the properties of the first video stream, or a
	// ProbeError when the file cannot be opened or has no video stream.
	Probe(ctx context.Context, path string) (types.VideoProperties, error)

	// ProbeDuration returns the container duration in seconds. Soft
	// failure policy: callers may treat an error as "duration unknown".
	ProbeDuration(ctx context.Context, path string) (float64, error)

	// ExtractClip stream-copies [start-buffer, end+buffer] of src into dst.
	// The start is clamped at zero. Boundaries land on the nearest keyframe.
	ExtractClip(ctx context.Context, src string, start, end float64, dst string, buffer float64) error

	// Normalize re-encodes in into out, truncated to maxDuration seconds,
	// conformed to target when target properties are known.
	Normalize(ctx context.Context, in string, target types.VideoProperties, maxDuration float64, out string) error

	// Concat stream-copies the entries of a concat-demuxer list file into dst.
	Concat(ctx context.Context, listPath, dst string) error

	// ExtractAudio writes a mono 16 kHz wav of src's audio track.
	ExtractAudio(ctx context.Context, src, dst string) error

	// Thumbnail writes a single frame of src at the given offset.
	Thumbnail(ctx context.Context, src string, atSeconds float64, dst string) error
}

// Transcriber turns an audio file into a timed transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (types.Transcript, error)
}

// Analyzer is the highlight oracle: given a transcript it returns the time
// intervals worth keeping. The pipeline does not care which backend
// implements it, only that start/end pairs are monotonically reasonable.
type Analyzer interface {
	Analyze(ctx context.Context, tr types.Transcript, maxHighlights int) ([]types.Highlight, error)
}

// Downloader fetches a remote video to a local path and reports coarse
// metadata about it.
type Downloader interface {
	Download(ctx context.Context, url, dst string) (types.SourceInfo, error)
}
