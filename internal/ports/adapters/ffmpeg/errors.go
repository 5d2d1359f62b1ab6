package ffmpeg

import "fmt"

// ProbeError reports a file that could not be opened or carries no
// decodable video stream.
type ProbeError struct {
	Path   string
	Output string
	Err    error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v: %s", e.Path, e.Err, e.Output)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// ExtractionError reports a failed clip cut: unreadable source, invalid
// range, or unwritable destination.
type ExtractionError struct {
	Source string
	Output string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract clip from %s: %v: %s", e.Source, e.Err, e.Output)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// NormalizationError reports a failed bumper re-encode.
type NormalizationError struct {
	Input  string
	Output string
	Err    error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize %s: %v: %s", e.Input, e.Err, e.Output)
}

func (e *NormalizationError) Unwrap() error { return e.Err }

// StitchError reports a failed concat pass.
type StitchError struct {
	ListPath string
	Output   string
	Err      error
}

func (e *StitchError) Error() string {
	return fmt.Sprintf("stitch %s: %v: %s", e.ListPath, e.Err, e.Output)
}

func (e *StitchError) Unwrap() error { return e.Err }
