package types

import "fmt"

// Highlight is one noteworthy time range in a source video, as reported by
// the analysis backend. Instances are treated as immutable: the merger
// builds new values instead of mutating its inputs.
type Highlight struct {
	StartTime       float64 `json:"start_time"`
	EndTime         float64 `json:"end_time"`
	Description     string  `json:"description"`
	ImportanceScore float64 `json:"importance_score,omitempty"`
	Category        string  `json:"category,omitempty"`
}

// Duration returns the highlight length in seconds.
func (h Highlight) Duration() float64 { return h.EndTime - h.StartTime }

// FormatTime renders seconds as MM:SS, or HH:MM:SS past the hour mark.
func FormatTime(seconds float64) string {
	s := int(seconds)
	hours := s / 3600
	minutes := (s % 3600) / 60
	secs := s % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// VideoProperties describes the first video stream of a media file.
// Recomputed per pipeline run, never persisted.
type VideoProperties struct {
	Width       int
	Height      int
	Codec       string
	PixelFormat string
	FrameRate   float64 // frames per second, 0 when unknown
}

// Known reports whether the properties carry usable normalization targets.
func (p VideoProperties) Known() bool {
	return p.Width > 0 && p.Height > 0
}

// SourceInfo is the coarse metadata returned by the acquisition backend.
type SourceInfo struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	FPS      float64 `json:"fps"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
}

// Transcript is the timed text derived from the source audio.
type Transcript struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Language string    `json:"language,omitempty"`
}

// Segment is a single timed span of transcript text.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TotalDuration returns the end of the last segment, or 0 for an empty
// transcript.
func (t Transcript) TotalDuration() float64 {
	if len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].End
}

// ReelResult is the single value every pipeline run terminates with,
// regardless of which stage it reached. Exactly one of the three shapes is
// populated: cached success, fresh success, or failure.
type ReelResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`

	OutputPath string `json:"output_path,omitempty"`
	ClipsUsed  int    `json:"clips_used,omitempty"`

	// Cached-result fields.
	AlreadyExists bool    `json:"already_exists,omitempty"`
	FileSizeBytes int64   `json:"file_size_bytes,omitempty"`
	CachedAt      float64 `json:"cached_at,omitempty"`

	// Duration breakdown, seconds.
	HighlightsDuration float64 `json:"highlights_duration,omitempty"`
	IntroDuration      float64 `json:"intro_duration,omitempty"`
	OutroDuration      float64 `json:"outro_duration,omitempty"`
	TotalDuration      float64 `json:"total_duration,omitempty"`

	Highlights []Highlight `json:"highlights,omitempty"`
}
