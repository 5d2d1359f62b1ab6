package store

import "time"

// Video processing states, advanced by the background task.
const (
	StatusPending      = "pending"
	StatusDownloading  = "downloading"
	StatusTranscribing = "transcribing"
	StatusAnalyzing    = "analyzing"
	StatusGenerating   = "generating"
	StatusCompleted    = "completed"
	StatusFailed       = "failed"
)

// Video source kinds.
const (
	TypeUpload  = "upload"
	TypeYouTube = "youtube"
	TypeURL     = "url"
)

type Video struct {
	ID                 string `gorm:"primaryKey;size:36"`
	Title              string `gorm:"size:255;not null"`
	OriginalURL        string
	LocalPath          string
	SportType          string `gorm:"size:50"`
	VideoType          string `gorm:"size:20;not null"`
	Status             string `gorm:"size:20;not null;default:pending"`
	ErrorMessage       string
	ProcessingProgress int
	Duration           float64
	FPS                float64
	Width              int
	Height             int
	CreatedAt          time.Time
	UpdatedAt          time.Time
	CompletedAt        *time.Time
}

type Highlight struct {
	ID                string `gorm:"primaryKey;size:36"`
	VideoID           string `gorm:"size:36;not null;index"`
	StartTime         float64 `gorm:"not null"`
	EndTime           float64 `gorm:"not null"`
	Duration          float64 `gorm:"not null"`
	Score             float64 `gorm:"not null"`
	Category          string  `gorm:"size:50"`
	Description       string
	TranscriptSegment string
	IsIncluded        bool `gorm:"default:true"`
	OrderIndex        int  `gorm:"not null"`
}

type Transcript struct {
	ID       string `gorm:"primaryKey;size:36"`
	VideoID  string `gorm:"size:36;not null;index"`
	FullText string `gorm:"not null"`
	Segments string `gorm:"not null"` // JSON-encoded []types.Segment
	Language string `gorm:"size:10;default:en"`
}
