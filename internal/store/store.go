// Package store persists videos, transcripts, and highlight rows in sqlite
// via gorm. It is thin glue around the pipeline: nothing here participates
// in the reel cache contract, which lives on the filesystem.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"touchdown/internal/types"
)

type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the sqlite database and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Video{}, &Highlight{}, &Transcript{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) CreateVideo(v *Video) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Status == "" {
		v.Status = StatusPending
	}
	return s.db.Create(v).Error
}

func (s *Store) GetVideo(id string) (*Video, error) {
	var v Video
	if err := s.db.First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) SaveVideo(v *Video) error {
	return s.db.Save(v).Error
}

func (s *Store) DeleteVideo(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&Highlight{}, "video_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&Transcript{}, "video_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&Video{}, "id = ?", id).Error
	})
}

// SetStatus advances a video's processing state and progress percentage.
func (s *Store) SetStatus(id, status string, progress int) error {
	updates := map[string]any{"status": status, "processing_progress": progress}
	if status == StatusCompleted {
		now := time.Now()
		updates["completed_at"] = &now
	}
	return s.db.Model(&Video{}).Where("id = ?", id).Updates(updates).Error
}

func (s *Store) SetFailed(id, message string) error {
	return s.db.Model(&Video{}).Where("id = ?", id).
		Updates(map[string]any{"status": StatusFailed, "error_message": message}).Error
}

// SaveTranscript stores the timed transcript, replacing any earlier one.
func (s *Store) SaveTranscript(videoID string, tr types.Transcript) error {
	segs, err := json.Marshal(tr.Segments)
	if err != nil {
		return fmt.Errorf("encode segments: %w", err)
	}
	rec := Transcript{
		ID:       uuid.NewString(),
		VideoID:  videoID,
		FullText: tr.Text,
		Segments: string(segs),
		Language: tr.Language,
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&Transcript{}, "video_id = ?", videoID).Error; err != nil {
			return err
		}
		return tx.Create(&rec).Error
	})
}

func (s *Store) GetTranscript(videoID string) (*Transcript, types.Transcript, error) {
	var rec Transcript
	if err := s.db.First(&rec, "video_id = ?", videoID).Error; err != nil {
		return nil, types.Transcript{}, err
	}
	tr := types.Transcript{Text: rec.FullText, Language: rec.Language}
	if err := json.Unmarshal([]byte(rec.Segments), &tr.Segments); err != nil {
		return nil, types.Transcript{}, fmt.Errorf("decode segments: %w", err)
	}
	return &rec, tr, nil
}

// ReplaceHighlights swaps a video's highlight rows for freshly analyzed
// ones, preserving the analyzer's ordering as order_index.
func (s *Store) ReplaceHighlights(videoID string, hs []types.Highlight, includedLimit int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&Highlight{}, "video_id = ?", videoID).Error; err != nil {
			return err
		}
		for i, h := range hs {
			rec := Highlight{
				ID:          uuid.NewString(),
				VideoID:     videoID,
				StartTime:   h.StartTime,
				EndTime:     h.EndTime,
				Duration:    h.Duration(),
				Score:       h.ImportanceScore,
				Category:    h.Category,
				Description: h.Description,
				IsIncluded:  includedLimit <= 0 || i < includedLimit,
				OrderIndex:  i,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListHighlights returns a video's highlights ordered by score descending.
func (s *Store) ListHighlights(videoID string) ([]Highlight, error) {
	var hs []Highlight
	err := s.db.Where("video_id = ?", videoID).Order("score desc").Find(&hs).Error
	return hs, err
}

// IncludedHighlights returns the rows selected for the reel, in reel order,
// optionally restricted to explicit IDs.
func (s *Store) IncludedHighlights(videoID string, ids []string) ([]Highlight, error) {
	q := s.db.Where("video_id = ?", videoID).Order("order_index asc")
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	} else {
		q = q.Where("is_included = ?", true)
	}
	var hs []Highlight
	err := q.Find(&hs).Error
	return hs, err
}

func (s *Store) GetHighlight(id string) (*Highlight, error) {
	var h Highlight
	if err := s.db.First(&h, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *Store) SaveHighlight(h *Highlight) error {
	return s.db.Save(h).Error
}

func (s *Store) DeleteHighlight(id string) error {
	return s.db.Delete(&Highlight{}, "id = ?", id).Error
}

// Reorder applies the given order of highlight IDs as order_index values.
// Unknown IDs are ignored.
func (s *Store) Reorder(videoID string, order []string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for idx, id := range order {
			if err := tx.Model(&Highlight{}).
				Where("id = ? AND video_id = ?", id, videoID).
				Update("order_index", idx).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// AutoSelect greedily includes highlights by descending score until the
// duration budget is exhausted, excluding everything below minScore.
// Returns the selected rows.
func (s *Store) AutoSelect(videoID string, targetDuration, minScore float64) ([]Highlight, error) {
	hs, err := s.ListHighlights(videoID)
	if err != nil {
		return nil, err
	}
	var selected []Highlight
	var total float64
	for i := range hs {
		h := &hs[i]
		include := h.Score >= minScore && total+h.Duration <= targetDuration
		if include {
			total += h.Duration
			selected = append(selected, *h)
		}
		if err := s.db.Model(&Highlight{}).Where("id = ?", h.ID).
			Update("is_included", include).Error; err != nil {
			return nil, err
		}
	}
	return selected, nil
}

// Highlights converts stored rows back to domain highlights, in row order.
func Highlights(rows []Highlight) []types.Highlight {
	out := make([]types.Highlight, 0, len(rows))
	for _, r := range rows {
		out = append(out, types.Highlight{
			StartTime:       r.StartTime,
			EndTime:         r.EndTime,
			Description:     r.Description,
			ImportanceScore: r.Score,
			Category:        r.Category,
		})
	}
	return out
}
