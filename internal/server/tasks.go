package server

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"touchdown/internal/config"
	"touchdown/internal/ports"
	"touchdown/internal/reel"
	"touchdown/internal/store"
	"touchdown/internal/types"
)

// Tasks runs the long pipeline stages off the request path and reports
// progress through the websocket hub and the database.
type Tasks struct {
	store    *store.Store
	hub      *Hub
	video    ports.VideoTool
	asr      ports.Transcriber
	analyzer ports.Analyzer
	dl       ports.Downloader
	creator  *reel.Creator
	cfg      config.Config
	logger   zerolog.Logger
}

func NewTasks(st *store.Store, hub *Hub, video ports.VideoTool, asr ports.Transcriber, analyzer ports.Analyzer, dl ports.Downloader, creator *reel.Creator, cfg config.Config, logger zerolog.Logger) *Tasks {
	return &Tasks{
		store:    st,
		hub:      hub,
		video:    video,
		asr:      asr,
		analyzer: analyzer,
		dl:       dl,
		creator:  creator,
		cfg:      cfg,
		logger:   logger.With().Str("component", "tasks").Logger(),
	}
}

func (t *Tasks) outputDir(videoID string) string {
	return filepath.Join(t.cfg.OutputRoot, videoID)
}

func (t *Tasks) progress(videoID, status string, pct int, message string) {
	if err := t.store.SetStatus(videoID, status, pct); err != nil {
		t.logger.Warn().Err(err).Str("video", videoID).Msg("could not persist status")
	}
	t.hub.NotifyProgress(videoID, status, pct, message)
}

func (t *Tasks) fail(videoID string, err error) {
	t.logger.Error().Err(err).Str("video", videoID).Msg("processing failed")
	if dbErr := t.store.SetFailed(videoID, err.Error()); dbErr != nil {
		t.logger.Warn().Err(dbErr).Msg("could not persist failure")
	}
	t.hub.NotifyError(videoID, err.Error())
}

// ProcessVideo drives a video from pending to completed: acquire, probe,
// transcribe, analyze, persist highlights.
func (t *Tasks) ProcessVideo(ctx context.Context, videoID string) {
	v, err := t.store.GetVideo(videoID)
	if err != nil {
		t.logger.Error().Err(err).Str("video", videoID).Msg("unknown video")
		return
	}

	dir := t.outputDir(videoID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.fail(videoID, fmt.Errorf("create output dir: %w", err))
		return
	}

	t.progress(videoID, store.StatusDownloading, 10, "Downloading video...")
	if v.OriginalURL != "" {
		localPath := filepath.Join(dir, "video.mp4")
		info, err := t.dl.Download(ctx, v.OriginalURL, localPath)
		if err != nil {
			t.fail(videoID, err)
			return
		}
		v.LocalPath = localPath
		if info.Title != "" {
			v.Title = info.Title
		}
		v.Duration = info.Duration
		v.FPS = info.FPS
		v.Width = info.Width
		v.Height = info.Height
	} else {
		// Uploaded file: fill metadata from a probe. Soft policy: an
		// unprobeable upload still proceeds to transcription, which will
		// surface the real failure.
		if d, err := t.video.ProbeDuration(ctx, v.LocalPath); err == nil {
			v.Duration = d
		} else {
			t.logger.Warn().Err(err).Msg("could not probe upload duration")
		}
		if props, err := t.video.Probe(ctx, v.LocalPath); err == nil {
			v.Width = props.Width
			v.Height = props.Height
			v.FPS = props.FrameRate
		} else {
			t.logger.Warn().Err(err).Msg("could not probe upload properties")
		}
	}
	if err := t.store.SaveVideo(v); err != nil {
		t.fail(videoID, err)
		return
	}

	t.progress(videoID, store.StatusTranscribing, 30, "Extracting audio and transcribing...")
	audioPath := filepath.Join(dir, "audio.wav")
	if err := t.video.ExtractAudio(ctx, v.LocalPath, audioPath); err != nil {
		t.fail(videoID, err)
		return
	}
	tr, err := t.asr.Transcribe(ctx, audioPath)
	if removeErr := os.Remove(audioPath); removeErr != nil {
		t.logger.Warn().Err(removeErr).Msg("could not remove audio intermediate")
	}
	if err != nil {
		t.fail(videoID, err)
		return
	}
	if err := t.store.SaveTranscript(videoID, tr); err != nil {
		t.fail(videoID, err)
		return
	}

	t.progress(videoID, store.StatusAnalyzing, 60, "Analyzing for highlights...")
	highlights, err := t.analyzer.Analyze(ctx, tr, t.cfg.MaxHighlights)
	if err != nil {
		t.fail(videoID, err)
		return
	}
	if err := t.store.ReplaceHighlights(videoID, highlights, 10); err != nil {
		t.fail(videoID, err)
		return
	}

	t.progress(videoID, store.StatusCompleted, 100, "Analysis complete")
	t.hub.NotifyCompleted(videoID, len(highlights))
}

// GenerateReel stitches the selected highlights into the final artifact.
// The selection is budgeted: rows are taken in reel order until adding one
// would exceed maxDuration (0 means no budget).
func (t *Tasks) GenerateReel(ctx context.Context, videoID string, highlightIDs []string, maxDuration float64, overwrite bool) types.ReelResult {
	v, err := t.store.GetVideo(videoID)
	if err != nil {
		return types.ReelResult{Success: false, Error: err.Error(), Message: "Video not found"}
	}

	rows, err := t.store.IncludedHighlights(videoID, highlightIDs)
	if err != nil {
		return types.ReelResult{Success: false, Error: err.Error(), Message: "Could not load highlights"}
	}

	selected := make([]store.Highlight, 0, len(rows))
	var total float64
	for _, r := range rows {
		if maxDuration > 0 && total+r.Duration > maxDuration {
			break
		}
		selected = append(selected, r)
		total += r.Duration
	}
	highlights := store.Highlights(selected)

	dir := t.outputDir(videoID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.ReelResult{Success: false, Error: err.Error(), Message: "Could not create output directory"}
	}
	if err := writeClipsJSON(filepath.Join(dir, reel.SourceName), highlights); err != nil {
		return types.ReelResult{Success: false, Error: err.Error(), Message: "Could not persist highlight list"}
	}

	t.hub.NotifyProgress(videoID, store.StatusGenerating, 10, "Creating final highlight...")
	res := t.creator.Create(ctx, highlights, v.LocalPath, dir, overwrite)
	if !res.Success {
		t.hub.NotifyError(videoID, res.Error)
		return res
	}

	// Thumbnail at the midpoint of the best surviving highlight.
	if len(res.Highlights) > 0 {
		best := res.Highlights[0]
		for _, h := range res.Highlights[1:] {
			if h.ImportanceScore > best.ImportanceScore {
				best = h
			}
		}
		at := (best.StartTime + best.EndTime) / 2
		if err := t.video.Thumbnail(ctx, v.LocalPath, at, filepath.Join(dir, "thumbnail.jpg")); err != nil {
			t.logger.Warn().Err(err).Msg("could not generate thumbnail")
		}
	}

	t.hub.NotifyProgress(videoID, store.StatusGenerating, 100, "Highlight reel completed!")
	t.hub.NotifyCompleted(videoID, res.ClipsUsed)
	return res
}

// ExtractClip cuts a single padded highlight for preview or download,
// reusing a previous cut when one exists.
func (t *Tasks) ExtractClip(ctx context.Context, highlightID string) (string, error) {
	h, err := t.store.GetHighlight(highlightID)
	if err != nil {
		return "", err
	}
	v, err := t.store.GetVideo(h.VideoID)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(t.outputDir(h.VideoID), "previews", h.ID+".mp4")
	if _, err := os.Stat(dst); err == nil {
		return dst, nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}

	hl := types.Highlight{
		StartTime:       h.StartTime,
		EndTime:         h.EndTime,
		Description:     h.Description,
		ImportanceScore: h.Score,
		Category:        h.Category,
	}
	if err := t.creator.ExtractHighlightClip(ctx, v.LocalPath, hl, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// writeClipsJSON persists the highlight list that acts as the reel cache's
// source of truth.
func writeClipsJSON(path string, highlights []types.Highlight) error {
	b, err := json.MarshalIndent(highlights, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
