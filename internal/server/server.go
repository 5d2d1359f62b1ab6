package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"touchdown/internal/config"
	"touchdown/internal/reel"
	"touchdown/internal/store"
)

// Server exposes the HTTP API over the store, the websocket hub, and the
// background task runner.
type Server struct {
	engine *gin.Engine
	store  *store.Store
	hub    *Hub
	tasks  *Tasks
	cfg    config.Config
	logger zerolog.Logger
}

func New(st *store.Store, hub *Hub, tasks *Tasks, cfg config.Config, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		engine: gin.New(),
		store:  st,
		hub:    hub,
		tasks:  tasks,
		cfg:    cfg,
		logger: logger.With().Str("component", "http").Logger(),
	}
	s.engine.Use(gin.Recovery(), s.requestLog())
	s.routes()
	return s
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("request")
	}
}

func (s *Server) routes() {
	s.engine.GET("/api/health", s.health)
	s.engine.GET("/api/ready", s.ready)
	s.engine.GET("/ws/:client_id", s.websocket)

	api := s.engine.Group("/api")
	{
		api.POST("/videos/upload", s.uploadVideo)
		api.POST("/videos/from-url", s.videoFromURL)
		api.GET("/videos/:id", s.getVideo)
		api.GET("/videos/:id/status", s.videoStatus)
		api.GET("/videos/:id/transcript", s.videoTranscript)
		api.GET("/videos/:id/highlights", s.videoHighlights)
		api.GET("/videos/:id/reel", s.downloadReel)
		api.POST("/videos/:id/generate-reel", s.generateReel)
		api.DELETE("/videos/:id", s.deleteVideo)

		api.PATCH("/highlights/:id", s.updateHighlight)
		api.DELETE("/highlights/:id", s.deleteHighlight)
		api.GET("/highlights/:id/clip", s.downloadHighlightClip)
		api.POST("/highlights/:id/auto-select", s.autoSelect)
		api.POST("/highlights/:id/reorder", s.reorder)
	}
}

// Run serves until the context is cancelled, then drains with a graceful
// shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr(), Handler: s.engine}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info().Str("addr", s.cfg.Addr()).Msg("listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down")
		return srv.Shutdown(context.Background())
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) websocket(c *gin.Context) {
	clientID := c.Param("client_id")
	if clientID == "" {
		clientID = uuid.NewString()
	}
	s.hub.Serve(c.Writer, c.Request, clientID)
}

func (s *Server) uploadVideo(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	if max := s.cfg.MaxVideoSizeMB * 1024 * 1024; max > 0 && file.Size > max {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	title := c.PostForm("title")
	if title == "" {
		title = file.Filename
	}
	v := &store.Video{
		Title:     title,
		VideoType: store.TypeUpload,
		SportType: c.PostForm("sport_type"),
	}
	if err := s.store.CreateVideo(v); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	dst := filepath.Join(s.cfg.OutputRoot, v.ID, "video.mp4")
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := c.SaveUploadedFile(file, dst); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	v.LocalPath = dst
	if err := s.store.SaveVideo(v); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	go s.tasks.ProcessVideo(context.Background(), v.ID)
	c.JSON(http.StatusAccepted, gin.H{"video_id": v.ID, "status": v.Status})
}

func (s *Server) videoFromURL(c *gin.Context) {
	var req struct {
		URL       string `json:"url" binding:"required"`
		Title     string `json:"title"`
		SportType string `json:"sport_type"`
		VideoType string `json:"video_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title == "" {
		req.Title = "Untitled"
	}
	if req.VideoType == "" {
		req.VideoType = store.TypeURL
	}

	v := &store.Video{
		Title:       req.Title,
		OriginalURL: req.URL,
		VideoType:   req.VideoType,
		SportType:   req.SportType,
	}
	if err := s.store.CreateVideo(v); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	go s.tasks.ProcessVideo(context.Background(), v.ID)
	c.JSON(http.StatusAccepted, gin.H{"video_id": v.ID, "status": v.Status})
}

func (s *Server) getVideo(c *gin.Context) {
	v, err := s.store.GetVideo(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) videoStatus(c *gin.Context) {
	v, err := s.store.GetVideo(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"video_id": v.ID,
		"status":   v.Status,
		"progress": v.ProcessingProgress,
		"error":    v.ErrorMessage,
	})
}

func (s *Server) videoTranscript(c *gin.Context) {
	rec, tr, err := s.store.GetTranscript(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transcript not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"video_id": rec.VideoID,
		"text":     tr.Text,
		"language": tr.Language,
		"segments": tr.Segments,
	})
}

func (s *Server) videoHighlights(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.store.GetVideo(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	rows, err := s.store.ListHighlights(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"video_id": id, "highlights": rows})
}

func (s *Server) downloadReel(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.store.GetVideo(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	path := filepath.Join(s.cfg.OutputRoot, id, reel.ArtifactName)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "reel not generated yet"})
		return
	}
	c.FileAttachment(path, "highlight_reel.mp4")
}

func (s *Server) generateReel(c *gin.Context) {
	var req struct {
		HighlightIDs []string `json:"highlight_ids"`
		MaxDuration  float64  `json:"max_duration"`
		Overwrite    bool     `json:"overwrite"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	if _, err := s.store.GetVideo(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}

	res := s.tasks.GenerateReel(c.Request.Context(), id, req.HighlightIDs, req.MaxDuration, req.Overwrite)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, res)
}

func (s *Server) deleteVideo(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.store.GetVideo(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	if err := s.store.DeleteVideo(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := os.RemoveAll(filepath.Join(s.cfg.OutputRoot, id)); err != nil {
		s.logger.Warn().Err(err).Str("video", id).Msg("could not remove output dir")
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (s *Server) updateHighlight(c *gin.Context) {
	h, err := s.store.GetHighlight(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "highlight not found"})
		return
	}

	var req struct {
		StartTime  *float64 `json:"start_time"`
		EndTime    *float64 `json:"end_time"`
		IsIncluded *bool    `json:"is_included"`
		OrderIndex *int     `json:"order_index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.StartTime != nil {
		h.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		h.EndTime = *req.EndTime
	}
	if h.EndTime <= h.StartTime {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
		return
	}
	h.Duration = h.EndTime - h.StartTime
	if req.IsIncluded != nil {
		h.IsIncluded = *req.IsIncluded
	}
	if req.OrderIndex != nil {
		h.OrderIndex = *req.OrderIndex
	}

	if err := s.store.SaveHighlight(h); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h)
}

func (s *Server) downloadHighlightClip(c *gin.Context) {
	path, err := s.tasks.ExtractClip(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "highlight not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

func (s *Server) deleteHighlight(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.store.GetHighlight(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "highlight not found"})
		return
	}
	if err := s.store.DeleteHighlight(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (s *Server) autoSelect(c *gin.Context) {
	var req struct {
		TargetDuration float64 `json:"target_duration"`
		MinScore       float64 `json:"min_score"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TargetDuration <= 0 {
		req.TargetDuration = 120
	}
	if req.MinScore <= 0 {
		req.MinScore = 6.0
	}

	videoID := c.Param("id")
	if _, err := s.store.GetVideo(videoID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	selected, err := s.store.AutoSelect(videoID, req.TargetDuration, req.MinScore)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var total float64
	for _, h := range selected {
		total += h.Duration
	}
	c.JSON(http.StatusOK, gin.H{
		"selected_count": len(selected),
		"total_duration": total,
		"highlights":     selected,
	})
}

func (s *Server) reorder(c *gin.Context) {
	var req struct {
		HighlightIDs []string `json:"highlight_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	videoID := c.Param("id")
	if _, err := s.store.GetVideo(videoID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	if err := s.store.Reorder(videoID, req.HighlightIDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reordered": len(req.HighlightIDs)})
}
