package reel

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"touchdown/internal/types"
)

// fakeVideoTool satisfies ports.VideoTool with filesystem side effects only.
type fakeVideoTool struct {
	mu           sync.Mutex
	extractCalls int
	concatCalls  int
	lastBuffer   float64
	failStarts   map[float64]bool
	probeErr     error
}

func (f *fakeVideoTool) Probe(ctx context.Context, path string) (types.VideoProperties, error) {
	if f.probeErr != nil {
		return types.VideoProperties{}, f.probeErr
	}
	return types.VideoProperties{Width: 1920, Height: 1080, Codec: "h264", FrameRate: 30}, nil
}

func (f *fakeVideoTool) ProbeDuration(ctx context.Context, path string) (float64, error) {
	return 2.0, nil
}

func (f *fakeVideoTool) ExtractClip(ctx context.Context, src string, start, end float64, dst string, buffer float64) error {
	f.mu.Lock()
	f.extractCalls++
	f.lastBuffer = buffer
	fail := f.failStarts[start]
	f.mu.Unlock()
	if fail {
		return os.ErrInvalid
	}
	return os.WriteFile(dst, []byte("clip"), 0o644)
}

func (f *fakeVideoTool) Normalize(ctx context.Context, in string, target types.VideoProperties, maxDuration float64, out string) error {
	return os.WriteFile(out, []byte("bumper"), 0o644)
}

func (f *fakeVideoTool) Concat(ctx context.Context, listPath, dst string) error {
	f.mu.Lock()
	f.concatCalls++
	f.mu.Unlock()
	if _, err := os.Stat(listPath); err != nil {
		return err
	}
	return os.WriteFile(dst, []byte("reel"), 0o644)
}

func (f *fakeVideoTool) ExtractAudio(ctx context.Context, src, dst string) error {
	return os.WriteFile(dst, []byte("wav"), 0o644)
}

func (f *fakeVideoTool) Thumbnail(ctx context.Context, src string, atSeconds float64, dst string) error {
	return os.WriteFile(dst, []byte("jpg"), 0o644)
}

func newTestCreator(tool *fakeVideoTool, opts Options) *Creator {
	return NewCreator(tool, opts, zerolog.Nop())
}

func writeSource(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, SourceName)
	if err := os.WriteFile(path, []byte(`[{"start_time":0,"end_time":8}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCreate_EndToEndAndCache(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeSource(t, dir)

	tool := &fakeVideoTool{}
	c := newTestCreator(tool, Options{})

	highlights := []types.Highlight{
		{StartTime: 0, EndTime: 5, Description: "a"},
		{StartTime: 3, EndTime: 8, Description: "b"},
		{StartTime: 20, EndTime: 25, Description: "c"},
	}

	res := c.Create(context.Background(), highlights, "/src/video.mp4", dir, false)
	if !res.Success {
		t.Fatalf("create failed: %s / %s", res.Error, res.Message)
	}
	if res.ClipsUsed != 2 {
		t.Fatalf("expected 2 clips after merging, got %d", res.ClipsUsed)
	}
	if res.HighlightsDuration != 13 {
		t.Fatalf("expected 13s of highlights, got %v", res.HighlightsDuration)
	}
	if res.TotalDuration != 13 {
		t.Fatalf("no bumpers configured, total should equal highlights: %v", res.TotalDuration)
	}
	if len(res.Highlights) != 2 || res.Highlights[0].Description != "a | b" {
		t.Fatalf("merged highlight metadata wrong: %v", res.Highlights)
	}
	if _, err := os.Stat(res.OutputPath); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}

	// Intermediates are cleaned up.
	if _, err := os.Stat(filepath.Join(dir, clipsDirName)); !os.IsNotExist(err) {
		t.Fatalf("temp clips dir not cleaned: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, manifestName)); !os.IsNotExist(err) {
		t.Fatalf("manifest not cleaned: %v", err)
	}

	// Second run hits the cache without touching the tool again.
	before := tool.extractCalls
	res2 := c.Create(context.Background(), highlights, "/src/video.mp4", dir, false)
	if !res2.Success || !res2.AlreadyExists {
		t.Fatalf("expected cached result, got %+v", res2)
	}
	if tool.extractCalls != before {
		t.Fatalf("cached run invoked extraction")
	}

	// overwrite forces a rebuild.
	res3 := c.Create(context.Background(), highlights, "/src/video.mp4", dir, true)
	if !res3.Success || res3.AlreadyExists {
		t.Fatalf("overwrite did not rebuild: %+v", res3)
	}
	if tool.extractCalls == before {
		t.Fatalf("overwrite run did not extract")
	}
}

func TestCreate_EmptyHighlightsAborts(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	c := newTestCreator(&fakeVideoTool{}, Options{})

	res := c.Create(context.Background(), nil, "/src/video.mp4", dir, false)
	if res.Success {
		t.Fatalf("expected failure for empty input")
	}
	if !strings.Contains(res.Error, string(StageOverlap)) {
		t.Fatalf("failure should name the stage: %q", res.Error)
	}
	if res.Message == "" {
		t.Fatalf("failure should carry a message")
	}
}

func TestCreate_SkipsFailedClips(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeSource(t, dir)

	tool := &fakeVideoTool{failStarts: map[float64]bool{0: true}}
	c := newTestCreator(tool, Options{})

	highlights := []types.Highlight{
		{StartTime: 0, EndTime: 5, Description: "bad"},
		{StartTime: 10, EndTime: 15, Description: "good"},
	}
	res := c.Create(context.Background(), highlights, "/src/video.mp4", dir, false)
	if !res.Success {
		t.Fatalf("one failed clip should not abort the run: %s", res.Error)
	}
	if res.ClipsUsed != 1 {
		t.Fatalf("expected 1 surviving clip, got %d", res.ClipsUsed)
	}
	if res.Highlights[0].Description != "good" {
		t.Fatalf("wrong surviving clip: %v", res.Highlights)
	}
}

func TestCreate_AllClipsFailAborts(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeSource(t, dir)

	tool := &fakeVideoTool{failStarts: map[float64]bool{0: true, 10: true}}
	c := newTestCreator(tool, Options{})

	highlights := []types.Highlight{
		{StartTime: 0, EndTime: 5},
		{StartTime: 10, EndTime: 15},
	}
	res := c.Create(context.Background(), highlights, "/src/video.mp4", dir, false)
	if res.Success {
		t.Fatalf("expected abort when no clip survives")
	}
	if !strings.Contains(res.Error, string(StageExtraction)) {
		t.Fatalf("failure should name extraction stage: %q", res.Error)
	}
}

func TestCreate_WithBumpers(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeSource(t, dir)

	intro := filepath.Join(dir, "intro-asset.mp4")
	outro := filepath.Join(dir, "outro-asset.mp4")
	for _, p := range []string{intro, outro} {
		if err := os.WriteFile(p, []byte("asset"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tool := &fakeVideoTool{}
	c := newTestCreator(tool, Options{IntroPath: intro, OutroPath: outro})

	res := c.Create(context.Background(), []types.Highlight{{StartTime: 0, EndTime: 8}}, "/src/video.mp4", dir, false)
	if !res.Success {
		t.Fatalf("create failed: %s", res.Error)
	}
	if res.IntroDuration != 2 || res.OutroDuration != 2 {
		t.Fatalf("bumper durations wrong: %v / %v", res.IntroDuration, res.OutroDuration)
	}
	if res.TotalDuration != 12 {
		t.Fatalf("expected 8+2+2 total, got %v", res.TotalDuration)
	}
	// Normalized bumpers are intermediates and must be cleaned up.
	if _, err := os.Stat(filepath.Join(dir, introName)); !os.IsNotExist(err) {
		t.Fatalf("normalized intro not cleaned")
	}
}

func TestCreate_MissingBumperAssetIsNotAnError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeSource(t, dir)

	c := newTestCreator(&fakeVideoTool{}, Options{IntroPath: filepath.Join(dir, "nope.mp4")})
	res := c.Create(context.Background(), []types.Highlight{{StartTime: 0, EndTime: 8}}, "/src/video.mp4", dir, false)
	if !res.Success {
		t.Fatalf("absent bumper asset aborted the run: %s", res.Error)
	}
	if res.IntroDuration != 0 {
		t.Fatalf("absent bumper should contribute no duration")
	}
}

func TestCreate_ProbeFailureDegrades(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeSource(t, dir)

	tool := &fakeVideoTool{probeErr: os.ErrPermission}
	c := newTestCreator(tool, Options{})

	res := c.Create(context.Background(), []types.Highlight{{StartTime: 0, EndTime: 8}}, "/src/video.mp4", dir, false)
	if !res.Success {
		t.Fatalf("probe failure should degrade, not abort: %s", res.Error)
	}
}

func TestExtractHighlightClip_PadsTheCut(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	tool := &fakeVideoTool{}
	c := newTestCreator(tool, Options{})

	dst := filepath.Join(dir, "preview.mp4")
	h := types.Highlight{StartTime: 30, EndTime: 42, Description: "breakaway"}
	if err := c.ExtractHighlightClip(context.Background(), "/src/video.mp4", h, dst); err != nil {
		t.Fatalf("extract: %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("preview clip missing: %v", err)
	}
	if tool.lastBuffer != singleClipPad {
		t.Fatalf("buffer = %v, want %v", tool.lastBuffer, singleClipPad)
	}
}

func TestCreate_Cancelled(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestCreator(&fakeVideoTool{}, Options{})
	res := c.Create(ctx, []types.Highlight{{StartTime: 0, EndTime: 8}}, "/src/video.mp4", dir, false)
	if res.Success {
		t.Fatalf("cancelled run must fail")
	}
}
