// Package reel turns a list of highlight intervals and a source video into
// one stitched highlight file. The pipeline is a strictly sequential state
// machine: cache check, overlap resolution, clip extraction, property probe,
// intro/outro normalization, manifest build, concatenation, cleanup. Every
// exit (cached, fresh, or failed) is a ReelResult value; errors never
// cross the pipeline boundary.
package reel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"touchdown/internal/domain/intervals"
	"touchdown/internal/ports"
	"touchdown/internal/types"
)

// Fixed per-key filenames. Callers and the cache contract both depend on
// this exact layout.
const (
	ArtifactName   = "final_highlight.mp4"
	SourceName     = "clips.json"
	manifestName   = "concat_list.txt"
	clipsDirName   = "temp_clips"
	introName      = "normalized_intro.mp4"
	outroName      = "normalized_outro.mp4"
	lockName       = ".reel.lock"
	singleClipPad  = 5.0
	defaultWorkers = 2
)

// Stage identifies the pipeline state a failure was reported from.
type Stage string

const (
	StageCacheCheck    Stage = "cache_check"
	StageOverlap       Stage = "overlap_resolution"
	StageExtraction    Stage = "clip_extraction"
	StageProbe         Stage = "property_probe"
	StageNormalization Stage = "intro_outro_normalization"
	StageManifest      Stage = "manifest_build"
	StageConcatenate   Stage = "concatenate"
)

// Options tune one Creator. Zero values are usable: no bumpers, default
// bumper cap, two concurrent extractions.
type Options struct {
	IntroPath      string
	OutroPath      string
	BumperSeconds  float64 // max bumper length after normalization
	ExtractWorkers int     // cap on simultaneous ffmpeg extractions
}

// Creator runs the stitching pipeline. One Creator may serve many
// concurrent runs; per-run state lives on the stack and under the run's
// output directory, which is exclusively owned via an advisory lock.
type Creator struct {
	video  ports.VideoTool
	opts   Options
	logger zerolog.Logger
}

func NewCreator(video ports.VideoTool, opts Options, logger zerolog.Logger) *Creator {
	if opts.ExtractWorkers <= 0 {
		opts.ExtractWorkers = defaultWorkers
	}
	if opts.BumperSeconds <= 0 {
		opts.BumperSeconds = 2.0
	}
	return &Creator{
		video:  video,
		opts:   opts,
		logger: logger.With().Str("component", "reel").Logger(),
	}
}

// Create builds output/<key>/final_highlight.mp4 from the given highlights.
// overwrite forces a rebuild even when the cached artifact is valid.
func (c *Creator) Create(ctx context.Context, highlights []types.Highlight, videoPath, outputDir string, overwrite bool) types.ReelResult {
	log := c.logger.With().Str("output_dir", outputDir).Logger()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return failure(StageCacheCheck, err, "Could not create output directory")
	}

	// At most one pipeline run per cache key; a second caller blocks here,
	// then sees the fresh cache instead of re-entering the pipeline.
	lock := flock.New(filepath.Join(outputDir, lockName))
	if _, err := lock.TryLockContext(ctx, 250*time.Millisecond); err != nil {
		return failure(StageCacheCheck, err, "Could not acquire reel lock")
	}
	defer lock.Unlock()

	artifactPath := filepath.Join(outputDir, ArtifactName)
	sourcePath := filepath.Join(outputDir, SourceName)

	if !overwrite && c.cacheValid(artifactPath, sourcePath) {
		return cachedResult(artifactPath, highlights)
	}

	log.Info().Int("highlights", len(highlights)).Msg("creating final highlight")

	// OverlapResolution.
	if err := ctx.Err(); err != nil {
		return failure(StageOverlap, err, "Run cancelled")
	}
	merged := intervals.Merge(highlights)
	log.Info().Int("merged", len(merged)).Msg("overlaps resolved")
	if len(merged) == 0 {
		return failure(StageOverlap, fmt.Errorf("no valid clips to stitch together"), "No highlights available for final video")
	}

	// ClipExtraction.
	if err := ctx.Err(); err != nil {
		return failure(StageExtraction, err, "Run cancelled")
	}
	clipPaths, used := c.extractClips(ctx, log, merged, videoPath, outputDir)
	if len(clipPaths) == 0 {
		return failure(StageExtraction, fmt.Errorf("failed to extract any clips"), "No clips were successfully extracted")
	}

	// PropertyProbe: the first extracted clip stands in for all of them,
	// since they come from the same container.
	if err := ctx.Err(); err != nil {
		return failure(StageProbe, err, "Run cancelled")
	}
	target, err := c.video.Probe(ctx, clipPaths[0])
	if err != nil {
		log.Warn().Err(err).Str("clip", clipPaths[0]).Msg("could not probe clip properties; bumpers keep native size")
		target = types.VideoProperties{}
	}

	// IntroOutroNormalization.
	if err := ctx.Err(); err != nil {
		return failure(StageNormalization, err, "Run cancelled")
	}
	introPath, err := c.normalizeBumper(ctx, c.opts.IntroPath, filepath.Join(outputDir, introName), target)
	if err != nil {
		return failure(StageNormalization, err, "Failed to prepare intro")
	}
	outroPath, err := c.normalizeBumper(ctx, c.opts.OutroPath, filepath.Join(outputDir, outroName), target)
	if err != nil {
		return failure(StageNormalization, err, "Failed to prepare outro")
	}

	// ManifestBuild: intro, main clips in extraction order, outro.
	if err := ctx.Err(); err != nil {
		return failure(StageManifest, err, "Run cancelled")
	}
	entries := make([]string, 0, len(clipPaths)+2)
	if introPath != "" {
		entries = append(entries, introPath)
	}
	entries = append(entries, clipPaths...)
	if outroPath != "" {
		entries = append(entries, outroPath)
	}
	manifestPath := filepath.Join(outputDir, manifestName)
	if err := writeManifest(manifestPath, entries); err != nil {
		return failure(StageManifest, err, "Failed to build concat manifest")
	}

	// Concatenate.
	if err := ctx.Err(); err != nil {
		return failure(StageConcatenate, err, "Run cancelled")
	}
	if err := c.video.Concat(ctx, manifestPath, artifactPath); err != nil {
		return failure(StageConcatenate, err, "Failed to stitch clips together")
	}

	if data, err := os.ReadFile(sourcePath); err == nil {
		if err := WriteFingerprint(artifactPath, data); err != nil {
			log.Warn().Err(err).Msg("could not record cache fingerprint")
		}
	}

	introDur := c.bumperDuration(ctx, introPath)
	outroDur := c.bumperDuration(ctx, outroPath)

	// Cleanup is best-effort; the artifact is already durable.
	c.cleanup(log, outputDir)

	highlightsDur := intervals.TotalDuration(merged)
	log.Info().Int("clips", len(clipPaths)).Float64("duration", highlightsDur+introDur+outroDur).Msg("final highlight created")

	return types.ReelResult{
		Success:            true,
		Message:            "Final highlight created successfully",
		OutputPath:         artifactPath,
		ClipsUsed:          len(clipPaths),
		HighlightsDuration: highlightsDur,
		IntroDuration:      introDur,
		OutroDuration:      outroDur,
		TotalDuration:      highlightsDur + introDur + outroDur,
		Highlights:         used,
	}
}

// ExtractHighlightClip cuts a single padded highlight for preview/download,
// outside the stitching pipeline. The pad softens the keyframe-aligned cut.
func (c *Creator) ExtractHighlightClip(ctx context.Context, videoPath string, h types.Highlight, dst string) error {
	return c.video.ExtractClip(ctx, videoPath, h.StartTime, h.EndTime, dst, singleClipPad)
}

// cacheValid prefers the content fingerprint when one was recorded and
// falls back to the mtime rule. IO failures degrade to a rebuild.
func (c *Creator) cacheValid(artifactPath, sourcePath string) bool {
	if data, err := os.ReadFile(sourcePath); err == nil {
		if ok, present := FingerprintValid(artifactPath, data); present {
			if !ok {
				return false
			}
			if _, err := os.Stat(artifactPath); err == nil {
				return true
			}
			return false
		}
	}
	ok, err := Valid(artifactPath, sourcePath)
	if err != nil {
		c.logger.Warn().Err(err).Msg("cache validity check failed; rebuilding")
		return false
	}
	return ok
}

// extractClips cuts one clip per merged interval with a bounded number of
// concurrent tool invocations. Failed clips are logged and skipped; the
// returned paths and intervals keep merged-interval order regardless of
// completion order.
func (c *Creator) extractClips(ctx context.Context, log zerolog.Logger, merged []types.Highlight, videoPath, outputDir string) ([]string, []types.Highlight) {
	clipsDir := filepath.Join(outputDir, clipsDirName)
	if err := os.MkdirAll(clipsDir, 0o755); err != nil {
		log.Error().Err(err).Msg("could not create clips directory")
		return nil, nil
	}

	results := make([]string, len(merged))
	sem := make(chan struct{}, c.opts.ExtractWorkers)
	var wg sync.WaitGroup
	for i, h := range merged {
		wg.Add(1)
		go func(i int, h types.Highlight) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			name := fmt.Sprintf("clip_%03d_%s-%s.mp4", i, fmtFloat(h.StartTime), fmtFloat(h.EndTime))
			dst := filepath.Join(clipsDir, name)
			// No buffer in the batch path: merged bounds are final.
			if err := c.video.ExtractClip(ctx, videoPath, h.StartTime, h.EndTime, dst, 0); err != nil {
				log.Warn().Err(err).Int("clip", i+1).Msg("clip extraction failed, skipping")
				return
			}
			results[i] = dst
			log.Info().Str("clip", name).Msgf("extracted clip %d/%d", i+1, len(merged))
		}(i, h)
	}
	wg.Wait()

	paths := make([]string, 0, len(merged))
	used := make([]types.Highlight, 0, len(merged))
	for i, p := range results {
		if p != "" {
			paths = append(paths, p)
			used = append(used, merged[i])
		}
	}
	return paths, used
}

// normalizeBumper conforms an intro/outro asset to the target properties.
// A missing asset is not an error; the bumper is simply omitted.
func (c *Creator) normalizeBumper(ctx context.Context, assetPath, dst string, target types.VideoProperties) (string, error) {
	if assetPath == "" {
		return "", nil
	}
	if _, err := os.Stat(assetPath); err != nil {
		return "", nil
	}
	if err := c.video.Normalize(ctx, assetPath, target, c.opts.BumperSeconds, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// bumperDuration probes a normalized bumper, degrading to 0 on failure.
func (c *Creator) bumperDuration(ctx context.Context, path string) float64 {
	if path == "" {
		return 0
	}
	d, err := c.video.ProbeDuration(ctx, path)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("could not probe bumper duration")
		return 0
	}
	return d
}

func (c *Creator) cleanup(log zerolog.Logger, outputDir string) {
	for _, p := range []string{
		filepath.Join(outputDir, clipsDirName),
		filepath.Join(outputDir, manifestName),
		filepath.Join(outputDir, introName),
		filepath.Join(outputDir, outroName),
	} {
		if err := os.RemoveAll(p); err != nil {
			log.Warn().Err(err).Str("path", p).Msg("could not clean up intermediate")
		}
	}
}

func cachedResult(artifactPath string, highlights []types.Highlight) types.ReelResult {
	res := types.ReelResult{
		Success:       true,
		Message:       "Final highlight already exists (cached)",
		OutputPath:    artifactPath,
		AlreadyExists: true,
		ClipsUsed:     len(highlights),
		TotalDuration: intervals.TotalDuration(highlights),
	}
	if info, err := os.Stat(artifactPath); err == nil {
		res.FileSizeBytes = info.Size()
		res.CachedAt = float64(info.ModTime().Unix())
	}
	return res
}

func failure(stage Stage, err error, message string) types.ReelResult {
	return types.ReelResult{
		Success: false,
		Error:   fmt.Sprintf("%s: %v", stage, err),
		Message: message,
	}
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
