package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strconv"
	"strings"

	"touchdown/internal/types"
)

// probeResult matches the ffprobe JSON output structure.
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		PixFmt     string `json:"pix_fmt"`
		RFrameRate string `json:"r_frame_rate"`
		Duration   string `json:"duration"`
	} `json:"streams"`
}

func (a *Adapter) inspect(ctx context.Context, path string) (probeResult, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return probeResult{}, &ProbeError{Path: path, Output: strings.TrimSpace(string(b)), Err: err}
	}
	var res probeResult
	if err := json.Unmarshal(b, &res); err != nil {
		return probeResult{}, &ProbeError{Path: path, Output: "unparseable ffprobe output", Err: err}
	}
	return res, nil
}

// Probe returns the properties of the first video stream in the file.
func (a *Adapter) Probe(ctx context.Context, path string) (types.VideoProperties, error) {
	res, err := a.inspect(ctx, path)
	if err != nil {
		return types.VideoProperties{}, err
	}
	for _, s := range res.Streams {
		if s.CodecType != "video" {
			continue
		}
		return types.VideoProperties{
			Width:       s.Width,
			Height:      s.Height,
			Codec:       s.CodecName,
			PixelFormat: s.PixFmt,
			FrameRate:   parseFrameRate(s.RFrameRate),
		}, nil
	}
	return types.VideoProperties{}, &ProbeError{Path: path, Output: "no video stream", Err: errors.New("no video stream")}
}

// ProbeDuration returns the container duration in seconds, falling back to
// the first stream duration when the container does not report one.
func (a *Adapter) ProbeDuration(ctx context.Context, path string) (float64, error) {
	res, err := a.inspect(ctx, path)
	if err != nil {
		return 0, err
	}
	if d, err := strconv.ParseFloat(res.Format.Duration, 64); err == nil && d > 0 {
		return d, nil
	}
	for _, s := range res.Streams {
		if d, err := strconv.ParseFloat(s.Duration, 64); err == nil && d > 0 {
			return d, nil
		}
	}
	return 0, &ProbeError{Path: path, Output: "no duration reported", Err: errors.New("no duration")}
}

// parseFrameRate converts an ffprobe rational such as "30000/1001" to
// frames per second, returning 0 on any malformed input.
func parseFrameRate(r string) float64 {
	num, den, ok := strings.Cut(r, "/")
	if !ok {
		f, _ := strconv.ParseFloat(r, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
