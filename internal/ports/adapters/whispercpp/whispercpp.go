// Package whispercpp transcribes audio with a local whisper.cpp binary,
// the offline alternative to the hosted transcription API.
package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"touchdown/internal/types"
)

type Adapter struct {
	bin   string
	model string
}

func New(binPath, modelPath string) *Adapter {
	return &Adapter{bin: binPath, model: modelPath}
}

// whisperOutput matches the -oj JSON file whisper.cpp writes. Timestamps
// are reported in milliseconds.
type whisperOutput struct {
	Transcription []struct {
		Text    string `json:"text"`
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
	} `json:"transcription"`
}

func (a *Adapter) Transcribe(ctx context.Context, audioPath string) (types.Transcript, error) {
	outPrefix := filepath.Join(filepath.Dir(audioPath), "whisper")
	args := []string{
		"-m", a.model,
		"-f", audioPath,
		"-oj",
		"-of", outPrefix,
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return types.Transcript{}, err
	}

	var out whisperOutput
	if err := json.Unmarshal(jb, &out); err != nil {
		return types.Transcript{}, err
	}

	tr := types.Transcript{Language: "en"}
	var full []string
	for _, seg := range out.Transcription {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		tr.Segments = append(tr.Segments, types.Segment{
			Start: float64(seg.Offsets.From) / 1000.0,
			End:   float64(seg.Offsets.To) / 1000.0,
			Text:  text,
		})
		full = append(full, text)
	}
	tr.Text = strings.Join(full, " ")
	return tr, nil
}
