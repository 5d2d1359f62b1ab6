package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"touchdown/internal/types"
)

// Transcribe uploads the audio file to the Whisper endpoint and returns a
// timed transcript.
func (a *Adapter) Transcribe(ctx context.Context, audioPath string) (types.Transcript, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return types.Transcript{}, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return types.Transcript{}, fmt.Errorf("buffer audio: %w", err)
	}
	if err := w.WriteField("model", a.asrModel); err != nil {
		return types.Transcript{}, err
	}
	if err := w.WriteField("response_format", "verbose_json"); err != nil {
		return types.Transcript{}, err
	}
	if err := w.Close(); err != nil {
		return types.Transcript{}, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, transcribeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, a.baseURL+"/v1/audio/transcriptions", &buf)
	if err != nil {
		return types.Transcript{}, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+a.key)

	resp, err := a.client.Do(req)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return types.Transcript{}, fmt.Errorf("transcription: status %d: %s", resp.StatusCode, truncate(string(rb), 400))
	}

	var out struct {
		Text     string `json:"text"`
		Language string `json:"language"`
		Segments []struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Text  string  `json:"text"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(rb, &out); err != nil {
		return types.Transcript{}, fmt.Errorf("decode transcription: %w", err)
	}

	tr := types.Transcript{Text: out.Text, Language: out.Language}
	for _, s := range out.Segments {
		tr.Segments = append(tr.Segments, types.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}
	return tr, nil
}
