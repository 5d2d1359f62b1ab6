// Package config loads settings from the environment, with .env support
// for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config carries every tunable the binary needs. All fields have working
// defaults except the OpenAI key, which is only required when the hosted
// analyzer/transcriber backend is selected.
type Config struct {
	Host string
	Port int

	DatabasePath string
	OutputRoot   string

	OpenAIAPIKey  string
	ChatModel     string
	WhisperModel  string
	OpenAIBaseURL string

	// Local ASR fallback, used when no API key is set.
	WhisperBin       string
	WhisperModelPath string

	FFmpegPath  string
	FFprobePath string
	YtdlpPath   string

	IntroPath     string
	OutroPath     string
	BumperSeconds float64

	MaxHighlights  int
	ExtractWorkers int
	MaxVideoSizeMB int64
}

// Load reads configuration from the environment. Callers run
// godotenv.Load() first when .env files should participate.
func Load() Config {
	return Config{
		Host: getenv("TOUCHDOWN_HOST", "0.0.0.0"),
		Port: getenvInt("TOUCHDOWN_PORT", 8000),

		DatabasePath: getenv("TOUCHDOWN_DB", "touchdown.db"),
		OutputRoot:   getenv("TOUCHDOWN_OUTPUT_DIR", "output"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		ChatModel:     getenv("OPENAI_CHAT_MODEL", "gpt-4-turbo-preview"),
		WhisperModel:  getenv("OPENAI_WHISPER_MODEL", "whisper-1"),
		OpenAIBaseURL: getenv("OPENAI_BASE_URL", "https://api.openai.com"),

		WhisperBin:       getenv("WHISPER_BIN", ""),
		WhisperModelPath: getenv("WHISPER_MODEL_PATH", ""),

		FFmpegPath:  getenv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath: getenv("FFPROBE_PATH", "ffprobe"),
		YtdlpPath:   getenv("YTDLP_PATH", "yt-dlp"),

		IntroPath:     getenv("TOUCHDOWN_INTRO", ""),
		OutroPath:     getenv("TOUCHDOWN_OUTRO", ""),
		BumperSeconds: getenvFloat("TOUCHDOWN_BUMPER_SECONDS", 2.0),

		MaxHighlights:  getenvInt("TOUCHDOWN_MAX_HIGHLIGHTS", 15),
		ExtractWorkers: getenvInt("TOUCHDOWN_EXTRACT_WORKERS", 2),
		MaxVideoSizeMB: int64(getenvInt("TOUCHDOWN_MAX_VIDEO_SIZE_MB", 500)),
	}
}

// Addr returns the host:port pair the HTTP server binds to.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
