package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Encoder EncoderConfig
	Store   StoreConfig
	Notify  NotifyConfig
	OpenAI  OpenAIConfig
	Gemini  GeminiConfig
	RAG     RAGConfig
}

type EncoderConfig struct {
	URL     string        // face encoding service base URL (default http://localhost:8000)
	Timeout time.Duration // per-request timeout
	MaxSize int           // images larger than this (px) are downscaled before encoding
}

type StoreConfig struct {
	Path         string // JSON encodings file (default data/encodings.json)
	DatabaseURL  string // when set, the PostgreSQL backend is used instead of the file
	MaxOpenConns int
	MaxIdleConns int
}

type NotifyConfig struct {
	IndexerURL       string // RAG engine base URL; events go to <url>/event
	BroadcastURL     string // realtime backend push endpoint
	IndexerTimeout   time.Duration
	BroadcastTimeout time.Duration
}

type OpenAIConfig struct {
	APIKey string
}

type GeminiConfig struct {
	APIKey string
}

type RAGConfig struct {
	DocsDir  string // directory of static documents indexed at startup
	Provider string // chat provider: openai or gemini
}

// envStr reads an environment variable with a default.
func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envSeconds reads an environment variable holding a number of seconds.
func envSeconds(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Encoder: EncoderConfig{
			URL:     envStr("ENCODER_URL", "http://localhost:8000"),
			Timeout: envSeconds("ENCODER_TIMEOUT", 30*time.Second),
			MaxSize: envInt("ENCODER_MAX_IMAGE_SIZE", 1024),
		},
		Store: StoreConfig{
			Path:         envStr("ENCODINGS_FILE", "data/encodings.json"),
			DatabaseURL:  os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Notify: NotifyConfig{
			IndexerURL:       envStr("RAG_SERVICE_URL", "http://localhost:8080"),
			BroadcastURL:     os.Getenv("BROADCAST_URL"),
			IndexerTimeout:   envSeconds("RAG_NOTIFY_TIMEOUT", 5*time.Second),
			BroadcastTimeout: envSeconds("BROADCAST_TIMEOUT", 2*time.Second),
		},
		OpenAI: OpenAIConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		RAG: RAGConfig{
			DocsDir:  envStr("RAG_DOCS_DIR", "docs"),
			Provider: envStr("RAG_PROVIDER", "openai"),
		},
	}
}
