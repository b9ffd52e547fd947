package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	APIPort            string
	BackendAPIKey      string // API key for authenticating requests (empty = no auth, dev mode)
	CorsAllowedOrigins string // Comma-separated allowed origins (empty = *, dev mode)

	// Filesystem
	OutputDir string // Where finished tracks and transcripts land
	ModelsDir string // Piper voice models (.onnx + .onnx.parquet)

	// Text generation backend (OpenAI-compatible, e.g. local llama.cpp server)
	LLMBaseURL        string
	LLMAPIKey         string
	LLMFastModel      string
	LLMReasoningModel string

	// Embeddings backend (OpenAI-compatible /v1/embeddings)
	EmbeddingsBaseURL   string // Defaults to LLMBaseURL
	EmbeddingsModel     string
	EmbeddingDimensions int

	// TTS
	PiperBin  string
	SilenceMs int // Pause inserted after every synthesized line

	// Vector store (optional; audit features disabled when empty)
	DatabaseURL string

	// Run history (optional; /runs returns empty when empty)
	RedisURL string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:             getEnv("API_PORT", "8000"),
		BackendAPIKey:       getEnv("BACKEND_API_KEY", ""),
		CorsAllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", ""),
		OutputDir:           getEnv("OUTPUT_DIR", "outputs"),
		ModelsDir:           getEnv("MODELS_DIR", "models"),
		LLMBaseURL:          getEnv("LLM_BASE_URL", "http://localhost:8080/v1"),
		LLMAPIKey:           getEnv("LLM_API_KEY", "sk-local"),
		LLMFastModel:        getEnv("LLM_FAST_MODEL", "qwen2.5-1.5b-instruct"),
		LLMReasoningModel:   getEnv("LLM_REASONING_MODEL", "llama-3.2-3b-instruct"),
		EmbeddingsBaseURL:   getEnv("EMBEDDINGS_BASE_URL", ""),
		EmbeddingsModel:     getEnv("EMBEDDINGS_MODEL", "all-minilm-l6-v2"),
		EmbeddingDimensions: getEnvInt("EMBEDDING_DIMENSIONS", 384),
		PiperBin:            getEnv("PIPER_BIN", "piper"),
		SilenceMs:           getEnvInt("SILENCE_MS", 500),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RedisURL:            getEnv("REDIS_URL", ""),
	}

	if cfg.EmbeddingsBaseURL == "" {
		cfg.EmbeddingsBaseURL = cfg.LLMBaseURL
	}

	// Validate required fields
	if cfg.LLMBaseURL == "" {
		return nil, fmt.Errorf("LLM_BASE_URL is required")
	}

	if cfg.LLMFastModel == "" || cfg.LLMReasoningModel == "" {
		return nil, fmt.Errorf("LLM_FAST_MODEL and LLM_REASONING_MODEL are required")
	}

	if cfg.OutputDir == "" || cfg.ModelsDir == "" {
		return nil, fmt.Errorf("OUTPUT_DIR and MODELS_DIR are required")
	}

	if cfg.SilenceMs < 0 {
		return nil, fmt.Errorf("SILENCE_MS must not be negative")
	}

	if cfg.EmbeddingDimensions <= 0 {
		return nil, fmt.Errorf("EMBEDDING_DIMENSIONS must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}
