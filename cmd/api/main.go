package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ljmonteiro/interviewcast/internal/api"
	"github.com/ljmonteiro/interviewcast/internal/audit"
	"github.com/ljmonteiro/interviewcast/internal/config"
	"github.com/ljmonteiro/interviewcast/internal/dialogue"
	"github.com/ljmonteiro/interviewcast/internal/history"
	"github.com/ljmonteiro/interviewcast/internal/interview"
	"github.com/ljmonteiro/interviewcast/internal/services"
	"github.com/ljmonteiro/interviewcast/internal/tts"
	"github.com/ljmonteiro/interviewcast/internal/vectorstore"
)

func main() {
	log.Println("Starting Interviewcast API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Inference backends
	llm := services.NewChatClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMFastModel, cfg.LLMReasoningModel)
	embedder := services.NewEmbeddingsClient(cfg.EmbeddingsBaseURL, cfg.LLMAPIKey, cfg.EmbeddingsModel, cfg.EmbeddingDimensions)
	log.Printf("LLM backend: %s (fast=%s, reasoning=%s)", cfg.LLMBaseURL, cfg.LLMFastModel, cfg.LLMReasoningModel)

	// Vector store is optional; without it the audit endpoints return 503
	// and specialist runs are rejected.
	var (
		store    *vectorstore.Store
		recorder dialogue.AuditStore
		comparer *audit.Comparer
		archive  interview.ConversationStore
	)
	if cfg.DatabaseURL != "" {
		store, err = vectorstore.New(cfg.DatabaseURL, cfg.EmbeddingDimensions)
		if err != nil {
			log.Fatalf("Failed to connect to vector store: %v", err)
		}
		defer store.Close()

		rec := audit.NewRecorder(store, embedder)
		recorder = rec
		archive = rec
		comparer = audit.NewComparer(store, embedder)
	} else {
		log.Println("WARNING: No DATABASE_URL set — audit store disabled")
	}

	// Run history is optional as well.
	var hist *history.Store
	if cfg.RedisURL != "" {
		hist, err = history.New(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to run history: %v", err)
		}
		defer hist.Close()
		log.Println("Connected to Redis run history")
	} else {
		log.Println("No REDIS_URL set — run history disabled")
	}

	// TTS
	catalog := tts.NewCatalog(cfg.ModelsDir)
	synth := tts.NewPiperSynthesizer(cfg.PiperBin)
	defer synth.Close()

	assembler := interview.NewAssembler(synth, catalog, archive, cfg.OutputDir,
		time.Duration(cfg.SilenceMs)*time.Millisecond)

	// Create API handler
	handler := api.NewHandler(llm, recorder, assembler, comparer, store, hist, cfg.OutputDir)
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
		OutputDir:          cfg.OutputDir,
	})

	if cfg.BackendAPIKey != "" {
		log.Println("API key authentication enabled")
	} else {
		log.Println("WARNING: No BACKEND_API_KEY set — API is unprotected (dev mode)")
	}

	// Start HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	go func() {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
