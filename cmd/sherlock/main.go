package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/prof-ramos/sherlock/internal/config"
	dbRedis "github.com/prof-ramos/sherlock/internal/db/redis"
	"github.com/prof-ramos/sherlock/internal/domain"
	logpkg "github.com/prof-ramos/sherlock/internal/logger"
	"github.com/prof-ramos/sherlock/internal/metrics"
	"github.com/prof-ramos/sherlock/internal/repository/corpus"
	"github.com/prof-ramos/sherlock/internal/repository/embcache"
	"github.com/prof-ramos/sherlock/internal/transport/httpapi"
	openaiTransport "github.com/prof-ramos/sherlock/internal/transport/openai"
	completionuc "github.com/prof-ramos/sherlock/internal/usecase/completion"
	healthuc "github.com/prof-ramos/sherlock/internal/usecase/health"
	"github.com/prof-ramos/sherlock/internal/usecase/respcache"
	retrievaluc "github.com/prof-ramos/sherlock/internal/usecase/retrieval"
	stalenessuc "github.com/prof-ramos/sherlock/internal/usecase/staleness"
	"github.com/prof-ramos/sherlock/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting sherlock completion server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()

	provider, err := domain.ParseProvider(cfg.Completion.Provider)
	if err != nil {
		logger.Fatal("Invalid completion provider", zap.Error(err))
	}
	genCfg := domain.GenerationConfig{
		Model:       cfg.Completion.Model,
		Provider:    provider,
		Temperature: cfg.Completion.Temperature,
		MaxTokens:   cfg.Completion.MaxTokens,
	}

	// Embedder chain: OpenAI provider wrapped in the store-backed cache.
	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:      cfg.Embedding.APIKey,
		BaseURL:     cfg.Embedding.BaseURL,
		Model:       cfg.Embedding.Model,
		Dimensions:  cfg.Embedding.Dimensions,
		MaxAttempts: cfg.Embedding.MaxAttempts,
		Timeout:     time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:      logger,
	})
	var embedder domain.Embedder = embcache.New(
		baseEmbedder, store, cfg.Corpus.KeyPrefix,
		time.Duration(cfg.Embedding.CacheTTLSec)*time.Second,
		metrics.EmbeddingCacheTotal, logger,
	)
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	corpusRepo := corpus.New(store, cfg.Corpus.KeyPrefix)

	retriever := retrievaluc.New(embedder, corpusRepo, retrievaluc.Config{
		TopK:            cfg.Retrieval.TopK,
		OverfetchFactor: cfg.Retrieval.OverfetchFactor,
	}, logger)

	cache := respcache.New(cfg.Cache.MaxSize, time.Duration(cfg.Cache.TTLSec)*time.Second)

	generator := openaiTransport.NewCompletionClient(&openaiTransport.CompletionConfig{
		APIKey:  cfg.Completion.APIKey,
		BaseURL: cfg.Completion.BaseURL,
		Timeout: time.Duration(cfg.Completion.TimeoutSec) * time.Second,
		Logger:  logger,
	})

	persona := completionuc.Persona{
		Name:         cfg.Persona.Name,
		Instructions: cfg.Persona.Instructions,
		Examples:     personaExamples(cfg.Persona),
	}

	orchestrator := completionuc.New(retriever, generator, cache, persona, genCfg, logger)

	convLog := httpapi.NewConversationLog()
	coordinator := stalenessuc.New(
		convLog, time.Duration(cfg.Debounce.WindowSec)*time.Second, logger,
	)
	dispatcher := httpapi.NewLogDispatcher(convLog, cfg.Persona.Name, logger)

	healthSvc := healthuc.New().
		Register("database", store.Ping).
		Register("embedding", baseEmbedder.HealthCheck)

	server := httpapi.NewServer(
		orchestrator, coordinator, cache, dispatcher, convLog, healthSvc, logger,
	)

	r := chi.NewRouter()
	r.Use(httpapi.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(httpapi.WideEvent(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// personaExamples converts configured example conversations into turns.
// Turns authored under the persona name become assistant turns.
func personaExamples(p config.PersonaConfig) [][]domain.Turn {
	examples := make([][]domain.Turn, 0, len(p.ExampleConversations))
	for _, conv := range p.ExampleConversations {
		turns := make([]domain.Turn, 0, len(conv.Turns))
		for _, t := range conv.Turns {
			role := domain.RoleUser
			if t.User == p.Name {
				role = domain.RoleAssistant
			}
			turns = append(turns, domain.Turn{Role: role, Author: t.User, Text: t.Text})
		}
		examples = append(examples, turns)
	}
	return examples
}
