package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/lessonlab/tutor/internal/catalog"
	"github.com/lessonlab/tutor/internal/chunker"
	"github.com/lessonlab/tutor/internal/config"
	dbRedis "github.com/lessonlab/tutor/internal/db/redis"
	"github.com/lessonlab/tutor/internal/domain"
	"github.com/lessonlab/tutor/internal/loader"
	logpkg "github.com/lessonlab/tutor/internal/logger"
	"github.com/lessonlab/tutor/internal/metrics"
	"github.com/lessonlab/tutor/internal/repository/chunkindex"
	"github.com/lessonlab/tutor/internal/repository/imageindex"
	chiTransport "github.com/lessonlab/tutor/internal/transport/chi"
	openaiTransport "github.com/lessonlab/tutor/internal/transport/openai"
	"github.com/lessonlab/tutor/internal/usecase/answer"
	healthuc "github.com/lessonlab/tutor/internal/usecase/health"
	ingestuc "github.com/lessonlab/tutor/internal/usecase/ingest"
	queryuc "github.com/lessonlab/tutor/internal/usecase/query"
	"github.com/lessonlab/tutor/internal/version"
)

func main() {
	// Optional .env for local development; config YAML expands the vars.
	_ = godotenv.Load()

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

	logger.Info("Starting tutor API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
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

	// Register provider metrics explicitly (no init())
	metrics.RegisterProviderMetrics()

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:     logger,
	})
	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		MaxTokens:   cfg.Generation.MaxTokens,
		Temperature: cfg.Generation.Temp,
		Timeout:     time.Duration(cfg.Generation.TimeoutSec) * time.Second,
		Logger:      logger,
	})
	logger.Info("Providers created",
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.String("generation_model", cfg.Generation.Model),
	)

	chunkRepo := chunkindex.New(store, chunkindex.Config{
		Dimensions:      cfg.Embedding.Dimensions,
		HNSWM:           cfg.Index.HNSWM,
		HNSWEFConstruct: cfg.Index.HNSWEFConstruct,
	})
	imageRepo := imageindex.New(store, imageindex.Config{
		Dimensions:      cfg.Embedding.Dimensions,
		HNSWM:           cfg.Index.HNSWM,
		HNSWEFConstruct: cfg.Index.HNSWEFConstruct,
	})

	if err := chunkRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to create chunk index", zap.Error(err))
	}
	if err := imageRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to create image index", zap.Error(err))
	}

	if cfg.Images.CatalogPath != "" {
		if err := loadImageCatalog(ctx, cfg.Images.CatalogPath, embedder, imageRepo, logger); err != nil {
			logger.Fatal("Failed to load image catalog", zap.Error(err))
		}
	} else {
		logger.Warn("No image catalog configured, chat responses will carry no images")
	}

	split := chunker.New(
		chunker.WithChunkSize(cfg.Ingest.ChunkSize),
		chunker.WithOverlap(cfg.Ingest.ChunkOverlap),
	)
	extract := loader.New(cfg.Ingest.PDFToTextBin)

	ingestSvc := ingestuc.New(
		chunkRepo, extract, split, embedder, cfg.Ingest.UploadDir,
		ingestuc.WithRawStore(store),
	)
	answerSvc := answer.New(generator)
	querySvc := queryuc.New(chunkRepo, imageRepo, answerSvc, embedder)
	healthSvc := healthuc.New(store, embedder, chunkRepo, imageRepo)

	server := chiTransport.NewServer(
		ingestSvc, querySvc, healthSvc,
		cfg.Images.BaseURL,
		int64(cfg.Ingest.MaxUploadMB)<<20,
		logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

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

// loadImageCatalog reads the catalog file, embeds every description in one
// batch, and upserts the records into the image index.
func loadImageCatalog(
	ctx context.Context,
	path string,
	embedder domain.Embedder,
	repo *imageindex.Repo,
	logger *zap.Logger,
) error {
	records, err := catalog.Load(path)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	if len(records) == 0 {
		logger.Warn("Image catalog is empty", zap.String("path", path))
		return nil
	}

	descriptions := make([]string, len(records))
	for i, rec := range records {
		descriptions[i] = rec.Description
	}

	res, err := domain.BatchEmbedAll(ctx, embedder, descriptions)
	if err != nil {
		return fmt.Errorf("embed catalog descriptions: %w", err)
	}

	if err := repo.Upsert(ctx, records, res.Embeddings); err != nil {
		return fmt.Errorf("index catalog: %w", err)
	}

	logger.Info("Image catalog loaded",
		zap.String("path", path),
		zap.Int("images", len(records)),
		zap.Int("tokens", res.TotalTokens),
	)
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
