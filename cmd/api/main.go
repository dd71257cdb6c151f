package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IshpreetSingh8264/InflowBackend/internal/api/handlers"
	"github.com/IshpreetSingh8264/InflowBackend/internal/api/middleware"
	"github.com/IshpreetSingh8264/InflowBackend/internal/archive"
	"github.com/IshpreetSingh8264/InflowBackend/internal/chat"
	"github.com/IshpreetSingh8264/InflowBackend/internal/config"
	"github.com/IshpreetSingh8264/InflowBackend/internal/extract"
	infraBQ "github.com/IshpreetSingh8264/InflowBackend/internal/infra/bigquery"
	"github.com/IshpreetSingh8264/InflowBackend/internal/llm"
	"github.com/IshpreetSingh8264/InflowBackend/internal/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New()

	ctx := context.Background()

	repo, err := infraBQ.NewRepository(ctx, cfg.GCPProjectID, cfg.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
	}
	defer repo.Close()

	model, err := llm.NewGeminiClient(ctx, cfg.ModelName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create model client")
	}

	var archiver *archive.Archiver
	if cfg.ArchiveBucket != "" {
		archiver, err = archive.New(ctx, cfg.ArchiveBucket, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create archiver")
		}
	} else {
		log.Warn().Msg("No archive bucket configured - raw model replies will not be archived")
	}
	defer archiver.Close()

	// Chat session store with background expiry sweeper.
	store := chat.NewStore(cfg.SessionTimeout, cfg.MaxMessages, log)
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go store.RunSweeper(sweepCtx, cfg.SweepInterval)

	chatService := chat.NewService(store, model, cfg.ModelTimeout, log)
	categorizer := extract.NewCategorizer(model, extract.DefaultTaxonomy, cfg.RetryAttempts, cfg.RetryDelay, log)
	summarizer := extract.NewSummarizer(model, cfg.RetryAttempts, cfg.RetryDelay, log)

	chatHandler := handlers.NewChatHandler(chatService, repo, log)
	insightsHandler := handlers.NewInsightsHandler(repo, categorizer, summarizer, repo, archiver, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/chat/init", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			chatHandler.Init(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/chat/message", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			chatHandler.Message(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/chat/history", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			chatHandler.History(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			chatHandler.Clear(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/insights/categories", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			insightsHandler.Categories(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/insights/summary", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			insightsHandler.Summary(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/insights/runs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			insightsHandler.Runs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", handlers.Health)

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					withAuthExceptHealth(mux),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("model", cfg.ModelName).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// withAuthExceptHealth applies the auth middleware to everything but the
// health probe, which load balancers hit without credentials.
func withAuthExceptHealth(next http.Handler) http.Handler {
	authed := middleware.Auth(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		authed.ServeHTTP(w, r)
	})
}
