package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/p-n-ai/pai-study/internal/ai"
	"github.com/p-n-ai/pai-study/internal/controller"
	"github.com/p-n-ai/pai-study/internal/course"
	"github.com/p-n-ai/pai-study/internal/export"
	"github.com/p-n-ai/pai-study/internal/generator"
	"github.com/p-n-ai/pai-study/internal/material"
	"github.com/p-n-ai/pai-study/internal/platform/cache"
	"github.com/p-n-ai/pai-study/internal/platform/config"
	"github.com/p-n-ai/pai-study/internal/platform/database"
	"github.com/p-n-ai/pai-study/internal/presenter"
	"github.com/p-n-ai/pai-study/internal/remoteview"
	"github.com/p-n-ai/pai-study/internal/timeline"
	"github.com/p-n-ai/pai-study/internal/usecase"
	"github.com/p-n-ai/pai-study/internal/viewstate"
	"github.com/p-n-ai/pai-study/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Log))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// app holds everything the HTTP layer needs.
type app struct {
	models *viewstate.Models
	ctrl   *controller.Controller
	hub    *remoteview.Hub
	checks map[string]func(context.Context) error
}

func run(ctx context.Context, cfg *config.Config) error {
	checks := map[string]func(context.Context) error{}

	var (
		store course.Store
		tl    timelineStore
	)
	if cfg.Database.URL != "" {
		if err := database.Migrate(cfg.Database.URL); err != nil {
			return err
		}
		db, err := database.Open(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return err
		}
		defer db.Close()
		checks["database"] = db.HealthCheck

		pg, err := course.NewPostgresStore(db.Pool)
		if err != nil {
			return err
		}
		store = pg
		tl = timeline.NewPostgresLogger(db.Pool)
	} else {
		slog.Warn("no database configured, courses are kept in memory")
		store = course.NewMemoryStore()
		tl = timeline.NewMemoryLogger()
	}

	if cfg.CatalogPath != "" {
		courses, err := course.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		n, err := course.Seed(store, courses)
		if err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		slog.Info("catalog seeded", "path", cfg.CatalogPath, "created", n, "found", len(courses))
	}

	reader := material.NewReader(
		material.WithPDFToText(cfg.Materials.PDFToText),
		material.WithMaxChars(cfg.Materials.MaxChars),
	)

	router := newRouter(cfg.AI)
	checks["ai"] = aiCheck(router)

	genCfg := generator.Config{
		Completer: router,
		Reader:    reader,
		Model:     cfg.AI.Model,
		MaxTokens: cfg.AI.MaxTokens,
		Questions: cfg.AI.Questions,
		CacheTTL:  time.Duration(cfg.Cache.TTLHours) * time.Hour,
	}
	if cfg.AI.TokenBudget > 0 {
		genCfg.Budget = ai.NewTokenBudget(cfg.AI.TokenBudget)
	}
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Warn("cache unavailable, generating without it", "error", err)
		} else {
			defer c.Close()
			genCfg.Cache = c
			checks["cache"] = c.HealthCheck
		}
	}
	gen := generator.New(genCfg)

	runner := worker.New(cfg.Worker.QueueSize)
	go runner.Start(ctx)
	defer runner.Stop()

	a := newApp(store, tl, reader, gen, runner, cfg.Server.AllowedOrigins...)
	a.checks = checks
	defer a.hub.Close()

	if cfg.Materials.Watch {
		w, err := material.NewWatcher(store, a.ctrl, 0)
		if err != nil {
			slog.Warn("material watcher disabled", "error", err)
		} else {
			defer w.Close()
			go w.Run(ctx)
		}
	}

	if err := a.ctrl.ShowDashboard(ctx); err != nil {
		slog.Warn("initial dashboard", "error", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      newMux(a),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	return nil
}

// newRouter registers every configured provider in fallback order.
func newRouter(cfg config.AIConfig) *ai.Router {
	router := ai.NewRouter()
	var opts []ai.OpenAIOption
	if cfg.Model != "" {
		opts = append(opts, ai.WithDefaultModel(cfg.Model))
	}

	if cfg.OpenAI.APIKey != "" {
		openaiOpts := opts
		if cfg.OpenAI.BaseURL != "" {
			openaiOpts = append(openaiOpts[:len(openaiOpts):len(openaiOpts)], ai.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		router.Register("openai", ai.NewOpenAIProvider(cfg.OpenAI.APIKey, openaiOpts...))
	}
	if cfg.DeepSeek.APIKey != "" {
		router.Register("deepseek", ai.NewDeepSeekProvider(cfg.DeepSeek.APIKey, opts...))
	}
	if cfg.OpenRouter.APIKey != "" {
		router.Register("openrouter", ai.NewOpenRouterProvider(cfg.OpenRouter.APIKey, opts...))
	}
	if cfg.Ollama.Enabled {
		var ollamaOpts []ai.OllamaOption
		if cfg.Ollama.Model != "" {
			ollamaOpts = append(ollamaOpts, ai.WithOllamaModel(cfg.Ollama.Model))
		}
		router.Register("ollama", ai.NewOllamaProvider(cfg.Ollama.URL, ollamaOpts...))
	}
	return router
}

// aiCheck joins the health errors of every registered provider.
func aiCheck(router *ai.Router) func(context.Context) error {
	return func(ctx context.Context) error {
		results := router.HealthCheck(ctx)
		if len(results) == 0 {
			return errors.New("no AI provider registered")
		}
		names := make([]string, 0, len(results))
		for name := range results {
			names = append(names, name)
		}
		sort.Strings(names)

		var errs []error
		for _, name := range names {
			if err := results[name]; err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
		}
		return errors.Join(errs...)
	}
}

type timelineStore interface {
	timeline.Logger
	timeline.Reader
}

// studyGenerator is the full generator surface the interactors need.
type studyGenerator interface {
	usecase.TestGenerator
	usecase.EvaluationGenerator
	usecase.NotesGenerator
	usecase.FlashcardsGenerator
}

// newApp wires models, presenter, interactors, controller and the view hub.
func newApp(store course.Store, tl timelineStore, reader usecase.MaterialReader, gen studyGenerator, runner *worker.Runner, origins ...string) *app {
	models := viewstate.NewModels()
	pres := presenter.New(models)
	materials := material.NewProvider(store)

	ctrl := controller.New(controller.Config{
		Workspace:  usecase.NewWorkspace(store, pres),
		Dashboard:  usecase.NewDashboard(store, pres),
		MockTest:   usecase.NewMockTest(materials, gen, pres),
		Evaluate:   usecase.NewEvaluate(materials, gen, pres),
		Notes:      usecase.NewLectureNotes(store, gen, tl, pres),
		Flashcards: usecase.NewFlashcards(store, materials, reader, gen, pres),
		Timeline:   usecase.NewTimeline(tl, pres),
		Runner:     runner,
	})

	return &app{
		models: models,
		ctrl:   ctrl,
		hub:    remoteview.NewHub(models, ctrl, origins...),
		checks: map[string]func(context.Context) error{},
	}
}

// newMux creates the HTTP router with the view socket, exports and health checks.
func newMux(a *app) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", a.handleReadyz)
	mux.Handle("GET /ws", a.hub)
	mux.HandleFunc("GET /export/test.xlsx", a.handleExportTest)
	mux.HandleFunc("GET /export/evaluation.xlsx", a.handleExportEvaluation)
	return mux
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *app) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, check := range a.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (a *app) handleExportTest(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.WriteTest(&buf, a.models.Test.Get()); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeXLSX(w, "mock-test.xlsx", buf.Bytes())
}

func (a *app) handleExportEvaluation(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.WriteEvaluation(&buf, a.models.Evaluation.Get()); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeXLSX(w, "evaluation.xlsx", buf.Bytes())
}

func writeXLSX(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
