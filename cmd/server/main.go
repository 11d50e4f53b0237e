package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"examforge/internal/api"
	"examforge/internal/config"
	"examforge/internal/diagram"
	"examforge/internal/layout"
	"examforge/internal/llm"
	"examforge/internal/logger"
	"examforge/internal/services"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	client := buildClient(cfg, zl)

	history := services.NewHistoryService(cfg.HistoryPath, zl)
	curriculum, err := services.NewCurriculumService(cfg.CurriculumPath)
	if err != nil {
		zl.Fatal("init curriculum", "error", err)
	}

	var diagrams *diagram.Service
	if cfg.DiagramsEnabled {
		diagrams, err = diagram.NewService(client, diagram.Options{
			Workers:   cfg.DiagramWorkers,
			HintsPath: cfg.DiagramHints,
			FontPath:  cfg.FontPath,
		}, zl)
		if err != nil {
			zl.Fatal("init diagram service", "error", err)
		}
	}

	server := api.NewServer(api.Deps{
		Generator:  services.NewGeneratorService(client, history, zl),
		Renderer:   layout.NewRenderer(cfg.FontPath, zl),
		Diagrams:   diagrams,
		Curriculum: curriculum,
		History:    history,
		Reference:  services.NewReferenceService(),
		Client:     client,
		Log:        zl,
	})

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     server.Handler(),
		ReadTimeout: 15 * time.Second,
		// Generation walks a model fallback chain and may render
		// several figures; give the response window room.
		WriteTimeout: 180 * time.Second,
	}

	zl.Info("listening", "port", cfg.Port, "diagrams", cfg.DiagramsEnabled)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zl.Fatal("server failed", "error", err)
	}
}

// buildClient picks the provider: an explicit LLM_PROVIDER wins,
// otherwise whichever key is set, preferring Gemini. No key at all
// returns nil; the offline template path still serves.
func buildClient(cfg config.Config, zl *logger.Logger) *llm.Client {
	var (
		provider llm.Provider
		err      error
	)

	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		provider, err = llm.NewGeminiProvider(context.Background(), cfg.GeminiKey)
	case "openai":
		provider, err = llm.NewOpenAIProvider(cfg.OpenAIKey)
	case "":
		if cfg.GeminiKey != "" {
			provider, err = llm.NewGeminiProvider(context.Background(), cfg.GeminiKey)
		} else if cfg.OpenAIKey != "" {
			provider, err = llm.NewOpenAIProvider(cfg.OpenAIKey)
		} else {
			zl.Warn("no API key configured; only offline template generation will work")
			return nil
		}
	default:
		zl.Fatal("unknown LLM_PROVIDER", "provider", cfg.Provider)
	}

	if err != nil {
		zl.Fatal("init LLM provider", "error", err)
	}
	zl.Info("LLM provider ready", "provider", provider.Name(), "pinned_model", cfg.Model)
	return llm.NewClient(provider, cfg.Model, zl)
}
