package services

import (
	"context"
	"errors"
	"fmt"

	"examforge/internal/llm"
	"examforge/internal/logger"
	"examforge/internal/models"
	"examforge/internal/prompt"
)

// ErrNoAPIKey means no provider credential was configured; handlers turn
// it into an immediate 500 rather than an LLM-error payload.
var ErrNoAPIKey = errors.New("LLM API key not configured")

// OfflineModelName is reported in place of a model ID for papers built
// from the local template.
const OfflineModelName = "offline-template"

// Generation parameters carried over unchanged from the original service.
const (
	genMaxTokens   = 3000
	genTemperature = 0.7
	genTopP        = 0.95
)

// GeneratorService runs the full pipeline: prompt build, LLM call with
// model fallback, key split, history record.
type GeneratorService struct {
	client  *llm.Client
	builder prompt.Builder
	history *HistoryService
	log     *logger.Logger
}

// NewGeneratorService wires the pipeline. client may be nil when no API
// key is configured; offline-template requests still work then.
func NewGeneratorService(client *llm.Client, history *HistoryService, log *logger.Logger) *GeneratorService {
	return &GeneratorService{client: client, history: history, log: log}
}

// Generate produces the split document for one request. LLM exhaustion
// surfaces as an error; it does not silently switch to the offline
// template, the caller must ask for that.
func (s *GeneratorService) Generate(ctx context.Context, req *models.GenerationRequest) (*models.GeneratedDocument, error) {
	if req.UseOfflineTemplate {
		return s.generateOffline(req), nil
	}
	if s.client == nil {
		return nil, ErrNoAPIKey
	}

	p := s.builder.Build(req)
	text, model, err := s.client.Generate(ctx, llm.Request{
		System:      prompt.SystemPrompt,
		Prompt:      p,
		MaxTokens:   genMaxTokens,
		Temperature: genTemperature,
		TopP:        genTopP,
	})
	if err != nil {
		return nil, fmt.Errorf("generate paper: %w", err)
	}

	paper, key := SplitKey(text)
	doc := &models.GeneratedDocument{Paper: paper, AnswerKey: key, Model: model}
	s.record(req, doc)
	s.log.Info("paper generated", "model", model, "subject", req.Subject, "marks", req.Marks, "key", key != "")
	return doc, nil
}

func (s *GeneratorService) generateOffline(req *models.GenerationRequest) *models.GeneratedDocument {
	paper, key := SplitKey(prompt.Offline(req))
	doc := &models.GeneratedDocument{
		Paper:        paper,
		AnswerKey:    key,
		Model:        OfflineModelName,
		UsedFallback: true,
	}
	s.record(req, doc)
	s.log.Info("offline paper generated", "subject", req.Subject, "marks", req.Marks)
	return doc
}

func (s *GeneratorService) record(req *models.GenerationRequest, doc *models.GeneratedDocument) {
	if s.history == nil {
		return
	}
	s.history.Record(models.HistoryEntry{
		Class:        req.Class,
		Subject:      req.Subject,
		Chapter:      req.Chapter,
		Board:        req.BoardLabel(),
		Marks:        prompt.ClampMarks(req.Marks),
		Difficulty:   models.ParseDifficulty(string(req.Difficulty)),
		Model:        doc.Model,
		UsedFallback: doc.UsedFallback,
	})
}
