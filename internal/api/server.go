package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"examforge/internal/diagram"
	"examforge/internal/layout"
	"examforge/internal/llm"
	"examforge/internal/logger"
	"examforge/internal/models"
	"examforge/internal/services"
)

const maxMultipartMemory = 8 << 20 // 8 MB

type Server struct {
	mux        *http.ServeMux
	generator  *services.GeneratorService
	renderer   *layout.Renderer
	diagrams   *diagram.Service
	curriculum *services.CurriculumService
	history    *services.HistoryService
	reference  *services.ReferenceService
	client     *llm.Client
	log        *logger.Logger
}

// Deps carries the wired services NewServer needs. Client may be nil
// when no API key is configured; the offline template still works.
type Deps struct {
	Generator  *services.GeneratorService
	Renderer   *layout.Renderer
	Diagrams   *diagram.Service
	Curriculum *services.CurriculumService
	History    *services.HistoryService
	Reference  *services.ReferenceService
	Client     *llm.Client
	Log        *logger.Logger
}

func NewServer(deps Deps) *Server {
	s := &Server{
		mux:        http.NewServeMux(),
		generator:  deps.Generator,
		renderer:   deps.Renderer,
		diagrams:   deps.Diagrams,
		curriculum: deps.Curriculum,
		history:    deps.History,
		reference:  deps.Reference,
		client:     deps.Client,
		log:        deps.Log,
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.recovered(s.mux))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/generate", s.handleGenerate)
	s.mux.HandleFunc("/download-pdf", s.handleDownloadPDF)
	s.mux.HandleFunc("/chapters", s.handleChapters)
	s.mux.HandleFunc("/history", s.handleHistory)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	info := map[string]any{
		"status":             "ok",
		"provider":           "none",
		"api_key_configured": false,
		"models":             []string{},
	}
	if s.client != nil {
		info["provider"] = s.client.Provider()
		info["api_key_configured"] = true
		info["models"] = s.client.Models(r.Context())
	}
	writeJSON(w, http.StatusOK, info)
}

// handleGenerate serves both modes the frontend uses: a JSON body gets
// the split paper back as JSON, a form post gets the finished PDF.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		s.generateJSON(w, r)
		return
	}
	s.generatePDF(w, r)
}

type generateResponse struct {
	Success      bool   `json:"success"`
	Paper        string `json:"paper"`
	AnswerKey    string `json:"answer_key"`
	Model        string `json:"model"`
	UsedFallback bool   `json:"used_fallback"`
}

func (s *Server) generateJSON(w http.ResponseWriter, r *http.Request) {
	var req models.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGenerateError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}
	if err := req.Validate(); err != nil {
		writeGenerateError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	doc, err := s.generator.Generate(r.Context(), &req)
	if err != nil {
		s.writeGenerationFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Success:      true,
		Paper:        doc.Paper,
		AnswerKey:    doc.AnswerKey,
		Model:        doc.Model,
		UsedFallback: doc.UsedFallback,
	})
}

func (s *Server) generatePDF(w http.ResponseWriter, r *http.Request) {
	req, err := s.formRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := s.generator.Generate(r.Context(), req)
	if err != nil {
		s.writeGenerationFailure(w, err)
		return
	}

	key := doc.AnswerKey
	if !req.IncludeKey {
		key = ""
	}
	meta := layout.Meta{Subject: req.Subject, Chapter: req.Chapter, Board: req.BoardLabel()}
	pdfBytes, err := s.buildPDF(r, meta, doc.Paper, key, true)
	if err != nil {
		s.log.Error("pdf build failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writePDF(w, meta.Filename(), pdfBytes)
}

// formRequest maps a form or multipart post onto a GenerationRequest.
// A "reference" PDF upload becomes a prompt excerpt; extraction failure
// only costs the excerpt.
func (s *Server) formRequest(r *http.Request) (*models.GenerationRequest, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, fmt.Errorf("invalid multipart form")
		}
		if form := r.MultipartForm; form != nil {
			defer form.RemoveAll()
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body")
	}

	req := &models.GenerationRequest{
		ExamType:           models.ExamType(r.FormValue("examType")),
		Class:              r.FormValue("class"),
		Subject:            r.FormValue("subject"),
		Chapter:            r.FormValue("chapter"),
		Board:              r.FormValue("board"),
		State:              r.FormValue("state"),
		CompetitiveExam:    r.FormValue("competitiveExam"),
		Difficulty:         models.ParseDifficulty(r.FormValue("difficulty")),
		Suggestions:        r.FormValue("suggestions"),
		IncludeKey:         formBool(r.FormValue("includeAnswerKey")),
		PromptOverride:     r.FormValue("prompt"),
		UseOfflineTemplate: formBool(r.FormValue("useOfflineTemplate")),
	}
	if req.ExamType == "" {
		req.ExamType = models.ExamStateBoard
	}
	if req.Class == "" {
		req.Class = r.FormValue("grade")
	}

	if raw := strings.TrimSpace(r.FormValue("marks")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid field: marks must be a number")
		}
		req.Marks = n
	}

	if file, _, err := r.FormFile("reference"); err == nil {
		defer file.Close()
		excerpt, exErr := s.reference.ExtractUpload(file)
		if exErr != nil {
			s.log.Warn("reference extraction failed", "error", exErr)
		} else {
			req.ReferenceExcerpt = excerpt
		}
	}

	return req, nil
}

type downloadRequest struct {
	Paper           string `json:"paper"`
	AnswerKey       string `json:"answer_key"`
	Subject         string `json:"subject"`
	Chapter         string `json:"chapter"`
	Board           string `json:"board"`
	IncludeDiagrams bool   `json:"include_diagrams"`
}

// handleDownloadPDF renders previously generated text into the final
// PDF, so the frontend can preview first and download after.
func (s *Server) handleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Paper) == "" {
		writeError(w, http.StatusBadRequest, "missing required field: paper")
		return
	}

	meta := layout.Meta{Subject: req.Subject, Chapter: req.Chapter, Board: req.Board}
	pdfBytes, err := s.buildPDF(r, meta, req.Paper, req.AnswerKey, req.IncludeDiagrams)
	if err != nil {
		s.log.Error("pdf build failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writePDF(w, meta.Filename(), pdfBytes)
}

// buildPDF parses the text once, resolves diagram placeholders when
// asked, and renders. The diagram cache lives and dies with this call.
func (s *Server) buildPDF(r *http.Request, meta layout.Meta, paper, key string, withDiagrams bool) ([]byte, error) {
	els := layout.BuildDocument(paper, key)

	var resolver layout.Resolver
	if withDiagrams {
		resolver = s.diagrams.ResolveAll(r.Context(), layout.DiagramDescriptions(els))
	}
	return s.renderer.RenderElements(meta, els, resolver)
}

func (s *Server) handleChapters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	q := r.URL.Query()
	rows := s.curriculum.Lookup(q.Get("class"), q.Get("subject"))
	if rows == nil {
		rows = []models.Chapter{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"chapters": rows})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid field: limit must be a non-negative number")
			return
		}
		limit = n
	}

	entries := s.history.Recent(limit)
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

// writeGenerationFailure maps generator errors onto the response
// contract: missing key is a config problem, anything else is the
// upstream provider and comes with a way out.
func (s *Server) writeGenerationFailure(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrNoAPIKey) {
		writeAPIError(w, http.StatusInternalServerError,
			"API key not configured. Set GEMINI_API_KEY or OPENAI_API_KEY.", "")
		return
	}
	s.log.Error("generation failed", "error", err)
	writeAPIError(w, http.StatusBadGateway, err.Error(),
		"The provider may be out of quota. Wait for the limit to reset, or set useOfflineTemplate to build a paper from the local question banks.")
}

func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func writePDF(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeGenerateError(w http.ResponseWriter, status int, message, suggestion string) {
	payload := map[string]any{"success": false, "error": message}
	if suggestion != "" {
		payload["suggestion"] = suggestion
	}
	writeJSON(w, status, payload)
}

// writeAPIError is the upstream-failure variant: clients look for
// api_error to distinguish provider trouble from bad input.
func writeAPIError(w http.ResponseWriter, status int, message, suggestion string) {
	payload := map[string]any{"success": false, "api_error": message}
	if suggestion != "" {
		payload["suggestion"] = suggestion
	}
	writeJSON(w, status, payload)
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
