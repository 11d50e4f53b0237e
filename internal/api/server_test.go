package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"examforge/internal/diagram"
	"examforge/internal/layout"
	"examforge/internal/llm"
	"examforge/internal/logger"
	"examforge/internal/services"
)

const cannedPaper = `Q1. Define refraction of light. [2 Marks]

Q2. State Snell's law. [3 Marks]

ANSWER KEY:
1. Bending of light at a medium boundary.
2. n1 sin i = n2 sin r.`

func testServer(t *testing.T, provider *llm.MockProvider) http.Handler {
	t.Helper()

	var client *llm.Client
	if provider != nil {
		client = llm.NewClient(provider, "test-model", logger.NewNop())
	}

	history := services.NewHistoryService(filepath.Join(t.TempDir(), "history.json"), logger.NewNop())
	curriculum, err := services.NewCurriculumService("")
	if err != nil {
		t.Fatalf("curriculum: %v", err)
	}
	diagrams, err := diagram.NewService(nil, diagram.Options{}, logger.NewNop())
	if err != nil {
		t.Fatalf("diagram service: %v", err)
	}

	srv := NewServer(Deps{
		Generator:  services.NewGeneratorService(client, history, logger.NewNop()),
		Renderer:   layout.NewRenderer("", logger.NewNop()),
		Diagrams:   diagrams,
		Curriculum: curriculum,
		History:    history,
		Reference:  services.NewReferenceService(),
		Client:     client,
		Log:        logger.NewNop(),
	})
	return srv.Handler()
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth_WithoutClient(t *testing.T) {
	h := testServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var out struct {
		Status        string `json:"status"`
		Provider      string `json:"provider"`
		KeyConfigured bool   `json:"api_key_configured"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Status != "ok" || out.Provider != "none" || out.KeyConfigured {
		t.Fatalf("unexpected health: %+v", out)
	}
}

func TestHealth_WithClient(t *testing.T) {
	h := testServer(t, llm.NewMockProvider())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var out struct {
		Provider      string   `json:"provider"`
		KeyConfigured bool     `json:"api_key_configured"`
		Models        []string `json:"models"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Provider != "mock" || !out.KeyConfigured {
		t.Fatalf("unexpected health: %+v", out)
	}
	if len(out.Models) != 1 || out.Models[0] != "test-model" {
		t.Fatalf("models = %v, want the pinned model", out.Models)
	}
}

func TestGenerate_JSON(t *testing.T) {
	h := testServer(t, llm.NewMockProvider(llm.MockResponse{Text: cannedPaper}))

	rr := postJSON(t, h, "/generate", `{"class":"10","subject":"Physics","chapter":"Light","marks":50,"includeAnswerKey":true}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var out generateResponse
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Success || out.UsedFallback {
		t.Fatalf("unexpected flags: %+v", out)
	}
	if !strings.Contains(out.Paper, "Snell") || strings.Contains(out.Paper, "ANSWER KEY") {
		t.Errorf("paper half wrong: %q", out.Paper)
	}
	if !strings.Contains(out.AnswerKey, "n1 sin i") {
		t.Errorf("key half wrong: %q", out.AnswerKey)
	}
	if out.Model != "test-model" {
		t.Errorf("model = %q", out.Model)
	}
}

func TestGenerate_MissingSubject(t *testing.T) {
	h := testServer(t, llm.NewMockProvider())

	rr := postJSON(t, h, "/generate", `{"class":"10"}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "subject") {
		t.Errorf("error does not name the field: %s", rr.Body.String())
	}
}

func TestGenerate_OfflineTemplate(t *testing.T) {
	h := testServer(t, nil)

	rr := postJSON(t, h, "/generate", `{"class":"10","subject":"Mathematics","chapter":"Algebra","useOfflineTemplate":true,"includeAnswerKey":true}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var out generateResponse
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.UsedFallback || out.Model != services.OfflineModelName {
		t.Fatalf("offline flags wrong: %+v", out)
	}
	if !strings.Contains(out.Paper, "SECTION") {
		t.Errorf("offline paper missing sections: %q", out.Paper)
	}
}

func TestGenerate_NoAPIKey(t *testing.T) {
	h := testServer(t, nil)

	rr := postJSON(t, h, "/generate", `{"subject":"Physics"}`)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "API key") {
		t.Errorf("body: %s", rr.Body.String())
	}
}

func TestGenerate_UpstreamExhausted(t *testing.T) {
	h := testServer(t, llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{Model: "test-model"}}))

	rr := postJSON(t, h, "/generate", `{"subject":"Physics"}`)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var out struct {
		Success    bool   `json:"success"`
		APIError   string `json:"api_error"`
		Suggestion string `json:"suggestion"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Success {
		t.Error("success should be false")
	}
	if !strings.Contains(out.APIError, "exhausted") {
		t.Errorf("api_error = %q", out.APIError)
	}
	if !strings.Contains(out.Suggestion, "useOfflineTemplate") {
		t.Errorf("suggestion = %q", out.Suggestion)
	}
}

func TestGenerate_FormReturnsPDF(t *testing.T) {
	h := testServer(t, llm.NewMockProvider(llm.MockResponse{Text: cannedPaper}))

	form := "subject=Physics&chapter=Light&marks=50&includeAnswerKey=on"
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "Physics_Light.pdf") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF-")) {
		t.Error("body is not a PDF")
	}
}

func TestGenerate_FormBadMarks(t *testing.T) {
	h := testServer(t, llm.NewMockProvider())

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader("subject=Physics&marks=fifty"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "marks") {
		t.Errorf("error does not name the field: %s", rr.Body.String())
	}
}

func TestGenerate_MultipartReferenceFailureIsNonFatal(t *testing.T) {
	h := testServer(t, llm.NewMockProvider(llm.MockResponse{Text: cannedPaper}))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("subject", "Physics")
	_ = mw.WriteField("chapter", "Light")
	fw, err := mw.CreateFormFile("reference", "sample.pdf")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write([]byte("this is not a pdf"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/generate", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF-")) {
		t.Error("body is not a PDF")
	}
}

func TestDownloadPDF(t *testing.T) {
	h := testServer(t, nil)

	rr := postJSON(t, h, "/download-pdf", `{"paper":"Q1. Solve for x. [2 Marks]","answer_key":"1. x = 4","subject":"Mathematics","chapter":"Algebra"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "Mathematics_Algebra.pdf") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF-")) {
		t.Error("body is not a PDF")
	}
}

func TestDownloadPDF_DiagramBoxWithoutResolution(t *testing.T) {
	h := testServer(t, nil)

	rr := postJSON(t, h, "/download-pdf", `{"paper":"Q1. Study the figure. [3 Marks]\n[DIAGRAM: right triangle ABC]","subject":"Maths"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF-")) {
		t.Error("body is not a PDF")
	}
}

func TestDownloadPDF_MissingPaper(t *testing.T) {
	h := testServer(t, nil)

	rr := postJSON(t, h, "/download-pdf", `{"subject":"Maths"}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "paper") {
		t.Errorf("error does not name the field: %s", rr.Body.String())
	}
}

func TestChapters(t *testing.T) {
	h := testServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/chapters?class=10&subject=Physics", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var out struct {
		Chapters []struct {
			Class    string   `json:"class"`
			Subject  string   `json:"subject"`
			Chapters []string `json:"chapters"`
		} `json:"chapters"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Chapters) != 1 || out.Chapters[0].Subject != "Physics" {
		t.Fatalf("unexpected rows: %+v", out.Chapters)
	}
	if len(out.Chapters[0].Chapters) == 0 {
		t.Error("row has no chapters")
	}
}

func TestChapters_NoMatchIsEmptyList(t *testing.T) {
	h := testServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/chapters?class=4", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	body := strings.TrimSpace(rr.Body.String())
	if body != `{"chapters":[]}` {
		t.Errorf("body = %s, want an empty list not null", body)
	}
}

func TestHistory_RecordsGenerations(t *testing.T) {
	h := testServer(t, nil)

	rr := postJSON(t, h, "/generate", `{"subject":"Science","chapter":"Sound","useOfflineTemplate":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("generate status=%d body=%s", rr.Code, rr.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out struct {
		History []struct {
			Subject      string `json:"subject"`
			Model        string `json:"model"`
			UsedFallback bool   `json:"used_fallback"`
		} `json:"history"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(out.History))
	}
	if out.History[0].Subject != "Science" || !out.History[0].UsedFallback {
		t.Fatalf("unexpected entry: %+v", out.History[0])
	}
}

func TestHistory_BadLimit(t *testing.T) {
	h := testServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/history?limit=many", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestMethodGuards(t *testing.T) {
	h := testServer(t, nil)

	cases := []struct {
		method, path string
		allow        string
	}{
		{http.MethodGet, "/generate", "POST"},
		{http.MethodGet, "/download-pdf", "POST"},
		{http.MethodPost, "/chapters", "GET"},
		{http.MethodPost, "/history", "GET"},
		{http.MethodDelete, "/health", "GET"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: status=%d", tc.method, tc.path, rr.Code)
		}
		if got := rr.Header().Get("Allow"); got != tc.allow {
			t.Errorf("%s %s: Allow=%q want %q", tc.method, tc.path, got, tc.allow)
		}
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := testServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/generate", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Errorf("Allow-Methods = %q", got)
	}
}
