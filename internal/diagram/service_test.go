package diagram

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"examforge/internal/llm"
	"examforge/internal/logger"
)

const sampleSVG = `<svg viewBox="0 0 200 150">
  <circle cx="100" cy="75" r="40" stroke="black" fill="none"/>
  <line x1="100" y1="75" x2="140" y2="75" stroke="black"/>
  <text x="105" y="70">O</text>
</svg>`

func newTestService(t *testing.T, provider *llm.MockProvider, opts Options) *Service {
	t.Helper()
	var client *llm.Client
	if provider != nil {
		client = llm.NewClient(provider, "svg-model", logger.NewNop())
	}
	svc, err := NewService(client, opts, logger.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestService_ResolvesFigure(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "Here you go:\n```svg\n" + sampleSVG + "\n```"})
	svc := newTestService(t, mock, Options{})

	cache := svc.ResolveAll(context.Background(), []string{"circle with centre O and radius"})

	png, ok := cache.Resolve("circle with centre O and radius")
	if !ok {
		t.Fatal("figure not cached")
	}
	if len(png) < 8 || png[1] != 'P' || png[2] != 'N' || png[3] != 'G' {
		t.Fatalf("cached bytes are not a PNG (%d bytes)", len(png))
	}

	if mock.CallCount() != 1 {
		t.Fatalf("CallCount = %d, want 1", mock.CallCount())
	}
	req := mock.Calls[0].Request
	if !strings.Contains(req.System, "svg") && !strings.Contains(req.System, "SVG") {
		t.Error("system prompt does not mention SVG")
	}
	if req.MaxTokens != svgMaxTokens {
		t.Errorf("MaxTokens = %d, want %d", req.MaxTokens, svgMaxTokens)
	}
	if !strings.Contains(req.Prompt, "circle with centre O") {
		t.Errorf("prompt missing description: %q", req.Prompt)
	}
}

func TestService_RendersAllFigures(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: sampleSVG},
		llm.MockResponse{Text: sampleSVG},
	)
	svc := newTestService(t, mock, Options{Workers: 2})

	descs := []string{"ray diagram for a convex lens", "bar magnet and field pattern"}
	cache := svc.ResolveAll(context.Background(), descs)

	if cache.Len() != 2 {
		t.Fatalf("cached %d figures, want 2", cache.Len())
	}
	for _, d := range descs {
		if _, ok := cache.Resolve(d); !ok {
			t.Errorf("missing figure for %q", d)
		}
	}
}

func TestService_FailedFigureSkipped(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{Model: "svg-model"}})
	svc := newTestService(t, mock, Options{})

	cache := svc.ResolveAll(context.Background(), []string{"right triangle ABC"})
	if cache.Len() != 0 {
		t.Fatalf("cached %d figures, want 0", cache.Len())
	}
	if _, ok := cache.Resolve("right triangle ABC"); ok {
		t.Error("failed figure resolved")
	}
}

func TestService_ProseResponseSkipped(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "I am unable to draw figures."})
	svc := newTestService(t, mock, Options{})

	cache := svc.ResolveAll(context.Background(), []string{"circuit with two resistors"})
	if cache.Len() != 0 {
		t.Error("a reply without svg should not cache anything")
	}
}

func TestService_UnsafeSVGSkipped(t *testing.T) {
	unsafe := `<svg viewBox="0 0 10 10"><script>alert(1)</script><circle cx="5" cy="5" r="2"/></svg>`
	mock := llm.NewMockProvider(llm.MockResponse{Text: unsafe})
	svc := newTestService(t, mock, Options{})

	cache := svc.ResolveAll(context.Background(), []string{"some figure"})
	if cache.Len() != 0 {
		t.Error("unsafe svg should not cache anything")
	}
}

func TestService_NilClientResolvesNothing(t *testing.T) {
	svc := newTestService(t, nil, Options{})

	cache := svc.ResolveAll(context.Background(), []string{"anything at all"})
	if cache.Len() != 0 {
		t.Error("service without a client should cache nothing")
	}
}

func TestService_BuildPromptIncludesHints(t *testing.T) {
	svc := newTestService(t, nil, Options{})

	p := svc.buildPrompt("Tangent PQ drawn from an external point to a circle")
	if !strings.Contains(p, `Hint for "tangent"`) {
		t.Errorf("tangent hint missing from prompt:\n%s", p)
	}

	p = svc.buildPrompt("bar graph of rainfall data")
	if strings.Contains(p, "tangent") {
		t.Errorf("unrelated hint leaked into prompt:\n%s", p)
	}
}

func TestService_HintsFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hints.json")
	if err := os.WriteFile(path, []byte(`{"Pendulum": "Show the bob on a string from a fixed support."}`), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := newTestService(t, nil, Options{HintsPath: path})

	p := svc.buildPrompt("simple pendulum experiment setup")
	if !strings.Contains(p, "Show the bob") {
		t.Errorf("file hint missing:\n%s", p)
	}
	if strings.Contains(p, "tangent") {
		t.Error("built-in bank should be replaced by the file")
	}
}

func TestService_BrokenHintsFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hints.json")
	if err := os.WriteFile(path, []byte(`{broken`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewService(nil, Options{HintsPath: path}, logger.NewNop()); err == nil {
		t.Error("expected error for broken hints file")
	}
	if _, err := NewService(nil, Options{HintsPath: filepath.Join(t.TempDir(), "missing.json")}, logger.NewNop()); err == nil {
		t.Error("expected error for missing hints file")
	}
}
