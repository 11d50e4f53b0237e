package diagram

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"examforge/internal/llm"
	"examforge/internal/logger"
)

const (
	defaultWorkers = 4
	maxWorkers     = 8

	// One figure request; generous enough for a slow model, short
	// enough that a stuck figure never holds the whole paper hostage.
	taskTimeout = 25 * time.Second

	svgMaxTokens   = 2000
	svgTemperature = 0.2
)

const svgSystemPrompt = `You draw simple textbook figures as SVG for school exam papers.

Rules:
- Respond with ONE <svg> element and nothing else. No markdown, no explanation.
- Always set viewBox="0 0 W H" with W and H between 100 and 400.
- Use only these elements: line, circle, ellipse, rect, polygon, polyline, path, text, g.
- Path data may use only M, L, H, V, C, Q and Z commands.
- No scripts, styles, images, links, filters, animations or external references of any kind.
- Draw with black strokes (stroke="black", stroke-width="2") on a plain background. fill="none" for outlines.
- Label points and parts with short <text> elements placed clearly beside what they name.
- Keep the figure clean and schematic, the way a textbook would print it.`

// Options configures a Service. Zero values pick the defaults.
type Options struct {
	Workers   int
	HintsPath string

	// FontPath is a TTF used for figure labels; empty keeps the
	// built-in bitmap font.
	FontPath string
}

// Service turns diagram placeholder descriptions into rendered PNGs.
// A nil Service or one built without a client resolves nothing, which
// downgrades every figure to a reserved box.
type Service struct {
	client *llm.Client
	log    *logger.Logger

	workers int
	hints   map[string]string
	raster  rasterizer
}

// NewService wires the figure pipeline. A broken hints file is an
// error; a missing font only costs label quality.
func NewService(client *llm.Client, opts Options, log *logger.Logger) (*Service, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}

	hints, err := loadHints(opts.HintsPath)
	if err != nil {
		return nil, err
	}

	return &Service{
		client:  client,
		log:     log,
		workers: workers,
		hints:   hints,
		raster:  rasterizer{face: loadFace(opts.FontPath, labelFontSize)},
	}, nil
}

// ResolveAll renders every description concurrently and returns the
// filled per-document cache. Individual failures are logged and
// skipped; the paper still builds with empty figure boxes.
func (s *Service) ResolveAll(ctx context.Context, descriptions []string) *Cache {
	cache := NewCache()
	if s == nil || s.client == nil || len(descriptions) == 0 {
		return cache
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, s.workers)

	for _, desc := range descriptions {
		wg.Add(1)
		go func(desc string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			png, err := s.renderOne(ctx, desc)
			if err != nil {
				s.log.Warn("diagram skipped", "description", desc, "error", err)
				return
			}
			cache.Put(desc, png)
		}(desc)
	}

	wg.Wait()
	if n := cache.Len(); n < len(descriptions) {
		s.log.Info("diagram pass finished", "requested", len(descriptions), "rendered", n)
	}
	return cache
}

func (s *Service) renderOne(ctx context.Context, desc string) ([]byte, error) {
	tctx, cancel := context.WithTimeout(ctx, taskTimeout)
	defer cancel()

	text, _, err := s.client.Generate(tctx, llm.Request{
		System:      svgSystemPrompt,
		Prompt:      s.buildPrompt(desc),
		MaxTokens:   svgMaxTokens,
		Temperature: svgTemperature,
	})
	if err != nil {
		return nil, err
	}

	svg := extractSVG(text)
	if svg == "" {
		return nil, fmt.Errorf("response has no <svg> element")
	}
	return s.raster.render([]byte(svg))
}

func (s *Service) buildPrompt(desc string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Draw this figure for a question paper: %s\n", desc)

	lower := strings.ToLower(desc)
	for keyword, hint := range s.hints {
		if strings.Contains(lower, keyword) {
			fmt.Fprintf(&b, "\nHint for %q figures: %s\n", keyword, hint)
		}
	}
	return b.String()
}

// extractSVG cuts the <svg>...</svg> span out of a model reply, which
// often arrives wrapped in code fences or prose.
func extractSVG(text string) string {
	lower := strings.ToLower(text)
	start := strings.Index(lower, "<svg")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(lower, "</svg>")
	if end < start {
		return ""
	}
	return text[start : end+len("</svg>")]
}

// loadHints mirrors the curriculum table: built-in bank by default, a
// JSON object of keyword to hint replaces it when configured.
func loadHints(path string) (map[string]string, error) {
	if path == "" {
		return defaultHints, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read diagram hints: %w", err)
	}
	var hints map[string]string
	if err := json.Unmarshal(data, &hints); err != nil {
		return nil, fmt.Errorf("parse diagram hints: %w", err)
	}
	lowered := make(map[string]string, len(hints))
	for k, v := range hints {
		lowered[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return lowered, nil
}

// defaultHints nudge the model toward the standard textbook rendering
// of figures it otherwise tends to improvise.
var defaultHints = map[string]string{
	"tangent": "Show the circle with centre O marked, the external point outside it, and the tangent touching the circle at exactly one point with the radius drawn to the point of contact at a right angle.",
	"circuit": "Use schematic symbols: a battery as one long and one short parallel line, a resistor as a small rectangle, a bulb as a circle with a cross, and straight wires with right-angle bends.",
	"triangle": "Draw the triangle with vertices labelled A, B and C, and mark any given angles or side lengths next to the relevant corner or side.",
	"cell": "Draw the cell as a large rounded outline and show each organelle as a distinct labelled shape inside, with label lines pointing to the parts.",
	"water cycle": "Show the sun, a body of water, rising evaporation arrows, a cloud, falling rain arrows and ground runoff, each stage labelled.",
	"ray diagram": "Draw the principal axis as a horizontal line, the lens or mirror on it, the object as an upright arrow, and trace two standard rays to locate the labelled image.",
	"lens": "Draw the principal axis, the lens as a tall thin shape at the centre, focal points F marked on both sides, and ray paths as straight lines with arrowheads.",
	"prism": "Draw the prism as a triangle, an incident ray entering one face, the bent ray inside, and the emergent ray leaving the far face, with the angle of deviation marked.",
	"magnet": "Draw the bar magnet as a rectangle with N and S ends labelled and field lines as curved paths from north to south.",
	"digestive": "Show the alimentary canal as a continuous labelled tube running from the mouth through the oesophagus, stomach, small intestine and large intestine.",
	"heart": "Draw the four chambers as labelled regions with arrows showing the direction of blood flow through them.",
	"pulley": "Draw the pulley as a circle on a fixed support, the rope over it, and the load and effort as labelled arrows.",
	"graph": "Draw both axes with arrowheads and labels, mark the scale with ticks, and plot the curve or bars cleanly.",
	"angle": "Mark each angle with a small arc at the vertex and write the measure or letter just outside the arc.",
}
