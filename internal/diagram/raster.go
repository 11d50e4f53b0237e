package diagram

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// targetWidth is the rendered bitmap width in pixels. At the 90mm slot
// the layout gives figures this comes out near 130 DPI.
const targetWidth = 460

// maxTargetHeight bounds pathological aspect ratios.
const maxTargetHeight = 920

const labelFontSize = 13

// rasterizer turns a parsed document into a PNG. The zero value works;
// face is optional and falls back to gg's bitmap font.
type rasterizer struct {
	face font.Face
}

// loadFace reads a TTF for figure labels. Any failure returns nil and
// the rasterizer keeps its fallback font.
func loadFace(path string, size float64) font.Face {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// render rasterizes constrained SVG bytes to PNG, preserving the
// viewBox aspect ratio at targetWidth.
func (r rasterizer) render(svg []byte) ([]byte, error) {
	doc, err := parseSVG(svg)
	if err != nil {
		return nil, err
	}

	scale := float64(targetWidth) / doc.width
	height := int(doc.height*scale + 0.5)
	if height < 1 {
		height = 1
	}
	if height > maxTargetHeight {
		height = maxTargetHeight
	}

	dc := gg.NewContext(targetWidth, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	if r.face != nil {
		dc.SetFontFace(r.face)
	}
	dc.Scale(scale, scale)
	dc.Translate(-doc.minX, -doc.minY)

	for _, sh := range doc.shapes {
		if err := drawShape(dc, sh, scale); err != nil {
			return nil, fmt.Errorf("draw <%s>: %w", sh.kind, err)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawShape(dc *gg.Context, sh shape, scale float64) error {
	stroke, hasStroke := paint(sh.attrs["stroke"], "#000000")
	fill, hasFill := paint(sh.attrs["fill"], "none")
	width := sh.float("stroke-width", 2)

	// gg line widths ignore the coordinate transform, so scale by hand.
	dc.SetLineWidth(width * scale)

	finish := func() {
		if hasFill {
			dc.SetHexColor(fill)
			if hasStroke {
				dc.FillPreserve()
			} else {
				dc.Fill()
			}
		}
		if hasStroke {
			dc.SetHexColor(stroke)
			dc.Stroke()
		}
		dc.ClearPath()
	}

	switch sh.kind {
	case "line":
		if !hasStroke {
			return nil
		}
		dc.DrawLine(sh.float("x1", 0), sh.float("y1", 0), sh.float("x2", 0), sh.float("y2", 0))
		dc.SetHexColor(stroke)
		dc.Stroke()
	case "circle":
		dc.DrawCircle(sh.float("cx", 0), sh.float("cy", 0), sh.float("r", 0))
		finish()
	case "ellipse":
		dc.DrawEllipse(sh.float("cx", 0), sh.float("cy", 0), sh.float("rx", 0), sh.float("ry", 0))
		finish()
	case "rect":
		dc.DrawRectangle(sh.float("x", 0), sh.float("y", 0), sh.float("width", 0), sh.float("height", 0))
		finish()
	case "polygon", "polyline":
		pts := sh.points()
		if len(pts) < 2 {
			return fmt.Errorf("needs at least two points")
		}
		dc.MoveTo(pts[0].x, pts[0].y)
		for _, p := range pts[1:] {
			dc.LineTo(p.x, p.y)
		}
		if sh.kind == "polygon" {
			dc.ClosePath()
		} else {
			hasFill = false
		}
		finish()
	case "path":
		segs, err := parsePath(sh.attrs["d"])
		if err != nil {
			return err
		}
		for _, seg := range segs {
			switch seg.op {
			case 'M':
				dc.MoveTo(seg.pts[0].x, seg.pts[0].y)
			case 'L':
				dc.LineTo(seg.pts[0].x, seg.pts[0].y)
			case 'C':
				dc.CubicTo(seg.pts[0].x, seg.pts[0].y, seg.pts[1].x, seg.pts[1].y, seg.pts[2].x, seg.pts[2].y)
			case 'Q':
				dc.QuadraticTo(seg.pts[0].x, seg.pts[0].y, seg.pts[1].x, seg.pts[1].y)
			case 'Z':
				dc.ClosePath()
			}
		}
		finish()
	case "text":
		if sh.text == "" {
			return nil
		}
		color := "#000000"
		if hasFill && sh.attrs["fill"] != "" {
			color = fill
		} else if hasStroke && sh.attrs["stroke"] != "" {
			color = stroke
		}
		dc.SetHexColor(color)
		anchorX := 0.0
		switch sh.attrs["text-anchor"] {
		case "middle":
			anchorX = 0.5
		case "end":
			anchorX = 1
		}
		dc.DrawStringAnchored(sh.text, sh.float("x", 0), sh.float("y", 0), anchorX, 0)
	}
	return nil
}

// paint resolves a fill/stroke attribute to a hex color. The bool is
// false for "none".
func paint(value, fallback string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		v = fallback
	}
	if v == "none" || v == "transparent" {
		return "", false
	}
	if strings.HasPrefix(v, "#") {
		return v, true
	}
	if hex, ok := namedColors[v]; ok {
		return hex, true
	}
	return "#000000", true
}

var namedColors = map[string]string{
	"black":  "#000000",
	"white":  "#ffffff",
	"red":    "#dc2626",
	"green":  "#16a34a",
	"blue":   "#2563eb",
	"yellow": "#eab308",
	"orange": "#ea580c",
	"purple": "#9333ea",
	"brown":  "#92400e",
	"gray":   "#6b7280",
	"grey":   "#6b7280",
}
