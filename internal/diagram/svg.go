// Package diagram resolves [DIAGRAM: ...] placeholders: it asks the
// model for a constrained SVG description of the figure, parses the
// restricted element set, and rasterizes it to PNG for embedding. Every
// failure is non-fatal; the caller's layout keeps its reserved box.
package diagram

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// The element vocabulary the model is allowed to use. Anything outside
// it is either dangerous (rejected) or pointless (ignored).
var allowedElements = map[string]bool{
	"svg": true, "g": true,
	"line": true, "circle": true, "ellipse": true, "rect": true,
	"polygon": true, "polyline": true, "path": true, "text": true,
}

// Elements whose presence fails the whole document. Scripting, external
// references and filters stay out of generated output entirely.
var forbiddenElements = map[string]bool{
	"script": true, "style": true, "use": true, "image": true,
	"filter": true, "foreignobject": true, "iframe": true, "embed": true,
	"animate": true, "set": true,
}

type svgNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Nodes   []svgNode  `xml:",any"`
	Text    string     `xml:",chardata"`
}

// shape is one flattened drawable with its raw attributes.
type shape struct {
	kind  string
	attrs map[string]string
	text  string
}

// document is the parsed, validated figure: a shape list plus its
// coordinate system.
type document struct {
	minX, minY    float64
	width, height float64
	shapes        []shape
}

const (
	defaultViewWidth  = 200.0
	defaultViewHeight = 150.0
)

// parseSVG validates and flattens constrained SVG text.
func parseSVG(data []byte) (*document, error) {
	var root svgNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	if !strings.EqualFold(root.XMLName.Local, "svg") {
		return nil, fmt.Errorf("root element is <%s>, not <svg>", root.XMLName.Local)
	}

	doc := &document{width: defaultViewWidth, height: defaultViewHeight}
	doc.readViewBox(root)

	if err := collectShapes(root.Nodes, &doc.shapes); err != nil {
		return nil, err
	}
	if len(doc.shapes) == 0 {
		return nil, fmt.Errorf("svg has no drawable content")
	}
	return doc, nil
}

func (d *document) readViewBox(root svgNode) {
	if vb := attrValue(root.Attrs, "viewBox"); vb != "" {
		parts := strings.FieldsFunc(vb, func(r rune) bool { return r == ' ' || r == ',' })
		if len(parts) == 4 {
			minX, err1 := strconv.ParseFloat(parts[0], 64)
			minY, err2 := strconv.ParseFloat(parts[1], 64)
			w, err3 := strconv.ParseFloat(parts[2], 64)
			h, err4 := strconv.ParseFloat(parts[3], 64)
			if err1 == nil && err2 == nil && err3 == nil && err4 == nil && w > 0 && h > 0 {
				d.minX, d.minY, d.width, d.height = minX, minY, w, h
				return
			}
		}
	}
	if w := parseLength(attrValue(root.Attrs, "width")); w > 0 {
		d.width = w
	}
	if h := parseLength(attrValue(root.Attrs, "height")); h > 0 {
		d.height = h
	}
}

func collectShapes(nodes []svgNode, out *[]shape) error {
	for _, n := range nodes {
		name := strings.ToLower(n.XMLName.Local)
		if forbiddenElements[name] {
			return fmt.Errorf("forbidden element <%s>", name)
		}
		if !allowedElements[name] {
			continue
		}
		attrs := make(map[string]string, len(n.Attrs))
		for _, a := range n.Attrs {
			key := strings.ToLower(a.Name.Local)
			if key == "href" {
				return fmt.Errorf("external reference on <%s>", name)
			}
			if strings.HasPrefix(key, "on") {
				return fmt.Errorf("event handler on <%s>", name)
			}
			attrs[key] = a.Value
		}
		if name == "g" || name == "svg" {
			if err := collectShapes(n.Nodes, out); err != nil {
				return err
			}
			continue
		}
		*out = append(*out, shape{kind: name, attrs: attrs, text: strings.TrimSpace(n.Text)})
	}
	return nil
}

func attrValue(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if strings.EqualFold(a.Name.Local, name) {
			return a.Value
		}
	}
	return ""
}

// parseLength reads a numeric attribute, tolerating a px suffix.
func parseLength(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func (s shape) float(name string, fallback float64) float64 {
	v, ok := s.attrs[name]
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fallback
	}
	return f
}

// points parses a polygon/polyline coordinate list.
func (s shape) points() []point {
	fields := strings.FieldsFunc(s.attrs["points"], func(r rune) bool {
		return r == ' ' || r == ',' || r == '\n' || r == '\t'
	})
	if len(fields) < 4 {
		return nil
	}
	pts := make([]point, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		x, err1 := strconv.ParseFloat(fields[i], 64)
		y, err2 := strconv.ParseFloat(fields[i+1], 64)
		if err1 != nil || err2 != nil {
			return nil
		}
		pts = append(pts, point{x, y})
	}
	return pts
}

type point struct {
	x, y float64
}

// pathSeg is one absolute path operation: M and L carry one point,
// Q two, C three, Z none.
type pathSeg struct {
	op  byte
	pts []point
}

// parsePath scans the restricted path grammar: M, L, H, V, C, Q and Z
// in both cases with implicit repetition. Arcs and smooth shorthands
// are out of vocabulary and fail the parse.
func parsePath(d string) ([]pathSeg, error) {
	var segs []pathSeg
	var cur, start point
	i := 0
	var cmd byte

	skip := func() {
		for i < len(d) && (d[i] == ' ' || d[i] == ',' || d[i] == '\n' || d[i] == '\t' || d[i] == '\r') {
			i++
		}
	}

	number := func() (float64, error) {
		skip()
		j := i
		if j < len(d) && (d[j] == '+' || d[j] == '-') {
			j++
		}
		for j < len(d) && (d[j] >= '0' && d[j] <= '9' || d[j] == '.') {
			j++
		}
		if j < len(d) && (d[j] == 'e' || d[j] == 'E') {
			j++
			if j < len(d) && (d[j] == '+' || d[j] == '-') {
				j++
			}
			for j < len(d) && d[j] >= '0' && d[j] <= '9' {
				j++
			}
		}
		if j == i {
			return 0, fmt.Errorf("expected number at %q", d[i:])
		}
		v, err := strconv.ParseFloat(d[i:j], 64)
		if err != nil {
			return 0, err
		}
		i = j
		return v, nil
	}

	pair := func(rel bool) (point, error) {
		x, err := number()
		if err != nil {
			return point{}, err
		}
		y, err := number()
		if err != nil {
			return point{}, err
		}
		if rel {
			return point{cur.x + x, cur.y + y}, nil
		}
		return point{x, y}, nil
	}

	for {
		skip()
		if i >= len(d) {
			return segs, nil
		}
		c := d[i]
		if c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' {
			cmd = c
			i++
			skip()
		} else if cmd == 0 {
			return nil, fmt.Errorf("path does not start with a command")
		} else if cmd == 'Z' || cmd == 'z' {
			return nil, fmt.Errorf("coordinates after close at %q", d[i:])
		} else if cmd == 'M' {
			cmd = 'L' // implicit lineto after a moveto
		} else if cmd == 'm' {
			cmd = 'l'
		}

		rel := cmd >= 'a'
		switch cmd {
		case 'M', 'm':
			p, err := pair(rel)
			if err != nil {
				return nil, err
			}
			cur, start = p, p
			segs = append(segs, pathSeg{op: 'M', pts: []point{p}})
		case 'L', 'l':
			p, err := pair(rel)
			if err != nil {
				return nil, err
			}
			cur = p
			segs = append(segs, pathSeg{op: 'L', pts: []point{p}})
		case 'H', 'h':
			x, err := number()
			if err != nil {
				return nil, err
			}
			if rel {
				x += cur.x
			}
			cur = point{x, cur.y}
			segs = append(segs, pathSeg{op: 'L', pts: []point{cur}})
		case 'V', 'v':
			y, err := number()
			if err != nil {
				return nil, err
			}
			if rel {
				y += cur.y
			}
			cur = point{cur.x, y}
			segs = append(segs, pathSeg{op: 'L', pts: []point{cur}})
		case 'C', 'c':
			p1, err := pair(rel)
			if err != nil {
				return nil, err
			}
			p2, err := pair(rel)
			if err != nil {
				return nil, err
			}
			p, err := pair(rel)
			if err != nil {
				return nil, err
			}
			cur = p
			segs = append(segs, pathSeg{op: 'C', pts: []point{p1, p2, p}})
		case 'Q', 'q':
			p1, err := pair(rel)
			if err != nil {
				return nil, err
			}
			p, err := pair(rel)
			if err != nil {
				return nil, err
			}
			cur = p
			segs = append(segs, pathSeg{op: 'Q', pts: []point{p1, p}})
		case 'Z', 'z':
			cur = start
			segs = append(segs, pathSeg{op: 'Z'})
		default:
			return nil, fmt.Errorf("unsupported path command %q", string(cmd))
		}
	}
}
