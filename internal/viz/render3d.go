package viz

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/orbview/internal/camera"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mark is one scene primitive in world space: a segment, or a dot of the
// given sub-pixel radius when Start equals End.
type Mark struct {
	Start, End r3.Vec
	Color      lipgloss.Color
	Radius     int
}

// Scene collects marks for one frame.
type Scene struct{ Marks []Mark }

func (s *Scene) Line(a, b r3.Vec, col lipgloss.Color) {
	s.Marks = append(s.Marks, Mark{Start: a, End: b, Color: col})
}

func (s *Scene) Point(p r3.Vec, col lipgloss.Color, radius int) {
	s.Marks = append(s.Marks, Mark{Start: p, End: p, Color: col, Radius: radius})
}

func (s *Scene) Reset() { s.Marks = s.Marks[:0] }

type projected struct {
	x1, y1, x2, y2 int
	depth          float64
	mark           Mark
}

// Render draws the scene onto the canvas through cam, far marks first so
// nearer ones win the cell color.
func Render(c *Canvas, s *Scene, cam camera.State) {
	if c == nil || s == nil {
		return
	}
	w, h := c.PixelSize()
	limit := 4 * (w + h)
	near := cam.Near()

	proj := make([]projected, 0, len(s.Marks))
	for _, m := range s.Marks {
		x1, y1, d1, v1 := cam.Project(m.Start, w, h)
		x2, y2, d2, v2 := cam.Project(m.End, w, h)
		if d1 <= near || d2 <= near || !(v1 || v2) {
			continue
		}
		if absInt(x1) > limit || absInt(y1) > limit || absInt(x2) > limit || absInt(y2) > limit {
			continue
		}
		proj = append(proj, projected{x1, y1, x2, y2, (d1 + d2) / 2, m})
	}
	sort.SliceStable(proj, func(i, j int) bool { return proj[i].depth > proj[j].depth })

	for _, p := range proj {
		if p.x1 == p.x2 && p.y1 == p.y2 {
			c.Dot(p.x1, p.y1, p.mark.Radius, p.mark.Color)
		} else {
			c.DrawLine(p.x1, p.y1, p.x2, p.y2, p.mark.Color)
		}
	}
}

// Axes adds the world axes through origin, length l, in col.
func (s *Scene) Axes(origin r3.Vec, l float64, col lipgloss.Color) {
	s.Line(origin, r3.Add(origin, r3.Vec{X: l}), col)
	s.Line(origin, r3.Add(origin, r3.Vec{Y: l}), col)
	s.Line(origin, r3.Add(origin, r3.Vec{Z: l}), col)
}
