// Package chart draws trajectory summaries: PNG orbit plots through
// gonum/plot and terminal graphs through asciigraph.
package chart

import (
	"fmt"
	"image/color"
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/orbview/internal/classify"
	"github.com/san-kum/orbview/internal/trajectory"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Quantity selects the series drawn for a body.
type Quantity string

const (
	Speed    Quantity = "speed"
	Distance Quantity = "distance"
	Altitude Quantity = "z"
)

// Series extracts q for body i across every frame. Distance is measured from
// the frame's first body, which is the primary in simulator dumps.
func Series(traj *trajectory.Trajectory, i int, q Quantity) ([]float64, error) {
	if i < 0 || i >= traj.BodyCount() {
		return nil, fmt.Errorf("chart: no body %d", i)
	}
	out := make([]float64, 0, traj.Len())
	for _, rec := range traj.Records {
		if i >= len(rec.Bodies) {
			continue
		}
		b := rec.Bodies[i]
		switch q {
		case Speed:
			out = append(out, b.Speed())
		case Distance:
			out = append(out, r3.Norm(r3.Sub(b.Position, rec.Bodies[0].Position)))
		case Altitude:
			out = append(out, b.Position.Z)
		default:
			return nil, fmt.Errorf("chart: unknown quantity %q", q)
		}
	}
	return out, nil
}

// Downsample keeps at most n evenly spaced points of data.
func Downsample(data []float64, n int) []float64 {
	if n <= 0 || len(data) <= n {
		return data
	}
	if n == 1 {
		return data[len(data)-1:]
	}
	out := make([]float64, n)
	stride := float64(len(data)-1) / float64(n-1)
	for i := range out {
		out[i] = data[int(math.Round(float64(i)*stride))]
	}
	return out
}

// ASCII renders data as a terminal line graph.
func ASCII(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(Downsample(data, width),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

var (
	background = color.RGBA{R: 10, G: 10, B: 20, A: 255}
	foreground = color.RGBA{R: 200, G: 200, B: 210, A: 255}
)

// Orbits plots the XY track of every body, colored by class, and saves it to
// path. The file type follows the extension.
func Orbits(traj *trajectory.Trajectory, title, path string) error {
	if traj.Len() == 0 {
		return fmt.Errorf("chart: empty trajectory")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	darken(p)
	p.Add(plotter.NewGrid())

	classes := classify.NewClassifier()
	for i, b := range traj.Frame(0).Bodies {
		track := traj.Track(i)
		pts := make(plotter.XYs, len(track))
		for j, s := range track {
			pts[j] = plotter.XY{X: s.Position.X, Y: s.Position.Y}
		}
		col := classes.Class(b).RGBA()

		if len(pts) > 1 {
			line, err := plotter.NewLine(pts)
			if err != nil {
				return fmt.Errorf("chart: %s track: %w", b.Name, err)
			}
			line.Color = col
			line.Width = vg.Points(1)
			p.Add(line)
		}

		last, err := plotter.NewScatter(pts[len(pts)-1:])
		if err != nil {
			return fmt.Errorf("chart: %s marker: %w", b.Name, err)
		}
		last.GlyphStyle.Color = col
		last.GlyphStyle.Radius = vg.Points(3)
		p.Add(last)
		p.Legend.Add(b.Name, last)
	}

	return p.Save(10*vg.Inch, 10*vg.Inch, path)
}

func darken(p *plot.Plot) {
	p.BackgroundColor = background
	p.Title.TextStyle.Color = foreground
	p.Legend.TextStyle.Color = foreground
	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.Color = foreground
		ax.Label.TextStyle.Color = foreground
		ax.Tick.Color = foreground
		ax.Tick.Label.Color = foreground
	}
}
