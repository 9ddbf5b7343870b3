// Package export writes rendered player frames and body tracks as SVG.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/orbview/internal/trajectory"
	"github.com/san-kum/orbview/internal/viz"
)

const (
	background = "#0a0a14"
	defaultInk = "#c0caf5"
)

// Braille dot-to-bit mapping
var pixelMap = [4][2]int{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// CanvasToSVG converts a braille canvas to SVG, one circle per lit dot,
// grouped by cell color. scale is the size of one sub-pixel.
func CanvasToSVG(w io.Writer, canvas *viz.Canvas, scale float64) error {
	if canvas == nil {
		return fmt.Errorf("export: nil canvas")
	}
	pw, ph := canvas.PixelSize()
	width, height := float64(pw)*scale, float64(ph)*scale

	groups := make(map[string]*strings.Builder)
	var order []string
	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			pattern := int(canvas.Grid[row][col] - 0x2800)
			if pattern <= 0 {
				continue
			}
			fill := string(canvas.Colors[row][col])
			if fill == "" {
				fill = defaultInk
			}
			g, ok := groups[fill]
			if !ok {
				g = &strings.Builder{}
				groups[fill] = g
				order = append(order, fill)
			}

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						fmt.Fprintf(g, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
					}
				}
			}
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
	for _, fill := range order {
		fmt.Fprintf(&sb, "<g fill=\"%s\">\n%s</g>\n", fill, groups[fill].String())
	}
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// TrackToSVG draws the XY track of body i as a path, scaled to fit.
func TrackToSVG(w io.Writer, traj *trajectory.Trajectory, i, width, height int, strokeColor string) error {
	track := traj.Track(i)
	if len(track) < 2 {
		return fmt.Errorf("export: body %d has %d points, need 2", i, len(track))
	}

	// Find bounds
	minX, maxX := track[0].Position.X, track[0].Position.X
	minY, maxY := track[0].Position.Y, track[0].Position.Y
	for _, b := range track {
		minX, maxX = min(minX, b.Position.X), max(maxX, b.Position.X)
		minY, maxY = min(minY, b.Position.Y), max(maxY, b.Position.Y)
	}

	// Square the view so orbits keep their shape, then pad.
	span := max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	span *= 1.2
	minX, minY = cx-span/2, cy-span/2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, strokeColor)

	for j, b := range track {
		x := (b.Position.X - minX) / span * float64(width)
		y := float64(height) - (b.Position.Y-minY)/span*float64(height)
		if j == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
