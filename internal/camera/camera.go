// Package camera keeps the view transform of the trajectory player.
//
// The camera orbits a center point at a distance, oriented by azimuth and
// elevation around a fixed up axis. Three things move the center: auto
// framing on load, follow mode (snap to the followed body every frame) and
// manual navigation. The latest update wins; nothing is blended.
package camera

import (
	"math"

	"github.com/san-kum/orbview/internal/trajectory"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// NavStep is the fraction of the distance moved per navigation input.
	NavStep = 0.1
	// FrameFactor scales the farthest body distance when auto framing.
	FrameFactor = 3.0

	maxElevation = math.Pi/2 - 0.01
	minDistance  = 1e-9
	nearFactor   = 1e-3
)

// State is a snapshot of the view parameters.
type State struct {
	Center    r3.Vec
	Distance  float64
	Up        r3.Vec
	Azimuth   float64
	Elevation float64
	FOV       float64
}

// Nudge is one manual navigation input, in steps along the camera basis.
type Nudge struct {
	Forward, Right, Up float64
}

// Controller owns the camera state.
type Controller struct {
	state State
}

func New() *Controller {
	return &Controller{state: State{
		Distance:  1,
		Up:        r3.Vec{Z: 1},
		Azimuth:   -math.Pi / 2,
		Elevation: math.Pi / 6,
		FOV:       math.Pi / 4,
	}}
}

func (c *Controller) State() State { return c.state }

// AutoFrame centers on the mean body position of rec and backs off to
// FrameFactor times the farthest body, so every body is in view.
func (c *Controller) AutoFrame(rec trajectory.TimestepRecord) {
	if len(rec.Bodies) == 0 {
		return
	}
	var sum r3.Vec
	for _, b := range rec.Bodies {
		sum = r3.Add(sum, b.Position)
	}
	center := r3.Scale(1/float64(len(rec.Bodies)), sum)

	far := 0.0
	for _, b := range rec.Bodies {
		far = math.Max(far, r3.Norm(r3.Sub(b.Position, center)))
	}

	c.state.Center = center
	c.state.Distance = FrameFactor * far
	if c.state.Distance < minDistance {
		c.state.Distance = 1
	}
}

// Follow snaps the center to body i of rec. Out of range indices are ignored.
func (c *Controller) Follow(rec trajectory.TimestepRecord, i int) bool {
	if i < 0 || i >= len(rec.Bodies) {
		return false
	}
	c.state.Center = rec.Bodies[i].Position
	return true
}

// Navigate translates the center along the camera basis by NavStep of the
// distance per step.
func (c *Controller) Navigate(n Nudge) {
	fwd, right, up := c.Basis()
	step := c.state.Distance * NavStep
	delta := r3.Add(r3.Add(r3.Scale(n.Forward*step, fwd), r3.Scale(n.Right*step, right)), r3.Scale(n.Up*step, up))
	c.state.Center = r3.Add(c.state.Center, delta)
}

// Recompute applies the per-frame camera update: follow target (negative
// means none), then an optional navigation input.
func (c *Controller) Recompute(rec trajectory.TimestepRecord, target int, nudge *Nudge) {
	if target >= 0 {
		c.Follow(rec, target)
	}
	if nudge != nil {
		c.Navigate(*nudge)
	}
}

// Orbit turns the view around the center.
func (c *Controller) Orbit(dAz, dEl float64) {
	c.state.Azimuth = math.Mod(c.state.Azimuth+dAz, 2*math.Pi)
	c.state.Elevation = math.Max(-maxElevation, math.Min(maxElevation, c.state.Elevation+dEl))
}

// Zoom multiplies the distance by factor. Non-positive results are ignored.
func (c *Controller) Zoom(factor float64) {
	if d := c.state.Distance * factor; d >= minDistance {
		c.state.Distance = d
	}
}

// Basis returns the unit forward, right and up vectors of the view.
func (c *Controller) Basis() (fwd, right, up r3.Vec) {
	return c.state.Basis()
}

// Eye is the camera position in world space.
func (c *Controller) Eye() r3.Vec { return c.state.Eye() }

// Basis returns the unit forward, right and up vectors of the view.
func (s State) Basis() (fwd, right, up r3.Vec) {
	cosEl := math.Cos(s.Elevation)
	toEye := r3.Vec{
		X: cosEl * math.Cos(s.Azimuth),
		Y: cosEl * math.Sin(s.Azimuth),
		Z: math.Sin(s.Elevation),
	}
	fwd = r3.Scale(-1, toEye)
	right = r3.Unit(r3.Cross(fwd, s.Up))
	up = r3.Cross(right, fwd)
	return fwd, right, up
}

// Eye is the camera position in world space.
func (s State) Eye() r3.Vec {
	fwd, _, _ := s.Basis()
	return r3.Sub(s.Center, r3.Scale(s.Distance, fwd))
}

// Near is the depth below which points are treated as behind the camera.
func (s State) Near() float64 { return s.Distance * nearFactor }

// Project maps p onto a w by h pixel grid. It reports false for points
// behind the camera or off screen.
func (s State) Project(p r3.Vec, w, h int) (x, y int, depth float64, ok bool) {
	fwd, right, up := s.Basis()
	rel := r3.Sub(p, s.Eye())
	depth = r3.Dot(rel, fwd)
	if depth <= s.Near() {
		return 0, 0, depth, false
	}
	focal := 1 / math.Tan(s.FOV/2)
	scale := focal * float64(min(w, h)) / 2
	x = w/2 + int(r3.Dot(rel, right)/depth*scale)
	y = h/2 - int(r3.Dot(rel, up)/depth*scale)
	return x, y, depth, x >= 0 && x < w && y >= 0 && y < h
}
