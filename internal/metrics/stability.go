package metrics

import (
	"github.com/san-kum/orbview/internal/trajectory"
	"gonum.org/v1/gonum/spatial/r3"
)

// Bound is the fraction of records in which every body stays within radius
// of the system's center of mass. Ejected bodies pull it below 1.
type Bound struct {
	radius     float64
	violations int
	samples    int
}

func NewBound(radius float64) *Bound {
	return &Bound{radius: radius}
}

func (b *Bound) Name() string { return "bound" }

func (b *Bound) Observe(rec trajectory.TimestepRecord) {
	b.samples++
	com := CenterOfMass(rec)
	for _, body := range rec.Bodies {
		if r3.Norm(r3.Sub(body.Position, com)) > b.radius {
			b.violations++
			break
		}
	}
}

func (b *Bound) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bound) Reset() {
	b.violations = 0
	b.samples = 0
}

// CenterOfMass is the mass-weighted mean position of rec. Massless records
// fall back to the plain mean.
func CenterOfMass(rec trajectory.TimestepRecord) r3.Vec {
	var sum r3.Vec
	total := 0.0
	for _, b := range rec.Bodies {
		sum = r3.Add(sum, r3.Scale(b.Mass, b.Position))
		total += b.Mass
	}
	if total == 0 {
		if len(rec.Bodies) == 0 {
			return r3.Vec{}
		}
		for _, b := range rec.Bodies {
			sum = r3.Add(sum, b.Position)
		}
		return r3.Scale(1/float64(len(rec.Bodies)), sum)
	}
	return r3.Scale(1/total, sum)
}
