// Package metrics measures conservation diagnostics over a recorded
// trajectory. A good integrator keeps total energy and momentum nearly
// constant; drift in either is a sign of a step size that is too large.
package metrics

import (
	"math"

	"github.com/san-kum/orbview/internal/trajectory"
	"gonum.org/v1/gonum/spatial/r3"
)

// G is the gravitational constant in SI units.
const G = 6.674e-11

// Metric observes records one at a time and summarizes them.
type Metric interface {
	Name() string
	Observe(rec trajectory.TimestepRecord)
	Value() float64
	Reset()
}

// Evaluate runs every metric over traj from the first frame.
func Evaluate(traj *trajectory.Trajectory, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for _, rec := range traj.Records {
			m.Observe(rec)
		}
		out[m.Name()] = m.Value()
	}
	return out
}

// Kinetic is the total kinetic energy of rec.
func Kinetic(rec trajectory.TimestepRecord) float64 {
	ke := 0.0
	for _, b := range rec.Bodies {
		ke += 0.5 * b.Mass * r3.Dot(b.Velocity, b.Velocity)
	}
	return ke
}

// Potential is the pairwise gravitational energy of rec. Coincident bodies
// are skipped.
func Potential(rec trajectory.TimestepRecord) float64 {
	pe := 0.0
	for i := range rec.Bodies {
		for j := i + 1; j < len(rec.Bodies); j++ {
			r := r3.Norm(r3.Sub(rec.Bodies[j].Position, rec.Bodies[i].Position))
			if r == 0 {
				continue
			}
			pe -= G * rec.Bodies[i].Mass * rec.Bodies[j].Mass / r
		}
	}
	return pe
}

func TotalEnergy(rec trajectory.TimestepRecord) float64 {
	return Kinetic(rec) + Potential(rec)
}

// Momentum is the total linear momentum of rec.
func Momentum(rec trajectory.TimestepRecord) r3.Vec {
	var p r3.Vec
	for _, b := range rec.Bodies {
		p = r3.Add(p, r3.Scale(b.Mass, b.Velocity))
	}
	return p
}

// Energy is the mean total energy over the observed records.
type Energy struct {
	totalEnergy float64
	samples     int
}

func NewEnergy() *Energy { return &Energy{} }

func (e *Energy) Name() string { return "energy" }

func (e *Energy) Observe(rec trajectory.TimestepRecord) {
	e.totalEnergy += TotalEnergy(rec)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative change of total energy from the first
// observed record.
type EnergyDrift struct {
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift { return &EnergyDrift{} }

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(rec trajectory.TimestepRecord) {
	energy := TotalEnergy(rec)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift is the largest change of total momentum from the first
// observed record, relative to the largest single-body momentum there.
type MomentumDrift struct {
	initial  r3.Vec
	scale    float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift { return &MomentumDrift{} }

func (m *MomentumDrift) Name() string { return "momentum_drift" }

func (m *MomentumDrift) Observe(rec trajectory.TimestepRecord) {
	p := Momentum(rec)
	if m.samples == 0 {
		m.initial = p
		for _, b := range rec.Bodies {
			m.scale = math.Max(m.scale, b.Mass*b.Speed())
		}
	}
	m.samples++

	if m.scale != 0 {
		m.maxDrift = math.Max(m.maxDrift, r3.Norm(r3.Sub(p, m.initial))/m.scale)
	}
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() { *m = MomentumDrift{} }
