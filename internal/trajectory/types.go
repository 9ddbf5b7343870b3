package trajectory

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// BodyState is one body at one instant. Mass is in kg, position in m and
// velocity in m/s.
type BodyState struct {
	Name     string
	Mass     float64
	Position r3.Vec
	Velocity r3.Vec
}

// Speed returns the Euclidean norm of the body's velocity.
func (b BodyState) Speed() float64 { return r3.Norm(b.Velocity) }

// TimestepRecord holds every body at one recorded instant.
type TimestepRecord struct {
	Step   int
	Time   float64
	Bodies []BodyState
}

// Trajectory is the ordered list of records read from one dump.
type Trajectory struct {
	Records []TimestepRecord
}

func (t *Trajectory) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Frame returns record i, clamping i into [0, Len()-1]. An empty trajectory
// yields the zero record.
func (t *Trajectory) Frame(i int) TimestepRecord {
	n := t.Len()
	if n == 0 {
		return TimestepRecord{}
	}
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	return t.Records[i]
}

// BodyCount is the number of bodies in the first record.
func (t *Trajectory) BodyCount() int {
	if t.Len() == 0 {
		return 0
	}
	return len(t.Records[0].Bodies)
}

// Names lists the body names of the first record in encounter order.
func (t *Trajectory) Names() []string {
	if t.Len() == 0 {
		return nil
	}
	names := make([]string, len(t.Records[0].Bodies))
	for i, b := range t.Records[0].Bodies {
		names[i] = b.Name
	}
	return names
}

// IndexOf returns the index of the first body called name, or -1.
func (t *Trajectory) IndexOf(name string) int {
	for i, n := range t.Names() {
		if n == name {
			return i
		}
	}
	return -1
}

// Track collects body i across every record. Records that do not carry the
// body are skipped.
func (t *Trajectory) Track(i int) []BodyState {
	track := make([]BodyState, 0, t.Len())
	for _, rec := range t.Records {
		if i >= 0 && i < len(rec.Bodies) {
			track = append(track, rec.Bodies[i])
		}
	}
	return track
}

// Duration is the time spanned between the first and last record.
func (t *Trajectory) Duration() float64 {
	if t.Len() < 2 {
		return 0
	}
	return t.Records[len(t.Records)-1].Time - t.Records[0].Time
}

// PlaceholderName is the name given to bodies invented by Backfill.
func PlaceholderName(i int) string { return fmt.Sprintf("body-%d", i) }

// Backfill pads every record to the width of the widest one so that a body
// index is always addressable. Padded bodies get a placeholder name, unit mass
// and zero vectors. This keeps rendering possible on ragged dumps; it does not
// make the data correct. It returns how many bodies were invented.
func (t *Trajectory) Backfill() int {
	width := 0
	for _, rec := range t.Records {
		width = max(width, len(rec.Bodies))
	}

	padded := 0
	for r := range t.Records {
		rec := &t.Records[r]
		for i := len(rec.Bodies); i < width; i++ {
			rec.Bodies = append(rec.Bodies, BodyState{Name: PlaceholderName(i), Mass: 1})
			padded++
		}
		for i := range rec.Bodies {
			if rec.Bodies[i].Name == "" {
				rec.Bodies[i].Name = PlaceholderName(i)
			}
		}
	}
	return padded
}
