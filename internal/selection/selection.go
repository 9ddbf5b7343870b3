// Package selection tracks the highlighted body and derives what the
// inspection panel shows for it.
package selection

import (
	"github.com/san-kum/orbview/internal/trajectory"
	"gonum.org/v1/gonum/spatial/r3"
)

// Info is the inspection view of one body in one frame.
type Info struct {
	Index    int
	Name     string
	Mass     float64
	Position r3.Vec
	Velocity r3.Vec
	Speed    float64
}

// Describe returns body i of rec, or false when i is out of range.
func Describe(rec trajectory.TimestepRecord, i int) (Info, bool) {
	if i < 0 || i >= len(rec.Bodies) {
		return Info{}, false
	}
	b := rec.Bodies[i]
	return Info{
		Index:    i,
		Name:     b.Name,
		Mass:     b.Mass,
		Position: b.Position,
		Velocity: b.Velocity,
		Speed:    b.Speed(),
	}, true
}

// Selection holds the optional selected body index. The zero value has
// nothing selected.
type Selection struct {
	index int
	set   bool
}

func (s *Selection) Select(i int) {
	if i < 0 {
		s.Clear()
		return
	}
	s.index, s.set = i, true
}

func (s *Selection) Clear() {
	s.index, s.set = 0, false
}

// Index returns the selected index and whether one is set.
func (s *Selection) Index() (int, bool) {
	return s.index, s.set
}

// Target is the selected index, or -1 when nothing is selected.
func (s *Selection) Target() int {
	if !s.set {
		return -1
	}
	return s.index
}

// Info describes the selected body in rec. An index that rec does not have
// clears the selection.
func (s *Selection) Info(rec trajectory.TimestepRecord) (Info, bool) {
	if !s.set {
		return Info{}, false
	}
	info, ok := Describe(rec, s.index)
	if !ok {
		s.Clear()
	}
	return info, ok
}
