package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/orbview/internal/classify"
	"github.com/san-kum/orbview/internal/trajectory"
)

// ExportTrackCSV writes body i across every frame as CSV.
func ExportTrackCSV(w io.Writer, traj *trajectory.Trajectory, i int) error {
	if i < 0 || i >= traj.BodyCount() {
		return fmt.Errorf("storage: no body %d (trajectory has %d)", i, traj.BodyCount())
	}

	cw := csv.NewWriter(w)
	header := []string{"step", "time", "px", "py", "pz", "vx", "vy", "vz", "speed"}
	if err := cw.Write(header); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'e', 6, 64) }
	for _, rec := range traj.Records {
		if i >= len(rec.Bodies) {
			continue
		}
		b := rec.Bodies[i]
		row := []string{
			strconv.Itoa(rec.Step),
			format(rec.Time),
			format(b.Position.X), format(b.Position.Y), format(b.Position.Z),
			format(b.Velocity.X), format(b.Velocity.Y), format(b.Velocity.Z),
			format(b.Speed()),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type ExportBody struct {
	Name  string  `json:"name"`
	Mass  float64 `json:"mass"`
	Class string  `json:"class"`
	Color string  `json:"color"`
}

type ExportFrame struct {
	Step      int          `json:"step"`
	Time      float64      `json:"time"`
	Positions [][3]float64 `json:"positions"`
	Velocity  [][3]float64 `json:"velocities"`
}

type ExportData struct {
	Source string        `json:"source"`
	Frames int           `json:"frames"`
	Bodies []ExportBody  `json:"bodies"`
	Steps  []ExportFrame `json:"steps"`
}

// ExportJSON writes the whole trajectory with the body catalog of the first
// frame.
func ExportJSON(w io.Writer, source string, traj *trajectory.Trajectory) error {
	classes := classify.NewClassifier()
	data := ExportData{Source: source, Frames: traj.Len()}
	for _, b := range traj.Frame(0).Bodies {
		cls := classes.Class(b)
		data.Bodies = append(data.Bodies, ExportBody{Name: b.Name, Mass: b.Mass, Class: cls.String(), Color: cls.Hex()})
	}

	data.Steps = make([]ExportFrame, len(traj.Records))
	for i, rec := range traj.Records {
		f := ExportFrame{
			Step:      rec.Step,
			Time:      rec.Time,
			Positions: make([][3]float64, len(rec.Bodies)),
			Velocity:  make([][3]float64, len(rec.Bodies)),
		}
		for j, b := range rec.Bodies {
			f.Positions[j] = [3]float64{b.Position.X, b.Position.Y, b.Position.Z}
			f.Velocity[j] = [3]float64{b.Velocity.X, b.Velocity.Y, b.Velocity.Z}
		}
		data.Steps[i] = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
