package trajectory

import (
	"bufio"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	bodyFields   = 8
	timeKey      = "Time:"
	maxLineBytes = 1 << 20
)

// Parse reads a whole dump. Blank lines, "Name ..." column headers and other
// "#" comments are skipped; each "# Step ..., Time: T ..." header starts a new
// record. The last record does not need a terminator.
func Parse(r io.Reader) (*Trajectory, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	traj := &Trajectory{}
	var cur *TimestepRecord
	flush := func() {
		if cur != nil {
			traj.Records = append(traj.Records, *cur)
			cur = nil
		}
	}

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if isStepHeader(line) {
			t, err := parseTime(line)
			if err != nil {
				return nil, &FormatError{Line: lineNo, Text: line, Wrapped: err}
			}
			flush()
			cur = &TimestepRecord{Step: parseStep(line, len(traj.Records)), Time: t}
			continue
		}

		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "Name") {
			continue
		}

		body, err := parseBody(line)
		if err != nil {
			return nil, &FormatError{Line: lineNo, Text: line, Wrapped: err}
		}
		if cur == nil {
			cur = &TimestepRecord{Step: len(traj.Records)}
		}
		cur.Bodies = append(cur.Bodies, body)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()

	return traj, nil
}

// ParseString is Parse over an in-memory dump.
func ParseString(s string) (*Trajectory, error) {
	return Parse(strings.NewReader(s))
}

// Load parses the dump at path and backfills ragged records. Backfilled
// entries are reported to logger when it is non-nil.
func Load(path string, logger *log.Logger) (*Trajectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	traj, err := Parse(f)
	if err != nil {
		return nil, err
	}
	if n := traj.Backfill(); n > 0 && logger != nil {
		logger.Printf("trajectory: %s: backfilled %d missing body entries", path, n)
	}
	if logger != nil {
		logger.Printf("trajectory: loaded %s: %d frames, %d bodies", path, traj.Len(), traj.BodyCount())
	}
	return traj, nil
}

// isStepHeader matches "# Step ..." lines. A "# Step" line without a Time:
// field is still a header so that parseTime can reject it.
func isStepHeader(line string) bool {
	if !strings.HasPrefix(line, "#") {
		return false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	return strings.HasPrefix(rest, "Step")
}

func parseTime(line string) (float64, error) {
	idx := strings.Index(line, timeKey)
	if idx < 0 {
		return 0, ErrMissingTime
	}
	fields := strings.Fields(line[idx+len(timeKey):])
	if len(fields) == 0 {
		return 0, ErrMissingTime
	}
	return strconv.ParseFloat(strings.TrimSuffix(fields[0], ","), 64)
}

// parseStep reads N from "# Step N, ...", falling back when the header is
// unnumbered.
func parseStep(line string, fallback int) int {
	fields := strings.Fields(strings.TrimPrefix(line, "#"))
	if len(fields) < 2 {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSuffix(fields[1], ","))
	if err != nil {
		return fallback
	}
	return n
}

func parseBody(line string) (BodyState, error) {
	fields := strings.Fields(line)
	if len(fields) < bodyFields {
		return BodyState{}, ErrTooFewFields
	}

	var vals [bodyFields - 1]float64
	for i := range vals {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return BodyState{}, err
		}
		vals[i] = v
	}

	return BodyState{
		Name:     fields[0],
		Mass:     vals[0],
		Position: r3.Vec{X: vals[1], Y: vals[2], Z: vals[3]},
		Velocity: r3.Vec{X: vals[4], Y: vals[5], Z: vals[6]},
	}, nil
}
