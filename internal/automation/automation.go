// Package automation runs scripted playback tours: a YAML list of player
// actions applied to a session loop, with waits between them.
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/san-kum/orbview/internal/camera"
	"github.com/san-kum/orbview/internal/playback"
	"github.com/san-kum/orbview/internal/session"
	"github.com/san-kum/orbview/internal/trajectory"
	"gopkg.in/yaml.v3"
)

// Scenario is a named tour through a trajectory.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is a single action in a scenario. Only the fields used by Action are
// read.
type Step struct {
	Action    string  `yaml:"action"`
	Frame     int     `yaml:"frame"`
	Body      string  `yaml:"body"`
	Ms        int     `yaml:"ms"`
	Rate      int     `yaml:"rate"`
	Direction int     `yaml:"direction"`
	Azimuth   float64 `yaml:"azimuth"`
	Elevation float64 `yaml:"elevation"`
	Factor    float64 `yaml:"factor"`
	Forward   float64 `yaml:"forward"`
	Right     float64 `yaml:"right"`
	Up        float64 `yaml:"up"`
	// For is the wait length; a wait without it lasts until playback stops
	// and is rejected while a skip is held.
	For  string `yaml:"for"`
	Name string `yaml:"name"`
}

// Actions that are not player commands.
const (
	ActionWait = "wait"
	ActionMark = "mark"
)

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Command maps a player action onto a session command.
func (s Step) Command(traj *trajectory.Trajectory) (session.Command, error) {
	switch s.Action {
	case "play":
		return session.Play(), nil
	case "stop":
		return session.Stop(), nil
	case "restart":
		return session.Restart(), nil
	case "speed":
		if s.Ms < playback.MinIntervalMs || s.Ms > playback.MaxIntervalMs {
			return session.Command{}, fmt.Errorf("speed %dms outside [%d, %d]", s.Ms, playback.MinIntervalMs, playback.MaxIntervalMs)
		}
		return session.SetSpeed(s.Ms), nil
	case "reset-speed":
		return session.ResetSpeed(), nil
	case "skip-rate":
		return session.SetSkipRate(s.Rate), nil
	case "skip":
		if s.Direction == 0 {
			return session.EndSkip(), nil
		}
		dir := playback.Forward
		if s.Direction < 0 {
			dir = playback.Backward
		}
		return session.BeginSkip(dir), nil
	case "seek":
		return session.Seek(s.Frame), nil
	case "select":
		i := traj.IndexOf(s.Body)
		if i < 0 {
			return session.Command{}, fmt.Errorf("unknown body %q", s.Body)
		}
		return session.Select(i), nil
	case "clear":
		return session.Clear(), nil
	case "orbit":
		return session.Orbit(s.Azimuth, s.Elevation), nil
	case "zoom":
		if s.Factor <= 0 {
			return session.Command{}, fmt.Errorf("zoom factor must be positive, got %g", s.Factor)
		}
		return session.Zoom(s.Factor), nil
	case "navigate":
		return session.Navigate(camera.Nudge{Forward: s.Forward, Right: s.Right, Up: s.Up}), nil
	default:
		return session.Command{}, fmt.Errorf("unknown action %q", s.Action)
	}
}

// Observer is told the view after every step.
type Observer func(i int, step Step, v session.View)

// Runner applies scenarios to a running loop.
type Runner struct {
	Loop *session.Loop
	Traj *trajectory.Trajectory
	// Poll is how often a wait without a duration checks for the stop.
	Poll time.Duration
	// OnStep and OnMark may be nil.
	OnStep Observer
	OnMark func(name string, v session.View) error
}

// Validate checks every step before anything is submitted.
func (r *Runner) Validate(scenario *Scenario) error {
	holding := false
	for i, step := range scenario.Steps {
		var err error
		switch step.Action {
		case ActionWait:
			if step.For != "" {
				_, err = time.ParseDuration(step.For)
			} else if holding {
				err = errors.New("wait without a duration while a skip is held never ends")
			}
		case ActionMark:
		case "skip":
			holding = step.Direction != 0
			_, err = step.Command(r.Traj)
		default:
			_, err = step.Command(r.Traj)
		}
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// Run executes all steps in a scenario and returns the view after each.
func (r *Runner) Run(ctx context.Context, scenario *Scenario) ([]session.View, error) {
	if err := r.Validate(scenario); err != nil {
		return nil, err
	}
	poll := r.Poll
	if poll <= 0 {
		poll = 10 * time.Millisecond
	}

	views := make([]session.View, 0, len(scenario.Steps))
	for i, step := range scenario.Steps {
		var err error
		switch step.Action {
		case ActionWait:
			err = r.wait(ctx, step, poll)
		case ActionMark:
			if r.OnMark != nil {
				var v session.View
				if v, err = r.Loop.Snapshot(ctx); err == nil {
					err = r.OnMark(step.Name, v)
				}
			}
		default:
			cmd, _ := step.Command(r.Traj)
			err = r.Loop.Submit(ctx, cmd)
		}
		if err != nil {
			return views, fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
		}

		v, err := r.Loop.Snapshot(ctx)
		if err != nil {
			return views, fmt.Errorf("step %d: %w", i+1, err)
		}
		views = append(views, v)
		if r.OnStep != nil {
			r.OnStep(i, step, v)
		}
	}
	return views, nil
}

func (r *Runner) wait(ctx context.Context, step Step, poll time.Duration) error {
	if step.For != "" {
		d, _ := time.ParseDuration(step.For)
		select {
		case <-time.After(d):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		v, err := r.Loop.Snapshot(ctx)
		if err != nil {
			return err
		}
		if v.State == playback.Stopped && v.Skipping == 0 {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
