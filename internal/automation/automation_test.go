package automation

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/orbview/internal/playback"
	"github.com/san-kum/orbview/internal/session"
	"github.com/san-kum/orbview/internal/trajectory"
)

func linear(t *testing.T, n int) *trajectory.Trajectory {
	t.Helper()
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "# Step %d, Time: %d s\n", i, i*10)
		b.WriteString("Star 2e30 0 0 0 0 0 0\n")
		fmt.Fprintf(&b, "Rock 1e12 %d 0 0 1 0 0\n", i+1)
	}
	traj, err := trajectory.ParseString(b.String())
	if err != nil {
		t.Fatal(err)
	}
	return traj
}

const tour = `
name: rock flyby
steps:
  - action: select
    body: Rock
  - action: speed
    ms: 1
  - action: play
  - action: wait
  - action: mark
    name: end
  - action: seek
    frame: 3
  - action: zoom
    factor: 0.5
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(tour))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if sc.Name != "rock flyby" || len(sc.Steps) != 7 {
		t.Errorf("unexpected scenario %+v", sc)
	}

	if _, err := ParseScenario([]byte("name: empty\n")); err == nil {
		t.Error("expected error for scenario without steps")
	}
}

func TestStepCommand(t *testing.T) {
	traj := linear(t, 3)
	tests := []struct {
		step    Step
		want    session.CommandKind
		wantErr bool
	}{
		{Step{Action: "play"}, session.CmdPlay, false},
		{Step{Action: "select", Body: "Rock"}, session.CmdSelect, false},
		{Step{Action: "select", Body: "Moon"}, 0, true},
		{Step{Action: "speed", Ms: 100}, session.CmdSetSpeed, false},
		{Step{Action: "speed", Ms: 900}, 0, true},
		{Step{Action: "skip", Direction: -1}, session.CmdBeginSkip, false},
		{Step{Action: "skip"}, session.CmdEndSkip, false},
		{Step{Action: "zoom"}, 0, true},
		{Step{Action: "navigate", Up: 1}, session.CmdNavigate, false},
		{Step{Action: "teleport"}, 0, true},
	}
	for _, tt := range tests {
		cmd, err := tt.step.Command(traj)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: err=%v, wantErr %v", tt.step.Action, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && cmd.Kind != tt.want {
			t.Errorf("%s: got %s, want %s", tt.step.Action, cmd.Kind, tt.want)
		}
	}
}

func TestRunnerRun(t *testing.T) {
	traj := linear(t, 12)
	sc, err := ParseScenario([]byte(tour))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	loop := session.NewLoop(traj)
	go loop.Run(ctx)

	var marked []session.View
	steps := 0
	r := &Runner{
		Loop:   loop,
		Traj:   traj,
		Poll:   time.Millisecond,
		OnStep: func(int, Step, session.View) { steps++ },
		OnMark: func(name string, v session.View) error {
			if name != "end" {
				t.Errorf("unexpected mark %q", name)
			}
			marked = append(marked, v)
			return nil
		},
	}

	views, err := r.Run(ctx, sc)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(views) != 7 || steps != 7 {
		t.Fatalf("expected 7 views, got %d (%d observed)", len(views), steps)
	}
	if len(marked) != 1 || marked[0].Frame != 11 || marked[0].State != playback.Stopped {
		t.Errorf("expected mark at the last frame, got %+v", marked)
	}
	if !marked[0].HasInfo || marked[0].Selected.Name != "Rock" {
		t.Error("expected Rock to stay selected")
	}
	last := views[len(views)-1]
	if last.Frame != 3 {
		t.Errorf("expected frame 3 after seek, got %d", last.Frame)
	}
	if last.Camera.Distance >= views[5].Camera.Distance {
		t.Error("expected zoom to shrink the distance")
	}
}

func TestRunnerRejectsBadScenario(t *testing.T) {
	traj := linear(t, 3)
	r := &Runner{Traj: traj}
	err := r.Validate(&Scenario{Steps: []Step{{Action: "play"}, {Action: "wait", For: "soon"}}})
	if err == nil || !strings.Contains(err.Error(), "step 2") {
		t.Errorf("expected step 2 error, got %v", err)
	}
}

func TestRunnerRejectsOpenWaitWhileSkipping(t *testing.T) {
	r := &Runner{Traj: linear(t, 3)}

	held := &Scenario{Steps: []Step{
		{Action: "skip", Direction: 1},
		{Action: "wait"},
	}}
	err := r.Validate(held)
	if err == nil || !strings.Contains(err.Error(), "step 2") {
		t.Errorf("expected step 2 error, got %v", err)
	}

	released := &Scenario{Steps: []Step{
		{Action: "skip", Direction: 1},
		{Action: "wait", For: "5ms"},
		{Action: "skip"},
		{Action: "wait"},
	}}
	if err := r.Validate(released); err != nil {
		t.Errorf("expected released skip to validate, got %v", err)
	}
}
