// Package session wires the player components around one trajectory.
//
// A [Session] owns the playback, camera and selection state and is the only
// place they change. Every input arrives as a [Command] through
// [Session.Dispatch]; renderers read immutable [View] snapshots. A Session is
// not safe for concurrent use: drive it from one goroutine, either a UI event
// loop or a [Loop].
package session

import (
	"io"
	"log"
	"time"

	"github.com/san-kum/orbview/internal/camera"
	"github.com/san-kum/orbview/internal/classify"
	"github.com/san-kum/orbview/internal/playback"
	"github.com/san-kum/orbview/internal/selection"
	"github.com/san-kum/orbview/internal/trajectory"
	"gonum.org/v1/gonum/spatial/r3"
)

// BodyView is one body as drawn in the current frame.
type BodyView struct {
	Name     string
	Position r3.Vec
	Class    classify.Class
}

// View is a snapshot of everything a renderer needs.
type View struct {
	Frame      int
	FrameCount int
	Step       int
	Time       float64
	State      playback.State
	Interval   time.Duration
	SkipRate   int
	Skipping   playback.Direction
	Camera     camera.State
	Bodies     []BodyView
	Selected   selection.Info
	HasInfo    bool
}

type options struct {
	logger   *log.Logger
	interval time.Duration
	skipRate int
}

type Option func(*options)

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithInterval sets the initial tick period.
func WithInterval(d time.Duration) Option {
	return func(o *options) { o.interval = d }
}

func WithSkipRate(n int) Option {
	return func(o *options) { o.skipRate = n }
}

// Session is the single owner of player state.
type Session struct {
	traj    *trajectory.Trajectory
	classes *classify.Classifier
	player  *playback.Controller
	cam     *camera.Controller
	sel     selection.Selection
	logger  *log.Logger

	info    selection.Info
	hasInfo bool
}

// New builds a session over traj. sched receives the playback timers; its
// fires must come back as Fired commands on the same goroutine.
func New(traj *trajectory.Trajectory, sched playback.Scheduler, opts ...Option) *Session {
	o := options{
		logger:   log.New(io.Discard, "", 0),
		interval: playback.DefaultInterval,
		skipRate: 1,
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		traj:    traj,
		classes: classify.NewClassifier(),
		player: playback.New(traj.Len(), sched,
			playback.WithInterval(o.interval),
			playback.WithSkipRate(o.skipRate)),
		cam:    camera.New(),
		logger: o.logger,
	}

	first := traj.Frame(0)
	s.classes.Warm(first)
	s.cam.AutoFrame(first)
	s.player.Subscribe(s.onFrame)
	return s
}

func (s *Session) Trajectory() *trajectory.Trajectory { return s.traj }
func (s *Session) Classifier() *classify.Classifier   { return s.classes }
func (s *Session) Playback() *playback.Controller     { return s.player }
func (s *Session) Camera() *camera.Controller         { return s.cam }

// Current is the record at the playback position.
func (s *Session) Current() trajectory.TimestepRecord {
	return s.traj.Frame(s.player.Current())
}

// onFrame runs after every frame change: the camera follows the selection and
// the inspection info is refreshed.
func (s *Session) onFrame(frame int) {
	rec := s.traj.Frame(frame)
	s.cam.Recompute(rec, s.sel.Target(), nil)
	s.refreshInfo(rec)
}

func (s *Session) refreshInfo(rec trajectory.TimestepRecord) {
	s.info, s.hasInfo = s.sel.Info(rec)
}

// Dispatch applies one command.
func (s *Session) Dispatch(cmd Command) {
	switch cmd.Kind {
	case CmdPlay:
		if !s.player.Play() {
			s.logger.Printf("session: play ignored (state=%s frames=%d)", s.player.State(), s.player.FrameCount())
		}
	case CmdStop:
		s.player.Stop()
	case CmdRestart:
		s.player.Restart()
	case CmdSetSpeed:
		s.player.SetSpeed(cmd.Value)
	case CmdResetSpeed:
		s.player.ResetSpeed()
	case CmdSetSkipRate:
		s.player.SetSkipRate(cmd.Value)
	case CmdBeginSkip:
		s.player.BeginSkip(cmd.Dir)
	case CmdEndSkip:
		s.player.EndSkip()
	case CmdSeek:
		s.player.Seek(cmd.Value)
	case CmdSelect:
		s.sel.Select(cmd.Value)
		rec := s.Current()
		s.refreshInfo(rec)
		if s.hasInfo {
			s.cam.Follow(rec, cmd.Value)
		}
	case CmdClear:
		s.sel.Clear()
		s.info, s.hasInfo = selection.Info{}, false
	case CmdNavigate:
		s.cam.Navigate(cmd.Nudge)
	case CmdOrbit:
		s.cam.Orbit(cmd.Azimuth, cmd.Elevation)
	case CmdZoom:
		s.cam.Zoom(cmd.Factor)
	case CmdFired:
		s.player.Fire(cmd.Timer)
	default:
		s.logger.Printf("session: unknown command %s", cmd)
		return
	}
	if cmd.Kind != CmdFired {
		s.logger.Printf("session: %s -> frame %d %s", cmd, s.player.Current(), s.player.State())
	}
}

// Selected returns the inspection info of the selected body.
func (s *Session) Selected() (selection.Info, bool) {
	return s.info, s.hasInfo
}

// View snapshots the session for rendering.
func (s *Session) View() View {
	rec := s.Current()
	bodies := make([]BodyView, len(rec.Bodies))
	for i, b := range rec.Bodies {
		bodies[i] = BodyView{Name: b.Name, Position: b.Position, Class: s.classes.Class(b)}
	}
	return View{
		Frame:      s.player.Current(),
		FrameCount: s.player.FrameCount(),
		Step:       rec.Step,
		Time:       rec.Time,
		State:      s.player.State(),
		Interval:   s.player.Interval(),
		SkipRate:   s.player.SkipRate(),
		Skipping:   s.player.Skipping(),
		Camera:     s.cam.State(),
		Bodies:     bodies,
		Selected:   s.info,
		HasInfo:    s.hasInfo,
	}
}
