package session

import (
	"context"
	"time"

	"github.com/san-kum/orbview/internal/playback"
	"github.com/san-kum/orbview/internal/trajectory"
)

type fire struct {
	timer playback.Timer
	gen   uint64
}

// tickerScheduler backs playback timers with time.Tickers. Start and Cancel
// are only called from the loop goroutine; the ticker goroutines just post
// generation-tagged fires, and fires from a cancelled generation are dropped
// by the loop.
type tickerScheduler struct {
	fires chan<- fire
	gen   map[playback.Timer]uint64
	stops map[playback.Timer]chan struct{}
}

func newTickerScheduler(fires chan<- fire) *tickerScheduler {
	return &tickerScheduler{
		fires: fires,
		gen:   make(map[playback.Timer]uint64),
		stops: make(map[playback.Timer]chan struct{}),
	}
}

func (ts *tickerScheduler) Start(t playback.Timer, period time.Duration) {
	ts.Cancel(t)
	stop := make(chan struct{})
	ts.stops[t] = stop
	g := ts.gen[t]

	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case ts.fires <- fire{timer: t, gen: g}:
				case <-stop:
					return
				}
			}
		}
	}()
}

func (ts *tickerScheduler) Cancel(t playback.Timer) {
	if stop, ok := ts.stops[t]; ok {
		close(stop)
		delete(ts.stops, t)
	}
	ts.gen[t]++
}

func (ts *tickerScheduler) current(f fire) bool {
	_, armed := ts.stops[f.timer]
	return armed && ts.gen[f.timer] == f.gen
}

func (ts *tickerScheduler) cancelAll() {
	for t := range ts.stops {
		ts.Cancel(t)
	}
}

// event is a submitted command or a query; exactly one field is set.
type event struct {
	cmd   *Command
	query func(*Session)
}

// Loop runs a Session on its own goroutine. Commands, timer fires and
// queries are serialized through Run, so at most one of them touches the
// session at a time. Commands and queries keep their submission order.
type Loop struct {
	sess   *Session
	sched  *tickerScheduler
	events chan event
	fires  chan fire
}

func NewLoop(traj *trajectory.Trajectory, opts ...Option) *Loop {
	fires := make(chan fire, 16)
	sched := newTickerScheduler(fires)
	return &Loop{
		sess:   New(traj, sched, opts...),
		sched:  sched,
		events: make(chan event, 64),
		fires:  fires,
	}
}

// Run processes events until ctx is done. All timers are cancelled on exit.
func (l *Loop) Run(ctx context.Context) error {
	defer l.sched.cancelAll()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-l.events:
			if ev.cmd != nil {
				l.sess.Dispatch(*ev.cmd)
			} else {
				ev.query(l.sess)
			}
		case f := <-l.fires:
			if l.sched.current(f) {
				l.sess.Dispatch(Fired(f.timer))
			}
		}
	}
}

// Submit queues cmd for the loop.
func (l *Loop) Submit(ctx context.Context, cmd Command) error {
	select {
	case l.events <- event{cmd: &cmd}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the loop goroutine and waits for it.
func (l *Loop) Do(ctx context.Context, fn func(*Session)) error {
	done := make(chan struct{})
	wrapped := func(s *Session) {
		fn(s)
		close(done)
	}
	select {
	case l.events <- event{query: wrapped}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the current View, read on the loop goroutine.
func (l *Loop) Snapshot(ctx context.Context) (View, error) {
	var v View
	err := l.Do(ctx, func(s *Session) { v = s.View() })
	return v, err
}
