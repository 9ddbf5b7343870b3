package viz

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/orbview/internal/playback"
)

// tickMsg is a playback timer fire delivered through the Bubble Tea loop.
type tickMsg struct {
	timer playback.Timer
	gen   uint64
}

// teaScheduler runs playback timers as tea.Tick commands. Every Start or
// Cancel bumps the timer generation, so ticks already in flight for an older
// generation are recognised as stale and dropped by the player.
type teaScheduler struct {
	gen     map[playback.Timer]uint64
	periods map[playback.Timer]time.Duration
	pending []tea.Cmd
}

func newTeaScheduler() *teaScheduler {
	return &teaScheduler{
		gen:     make(map[playback.Timer]uint64),
		periods: make(map[playback.Timer]time.Duration),
	}
}

func (s *teaScheduler) Start(t playback.Timer, period time.Duration) {
	s.gen[t]++
	s.periods[t] = period
	s.pending = append(s.pending, s.tick(t))
}

func (s *teaScheduler) Cancel(t playback.Timer) {
	s.gen[t]++
	delete(s.periods, t)
}

func (s *teaScheduler) current(m tickMsg) bool {
	_, armed := s.periods[m.timer]
	return armed && s.gen[m.timer] == m.gen
}

// rearm schedules the next fire of m's timer unless it was cancelled or
// restarted while handling m.
func (s *teaScheduler) rearm(m tickMsg) {
	if s.current(m) {
		s.pending = append(s.pending, s.tick(m.timer))
	}
}

func (s *teaScheduler) tick(t playback.Timer) tea.Cmd {
	gen := s.gen[t]
	return tea.Tick(s.periods[t], func(time.Time) tea.Msg {
		return tickMsg{timer: t, gen: gen}
	})
}

// drain returns the commands queued since the last call.
func (s *teaScheduler) drain() tea.Cmd {
	if len(s.pending) == 0 {
		return nil
	}
	cmds := s.pending
	s.pending = nil
	return tea.Batch(cmds...)
}
