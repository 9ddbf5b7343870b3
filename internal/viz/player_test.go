package viz

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/orbview/internal/playback"
	"github.com/san-kum/orbview/internal/storage"
	"github.com/san-kum/orbview/internal/trajectory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sunEarth = `# Step 0, Time: 0 s
Name Mass Px Py Pz Vx Vy Vz
Sun 1.989e30 0 0 0 0 0 0
Earth 5.972e24 1.496e11 0 0 0 29780 0
# Step 1, Time: 86400 s
Name Mass Px Py Pz Vx Vy Vz
Sun 1.989e30 0 0 0 0 0 0
Earth 5.972e24 1.495e11 2500000 0 0 29700 0
# Step 2, Time: 172800 s
Name Mass Px Py Pz Vx Vy Vz
Sun 1.989e30 0 0 0 0 0 0
Earth 5.972e24 1.494e11 5000000 0 0 29600 0
`

func newPlayer(t *testing.T, opts Options) *Player {
	t.Helper()
	traj, err := trajectory.ParseString(sunEarth)
	require.NoError(t, err)
	return NewPlayer(traj, opts)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (p *Player) fire(timer playback.Timer) {
	p.Update(tickMsg{timer: timer, gen: p.sched.gen[timer]})
}

func TestPlayerPlaysOnTicks(t *testing.T) {
	p := newPlayer(t, Options{})

	_, cmd := p.Update(key(" "))
	assert.NotNil(t, cmd, "play should schedule a tick")
	assert.Equal(t, playback.Running, p.Session().View().State)

	p.fire(playback.TickTimer)
	assert.Equal(t, 1, p.Session().View().Frame)

	p.fire(playback.TickTimer)
	v := p.Session().View()
	assert.Equal(t, 2, v.Frame)
	assert.Equal(t, playback.Stopped, v.State)

	_, cmd = p.Update(tickMsg{timer: playback.TickTimer, gen: p.sched.gen[playback.TickTimer]})
	assert.Nil(t, cmd, "no rearm after stop")
}

func TestPlayerDropsStaleTicks(t *testing.T) {
	p := newPlayer(t, Options{})
	p.Update(key(" "))
	stale := tickMsg{timer: playback.TickTimer, gen: p.sched.gen[playback.TickTimer]}

	p.Update(key(" "))
	p.Update(key(" "))
	p.Update(stale)
	assert.Equal(t, 0, p.Session().View().Frame)
}

func TestPlayerSpeedKeys(t *testing.T) {
	p := newPlayer(t, Options{})

	p.Update(key("<"))
	assert.Equal(t, 40*time.Millisecond, p.Session().View().Interval)

	p.Update(key("0"))
	for i := 0; i < 20; i++ {
		p.Update(key(">"))
	}
	assert.Equal(t, time.Millisecond, p.Session().View().Interval)

	p.Update(key("}"))
	p.Update(key("}"))
	p.Update(key("{"))
	assert.Equal(t, 2, p.Session().View().SkipRate)
}

func TestPlayerSkipToggle(t *testing.T) {
	p := newPlayer(t, Options{})

	p.Update(key("]"))
	assert.Equal(t, playback.Forward, p.Session().View().Skipping)
	p.fire(playback.SkipTimer)
	assert.Equal(t, 2, p.Session().View().Frame)

	p.Update(key("]"))
	assert.Equal(t, playback.Direction(0), p.Session().View().Skipping)

	p.Update(key("["))
	p.Update(key("esc"))
	assert.Equal(t, playback.Direction(0), p.Session().View().Skipping)
}

func TestPlayerSelection(t *testing.T) {
	p := newPlayer(t, Options{})

	p.Update(key("tab"))
	p.Update(key("enter"))
	v := p.Session().View()
	require.True(t, v.HasInfo)
	assert.Equal(t, "Earth", v.Selected.Name)
	assert.Equal(t, 1.496e11, v.Camera.Center.X)

	out := p.View()
	assert.Contains(t, out, "EARTH")
	assert.Contains(t, out, "5.972e+24 kg")

	p.Update(key("esc"))
	assert.False(t, p.Session().View().HasInfo)
}

func TestPlayerFollowOption(t *testing.T) {
	p := newPlayer(t, Options{Follow: "Earth", History: 10})
	p.Update(key("G"))
	v := p.Session().View()
	assert.Equal(t, 2, v.Frame)
	assert.Equal(t, 1.494e11, v.Camera.Center.X)
	assert.Contains(t, p.View(), "speed m/s")
}

func TestPlayerBookmark(t *testing.T) {
	st := storage.New(t.TempDir())
	require.NoError(t, st.Init())
	p := newPlayer(t, Options{Source: "sun-earth.txt", Store: st})

	p.Update(key("l"))
	p.Update(key("m"))
	assert.Contains(t, p.View(), "bookmark ")

	marks, err := st.List()
	require.NoError(t, err)
	require.Len(t, marks, 1)
	assert.Equal(t, 1, marks[0].Frame)
	assert.Equal(t, "sun-earth.txt", marks[0].Source)

	p = newPlayer(t, Options{})
	p.Update(key("m"))
	assert.Contains(t, p.View(), "bookmarks disabled")
}

func TestPlayerViewAndQuit(t *testing.T) {
	p := newPlayer(t, Options{Source: "sun-earth.txt"})
	p.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	out := p.View()
	assert.Contains(t, out, "STOPPED")
	assert.Contains(t, out, "Sun")
	assert.Contains(t, out, "0/2")

	p.Update(key("?"))
	assert.Contains(t, p.View(), "toggle help")

	_, cmd := p.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestPlayerAutoplay(t *testing.T) {
	p := newPlayer(t, Options{Autoplay: true})
	assert.NotNil(t, p.Init())
	assert.Equal(t, playback.Running, p.Session().View().State)
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "30 s", FormatTime(30))
	assert.Equal(t, "8.64e+04 s (1.00 d)", FormatTime(86400))
	assert.Equal(t, "7200 s (2.00 h)", FormatTime(7200))
}

func TestListWindow(t *testing.T) {
	from, to := listWindow(3, 2, 8)
	assert.Equal(t, [2]int{0, 3}, [2]int{from, to})
	from, to = listWindow(20, 19, 8)
	assert.Equal(t, [2]int{12, 20}, [2]int{from, to})
	from, to = listWindow(20, 10, 8)
	assert.Equal(t, [2]int{6, 14}, [2]int{from, to})
}
