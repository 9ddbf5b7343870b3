package viz

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/orbview/internal/camera"
	"github.com/san-kum/orbview/internal/chart"
	"github.com/san-kum/orbview/internal/classify"
	"github.com/san-kum/orbview/internal/playback"
	"github.com/san-kum/orbview/internal/session"
	"github.com/san-kum/orbview/internal/storage"
	"github.com/san-kum/orbview/internal/trajectory"
)

const (
	speedStepMs = 10
	orbitStep   = 0.1
	zoomStep    = 1.2
	listRows    = 8
	graphWidth  = 18
	graphHeight = 4
)

// Options configure a Player.
type Options struct {
	Source   string
	Theme    string
	Width    int
	Height   int
	History  int
	Autoplay bool
	Follow   string
	// Store receives bookmarks; nil disables the bookmark key.
	Store *storage.Store
}

// Player is the Bubble Tea model of the trajectory viewer. All state changes
// go through its Session, so key presses and timer fires are applied one at
// a time in the order Bubble Tea delivers them.
type Player struct {
	sess   *session.Session
	sched  *teaScheduler
	canvas *Canvas
	scene  Scene
	theme  Theme
	styles styles
	opts   Options

	cursor   int
	showHelp bool
	status   string
	speeds   map[int][]float64
}

// NewPlayer builds a player over traj.
func NewPlayer(traj *trajectory.Trajectory, opts Options, sessOpts ...session.Option) *Player {
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 24
	}
	sched := newTeaScheduler()
	p := &Player{
		sess:   session.New(traj, sched, sessOpts...),
		sched:  sched,
		theme:  GetTheme(opts.Theme),
		opts:   opts,
		speeds: make(map[int][]float64),
	}
	p.styles = newStyles(p.theme)
	p.resize(opts.Width, opts.Height)

	if opts.Follow != "" {
		if i := traj.IndexOf(opts.Follow); i >= 0 {
			p.cursor = i
			p.sess.Dispatch(session.Select(i))
		}
	}
	return p
}

// Session exposes the player's session, for callers that script it.
func (p *Player) Session() *session.Session { return p.sess }

func (p *Player) Init() tea.Cmd {
	title := "orbview"
	if p.opts.Source != "" {
		title += " - " + p.opts.Source
	}
	if p.opts.Autoplay {
		p.sess.Dispatch(session.Play())
	}
	return tea.Batch(tea.SetWindowTitle(title), p.sched.drain())
}

// Update applies one message and returns the timer commands it produced.
func (p *Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if quit := p.handleKey(msg); quit {
			return p, tea.Quit
		}
	case tickMsg:
		if p.sched.current(msg) {
			p.sess.Dispatch(session.Fired(msg.timer))
			p.sched.rearm(msg)
		}
	}
	return p, p.sched.drain()
}

func (p *Player) resize(w, h int) {
	cw := w - sidebarWidth - 8
	ch := h - 3
	p.canvas = NewCanvas(max(cw, 10), max(ch, 5))
}

func (p *Player) handleKey(msg tea.KeyMsg) bool {
	v := p.sess.View()
	p.status = ""
	switch msg.String() {
	case "q", "ctrl+c":
		return true
	case " ":
		if v.State == playback.Running {
			p.sess.Dispatch(session.Stop())
		} else {
			p.sess.Dispatch(session.Play())
		}
	case "r":
		p.sess.Dispatch(session.Restart())
	case ">", ".":
		p.sess.Dispatch(session.SetSpeed(p.speedStep(v, -1)))
	case "<", ",":
		p.sess.Dispatch(session.SetSpeed(p.speedStep(v, 1)))
	case "0":
		p.sess.Dispatch(session.ResetSpeed())
	case "}":
		p.sess.Dispatch(session.SetSkipRate(v.SkipRate + 1))
	case "{":
		p.sess.Dispatch(session.SetSkipRate(max(v.SkipRate-1, 1)))
	case "]":
		p.toggleSkip(v, playback.Forward)
	case "[":
		p.toggleSkip(v, playback.Backward)
	case "right", "l":
		p.sess.Dispatch(session.Seek(v.Frame + v.SkipRate))
	case "left", "h":
		p.sess.Dispatch(session.Seek(v.Frame - v.SkipRate))
	case "home", "g":
		p.sess.Dispatch(session.Seek(0))
	case "end", "G":
		p.sess.Dispatch(session.Seek(v.FrameCount - 1))
	case "w":
		p.sess.Dispatch(session.Navigate(camera.Nudge{Forward: 1}))
	case "s":
		p.sess.Dispatch(session.Navigate(camera.Nudge{Forward: -1}))
	case "d":
		p.sess.Dispatch(session.Navigate(camera.Nudge{Right: 1}))
	case "a":
		p.sess.Dispatch(session.Navigate(camera.Nudge{Right: -1}))
	case "e", "pgup":
		p.sess.Dispatch(session.Navigate(camera.Nudge{Up: 1}))
	case "c", "pgdown":
		p.sess.Dispatch(session.Navigate(camera.Nudge{Up: -1}))
	case "x":
		p.sess.Dispatch(session.Orbit(orbitStep, 0))
	case "X":
		p.sess.Dispatch(session.Orbit(-orbitStep, 0))
	case "y":
		p.sess.Dispatch(session.Orbit(0, orbitStep))
	case "Y":
		p.sess.Dispatch(session.Orbit(0, -orbitStep))
	case "+", "=":
		p.sess.Dispatch(session.Zoom(1 / zoomStep))
	case "-", "_":
		p.sess.Dispatch(session.Zoom(zoomStep))
	case "tab", "down", "j":
		p.moveCursor(len(v.Bodies), 1)
	case "shift+tab", "up", "k":
		p.moveCursor(len(v.Bodies), -1)
	case "enter":
		p.sess.Dispatch(session.Select(p.cursor))
	case "esc":
		if v.Skipping != 0 {
			p.sess.Dispatch(session.EndSkip())
		} else {
			p.sess.Dispatch(session.Clear())
		}
	case "m":
		p.bookmark(v)
	case "t":
		p.theme = NextTheme(p.theme)
		p.styles = newStyles(p.theme)
	case "?":
		p.showHelp = !p.showHelp
	}
	return false
}

// speedStep returns the interval one step slower (dir 1) or faster (dir -1),
// kept inside the accepted range.
func (p *Player) speedStep(v session.View, dir int) int {
	ms := int(v.Interval.Milliseconds())
	step := speedStepMs
	if ms < speedStepMs || (ms == speedStepMs && dir < 0) {
		step = 1
	}
	return min(max(ms+dir*step, playback.MinIntervalMs), playback.MaxIntervalMs)
}

// toggleSkip stands in for key hold and release, which terminals do not
// report: the first press starts skipping, a second press stops it.
func (p *Player) toggleSkip(v session.View, dir playback.Direction) {
	if v.Skipping == dir {
		p.sess.Dispatch(session.EndSkip())
		return
	}
	p.sess.Dispatch(session.BeginSkip(dir))
}

func (p *Player) moveCursor(n, delta int) {
	if n == 0 {
		return
	}
	p.cursor = ((p.cursor+delta)%n + n) % n
}

func (p *Player) bookmark(v session.View) {
	if p.opts.Store == nil {
		p.status = "bookmarks disabled"
		return
	}
	id, err := p.opts.Store.Save(storage.FromView("", p.opts.Source, v))
	if err != nil {
		p.status = "bookmark failed: " + err.Error()
		return
	}
	p.status = "bookmark " + id[:8]
}

// View renders the canvas and the sidebar.
func (p *Player) View() string {
	v := p.sess.View()
	p.draw(v)
	main := lipgloss.JoinHorizontal(lipgloss.Top,
		p.styles.canvas.Render(p.canvas.String()),
		p.styles.sidebar.Render(p.sidebar(v)),
	)
	if p.showHelp {
		return p.styles.overlay.Render(helpText) + "\n" + main
	}
	return main
}

// Frame draws the current view and returns the canvas.
func (p *Player) Frame() *Canvas {
	p.draw(p.sess.View())
	return p.canvas
}

func (p *Player) draw(v session.View) {
	p.canvas.Clear()
	p.scene.Reset()
	traj := p.sess.Trajectory()

	p.scene.Axes(v.Camera.Center, v.Camera.Distance*0.15, p.theme.Grid)

	if p.opts.History > 1 {
		from := max(v.Frame-p.opts.History+1, 0)
		for i, b := range v.Bodies {
			col := lipgloss.Color(b.Class.Hex())
			prev := traj.Frame(from)
			for f := from + 1; f <= v.Frame; f++ {
				cur := traj.Frame(f)
				if i < len(prev.Bodies) && i < len(cur.Bodies) {
					p.scene.Line(prev.Bodies[i].Position, cur.Bodies[i].Position, col)
				}
				prev = cur
			}
		}
	}

	for _, b := range v.Bodies {
		p.scene.Point(b.Position, lipgloss.Color(b.Class.Hex()), bodyRadius(b.Class))
	}
	Render(p.canvas, &p.scene, v.Camera)

	if v.HasInfo {
		w, h := p.canvas.PixelSize()
		if x, y, _, ok := v.Camera.Project(v.Selected.Position, w, h); ok {
			p.canvas.Bracket(x, y, 4, p.theme.Accent)
		}
	}
}

func bodyRadius(c classify.Class) int {
	switch c {
	case classify.Star:
		return 2
	case classify.Planet:
		return 1
	default:
		return 0
	}
}

func (p *Player) sidebar(v session.View) string {
	st := p.styles
	var s strings.Builder

	title := "ORBVIEW"
	if p.opts.Source != "" {
		title += "  " + p.opts.Source
	}
	s.WriteString(st.header.Render(title) + "\n\n")

	status := st.stopped.Render("STOPPED")
	if v.State == playback.Running {
		status = st.running.Render("RUNNING")
	}
	switch v.Skipping {
	case playback.Forward:
		status += st.active.Render("  SKIP >>")
	case playback.Backward:
		status += st.active.Render("  SKIP <<")
	}
	s.WriteString(status + "\n")

	frac := 0.0
	if v.FrameCount > 1 {
		frac = float64(v.Frame) / float64(v.FrameCount-1)
	}
	s.WriteString(ProgressBar(frac, sidebarWidth-6, p.theme.Primary, p.theme.Grid) + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Frame", fmt.Sprintf("%d/%d", v.Frame, max(v.FrameCount-1, 0)))
	row("Step", fmt.Sprintf("%d", v.Step))
	row("Time", FormatTime(v.Time))
	row("Interval", fmt.Sprintf("%dms", v.Interval.Milliseconds()))
	row("Skip", fmt.Sprintf("x%d", v.SkipRate))
	s.WriteString("\n")

	s.WriteString(st.header.Render("BODIES") + "\n")
	from, to := listWindow(len(v.Bodies), p.cursor, listRows)
	for i := from; i < to; i++ {
		b := v.Bodies[i]
		glyph := lipgloss.NewStyle().Foreground(lipgloss.Color(b.Class.Hex())).Render(string(b.Class.Glyph()))
		line := fmt.Sprintf("%s %-14s %s", glyph, b.Name, st.muted.Render(b.Class.String()))
		switch {
		case v.HasInfo && v.Selected.Index == i:
			s.WriteString(st.active.Render("* ") + line + "\n")
		case i == p.cursor:
			s.WriteString(st.active.Render("> ") + line + "\n")
		default:
			s.WriteString("  " + line + "\n")
		}
	}
	if len(v.Bodies) > to-from {
		s.WriteString(st.muted.Render(fmt.Sprintf("  %d of %d", to-from, len(v.Bodies))) + "\n")
	}

	if v.HasInfo {
		info := v.Selected
		s.WriteString("\n" + st.header.Render(strings.ToUpper(info.Name)) + "\n")
		row("Mass", fmt.Sprintf("%.3e kg", info.Mass))
		row("Position", fmtVec(info.Position.X, info.Position.Y, info.Position.Z))
		row("Velocity", fmtVec(info.Velocity.X, info.Velocity.Y, info.Velocity.Z))
		row("Speed", fmt.Sprintf("%.4g m/s", info.Speed))
		if graph := p.speedGraph(info.Index, v.Frame); graph != "" {
			s.WriteString(st.graph.Render(graph) + "\n")
		}
	}

	if p.status != "" {
		s.WriteString("\n" + st.active.Render(p.status) + "\n")
	}
	s.WriteString(st.help.Render(Separator(sidebarWidth-6, p.theme.Muted) +
		"\nSP:Play R:Restart </>:Speed\n[ ]:Skip ENTER:Select ?:Help"))
	return s.String()
}

// speedGraph plots the speed of body i over the frames leading up to frame.
func (p *Player) speedGraph(i, frame int) string {
	series, ok := p.speeds[i]
	if !ok {
		series, _ = chart.Series(p.sess.Trajectory(), i, chart.Speed)
		p.speeds[i] = series
	}
	if frame >= len(series) {
		return ""
	}
	from := 0
	if p.opts.History > 0 {
		from = max(frame-p.opts.History+1, 0)
	}
	window := series[from : frame+1]
	if len(window) < 2 {
		return ""
	}
	return chart.ASCII(window, graphWidth, graphHeight, "speed m/s")
}

// listWindow picks the visible slice of an n-row list keeping cursor shown.
func listWindow(n, cursor, rows int) (int, int) {
	if n <= rows {
		return 0, n
	}
	from := min(max(cursor-rows/2, 0), n-rows)
	return from, from + rows
}

func fmtVec(x, y, z float64) string {
	return fmt.Sprintf("%.3g %.3g %.3g", x, y, z)
}

// FormatTime renders simulated seconds with a coarser unit alongside.
func FormatTime(sec float64) string {
	const (
		hour = 3600.0
		day  = 24 * hour
		year = 365.25 * day
	)
	a := math.Abs(sec)
	switch {
	case a >= year:
		return fmt.Sprintf("%.4g s (%.2f y)", sec, sec/year)
	case a >= day:
		return fmt.Sprintf("%.4g s (%.2f d)", sec, sec/day)
	case a >= hour:
		return fmt.Sprintf("%.4g s (%.2f h)", sec, sec/hour)
	default:
		return fmt.Sprintf("%.4g s", sec)
	}
}

const helpText = `KEYS
space      play / stop          r        restart
< >        slower / faster      0        reset speed
{ }        skip rate -/+        [ ]      hold skip back / fwd
left right step one tick        g G      first / last frame
w s a d    move fwd/back/left/right     e c  move up / down
x X y Y    orbit camera         + -      zoom in / out
tab enter  pick / select body   esc      end skip, clear selection
m          bookmark frame       t        cycle theme
?          toggle help          q        quit`

// Run starts the player full screen and blocks until it quits.
func Run(p *Player) error {
	_, err := tea.NewProgram(p, tea.WithAltScreen()).Run()
	return err
}
