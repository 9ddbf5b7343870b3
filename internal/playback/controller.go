package playback

import "time"

// Listener is told the new frame index after every frame change.
type Listener func(frame int)

// Controller plays a trajectory of a fixed number of frames.
type Controller struct {
	frames    int
	current   int
	state     State
	interval  time.Duration
	skipRate  int
	skipDir   Direction
	sched     Scheduler
	listeners []Listener
}

type Option func(*Controller)

// WithInterval sets the initial tick period.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) { c.interval = d }
}

// WithSkipRate sets how many frames one tick advances.
func WithSkipRate(n int) Option {
	return func(c *Controller) { c.skipRate = max(1, n) }
}

// New creates a Stopped controller at frame 0.
func New(frames int, sched Scheduler, opts ...Option) *Controller {
	c := &Controller{
		frames:   max(0, frames),
		interval: DefaultInterval,
		skipRate: 1,
		sched:    sched,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Current() int            { return c.current }
func (c *Controller) FrameCount() int         { return c.frames }
func (c *Controller) State() State            { return c.state }
func (c *Controller) Running() bool           { return c.state == Running }
func (c *Controller) Interval() time.Duration { return c.interval }
func (c *Controller) SkipRate() int           { return c.skipRate }
func (c *Controller) Skipping() Direction     { return c.skipDir }

// Subscribe registers fn for frame-advanced notifications.
func (c *Controller) Subscribe(fn Listener) {
	c.listeners = append(c.listeners, fn)
}

func (c *Controller) notify() {
	for _, fn := range c.listeners {
		fn(c.current)
	}
}

// Play starts the tick timer. It reports false when there is nothing to play
// or playback is already running.
func (c *Controller) Play() bool {
	if c.frames == 0 || c.state == Running {
		return false
	}
	c.state = Running
	c.sched.Start(TickTimer, c.interval)
	return true
}

// Stop cancels the tick timer. Stopping a stopped controller does nothing.
func (c *Controller) Stop() {
	if c.state != Running {
		return
	}
	c.state = Stopped
	c.sched.Cancel(TickTimer)
}

// Restart rewinds to frame 0 without changing the run state.
func (c *Controller) Restart() {
	c.current = 0
	c.notify()
}

// Tick is the tick timer callback. It advances by the skip rate and stops at
// the last frame; playback never loops. Ticks while Stopped are ignored.
func (c *Controller) Tick() {
	if c.state != Running {
		return
	}
	c.current += c.skipRate
	if last := c.frames - 1; c.current >= last {
		c.current = last
		c.Stop()
	}
	c.notify()
}

// SetSpeed changes the tick period without moving the frame. ms must be in
// [MinIntervalMs, MaxIntervalMs]; callers validate it.
func (c *Controller) SetSpeed(ms int) {
	c.interval = time.Duration(ms) * time.Millisecond
	if c.state == Running {
		c.sched.Start(TickTimer, c.interval)
	}
}

// ResetSpeed restores DefaultInterval.
func (c *Controller) ResetSpeed() {
	c.SetSpeed(int(DefaultInterval / time.Millisecond))
}

// SetSkipRate sets frames per tick; values below 1 become 1.
func (c *Controller) SetSkipRate(n int) {
	c.skipRate = max(1, n)
}

// BeginSkip starts moving SkipStride frames in dir every SkipPeriod until
// EndSkip. It works in either run state.
func (c *Controller) BeginSkip(dir Direction) {
	if dir != Forward && dir != Backward {
		return
	}
	c.skipDir = dir
	c.sched.Start(SkipTimer, SkipPeriod)
}

// EndSkip cancels the skip timer immediately.
func (c *Controller) EndSkip() {
	if c.skipDir == 0 {
		return
	}
	c.skipDir = 0
	c.sched.Cancel(SkipTimer)
}

// SkipStep is the skip timer callback.
func (c *Controller) SkipStep() {
	if c.skipDir == 0 || c.frames == 0 {
		return
	}
	c.current = c.clamp(c.current + int(c.skipDir)*SkipStride)
	c.notify()
}

// Seek jumps to frame, clamped into range. The run state is unchanged.
func (c *Controller) Seek(frame int) {
	if c.frames == 0 {
		return
	}
	c.current = c.clamp(frame)
	c.notify()
}

// Fire dispatches a scheduler fire to the matching callback.
func (c *Controller) Fire(t Timer) {
	switch t {
	case TickTimer:
		c.Tick()
	case SkipTimer:
		c.SkipStep()
	}
}

func (c *Controller) clamp(frame int) int {
	return min(max(frame, 0), c.frames-1)
}
