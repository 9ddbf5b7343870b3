package playback_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbview/internal/playback"
)

var _ = Describe("Controller", func() {
	var (
		sched  *playback.ManualScheduler
		ctrl   *playback.Controller
		frames []int
	)

	newController := func(n int, opts ...playback.Option) {
		sched = playback.NewManualScheduler()
		ctrl = playback.New(n, sched, opts...)
		frames = nil
		ctrl.Subscribe(func(f int) { frames = append(frames, f) })
	}

	BeforeEach(func() {
		newController(5)
	})

	It("starts stopped at frame zero", func() {
		Expect(ctrl.State()).To(Equal(playback.Stopped))
		Expect(ctrl.Current()).To(Equal(0))
		Expect(ctrl.Interval()).To(Equal(playback.DefaultInterval))
		Expect(ctrl.SkipRate()).To(Equal(1))
	})

	Describe("Play", func() {
		It("arms the tick timer with the frame interval", func() {
			Expect(ctrl.Play()).To(BeTrue())
			Expect(ctrl.Running()).To(BeTrue())
			Expect(sched.Periods).To(HaveKeyWithValue(playback.TickTimer, playback.DefaultInterval))
		})

		It("refuses an empty trajectory", func() {
			newController(0)
			Expect(ctrl.Play()).To(BeFalse())
			Expect(ctrl.State()).To(Equal(playback.Stopped))
			Expect(sched.Active(playback.TickTimer)).To(BeFalse())
		})

		It("does not re-arm when already running", func() {
			ctrl.Play()
			Expect(ctrl.Play()).To(BeFalse())
			Expect(sched.Starts[playback.TickTimer]).To(Equal(1))
		})
	})

	Describe("Tick", func() {
		It("produces [2,4,4] over three timer fires", func() {
			newController(5, playback.WithSkipRate(2))
			ctrl.Play()

			var seen []int
			for i := 0; i < 3; i++ {
				ctrl.Tick()
				seen = append(seen, ctrl.Current())
			}
			Expect(seen).To(Equal([]int{2, 4, 4}))
			Expect(ctrl.State()).To(Equal(playback.Stopped))
			Expect(sched.Active(playback.TickTimer)).To(BeFalse())
			Expect(frames).To(Equal([]int{2, 4}))
		})

		It("clamps an overshoot to the last frame", func() {
			newController(4, playback.WithSkipRate(10))
			ctrl.Play()
			ctrl.Tick()
			Expect(ctrl.Current()).To(Equal(3))
			Expect(ctrl.Running()).To(BeFalse())
		})

		It("ignores fires while stopped", func() {
			ctrl.Tick()
			Expect(ctrl.Current()).To(Equal(0))
			Expect(frames).To(BeEmpty())
		})
	})

	Describe("Stop", func() {
		It("cancels the tick timer", func() {
			ctrl.Play()
			ctrl.Stop()
			Expect(ctrl.State()).To(Equal(playback.Stopped))
			Expect(sched.Active(playback.TickTimer)).To(BeFalse())
			Expect(sched.Fire(ctrl, playback.TickTimer)).To(BeFalse())
		})

		It("is a no-op when already stopped", func() {
			ctrl.Stop()
			ctrl.Stop()
			Expect(sched.Cancels[playback.TickTimer]).To(Equal(0))
			Expect(ctrl.State()).To(Equal(playback.Stopped))
		})
	})

	Describe("Restart", func() {
		It("rewinds a stopped controller with one notification", func() {
			ctrl.Seek(3)
			frames = nil
			ctrl.Restart()
			Expect(ctrl.Current()).To(Equal(0))
			Expect(ctrl.State()).To(Equal(playback.Stopped))
			Expect(frames).To(Equal([]int{0}))
		})

		It("keeps a running controller running", func() {
			ctrl.Play()
			ctrl.Tick()
			ctrl.Tick()
			frames = nil
			ctrl.Restart()
			Expect(ctrl.Current()).To(Equal(0))
			Expect(ctrl.Running()).To(BeTrue())
			Expect(frames).To(HaveLen(1))
		})
	})

	Describe("SetSpeed", func() {
		It("re-arms a running timer without moving the frame", func() {
			ctrl.Play()
			ctrl.Tick()
			ctrl.SetSpeed(120)
			Expect(ctrl.Current()).To(Equal(1))
			Expect(sched.Periods[playback.TickTimer]).To(Equal(120 * time.Millisecond))
		})

		It("only records the interval while stopped", func() {
			ctrl.SetSpeed(250)
			Expect(ctrl.Interval()).To(Equal(250 * time.Millisecond))
			Expect(sched.Active(playback.TickTimer)).To(BeFalse())
			ctrl.Play()
			Expect(sched.Periods[playback.TickTimer]).To(Equal(250 * time.Millisecond))
		})

		It("resets to the default interval", func() {
			ctrl.SetSpeed(400)
			ctrl.ResetSpeed()
			Expect(ctrl.Interval()).To(Equal(playback.DefaultInterval))
		})
	})

	Describe("skip controls", func() {
		BeforeEach(func() {
			newController(20, playback.WithSkipRate(3))
		})

		It("moves five frames per skip fire regardless of skip rate", func() {
			ctrl.BeginSkip(playback.Forward)
			Expect(sched.Periods).To(HaveKeyWithValue(playback.SkipTimer, playback.SkipPeriod))
			sched.Fire(ctrl, playback.SkipTimer)
			sched.Fire(ctrl, playback.SkipTimer)
			Expect(ctrl.Current()).To(Equal(10))
			Expect(ctrl.State()).To(Equal(playback.Stopped))
		})

		It("clamps at both ends", func() {
			ctrl.BeginSkip(playback.Forward)
			for i := 0; i < 10; i++ {
				sched.Fire(ctrl, playback.SkipTimer)
			}
			Expect(ctrl.Current()).To(Equal(19))

			ctrl.EndSkip()
			ctrl.BeginSkip(playback.Backward)
			for i := 0; i < 10; i++ {
				sched.Fire(ctrl, playback.SkipTimer)
			}
			Expect(ctrl.Current()).To(Equal(0))
		})

		It("stops immediately on release", func() {
			ctrl.BeginSkip(playback.Forward)
			sched.Fire(ctrl, playback.SkipTimer)
			ctrl.EndSkip()
			Expect(sched.Fire(ctrl, playback.SkipTimer)).To(BeFalse())
			ctrl.SkipStep()
			Expect(ctrl.Current()).To(Equal(5))
			Expect(ctrl.Skipping()).To(BeZero())
		})

		It("runs alongside playback without changing its state", func() {
			ctrl.Play()
			ctrl.BeginSkip(playback.Forward)
			sched.Fire(ctrl, playback.SkipTimer)
			sched.Fire(ctrl, playback.TickTimer)
			Expect(ctrl.Current()).To(Equal(8))
			Expect(ctrl.Running()).To(BeTrue())
		})
	})

	Describe("Seek", func() {
		It("clamps and keeps the run state", func() {
			ctrl.Play()
			ctrl.Seek(99)
			Expect(ctrl.Current()).To(Equal(4))
			Expect(ctrl.Running()).To(BeTrue())
			ctrl.Seek(-2)
			Expect(ctrl.Current()).To(Equal(0))
			Expect(frames).To(Equal([]int{4, 0}))
		})
	})
})
