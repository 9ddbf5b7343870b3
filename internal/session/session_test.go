package session_test

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbview/internal/camera"
	"github.com/san-kum/orbview/internal/classify"
	"github.com/san-kum/orbview/internal/playback"
	"github.com/san-kum/orbview/internal/session"
	"github.com/san-kum/orbview/internal/trajectory"
	"gonum.org/v1/gonum/spatial/r3"
)

const sunEarth = `# Step 0, Time: 0 s
Name Mass Px Py Pz Vx Vy Vz
Sun 1.989e30 0 0 0 0 0 0
Earth 5.972e24 1.496e11 0 0 0 29780 0
# Step 1, Time: 86400 s
Name Mass Px Py Pz Vx Vy Vz
Sun 1.989e30 0 0 0 0 0 0
Earth 5.972e24 1.495e11 2500000 0 0 29700 0
`

// linear builds n frames of two bodies, the second moving along +X.
func linear(n int) *trajectory.Trajectory {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "# Step %d, Time: %d s\n", i, i*10)
		b.WriteString("Name Mass Px Py Pz Vx Vy Vz\n")
		b.WriteString("Star 2e30 0 0 0 0 0 0\n")
		fmt.Fprintf(&b, "Rock 1e12 %d 0 0 1 0 0\n", i+1)
	}
	traj, err := trajectory.ParseString(b.String())
	Expect(err).NotTo(HaveOccurred())
	return traj
}

var _ = Describe("Session", func() {
	var (
		sched *playback.ManualScheduler
		sess  *session.Session
	)

	fire := func(t playback.Timer) {
		if sched.Active(t) {
			sess.Dispatch(session.Fired(t))
		}
	}

	Context("with the Sun/Earth dump", func() {
		BeforeEach(func() {
			traj, err := trajectory.ParseString(sunEarth)
			Expect(err).NotTo(HaveOccurred())
			sched = playback.NewManualScheduler()
			sess = session.New(traj, sched)
		})

		It("classifies every body once at load", func() {
			Expect(sess.Classifier().Len()).To(Equal(2))
			v := sess.View()
			Expect(v.Bodies).To(HaveLen(2))
			Expect(v.Bodies[0].Class).To(Equal(classify.Star))
			Expect(v.Bodies[1].Class).To(Equal(classify.Planet))
		})

		It("auto frames the first record", func() {
			cam := sess.View().Camera
			Expect(cam.Center.X).To(BeNumerically("~", 0.748e11, 1))
			Expect(cam.Distance).To(BeNumerically("~", 2.244e11, 1))
		})

		It("inspects Earth on the second frame", func() {
			sess.Dispatch(session.Seek(1))
			sess.Dispatch(session.Select(1))

			info, ok := sess.Selected()
			Expect(ok).To(BeTrue())
			Expect(info.Name).To(Equal("Earth"))
			Expect(info.Mass).To(Equal(5.972e24))
			Expect(info.Velocity).To(Equal(r3.Vec{Y: 29700}))
			Expect(info.Speed).To(Equal(29700.0))
		})

		It("drops an out of range selection", func() {
			sess.Dispatch(session.Select(9))
			_, ok := sess.Selected()
			Expect(ok).To(BeFalse())
			Expect(sess.View().HasInfo).To(BeFalse())
		})
	})

	Context("with a moving body", func() {
		BeforeEach(func() {
			sched = playback.NewManualScheduler()
			sess = session.New(linear(10), sched, session.WithSkipRate(2), session.WithInterval(50*time.Millisecond))
		})

		It("plays to the end and stops", func() {
			sess.Dispatch(session.Play())
			Expect(sched.Periods[playback.TickTimer]).To(Equal(50 * time.Millisecond))
			for i := 0; i < 10; i++ {
				fire(playback.TickTimer)
			}
			v := sess.View()
			Expect(v.Frame).To(Equal(9))
			Expect(v.State).To(Equal(playback.Stopped))
			Expect(v.Time).To(Equal(90.0))
		})

		It("follows the selected body on every frame", func() {
			sess.Dispatch(session.Select(1))
			Expect(sess.View().Camera.Center).To(Equal(r3.Vec{X: 1}))

			sess.Dispatch(session.Play())
			fire(playback.TickTimer)
			Expect(sess.View().Camera.Center).To(Equal(r3.Vec{X: 3}))

			info, ok := sess.Selected()
			Expect(ok).To(BeTrue())
			Expect(info.Position).To(Equal(r3.Vec{X: 3}))
		})

		It("keeps the last center after the selection is cleared", func() {
			sess.Dispatch(session.Select(1))
			sess.Dispatch(session.Seek(4))
			sess.Dispatch(session.Clear())
			sess.Dispatch(session.Seek(8))
			Expect(sess.View().Camera.Center).To(Equal(r3.Vec{X: 5}))
			Expect(sess.View().HasInfo).To(BeFalse())
		})

		It("lets navigation override follow until the next frame", func() {
			sess.Dispatch(session.Select(1))
			before := sess.View().Camera
			sess.Dispatch(session.Navigate(camera.Nudge{Up: 1}))
			after := sess.View().Camera
			Expect(after.Center).NotTo(Equal(before.Center))

			sess.Dispatch(session.Seek(2))
			Expect(sess.View().Camera.Center).To(Equal(r3.Vec{X: 3}))
		})

		It("restarts without changing the run state", func() {
			sess.Dispatch(session.Play())
			fire(playback.TickTimer)
			sess.Dispatch(session.Restart())
			v := sess.View()
			Expect(v.Frame).To(Equal(0))
			Expect(v.State).To(Equal(playback.Running))
		})

		It("skips in steps of five while held", func() {
			sess.Dispatch(session.BeginSkip(playback.Forward))
			fire(playback.SkipTimer)
			Expect(sess.View().Skipping).To(Equal(playback.Forward))
			sess.Dispatch(session.EndSkip())
			fire(playback.SkipTimer)
			Expect(sess.View().Frame).To(Equal(5))
		})

		It("changes speed and skip rate", func() {
			sess.Dispatch(session.SetSpeed(200))
			sess.Dispatch(session.SetSkipRate(4))
			v := sess.View()
			Expect(v.Interval).To(Equal(200 * time.Millisecond))
			Expect(v.SkipRate).To(Equal(4))

			sess.Dispatch(session.ResetSpeed())
			Expect(sess.View().Interval).To(Equal(playback.DefaultInterval))
		})

		It("orbits and zooms the camera", func() {
			d := sess.View().Camera.Distance
			sess.Dispatch(session.Zoom(0.5))
			sess.Dispatch(session.Orbit(0.2, 0))
			cam := sess.View().Camera
			Expect(cam.Distance).To(BeNumerically("~", d/2, 1e-9))
			Expect(cam.Azimuth).NotTo(BeZero())
		})

		It("logs commands when given a logger", func() {
			var buf bytes.Buffer
			sess = session.New(linear(3), sched, session.WithLogger(log.New(&buf, "", 0)))
			sess.Dispatch(session.Play())
			sess.Dispatch(session.Command{Kind: session.CommandKind(99)})
			Expect(buf.String()).To(ContainSubstring("play -> frame 0 running"))
			Expect(buf.String()).To(ContainSubstring("unknown command command(99)"))
		})
	})

	It("survives an empty trajectory", func() {
		sched = playback.NewManualScheduler()
		sess = session.New(&trajectory.Trajectory{}, sched)
		sess.Dispatch(session.Play())
		sess.Dispatch(session.Restart())
		sess.Dispatch(session.Select(0))
		v := sess.View()
		Expect(v.State).To(Equal(playback.Stopped))
		Expect(v.Bodies).To(BeEmpty())
		Expect(v.HasInfo).To(BeFalse())
	})
})

var _ = Describe("Loop", func() {
	var (
		loop   *session.Loop
		ctx    context.Context
		cancel context.CancelFunc
		done   chan error
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		loop = session.NewLoop(linear(20), session.WithInterval(time.Millisecond))
		done = make(chan error, 1)
		go func() { done <- loop.Run(ctx) }()
	})

	AfterEach(func() {
		cancel()
		Eventually(done).Should(Receive(MatchError(context.Canceled)))
	})

	It("plays through the trajectory on real timers", func() {
		Expect(loop.Submit(ctx, session.Play())).To(Succeed())
		Eventually(func() playback.State {
			v, err := loop.Snapshot(ctx)
			Expect(err).NotTo(HaveOccurred())
			return v.State
		}).WithTimeout(2 * time.Second).Should(Equal(playback.Stopped))

		v, err := loop.Snapshot(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Frame).To(Equal(19))
	})

	It("does not advance after stop returns", func() {
		Expect(loop.Submit(ctx, session.SetSpeed(5))).To(Succeed())
		Expect(loop.Submit(ctx, session.Play())).To(Succeed())
		Expect(loop.Submit(ctx, session.Stop())).To(Succeed())

		first, err := loop.Snapshot(ctx)
		Expect(err).NotTo(HaveOccurred())
		Consistently(func() int {
			v, err := loop.Snapshot(ctx)
			Expect(err).NotTo(HaveOccurred())
			return v.Frame
		}).Within(50 * time.Millisecond).Should(Equal(first.Frame))
	})

	It("keeps submission order between commands and queries", func() {
		Expect(loop.Submit(ctx, session.Seek(7))).To(Succeed())
		v, err := loop.Snapshot(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Frame).To(Equal(7))
	})
})
