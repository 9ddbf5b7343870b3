package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/orbview/internal/automation"
	"github.com/san-kum/orbview/internal/chart"
	"github.com/san-kum/orbview/internal/classify"
	"github.com/san-kum/orbview/internal/config"
	"github.com/san-kum/orbview/internal/export"
	"github.com/san-kum/orbview/internal/metrics"
	"github.com/san-kum/orbview/internal/playback"
	"github.com/san-kum/orbview/internal/session"
	"github.com/san-kum/orbview/internal/storage"
	"github.com/san-kum/orbview/internal/trajectory"
	"github.com/san-kum/orbview/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	dataDir    string
	configFile string
	preset     string
	intervalMs int
	skipRate   int
	theme      string
	logFile    string
	follow     string
	history    int
	autoplay   bool
	// track
	quantity    string
	graphWidth  int
	graphHeight int
	// orbit, snapshot, exports; shared, so every default is empty
	outFile string
	title   string
	// snapshot
	frame int
	scale float64
	// bookmarks
	deleteID string
)

// main registers the orbview commands and runs the player when the root
// command is given a file. It exits with status 1 if a command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:          "orbview [file]",
		Short:        "n-body trajectory player",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         runView,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "append diagnostics to this file")
	addPlaybackFlags(rootCmd)

	viewCmd := &cobra.Command{
		Use:   "view [file]",
		Short: "play a trajectory in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runView,
	}
	addPlaybackFlags(viewCmd)

	playCmd := &cobra.Command{
		Use:   "play [file]",
		Short: "play a trajectory headless, printing each frame",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPlay,
	}
	addPlaybackFlags(playCmd)

	infoCmd := &cobra.Command{
		Use:   "info [file]",
		Short: "summarize a trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInfo,
	}

	trackCmd := &cobra.Command{
		Use:   "track [file] [body]",
		Short: "graph one body over time",
		Args:  cobra.ExactArgs(2),
		RunE:  runTrack,
	}
	trackCmd.Flags().StringVar(&quantity, "quantity", string(chart.Speed), "speed, distance or z")
	trackCmd.Flags().IntVar(&graphWidth, "width", 70, "graph width")
	trackCmd.Flags().IntVar(&graphHeight, "height", 12, "graph height")

	orbitCmd := &cobra.Command{
		Use:   "orbit [file]",
		Short: "plot every track to a PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  runOrbit,
	}
	orbitCmd.Flags().StringVarP(&outFile, "out", "o", "", "output image (default orbits.png)")
	orbitCmd.Flags().StringVar(&title, "title", "", "plot title (defaults to the file name)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [file] [body]",
		Short: "export one body's track to CSV",
		Args:  cobra.ExactArgs(2),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [file]",
		Short: "export a trajectory to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	tourCmd := &cobra.Command{
		Use:   "tour [file] [scenario]",
		Short: "run a scripted playback scenario headless",
		Args:  cobra.ExactArgs(2),
		RunE:  runTour,
	}
	addPlaybackFlags(tourCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [file]",
		Short: "render one frame of the player to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  runSnapshot,
	}
	addPlaybackFlags(snapshotCmd)
	snapshotCmd.Flags().IntVar(&frame, "frame", 0, "frame to render")
	snapshotCmd.Flags().Float64Var(&scale, "scale", 4, "size of one braille dot")
	snapshotCmd.Flags().StringVarP(&outFile, "out", "o", "", "output image (default frame.svg)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [file] [body]",
		Short: "draw one body's XY track to SVG",
		Args:  cobra.ExactArgs(2),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	bookmarksCmd := &cobra.Command{
		Use:   "bookmarks",
		Short: "list saved bookmarks",
		RunE:  listBookmarks,
	}
	bookmarksCmd.Flags().StringVar(&deleteID, "delete", "", "delete the bookmark with this id")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list playback presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tINTERVAL\tSKIP\tAUTOPLAY")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%dms\t%d\t%v\n", name, p.IntervalMs, p.SkipRate, p.Autoplay)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(viewCmd, playCmd, tourCmd, infoCmd, trackCmd, orbitCmd, snapshotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, bookmarksCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPlaybackFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use preset playback settings")
	cmd.Flags().IntVar(&intervalMs, "interval", config.DefaultIntervalMs, "tick interval in ms (1-500)")
	cmd.Flags().IntVar(&skipRate, "skip", config.DefaultSkipRate, "frames per tick")
	cmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	cmd.Flags().StringVar(&follow, "follow", "", "select and follow this body")
	cmd.Flags().IntVar(&history, "history", config.DefaultHistory, "trail length in frames")
	cmd.Flags().BoolVar(&autoplay, "autoplay", false, "start playing immediately")
}

// loadConfig layers defaults, the config file, a preset and finally any
// flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if preset != "" && !cfg.Apply(preset) {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log") {
		cfg.LogFile = logFile
	}
	if flags.Changed("interval") {
		cfg.Playback.IntervalMs = intervalMs
	}
	if flags.Changed("skip") {
		cfg.Playback.SkipRate = skipRate
	}
	if flags.Changed("autoplay") {
		cfg.Playback.Autoplay = autoplay
	}
	if flags.Changed("theme") {
		cfg.View.Theme = theme
	}
	if flags.Changed("follow") {
		cfg.View.Follow = follow
	}
	if flags.Changed("history") {
		cfg.View.History = history
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openLogger returns a logger writing to cfg.LogFile, or discarding when
// none is set. The terminal belongs to the player.
func openLogger(cfg *config.Config) (*log.Logger, func(), error) {
	if cfg.LogFile == "" {
		return log.New(io.Discard, "", 0), func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log: %w", err)
	}
	return log.New(f, "orbview ", log.LstdFlags|log.Lmicroseconds), func() { f.Close() }, nil
}

func inputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg != nil && cfg.Input != "" {
		return cfg.Input, nil
	}
	return "", fmt.Errorf("no trajectory file given")
}

// resolveBody accepts a body name or index.
func resolveBody(traj *trajectory.Trajectory, arg string) (int, error) {
	if i := traj.IndexOf(arg); i >= 0 {
		return i, nil
	}
	if i, err := strconv.Atoi(arg); err == nil && i >= 0 && i < traj.BodyCount() {
		return i, nil
	}
	return 0, fmt.Errorf("unknown body: %s (available: %s)", arg, strings.Join(traj.Names(), ", "))
}

func sessionOptions(cfg *config.Config, logger *log.Logger) []session.Option {
	return []session.Option{
		session.WithLogger(logger),
		session.WithInterval(cfg.Interval()),
		session.WithSkipRate(cfg.Playback.SkipRate),
	}
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path, err := inputPath(args, cfg)
	if err != nil {
		return err
	}
	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	traj, err := trajectory.Load(path, logger)
	if err != nil {
		return fmt.Errorf("failed to load trajectory: %w", err)
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		logger.Printf("bookmarks disabled: %v", err)
		st = nil
	}

	p := viz.NewPlayer(traj, viz.Options{
		Source:   path,
		Theme:    cfg.View.Theme,
		Width:    cfg.View.Width,
		Height:   cfg.View.Height,
		History:  cfg.View.History,
		Autoplay: cfg.Playback.Autoplay,
		Follow:   cfg.View.Follow,
		Store:    st,
	}, sessionOptions(cfg, logger)...)
	return viz.Run(p)
}

// runPlay drives a session on its own loop and prints every frame it sees
// until playback stops or the user interrupts.
func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path, err := inputPath(args, cfg)
	if err != nil {
		return err
	}
	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	traj, err := trajectory.Load(path, logger)
	if err != nil {
		return fmt.Errorf("failed to load trajectory: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loop := session.NewLoop(traj, sessionOptions(cfg, logger)...)
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	if cfg.View.Follow != "" {
		i, err := resolveBody(traj, cfg.View.Follow)
		if err != nil {
			return err
		}
		if err := loop.Submit(ctx, session.Select(i)); err != nil {
			return err
		}
	}
	if err := loop.Submit(ctx, session.Play()); err != nil {
		return err
	}

	poll := time.NewTicker(cfg.Interval())
	defer poll.Stop()
	last := -1
	for {
		v, err := loop.Snapshot(ctx)
		if err != nil {
			break
		}
		if v.Frame != last {
			printFrame(v)
			last = v.Frame
		}
		if v.State == playback.Stopped {
			break
		}
		select {
		case <-ctx.Done():
		case <-poll.C:
		}
	}
	stop()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// runTour plays a scenario against a session loop. Marks become bookmarks.
func runTour(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	traj, err := trajectory.Load(args[0], logger)
	if err != nil {
		return fmt.Errorf("failed to load trajectory: %w", err)
	}
	scenario, err := automation.LoadScenario(args[1])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loop := session.NewLoop(traj, sessionOptions(cfg, logger)...)
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	if scenario.Name != "" {
		fmt.Printf("%s\n", scenario.Name)
	}
	r := &automation.Runner{
		Loop: loop,
		Traj: traj,
		OnStep: func(i int, step automation.Step, v session.View) {
			fmt.Printf("%2d %-12s ", i+1, step.Action)
			printFrame(v)
		},
		OnMark: func(name string, v session.View) error {
			id, err := st.Save(storage.FromView(name, args[0], v))
			if err == nil {
				fmt.Printf("   bookmark %s\n", id)
			}
			return err
		},
	}
	_, runErr := r.Run(ctx, scenario)

	stop()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return runErr
}

func printFrame(v session.View) {
	line := fmt.Sprintf("frame %d/%d  step %d  t=%s", v.Frame, max(v.FrameCount-1, 0), v.Step, viz.FormatTime(v.Time))
	if v.HasInfo {
		line += fmt.Sprintf("  %s speed=%.4g m/s", v.Selected.Name, v.Selected.Speed)
	}
	fmt.Println(line)
}

func runInfo(cmd *cobra.Command, args []string) error {
	path, err := inputPath(args, nil)
	if err != nil {
		return err
	}
	traj, err := trajectory.Load(path, nil)
	if err != nil {
		return fmt.Errorf("failed to load trajectory: %w", err)
	}

	fmt.Printf("%s\n", path)
	fmt.Printf("  frames:   %d\n", traj.Len())
	fmt.Printf("  bodies:   %d\n", traj.BodyCount())
	fmt.Printf("  duration: %s\n\n", viz.FormatTime(traj.Duration()))
	if traj.Len() == 0 {
		return nil
	}

	classes := classify.NewClassifier()
	first := traj.Frame(0)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tCLASS\tMASS (kg)\tDISTANCE (m)\tSPEED (m/s)")
	for i, b := range first.Bodies {
		dist := r3.Norm(r3.Sub(b.Position, first.Bodies[0].Position))
		fmt.Fprintf(w, "%d\t%s\t%s\t%.4e\t%.4e\t%.4g\n", i, b.Name, classes.Class(b), b.Mass, dist, b.Speed())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	// A body ten times farther from the center of mass than anything at the
	// start counts as escaped.
	com := metrics.CenterOfMass(first)
	radius := 0.0
	for _, b := range first.Bodies {
		radius = max(radius, r3.Norm(r3.Sub(b.Position, com)))
	}
	m := metrics.Evaluate(traj,
		metrics.NewEnergy(),
		metrics.NewEnergyDrift(),
		metrics.NewMomentumDrift(),
		metrics.NewBound(10*radius),
	)
	fmt.Printf("\n  mean energy:    %.4e J\n", m["energy"])
	fmt.Printf("  energy drift:   %.3e\n", m["energy_drift"])
	fmt.Printf("  momentum drift: %.3e\n", m["momentum_drift"])
	fmt.Printf("  bound frames:   %.1f%%\n", 100*m["bound"])
	return nil
}

func runTrack(cmd *cobra.Command, args []string) error {
	traj, err := trajectory.Load(args[0], nil)
	if err != nil {
		return fmt.Errorf("failed to load trajectory: %w", err)
	}
	i, err := resolveBody(traj, args[1])
	if err != nil {
		return err
	}
	series, err := chart.Series(traj, i, chart.Quantity(quantity))
	if err != nil {
		return err
	}
	if len(series) < 2 {
		return fmt.Errorf("need at least 2 frames, got %d", len(series))
	}

	name := traj.Frame(0).Bodies[i].Name
	fmt.Println(chart.ASCII(series, graphWidth, graphHeight, fmt.Sprintf("%s %s", name, quantity)))

	lo, hi := series[0], series[0]
	for _, v := range series {
		lo, hi = min(lo, v), max(hi, v)
	}
	fmt.Printf("\nmin %.6g  max %.6g  frames %d\n", lo, hi, len(series))
	return nil
}

func runOrbit(cmd *cobra.Command, args []string) error {
	traj, err := trajectory.Load(args[0], nil)
	if err != nil {
		return fmt.Errorf("failed to load trajectory: %w", err)
	}
	t := title
	if t == "" {
		t = args[0]
	}
	if outFile == "" {
		outFile = "orbits.png"
	}
	if err := chart.Orbits(traj, t, outFile); err != nil {
		return fmt.Errorf("failed to plot: %w", err)
	}
	fmt.Printf("wrote %s (%d bodies, %d frames)\n", outFile, traj.BodyCount(), traj.Len())
	return nil
}

// output opens outFile, or stdout when it is empty.
func output() (io.Writer, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	traj, err := trajectory.Load(args[0], nil)
	if err != nil {
		return fmt.Errorf("failed to load trajectory: %w", err)
	}
	i, err := resolveBody(traj, args[1])
	if err != nil {
		return err
	}
	w, closeOut, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportTrackCSV(w, traj, i); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	traj, err := trajectory.Load(args[0], nil)
	if err != nil {
		return fmt.Errorf("failed to load trajectory: %w", err)
	}
	w, closeOut, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, args[0], traj); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	traj, err := trajectory.Load(args[0], nil)
	if err != nil {
		return fmt.Errorf("failed to load trajectory: %w", err)
	}

	p := viz.NewPlayer(traj, viz.Options{
		Source:  args[0],
		Theme:   cfg.View.Theme,
		Width:   cfg.View.Width,
		Height:  cfg.View.Height,
		History: cfg.View.History,
		Follow:  cfg.View.Follow,
	})
	p.Session().Dispatch(session.Seek(frame))

	if outFile == "" {
		outFile = "frame.svg"
	}
	w, closeOut, err := output()
	if err != nil {
		return err
	}
	if err := export.CanvasToSVG(w, p.Frame(), scale); err != nil {
		closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return err
	}
	fmt.Printf("wrote %s (frame %d)\n", outFile, p.Session().View().Frame)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	traj, err := trajectory.Load(args[0], nil)
	if err != nil {
		return fmt.Errorf("failed to load trajectory: %w", err)
	}
	i, err := resolveBody(traj, args[1])
	if err != nil {
		return err
	}
	w, closeOut, err := output()
	if err != nil {
		return err
	}
	col := classify.Classify(traj.Frame(0).Bodies[i].Mass).Hex()
	if err := export.TrackToSVG(w, traj, i, 800, 800, col); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func listBookmarks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)

	if deleteID != "" {
		if err := st.Delete(deleteID); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", deleteID)
		return nil
	}

	marks, err := st.List()
	if err != nil {
		return err
	}
	if len(marks) == 0 {
		fmt.Println("no bookmarks")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSOURCE\tFRAME\tTIME\tSELECTED\tSAVED")
	for _, b := range marks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			b.ID, b.Name, b.Source, b.Frame, viz.FormatTime(b.Time), b.Selected, b.Timestamp.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
