package session

import (
	"fmt"

	"github.com/san-kum/orbview/internal/camera"
	"github.com/san-kum/orbview/internal/playback"
)

// CommandKind identifies a Command.
type CommandKind int

const (
	CmdPlay CommandKind = iota
	CmdStop
	CmdRestart
	CmdSetSpeed
	CmdResetSpeed
	CmdSetSkipRate
	CmdBeginSkip
	CmdEndSkip
	CmdSeek
	CmdSelect
	CmdClear
	CmdNavigate
	CmdOrbit
	CmdZoom
	CmdFired
)

var kindNames = [...]string{
	CmdPlay:        "play",
	CmdStop:        "stop",
	CmdRestart:     "restart",
	CmdSetSpeed:    "set-speed",
	CmdResetSpeed:  "reset-speed",
	CmdSetSkipRate: "set-skip-rate",
	CmdBeginSkip:   "begin-skip",
	CmdEndSkip:     "end-skip",
	CmdSeek:        "seek",
	CmdSelect:      "select",
	CmdClear:       "clear",
	CmdNavigate:    "navigate",
	CmdOrbit:       "orbit",
	CmdZoom:        "zoom",
	CmdFired:       "fired",
}

func (k CommandKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("command(%d)", int(k))
}

// Command is one input to a Session. Only the fields used by Kind are set.
type Command struct {
	Kind      CommandKind
	Value     int
	Dir       playback.Direction
	Nudge     camera.Nudge
	Azimuth   float64
	Elevation float64
	Factor    float64
	Timer     playback.Timer
}

func Play() Command                            { return Command{Kind: CmdPlay} }
func Stop() Command                            { return Command{Kind: CmdStop} }
func Restart() Command                         { return Command{Kind: CmdRestart} }
func SetSpeed(ms int) Command                  { return Command{Kind: CmdSetSpeed, Value: ms} }
func ResetSpeed() Command                      { return Command{Kind: CmdResetSpeed} }
func SetSkipRate(n int) Command                { return Command{Kind: CmdSetSkipRate, Value: n} }
func BeginSkip(dir playback.Direction) Command { return Command{Kind: CmdBeginSkip, Dir: dir} }
func EndSkip() Command                         { return Command{Kind: CmdEndSkip} }
func Seek(frame int) Command                   { return Command{Kind: CmdSeek, Value: frame} }
func Select(index int) Command                 { return Command{Kind: CmdSelect, Value: index} }
func Clear() Command                           { return Command{Kind: CmdClear} }
func Navigate(n camera.Nudge) Command          { return Command{Kind: CmdNavigate, Nudge: n} }
func Orbit(dAz, dEl float64) Command           { return Command{Kind: CmdOrbit, Azimuth: dAz, Elevation: dEl} }
func Zoom(factor float64) Command              { return Command{Kind: CmdZoom, Factor: factor} }
func Fired(t playback.Timer) Command           { return Command{Kind: CmdFired, Timer: t} }

func (c Command) String() string {
	switch c.Kind {
	case CmdSetSpeed:
		return fmt.Sprintf("%s(%dms)", c.Kind, c.Value)
	case CmdSetSkipRate, CmdSeek, CmdSelect:
		return fmt.Sprintf("%s(%d)", c.Kind, c.Value)
	case CmdBeginSkip:
		return fmt.Sprintf("%s(%+d)", c.Kind, int(c.Dir))
	case CmdFired:
		return fmt.Sprintf("%s(%s)", c.Kind, c.Timer)
	default:
		return c.Kind.String()
	}
}
