package protocol

import "fmt"

// Command is one parsed fragment of an inbound buffer.
type Command interface {
	Key() string
}

type ServoCommand struct {
	Pulse uint16
}

func (ServoCommand) Key() string { return KeyServo }

func (c ServoCommand) String() string { return fmt.Sprintf("servo=%d", c.Pulse) }

type MotorCommand struct {
	Speed int
}

func (MotorCommand) Key() string { return KeyMotor }

func (c MotorCommand) String() string { return fmt.Sprintf("motor=%d", c.Speed) }

type Action int

const (
	ActionShutdown Action = iota
	ActionReboot
	ActionBrightness
	ActionBitrate
	ActionLinkQuality
	ActionCalibrate
	ActionRestoreDefaults
)

func (a Action) String() string {
	switch a {
	case ActionShutdown:
		return "shutdown"
	case ActionReboot:
		return "reboot"
	case ActionBrightness:
		return "brightness"
	case ActionBitrate:
		return "bitrate"
	case ActionLinkQuality:
		return "link_quality"
	case ActionCalibrate:
		return "calibrate"
	case ActionRestoreDefaults:
		return "restore_defaults"
	default:
		return "unknown"
	}
}

// SystemCommand carries a utility action. Value is the brightness, bitrate or calibration slot
// for the actions that take one.
type SystemCommand struct {
	Action Action
	Value  int
}

func (SystemCommand) Key() string { return KeySystem }

func (c SystemCommand) String() string { return fmt.Sprintf("%s=%d", c.Action, c.Value) }

// Frame is everything recognized in one inbound buffer, in dispatch order.
type Frame struct {
	Commands []Command
	Quit     bool
}

type ParseError struct {
	Key    string
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s%q: %s", e.Key, e.Value, e.Reason)
}
