package protocol

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

const (
	KeyServo  = "S="
	KeyMotor  = "M="
	KeySystem = "U="

	Delimiter = "&"
	QuitLine  = "quit"

	separators = ":=_ "

	maxSpeed = math.MaxInt32
)

type keyParser struct {
	key   string
	parse func(value string) (Command, error)
}

// keys are always scanned in this order, whatever their position in the buffer.
var keys = []keyParser{
	{key: KeyServo, parse: parseServo},
	{key: KeyMotor, parse: parseMotor},
	{key: KeySystem, parse: parseSystem},
}

// Parse scans buf for the known keys. Each key's value runs to the next delimiter or the end of
// the buffer, only the first occurrence of a key counts and anything else is ignored. Invalid
// values are reported as ParseErrors joined together, the valid commands are still returned.
func Parse(buf string) (Frame, error) {
	trimmed := strings.TrimRightFunc(buf, unicode.IsSpace)
	frame := Frame{
		Quit: trimmed == QuitLine,
	}

	var errs []error
	for _, k := range keys {
		start := strings.Index(trimmed, k.key)
		if start < 0 {
			continue
		}

		value := trimmed[start+len(k.key):]
		if end := strings.Index(value, Delimiter); end >= 0 {
			value = value[:end]
		}

		command, err := k.parse(value)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		frame.Commands = append(frame.Commands, command)
	}
	return frame, errors.Join(errs...)
}

func parseServo(value string) (Command, error) {
	pulse, err := strconv.ParseUint(strings.TrimSpace(value), 10, 16)
	if err != nil {
		return nil, &ParseError{Key: KeyServo, Value: value, Reason: "pulse must be an integer between 0 and 65535"}
	}
	return ServoCommand{Pulse: uint16(pulse)}, nil
}

// parseMotor truncates decimal speeds to whole units.
func parseMotor(value string) (Command, error) {
	speed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return nil, &ParseError{Key: KeyMotor, Value: value, Reason: "speed must be a number"}
	}
	if math.Abs(speed) > maxSpeed {
		return nil, &ParseError{Key: KeyMotor, Value: value, Reason: "speed out of range"}
	}
	return MotorCommand{Speed: int(speed)}, nil
}

func parseSystem(value string) (Command, error) {
	invalid := func(reason string) (Command, error) {
		return nil, &ParseError{Key: KeySystem, Value: value, Reason: reason}
	}

	if value == "" {
		return invalid("missing action")
	}

	if strings.HasPrefix(value, "CAL") {
		arg := trimSeparator(value[3:])
		switch {
		case arg == "D":
			return SystemCommand{Action: ActionRestoreDefaults}, nil
		case len(arg) == 1 && isDigits(arg):
			return SystemCommand{Action: ActionCalibrate, Value: int(arg[0] - '0')}, nil
		default:
			return invalid("calibration target must be a single digit or D")
		}
	}

	switch value[0] {
	case 'S':
		return SystemCommand{Action: ActionShutdown}, nil
	case 'R':
		return SystemCommand{Action: ActionReboot}, nil
	case 'W':
		return SystemCommand{Action: ActionLinkQuality}, nil
	case 'B':
		arg := trimSeparator(value[1:])
		if len(arg) != 2 || !isDigits(arg) {
			return invalid("brightness must be two digits")
		}
		brightness, _ := strconv.Atoi(arg)
		return SystemCommand{Action: ActionBrightness, Value: brightness}, nil
	case 'V':
		arg := trimSeparator(value[1:])
		bitrate, err := strconv.ParseInt(arg, 10, 32)
		if err != nil || !isDigits(arg) {
			return invalid("bitrate must be a positive integer")
		}
		return SystemCommand{Action: ActionBitrate, Value: int(bitrate)}, nil
	default:
		return invalid("unknown action")
	}
}

// trimSeparator drops one leading separator such as ':' in "B:55".
func trimSeparator(arg string) string {
	if arg != "" && strings.ContainsRune(separators, rune(arg[0])) {
		return arg[1:]
	}
	return arg
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
