package models

import "math"

// ColorTrigger is a calibrated trigger zone. Label is sent to the controller as-is, so it carries
// its own line terminator.
type ColorTrigger struct {
	RedRatio     float64 `yaml:"red_ratio"`
	GreenRatio   float64 `yaml:"green_ratio"`
	BlueRatio    float64 `yaml:"blue_ratio"`
	SumThreshold float64 `yaml:"sum_threshold"`
	Label        string  `yaml:"label"`
}

type Tolerance struct {
	Ratio float64
	Sum   float64
}

// Matches reports whether a normalized reading falls inside the trigger zone. All comparisons are
// strict, a reading exactly one tolerance away does not match.
func (t ColorTrigger) Matches(reading Reading, tolerance Tolerance) bool {
	return math.Abs(reading.RedRatio-t.RedRatio) < tolerance.Ratio &&
		math.Abs(reading.GreenRatio-t.GreenRatio) < tolerance.Ratio &&
		math.Abs(reading.BlueRatio-t.BlueRatio) < tolerance.Ratio &&
		math.Abs(reading.Sum-t.SumThreshold) < tolerance.Sum
}

// Reading is the latest normalized sample.
type Reading struct {
	RedRatio   float64
	GreenRatio float64
	BlueRatio  float64
	Sum        float64
}

// Valid is false until a sample has been accepted. Accepted samples always have Sum > 1.
func (r Reading) Valid() bool {
	return r.Sum > 1
}

type RawSample struct {
	Red   uint16
	Green uint16
	Blue  uint16
}

type Direction int

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return "unknown"
	}
}
