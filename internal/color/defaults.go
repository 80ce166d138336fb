package color

import "github.com/Speshl/gorrc_iracer/internal/models"

// DefaultTriggers is the trigger list used when no calibration file exists. The last three slots
// are placeholders meant to be calibrated on the track.
func DefaultTriggers() []models.ColorTrigger {
	return []models.ColorTrigger{
		{RedRatio: 0.615, GreenRatio: 0.169, BlueRatio: 0.216, SumThreshold: 1030.0, Label: "LAP\n"},
		{RedRatio: 0.2107, GreenRatio: 0.274, BlueRatio: 0.518, SumThreshold: 575.0, Label: "GATE\n"},
		{RedRatio: 0.317, GreenRatio: 0.374, BlueRatio: 0.308, SumThreshold: 648.0, Label: "BOOST\n"},
		{RedRatio: 0.671, GreenRatio: 0.190, BlueRatio: 0.137, SumThreshold: 1244.0, Label: "POWERUP\n"},
		{RedRatio: 0.999, GreenRatio: 0.999, BlueRatio: 0.999, SumThreshold: 1244.0, Label: "SLOW\n"},
		{RedRatio: 0.999, GreenRatio: 0.999, BlueRatio: 0.999, SumThreshold: 1244.0, Label: "COIN\n"},
		{RedRatio: 0.999, GreenRatio: 0.999, BlueRatio: 0.999, SumThreshold: 1244.0, Label: "OCTAGON\n"},
	}
}
