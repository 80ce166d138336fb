package command

// Actuator is the output side of the car: motor pwm and direction pins, the steering servo and
// the status led.
type Actuator interface {
	Init() error
	Stop() error
	SetDutyCycle(channel int, duty uint8) error
	SetDigital(pin int, high bool) error
	SetServoPulse(channel int, pulse uint16) error
}

func MapToRange(value, min, max, minReturn, maxReturn float64) float64 {
	mappedValue := (maxReturn-minReturn)*(value-min)/(max-min) + minReturn

	if mappedValue > maxReturn {
		return maxReturn
	} else if mappedValue < minReturn {
		return minReturn
	} else {
		return mappedValue
	}
}

// ServoOff as a pulse width stops the servo signal instead of moving the servo.
const ServoOff = 0

// ClampPulse keeps a servo pulse inside the configured travel. ServoOff passes through.
func ClampPulse(pulse uint16, min, max int) uint16 {
	if pulse == ServoOff {
		return ServoOff
	}
	if int(pulse) < min {
		return uint16(min)
	} else if int(pulse) > max {
		return uint16(max)
	}
	return pulse
}
