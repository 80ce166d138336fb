package pipwm

import (
	"fmt"
	"log"
	"sync"

	"github.com/Speshl/gorrc_iracer/internal/command"
	"github.com/Speshl/gorrc_iracer/internal/config"
	"github.com/stianeikeland/go-rpio/v4"
)

const (
	// 1MHz pwm clock, shared by both hardware pwm channels
	Frequency = 1000000

	// 20ms servo frame at 1us per step, so duty equals pulse width in us
	ServoCycleLength = uint32(20000)

	// ~3.9kHz motor pwm with 0-255 duty steps
	MotorCycleLength = uint32(255)
)

type CommandDriver struct {
	cfg  config.CommandConfig
	lock sync.Mutex

	pwmPins     map[int]rpio.Pin
	digitalPins map[int]rpio.Pin
}

func NewCommand(cfg config.CommandConfig) *CommandDriver {
	return &CommandDriver{
		cfg:         cfg,
		pwmPins:     make(map[int]rpio.Pin),
		digitalPins: make(map[int]rpio.Pin),
	}
}

func (c *CommandDriver) Init() error {
	err := rpio.Open()
	if err != nil {
		return fmt.Errorf("failed opening rpio: %w", err)
	}
	log.Println("rpio opened")
	return nil
}

func (c *CommandDriver) Stop() error {
	c.lock.Lock()
	for i := range c.pwmPins {
		c.pwmPins[i].DutyCycle(0, MotorCycleLength)
	}
	for i := range c.digitalPins {
		c.digitalPins[i].Low()
	}
	c.lock.Unlock()

	err := rpio.Close()
	if err != nil {
		return fmt.Errorf("failed closing rpio: %w", err)
	}
	return nil
}

func (c *CommandDriver) pwmPin(channel int) rpio.Pin {
	pin, ok := c.pwmPins[channel]
	if !ok {
		pin = rpio.Pin(channel)
		pin.Mode(rpio.Pwm)
		pin.Freq(Frequency)
		c.pwmPins[channel] = pin
		log.Printf("pwm pin added: %d\n", channel)
	}
	return pin
}

func (c *CommandDriver) SetDutyCycle(channel int, duty uint8) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.pwmPin(channel).DutyCycle(uint32(duty), MotorCycleLength)
	return nil
}

func (c *CommandDriver) SetDigital(pinNum int, high bool) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	pin, ok := c.digitalPins[pinNum]
	if !ok {
		pin = rpio.Pin(pinNum)
		pin.Output()
		c.digitalPins[pinNum] = pin
	}

	if high {
		pin.High()
	} else {
		pin.Low()
	}
	return nil
}

// SetServoPulse drives the servo pin directly, channel is the gpio number. A ServoOff pulse
// holds the pin low so the servo goes limp.
func (c *CommandDriver) SetServoPulse(channel int, pulse uint16) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	servoCfg := c.cfg.ServoCfg
	pulse = command.ClampPulse(pulse, servoCfg.MinPulse, servoCfg.MaxPulse)
	c.pwmPin(channel).DutyCycle(uint32(pulse), ServoCycleLength)
	return nil
}
