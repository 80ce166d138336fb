package command

import (
	"fmt"
	"log"
	"sync"

	"github.com/Speshl/gorrc_iracer/internal/command"
	"github.com/Speshl/gorrc_iracer/internal/config"
	"github.com/googolgl/go-i2c"
	"github.com/googolgl/go-pca9685"
)

const (
	MaxValue = 1.0
	MinValue = 0.0
	AcRange  = pca9685.ServoRangeDef

	MaxSupportedServos = 16
)

// Command drives servos through a PCA9685 board. Motor pwm and digital pins stay on the pi and
// are handed to gpio.
type Command struct {
	cfg    config.CommandConfig
	gpio   command.Actuator
	lock   sync.Mutex
	servos map[int]*pca9685.Servo
	driver *pca9685.PCA9685
}

func NewCommand(cfg config.CommandConfig, gpio command.Actuator) *Command {
	return &Command{
		cfg:    cfg,
		gpio:   gpio,
		servos: make(map[int]*pca9685.Servo, MaxSupportedServos),
	}
}

func (c *Command) Init() error {
	err := c.gpio.Init()
	if err != nil {
		return fmt.Errorf("error starting gpio - %w", err)
	}

	i2c, err := i2c.New(c.cfg.Address, c.cfg.I2CDevice)
	if err != nil {
		return fmt.Errorf("error starting i2c with address - %w", err)
	}

	c.driver, err = pca9685.New(i2c, nil)
	if err != nil {
		return fmt.Errorf("error getting servo driver - %w", err)
	}
	return nil
}

func (c *Command) Stop() error {
	return c.gpio.Stop()
}

func (c *Command) SetDutyCycle(channel int, duty uint8) error {
	return c.gpio.SetDutyCycle(channel, duty)
}

func (c *Command) SetDigital(pin int, high bool) error {
	return c.gpio.SetDigital(pin, high)
}

func (c *Command) SetServoPulse(channel int, pulse uint16) error {
	if channel < 0 || channel >= MaxSupportedServos {
		return fmt.Errorf("servo channel %d not supported", channel)
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if c.driver == nil {
		return fmt.Errorf("servo driver not initialized")
	}

	servoCfg := c.cfg.ServoCfg
	servo, ok := c.servos[channel]
	if !ok {
		servo = c.driver.ServoNew(channel, &pca9685.ServOptions{
			AcRange:  AcRange,
			MinPulse: float32(servoCfg.MinPulse),
			MaxPulse: float32(servoCfg.MaxPulse),
		})
		c.servos[channel] = servo
		log.Printf("servo added on channel: %d\n", channel)
	}

	if pulse == command.ServoOff {
		err := c.driver.SetChannel(channel, 0, 0)
		if err != nil {
			return fmt.Errorf("failed releasing servo - channel: %d - error: %w", channel, err)
		}
		return nil
	}

	pulse = command.ClampPulse(pulse, servoCfg.MinPulse, servoCfg.MaxPulse)
	mappedValue := command.MapToRange(float64(pulse), float64(servoCfg.MinPulse), float64(servoCfg.MaxPulse), MinValue, MaxValue)
	err := servo.Fraction(float32(mappedValue))
	if err != nil {
		return fmt.Errorf("failed setting servo value - channel: %d value:  %.2f - error: %w", channel, mappedValue, err)
	}
	return nil
}
