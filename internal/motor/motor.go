package motor

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/Speshl/gorrc_iracer/internal/command"
	"github.com/Speshl/gorrc_iracer/internal/config"
	"github.com/Speshl/gorrc_iracer/internal/models"
)

// Controller turns signed speed commands into a duty cycle and direction pins. The direction
// pins only change when the sign of the command flips.
type Controller struct {
	cfg      config.MotorConfig
	actuator command.Actuator

	lock      sync.Mutex
	direction models.Direction
	reversals int
}

func NewController(cfg config.MotorConfig, actuator command.Actuator) *Controller {
	return &Controller{
		cfg:       cfg,
		actuator:  actuator,
		direction: models.Forward,
	}
}

// SelfTest drives reverse, waits for the settle delay and then drives forward so the bridge is
// in a known state before commands are accepted.
func (c *Controller) SelfTest(ctx context.Context) error {
	log.Println("motor self test: reverse")
	c.lock.Lock()
	err := c.signal(models.Reverse)
	c.lock.Unlock()
	if err != nil {
		return fmt.Errorf("motor self test failed: %w", err)
	}

	timer := time.NewTimer(c.cfg.Settle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	log.Println("motor self test: forward")
	c.lock.Lock()
	defer c.lock.Unlock()
	err = c.signal(models.Forward)
	if err != nil {
		return fmt.Errorf("motor self test failed: %w", err)
	}
	c.reversals = 0
	return nil
}

// Set applies a speed command in the range -MaxInput..MaxInput. Larger magnitudes are clamped.
func (c *Controller) Set(value int) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if value < 0 && c.direction == models.Forward {
		err := c.signal(models.Reverse)
		if err != nil {
			return err
		}
		c.reversals++
	} else if value > 0 && c.direction == models.Reverse {
		err := c.signal(models.Forward)
		if err != nil {
			return err
		}
		c.reversals++
	}

	err := c.actuator.SetDutyCycle(c.cfg.PwmPin, c.duty(value))
	if err != nil {
		return fmt.Errorf("failed setting motor duty cycle: %w", err)
	}
	return nil
}

// Stop cuts the duty cycle without touching the direction pins.
func (c *Controller) Stop() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	log.Println("stopping motor")
	err := c.actuator.SetDutyCycle(c.cfg.PwmPin, 0)
	if err != nil {
		return fmt.Errorf("failed stopping motor: %w", err)
	}
	return nil
}

func (c *Controller) Direction() models.Direction {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.direction
}

// Reversals counts direction changes since the self test.
func (c *Controller) Reversals() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.reversals
}

func (c *Controller) duty(value int) uint8 {
	if c.cfg.MaxInput <= 0 {
		return 0
	}
	if value < 0 {
		value = -value
	}
	if value > c.cfg.MaxInput {
		value = c.cfg.MaxInput
	}

	duty := value * c.cfg.MaxDuty / c.cfg.MaxInput
	if duty > math.MaxUint8 {
		duty = math.MaxUint8
	}
	return uint8(duty)
}

// signal releases the active direction pin before raising the other one so both are never high
// at the same time.
func (c *Controller) signal(direction models.Direction) error {
	lowPin, highPin := c.cfg.ForwardPin, c.cfg.ReversePin
	if direction == models.Forward {
		lowPin, highPin = c.cfg.ReversePin, c.cfg.ForwardPin
	}

	err := c.actuator.SetDigital(lowPin, false)
	if err != nil {
		return fmt.Errorf("failed releasing direction pin %d: %w", lowPin, err)
	}
	err = c.actuator.SetDigital(highPin, true)
	if err != nil {
		return fmt.Errorf("failed setting direction pin %d: %w", highPin, err)
	}
	c.direction = direction
	log.Printf("motor direction: %s\n", direction)
	return nil
}
