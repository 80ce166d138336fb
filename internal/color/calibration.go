package color

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Speshl/gorrc_iracer/internal/models"
)

var (
	ErrInvalidTarget = errors.New("calibration target out of range")
	ErrNoReading     = errors.New("no color reading captured yet")
)

// Calibration owns the trigger list. The classifier reads copies, only Calibrate writes.
type Calibration struct {
	lock     sync.RWMutex
	triggers []models.ColorTrigger
	store    Store
}

// NewCalibration loads the trigger list from store, seeding the defaults when nothing usable is
// stored.
func NewCalibration(store Store) *Calibration {
	c := &Calibration{
		store: store,
	}

	triggers, err := store.Load()
	switch {
	case errors.Is(err, ErrNotFound):
		log.Println("calibration not found, using defaults")
		triggers = DefaultTriggers()
	case err != nil:
		log.Printf("error: failed loading calibration, using defaults: %s\n", err.Error())
		triggers = DefaultTriggers()
	case len(triggers) == 0:
		log.Println("warning: calibration was empty, using defaults")
		triggers = DefaultTriggers()
	default:
		log.Printf("loaded calibration with %d triggers\n", len(triggers))
	}
	c.triggers = triggers
	return c
}

func (c *Calibration) Triggers() []models.ColorTrigger {
	c.lock.RLock()
	defer c.lock.RUnlock()

	triggers := make([]models.ColorTrigger, len(c.triggers))
	copy(triggers, c.triggers)
	return triggers
}

// Calibrate overwrites the ratios and sum of slot target with reading and saves the list. The
// label of the slot is kept. A save failure is returned but the new values stay in effect.
func (c *Calibration) Calibrate(target int, reading models.Reading) error {
	if !reading.Valid() {
		return ErrNoReading
	}

	c.lock.Lock()
	if target < 0 || target >= len(c.triggers) {
		c.lock.Unlock()
		return fmt.Errorf("%w: %d not in [0,%d)", ErrInvalidTarget, target, len(c.triggers))
	}

	slot := &c.triggers[target]
	slot.RedRatio = reading.RedRatio
	slot.GreenRatio = reading.GreenRatio
	slot.BlueRatio = reading.BlueRatio
	slot.SumThreshold = reading.Sum

	triggers := make([]models.ColorTrigger, len(c.triggers))
	copy(triggers, c.triggers)
	c.lock.Unlock()

	log.Printf("calibration data for %d: %f  %f  %f %.0f\n", target, reading.RedRatio, reading.GreenRatio, reading.BlueRatio, reading.Sum)

	err := c.store.Save(triggers)
	if err != nil {
		return fmt.Errorf("failed saving calibration: %w", err)
	}
	return nil
}

// RestoreDefaults is accepted by the protocol but intentionally does nothing yet.
func (c *Calibration) RestoreDefaults() {
	log.Println("restore calibration defaults not enabled")
}
