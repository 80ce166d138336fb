package color

import (
	"log"
	"sync"

	"github.com/Speshl/gorrc_iracer/internal/models"
)

// MinColorSum is the lowest channel sum rejected as noise.
const MinColorSum = 1

// Sink receives fired trigger labels. It reports false when the label was already pending.
type Sink interface {
	Add(msg string) bool
}

// Classifier normalizes raw samples and fires every trigger zone the sample falls into.
type Classifier struct {
	calibration *Calibration
	tolerance   models.Tolerance
	sink        Sink

	lock    sync.RWMutex
	last    models.RawSample
	hasLast bool
	reading models.Reading
}

func NewClassifier(calibration *Calibration, tolerance models.Tolerance, sink Sink) *Classifier {
	return &Classifier{
		calibration: calibration,
		tolerance:   tolerance,
		sink:        sink,
	}
}

// Classify processes one raw sample. accepted is false when the sample repeated the previous one
// or its channel sum was too low, in which case the current reading is left untouched. fired
// lists the labels newly added to the sink.
func (c *Classifier) Classify(raw models.RawSample) (fired []string, accepted bool) {
	c.lock.Lock()
	if c.hasLast && raw == c.last {
		c.lock.Unlock()
		return nil, false
	}
	c.last = raw
	c.hasLast = true
	c.lock.Unlock()

	reading, ok := Normalize(raw)
	if !ok {
		return nil, false
	}

	for _, trigger := range c.calibration.Triggers() {
		if !trigger.Matches(reading, c.tolerance) {
			continue
		}
		if c.sink.Add(trigger.Label) {
			log.Printf("trigger fired: %q\n", trigger.Label)
			fired = append(fired, trigger.Label)
		}
	}

	c.lock.Lock()
	c.reading = reading
	c.lock.Unlock()
	return fired, true
}

// Reading returns the latest accepted sample. It is at most one poll behind the sensor.
func (c *Classifier) Reading() models.Reading {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.reading
}

// Normalize converts raw counts to channel ratios. ok is false when the sum is at or below
// MinColorSum.
func Normalize(raw models.RawSample) (reading models.Reading, ok bool) {
	sum := float64(raw.Red) + float64(raw.Green) + float64(raw.Blue)
	if sum <= MinColorSum {
		return models.Reading{}, false
	}
	return models.Reading{
		RedRatio:   float64(raw.Red) / sum,
		GreenRatio: float64(raw.Green) / sum,
		BlueRatio:  float64(raw.Blue) / sum,
		Sum:        sum,
	}, true
}
