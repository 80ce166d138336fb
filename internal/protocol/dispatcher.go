package protocol

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/Speshl/gorrc_iracer/internal/models"
	"github.com/Speshl/gorrc_iracer/internal/system"
)

type ServoDriver interface {
	SetServoPulse(channel int, pulse uint16) error
}

type Motor interface {
	Set(value int) error
}

type Calibrator interface {
	Calibrate(target int, reading models.Reading) error
	RestoreDefaults()
}

type ReadingSource interface {
	Reading() models.Reading
}

type Outbox interface {
	AddUnlessPrefixed(prefix, msg string) bool
}

// Dispatcher routes parsed commands to the parts of the car that act on them. Every call is
// expected to return quickly, the connection waits on it.
type Dispatcher struct {
	ServoChannel int
	Servo        ServoDriver
	Motor        Motor
	Calibration  Calibrator
	Readings     ReadingSource
	System       system.Executor
	Events       Outbox

	linkQuery atomic.Bool
}

// Handle parses and dispatches one inbound chunk, logging anything that went wrong. It reports
// whether the peer asked to quit.
func (d *Dispatcher) Handle(ctx context.Context, chunk string) bool {
	frame, err := Parse(chunk)
	if err != nil {
		log.Printf("warning: ignoring command fragment: %s\n", err.Error())
	}

	err = d.Dispatch(ctx, frame)
	if err != nil {
		log.Printf("error: dispatch failed: %s\n", err.Error())
	}
	return frame.Quit
}

// Dispatch runs every command of the frame in order. A failing command does not stop the ones
// after it.
func (d *Dispatcher) Dispatch(ctx context.Context, frame Frame) error {
	var errs []error
	for _, cmd := range frame.Commands {
		err := d.dispatch(ctx, cmd)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", cmd, err))
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmd Command) error {
	switch c := cmd.(type) {
	case ServoCommand:
		return d.Servo.SetServoPulse(d.ServoChannel, c.Pulse)
	case MotorCommand:
		return d.Motor.Set(c.Speed)
	case SystemCommand:
		return d.runSystem(ctx, c)
	default:
		return fmt.Errorf("unsupported command %T", cmd)
	}
}

func (d *Dispatcher) runSystem(ctx context.Context, c SystemCommand) error {
	switch c.Action {
	case ActionShutdown:
		return d.System.Shutdown()
	case ActionReboot:
		return d.System.Reboot()
	case ActionBrightness:
		return d.System.SetBrightness(c.Value)
	case ActionBitrate:
		return d.System.SetBitrate(c.Value)
	case ActionLinkQuality:
		d.queryLinkQuality(ctx)
		return nil
	case ActionCalibrate:
		log.Printf("calibrating target %d\n", c.Value)
		return d.Calibration.Calibrate(c.Value, d.Readings.Reading())
	case ActionRestoreDefaults:
		d.Calibration.RestoreDefaults()
		return nil
	default:
		return fmt.Errorf("unsupported action %s", c.Action)
	}
}

// queryLinkQuality runs the wifi query in the background, its lines reach the controller with a
// later flush. Only one query runs at a time.
func (d *Dispatcher) queryLinkQuality(ctx context.Context) {
	if !d.linkQuery.CompareAndSwap(false, true) {
		log.Println("warning: link quality query already running")
		return
	}

	ctx = context.WithoutCancel(ctx)
	go func() {
		defer d.linkQuery.Store(false)

		lines, err := d.System.LinkQuality(ctx)
		if err != nil {
			log.Printf("error: link quality query failed: %s\n", err.Error())
			return
		}
		for _, line := range lines {
			d.Events.AddUnlessPrefixed(system.LinkQualityPrefix, line+"\n")
		}
	}()
}
