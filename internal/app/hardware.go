package app

import (
	"log"

	"github.com/Speshl/gorrc_iracer/internal/command"
	pca9685 "github.com/Speshl/gorrc_iracer/internal/command/pca9685"
	pipwm "github.com/Speshl/gorrc_iracer/internal/command/pi_pwm"
	"github.com/Speshl/gorrc_iracer/internal/config"
	"github.com/Speshl/gorrc_iracer/internal/sensor"
	"github.com/Speshl/gorrc_iracer/internal/speaker"
	"github.com/Speshl/gorrc_iracer/internal/system"
)

// Sensor is the color sensor as the app drives it.
type Sensor interface {
	sensor.ChannelReader
	Init() error
	Stop() error
}

// Hardware is everything the app talks to outside the process.
type Hardware struct {
	Actuator     command.Actuator
	ServoChannel int
	Sensor       Sensor
	System       system.Executor
	Audio        speaker.Player // nil plays through aplay
}

// NewHardware picks the drivers for the configured board. The motor and led always run from the
// pi gpio, the servo either from the pi pwm pin or a PCA9685 channel.
func NewHardware(cfg config.Config) Hardware {
	gpio := pipwm.NewCommand(cfg.CommandCfg)
	hw := Hardware{
		Actuator:     gpio,
		ServoChannel: cfg.CommandCfg.ServoCfg.Pin,
		Sensor:       sensor.NewISL29125(cfg.SensorCfg),
		System:       system.NewShell(cfg.SystemCfg),
	}

	switch cfg.CommandCfg.CommandDriver {
	case "pca9685":
		hw.Actuator = pca9685.NewCommand(cfg.CommandCfg, gpio)
		hw.ServoChannel = cfg.CommandCfg.ServoCfg.Channel
	case "pipwm":
	default:
		log.Printf("warning: unknown servo driver %q, using pipwm\n", cfg.CommandCfg.CommandDriver)
	}
	log.Printf("servo driver: %s channel %d\n", cfg.CommandCfg.CommandDriver, hw.ServoChannel)
	return hw
}
