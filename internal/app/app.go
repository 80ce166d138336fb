package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Speshl/gorrc_iracer/internal/color"
	"github.com/Speshl/gorrc_iracer/internal/config"
	"github.com/Speshl/gorrc_iracer/internal/events"
	"github.com/Speshl/gorrc_iracer/internal/models"
	"github.com/Speshl/gorrc_iracer/internal/motor"
	"github.com/Speshl/gorrc_iracer/internal/protocol"
	"github.com/Speshl/gorrc_iracer/internal/sensor"
	"github.com/Speshl/gorrc_iracer/internal/server"
	"github.com/Speshl/gorrc_iracer/internal/speaker"
	"github.com/Speshl/gorrc_iracer/internal/system"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const shutdownSoundTimeout = 5 * time.Second

type App struct {
	ctx       context.Context
	ctxCancel context.CancelFunc

	Cfg config.Config
	hw  Hardware

	calibration *color.Calibration
	events      *events.Buffer
	classifier  *color.Classifier
	sampler     *color.Sampler
	motor       *motor.Controller
	dispatcher  *protocol.Dispatcher
	server      *server.Server

	speakerChannel chan string
	speaker        *speaker.Speaker
}

func NewApp(cfg config.Config, hw Hardware) *App {
	ctx, cancel := context.WithCancel(context.Background())

	var reader sensor.ChannelReader = hw.Sensor
	if cfg.SensorCfg.Scale.Enabled {
		reader = sensor.NewScaledReader(reader, sensor.NewScaler(cfg.SensorCfg.Scale))
	}

	tolerance := models.Tolerance{
		Ratio: cfg.ColorCfg.RatioTolerance,
		Sum:   cfg.ColorCfg.SumTolerance,
	}

	calibration := color.NewCalibration(color.NewFileStore(cfg.ColorCfg.CalibrationFile))
	buffer := events.NewBuffer(cfg.ServerCfg.EventBufferSize)
	classifier := color.NewClassifier(calibration, tolerance, buffer)
	motorController := motor.NewController(cfg.MotorCfg, hw.Actuator)
	speakerChannel := make(chan string, 10)
	sound := speaker.NewSpeaker(cfg.SpeakerCfg, speakerChannel)
	if hw.Audio != nil {
		sound = speaker.NewSpeakerWithPlayer(cfg.SpeakerCfg, speakerChannel, hw.Audio)
	}

	dispatcher := &protocol.Dispatcher{
		ServoChannel: hw.ServoChannel,
		Servo:        hw.Actuator,
		Motor:        motorController,
		Calibration:  calibration,
		Readings:     classifier,
		System:       hw.System,
		Events:       buffer,
	}

	a := &App{
		ctx:            ctx,
		ctxCancel:      cancel,
		Cfg:            cfg,
		hw:             hw,
		calibration:    calibration,
		events:         buffer,
		classifier:     classifier,
		sampler:        color.NewSampler(reader, classifier, cfg.SensorCfg.PollInterval),
		motor:          motorController,
		dispatcher:     dispatcher,
		server:         server.NewServer(cfg.ServerCfg, dispatcher, buffer),
		speakerChannel: speakerChannel,
		speaker:        sound,
	}
	a.server.OnConnect = a.onConnect
	a.server.OnDisconnect = a.onDisconnect
	return a
}

// Init brings the hardware into a known state: outputs open, status led on, sensor configured,
// motor bridge exercised and steering centred.
func (a *App) Init() error {
	log.Println("initializing...")
	err := a.hw.Actuator.Init()
	if err != nil {
		return fmt.Errorf("error initializing actuator: %w", err)
	}

	err = a.hw.Actuator.SetDigital(a.Cfg.SystemCfg.LedPin, true)
	if err != nil {
		return fmt.Errorf("error turning on status led: %w", err)
	}

	err = a.hw.Sensor.Init()
	if err != nil {
		return fmt.Errorf("error initializing color sensor: %w", err)
	}

	err = a.motor.SelfTest(a.ctx)
	if err != nil {
		return err
	}

	err = a.hw.Actuator.SetServoPulse(a.hw.ServoChannel, uint16(a.Cfg.CommandCfg.ServoCfg.CenterPulse))
	if err != nil {
		return fmt.Errorf("error centering servo: %w", err)
	}
	log.Printf("loaded %d color triggers\n", len(a.calibration.Triggers()))
	return nil
}

func (a *App) Start() error {
	group, groupCtx := errgroup.WithContext(a.ctx)
	log.Println("starting...")

	defer a.shutdown()

	//kill listener
	group.Go(func() error {
		signalChannel := make(chan os.Signal, 1)
		signal.Notify(signalChannel, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(signalChannel)
		select {
		case sig := <-signalChannel:
			log.Printf("received signal: %s\n", sig)
			a.ctxCancel()
			return fmt.Errorf("received signal: %s", sig)
		case <-groupCtx.Done():
			log.Println("closing signal goroutine")
			return groupCtx.Err()
		}
	})

	group.Go(func() error {
		return a.speaker.Start(groupCtx)
	})

	group.Go(func() error {
		return a.sampler.Start(groupCtx)
	})

	group.Go(func() error {
		return a.server.Start(groupCtx)
	})

	if a.Cfg.SystemCfg.HealthInterval > 0 {
		group.Go(func() error {
			return a.healthCheck(groupCtx)
		})
	}

	a.speaker.Queue(speaker.SoundStartup)

	err := group.Wait()
	if err != nil {
		if errors.Is(err, context.Canceled) || a.ctx.Err() != nil {
			log.Println("context was cancelled")
			return nil
		} else {
			return fmt.Errorf("server stopping due to error - %w", err)
		}
	}
	return nil
}

// Stop cancels the running loops, Start returns once they are done.
func (a *App) Stop() {
	a.ctxCancel()
}

// Addr is the address the command server is bound to, nil until it is listening.
func (a *App) Addr() net.Addr {
	return a.server.Addr()
}

func (a *App) healthCheck(ctx context.Context) error {
	netStats, err := system.NewNetStats(a.Cfg.SystemCfg.WirelessInterface)
	if err != nil {
		log.Printf("warning: interface stats disabled - %s\n", err.Error())
	}

	healthTicker := time.NewTicker(a.Cfg.SystemCfg.HealthInterval)
	defer healthTicker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("health checker stopped")
			return ctx.Err()
		case <-healthTicker.C:
			if netStats == nil {
				log.Printf("healthcheck: healthy (%d events pending)\n", a.events.Len())
				continue
			}
			summary, err := netStats.Summary()
			if err != nil {
				log.Printf("warning: healthcheck - %s\n", err.Error())
				continue
			}
			log.Printf("healthcheck: healthy (%d events pending) %s\n", a.events.Len(), summary)
		}
	}
}

func (a *App) onConnect(session uuid.UUID, remote net.Addr) {
	log.Printf("controller %s attached (session %s, %d events pending)\n", remote, session, a.events.Len())
	a.speaker.Queue(speaker.SoundClientConnected)
}

func (a *App) onDisconnect(session uuid.UUID, remote net.Addr) {
	log.Printf("controller %s detached (session %s)\n", remote, session)
	a.speaker.Queue(speaker.SoundClientDisconnected)
}

func (a *App) shutdown() {
	log.Println("shutting down")
	err := a.motor.Stop()
	if err != nil {
		log.Printf("error: %s\n", err.Error())
	}

	soundCtx, cancel := context.WithTimeout(context.Background(), shutdownSoundTimeout)
	err = a.speaker.Play(soundCtx, speaker.SoundShutdown)
	cancel()
	if err != nil {
		log.Printf("failed to play sound - %s\n", err.Error())
	}

	err = a.hw.Actuator.SetDigital(a.Cfg.SystemCfg.LedPin, false)
	if err != nil {
		log.Printf("error: failed turning off status led: %s\n", err.Error())
	}
	err = a.hw.Actuator.Stop()
	if err != nil {
		log.Printf("error: %s\n", err.Error())
	}
	err = a.hw.Sensor.Stop()
	if err != nil {
		log.Printf("error: %s\n", err.Error())
	}
	log.Println("stopped")
}
