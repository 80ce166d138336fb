package app

import (
	"bufio"
	"context"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Speshl/gorrc_iracer/internal/command/commandtest"
	"github.com/Speshl/gorrc_iracer/internal/config"
	"github.com/Speshl/gorrc_iracer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSensor struct {
	lock    sync.Mutex
	sample  models.RawSample
	inited  bool
	stopped bool
}

func (s *fakeSensor) Init() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.inited = true
	return nil
}

func (s *fakeSensor) Stop() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.stopped = true
	return nil
}

func (s *fakeSensor) ReadChannels() (models.RawSample, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.sample, nil
}

func (s *fakeSensor) Set(sample models.RawSample) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.sample = sample
}

type fakeSystem struct {
	lock       sync.Mutex
	brightness []int
}

func (f *fakeSystem) Shutdown() error      { return nil }
func (f *fakeSystem) Reboot() error        { return nil }
func (f *fakeSystem) SetBitrate(int) error { return nil }
func (f *fakeSystem) SetBrightness(v int) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.brightness = append(f.brightness, v)
	return nil
}

func (f *fakeSystem) LinkQuality(ctx context.Context) ([]string, error) {
	return []string{"Link Quality=70/70  Signal level=-40 dBm"}, nil
}

func (f *fakeSystem) Brightness() []int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]int(nil), f.brightness...)
}

func testConfig(t *testing.T) config.Config {
	return config.Config{
		ServerCfg: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			WriteTimeout:    time.Second,
			ChunkSize:       config.DefaultChunkSize,
			EventBufferSize: config.DefaultEventBufferSize,
		},
		SensorCfg: config.SensorConfig{
			PollInterval: time.Millisecond,
		},
		ColorCfg: config.ColorConfig{
			RatioTolerance:  config.DefaultRatioTolerance,
			SumTolerance:    config.DefaultSumTolerance,
			CalibrationFile: filepath.Join(t.TempDir(), "iracer.yaml"),
		},
		CommandCfg: config.CommandConfig{
			ServoCfg: config.ServoConfig{
				Pin:         config.DefaultServoPin,
				MaxPulse:    config.DefaultMaxPulse,
				MinPulse:    config.DefaultMinPulse,
				CenterPulse: config.DefaultCenterPulse,
			},
		},
		MotorCfg: config.MotorConfig{
			PwmPin:     config.DefaultMotorPwmPin,
			ForwardPin: config.DefaultMotorForwardPin,
			ReversePin: config.DefaultMotorReversePin,
			MaxInput:   config.DefaultMotorMaxInput,
			MaxDuty:    config.DefaultMotorMaxDuty,
		},
		SystemCfg: config.SystemConfig{
			LedPin: config.DefaultLedPin,
		},
	}
}

func TestInit(t *testing.T) {
	cfg := testConfig(t)
	actuator := commandtest.NewRecorder()
	colorSensor := &fakeSensor{}
	a := NewApp(cfg, Hardware{
		Actuator:     actuator,
		ServoChannel: cfg.CommandCfg.ServoCfg.Pin,
		Sensor:       colorSensor,
		System:       &fakeSystem{},
	})

	require.NoError(t, a.Init())
	assert.True(t, actuator.Inited)
	assert.True(t, colorSensor.inited)
	assert.True(t, actuator.Pin(config.DefaultLedPin), "status led on")
	assert.True(t, actuator.Pin(config.DefaultMotorForwardPin))
	assert.False(t, actuator.Pin(config.DefaultMotorReversePin))
	assert.Equal(t, []commandtest.Call{
		{Kind: commandtest.Servo, Channel: config.DefaultServoPin, Value: config.DefaultCenterPulse},
	}, actuator.CallsOf(commandtest.Servo))
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	actuator := commandtest.NewRecorder()
	colorSensor := &fakeSensor{}
	colorSensor.Set(models.RawSample{Red: 633, Green: 174, Blue: 223})
	sys := &fakeSystem{}
	a := NewApp(cfg, Hardware{
		Actuator:     actuator,
		ServoChannel: cfg.CommandCfg.ServoCfg.Pin,
		Sensor:       colorSensor,
		System:       sys,
	})
	require.NoError(t, a.Init())

	done := make(chan error, 1)
	go func() {
		done <- a.Start()
	}()
	require.Eventually(t, func() bool { return a.Addr() != nil }, 2*time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return a.events.Len() == 1 }, 2*time.Second, time.Millisecond, "lap marker queued once")

	conn, err := net.Dial("tcp", a.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("S=1200&M=-400&U=B55&\n"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "LAP\n", line)

	assert.Eventually(t, func() bool { return len(sys.Brightness()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []int{55}, sys.Brightness())
	assert.True(t, actuator.Pin(config.DefaultMotorReversePin))
	assert.False(t, actuator.Pin(config.DefaultMotorForwardPin))
	servo := actuator.CallsOf(commandtest.Servo)
	assert.Equal(t, 1200, servo[len(servo)-1].Value)

	a.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop")
	}

	assert.True(t, actuator.Stopped)
	assert.True(t, colorSensor.stopped)
	assert.False(t, actuator.Pin(config.DefaultLedPin), "status led off")
	duty := actuator.CallsOf(commandtest.Duty)
	assert.Equal(t, 0, duty[len(duty)-1].Value, "motor stopped")
}

func TestStartFailsWhenPortTaken(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	cfg := testConfig(t)
	cfg.ServerCfg.Port = listener.Addr().(*net.TCPAddr).Port
	colorSensor := &fakeSensor{}
	a := NewApp(cfg, Hardware{
		Actuator: commandtest.NewRecorder(),
		Sensor:   colorSensor,
		System:   &fakeSystem{},
	})

	err = a.Start()
	assert.Error(t, err)
	assert.True(t, colorSensor.stopped)
}

func TestShutdownStopsMotorBeforeSound(t *testing.T) {
	cfg := testConfig(t)
	cfg.SpeakerCfg = config.SpeakerConfig{Enabled: true, SoundDir: "sounds"}
	actuator := commandtest.NewRecorder()

	var lock sync.Mutex
	var played []string
	dutyAtShutdownSound := -1
	audio := func(ctx context.Context, name string, args ...string) error {
		file := filepath.Base(args[len(args)-1])
		duty := actuator.CallsOf(commandtest.Duty)
		lock.Lock()
		defer lock.Unlock()
		played = append(played, file)
		if file == "shutting_down.wav" {
			dutyAtShutdownSound = duty[len(duty)-1].Value
		}
		return nil
	}

	a := NewApp(cfg, Hardware{
		Actuator:     actuator,
		ServoChannel: cfg.CommandCfg.ServoCfg.Pin,
		Sensor:       &fakeSensor{},
		System:       &fakeSystem{},
		Audio:        audio,
	})
	require.NoError(t, a.Init())

	done := make(chan error, 1)
	go func() {
		done <- a.Start()
	}()
	require.Eventually(t, func() bool { return a.Addr() != nil }, 2*time.Second, time.Millisecond)

	conn, err := net.Dial("tcp", a.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("M=800&"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		duty := actuator.CallsOf(commandtest.Duty)
		return len(duty) > 0 && duty[len(duty)-1].Value == 204
	}, 2*time.Second, time.Millisecond)
	require.Eventually(t, func() bool {
		lock.Lock()
		defer lock.Unlock()
		return len(played) == 2
	}, 2*time.Second, time.Millisecond)
	lock.Lock()
	assert.ElementsMatch(t, []string{"startup.wav", "connected.wav"}, played, "connect hook queues its sound")
	lock.Unlock()

	a.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop")
	}

	lock.Lock()
	defer lock.Unlock()
	assert.Equal(t, 0, dutyAtShutdownSound, "motor stopped before the shutdown sound")
}
