package config

import "time"

const (
	AppEnvBase = "GORRC_"

	DefaultEnvFile = ".env"

	// Default Server Options
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 5001
	DefaultReadTimeout     = 0 * time.Second //0 disables the timeout
	DefaultWriteTimeout    = 2 * time.Second
	DefaultChunkSize       = 255
	DefaultEventBufferSize = 64

	// Default Sensor Options
	DefaultSensorDevice   = "/dev/i2c-1"
	DefaultSensorAddress  = 0x44
	DefaultSensorWarmUp   = 1500 * time.Millisecond
	DefaultPollInterval   = 0 * time.Millisecond
	DefaultSensorScale    = false
	DefaultRedScaleMin    = 5
	DefaultRedScaleMax    = 210
	DefaultGreenScaleMin  = 3
	DefaultGreenScaleMax  = 160
	DefaultBlueScaleMin   = 5
	DefaultBlueScaleMax   = 209
	DefaultScaleOutputMax = 255

	// Default Color Options
	DefaultRatioTolerance  = 0.03 //0.04-0.13
	DefaultSumTolerance    = 300  //100-510
	DefaultCalibrationFile = "iracer.yaml"

	// Default Command Options
	DefaultCommandDriver = "pipwm"
	DefaultAddress       = 0x40
	DefaultI2CDevice     = "/dev/i2c-1"
	DefaultServoPin      = 13
	DefaultServoChannel  = 0
	DefaultMaxPulse      = 2500
	DefaultMinPulse      = 500
	DefaultCenterPulse   = 1500

	// Default Motor Options
	DefaultMotorPwmPin     = 18
	DefaultMotorForwardPin = 27
	DefaultMotorReversePin = 17
	DefaultMotorSettle     = 500 * time.Millisecond
	DefaultMotorMaxInput   = 1000
	DefaultMotorMaxDuty    = 255

	// Default System Options
	DefaultWirelessInterface = "wlan0"
	DefaultVideoDevice       = "/dev/video0"
	DefaultLedPin            = 20
	DefaultHealthInterval    = 30 * time.Second
	DefaultLinkQueryTimeout  = 2 * time.Second

	// Default Speaker Options
	DefaultSpeakerEnabled  = false
	DefaultSpeakerDevice   = "default"
	DefaultSpeakerSoundDir = "./sounds"
)

type Config struct {
	ServerCfg  ServerConfig
	SensorCfg  SensorConfig
	ColorCfg   ColorConfig
	CommandCfg CommandConfig
	MotorCfg   MotorConfig
	SystemCfg  SystemConfig
	SpeakerCfg SpeakerConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ChunkSize       int
	EventBufferSize int
}

type SensorConfig struct {
	Device       string
	Address      byte
	WarmUp       time.Duration
	PollInterval time.Duration
	Scale        ScaleConfig
}

// ScaleConfig maps raw sensor counts onto a fixed output range per channel.
type ScaleConfig struct {
	Enabled   bool
	RedMin    float64
	RedMax    float64
	GreenMin  float64
	GreenMax  float64
	BlueMin   float64
	BlueMax   float64
	OutputMax float64
}

type ColorConfig struct {
	RatioTolerance  float64
	SumTolerance    float64
	CalibrationFile string
}

type CommandConfig struct {
	CommandDriver string
	Address       byte
	I2CDevice     string
	ServoCfg      ServoConfig
}

type ServoConfig struct {
	Pin         int
	Channel     int
	MaxPulse    int
	MinPulse    int
	CenterPulse int
}

type MotorConfig struct {
	PwmPin     int
	ForwardPin int
	ReversePin int
	Settle     time.Duration
	MaxInput   int
	MaxDuty    int
}

type SystemConfig struct {
	WirelessInterface string
	VideoDevice       string
	LedPin            int
	HealthInterval    time.Duration
	LinkQueryTimeout  time.Duration
}

type SpeakerConfig struct {
	Enabled  bool
	Device   string
	SoundDir string
}
