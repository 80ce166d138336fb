package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func GetConfig() Config {
	loadEnvFile(GetPathEnv("ENVFILE", DefaultEnvFile))

	cfg := Config{
		ServerCfg:  GetServerConfig(),
		SensorCfg:  GetSensorConfig(),
		ColorCfg:   GetColorConfig(),
		CommandCfg: GetCommandConfig(),
		MotorCfg:   GetMotorConfig(),
		SystemCfg:  GetSystemConfig(),
		SpeakerCfg: GetSpeakerConfig(),
	}

	log.Printf("app Config: \n%+v\n", cfg)
	return cfg
}

// loadEnvFile fills the environment from a dotenv file. Variables already set win.
func loadEnvFile(path string) {
	err := godotenv.Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("warning: env file %s not loaded - error: %s\n", path, err)
		}
		return
	}
	log.Printf("loaded env file: %s\n", path)
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Host:            GetStringEnv("HOST", DefaultHost),
		Port:            GetIntEnv("PORT", DefaultPort),
		ReadTimeout:     GetDurationEnv("READTIMEOUT", DefaultReadTimeout),
		WriteTimeout:    GetDurationEnv("WRITETIMEOUT", DefaultWriteTimeout),
		ChunkSize:       GetIntEnv("CHUNKSIZE", DefaultChunkSize),
		EventBufferSize: GetIntEnv("EVENTBUFFERSIZE", DefaultEventBufferSize),
	}
}

func GetSensorConfig() SensorConfig {
	envPrefix := "SENSOR_"
	return SensorConfig{
		Device:       GetStringEnv(envPrefix+"DEVICE", DefaultSensorDevice),
		Address:      byte(GetIntEnv(envPrefix+"ADDRESS", DefaultSensorAddress)),
		WarmUp:       GetDurationEnv(envPrefix+"WARMUP", DefaultSensorWarmUp),
		PollInterval: GetDurationEnv(envPrefix+"POLLINTERVAL", DefaultPollInterval),
		Scale: ScaleConfig{
			Enabled:   GetBoolEnv(envPrefix+"SCALE", DefaultSensorScale),
			RedMin:    GetFloatEnv(envPrefix+"RED_MIN", DefaultRedScaleMin),
			RedMax:    GetFloatEnv(envPrefix+"RED_MAX", DefaultRedScaleMax),
			GreenMin:  GetFloatEnv(envPrefix+"GREEN_MIN", DefaultGreenScaleMin),
			GreenMax:  GetFloatEnv(envPrefix+"GREEN_MAX", DefaultGreenScaleMax),
			BlueMin:   GetFloatEnv(envPrefix+"BLUE_MIN", DefaultBlueScaleMin),
			BlueMax:   GetFloatEnv(envPrefix+"BLUE_MAX", DefaultBlueScaleMax),
			OutputMax: GetFloatEnv(envPrefix+"SCALE_OUTPUT", DefaultScaleOutputMax),
		},
	}
}

func GetColorConfig() ColorConfig {
	return ColorConfig{
		RatioTolerance:  GetFloatEnv("RATIOTOLERANCE", DefaultRatioTolerance),
		SumTolerance:    GetFloatEnv("SUMTOLERANCE", DefaultSumTolerance),
		CalibrationFile: GetPathEnv("CALIBRATIONFILE", DefaultCalibrationFile),
	}
}

func GetCommandConfig() CommandConfig {
	return CommandConfig{
		CommandDriver: GetStringEnv("SERVODRIVER", DefaultCommandDriver),
		Address:       DefaultAddress, //  GetStringEnv("ADDRESS", DefaultAddress),
		I2CDevice:     GetStringEnv("I2CDEVICE", DefaultI2CDevice),
		ServoCfg: ServoConfig{
			Pin:         GetIntEnv("SERVO_PIN", DefaultServoPin),
			Channel:     GetIntEnv("SERVO_CHANNEL", DefaultServoChannel),
			MaxPulse:    GetIntEnv("SERVO_MAXPULSE", DefaultMaxPulse),
			MinPulse:    GetIntEnv("SERVO_MINPULSE", DefaultMinPulse),
			CenterPulse: GetIntEnv("SERVO_CENTERPULSE", DefaultCenterPulse),
		},
	}
}

func GetMotorConfig() MotorConfig {
	envPrefix := "MOTOR_"
	return MotorConfig{
		PwmPin:     GetIntEnv(envPrefix+"PWMPIN", DefaultMotorPwmPin),
		ForwardPin: GetIntEnv(envPrefix+"FORWARDPIN", DefaultMotorForwardPin),
		ReversePin: GetIntEnv(envPrefix+"REVERSEPIN", DefaultMotorReversePin),
		Settle:     GetDurationEnv(envPrefix+"SETTLE", DefaultMotorSettle),
		MaxInput:   GetIntEnv(envPrefix+"MAXINPUT", DefaultMotorMaxInput),
		MaxDuty:    GetIntEnv(envPrefix+"MAXDUTY", DefaultMotorMaxDuty),
	}
}

func GetSystemConfig() SystemConfig {
	return SystemConfig{
		WirelessInterface: GetStringEnv("WIRELESSINTERFACE", DefaultWirelessInterface),
		VideoDevice:       GetPathEnv("VIDEODEVICE", DefaultVideoDevice),
		LedPin:            GetIntEnv("LEDPIN", DefaultLedPin),
		HealthInterval:    GetDurationEnv("HEALTHINTERVAL", DefaultHealthInterval),
		LinkQueryTimeout:  GetDurationEnv("LINKQUERYTIMEOUT", DefaultLinkQueryTimeout),
	}
}

func GetSpeakerConfig() SpeakerConfig {
	return SpeakerConfig{
		Enabled:  GetBoolEnv("SPEAKERENABLED", DefaultSpeakerEnabled),
		Device:   GetPathEnv("SPEAKERDEVICE", DefaultSpeakerDevice),
		SoundDir: GetPathEnv("SOUNDDIR", DefaultSpeakerSoundDir),
	}
}

func GetIntEnv(env string, defaultValue int) int {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	} else {
		value, err := strconv.ParseInt(strings.Trim(envValue, "\r"), 0, 32)
		if err != nil {
			log.Printf("warning:%s not parsed - error: %s\n", env, err)
			return defaultValue
		} else {
			return int(value)
		}
	}
}

func GetBoolEnv(env string, defaultValue bool) bool {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	} else {
		value, err := strconv.ParseBool(strings.Trim(envValue, "\r"))
		if err != nil {
			log.Printf("warning:%s not parsed - error: %s\n", env, err)
			return defaultValue
		} else {
			return value
		}
	}
}

func GetStringEnv(env string, defaultValue string) string {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	} else {
		return strings.ToLower(strings.Trim(envValue, "\r"))
	}
}

// GetPathEnv is GetStringEnv without lowercasing, file paths are case sensitive.
func GetPathEnv(env string, defaultValue string) string {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	}
	return strings.Trim(envValue, "\r")
}

func GetFloatEnv(env string, defaultValue float64) float64 {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	} else {
		value, err := strconv.ParseFloat(strings.Trim(envValue, "\r"), 64)
		if err != nil {
			log.Printf("warning:%s not parsed - error: %s\n", env, err)
			return defaultValue
		}
		return value
	}
}

func GetDurationEnv(env string, defaultValue time.Duration) time.Duration {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	}
	value, err := time.ParseDuration(strings.Trim(envValue, "\r"))
	if err != nil {
		log.Printf("warning:%s not parsed - error: %s\n", env, err)
		return defaultValue
	}
	return value
}
