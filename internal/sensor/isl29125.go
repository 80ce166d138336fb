package sensor

import (
	"fmt"
	"log"
	"time"

	"github.com/Speshl/gorrc_iracer/internal/config"
	"github.com/Speshl/gorrc_iracer/internal/models"
	"github.com/googolgl/go-i2c"
)

const (
	RegConfig1  = 0x01
	RegGreenLow = 0x09

	// RGB mode, 10k lux range, 16 bit samples
	ConfigRGB10kLux = 0x15

	dataLength = 6
)

// Bus is the subset of an i2c handle the sensor needs.
type Bus interface {
	WriteRegU8(reg byte, value byte) error
	WriteBytes(buf []byte) (int, error)
	ReadBytes(buf []byte) (int, error)
	Close() error
}

// ISL29125 reads the RGB light sensor mounted under the car.
type ISL29125 struct {
	cfg config.SensorConfig
	bus Bus
}

func NewISL29125(cfg config.SensorConfig) *ISL29125 {
	return &ISL29125{
		cfg: cfg,
	}
}

// NewISL29125WithBus skips opening the i2c device, Init still configures the sensor.
func NewISL29125WithBus(cfg config.SensorConfig, bus Bus) *ISL29125 {
	return &ISL29125{
		cfg: cfg,
		bus: bus,
	}
}

func (s *ISL29125) Init() error {
	if s.bus == nil {
		bus, err := i2c.New(s.cfg.Address, s.cfg.Device)
		if err != nil {
			return fmt.Errorf("error starting i2c with address - %w", err)
		}
		s.bus = bus
	}

	err := s.bus.WriteRegU8(RegConfig1, ConfigRGB10kLux)
	if err != nil {
		return fmt.Errorf("error configuring color sensor - %w", err)
	}
	log.Printf("color sensor configured at 0x%02x on %s, warming up for %s\n", s.cfg.Address, s.cfg.Device, s.cfg.WarmUp)
	time.Sleep(s.cfg.WarmUp)
	return nil
}

func (s *ISL29125) Stop() error {
	if s.bus == nil {
		return nil
	}
	err := s.bus.Close()
	if err != nil {
		return fmt.Errorf("failed closing color sensor bus: %w", err)
	}
	return nil
}

func (s *ISL29125) ReadChannels() (models.RawSample, error) {
	if s.bus == nil {
		return models.RawSample{}, fmt.Errorf("%w: sensor not initialized", ErrRead)
	}

	_, err := s.bus.WriteBytes([]byte{RegGreenLow})
	if err != nil {
		return models.RawSample{}, fmt.Errorf("%w: selecting data register - %w", ErrRead, err)
	}

	data := make([]byte, dataLength)
	n, err := s.bus.ReadBytes(data)
	if err != nil {
		return models.RawSample{}, fmt.Errorf("%w: %w", ErrRead, err)
	}
	if n != dataLength {
		return models.RawSample{}, fmt.Errorf("%w: short read %d of %d bytes", ErrRead, n, dataLength)
	}
	return decode(data), nil
}

// decode unpacks the little endian green, red, blue register block.
func decode(data []byte) models.RawSample {
	return models.RawSample{
		Green: uint16(data[1])<<8 | uint16(data[0]),
		Red:   uint16(data[3])<<8 | uint16(data[2]),
		Blue:  uint16(data[5])<<8 | uint16(data[4]),
	}
}
