package sensor

import (
	"errors"

	"github.com/Speshl/gorrc_iracer/internal/config"
	"github.com/Speshl/gorrc_iracer/internal/models"
)

var ErrRead = errors.New("color sensor read failed")

// ChannelReader polls the peripheral for its latest red, green and blue counts.
type ChannelReader interface {
	ReadChannels() (models.RawSample, error)
}

// Scaler linearly translates raw counts into a fixed range per channel. A disabled scaler
// returns samples unchanged.
type Scaler struct {
	cfg config.ScaleConfig
}

func NewScaler(cfg config.ScaleConfig) Scaler {
	return Scaler{cfg: cfg}
}

func (s Scaler) Apply(sample models.RawSample) models.RawSample {
	if !s.cfg.Enabled {
		return sample
	}
	return models.RawSample{
		Red:   translate(sample.Red, s.cfg.RedMin, s.cfg.RedMax, s.cfg.OutputMax),
		Green: translate(sample.Green, s.cfg.GreenMin, s.cfg.GreenMax, s.cfg.OutputMax),
		Blue:  translate(sample.Blue, s.cfg.BlueMin, s.cfg.BlueMax, s.cfg.OutputMax),
	}
}

func translate(value uint16, min, max, outputMax float64) uint16 {
	if max <= min {
		return value
	}
	mapped := outputMax * (float64(value) - min) / (max - min)
	if mapped < 0 {
		return 0
	} else if mapped > outputMax {
		return uint16(outputMax)
	}
	return uint16(mapped)
}

// ScaledReader applies a Scaler to every sample of the wrapped reader.
type ScaledReader struct {
	reader ChannelReader
	scaler Scaler
}

func NewScaledReader(reader ChannelReader, scaler Scaler) *ScaledReader {
	return &ScaledReader{
		reader: reader,
		scaler: scaler,
	}
}

func (s *ScaledReader) ReadChannels() (models.RawSample, error) {
	sample, err := s.reader.ReadChannels()
	if err != nil {
		return sample, err
	}
	return s.scaler.Apply(sample), nil
}
