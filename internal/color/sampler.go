package color

import (
	"context"
	"log"
	"time"

	"github.com/Speshl/gorrc_iracer/internal/sensor"
	"github.com/cenkalti/backoff/v4"
)

const (
	retryInitialInterval = 10 * time.Millisecond
	retryMaxInterval     = time.Second
)

// Sampler polls the color sensor and feeds every sample to the classifier. It never waits on the
// network side.
type Sampler struct {
	reader     sensor.ChannelReader
	classifier *Classifier
	interval   time.Duration
}

func NewSampler(reader sensor.ChannelReader, classifier *Classifier, interval time.Duration) *Sampler {
	return &Sampler{
		reader:     reader,
		classifier: classifier,
		interval:   interval,
	}
}

func (s *Sampler) Start(ctx context.Context) error {
	log.Println("starting color sampler")

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = retryInitialInterval
	retry.MaxInterval = retryMaxInterval
	retry.MaxElapsedTime = 0 //never give up on the sensor
	retry.Reset()

	failing := false
	for {
		select {
		case <-ctx.Done():
			log.Printf("stopping color sampler: %s\n", ctx.Err().Error())
			return ctx.Err()
		default:
		}

		raw, err := s.reader.ReadChannels()
		if err != nil {
			wait := retry.NextBackOff()
			log.Printf("error: %s - retrying in %s\n", err.Error(), wait)
			failing = true
			sleep(ctx, wait)
			continue
		}
		if failing {
			log.Println("color sensor recovered")
			failing = false
			retry.Reset()
		}

		s.classifier.Classify(raw)

		if s.interval > 0 {
			sleep(ctx, s.interval)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
