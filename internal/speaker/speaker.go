package speaker

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"path/filepath"

	"github.com/Speshl/gorrc_iracer/internal/config"
)

const (
	SoundStartup            = "startup"
	SoundShutdown           = "shutdown"
	SoundClientConnected    = "client_connected"
	SoundClientDisconnected = "client_disconnected"
)

var soundMap = map[string]string{
	SoundStartup:            "startup.wav",
	SoundShutdown:           "shutting_down.wav",
	SoundClientConnected:    "connected.wav",
	SoundClientDisconnected: "disconnected.wav",
}

// Player runs the audio command to completion.
type Player func(ctx context.Context, name string, args ...string) error

func execPlayer(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	err := cmd.Start()
	if err != nil {
		return fmt.Errorf("error starting audio playback - %w", err)
	}
	err = cmd.Wait()
	if err != nil {
		return fmt.Errorf("error during audio playback - %w", err)
	}
	return nil
}

type Speaker struct {
	soundChannel chan string
	cfg          config.SpeakerConfig
	play         Player
}

func NewSpeaker(cfg config.SpeakerConfig, soundChannel chan string) *Speaker {
	return NewSpeakerWithPlayer(cfg, soundChannel, execPlayer)
}

func NewSpeakerWithPlayer(cfg config.SpeakerConfig, soundChannel chan string, play Player) *Speaker {
	return &Speaker{
		soundChannel: soundChannel,
		cfg:          cfg,
		play:         play,
	}
}

// Queue asks the speaker loop to play a sound. It never blocks, a full queue drops the sound.
func (s *Speaker) Queue(sound string) {
	select {
	case s.soundChannel <- sound:
	default:
		log.Printf("warning: speaker queue full, dropping %s sound\n", sound)
	}
}

func (s *Speaker) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			log.Println("speaker done due to ctx")
			return nil
		case data, ok := <-s.soundChannel:
			if !ok {
				log.Println("speaker channel closed, stopping")
				return nil
			}

			err := s.Play(ctx, data)
			if err != nil {
				log.Printf("failed to play sound - %s\n", err.Error())
			}
		}
	}
}

func (s *Speaker) Play(ctx context.Context, sound string) error {
	if !s.cfg.Enabled {
		log.Printf("warning: speaker disabled, not playing %s sound\n", sound)
		return nil
	}

	soundFile, ok := soundMap[sound]
	if !ok {
		return fmt.Errorf("error: sound %q not found", sound)
	}

	log.Printf("start playing %s sound\n", sound)
	defer log.Printf("finished playing %s sound\n", sound)

	args := []string{"-q"}
	if s.cfg.Device != "" {
		args = append(args, "-D", s.cfg.Device)
	}
	args = append(args, filepath.Join(s.cfg.SoundDir, soundFile))
	return s.play(ctx, "aplay", args...)
}
