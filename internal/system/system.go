package system

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Speshl/gorrc_iracer/internal/config"
)

const LinkQualityPrefix = "Link Quality"

// Executor runs the os level actions the controller can ask for.
type Executor interface {
	Shutdown() error
	Reboot() error
	SetBrightness(value int) error
	SetBitrate(value int) error
	LinkQuality(ctx context.Context) ([]string, error)
}

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Shell implements Executor with the usual raspberry pi tools.
type Shell struct {
	cfg config.SystemConfig
	run Runner
}

func NewShell(cfg config.SystemConfig) *Shell {
	return NewShellWithRunner(cfg, execRunner)
}

func NewShellWithRunner(cfg config.SystemConfig, run Runner) *Shell {
	return &Shell{
		cfg: cfg,
		run: run,
	}
}

func (s *Shell) Shutdown() error {
	log.Println("shutting down")
	s.background("sudo", "shutdown", "-h", "now")
	return nil
}

func (s *Shell) Reboot() error {
	log.Println("rebooting")
	s.background("sudo", "reboot")
	return nil
}

func (s *Shell) SetBrightness(value int) error {
	log.Printf("brightness set to: %d\n", value)
	s.background("v4l2-ctl", "-d", s.cfg.VideoDevice, "--set-ctrl=brightness="+strconv.Itoa(value))
	return nil
}

func (s *Shell) SetBitrate(value int) error {
	log.Printf("bitrate set to: %d\n", value)
	s.background("v4l2-ctl", "-d", s.cfg.VideoDevice, "--set-ctrl=video_bitrate="+strconv.Itoa(value))
	return nil
}

// LinkQuality returns the trimmed "Link Quality" lines reported for the wireless interface.
func (s *Shell) LinkQuality(ctx context.Context) ([]string, error) {
	if s.cfg.LinkQueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.LinkQueryTimeout)
		defer cancel()
	}

	output, err := s.run(ctx, "iwconfig", s.cfg.WirelessInterface)
	if err != nil {
		return nil, fmt.Errorf("error querying link quality for %s - %w", s.cfg.WirelessInterface, err)
	}
	return ParseLinkQuality(output), nil
}

// background starts a command without waiting for it, the dispatch path must not block.
func (s *Shell) background(name string, args ...string) {
	go func() {
		output, err := s.run(context.Background(), name, args...)
		if err != nil {
			log.Printf("error: %s %s failed - %s: %s\n", name, strings.Join(args, " "), err.Error(), strings.TrimSpace(string(output)))
		}
	}()
}

func ParseLinkQuality(output []byte) []string {
	lines := make([]string, 0, 1)
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.Contains(line, LinkQualityPrefix) {
			lines = append(lines, line)
		}
	}
	return lines
}
