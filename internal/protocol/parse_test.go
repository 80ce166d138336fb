package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Frame
	}{
		{
			name: "all keys",
			in:   "S=120&M=-400&U=B55&",
			want: Frame{Commands: []Command{
				ServoCommand{Pulse: 120},
				MotorCommand{Speed: -400},
				SystemCommand{Action: ActionBrightness, Value: 55},
			}},
		},
		{
			name: "dispatch order ignores buffer order",
			in:   "U=W&M=250&S=1500&",
			want: Frame{Commands: []Command{
				ServoCommand{Pulse: 1500},
				MotorCommand{Speed: 250},
				SystemCommand{Action: ActionLinkQuality},
			}},
		},
		{
			name: "value runs to end of buffer without delimiter",
			in:   "M=-1000",
			want: Frame{Commands: []Command{MotorCommand{Speed: -1000}}},
		},
		{
			name: "trailing whitespace stripped",
			in:   "S=1400&M=10\r\n",
			want: Frame{Commands: []Command{ServoCommand{Pulse: 1400}, MotorCommand{Speed: 10}}},
		},
		{
			name: "decimal speed truncated",
			in:   "M=-12.9&",
			want: Frame{Commands: []Command{MotorCommand{Speed: -12}}},
		},
		{
			name: "first occurrence wins",
			in:   "M=1&M=2&",
			want: Frame{Commands: []Command{MotorCommand{Speed: 1}}},
		},
		{
			name: "unrecognized content ignored",
			in:   "hello&X=4&M=5&",
			want: Frame{Commands: []Command{MotorCommand{Speed: 5}}},
		},
		{
			name: "quit",
			in:   "quit\n",
			want: Frame{Quit: true},
		},
		{
			name: "quit inside a longer buffer is not quit",
			in:   "M=5&quit",
			want: Frame{Commands: []Command{MotorCommand{Speed: 5}}},
		},
		{
			name: "empty",
			in:   "",
			want: Frame{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSystemActions(t *testing.T) {
	tests := []struct {
		in   string
		want SystemCommand
	}{
		{in: "U=S&", want: SystemCommand{Action: ActionShutdown}},
		{in: "U=R&", want: SystemCommand{Action: ActionReboot}},
		{in: "U=B55&", want: SystemCommand{Action: ActionBrightness, Value: 55}},
		{in: "U=B:10&", want: SystemCommand{Action: ActionBrightness, Value: 10}},
		{in: "U=V2000000&", want: SystemCommand{Action: ActionBitrate, Value: 2000000}},
		{in: "U=V:800000", want: SystemCommand{Action: ActionBitrate, Value: 800000}},
		{in: "U=W&", want: SystemCommand{Action: ActionLinkQuality}},
		{in: "U=CAL3&", want: SystemCommand{Action: ActionCalibrate, Value: 3}},
		{in: "U=CAL:0&", want: SystemCommand{Action: ActionCalibrate, Value: 0}},
		{in: "U=CALD&", want: SystemCommand{Action: ActionRestoreDefaults}},
		{in: "U=CAL:D&", want: SystemCommand{Action: ActionRestoreDefaults}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, []Command{tt.want}, got.Commands)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		in  string
		key string
	}{
		{in: "S=abc&", key: KeyServo},
		{in: "S=-5&", key: KeyServo},
		{in: "S=70000&", key: KeyServo},
		{in: "M=fast&", key: KeyMotor},
		{in: "M=&", key: KeyMotor},
		{in: "M=NaN&", key: KeyMotor},
		{in: "U=&", key: KeySystem},
		{in: "U=X&", key: KeySystem},
		{in: "U=B5&", key: KeySystem},
		{in: "U=B123&", key: KeySystem},
		{in: "U=Vx&", key: KeySystem},
		{in: "U=V-5&", key: KeySystem},
		{in: "U=CAL&", key: KeySystem},
		{in: "U=CAL12&", key: KeySystem},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			frame, err := Parse(tt.in)
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, tt.key, parseErr.Key)
			assert.Empty(t, frame.Commands)
		})
	}
}

func TestParseKeepsValidCommandsAlongsideErrors(t *testing.T) {
	frame, err := Parse("S=oops&M=300&U=Q&")
	require.Error(t, err)
	assert.Equal(t, []Command{MotorCommand{Speed: 300}}, frame.Commands)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, KeyServo, parseErr.Key)
}
