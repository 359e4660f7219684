package config

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuboc/chip8vm/driver"
	"github.com/tuboc/chip8vm/emulator"
)

func TestParseFlagsDefaults(t *testing.T) {
	opts, err := ParseFlags([]string{"pong.ch8"})
	require.NoError(t, err)

	assert.Equal(t, "pong.ch8", opts.ROM)
	assert.Equal(t, FrontendSDL, opts.Frontend)
	assert.Equal(t, driver.DefaultHz, opts.Hz)
	assert.Equal(t, 10, opts.Scale)
	assert.Equal(t, QuirksChip8, opts.Quirks)
	assert.False(t, opts.StepMode)
	assert.False(t, opts.Debug)
	assert.False(t, opts.Breakpoints.Contains(0x200))
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, opts Options)
	}{
		{
			name: "file flag and step mode",
			args: []string{"-f", "game.ch8", "-s"},
			check: func(t *testing.T, opts Options) {
				assert.Equal(t, "game.ch8", opts.ROM)
				assert.True(t, opts.StepMode)
			},
		},
		{
			name: "frontend is case insensitive",
			args: []string{"-frontend", "TERM", "game.ch8"},
			check: func(t *testing.T, opts Options) {
				assert.Equal(t, FrontendTerminal, opts.Frontend)
			},
		},
		{
			name: "headless run",
			args: []string{"-frontend", "headless", "-hz", "0", "-cycles", "1000", "-wav", "out.wav", "game.ch8"},
			check: func(t *testing.T, opts Options) {
				assert.Equal(t, FrontendHeadless, opts.Frontend)
				assert.Equal(t, 0, opts.Hz)
				assert.Equal(t, 1000, opts.Cycles)
				assert.Equal(t, "out.wav", opts.WavFile)
			},
		},
		{
			name: "breakpoints",
			args: []string{"-break", "0x2A0, 2b4", "game.ch8"},
			check: func(t *testing.T, opts Options) {
				assert.True(t, opts.Breakpoints.Contains(0x2a0))
				assert.True(t, opts.Breakpoints.Contains(0x2b4))
				assert.False(t, opts.Breakpoints.Contains(0x200))
			},
		},
		{
			name: "trace implies debug",
			args: []string{"-trace", "game.ch8"},
			check: func(t *testing.T, opts Options) {
				assert.True(t, opts.Trace)
				assert.True(t, opts.Debug)
			},
		},
		{
			name: "modern quirks and seed",
			args: []string{"-quirks", "modern", "-seed", "42", "game.ch8"},
			check: func(t *testing.T, opts Options) {
				assert.Equal(t, QuirksModern, opts.Quirks)
				assert.Equal(t, uint64(42), opts.Seed)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseFlags(tt.args)
			require.NoError(t, err)
			tt.check(t, opts)
		})
	}
}

func TestParseFlagsUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no rom", nil},
		{"unknown flag", []string{"-nope", "game.ch8"}},
		{"extra argument", []string{"game.ch8", "other.ch8"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFlags(tt.args)
			var usageErr *UsageError
			require.True(t, errors.As(err, &usageErr), "got %v", err)

			var buf bytes.Buffer
			usageErr.ShowUsage(&buf)
			assert.Contains(t, buf.String(), "usage: chip8vm")
			assert.Contains(t, buf.String(), "-frontend")
		})
	}
}

func TestParseFlagsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"frontend", []string{"-frontend", "vga", "game.ch8"}, "unsupported frontend"},
		{"quirks", []string{"-quirks", "xo", "game.ch8"}, "unsupported quirks preset"},
		{"scale", []string{"-scale", "0", "game.ch8"}, "invalid scale"},
		{"cycles", []string{"-cycles", "-1", "game.ch8"}, "invalid cycle limit"},
		{"breakpoint", []string{"-break", "zz", "game.ch8"}, "parsing breakpoint"},
		{"breakpoint range", []string{"-break", "1000", "game.ch8"}, "outside of memory"},
		{"headless step mode", []string{"-frontend", "headless", "-s", "game.ch8"}, "interactive frontend"},
		{"headless breakpoint", []string{"-frontend", "headless", "-break", "2a0", "game.ch8"}, "interactive frontend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFlags(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestQuirksPreset(t *testing.T) {
	q, err := QuirksPreset(QuirksChip8)
	require.NoError(t, err)
	assert.Equal(t, emulator.DefaultQuirks(), q)

	q, err = QuirksPreset(QuirksModern)
	require.NoError(t, err)
	assert.Equal(t, emulator.ModernQuirks(), q)
}

func TestCreateLogger(t *testing.T) {
	assert.NotNil(t, CreateLogger(false, false))
	assert.NotNil(t, CreateLogger(true, false))
	assert.NotNil(t, CreateLogger(false, true))
}
