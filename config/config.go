// Package config handles command line options and logger setup.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
	"github.com/tuboc/chip8vm/driver"
	"github.com/tuboc/chip8vm/emulator"
)

// Supported frontends.
const (
	FrontendSDL      = "sdl"
	FrontendTerminal = "term"
	FrontendHeadless = "headless"
)

// Supported quirk presets.
const (
	QuirksChip8  = "chip8"
	QuirksModern = "modern"
)

// Options are the settings of one emulator run.
type Options struct {
	ROM         string
	StepMode    bool
	Frontend    string
	Hz          int
	Scale       int
	Quirks      string
	Cycles      int
	WavFile     string
	Breakpoints set.Set[uint16]
	Seed        uint64
	Debug       bool
	Trace       bool
	Quiet       bool
}

// UsageError represents an error that should show usage information.
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage and the flag defaults.
func (e *UsageError) ShowUsage(w io.Writer) {
	fmt.Fprintf(w, "usage: chip8vm [options] <rom file>\n\n")
	e.flags.SetOutput(w)
	e.flags.PrintDefaults()
	fmt.Fprintln(w)
}

// ParseFlags parses the command line arguments, without the program name.
func ParseFlags(args []string) (Options, error) {
	flags := flag.NewFlagSet("chip8vm", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var opts Options
	var breakpoints string
	flags.StringVar(&opts.ROM, "f", "", "chip8 image file path")
	flags.BoolVar(&opts.StepMode, "s", false, "start with stepMode")
	flags.StringVar(&opts.Frontend, "frontend", FrontendSDL, "frontend to use (sdl/term/headless)")
	flags.IntVar(&opts.Hz, "hz", driver.DefaultHz, "cycles per second, 0 runs as fast as possible")
	flags.IntVar(&opts.Scale, "scale", 10, "window pixels per display pixel")
	flags.StringVar(&opts.Quirks, "quirks", QuirksChip8, "instruction interpretation (chip8/modern)")
	flags.IntVar(&opts.Cycles, "cycles", 0, "stop after this many cycles, 0 for no limit")
	flags.StringVar(&opts.WavFile, "wav", "", "record the tone to this .wav file")
	flags.StringVar(&breakpoints, "break", "", "comma separated hex addresses to enter step mode at")
	flags.Uint64Var(&opts.Seed, "seed", 0, "random seed, 0 picks one from the clock")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debug logging")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, implies -debug")
	flags.BoolVar(&opts.Quiet, "q", false, "only log errors")

	if err := flags.Parse(args); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}

	rest := flags.Args()
	if opts.ROM == "" && len(rest) > 0 {
		opts.ROM = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 {
		return opts, &UsageError{flags: flags, msg: fmt.Sprintf("unexpected argument %s", rest[0])}
	}
	if opts.ROM == "" {
		return opts, &UsageError{flags: flags, msg: "no rom file given"}
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}

	var err error
	opts.Breakpoints, err = ParseBreakpoints(breakpoints)
	if err != nil {
		return opts, err
	}
	if opts.Frontend == FrontendHeadless && (opts.StepMode || len(opts.Breakpoints) > 0) {
		return opts, errors.New("step mode and breakpoints need an interactive frontend")
	}
	if opts.Trace {
		opts.Debug = true
	}
	return opts, nil
}

// normalizeOptions normalizes and validates option values.
func normalizeOptions(opts *Options) error {
	opts.Frontend = strings.ToLower(opts.Frontend)
	switch opts.Frontend {
	case FrontendSDL, FrontendTerminal, FrontendHeadless:
	default:
		return fmt.Errorf("unsupported frontend: %s. Valid options: %s, %s, %s",
			opts.Frontend, FrontendSDL, FrontendTerminal, FrontendHeadless)
	}

	opts.Quirks = strings.ToLower(opts.Quirks)
	if _, err := QuirksPreset(opts.Quirks); err != nil {
		return err
	}

	if opts.Scale < 1 {
		return fmt.Errorf("invalid scale %d", opts.Scale)
	}
	if opts.Cycles < 0 {
		return fmt.Errorf("invalid cycle limit %d", opts.Cycles)
	}
	return nil
}

// QuirksPreset returns the quirks of a named preset.
func QuirksPreset(name string) (emulator.Quirks, error) {
	switch name {
	case QuirksChip8:
		return emulator.DefaultQuirks(), nil
	case QuirksModern:
		return emulator.ModernQuirks(), nil
	}
	return emulator.Quirks{}, fmt.Errorf("unsupported quirks preset: %s. Valid options: %s, %s",
		name, QuirksChip8, QuirksModern)
}

// ParseBreakpoints parses a comma separated list of hex addresses like
// "0x2a0,2B4".
func ParseBreakpoints(s string) (set.Set[uint16], error) {
	breakpoints := set.New[uint16]()
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		field = strings.TrimPrefix(strings.ToLower(field), "0x")
		address, err := strconv.ParseUint(field, 16, 16)
		if err != nil {
			return breakpoints, fmt.Errorf("parsing breakpoint '%s': %w", field, err)
		}
		if address >= emulator.MemorySize {
			return breakpoints, fmt.Errorf("breakpoint %03X outside of memory", address)
		}
		breakpoints.Add(uint16(address))
	}
	return breakpoints, nil
}

// CreateLogger returns the logger for the given verbosity.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
