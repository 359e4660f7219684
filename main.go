// Package main implements the command line CHIP-8 emulator.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"github.com/tuboc/chip8vm/config"
	"github.com/tuboc/chip8vm/driver"
	"github.com/tuboc/chip8vm/emulator"
	"github.com/tuboc/chip8vm/sdlui"
	"github.com/tuboc/chip8vm/termui"
	"github.com/tuboc/chip8vm/wavwriter"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

// SDL has to be driven from the main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	ctx := app.Context()

	opts, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *config.UsageError
		if errors.As(err, &usageErr) {
			usageErr.ShowUsage(os.Stderr)
		} else {
			logger.Error("Invalid options", log.Err(err))
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	logger.Info("chip8vm", log.String("version", buildinfo.Version(version, commit, date)))

	if err := run(ctx, logger, opts); err != nil {
		logger.Error("Emulation failed", log.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *log.Logger, opts config.Options) error {
	program, err := os.ReadFile(opts.ROM)
	if err != nil {
		return fmt.Errorf("reading program: %w", err)
	}

	machine, err := newMachine(opts, program)
	if err != nil {
		return err
	}
	logger.Info("Program loaded",
		log.String("file", opts.ROM),
		log.Int("size", len(program)),
		log.String("quirks", opts.Quirks))

	var beepers []driver.Beeper
	if opts.WavFile != "" {
		wav := wavwriter.New(opts.WavFile)
		defer func() {
			if err := wav.Close(); err != nil {
				logger.Error("Writing tone recording failed", log.Err(err))
			}
		}()
		beepers = append(beepers, wav)
	}

	driverOpts := driver.Options{
		Hz:          opts.Hz,
		StepMode:    opts.StepMode,
		MaxCycles:   opts.Cycles,
		Breakpoints: opts.Breakpoints,
		Trace:       opts.Trace,
	}

	switch opts.Frontend {
	case config.FrontendSDL:
		ui, err := sdlui.New(opts.Scale, opts.Debug)
		if err != nil {
			return err
		}
		defer ui.Close()
		beepers = append(beepers, ui)
		return driver.New(logger, machine, ui, program, driverOpts, beepers...).Run(ctx)

	case config.FrontendTerminal:
		ui, err := termui.New(os.Stdin, os.Stdout, opts.Debug)
		if err != nil {
			return err
		}
		defer ui.Close()
		beepers = append(beepers, ui)
		return driver.New(logger, machine, ui, program, driverOpts, beepers...).Run(ctx)

	default:
		ui := &termui.Headless{}
		d := driver.New(logger, machine, ui, program, driverOpts, beepers...)
		runErr := d.Run(ctx)
		logger.Info("Emulation stopped",
			log.Int("cycles", d.Cycles()),
			log.Int("frames", ui.Frames()))
		if err := ui.Dump(os.Stdout); err != nil {
			return errors.Join(runErr, err)
		}
		return runErr
	}
}

func newMachine(opts config.Options, program []byte) (*emulator.Chip8, error) {
	quirks, err := config.QuirksPreset(opts.Quirks)
	if err != nil {
		return nil, err
	}

	machineOpts := []emulator.Option{emulator.WithQuirks(quirks)}
	if opts.Seed != 0 {
		machineOpts = append(machineOpts, emulator.WithRand(rand.New(rand.NewPCG(opts.Seed, opts.Seed))))
	}

	machine := emulator.New(machineOpts...)
	if err := machine.Load(program); err != nil {
		return nil, err
	}
	return machine, nil
}
