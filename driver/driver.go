// Package driver runs a CHIP-8 machine against a frontend: it paces the
// cycles, feeds key snapshots in, and passes the display and the sound timer
// state out.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
	"github.com/tuboc/chip8vm/emulator"
)

// DefaultHz is the default cycle rate, one cycle every 2ms.
const DefaultHz = 500

// ErrQuit is returned by a Frontend when the user closed it.
var ErrQuit = errors.New("quit")

// Machine is the part of the virtual machine the driver uses.
type Machine interface {
	Load(program []byte) error
	Reset()
	Step(keys emulator.Keypad) error
	Framebuffer() emulator.Framebuffer
	Dirty() bool
	SoundTimer() uint8
	PC() uint16
	State() emulator.State
	History() []string
	LastInstruction() (uint16, emulator.Instruction, bool)
}

var _ Machine = (*emulator.Chip8)(nil)

// Input is what a frontend reports once per tick.
type Input struct {
	Keys   emulator.Keypad
	Quit   bool
	Step   bool // run a single cycle, entering step mode if running
	Resume bool // leave step mode
	Reset  bool // reload the program and restart
	Hold   bool // do not run cycles, for example while the window is unfocused
}

// Frame is passed to a frontend whenever the display needs redrawing.
type Frame struct {
	Pixels  emulator.Framebuffer
	State   emulator.State
	History []string
}

// Frontend supplies input and displays frames.
type Frontend interface {
	Poll() (Input, error)
	Render(frame *Frame) error
}

// Beeper is told once per tick whether the tone should sound for the
// duration of the tick.
type Beeper interface {
	Beep(on bool, d time.Duration) error
}

// Options control the cycle loop.
type Options struct {
	Hz          int // cycles per second, 0 or less runs unpaced
	StepMode    bool
	MaxCycles   int // stop after this many cycles, 0 for no limit
	Breakpoints set.Set[uint16]
	Trace       bool // log every executed instruction at debug level
}

// Driver owns the cycle loop of one machine.
type Driver struct {
	logger   *log.Logger
	machine  Machine
	frontend Frontend
	beepers  []Beeper
	program  []byte
	opts     Options

	stepMode bool
	cycles   int
}

// New returns a driver for a machine that has program loaded.
func New(logger *log.Logger, m Machine, fe Frontend, program []byte, opts Options, beepers ...Beeper) *Driver {
	return &Driver{
		logger:   logger,
		machine:  m,
		frontend: fe,
		beepers:  beepers,
		program:  program,
		opts:     opts,
		stepMode: opts.StepMode,
	}
}

// Cycles returns the number of cycles run so far.
func (d *Driver) Cycles() int {
	return d.cycles
}

// Run loops until the frontend quits, the context is cancelled, the cycle
// limit is reached or the machine faults. Only a fault is returned as error.
func (d *Driver) Run(ctx context.Context) error {
	// beepers get the nominal tick length even when running unpaced
	period := time.Second / DefaultHz
	var tick <-chan time.Time
	if d.opts.Hz > 0 {
		period = time.Second / time.Duration(d.opts.Hz)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		tick = ticker.C
	}

	// first frame so that the frontend shows something before the first draw
	if err := d.render(); err != nil {
		return err
	}

	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				d.logger.Info("Emulation cancelled")
				return nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			d.logger.Info("Emulation cancelled")
			return nil
		}

		quit, err := d.tick(period)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
		if d.opts.MaxCycles > 0 && d.cycles >= d.opts.MaxCycles {
			d.logger.Debug("Cycle limit reached", log.Int("cycles", d.cycles))
			return nil
		}
	}
}

// tick polls the frontend once and runs at most one cycle.
func (d *Driver) tick(period time.Duration) (bool, error) {
	in, err := d.frontend.Poll()
	if errors.Is(err, ErrQuit) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("polling input: %w", err)
	}
	if in.Quit {
		return true, nil
	}

	if in.Reset {
		if err := d.reset(); err != nil {
			return false, err
		}
	}

	run := !d.stepMode
	switch {
	case in.Resume && d.stepMode:
		d.stepMode = false
		d.logger.Info("Step mode off")
		run = true
	case in.Step && !d.stepMode:
		d.stepMode = true
		d.logger.Info("Step mode on", log.Hex("pc", d.machine.PC()))
		run = false
	case in.Step:
		run = true
	}
	if in.Hold {
		run = false
	}

	if run {
		if err := d.cycle(in.Keys); err != nil {
			return false, err
		}
	}

	for _, b := range d.beepers {
		if err := b.Beep(run && d.machine.SoundTimer() > 0, period); err != nil {
			return false, fmt.Errorf("playing tone: %w", err)
		}
	}
	return false, nil
}

func (d *Driver) cycle(keys emulator.Keypad) error {
	if err := d.machine.Step(keys); err != nil {
		d.logger.Debug("Machine halted", log.Err(err))
		return fmt.Errorf("running cycle %d: %w", d.cycles, err)
	}
	d.cycles++

	if d.opts.Trace {
		if pc, ins, ok := d.machine.LastInstruction(); ok {
			d.logger.Debug("Executed",
				log.Hex("pc", pc),
				log.Hex("opcode", ins.Raw),
				log.Stringer("instruction", ins))
		}
	}

	if d.machine.Dirty() {
		if err := d.render(); err != nil {
			return err
		}
	}

	pc := d.machine.PC()
	if d.opts.Breakpoints.Contains(pc) && !d.stepMode {
		d.stepMode = true
		d.logger.Info("Breakpoint reached", log.Hex("pc", pc))
		if err := d.render(); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) reset() error {
	d.machine.Reset()
	if err := d.machine.Load(d.program); err != nil {
		return fmt.Errorf("reloading program: %w", err)
	}
	d.cycles = 0
	d.logger.Info("Machine reset")
	return d.render()
}

func (d *Driver) render() error {
	frame := &Frame{
		Pixels:  d.machine.Framebuffer(),
		State:   d.machine.State(),
		History: d.machine.History(),
	}
	if err := d.frontend.Render(frame); err != nil {
		return fmt.Errorf("rendering frame: %w", err)
	}
	return nil
}
