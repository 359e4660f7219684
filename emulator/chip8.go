// Package emulator implements the CHIP-8 virtual machine: memory, registers,
// stack, timers, the framebuffer and the fetch-decode-execute cycle.
package emulator

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// CHIP-8 memory map (4KB total):
//
//	0x000-0x04F: font sprites (16 glyphs, 5 bytes each)
//	0x050-0x1FF: reserved for the interpreter
//	0x200-0xFFF: program space
const (
	MemorySize             = 4096
	RegisterCount          = 16
	StackSize              = 16
	KeyCount               = 16
	Chip8DisplayW          = 64
	Chip8DisplayH          = 32
	CharacterSpritesOffset = 0x000
	CharacterSpriteBytes   = 5
	ProgramOffset          = 0x200
	MaxProgramSize         = MemorySize - ProgramOffset
)

// Keypad is the held state of the 16 logical keys 0x0-0xF.
type Keypad [KeyCount]bool

// Framebuffer holds the 64x32 monochrome display. Pixel (x,y) is at y*64+x.
type Framebuffer [Chip8DisplayW * Chip8DisplayH]bool

// At reports whether the pixel at x,y is set. Out of range coordinates are unset.
func (fb Framebuffer) At(x, y int) bool {
	if x < 0 || y < 0 || x >= Chip8DisplayW || y >= Chip8DisplayH {
		return false
	}
	return fb[y*Chip8DisplayW+x]
}

// Chip8 is the machine state. It is not safe for concurrent use.
type Chip8 struct {
	mem   [MemorySize]uint8    // memory
	pc    uint16               // program counter
	v     [RegisterCount]uint8 // registers
	i     uint16               // index register
	dt    uint8                // delay timer
	st    uint8                // sound timer
	sp    uint8                // stack pointer
	stack [StackSize]uint16    // stack
	keys  Keypad               // keyboard snapshot for the current cycle
	disp  Framebuffer          // graphics

	keyWait keyWait
	dirty   bool
	fault   *Fault

	quirks  Quirks
	rnd     *rand.Rand
	history history
}

// Option configures a Chip8 created by New.
type Option func(*Chip8)

// WithQuirks selects the interpretation of the ambiguous opcodes.
func WithQuirks(q Quirks) Option {
	return func(c *Chip8) {
		c.quirks = q
	}
}

// WithRand sets the random source used by CXNN.
func WithRand(r *rand.Rand) Option {
	return func(c *Chip8) {
		c.rnd = r
	}
}

var characterSprites = []uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// New returns a machine in power-on state with the default quirks.
func New(opts ...Option) *Chip8 {
	c := &Chip8{quirks: DefaultQuirks()}
	for _, opt := range opts {
		opt(c)
	}
	if c.rnd == nil {
		seed := uint64(time.Now().UnixNano())
		c.rnd = rand.New(rand.NewPCG(seed, seed>>32))
	}
	c.Reset()
	return c
}

// Reset returns the machine to power-on state. Quirks and the random source
// are kept, the loaded program is not.
func (c *Chip8) Reset() {
	quirks, rnd := c.quirks, c.rnd
	*c = Chip8{quirks: quirks, rnd: rnd}
	c.pc = ProgramOffset
	copy(c.mem[CharacterSpritesOffset:], characterSprites)
}

// Load copies the program into memory at ProgramOffset. It fails without
// touching memory if the program does not fit.
func (c *Chip8) Load(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, at most %d fit", ErrProgramTooLarge, len(program), MaxProgramSize)
	}
	copy(c.mem[ProgramOffset:], program)
	return nil
}

// Step runs one fetch-decode-execute cycle with the given key snapshot and
// then decrements the timers. A returned error is a *Fault; once it happened
// the machine stays halted and every further call returns it until Reset.
func (c *Chip8) Step(keys Keypad) error {
	if c.fault != nil {
		return c.fault
	}
	c.keys = keys
	c.dirty = false

	pc := c.pc
	op, err := c.fetchOpcode()
	if err != nil {
		return c.halt(err, pc, 0)
	}
	ins, err := Decode(op)
	if err != nil {
		return c.halt(err, pc, op)
	}
	if err := c.execute(ins, pc); err != nil {
		return c.halt(err, pc, op)
	}

	c.history.add(pc, ins)
	c.decrementTimer()
	return nil
}

func (c *Chip8) halt(err error, pc, op uint16) error {
	c.pc = pc
	c.fault = &Fault{Err: err, PC: pc, Opcode: op}
	return c.fault
}

func (c *Chip8) decrementTimer() {
	if c.dt > 0 {
		c.dt--
	}
	if c.st > 0 {
		c.st--
	}
}

func (c *Chip8) fetchOpcode() (uint16, error) {
	if int(c.pc)+1 >= MemorySize {
		return 0, ErrFetchOutOfBounds
	}
	op := uint16(c.mem[c.pc])<<8 | uint16(c.mem[c.pc+1])
	c.pc += 2
	return op, nil
}

func (c *Chip8) updateCarryFlag(b bool) {
	if b {
		c.v[0xf] = 1
	} else {
		c.v[0xf] = 0
	}
}

func (c *Chip8) pushStack(v uint16) error {
	if int(c.sp) >= StackSize {
		return ErrStackOverflow
	}
	c.stack[c.sp] = v
	c.sp++
	return nil
}

func (c *Chip8) popStack() (uint16, error) {
	if c.sp == 0 {
		return 0, ErrStackUnderflow
	}
	c.sp--
	return c.stack[c.sp], nil
}

// memRange returns n bytes of memory starting at I.
func (c *Chip8) memRange(n int) ([]uint8, error) {
	if n == 0 {
		return nil, nil
	}
	start := int(c.i)
	if start+n > MemorySize {
		return nil, fmt.Errorf("%w: %d bytes at %04X", ErrMemoryOutOfBounds, n, start)
	}
	return c.mem[start : start+n], nil
}

// Framebuffer returns a copy of the display.
func (c *Chip8) Framebuffer() Framebuffer {
	return c.disp
}

// Dirty reports whether the last cycle cleared or drew to the display.
func (c *Chip8) Dirty() bool {
	return c.dirty
}

// DelayTimer returns the current delay timer value.
func (c *Chip8) DelayTimer() uint8 {
	return c.dt
}

// SoundTimer returns the current sound timer value. The tone should play
// while it is nonzero.
func (c *Chip8) SoundTimer() uint8 {
	return c.st
}

// PC returns the address of the next instruction.
func (c *Chip8) PC() uint16 {
	return c.pc
}

// Halted returns the fault that stopped the machine, or nil.
func (c *Chip8) Halted() error {
	if c.fault == nil {
		return nil
	}
	return c.fault
}

// State is a read-only snapshot of the registers for debugging frontends.
type State struct {
	V       [RegisterCount]uint8
	I       uint16
	PC      uint16
	SP      uint8
	DT      uint8
	ST      uint8
	Stack   [StackSize]uint16
	Keys    Keypad
	KeyWait KeyWaitState
}

// State returns a snapshot of the registers.
func (c *Chip8) State() State {
	return State{
		V:       c.v,
		I:       c.i,
		PC:      c.pc,
		SP:      c.sp,
		DT:      c.dt,
		ST:      c.st,
		Stack:   c.stack,
		Keys:    c.keys,
		KeyWait: c.keyWait.state,
	}
}
