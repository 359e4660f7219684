package emulator

import (
	"errors"
	"fmt"
)

var (
	ErrProgramTooLarge   = errors.New("program too large")
	ErrInvalidOpcode     = errors.New("invalid opcode")
	ErrFetchOutOfBounds  = errors.New("fetch out of bounds")
	ErrStackOverflow     = errors.New("stack overflow")
	ErrStackUnderflow    = errors.New("stack underflow")
	ErrMemoryOutOfBounds = errors.New("memory access out of bounds")
)

// Fault is the fatal error of a single cycle. PC is the address of the
// instruction that failed.
type Fault struct {
	Err    error
	PC     uint16
	Opcode uint16
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault at %03X (opcode %04X): %v", f.PC, f.Opcode, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
