package termui

import (
	"io"

	"github.com/tuboc/chip8vm/driver"
	"github.com/tuboc/chip8vm/emulator"
)

// Headless is a frontend without input that keeps the last frame, for
// running programs unattended.
type Headless struct {
	frames int
	last   emulator.Framebuffer
}

// Poll implements the driver.Frontend interface.
func (h *Headless) Poll() (driver.Input, error) {
	return driver.Input{}, nil
}

// Render implements the driver.Frontend interface.
func (h *Headless) Render(frame *driver.Frame) error {
	h.frames++
	h.last = frame.Pixels
	return nil
}

// Frames returns the number of frames rendered.
func (h *Headless) Frames() int {
	return h.frames
}

// Dump writes the last frame.
func (h *Headless) Dump(w io.Writer) error {
	return Dump(w, &h.last)
}
