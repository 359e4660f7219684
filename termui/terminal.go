// Package termui is a text frontend for the driver. It draws the display
// with half block characters and reads the keypad from a raw mode terminal.
package termui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/tuboc/chip8vm/driver"
	"github.com/tuboc/chip8vm/emulator"
	"golang.org/x/term"
)

// DefaultHoldTime is how long a key counts as held after its last byte.
// Terminals only report presses so key repeat has to keep a key down.
const DefaultHoldTime = 150 * time.Millisecond

const (
	keyEscape = 0x1b
	keyCtrlC  = 0x03
)

// keyLayout maps the left hand side of a QWERTY keyboard to the keypad.
var keyLayout = map[byte]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xc,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xd,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xe,
	'z': 0xa, 'x': 0x0, 'c': 0xb, 'v': 0xf,
}

// Terminal implements the driver.Frontend and driver.Beeper interfaces.
type Terminal struct {
	out   io.Writer
	debug bool

	fd           int
	oldTermState *term.State

	input   chan byte
	stopCh  chan struct{}
	done    chan struct{}
	stopped sync.Once

	now      func() time.Time
	holdTime time.Duration
	lastSeen [emulator.KeyCount]time.Time

	beeping bool
}

// New puts in into raw mode if it is a terminal and starts reading from it.
// Close restores the terminal.
func New(in *os.File, out io.Writer, debug bool) (*Terminal, error) {
	t := newTerminal(out, debug)

	t.fd = int(in.Fd())
	if term.IsTerminal(t.fd) {
		oldState, err := term.MakeRaw(t.fd)
		if err != nil {
			return nil, fmt.Errorf("setting raw mode: %w", err)
		}
		t.oldTermState = oldState
	}

	t.start(in)
	// clear the screen and hide the cursor
	_, _ = io.WriteString(t.out, "\x1b[2J\x1b[?25l")
	return t, nil
}

func newTerminal(out io.Writer, debug bool) *Terminal {
	return &Terminal{
		out:      out,
		debug:    debug,
		input:    make(chan byte, 256),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		now:      time.Now,
		holdTime: DefaultHoldTime,
	}
}

// start reads bytes from in until it fails or the terminal is closed.
func (t *Terminal) start(in io.Reader) {
	go func() {
		defer close(t.done)
		buf := make([]byte, 16)

		for {
			n, err := in.Read(buf)
			for _, b := range buf[:n] {
				select {
				case t.input <- b:
				case <-t.stopCh:
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
}

// Close stops reading and restores the terminal. A read that is blocked on
// the terminal is abandoned.
func (t *Terminal) Close() {
	t.stopped.Do(func() {
		close(t.stopCh)
	})
	_, _ = io.WriteString(t.out, "\x1b[?25h\r\n")
	if t.oldTermState != nil {
		_ = term.Restore(t.fd, t.oldTermState)
		t.oldTermState = nil
	}
}

// Poll implements the driver.Frontend interface.
func (t *Terminal) Poll() (driver.Input, error) {
	var in driver.Input
	now := t.now()

drain:
	for {
		select {
		case b := <-t.input:
			t.handleByte(&in, b, now)
		default:
			break drain
		}
	}

	for i, seen := range t.lastSeen {
		in.Keys[i] = !seen.IsZero() && now.Sub(seen) < t.holdTime
	}
	return in, nil
}

func (t *Terminal) handleByte(in *driver.Input, b byte, now time.Time) {
	if 'A' <= b && b <= 'Z' {
		b += 'a' - 'A'
	}
	if k, ok := keyLayout[b]; ok {
		t.lastSeen[k] = now
		return
	}

	switch b {
	case ' ':
		in.Step = true
	case '\r', '\n':
		in.Resume = true
	case 'p':
		in.Reset = true
	case keyEscape, keyCtrlC:
		in.Quit = true
	}
}

// Render implements the driver.Frontend interface.
func (t *Terminal) Render(frame *driver.Frame) error {
	var sb strings.Builder
	sb.WriteString("\x1b[H")
	writeHalfBlocks(&sb, &frame.Pixels, "\r\n")

	if t.debug {
		st := frame.State
		fmt.Fprintf(&sb, "PC=%03X I=%03X DT=%02X ST=%02X SP=%X %-19s\x1b[K\r\n",
			st.PC, st.I, st.DT, st.ST, st.SP, st.KeyWait)
		if n := len(frame.History); n > 0 {
			fmt.Fprintf(&sb, "%s\x1b[K\r\n", frame.History[n-1])
		}
	}

	_, err := io.WriteString(t.out, sb.String())
	return err
}

// Beep implements the driver.Beeper interface. Terminals have a single bell
// so it rings once when the tone starts.
func (t *Terminal) Beep(on bool, _ time.Duration) error {
	defer func() { t.beeping = on }()
	if on && !t.beeping {
		_, err := io.WriteString(t.out, "\a")
		return err
	}
	return nil
}

// Dump writes the display as half block characters.
func Dump(w io.Writer, fb *emulator.Framebuffer) error {
	var sb strings.Builder
	writeHalfBlocks(&sb, fb, "\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// writeHalfBlocks draws two display rows per line of text.
func writeHalfBlocks(sb *strings.Builder, fb *emulator.Framebuffer, eol string) {
	for y := 0; y < emulator.Chip8DisplayH; y += 2 {
		for x := 0; x < emulator.Chip8DisplayW; x++ {
			top, bottom := fb.At(x, y), fb.At(x, y+1)
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(eol)
	}
}
