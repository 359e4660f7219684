// Package sdlui is an SDL window frontend for the driver. It shows the
// display scaled up, optionally with a debug panel below it, and plays the
// tone through the default audio device.
package sdlui

import (
	"fmt"
	"math"
	"time"

	"github.com/tuboc/chip8vm/driver"
	"github.com/tuboc/chip8vm/emulator"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	scrDepth     = 4
	SampleFreq   = 22050
	ToneFreq     = 440.0
	AudioSamples = 512
)

var scanCode2Key = map[sdl.Scancode]uint8{
	sdl.SCANCODE_4: 0x1,
	sdl.SCANCODE_5: 0x2,
	sdl.SCANCODE_6: 0x3,
	sdl.SCANCODE_7: 0xc,
	sdl.SCANCODE_R: 0x4,
	sdl.SCANCODE_T: 0x5,
	sdl.SCANCODE_Y: 0x6,
	sdl.SCANCODE_U: 0xd,
	sdl.SCANCODE_F: 0x7,
	sdl.SCANCODE_G: 0x8,
	sdl.SCANCODE_H: 0x9,
	sdl.SCANCODE_J: 0xe,
	sdl.SCANCODE_V: 0xa,
	sdl.SCANCODE_B: 0x0,
	sdl.SCANCODE_N: 0xb,
	sdl.SCANCODE_M: 0xf,
}

// SDL implements the driver.Frontend and driver.Beeper interfaces.
type SDL struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	screen   *sdl.Texture
	pixels   []byte

	panel      *sdl.Texture
	panelImage *panelImage

	audio sdl.AudioDeviceID
	tone  tone

	scale int32
	keys  emulator.Keypad
	focus bool
}

// New opens the window and the audio device. The panel with the instruction
// history and the registers is only shown when debug is set.
func New(scale int, debug bool) (*SDL, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("sdl: %w", err)
	}

	s := &SDL{
		scale:  int32(scale),
		pixels: make([]byte, emulator.Chip8DisplayW*emulator.Chip8DisplayH*scrDepth),
		focus:  true,
	}
	if debug {
		s.panelImage = newPanelImage()
	}

	w, h := s.windowSize()
	var err error
	s.window, err = sdl.CreateWindow("CHIP-8", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, w, h, sdl.WINDOW_SHOWN)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("sdl: %w", err)
	}

	s.renderer, err = sdl.CreateRenderer(s.window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("sdl: %w", err)
	}

	s.screen, err = s.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_ABGR8888), int(sdl.TEXTUREACCESS_STREAMING), emulator.Chip8DisplayW, emulator.Chip8DisplayH)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("sdl: %w", err)
	}

	if s.panelImage != nil {
		b := s.panelImage.img.Bounds()
		s.panel, err = s.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_ABGR8888), int(sdl.TEXTUREACCESS_STREAMING), int32(b.Dx()), int32(b.Dy()))
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("sdl: %w", err)
		}
	}

	if err := s.openAudio(); err != nil {
		s.Close()
		return nil, fmt.Errorf("sdl: %w", err)
	}

	return s, nil
}

func (s *SDL) windowSize() (int32, int32) {
	w := emulator.Chip8DisplayW * s.scale
	h := emulator.Chip8DisplayH * s.scale
	if s.panelImage != nil {
		h += PanelH
	}
	return w, h
}

func (s *SDL) openAudio() error {
	spec := &sdl.AudioSpec{
		Freq:     SampleFreq,
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  AudioSamples,
	}

	var actualSpec sdl.AudioSpec
	var err error
	s.audio, err = sdl.OpenAudioDevice("", false, spec, &actualSpec, 0)
	if err != nil {
		return err
	}
	s.tone.silence = actualSpec.Silence
	s.tone.freq = float64(actualSpec.Freq)

	sdl.PauseAudioDevice(s.audio, false)
	return nil
}

// Close releases all SDL resources.
func (s *SDL) Close() {
	if s.audio != 0 {
		sdl.CloseAudioDevice(s.audio)
	}
	if s.panel != nil {
		_ = s.panel.Destroy()
	}
	if s.screen != nil {
		_ = s.screen.Destroy()
	}
	if s.renderer != nil {
		_ = s.renderer.Destroy()
	}
	if s.window != nil {
		_ = s.window.Destroy()
	}
	sdl.Quit()
}

// Poll implements the driver.Frontend interface.
func (s *SDL) Poll() (driver.Input, error) {
	var in driver.Input

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			in.Quit = true

		case *sdl.KeyboardEvent:
			handleKey(&in, &s.keys, ev.Keysym.Scancode, ev.Type == sdl.KEYDOWN)

		case *sdl.WindowEvent:
			switch ev.Event {
			case sdl.WINDOWEVENT_FOCUS_LOST:
				s.focus = false
			case sdl.WINDOWEVENT_FOCUS_GAINED:
				s.focus = true
			}
		}
	}

	in.Keys = s.keys
	in.Hold = !s.focus
	return in, nil
}

// handleKey updates the keypad for the mapped keys and sets the one-shot
// controls in in on a key press.
func handleKey(in *driver.Input, keys *emulator.Keypad, code sdl.Scancode, down bool) {
	if i, ok := scanCode2Key[code]; ok {
		keys[i] = down
		return
	}
	if !down {
		return
	}

	switch code {
	case sdl.SCANCODE_SPACE:
		in.Step = true
	case sdl.SCANCODE_RETURN:
		in.Resume = true
	case sdl.SCANCODE_Z:
		in.Reset = true
	case sdl.SCANCODE_ESCAPE:
		in.Quit = true
	}
}

// Render implements the driver.Frontend interface.
func (s *SDL) Render(frame *driver.Frame) error {
	fillPixels(s.pixels, &frame.Pixels)
	if err := s.screen.Update(nil, s.pixels, emulator.Chip8DisplayW*scrDepth); err != nil {
		return err
	}

	_ = s.renderer.SetDrawColor(0, 0, 0, 255)
	_ = s.renderer.Clear()

	w, _ := s.windowSize()
	h := emulator.Chip8DisplayH * s.scale
	if err := s.renderer.Copy(s.screen, nil, &sdl.Rect{X: 0, Y: 0, W: w, H: h}); err != nil {
		return err
	}

	if s.panelImage != nil {
		s.panelImage.draw(frame)
		img := s.panelImage.img
		if err := s.panel.Update(nil, img.Pix, img.Stride); err != nil {
			return err
		}
		if err := s.renderer.Copy(s.panel, nil, &sdl.Rect{X: 0, Y: h, W: w, H: PanelH}); err != nil {
			return err
		}
	}

	s.renderer.Present()
	return nil
}

// fillPixels converts the framebuffer to ABGR8888 pixels, green on black.
func fillPixels(dst []byte, fb *emulator.Framebuffer) {
	for i, on := range fb {
		p := dst[i*scrDepth : i*scrDepth+scrDepth]
		p[0], p[2], p[3] = 0, 0, 255
		if on {
			p[1] = 255
		} else {
			p[1] = 0
		}
	}
}

// Beep implements the driver.Beeper interface.
func (s *SDL) Beep(on bool, d time.Duration) error {
	if !on {
		if s.tone.playing {
			sdl.ClearQueuedAudio(s.audio)
			s.tone.playing = false
		}
		return nil
	}

	// keep at most a few buffers queued so that the tone stops promptly
	if sdl.GetQueuedAudioSize(s.audio) > AudioSamples*4 {
		return nil
	}
	return sdl.QueueAudio(s.audio, s.tone.samples(d))
}

// tone generates unsigned 8 bit sine samples and keeps the phase between
// calls.
type tone struct {
	freq    float64
	silence uint8
	phase   float64
	playing bool
}

func (t *tone) samples(d time.Duration) []byte {
	n := int(math.Ceil(d.Seconds() * t.freq))
	b := make([]byte, n)
	for i := range b {
		v := float64(t.silence) + 48*math.Sin(2*math.Pi*t.phase)
		b[i] = uint8(v)
		t.phase = math.Mod(t.phase+ToneFreq/t.freq, 1.0)
	}
	t.playing = true
	return b
}
