package sdlui

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/tuboc/chip8vm/driver"
	"github.com/tuboc/chip8vm/emulator"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	PanelW     = 640
	PanelH     = lineHeight*emulator.OpHistoryNum + 8
	lineHeight = 14
)

var (
	panelBackground = color.RGBA{R: 32, G: 32, B: 32, A: 255}
	panelText       = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	panelHighlight  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
)

// panelImage is the debug panel, rendered in software with a fixed font and
// uploaded to a texture.
type panelImage struct {
	img *image.RGBA
}

func newPanelImage() *panelImage {
	return &panelImage{
		img: image.NewRGBA(image.Rect(0, 0, PanelW, PanelH)),
	}
}

func (p *panelImage) draw(frame *driver.Frame) {
	draw.Draw(p.img, p.img.Bounds(), image.NewUniform(panelBackground), image.Point{}, draw.Src)

	// opcodes history, the most recent last
	for i, s := range frame.History {
		c := panelText
		if i == len(frame.History)-1 {
			c = panelHighlight
		}
		p.text(s, 4, i, c)
	}

	// v registers
	st := frame.State
	offsetX := PanelW/2 - 16
	for i, v := range st.V {
		p.text(fmt.Sprintf("V%X = %02X", i, v), offsetX, i, panelText)
	}

	// other registers
	offsetX = PanelW - 7*16
	p.text(fmt.Sprintf("PC = %03X", st.PC), offsetX, 0, panelText)
	p.text(fmt.Sprintf(" I = %03X", st.I), offsetX, 1, panelText)
	p.text(fmt.Sprintf("DT = %02X", st.DT), offsetX, 2, panelText)
	p.text(fmt.Sprintf("ST = %02X", st.ST), offsetX, 3, panelText)
	p.text(fmt.Sprintf("SP = %02X", st.SP), offsetX, 4, panelText)

	// key inputs in keypad layout
	k := func(i int) int {
		if st.Keys[i] {
			return 1
		}
		return 0
	}
	p.text(fmt.Sprintf("KEYS %d%d%d%d", k(0x1), k(0x2), k(0x3), k(0xc)), offsetX, 6, panelText)
	p.text(fmt.Sprintf("     %d%d%d%d", k(0x4), k(0x5), k(0x6), k(0xd)), offsetX, 7, panelText)
	p.text(fmt.Sprintf("     %d%d%d%d", k(0x7), k(0x8), k(0x9), k(0xe)), offsetX, 8, panelText)
	p.text(fmt.Sprintf("     %d%d%d%d", k(0xa), k(0x0), k(0xb), k(0xf)), offsetX, 9, panelText)

	if st.KeyWait != emulator.KeyWaitIdle {
		p.text(st.KeyWait.String(), offsetX-7*6, 11, panelHighlight)
	}
}

// text draws s with its top at the given line.
func (p *panelImage) text(s string, x, line int, c color.Color) {
	d := &font.Drawer{
		Dst:  p.img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, 4+line*lineHeight+basicfont.Face7x13.Ascent),
	}
	d.DrawString(s)
}
