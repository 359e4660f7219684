// Package wavwriter records the tone of the sound timer to a WAV file. The
// audio is buffered in memory in its entirety and written to disk on Close.
package wavwriter

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/youpy/go-wav"
)

const (
	SampleFreq = 22050
	ToneFreq   = 440.0
	volume     = 0.5
	silence    = 0x80
)

// WavWriter implements the driver.Beeper interface.
type WavWriter struct {
	filename string
	buffer   []wav.Sample

	phase   float64 // position in the current wave period, 0 to 1
	pending float64 // fractional samples carried over to the next call
}

// New is the preferred method of initialisation for the WavWriter type.
func New(filename string) *WavWriter {
	return &WavWriter{
		filename: filename,
		buffer:   make([]wav.Sample, 0),
	}
}

// Beep implements the driver.Beeper interface. It appends d worth of either
// the tone or silence.
func (aw *WavWriter) Beep(on bool, d time.Duration) error {
	aw.pending += d.Seconds() * SampleFreq
	n := int(aw.pending)
	aw.pending -= float64(n)

	for i := 0; i < n; i++ {
		v := silence
		if on {
			v = silence + int(127*volume*math.Sin(2*math.Pi*aw.phase))
			aw.phase = math.Mod(aw.phase+ToneFreq/SampleFreq, 1.0)
		}

		w := wav.Sample{}
		w.Values[0] = v
		aw.buffer = append(aw.buffer, w)
	}
	return nil
}

// Samples returns the number of buffered samples.
func (aw *WavWriter) Samples() int {
	return len(aw.buffer)
}

// Close writes the buffered audio to the file.
func (aw *WavWriter) Close() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	defer func() {
		err := f.Close()
		if err != nil && rerr == nil {
			rerr = fmt.Errorf("wavwriter: %w", err)
		}
	}()

	enc := wav.NewWriter(f, uint32(len(aw.buffer)), 1, SampleFreq, 8)
	if enc == nil {
		return fmt.Errorf("wavwriter: %s", "bad parameters for wav encoding")
	}
	if err := enc.WriteSamples(aw.buffer); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	return nil
}
