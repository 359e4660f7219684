package wavwriter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeepSampleCount(t *testing.T) {
	aw := New("unused.wav")

	// 2ms at 22050Hz is 44.1 samples, the fraction carries over
	for i := 0; i < 10; i++ {
		require.NoError(t, aw.Beep(i%2 == 0, 2*time.Millisecond))
	}
	assert.Equal(t, 441, aw.Samples())
}

func TestBeepSilenceAndTone(t *testing.T) {
	aw := New("unused.wav")
	require.NoError(t, aw.Beep(false, 10*time.Millisecond))
	for _, s := range aw.buffer {
		assert.Equal(t, silence, s.Values[0])
	}

	require.NoError(t, aw.Beep(true, 10*time.Millisecond))
	lo, hi := 255, 0
	for _, s := range aw.buffer[220:] {
		lo = min(lo, s.Values[0])
		hi = max(hi, s.Values[0])
	}
	// 4.4 periods of the tone swing around the midpoint at half volume
	assert.InDelta(t, silence-63, lo, 2)
	assert.InDelta(t, silence+63, hi, 2)
}

func TestClose(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "tone.wav")
	aw := New(filename)
	require.NoError(t, aw.Beep(true, 100*time.Millisecond))
	require.NoError(t, aw.Close())

	b, err := os.ReadFile(filename)
	require.NoError(t, err)
	require.Greater(t, len(b), 44)
	assert.Equal(t, "RIFF", string(b[0:4]))
	assert.Equal(t, "WAVE", string(b[8:12]))
	assert.GreaterOrEqual(t, len(b), 44+aw.Samples())
}

func TestCloseBadPath(t *testing.T) {
	aw := New(filepath.Join(t.TempDir(), "missing", "tone.wav"))
	assert.Error(t, aw.Close())
}
