package emulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(keys ...int) Keypad {
	var k Keypad
	for _, key := range keys {
		k[key] = true
	}
	return k
}

func TestKeyWaitRoundTrip(t *testing.T) {
	c := newTestChip8(t, program(0xF50A, 0x6001))

	require.NoError(t, c.Step(Keypad{}))
	assert.Equal(t, uint16(0x200), c.PC())
	assert.Equal(t, KeyWaitPress, c.State().KeyWait)

	require.NoError(t, c.Step(Keypad{}))
	assert.Equal(t, uint16(0x200), c.PC())

	require.NoError(t, c.Step(press(0xB)))
	assert.Equal(t, uint8(0xB), c.v[5])
	assert.Equal(t, uint16(0x200), c.PC())
	assert.Equal(t, KeyWaitRelease, c.State().KeyWait)

	// held for a long time: still waiting
	for i := 0; i < 10; i++ {
		require.NoError(t, c.Step(press(0xB)))
		assert.Equal(t, uint16(0x200), c.PC())
	}

	require.NoError(t, c.Step(Keypad{}))
	assert.Equal(t, uint16(0x202), c.PC())
	assert.Equal(t, KeyWaitIdle, c.State().KeyWait)
	assert.Equal(t, uint8(0xB), c.v[5])

	require.NoError(t, c.Step(Keypad{}))
	assert.Equal(t, uint8(1), c.v[0])
}

func TestKeyWaitLowestKeyWins(t *testing.T) {
	c := newTestChip8(t, program(0xF00A))
	require.NoError(t, c.Step(press(0xE, 0x3, 0x9)))
	assert.Equal(t, uint8(0x3), c.v[0])
}

func TestKeyWaitIgnoresOtherKeysDuringRelease(t *testing.T) {
	c := newTestChip8(t, program(0xF00A))
	require.NoError(t, c.Step(press(0x4)))

	// 0x4 released but 0x2 now held: completes with the latched key
	require.NoError(t, c.Step(press(0x2)))
	assert.Equal(t, uint16(0x202), c.PC())
	assert.Equal(t, uint8(0x4), c.v[0])
}

func TestKeyWaitTimersKeepRunning(t *testing.T) {
	c := newTestChip8(t, program(0xF00A))
	c.dt = 2
	require.NoError(t, c.Step(Keypad{}))
	require.NoError(t, c.Step(Keypad{}))
	assert.Equal(t, uint8(0), c.DelayTimer())
}

func TestKeyWaitStateMachine(t *testing.T) {
	var k keyWait

	key, latched, done := k.advance(&Keypad{})
	assert.False(t, latched)
	assert.False(t, done)
	assert.Equal(t, KeyWaitPress, k.state)

	keys := press(7)
	key, latched, done = k.advance(&keys)
	assert.Equal(t, uint8(7), key)
	assert.True(t, latched)
	assert.False(t, done)
	assert.Equal(t, KeyWaitRelease, k.state)

	key, latched, done = k.advance(&keys)
	assert.Equal(t, uint8(7), key)
	assert.False(t, latched)
	assert.False(t, done)

	key, latched, done = k.advance(&Keypad{})
	assert.Equal(t, uint8(7), key)
	assert.False(t, latched)
	assert.True(t, done)
	assert.Equal(t, KeyWaitIdle, k.state)
}

func TestKeyWaitStateString(t *testing.T) {
	assert.Equal(t, "idle", KeyWaitIdle.String())
	assert.Equal(t, "waiting for press", KeyWaitPress.String())
	assert.Equal(t, "waiting for release", KeyWaitRelease.String())
}
