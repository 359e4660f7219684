package emulator

// KeyWaitState is the phase of the FX0A key-wait instruction.
type KeyWaitState uint8

const (
	KeyWaitIdle KeyWaitState = iota
	KeyWaitPress
	KeyWaitRelease
)

func (s KeyWaitState) String() string {
	switch s {
	case KeyWaitIdle:
		return "idle"
	case KeyWaitPress:
		return "waiting for press"
	case KeyWaitRelease:
		return "waiting for release"
	}
	return "unknown"
}

// keyWait latches the key pressed during FX0A so that the instruction only
// completes once that key is released again.
type keyWait struct {
	state KeyWaitState
	key   uint8
}

// advance runs one cycle of the key-wait. It returns the pressed key with
// latched set on the cycle the press is seen, and done once the key was
// released and the instruction may complete.
func (k *keyWait) advance(keys *Keypad) (key uint8, latched, done bool) {
	switch k.state {
	case KeyWaitIdle, KeyWaitPress:
		for i, pressed := range keys {
			if pressed {
				k.state = KeyWaitRelease
				k.key = uint8(i)
				return k.key, true, false
			}
		}
		k.state = KeyWaitPress
		return 0, false, false

	case KeyWaitRelease:
		if keys[k.key] {
			return k.key, false, false
		}
		k.state = KeyWaitIdle
		return k.key, false, true
	}
	return 0, false, false
}
