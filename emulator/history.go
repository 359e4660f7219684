package emulator

import "fmt"

const OpHistoryNum = 16

type historyEntry struct {
	pc  uint16
	ins Instruction
}

func (e historyEntry) String() string {
	return fmt.Sprintf("%03X-%04X %s", e.pc, e.ins.Raw, e.ins)
}

// history is a ring of the most recently executed instructions.
type history struct {
	entries [OpHistoryNum]historyEntry
	index   int
	count   int
}

func (h *history) add(pc uint16, ins Instruction) {
	h.entries[h.index] = historyEntry{pc: pc, ins: ins}
	h.index = (h.index + 1) % OpHistoryNum
	if h.count < OpHistoryNum {
		h.count++
	}
}

// History returns the most recently executed instructions, oldest first.
func (c *Chip8) History() []string {
	h := &c.history
	out := make([]string, 0, h.count)
	start := (h.index - h.count + OpHistoryNum) % OpHistoryNum
	for i := 0; i < h.count; i++ {
		out = append(out, h.entries[(start+i)%OpHistoryNum].String())
	}
	return out
}

// LastInstruction returns the instruction executed by the last successful
// cycle and its address.
func (c *Chip8) LastInstruction() (uint16, Instruction, bool) {
	h := &c.history
	if h.count == 0 {
		return 0, Instruction{}, false
	}
	e := h.entries[(h.index-1+OpHistoryNum)%OpHistoryNum]
	return e.pc, e.ins, true
}
