package emulator

import "fmt"

// Op identifies one instruction of the CHIP-8 set.
type Op uint8

const (
	OpInvalid Op = iota
	OpCLS        // 00E0
	OpRET        // 00EE
	OpJP         // 1NNN
	OpCALL       // 2NNN
	OpSEImm      // 3XNN
	OpSNEImm     // 4XNN
	OpSEReg      // 5XY0
	OpLDImm      // 6XNN
	OpADDImm     // 7XNN
	OpLD         // 8XY0
	OpOR         // 8XY1
	OpAND        // 8XY2
	OpXOR        // 8XY3
	OpADD        // 8XY4
	OpSUB        // 8XY5
	OpSHR        // 8XY6
	OpSUBN       // 8XY7
	OpSHL        // 8XYE
	OpSNEReg     // 9XY0
	OpLDI        // ANNN
	OpJPV0       // BNNN
	OpRND        // CXNN
	OpDRW        // DXYN
	OpSKP        // EX9E
	OpSKNP       // EXA1
	OpLDVxDT     // FX07
	OpLDK        // FX0A
	OpLDDTVx     // FX15
	OpLDSTVx     // FX18
	OpADDI       // FX1E
	OpLDF        // FX29
	OpLDB        // FX33
	OpLDIVx      // FX55
	OpLDVxI      // FX65
)

// Instruction is a decoded opcode word with its operand fields.
type Instruction struct {
	Op  Op
	Raw uint16
	X   uint8
	Y   uint8
	N   uint8
	NN  uint8
	NNN uint16
}

type pattern struct {
	mask  uint16
	value uint16
	op    Op
}

// patterns is indexed by the top nibble of the opcode word.
var patterns = [16][]pattern{
	0x0: {
		{0xFFFF, 0x00E0, OpCLS},
		{0xFFFF, 0x00EE, OpRET},
	},
	0x1: {{0xF000, 0x1000, OpJP}},
	0x2: {{0xF000, 0x2000, OpCALL}},
	0x3: {{0xF000, 0x3000, OpSEImm}},
	0x4: {{0xF000, 0x4000, OpSNEImm}},
	0x5: {{0xF00F, 0x5000, OpSEReg}},
	0x6: {{0xF000, 0x6000, OpLDImm}},
	0x7: {{0xF000, 0x7000, OpADDImm}},
	0x8: {
		{0xF00F, 0x8000, OpLD},
		{0xF00F, 0x8001, OpOR},
		{0xF00F, 0x8002, OpAND},
		{0xF00F, 0x8003, OpXOR},
		{0xF00F, 0x8004, OpADD},
		{0xF00F, 0x8005, OpSUB},
		{0xF00F, 0x8006, OpSHR},
		{0xF00F, 0x8007, OpSUBN},
		{0xF00F, 0x800E, OpSHL},
	},
	0x9: {{0xF00F, 0x9000, OpSNEReg}},
	0xA: {{0xF000, 0xA000, OpLDI}},
	0xB: {{0xF000, 0xB000, OpJPV0}},
	0xC: {{0xF000, 0xC000, OpRND}},
	0xD: {{0xF000, 0xD000, OpDRW}},
	0xE: {
		{0xF0FF, 0xE09E, OpSKP},
		{0xF0FF, 0xE0A1, OpSKNP},
	},
	0xF: {
		{0xF0FF, 0xF007, OpLDVxDT},
		{0xF0FF, 0xF00A, OpLDK},
		{0xF0FF, 0xF015, OpLDDTVx},
		{0xF0FF, 0xF018, OpLDSTVx},
		{0xF0FF, 0xF01E, OpADDI},
		{0xF0FF, 0xF029, OpLDF},
		{0xF0FF, 0xF033, OpLDB},
		{0xF0FF, 0xF055, OpLDIVx},
		{0xF0FF, 0xF065, OpLDVxI},
	},
}

// Decode splits an opcode word into its instruction and operands. Words that
// match no instruction, including 0NNN machine code calls, return
// ErrInvalidOpcode.
func Decode(op uint16) (Instruction, error) {
	nnn := op & 0x0FFF
	ins := Instruction{
		Raw: op,
		X:   uint8((nnn >> 8) & 0xf),
		Y:   uint8((nnn >> 4) & 0xf),
		N:   uint8(nnn & 0xf),
		NN:  uint8(nnn & 0xff),
		NNN: nnn,
	}

	for _, p := range patterns[op>>12] {
		if op&p.mask == p.value {
			ins.Op = p.op
			return ins, nil
		}
	}
	return Instruction{}, fmt.Errorf("%w: %04X", ErrInvalidOpcode, op)
}

// String returns the assembler mnemonic of the instruction.
func (ins Instruction) String() string {
	x, y := ins.X, ins.Y
	switch ins.Op {
	case OpCLS:
		return "CLS"
	case OpRET:
		return "RET"
	case OpJP:
		return fmt.Sprintf("JP   #%03X", ins.NNN)
	case OpCALL:
		return fmt.Sprintf("CALL #%03X", ins.NNN)
	case OpSEImm:
		return fmt.Sprintf("SE   V%X,#%02X", x, ins.NN)
	case OpSNEImm:
		return fmt.Sprintf("SNE  V%X,#%02X", x, ins.NN)
	case OpSEReg:
		return fmt.Sprintf("SE   V%X,V%X", x, y)
	case OpLDImm:
		return fmt.Sprintf("LD   V%X,#%02X", x, ins.NN)
	case OpADDImm:
		return fmt.Sprintf("ADD  V%X,#%02X", x, ins.NN)
	case OpLD:
		return fmt.Sprintf("LD   V%X,V%X", x, y)
	case OpOR:
		return fmt.Sprintf("OR   V%X,V%X", x, y)
	case OpAND:
		return fmt.Sprintf("AND  V%X,V%X", x, y)
	case OpXOR:
		return fmt.Sprintf("XOR  V%X,V%X", x, y)
	case OpADD:
		return fmt.Sprintf("ADD  V%X,V%X", x, y)
	case OpSUB:
		return fmt.Sprintf("SUB  V%X,V%X", x, y)
	case OpSHR:
		return fmt.Sprintf("SHR  V%X,V%X", x, y)
	case OpSUBN:
		return fmt.Sprintf("SUBN V%X,V%X", x, y)
	case OpSHL:
		return fmt.Sprintf("SHL  V%X,V%X", x, y)
	case OpSNEReg:
		return fmt.Sprintf("SNE  V%X,V%X", x, y)
	case OpLDI:
		return fmt.Sprintf("LD   I,#%03X", ins.NNN)
	case OpJPV0:
		return fmt.Sprintf("JP   V0,#%03X", ins.NNN)
	case OpRND:
		return fmt.Sprintf("RND  V%X,#%02X", x, ins.NN)
	case OpDRW:
		return fmt.Sprintf("DRW  V%X,V%X,%d", x, y, ins.N)
	case OpSKP:
		return fmt.Sprintf("SKP  V%X", x)
	case OpSKNP:
		return fmt.Sprintf("SKNP V%X", x)
	case OpLDVxDT:
		return fmt.Sprintf("LD   V%X,DT", x)
	case OpLDK:
		return fmt.Sprintf("LD   V%X,K", x)
	case OpLDDTVx:
		return fmt.Sprintf("LD   DT,V%X", x)
	case OpLDSTVx:
		return fmt.Sprintf("LD   ST,V%X", x)
	case OpADDI:
		return fmt.Sprintf("ADD  I,V%X", x)
	case OpLDF:
		return fmt.Sprintf("LD   F,V%X", x)
	case OpLDB:
		return fmt.Sprintf("LD   B,V%X", x)
	case OpLDIVx:
		return fmt.Sprintf("LD   [I],V%X", x)
	case OpLDVxI:
		return fmt.Sprintf("LD   V%X,[I]", x)
	}
	return fmt.Sprintf("DW   #%04X", ins.Raw)
}
