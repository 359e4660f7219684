package emulator

// execute applies a decoded instruction. pc is the address it was fetched
// from; c.pc already points past it.
func (c *Chip8) execute(ins Instruction, pc uint16) error {
	x, y := ins.X, ins.Y

	switch ins.Op {
	case OpCLS: // clear display
		for i := range c.disp {
			c.disp[i] = false
		}
		c.dirty = true

	case OpRET: // return from subroutine
		r, err := c.popStack()
		if err != nil {
			return err
		}
		c.pc = r

	case OpJP: // goto 0x0NNN
		c.pc = ins.NNN

	case OpCALL: // call 0x0NNN
		if err := c.pushStack(c.pc); err != nil {
			return err
		}
		c.pc = ins.NNN

	case OpSEImm: // 0x3XNN if(Vx==NN)
		c.skipIf(c.v[x] == ins.NN)

	case OpSNEImm: // 0x4XNN if(Vx!=NN)
		c.skipIf(c.v[x] != ins.NN)

	case OpSEReg: // 0x5XY0 if(Vx==Vy)
		c.skipIf(c.v[x] == c.v[y])

	case OpLDImm: // 6XNN Vx = NN
		c.v[x] = ins.NN

	case OpADDImm: // 7XNN Vx += NN (Carry flag is not changed)
		c.v[x] += ins.NN

	case OpLD: // 8XY0 Vx=Vy
		c.v[x] = c.v[y]

	case OpOR: // 8XY1 Vx=Vx|Vy
		c.v[x] |= c.v[y]
		c.resetFlag()

	case OpAND: // 8XY2 Vx=Vx&Vy
		c.v[x] &= c.v[y]
		c.resetFlag()

	case OpXOR: // 8XY3 Vx=Vx^Vy
		c.v[x] ^= c.v[y]
		c.resetFlag()

	case OpADD: // 8XY4 Vx += Vy
		carried := uint16(c.v[x])+uint16(c.v[y]) > 0xff
		c.v[x] += c.v[y]
		c.updateCarryFlag(carried)

	case OpSUB: // 8XY5 Vx -= Vy
		borrowed := c.v[x] < c.v[y]
		c.v[x] -= c.v[y]
		c.updateCarryFlag(!borrowed)

	case OpSHR: // 8XY6 Vx=Vy>>1
		src := c.shiftSource(x, y)
		c.v[x] = src >> 1
		c.updateCarryFlag(src&0x01 == 1)

	case OpSUBN: // 8XY7 Vx=Vy-Vx
		borrowed := c.v[y] < c.v[x]
		c.v[x] = c.v[y] - c.v[x]
		c.updateCarryFlag(!borrowed)

	case OpSHL: // 8XYE Vx=Vy<<1
		src := c.shiftSource(x, y)
		c.v[x] = src << 1
		c.updateCarryFlag(src>>7 == 1)

	case OpSNEReg: // 9XY0 if(Vx!=Vy)
		c.skipIf(c.v[x] != c.v[y])

	case OpLDI: // ANNN I = NNN
		c.i = ins.NNN

	case OpJPV0: // BNNN PC=V0+NNN
		offset := c.v[0]
		if c.quirks.JumpUsesVX {
			offset = c.v[x]
		}
		c.pc = uint16(offset) + ins.NNN

	case OpRND: // CXNN Vx=rand()&NN
		c.v[x] = uint8(c.rnd.Uint32()) & ins.NN

	case OpDRW: // DXYN draw(Vx,Vy,N)
		flipped, err := c.draw(c.v[x], c.v[y], ins.N)
		if err != nil {
			return err
		}
		c.updateCarryFlag(flipped)
		c.dirty = true

	case OpSKP: // EX9E if(key()==Vx)
		c.skipIf(c.keys[c.v[x]&0xf])

	case OpSKNP: // EXA1 if(key()!=Vx)
		c.skipIf(!c.keys[c.v[x]&0xf])

	case OpLDVxDT: // FX07 Vx = get_delay()
		c.v[x] = c.dt

	case OpLDK: // FX0A Vx = get_key()
		key, latched, done := c.keyWait.advance(&c.keys)
		if latched {
			c.v[x] = key
		}
		if !done {
			// stall on this instruction until the key is released
			c.pc = pc
		}

	case OpLDDTVx: // FX15 delay_timer(Vx)
		c.dt = c.v[x]

	case OpLDSTVx: // FX18 sound_timer(Vx)
		c.st = c.v[x]

	case OpADDI: // FX1E I +=Vx
		c.i += uint16(c.v[x])

	case OpLDF: // FX29 I=sprite_addr[Vx]
		c.i = CharacterSpritesOffset + uint16(c.v[x]&0xf)*CharacterSpriteBytes

	case OpLDB: // FX33 set_BCD(Vx)
		m, err := c.memRange(3)
		if err != nil {
			return err
		}
		m[0] = c.v[x] / 100
		m[1] = (c.v[x] % 100) / 10
		m[2] = c.v[x] % 10

	case OpLDIVx: // FX55 reg_dump(Vx,&I)
		m, err := c.memRange(int(x) + 1)
		if err != nil {
			return err
		}
		copy(m, c.v[:x+1])
		c.advanceIndex(x)

	case OpLDVxI: // FX65 reg_load(Vx,&I)
		m, err := c.memRange(int(x) + 1)
		if err != nil {
			return err
		}
		copy(c.v[:x+1], m)
		c.advanceIndex(x)

	default:
		return ErrInvalidOpcode
	}
	return nil
}

func (c *Chip8) skipIf(b bool) {
	if b {
		c.pc += 2
	}
}

func (c *Chip8) resetFlag() {
	if c.quirks.VFReset {
		c.v[0xf] = 0
	}
}

func (c *Chip8) shiftSource(x, y uint8) uint8 {
	if c.quirks.ShiftUsesVY {
		return c.v[y]
	}
	return c.v[x]
}

func (c *Chip8) advanceIndex(x uint8) {
	if c.quirks.MemoryIncrementsI {
		c.i += uint16(x) + 1
	}
}

// draw XORs an n row sprite read from I onto the display at x,y. Pixels
// outside the display are clipped. It returns true if any set pixel was
// cleared.
func (c *Chip8) draw(x, y, n uint8) (bool, error) {
	sm, err := c.memRange(int(n))
	if err != nil {
		return false, err
	}

	flipped := false
	for iy := 0; iy < int(n); iy++ {
		ty := int(y) + iy
		if ty >= Chip8DisplayH {
			break
		}
		for ix := 0; ix < 8; ix++ {
			tx := int(x) + ix
			if tx >= Chip8DisplayW {
				break
			}
			if (sm[iy]>>(7-ix))&0x01 == 0 {
				continue
			}

			p := &c.disp[ty*Chip8DisplayW+tx]
			if *p {
				flipped = true
			}
			*p = !*p
		}
	}
	return flipped, nil
}
