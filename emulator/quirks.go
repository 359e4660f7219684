package emulator

// Quirks selects between the historically attested interpretations of the
// ambiguous CHIP-8 instructions.
type Quirks struct {
	// VFReset clears VF after 8XY1, 8XY2 and 8XY3.
	VFReset bool
	// ShiftUsesVY makes 8XY6 and 8XYE shift VY into VX instead of shifting VX in place.
	ShiftUsesVY bool
	// MemoryIncrementsI advances I by X+1 after FX55 and FX65.
	MemoryIncrementsI bool
	// JumpUsesVX makes BNNN jump to NNN+VX instead of NNN+V0.
	JumpUsesVX bool
}

// DefaultQuirks is the original COSMAC VIP interpretation.
func DefaultQuirks() Quirks {
	return Quirks{
		VFReset:           true,
		ShiftUsesVY:       true,
		MemoryIncrementsI: true,
	}
}

// ModernQuirks is the interpretation most SUPER-CHIP era programs expect.
func ModernQuirks() Quirks {
	return Quirks{
		JumpUsesVX: true,
	}
}
