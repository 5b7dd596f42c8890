package cpu

// Snapshot captures the register file and halt/stop/IME-delay state
// for deterministic save-state round trips.
type Snapshot struct {
	A, F, B, C, D, E, H, L uint8
	PC, SP                 uint16
	Halted, HaltBug, Stopped bool
	EIDelay                  uint8
}

func (c *CPU) Snapshot() Snapshot {
	return Snapshot{
		A: c.A, F: c.F, B: c.B, C: c.C, D: c.D, E: c.E, H: c.H, L: c.L,
		PC: c.PC, SP: c.SP,
		Halted: c.halted, HaltBug: c.haltBug, Stopped: c.stopped,
		EIDelay: c.eiDelay,
	}
}

func (c *CPU) Restore(s Snapshot) {
	c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L = s.A, s.F, s.B, s.C, s.D, s.E, s.H, s.L
	c.PC, c.SP = s.PC, s.SP
	c.halted, c.haltBug, c.stopped = s.Halted, s.HaltBug, s.Stopped
	c.eiDelay = s.EIDelay
}

// InjectPostBoot sets the register file to the documented DMG/CGB
// post-boot-ROM values, used when no boot ROM image is supplied.
func (c *CPU) InjectPostBoot(isCGB bool) {
	c.PC = 0x0100
	c.SP = 0xFFFE
	if isCGB {
		c.setAF(0x1180)
		c.setBC(0x0000)
		c.setDE(0xFF56)
		c.setHL(0x000D)
	} else {
		c.setAF(0x01B0)
		c.setBC(0x0013)
		c.setDE(0x00D8)
		c.setHL(0x014D)
	}
}
