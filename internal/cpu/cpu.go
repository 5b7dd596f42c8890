// Package cpu implements the Sharp LR35902 instruction set: fetch,
// decode by bit-field, flag arithmetic, and interrupt/HALT/STOP handling.
package cpu

import "github.com/kestrelgb/gbcore/internal/mmu"

const (
	flagZ uint8 = 0x80
	flagN uint8 = 0x40
	flagH uint8 = 0x20
	flagC uint8 = 0x10
)

// CPU holds the register file and drives the fetch-decode-execute loop
// against an MMU. It has no notion of wall-clock time; Step reports
// how many T-cycles the instruction (or HALT/STOP tick, or interrupt
// dispatch) consumed, and the caller (internal/gameboy's scheduler
// loop) is responsible for budgeting calls to Step.
type CPU struct {
	A, F, B, C, D, E, H, L uint8
	PC, SP                 uint16

	mmu *mmu.MMU

	halted   bool
	haltBug  bool
	stopped  bool

	// eiDelay counts down the one-instruction delay between EI and IME
	// actually taking effect.
	eiDelay uint8

	cycles uint32 // accumulated by this Step call
}

// New returns a CPU wired to m. Register values are left zeroed;
// internal/gameboy is responsible for injecting post-boot state (or
// leaving a real boot ROM to set it).
func New(m *mmu.MMU) *CPU {
	return &CPU{mmu: m}
}

func (c *CPU) bc() uint16 { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) de() uint16 { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) hl() uint16 { return uint16(c.H)<<8 | uint16(c.L) }
func (c *CPU) af() uint16 { return uint16(c.A)<<8 | uint16(c.F&0xF0) }

func (c *CPU) setBC(v uint16) { c.B, c.C = uint8(v>>8), uint8(v) }
func (c *CPU) setDE(v uint16) { c.D, c.E = uint8(v>>8), uint8(v) }
func (c *CPU) setHL(v uint16) { c.H, c.L = uint8(v>>8), uint8(v) }
func (c *CPU) setAF(v uint16) { c.A, c.F = uint8(v>>8), uint8(v)&0xF0 }

func (c *CPU) flag(mask uint8) bool { return c.F&mask != 0 }
func (c *CPU) setFlags(z, n, h, cy bool) {
	c.F = 0
	if z {
		c.F |= flagZ
	}
	if n {
		c.F |= flagN
	}
	if h {
		c.F |= flagH
	}
	if cy {
		c.F |= flagC
	}
}

// tick advances every peripheral by one M-cycle's worth of T-cycles,
// scaling the LCD/APU clocks by the CGB double-speed shift while the
// timer and serial controller receive the unshifted count (DIV
// genuinely runs twice as fast in double speed).
func (c *CPU) tick() {
	const tCycles = 4
	c.cycles += tCycles
	c.mmu.Timer.Tick(tCycles)
	c.mmu.Serial.Tick(tCycles)
	lcd := uint32(tCycles)
	if c.mmu.IsDoubleSpeed() {
		lcd = tCycles / 2
	}
	c.mmu.PPU.Tick(lcd)
	c.mmu.APU.Tick(lcd)
}

func (c *CPU) fetch() uint8 {
	c.tick()
	v := c.mmu.Read(c.PC)
	if c.haltBug {
		c.haltBug = false
	} else {
		c.PC++
	}
	return v
}

func (c *CPU) readOperand() uint8 {
	c.tick()
	v := c.mmu.Read(c.PC)
	c.PC++
	return v
}

func (c *CPU) readOperand16() uint16 {
	lo := c.readOperand()
	hi := c.readOperand()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) readByte(addr uint16) uint8 {
	c.tick()
	return c.mmu.Read(addr)
}

func (c *CPU) writeByte(addr uint16, v uint8) {
	c.tick()
	c.mmu.Write(addr, v)
}

func (c *CPU) push16(v uint16) {
	c.SP--
	c.writeByte(c.SP, uint8(v>>8))
	c.SP--
	c.writeByte(c.SP, uint8(v))
}

func (c *CPU) pop16() uint16 {
	lo := c.readByte(c.SP)
	c.SP++
	hi := c.readByte(c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}

// Step executes exactly one instruction (or one HALT/STOP/interrupt
// tick) and returns the number of T-cycles it consumed.
func (c *CPU) Step() uint32 {
	c.cycles = 0

	if c.mmu.PPU.HDMA().IsCopying() {
		c.tick()
		return c.cycles
	}

	if c.stopped {
		if c.mmu.Joypad.StopClear {
			c.stopped = false
			c.mmu.Joypad.StopClear = false
		} else {
			c.tick()
			return c.cycles
		}
	}

	if c.eiDelay > 0 {
		c.eiDelay--
		if c.eiDelay == 0 {
			c.mmu.IRQ.IME = true
		}
	}

	if c.halted {
		c.tick()
		if c.mmu.IRQ.Pending() {
			c.halted = false
		}
		c.maybeDispatchInterrupt()
		return c.cycles
	}

	opcode := c.fetch()
	if opcode == 0xCB {
		c.executeCB(c.fetch())
	} else {
		c.execute(opcode)
	}

	c.maybeDispatchInterrupt()
	return c.cycles
}

// maybeDispatchInterrupt services the highest-priority pending+enabled
// interrupt when IME is set: 5 M-cycles (20 T-cycles) to push PC
// high-then-low and jump to the vector.
func (c *CPU) maybeDispatchInterrupt() {
	if !c.mmu.IRQ.IME {
		return
	}
	vector, bit, ok := c.mmu.IRQ.VectorFor()
	if !ok {
		return
	}
	c.tick()
	c.tick()
	c.SP--
	c.writeByte(c.SP, uint8(c.PC>>8))
	c.SP--
	c.writeByte(c.SP, uint8(c.PC))
	c.mmu.IRQ.Ack(bit)
	c.PC = vector
	c.tick()
}
