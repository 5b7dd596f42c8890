// Package timer implements the DIV/TIMA/TMA/TAC timer registers.
package timer

import (
	"github.com/kestrelgb/gbcore/internal/interrupts"
	"github.com/kestrelgb/gbcore/internal/types"
)

// tacPeriods maps TAC bits 0-1 to the number of machine cycles per
// TIMA tick.
var tacPeriods = [4]uint16{1024, 16, 64, 256}

// Controller owns DIV and TIMA/TMA/TAC state and advances them by
// machine cycles handed to it by the CPU on every memory access.
type Controller struct {
	div  uint16 // internal 16-bit counter; DIV register is the high byte
	tima uint8
	tma  uint8
	tac  uint8

	irq *interrupts.Controller
}

// NewController returns a Controller wired to irq for timer-overflow
// interrupt requests.
func NewController(irq *interrupts.Controller) *Controller {
	return &Controller{irq: irq}
}

// Tick advances the timer by the given number of machine cycles,
// unshifted by double-speed mode: DIV genuinely runs at double rate
// while the CPU is in double-speed, so the caller must not halve the
// cycle count the way it does for the PPU/APU clocks.
func (c *Controller) Tick(cycles uint32) {
	for i := uint32(0); i < cycles; i++ {
		c.div++
		if c.tac&0x04 == 0 {
			continue
		}
		period := tacPeriods[c.tac&0x03]
		if c.div%period == 0 {
			c.incrementTIMA()
		}
	}
}

func (c *Controller) incrementTIMA() {
	c.tima++
	if c.tima == 0 {
		c.tima = c.tma
		c.irq.Request(types.IntTimer)
	}
}

// ReadDIV returns the visible (high) byte of the internal divider.
func (c *Controller) ReadDIV() uint8 { return uint8(c.div >> 8) }

// WriteDIV resets only the low byte of the internal 16-bit divider.
// Any write to FF04 resets the low byte; the visible DIV register
// (the high byte) is left untouched and continues to advance.
func (c *Controller) WriteDIV(uint8) { c.div &= 0xFF00 }

func (c *Controller) ReadTIMA() uint8     { return c.tima }
func (c *Controller) WriteTIMA(v uint8)   { c.tima = v }
func (c *Controller) ReadTMA() uint8      { return c.tma }
func (c *Controller) WriteTMA(v uint8)    { c.tma = v }
func (c *Controller) ReadTAC() uint8      { return c.tac | 0xF8 }
func (c *Controller) WriteTAC(v uint8)    { c.tac = v & 0x07 }

// Snapshot/Restore support internal/state serialization.
type Snapshot struct {
	Div, TIMA, TMA, TAC uint16
}

func (c *Controller) Snapshot() Snapshot {
	return Snapshot{Div: c.div, TIMA: uint16(c.tima), TMA: uint16(c.tma), TAC: uint16(c.tac)}
}

func (c *Controller) Restore(s Snapshot) {
	c.div = s.Div
	c.tima = uint8(s.TIMA)
	c.tma = uint8(s.TMA)
	c.tac = uint8(s.TAC)
}
