// Package serial implements the SB/SC serial port shift clock.
// Link-cable peer emulation is out of scope; the shift always reads
// back 0xFF from the absent peer.
package serial

import (
	"github.com/kestrelgb/gbcore/internal/interrupts"
	"github.com/kestrelgb/gbcore/internal/types"
)

const (
	shiftPeriodNormal = 8192 // cycles per bit, internal clock, normal speed
	shiftPeriodFast   = 1024 // 8x faster in CGB double-speed "fast" serial
)

// Controller owns SB/SC and the bit-shift counter.
type Controller struct {
	sb uint8
	sc uint8

	transferring bool
	bitsLeft     uint8
	cycleAccum   uint32

	fastMode bool // CGB double-speed serial clock

	irq *interrupts.Controller
}

// NewController returns a Controller wired to irq for serial-complete
// interrupt requests.
func NewController(irq *interrupts.Controller) *Controller {
	return &Controller{irq: irq}
}

func (c *Controller) SetFastMode(v bool) { c.fastMode = v }

func (c *Controller) ReadSB() uint8 { return c.sb }
func (c *Controller) WriteSB(v uint8) {
	if !c.transferring {
		c.sb = v
	}
}

func (c *Controller) ReadSC() uint8 { return c.sc | 0x7E }

func (c *Controller) WriteSC(v uint8) {
	c.sc = v
	// bit7 start + bit0 internal-clock selection begins an 8-bit shift;
	// external clock (bit0=0) leaves the timer idle.
	if v&0x81 == 0x81 {
		c.transferring = true
		c.bitsLeft = 8
		c.cycleAccum = 0
	}
}

// Tick advances the shift clock by cycles machine clocks.
func (c *Controller) Tick(cycles uint32) {
	if !c.transferring {
		return
	}
	period := uint32(shiftPeriodNormal)
	if c.fastMode {
		period = shiftPeriodFast
	}
	c.cycleAccum += cycles
	for c.cycleAccum >= period && c.transferring {
		c.cycleAccum -= period
		c.sb = c.sb<<1 | 1 // no peer attached: shift in a 1 bit (open line)
		c.bitsLeft--
		if c.bitsLeft == 0 {
			c.transferring = false
			c.sc &^= 0x80
			c.irq.Request(types.IntSerial)
		}
	}
}

type Snapshot struct {
	SB, SC             uint8
	Transferring       bool
	BitsLeft           uint8
	CycleAccum         uint32
	FastMode           bool
}

func (c *Controller) Snapshot() Snapshot {
	return Snapshot{c.sb, c.sc, c.transferring, c.bitsLeft, c.cycleAccum, c.fastMode}
}

func (c *Controller) Restore(s Snapshot) {
	c.sb, c.sc, c.transferring, c.bitsLeft, c.cycleAccum, c.fastMode = s.SB, s.SC, s.Transferring, s.BitsLeft, s.CycleAccum, s.FastMode
}
