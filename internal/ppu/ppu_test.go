package ppu

import (
	"testing"

	"github.com/kestrelgb/gbcore/internal/interrupts"
	"github.com/kestrelgb/gbcore/internal/types"
	"github.com/stretchr/testify/require"
)

func TestPoweredOffPPUStaysAtLineZero(t *testing.T) {
	irq := interrupts.NewController()
	p := New(irq, false)

	p.Tick(lineTicks * 3)
	require.Zero(t, p.LY)
	require.False(t, p.HasFrame())
}

func TestOneFullFrameProducesAFrameAndRequestsVBlank(t *testing.T) {
	irq := interrupts.NewController()
	p := New(irq, false)
	p.LCDC = types.Bit7 // power on, everything else default off

	for i := 0; i < 154; i++ {
		p.Tick(lineTicks)
	}

	require.True(t, p.HasFrame())
	require.NotZero(t, irq.IF&types.IntVBlank)
}

func TestModeSequenceWithinAScanline(t *testing.T) {
	irq := interrupts.NewController()
	p := New(irq, false)
	p.LCDC = types.Bit7

	p.Tick(1) // mode bits are only evaluated while ticking; the first tick of line 0 is mode 2
	require.EqualValues(t, modeOAM, p.mode())
	p.Tick(oamTicks)
	require.EqualValues(t, modeDraw, p.mode())
	p.Tick(drawTicks)
	require.EqualValues(t, modeHBlank, p.mode())
}

func TestLYCCoincidenceSetsSTATBit(t *testing.T) {
	irq := interrupts.NewController()
	p := New(irq, false)
	p.LCDC = types.Bit7
	p.LYC = 1

	p.Tick(lineTicks) // LY advances 0->1, matching LYC
	require.EqualValues(t, 1, p.LY)
	require.NotZero(t, p.STAT&0x04)
}

func TestPowerOffResetsLY(t *testing.T) {
	irq := interrupts.NewController()
	p := New(irq, false)
	p.LCDC = types.Bit7
	for i := 0; i < 10; i++ {
		p.Tick(lineTicks)
	}
	require.EqualValues(t, 10, p.LY)

	p.LCDC = 0
	p.Tick(4)
	require.Zero(t, p.LY)
}
