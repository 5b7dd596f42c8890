// Package ppu implements the scanline STAT state machine and the
// BG/Window/sprite rendering pipeline.
package ppu

import (
	"github.com/kestrelgb/gbcore/internal/interrupts"
	"github.com/kestrelgb/gbcore/internal/ppu/palette"
	"github.com/kestrelgb/gbcore/internal/types"
)

const (
	ScreenWidth  = 160
	ScreenHeight = 144

	modeHBlank = 0
	modeVBlank = 1
	modeOAM    = 2
	modeDraw   = 3

	oamTicks  = 80
	drawTicks = 172 // fixed; no sprite penalty is added
	lineTicks = 456
)

// PPU owns the full LCD register set, VRAM/OAM, tile cache, and the
// scanline timing state machine. Mid-scanline register changes are
// captured per scanline (rendering happens once per line, at the
// mode-3-to-mode-0 boundary) rather than per pixel column; this
// scope trim is recorded in DESIGN.md. STAT IRQ timing, LY/LYC
// comparison, sprite selection and priority, and DMG/CGB palette
// resolution are otherwise exact.
type PPU struct {
	LCDC, STAT         uint8
	SCY, SCX, WY, WX   uint8
	LY, LYC            uint8
	BGP, OBP0, OBP1    uint8

	vram     [2][0x2000]byte
	vramBank uint8
	OAM      [0xA0]byte

	tiles *tileCache

	BGPalette, OBJPalette palette.CGBPalette

	lineTicks   uint32
	isCGB       bool
	poweredOn   bool
	framesSincePower int

	windowLineCounter int
	windowTriggered   bool

	Framebuffer [ScreenHeight][ScreenWidth]uint32
	frameReady  bool

	irq *interrupts.Controller
	dma *DMA
	hdma *HDMA

	// Debug toggles for layer isolation during development.
	Debug struct {
		BackgroundDisabled bool
		WindowDisabled     bool
		SpritesDisabled    bool
	}
}

// New returns a PPU wired to irq, for the given machine color-ness.
func New(irq *interrupts.Controller, isCGB bool) *PPU {
	p := &PPU{
		irq:   irq,
		tiles: newTileCache(),
		isCGB: isCGB,
		STAT:  0x80,
	}
	p.dma = newDMA(p)
	p.hdma = newHDMA(p)
	return p
}

// DMA returns the OAM DMA engine, wired into internal/mmu dispatch.
func (p *PPU) DMA() *DMA { return p.dma }

// HDMA returns the CGB general/HBlank DMA engine.
func (p *PPU) HDMA() *HDMA { return p.hdma }

func (p *PPU) mode() uint8 { return p.STAT & 0x03 }

func (p *PPU) setMode(m uint8) {
	p.STAT = (p.STAT &^ 0x03) | m
}

// HasFrame reports whether a completed frame is ready for the host.
func (p *PPU) HasFrame() bool { return p.frameReady }

// ClearFrame acknowledges the frame was consumed by the host.
func (p *PPU) ClearFrame() { p.frameReady = false }

// Tick advances the PPU state machine by the given number of
// already-double-speed-scaled T-cycles.
func (p *PPU) Tick(cycles uint32) {
	if p.LCDC&types.Bit7 == 0 {
		p.powerOff()
		return
	}
	if !p.poweredOn {
		p.poweredOn = true
		p.framesSincePower = 0
	}

	p.dma.Tick(cycles)

	remaining := cycles
	for remaining > 0 {
		step := remaining
		boundary := lineTicks - p.lineTicks
		if step > boundary {
			step = boundary
		}
		p.lineTicks += step
		remaining -= step

		p.evaluateMode()
		if p.dma.Active() {
			p.setMode(modeHBlank)
		}

		if p.lineTicks >= lineTicks {
			p.lineTicks -= lineTicks
			p.advanceLine()
		}
	}
}

func (p *PPU) powerOff() {
	if p.poweredOn {
		p.poweredOn = false
		p.LY = 0
		p.lineTicks = 0
		p.setMode(modeHBlank)
		p.windowLineCounter = 0
		for y := range p.Framebuffer {
			for x := range p.Framebuffer[y] {
				p.Framebuffer[y][x] = palette.DMGColors[0]
			}
		}
	}
}

// evaluateMode sets STAT's mode bits for the current position within
// the line and raises mode-change STAT interrupts.
func (p *PPU) evaluateMode() {
	if p.LY >= 144 {
		if p.mode() != modeVBlank {
			p.setMode(modeVBlank)
		}
		return
	}

	var m uint8
	switch {
	case p.lineTicks < oamTicks:
		m = modeOAM
	case p.lineTicks < oamTicks+drawTicks:
		m = modeDraw
	default:
		m = modeHBlank
	}

	if m == p.mode() {
		return
	}
	prev := p.mode()
	p.setMode(m)

	switch m {
	case modeDraw:
		// nothing to raise; mode3 has no STAT interrupt source
	case modeHBlank:
		if prev == modeDraw {
			p.renderScanline()
			p.hdma.OnHBlank()
		}
		if p.STAT&types.Bit3 != 0 {
			p.irq.Request(types.IntStat)
		}
	case modeOAM:
		if p.STAT&types.Bit5 != 0 {
			p.irq.Request(types.IntStat)
		}
	}
}

func (p *PPU) advanceLine() {
	if p.LY == 153 {
		p.LY = 0
		p.windowLineCounter = 0
		p.windowTriggered = false
		p.compareLYC()
		p.setMode(modeOAM)
		if p.STAT&types.Bit5 != 0 {
			p.irq.Request(types.IntStat)
		}
		return
	}

	p.LY++
	p.compareLYC()

	if p.LY == 144 {
		p.setMode(modeVBlank)
		p.irq.Request(types.IntVBlank)
		if p.STAT&types.Bit4 != 0 {
			p.irq.Request(types.IntStat)
		}
		p.frameReady = true
		if p.framesSincePower < 2 {
			p.framesSincePower++
		}
	} else if p.LY < 144 {
		p.setMode(modeOAM)
		if p.STAT&types.Bit5 != 0 {
			p.irq.Request(types.IntStat)
		}
	}
}

func (p *PPU) compareLYC() {
	match := p.LY == p.LYC
	p.STAT = types.SetIf(p.STAT, types.Bit2, match)
	if match && p.STAT&types.Bit6 != 0 {
		p.irq.Request(types.IntStat)
	}
}
