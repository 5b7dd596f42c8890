package ppu

import "github.com/kestrelgb/gbcore/internal/types"

// ReadVRAM returns VRAM[bank-selected][addr-0x8000], 0xFF while mode 3
// is active (VRAM is inaccessible to the CPU during pixel transfer).
func (p *PPU) ReadVRAM(addr uint16) uint8 {
	if p.mode() == modeDraw {
		return 0xFF
	}
	return p.vram[p.vramBank][addr-0x8000]
}

// WriteVRAM writes VRAM and invalidates the tile cache entry it backs;
// writes during mode 3 are silently dropped.
func (p *PPU) WriteVRAM(addr uint16, v uint8) {
	if p.mode() == modeDraw {
		return
	}
	off := addr - 0x8000
	p.vram[p.vramBank][off] = v
	if off < 0x1800 { // tile-data region; tile maps (0x1800-0x1FFF) need no decode
		p.tiles.MarkDirty(int(p.vramBank), off)
	}
}

// ReadOAM returns OAM, 0xFF while mode 2 or 3 is active.
func (p *PPU) ReadOAM(addr uint16) uint8 {
	m := p.mode()
	if m == modeOAM || m == modeDraw {
		return 0xFF
	}
	return p.OAM[addr-0xFE00]
}

// WriteOAM writes OAM; dropped during mode 2/3 or an active OAM DMA.
func (p *PPU) WriteOAM(addr uint16, v uint8) {
	m := p.mode()
	if m == modeOAM || m == modeDraw || p.dma.Active() {
		return
	}
	p.OAM[addr-0xFE00] = v
}

func (p *PPU) ReadLCDC() uint8 { return p.LCDC }
func (p *PPU) WriteLCDC(v uint8) {
	wasOn := p.LCDC&types.Bit7 != 0
	p.LCDC = v
	if !wasOn && v&types.Bit7 != 0 {
		p.LY = 0
		p.lineTicks = 0
		p.setMode(modeHBlank)
		p.framesSincePower = 0
	}
}

func (p *PPU) ReadSTAT() uint8 { return p.STAT | 0x80 }
func (p *PPU) WriteSTAT(v uint8) {
	p.STAT = (p.STAT & 0x87) | (v & 0x78)
}

func (p *PPU) ReadVBK() uint8 { return p.vramBank | 0xFE }
func (p *PPU) WriteVBK(v uint8) {
	if p.isCGB {
		p.vramBank = v & 0x01
	}
}

func (p *PPU) ReadBGPS() uint8  { return p.BGPalette.ReadSpec() }
func (p *PPU) WriteBGPS(v byte) { p.BGPalette.WriteSpec(v) }
func (p *PPU) ReadBGPD() uint8  { return p.BGPalette.ReadData() }
func (p *PPU) WriteBGPD(v byte) { p.BGPalette.WriteData(v) }
func (p *PPU) ReadOCPS() uint8  { return p.OBJPalette.ReadSpec() }
func (p *PPU) WriteOCPS(v byte) { p.OBJPalette.WriteSpec(v) }
func (p *PPU) ReadOCPD() uint8  { return p.OBJPalette.ReadData() }
func (p *PPU) WriteOCPD(v byte) { p.OBJPalette.WriteData(v) }

// ForceMode0 reports whether an active OAM DMA is holding the PPU mode
// at 0 regardless of the scanline state machine.
func (p *PPU) ForceMode0() bool { return p.dma.Active() }

// ReadLY returns the current scanline; writes to LY are ignored by
// real hardware and so are not exposed here.
func (p *PPU) ReadLY() uint8 { return p.LY }

func (p *PPU) ReadLYC() uint8   { return p.LYC }
func (p *PPU) WriteLYC(v uint8) { p.LYC = v; p.compareLYC() }

func (p *PPU) ReadSCY() uint8   { return p.SCY }
func (p *PPU) WriteSCY(v uint8) { p.SCY = v }
func (p *PPU) ReadSCX() uint8   { return p.SCX }
func (p *PPU) WriteSCX(v uint8) { p.SCX = v }
func (p *PPU) ReadWY() uint8    { return p.WY }
func (p *PPU) WriteWY(v uint8)  { p.WY = v }
func (p *PPU) ReadWX() uint8    { return p.WX }
func (p *PPU) WriteWX(v uint8)  { p.WX = v }

func (p *PPU) ReadBGP() uint8    { return p.BGP }
func (p *PPU) WriteBGP(v uint8)  { p.BGP = v }
func (p *PPU) ReadOBP0() uint8   { return p.OBP0 }
func (p *PPU) WriteOBP0(v uint8) { p.OBP0 = v }
func (p *PPU) ReadOBP1() uint8   { return p.OBP1 }
func (p *PPU) WriteOBP1(v uint8) { p.OBP1 = v }

