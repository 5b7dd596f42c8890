package ppu

// Snapshot captures every piece of mutable PPU state for deterministic
// save-state round trips. The tile cache itself is NOT part of the
// snapshot: it is always equivalent to decoding on demand, so Restore
// simply invalidates it and lets the first post-load render re-derive
// it from VRAM.
type Snapshot struct {
	LCDC, STAT               uint8
	SCY, SCX, WY, WX         uint8
	LY, LYC                  uint8
	BGP, OBP0, OBP1          uint8
	VRAM                     [2][0x2000]byte
	VRAMBank                 uint8
	OAM                      [0xA0]byte
	BGPaletteRAM, OBJPaletteRAM [64]byte
	BGPaletteIndex, OBJPaletteIndex uint8
	LineTicks                uint32
	WindowLineCounter        int
	WindowTriggered          bool
	PoweredOn                bool
	FramesSincePower         int
}

func (p *PPU) Snapshot() Snapshot {
	return Snapshot{
		LCDC: p.LCDC, STAT: p.STAT,
		SCY: p.SCY, SCX: p.SCX, WY: p.WY, WX: p.WX,
		LY: p.LY, LYC: p.LYC,
		BGP: p.BGP, OBP0: p.OBP0, OBP1: p.OBP1,
		VRAM: p.vram, VRAMBank: p.vramBank, OAM: p.OAM,
		BGPaletteRAM: p.BGPalette.RAM, OBJPaletteRAM: p.OBJPalette.RAM,
		BGPaletteIndex: p.BGPalette.Index, OBJPaletteIndex: p.OBJPalette.Index,
		LineTicks: p.lineTicks, WindowLineCounter: p.windowLineCounter,
		WindowTriggered: p.windowTriggered, PoweredOn: p.poweredOn,
		FramesSincePower: p.framesSincePower,
	}
}

func (p *PPU) Restore(s Snapshot) {
	p.LCDC, p.STAT = s.LCDC, s.STAT
	p.SCY, p.SCX, p.WY, p.WX = s.SCY, s.SCX, s.WY, s.WX
	p.LY, p.LYC = s.LY, s.LYC
	p.BGP, p.OBP0, p.OBP1 = s.BGP, s.OBP0, s.OBP1
	p.vram, p.vramBank, p.OAM = s.VRAM, s.VRAMBank, s.OAM
	p.BGPalette.RAM, p.OBJPalette.RAM = s.BGPaletteRAM, s.OBJPaletteRAM
	p.BGPalette.Index, p.OBJPalette.Index = s.BGPaletteIndex, s.OBJPaletteIndex
	p.lineTicks, p.windowLineCounter = s.LineTicks, s.WindowLineCounter
	p.windowTriggered, p.poweredOn = s.WindowTriggered, s.PoweredOn
	p.framesSincePower = s.FramesSincePower
	p.tiles = newTileCache()
}
