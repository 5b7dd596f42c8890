package ppu

import "github.com/kestrelgb/gbcore/internal/types"

type bgAttr struct {
	palette  uint8
	bank     uint8
	xFlip    bool
	yFlip    bool
	priority bool // BG-to-OAM priority, CGB only
}

// renderScanline renders LY into the framebuffer using the register
// values as they stand at the Mode-3-to-HBlank boundary, at the
// scanline granularity documented in ppu.go's package comment.
func (p *PPU) renderScanline() {
	if p.LY >= ScreenHeight {
		return
	}
	var bgPriority [ScreenWidth]bool // true where BG color index != 0
	var bgAttrs [ScreenWidth]bgAttr

	if p.LCDC&types.Bit0 != 0 || p.isCGB {
		p.renderBackground(&bgPriority, &bgAttrs)
	} else {
		for x := 0; x < ScreenWidth; x++ {
			p.Framebuffer[p.LY][x] = p.bgColorDMG(0)
		}
	}

	if p.LCDC&types.Bit5 != 0 {
		p.renderWindow(&bgPriority, &bgAttrs)
	}

	if p.LCDC&types.Bit1 != 0 {
		p.renderSprites(&bgPriority, &bgAttrs)
	}
}

func (p *PPU) bgColorDMG(colorIndex uint8) uint32 {
	return bgpColor(p.BGP, colorIndex)
}

func bgpColor(reg uint8, colorIndex uint8) uint32 {
	shade := (reg >> (colorIndex * 2)) & 0x03
	return dmgColors[shade]
}

var dmgColors = [4]uint32{0xEFFFDE, 0xADD794, 0x529273, 0x183442}

// renderBackground draws the 160 visible BG pixels of the current
// line using the scroll-adjusted tile map.
func (p *PPU) renderBackground(bgPriority *[ScreenWidth]bool, attrs *[ScreenWidth]bgAttr) {
	mapBase := uint16(0x1800)
	if p.LCDC&types.Bit3 != 0 {
		mapBase = 0x1C00
	}
	signedAddressing := p.LCDC&types.Bit4 == 0

	scrollY := (p.SCY + p.LY) & 0xFF
	tileRow := uint16(scrollY) / 8
	fineY := scrollY % 8

	for x := 0; x < ScreenWidth; x++ {
		scrollX := (uint16(p.SCX) + uint16(x)) & 0xFF
		tileCol := scrollX / 8
		fineX := scrollX % 8

		mapIndex := mapBase + tileRow*32 + tileCol
		chrCode := p.vram[0][mapIndex]

		var attr bgAttr
		if p.isCGB {
			raw := p.vram[1][mapIndex]
			attr = bgAttr{
				palette:  raw & 0x07,
				bank:     (raw >> 3) & 1,
				xFlip:    raw&types.Bit5 != 0,
				yFlip:    raw&types.Bit6 != 0,
				priority: raw&types.Bit7 != 0,
			}
		}

		tileIndex := int(chrCode)
		if signedAddressing && chrCode < 128 {
			tileIndex = int(chrCode) + 256
		}

		px := p.tiles.Get(&p.vram, int(attr.bank), tileIndex, attr.xFlip, attr.yFlip)
		row := fineY
		col := fineX
		colorIndex := px[row*8+col]

		var c uint32
		if p.isCGB {
			c = p.BGPalette.Color(attr.palette, colorIndex)
		} else {
			c = p.bgColorDMG(colorIndex)
		}
		if !p.Debug.BackgroundDisabled {
			p.Framebuffer[p.LY][x] = c
		}
		bgPriority[x] = colorIndex != 0
		attrs[x] = attr
	}
}

// renderWindow overlays the window layer; the window's own internal
// line counter only advances on lines where it is actually drawn.
func (p *PPU) renderWindow(bgPriority *[ScreenWidth]bool, attrs *[ScreenWidth]bgAttr) {
	wx := int(p.WX) - 7
	wy := int(p.WY)
	if int(p.LY) < wy || wx >= ScreenWidth {
		return
	}
	if p.Debug.WindowDisabled {
		p.windowTriggered = true
		return
	}

	mapBase := uint16(0x1800)
	if p.LCDC&types.Bit6 != 0 {
		mapBase = 0x1C00
	}
	signedAddressing := p.LCDC&types.Bit4 == 0

	line := p.windowLineCounter
	tileRow := uint16(line) / 8
	fineY := uint16(line) % 8

	drew := false
	for x := 0; x < ScreenWidth; x++ {
		screenX := wx + x
		if screenX < 0 || screenX >= ScreenWidth {
			continue
		}
		drew = true
		tileCol := uint16(x) / 8
		fineX := uint16(x) % 8

		mapIndex := mapBase + tileRow*32 + tileCol
		chrCode := p.vram[0][mapIndex]

		var attr bgAttr
		if p.isCGB {
			raw := p.vram[1][mapIndex]
			attr = bgAttr{
				palette: raw & 0x07,
				bank:    (raw >> 3) & 1,
				xFlip:   raw&types.Bit5 != 0,
				yFlip:   raw&types.Bit6 != 0,
			}
		}

		tileIndex := int(chrCode)
		if signedAddressing && chrCode < 128 {
			tileIndex = int(chrCode) + 256
		}

		px := p.tiles.Get(&p.vram, int(attr.bank), tileIndex, attr.xFlip, attr.yFlip)
		colorIndex := px[fineY*8+fineX]

		var c uint32
		if p.isCGB {
			c = p.BGPalette.Color(attr.palette, colorIndex)
		} else {
			c = p.bgColorDMG(colorIndex)
		}
		p.Framebuffer[p.LY][screenX] = c
		bgPriority[screenX] = colorIndex != 0
		attrs[screenX] = attr
	}
	if drew {
		p.windowLineCounter++
		p.windowTriggered = true
	}
}

type oamEntry struct {
	y, x, tile, flags uint8
	oamIndex           int
}

// scanSprites returns up to 10 drawable sprites for LY, in OAM order.
func (p *PPU) scanSprites() []oamEntry {
	height := 8
	if p.LCDC&types.Bit2 != 0 {
		height = 16
	}
	var found []oamEntry
	for i := 0; i < 40 && len(found) < 10; i++ {
		base := i * 4
		y := p.OAM[base]
		delta := int(p.LY) + 16 - int(y)
		if delta < 0 || delta >= height {
			continue
		}
		found = append(found, oamEntry{
			y:         y,
			x:         p.OAM[base+1],
			tile:      p.OAM[base+2],
			flags:     p.OAM[base+3],
			oamIndex:  i,
		})
	}
	return found
}

// renderSprites draws the scanline's sprites, applying DMG
// lowest-X-then-OAM-index priority or CGB's strict OAM-order priority.
func (p *PPU) renderSprites(bgPriority *[ScreenWidth]bool, attrs *[ScreenWidth]bgAttr) {
	if p.Debug.SpritesDisabled {
		return
	}
	sprites := p.scanSprites()
	height := 8
	if p.LCDC&types.Bit2 != 0 {
		height = 16
	}

	var bestX [ScreenWidth]int // lowest X claiming this pixel, for DMG tie-break
	for i := range bestX {
		bestX[i] = 256
	}
	var drawnFromOAM [ScreenWidth]int
	for i := range drawnFromOAM {
		drawnFromOAM[i] = -1
	}

	// CGB resolves strictly by OAM order (the lowest-index sprite at a
	// pixel wins; later entries never overwrite it); DMG resolves by lowest X, tie-broken by
	// OAM order. Both are satisfied by iterating OAM order and only
	// overwriting when the new sprite wins the tie-break for this mode.
	for _, s := range sprites {
		xFlip := s.flags&types.Bit5 != 0
		yFlip := s.flags&types.Bit6 != 0
		bgOverSprite := s.flags&types.Bit7 != 0
		cgbPalette := s.flags & 0x07
		cgbBank := (s.flags >> 3) & 1
		dmgPalette := p.OBP0
		if s.flags&types.Bit4 != 0 {
			dmgPalette = p.OBP1
		}

		tile := int(s.tile)
		row := int(p.LY) + 16 - int(s.y)
		if yFlip {
			row = height - 1 - row
		}
		if height == 16 {
			tile &^= 1
			if row >= 8 {
				tile++
				row -= 8
			}
		}

		px := p.tiles.Get(&p.vram, int(cgbBank), tile, xFlip, false)
		for col := 0; col < 8; col++ {
			screenX := int(s.x) - 8 + col
			if screenX < 0 || screenX >= ScreenWidth {
				continue
			}
			srcRow := row
			srcCol := col
			colorIndex := px[srcRow*8+srcCol]
			if colorIndex == 0 {
				continue // sprite color 0 is transparent
			}

			if p.isCGB {
				// strict OAM order: only the first sprite (lowest
				// index already drawn, i.e. none yet) wins.
				if drawnFromOAM[screenX] != -1 {
					continue
				}
			} else {
				if int(s.x) >= bestX[screenX] {
					continue
				}
			}

			if bgOverSprite && bgPriority[screenX] {
				if !p.isCGB {
					bestX[screenX] = int(s.x)
				}
				drawnFromOAM[screenX] = s.oamIndex
				continue // BG priority wins, but this sprite still claims the slot
			}
			if p.isCGB && attrs[screenX].priority && bgPriority[screenX] {
				drawnFromOAM[screenX] = s.oamIndex
				continue
			}

			var c uint32
			if p.isCGB {
				c = p.OBJPalette.Color(cgbPalette, colorIndex)
			} else {
				c = bgpColor(dmgPalette, colorIndex)
			}
			p.Framebuffer[p.LY][screenX] = c
			if !p.isCGB {
				bestX[screenX] = int(s.x)
			}
			drawnFromOAM[screenX] = s.oamIndex
		}
	}
}
