package ppu

// tileCache holds the decoded form of every tile as 64 indices into a
// 4-color palette, kept coherent with VRAM tile-data writes so that
// rendering never re-decodes raw bytes per pixel. Each slot is
// pre-expanded across the 4 flip orientations so the renderer never
// branches on flip state per pixel, only per tile.
type tileCache struct {
	// [bank][tileIndex][yFlip][xFlip][y*8+x] = color index 0-3
	data  [2][384][2][2][64]uint8
	dirty [2][384]bool
}

func newTileCache() *tileCache {
	tc := &tileCache{}
	for b := range tc.dirty {
		for t := range tc.dirty[b] {
			tc.dirty[b][t] = true
		}
	}
	return tc
}

// MarkDirty flags the tile covering the given VRAM tile-data offset
// (0x0000-0x17FF within a bank) for re-decode on next access.
func (tc *tileCache) MarkDirty(bank int, vramOffset uint16) {
	tile := int(vramOffset / 16)
	if tile < 384 {
		tc.dirty[bank][tile] = true
	}
}

// Get returns the decoded 8x8 pixel block for tileIndex in bank,
// decoding from vram on demand if the cached copy is stale. The
// result is equivalent to decoding fresh every time; the cache exists
// purely to avoid repeating the decode every time the same tile is
// drawn again within a frame.
func (tc *tileCache) Get(vram *[2][0x2000]byte, bank int, tileIndex int, xFlip, yFlip bool) *[64]uint8 {
	if tc.dirty[bank][tileIndex] {
		tc.decode(vram, bank, tileIndex)
		tc.dirty[bank][tileIndex] = false
	}
	xf, yf := 0, 0
	if xFlip {
		xf = 1
	}
	if yFlip {
		yf = 1
	}
	return &tc.data[bank][tileIndex][yf][xf]
}

func (tc *tileCache) decode(vram *[2][0x2000]byte, bank int, tileIndex int) {
	base := tileIndex * 16
	var plain [64]uint8
	for row := 0; row < 8; row++ {
		lo := vram[bank][base+row*2]
		hi := vram[bank][base+row*2+1]
		for col := 0; col < 8; col++ {
			shift := 7 - col
			idx := (lo>>shift)&1 | ((hi>>shift)&1)<<1
			plain[row*8+col] = idx
		}
	}
	tc.data[bank][tileIndex][0][0] = plain

	var xflip [64]uint8
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			xflip[row*8+col] = plain[row*8+(7-col)]
		}
	}
	tc.data[bank][tileIndex][0][1] = xflip

	var yflip [64]uint8
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			yflip[row*8+col] = plain[(7-row)*8+col]
		}
	}
	tc.data[bank][tileIndex][1][0] = yflip

	var xyflip [64]uint8
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			xyflip[row*8+col] = plain[(7-row)*8+(7-col)]
		}
	}
	tc.data[bank][tileIndex][1][1] = xyflip
}
