package ppu

// HDMA implements the CGB HDMA1-5 general-purpose and H-Blank DMA
// engines. General-purpose mode copies its whole length immediately,
// without modelling the CPU stall a real transfer causes; H-Blank mode copies 16 bytes every time the PPU enters
// mode 0, and is cancellable mid transfer by clearing FF55 bit 7.
type HDMA struct {
	ppu  *PPU
	read func(addr uint16) uint8

	srcHi, srcLo, dstHi, dstLo uint8

	running    bool
	hblankMode bool
	bytesLeft  uint16
	src, dst   uint16
}

func newHDMA(p *PPU) *HDMA {
	return &HDMA{ppu: p}
}

// SetSource wires the byte-read callback used for the WRAM/ROM source
// side of a transfer.
func (h *HDMA) SetSource(read func(addr uint16) uint8) {
	h.read = read
}

func (h *HDMA) WriteHDMA1(v uint8) { h.srcHi = v }
func (h *HDMA) WriteHDMA2(v uint8) { h.srcLo = v & 0xF0 }
func (h *HDMA) WriteHDMA3(v uint8) { h.dstHi = v & 0x1F }
func (h *HDMA) WriteHDMA4(v uint8) { h.dstLo = v & 0xF0 }

// ReadHDMA5 reports remaining length (in 16-byte units, 0-based) with
// bit7 clear while active, or 0xFF once complete/idle.
func (h *HDMA) ReadHDMA5() uint8 {
	if h.running {
		return uint8(h.bytesLeft/16-1) & 0x7F
	}
	return 0xFF
}

// WriteHDMA5 starts or cancels a transfer.
func (h *HDMA) WriteHDMA5(v uint8) {
	length := (uint16(v&0x7F) + 1) * 16

	if h.running && h.hblankMode && v&0x80 == 0 {
		h.running = false
		return
	}

	h.src = uint16(h.srcHi)<<8 | uint16(h.srcLo)
	h.dst = 0x8000 | (uint16(h.dstHi)<<8 | uint16(h.dstLo))
	h.bytesLeft = length

	if v&0x80 != 0 {
		h.hblankMode = true
		h.running = true
		return
	}

	h.hblankMode = false
	h.running = false
	h.copy(length)
}

// IsCopying reports whether an H-Blank transfer is in progress,
// polled by internal/cpu ahead of opcode fetch.
func (h *HDMA) IsCopying() bool {
	return h.running && h.hblankMode
}

// OnHBlank copies one 16-byte chunk when a running H-Blank transfer's
// line enters mode 0.
func (h *HDMA) OnHBlank() {
	if !h.running || !h.hblankMode {
		return
	}
	h.copy(16)
	h.bytesLeft -= 16
	if h.bytesLeft == 0 {
		h.running = false
	}
}

func (h *HDMA) copy(n uint16) {
	bank := h.ppu.vramBank
	for i := uint16(0); i < n; i++ {
		v := h.read(h.src + i)
		off := (h.dst + i) & 0x1FFF
		h.ppu.vram[bank][off] = v
		h.ppu.tiles.MarkDirty(int(bank), off)
	}
	h.src += n
	h.dst += n
}
