package cartridge

import "errors"

// ErrInvalidCartridge is the sentinel wrapped by every cartridge-load
// rejection: rom too small, or an unrecognized MBC/ROM/RAM size byte.
// The core is left uninitialized when this is returned.
var ErrInvalidCartridge = errors.New("invalid cartridge")

// MBC is the contract every memory bank controller variant satisfies.
// A single interface lets internal/mmu dispatch uniformly across
// every mapper kind instead of branching on a concrete type per call.
type MBC interface {
	WriteEnable(addr uint16, v uint8)
	WriteRomBank(addr uint16, v uint8)
	WriteRamBank(addr uint16, v uint8)
	WriteType(addr uint16, v uint8) // MBC1 mode register, no-op elsewhere

	ReadROM(addr uint16) uint8
	ReadRAM(addr uint16) uint8
	WriteRAM(addr uint16, v uint8)

	// CurrentROMBank is the bank mapped at 0x4000-0x7FFF, for
	// diagnostics and tests.
	CurrentROMBank() int

	RAM() []byte
	LoadRAM([]byte)

	RTC() *RTC // nil unless the variant has one

	// BankState and RestoreBankState serialize the mapper's banking
	// registers (everything but RAM/RTC, which save separately) for
	// internal/state. The encoding is opaque to callers; each variant
	// owns its own layout.
	BankState() []byte
	RestoreBankState([]byte) error
}

// New constructs the MBC implementation selected by the header's kind.
// Kinds with no dedicated implementation here (MBC7, HuC1, HuC3,
// MMM01, TAMA5, Camera) fall back to MBC5 behavior, the closest
// well-understood contract; this scope trim is recorded in DESIGN.md.
func New(rom []byte, h *Header) MBC {
	ramSize := h.RAMBanks * h.RAMBankSize
	if ramSize == 0 && h.Kind == KindMBC2 {
		ramSize = 512
	}
	switch h.Kind {
	case KindNone:
		return newNoneMBC(rom, ramSize)
	case KindMBC1:
		return newMBC1(rom, ramSize)
	case KindMBC2:
		return newMBC2(rom)
	case KindMBC3:
		return newMBC3(rom, ramSize, h.Features.RTC)
	case KindMBC5, KindRumble, KindMBC7, KindHuC1, KindHuC3, KindMMM01, KindTAMA5, KindCamera:
		return newMBC5(rom, ramSize, h.Features.Rumble)
	default:
		return newNoneMBC(rom, ramSize)
	}
}

func romBankCount(rom []byte) int {
	n := len(rom) / 0x4000
	if n < 2 {
		n = 2
	}
	return n
}
