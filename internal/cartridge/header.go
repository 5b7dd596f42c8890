package cartridge

import (
	"fmt"

	"github.com/kestrelgb/gbcore/internal/types"
)

// MBCKind tags which memory bank controller a cartridge header
// selected. The sum type covers every cartridge-type byte a real ROM
// header can carry even though only None/MBC1/MBC2/MBC3/MBC5 have a
// full behavioral implementation; the others are recognized and
// mapped onto the closest implemented behavior (see mbc.go's New),
// a documented scope trim.
type MBCKind uint8

const (
	KindNone MBCKind = iota
	KindMBC1
	KindMBC2
	KindMBC3
	KindMBC5
	KindMBC7
	KindHuC1
	KindHuC3
	KindRumble
	KindMMM01
	KindTAMA5
	KindCamera
)

// Features describes the optional hardware a cartridge-type byte can
// flag in addition to its MBC kind.
type Features struct {
	SRAM    bool
	Battery bool
	RTC     bool
	Rumble  bool
	Camera  bool
}

// Header holds the fields extracted from the ROM header at load time.
type Header struct {
	Title            string
	ManufacturerCode string
	ColorByte        uint8
	Kind             MBCKind
	Features         Features
	ROMBanks         int
	RAMBanks         int
	RAMBankSize      int
	// NewLicenseCode preserves a known parsing quirk: the mask 0xFF00
	// applied to a byte value is always zero, so the high byte of this
	// field is always zero. Flagged here rather than silently fixed.
	NewLicenseCode uint16
}

// CGBSupport classifies the color-compatibility byte at 0x143.
type CGBSupport uint8

const (
	CGBNone CGBSupport = iota
	CGBDual
	CGBOnly
)

func (h *Header) CGBSupport() CGBSupport {
	switch h.ColorByte {
	case 0x80:
		return CGBDual
	case 0xC0:
		return CGBOnly
	case 0x32:
		// documented one-title exception: treated as non-color despite
		// looking superficially like a flag byte.
		return CGBNone
	default:
		return CGBNone
	}
}

var romBankTable = map[uint8]int{
	0x00: 2, 0x01: 4, 0x02: 8, 0x03: 16, 0x04: 32,
	0x05: 64, 0x06: 128, 0x07: 256, 0x08: 512,
	0x52: 72, 0x53: 80, 0x54: 96,
}

var ramBankTable = map[uint8]struct{ banks, size int }{
	0x00: {0, 0},
	0x01: {1, 0x800},
	0x02: {1, 0x2000},
	0x03: {4, 0x2000},
	0x04: {16, 0x2000},
}

// cartridgeTypeInfo maps the cartridge-type byte at 0x147 to an MBC
// kind and feature flags.
func cartridgeTypeInfo(b uint8) (MBCKind, Features) {
	switch b {
	case 0x00:
		return KindNone, Features{}
	case 0x01:
		return KindMBC1, Features{}
	case 0x02:
		return KindMBC1, Features{SRAM: true}
	case 0x03:
		return KindMBC1, Features{SRAM: true, Battery: true}
	case 0x05:
		return KindMBC2, Features{}
	case 0x06:
		return KindMBC2, Features{Battery: true}
	case 0x08:
		return KindNone, Features{SRAM: true}
	case 0x09:
		return KindNone, Features{SRAM: true, Battery: true}
	case 0x0B:
		return KindMMM01, Features{}
	case 0x0C:
		return KindMMM01, Features{SRAM: true}
	case 0x0D:
		return KindMMM01, Features{SRAM: true, Battery: true}
	case 0x0F:
		return KindMBC3, Features{RTC: true, Battery: true}
	case 0x10:
		return KindMBC3, Features{RTC: true, Battery: true, SRAM: true}
	case 0x11:
		return KindMBC3, Features{}
	case 0x12:
		return KindMBC3, Features{SRAM: true}
	case 0x13:
		return KindMBC3, Features{SRAM: true, Battery: true}
	case 0x19:
		return KindMBC5, Features{}
	case 0x1A:
		return KindMBC5, Features{SRAM: true}
	case 0x1B:
		return KindMBC5, Features{SRAM: true, Battery: true}
	case 0x1C:
		return KindRumble, Features{Rumble: true}
	case 0x1D:
		return KindRumble, Features{Rumble: true, SRAM: true}
	case 0x1E:
		return KindRumble, Features{Rumble: true, SRAM: true, Battery: true}
	case 0x20:
		return KindMBC7, Features{SRAM: true, Battery: true}
	case 0xFC:
		return KindCamera, Features{Camera: true}
	case 0xFD:
		return KindTAMA5, Features{Battery: true}
	case 0xFE:
		return KindHuC3, Features{SRAM: true, Battery: true}
	case 0xFF:
		return KindHuC1, Features{SRAM: true, Battery: true}
	default:
		return KindNone, Features{}
	}
}

// ParseHeader extracts the header fields from a full ROM image.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < 0x150 {
		return nil, fmt.Errorf("cartridge: rom too small (%d bytes): %w", len(rom), ErrInvalidCartridge)
	}
	h := &Header{}
	name := rom[0x134:0x13F]
	end := len(name)
	for i, b := range name {
		if b == 0 {
			end = i
			break
		}
	}
	h.Title = string(name[:end])
	h.ManufacturerCode = string(rom[0x13F:0x143])
	h.ColorByte = rom[0x143]

	// NewLicenseCode intentionally reproduces the masking quirk noted
	// on the struct field above (0xFF00 & byte == 0): flagged, not fixed.
	h.NewLicenseCode = uint16(rom[0x144])&0xFF00 | uint16(rom[0x145])&0xFF

	kind, feat := cartridgeTypeInfo(rom[0x147])
	// 0x00 is the only listed type byte that maps to KindNone without
	// features; any other such result is cartridgeTypeInfo's default case.
	if kind == KindNone && feat == (Features{}) && rom[0x147] != 0x00 {
		return nil, fmt.Errorf("cartridge: unknown cartridge type byte 0x%02X: %w", rom[0x147], ErrInvalidCartridge)
	}
	h.Kind = kind
	h.Features = feat

	romByte := rom[0x148]
	banks, ok := romBankTable[romByte]
	if !ok {
		return nil, fmt.Errorf("cartridge: unknown rom size byte 0x%02X: %w", romByte, ErrInvalidCartridge)
	}
	h.ROMBanks = banks

	ramByte := rom[0x149]
	ramInfo, ok := ramBankTable[ramByte]
	if !ok {
		return nil, fmt.Errorf("cartridge: unknown ram size byte 0x%02X: %w", ramByte, ErrInvalidCartridge)
	}
	h.RAMBanks = ramInfo.banks
	h.RAMBankSize = ramInfo.size

	// MBC2 carries its own 512x4-bit RAM regardless of the header byte.
	if h.Kind == KindMBC2 {
		h.RAMBanks = 1
		h.RAMBankSize = 512
	}

	return h, nil
}

// Mode derives the machine mode this cartridge should run under given
// the host's preferred model.
func (h *Header) Mode(preferred types.Model) types.Model {
	switch preferred {
	case types.ModelDMG:
		return types.ModelDMG
	case types.ModelCGB:
		if h.CGBSupport() == CGBNone {
			return types.ModelCGBAsDMG
		}
		return types.ModelCGB
	default:
		if h.CGBSupport() != CGBNone {
			return types.ModelCGB
		}
		return types.ModelDMG
	}
}
