// Package cartridge parses a Game Boy ROM header and owns the
// selected memory bank controller for the lifetime of the emulation
// session.
package cartridge

import (
	"github.com/kestrelgb/gbcore/internal/types"
)

// Cartridge bundles the parsed header with its MBC implementation.
type Cartridge struct {
	Header *Header
	MBC    MBC
	rom    []byte
}

// Load parses rom and constructs the matching MBC. It returns
// ErrInvalidCartridge (wrapped) if the ROM is too small or names an
// unrecognized cartridge-type or size byte.
func Load(rom []byte) (*Cartridge, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	return &Cartridge{Header: h, MBC: New(rom, h), rom: rom}, nil
}

// HasBattery reports whether SaveSRAM should be offered to the host.
func (c *Cartridge) HasBattery() bool {
	return c.Header.Features.Battery
}

// HasRTC reports whether SaveRTC should be offered to the host.
func (c *Cartridge) HasRTC() bool {
	return c.MBC.RTC() != nil
}

// Mode derives the machine mode for this cartridge under the host's
// preferred model, latched once at cartridge load.
func (c *Cartridge) Mode(preferred types.Model) types.Model {
	return c.Header.Mode(preferred)
}
