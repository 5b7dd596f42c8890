package cartridge

import (
	"bytes"
	"encoding/gob"
)

// mbc5 implements the MBC5 mapper: a 9-bit ROM bank split across two
// write windows (low 8 bits at 0x2000-0x2FFF, bit 8 at 0x3000-0x3FFF)
// and a 4-bit RAM bank register, or, on the rumble variant, bit 3 of
// that same register toggles the rumble motor instead of selecting
// a bank.
type mbc5 struct {
	rom []byte
	ram []byte

	romBanks   int
	romBankLo  uint8
	romBankHi  uint8
	ramBank    uint8
	ramEnabled bool
	rumble     bool
	RumbleOn   bool
}

func newMBC5(rom []byte, ramSize int, rumble bool) *mbc5 {
	return &mbc5{rom: rom, ram: make([]byte, ramSize), romBanks: romBankCount(rom), romBankLo: 1, rumble: rumble}
}

func (m *mbc5) WriteEnable(addr uint16, v uint8) {
	m.ramEnabled = v&0x0F == 0x0A
}

func (m *mbc5) WriteRomBank(addr uint16, v uint8) {
	if addr < 0x3000 {
		m.romBankLo = v
	} else {
		m.romBankHi = v & 0x01
	}
}

func (m *mbc5) WriteRamBank(addr uint16, v uint8) {
	if m.rumble {
		m.RumbleOn = v&0x08 != 0
		m.ramBank = v & 0x07
	} else {
		m.ramBank = v & 0x0F
	}
}

func (m *mbc5) WriteType(addr uint16, v uint8) {}

func (m *mbc5) romBank() int {
	bank := int(m.romBankHi)<<8 | int(m.romBankLo)
	if m.romBanks > 0 {
		bank %= m.romBanks
	}
	return bank
}

func (m *mbc5) CurrentROMBank() int { return m.romBank() }

func (m *mbc5) ReadROM(addr uint16) uint8 {
	if addr < 0x4000 {
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	}
	off := m.romBank()*0x4000 + int(addr-0x4000)
	if off < len(m.rom) {
		return m.rom[off]
	}
	return 0xFF
}

func (m *mbc5) ReadRAM(addr uint16) uint8 {
	if !m.ramEnabled || len(m.ram) == 0 {
		return 0xFF
	}
	off := int(m.ramBank)*0x2000 + int(addr-0xA000)
	if off < len(m.ram) {
		return m.ram[off]
	}
	return 0xFF
}

func (m *mbc5) WriteRAM(addr uint16, v uint8) {
	if !m.ramEnabled || len(m.ram) == 0 {
		return
	}
	off := int(m.ramBank)*0x2000 + int(addr-0xA000)
	if off < len(m.ram) {
		m.ram[off] = v
	}
}

func (m *mbc5) RAM() []byte      { return m.ram }
func (m *mbc5) LoadRAM(v []byte) { copy(m.ram, v) }
func (m *mbc5) RTC() *RTC        { return nil }

type mbc5State struct {
	RomBankLo, RomBankHi, RamBank uint8
	RamEnabled, RumbleOn          bool
}

func (m *mbc5) BankState() []byte {
	var buf bytes.Buffer
	gob.NewEncoder(&buf).Encode(mbc5State{m.romBankLo, m.romBankHi, m.ramBank, m.ramEnabled, m.RumbleOn})
	return buf.Bytes()
}

func (m *mbc5) RestoreBankState(v []byte) error {
	var s mbc5State
	if err := gob.NewDecoder(bytes.NewReader(v)).Decode(&s); err != nil {
		return err
	}
	m.romBankLo, m.romBankHi, m.ramBank, m.ramEnabled, m.RumbleOn = s.RomBankLo, s.RomBankHi, s.RamBank, s.RamEnabled, s.RumbleOn
	return nil
}
