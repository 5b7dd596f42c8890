package cartridge

import (
	"bytes"
	"encoding/gob"
)

// mbc2 implements the MBC2 mapper: RAM-enable writes count only when
// address bit 8 is clear, and then enable on a value low nibble of 0xA,
// a 4-bit ROM bank register, and a built-in 512x4-bit RAM mirrored
// across its A000-A1FF window (only the low nibble of each byte is
// meaningful; reads set the upper nibble to 1s as real hardware does).
type mbc2 struct {
	rom []byte
	ram [512]byte // 4-bit cells stored one per byte

	romBanks   int
	romBank    uint8
	ramEnabled bool
}

func newMBC2(rom []byte) *mbc2 {
	return &mbc2{rom: rom, romBanks: romBankCount(rom), romBank: 1}
}

func (m *mbc2) WriteEnable(addr uint16, v uint8) {
	if addr&0x0100 == 0 {
		m.ramEnabled = v&0x0F == 0x0A
	}
}

func (m *mbc2) WriteRomBank(addr uint16, v uint8) {
	if addr&0x0100 != 0 {
		v &= 0x0F
		if v == 0 {
			v = 1
		}
		m.romBank = v
	}
}

func (m *mbc2) WriteRamBank(addr uint16, v uint8) {}
func (m *mbc2) WriteType(addr uint16, v uint8)    {}

func (m *mbc2) CurrentROMBank() int { return int(m.romBank) % m.romBanks }

func (m *mbc2) ReadROM(addr uint16) uint8 {
	if addr < 0x4000 {
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	}
	off := m.CurrentROMBank()*0x4000 + int(addr-0x4000)
	if off < len(m.rom) {
		return m.rom[off]
	}
	return 0xFF
}

func (m *mbc2) ReadRAM(addr uint16) uint8 {
	if !m.ramEnabled {
		return 0xFF
	}
	return m.ram[(addr-0xA000)&0x1FF] | 0xF0
}

func (m *mbc2) WriteRAM(addr uint16, v uint8) {
	if !m.ramEnabled {
		return
	}
	m.ram[(addr-0xA000)&0x1FF] = v & 0x0F
}

func (m *mbc2) RAM() []byte      { return m.ram[:] }
func (m *mbc2) LoadRAM(v []byte) { copy(m.ram[:], v) }
func (m *mbc2) RTC() *RTC        { return nil }

type mbc2State struct {
	RomBank    uint8
	RamEnabled bool
}

func (m *mbc2) BankState() []byte {
	var buf bytes.Buffer
	gob.NewEncoder(&buf).Encode(mbc2State{m.romBank, m.ramEnabled})
	return buf.Bytes()
}

func (m *mbc2) RestoreBankState(v []byte) error {
	var s mbc2State
	if err := gob.NewDecoder(bytes.NewReader(v)).Decode(&s); err != nil {
		return err
	}
	m.romBank, m.ramEnabled = s.RomBank, s.RamEnabled
	return nil
}
