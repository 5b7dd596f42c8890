package cartridge

import (
	"bytes"
	"encoding/gob"
)

// mbc3 implements the MBC3 mapper: a 7-bit ROM bank register
// (0 coerced to 1), a combined RAM-bank/RTC-register select at
// 0x4000-0x5FFF (0x00-0x03 selects RAM, 0x08-0x0C selects an RTC
// register), and the latch-on-0-to-1-transition behavior at
// 0x6000-0x7FFF.
type mbc3 struct {
	rom []byte
	ram []byte
	rtc *RTC

	romBanks int
	romBank  uint8
	ramSel   uint8 // raw value written to 4000-5FFF
	ramEnabled bool
	latchLast  uint8 // last byte written to 6000-7FFF, for edge detection
}

func newMBC3(rom []byte, ramSize int, hasRTC bool) *mbc3 {
	m := &mbc3{rom: rom, ram: make([]byte, ramSize), romBanks: romBankCount(rom), romBank: 1}
	if hasRTC {
		m.rtc = &RTC{}
	}
	return m
}

func (m *mbc3) WriteEnable(addr uint16, v uint8) {
	m.ramEnabled = v&0x0F == 0x0A
}

func (m *mbc3) WriteRomBank(addr uint16, v uint8) {
	v &= 0x7F
	if v == 0 {
		v = 1
	}
	m.romBank = v
}

func (m *mbc3) WriteRamBank(addr uint16, v uint8) {
	m.ramSel = v
	if m.rtc != nil && v >= 0x08 && v <= 0x0C {
		m.rtc.Select(v)
	}
}

func (m *mbc3) WriteType(addr uint16, v uint8) {
	if m.rtc != nil && m.latchLast == 0x00 && v == 0x01 {
		m.rtc.Latch()
	}
	m.latchLast = v
}

func (m *mbc3) CurrentROMBank() int { return int(m.romBank) % m.romBanks }

func (m *mbc3) ReadROM(addr uint16) uint8 {
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

func (m *mbc3) usingRTC() bool {
	return m.rtc != nil && m.ramSel >= 0x08 && m.ramSel <= 0x0C
}

func (m *mbc3) ReadRAM(addr uint16) uint8 {
	if !m.ramEnabled {
		return 0xFF
	}
	if m.usingRTC() {
		return m.rtc.Read()
	}
	bank := int(m.ramSel & 0x03)
	off := bank*0x2000 + int(addr-0xA000)
	if off < len(m.ram) {
		return m.ram[off]
	}
	return 0xFF
}

func (m *mbc3) WriteRAM(addr uint16, v uint8) {
	if !m.ramEnabled {
		return
	}
	if m.usingRTC() {
		m.rtc.Write(v)
		return
	}
	bank := int(m.ramSel & 0x03)
	off := bank*0x2000 + int(addr-0xA000)
	if off < len(m.ram) {
		m.ram[off] = v
	}
}

func (m *mbc3) RAM() []byte      { return m.ram }
func (m *mbc3) LoadRAM(v []byte) { copy(m.ram, v) }
func (m *mbc3) RTC() *RTC        { return m.rtc }

type mbc3State struct {
	RomBank    uint8
	RamSel     uint8
	RamEnabled bool
	LatchLast  uint8
}

func (m *mbc3) BankState() []byte {
	var buf bytes.Buffer
	gob.NewEncoder(&buf).Encode(mbc3State{m.romBank, m.ramSel, m.ramEnabled, m.latchLast})
	return buf.Bytes()
}

func (m *mbc3) RestoreBankState(v []byte) error {
	var s mbc3State
	if err := gob.NewDecoder(bytes.NewReader(v)).Decode(&s); err != nil {
		return err
	}
	m.romBank, m.ramSel, m.ramEnabled, m.latchLast = s.RomBank, s.RamSel, s.RamEnabled, s.LatchLast
	return nil
}
