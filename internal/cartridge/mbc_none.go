package cartridge

// noneMBC backs ROM-only and ROM+RAM cartridges: no banking, a single
// fixed 32KiB ROM image and optionally a single fixed RAM bank.
type noneMBC struct {
	rom []byte
	ram []byte
}

func newNoneMBC(rom []byte, ramSize int) *noneMBC {
	return &noneMBC{rom: rom, ram: make([]byte, ramSize)}
}

func (m *noneMBC) WriteEnable(addr uint16, v uint8)  {}
func (m *noneMBC) WriteRomBank(addr uint16, v uint8) {}
func (m *noneMBC) WriteRamBank(addr uint16, v uint8) {}
func (m *noneMBC) WriteType(addr uint16, v uint8)    {}

func (m *noneMBC) ReadROM(addr uint16) uint8 {
	if int(addr) < len(m.rom) {
		return m.rom[addr]
	}
	return 0xFF
}

func (m *noneMBC) ReadRAM(addr uint16) uint8 {
	i := addr - 0xA000
	if int(i) < len(m.ram) {
		return m.ram[i]
	}
	return 0xFF
}

func (m *noneMBC) WriteRAM(addr uint16, v uint8) {
	i := addr - 0xA000
	if int(i) < len(m.ram) {
		m.ram[i] = v
	}
}

func (m *noneMBC) CurrentROMBank() int { return 1 }
func (m *noneMBC) RAM() []byte         { return m.ram }
func (m *noneMBC) LoadRAM(v []byte)    { copy(m.ram, v) }
func (m *noneMBC) RTC() *RTC           { return nil }

// BankState is empty: a fixed ROM/RAM mapper has no banking registers.
func (m *noneMBC) BankState() []byte            { return nil }
func (m *noneMBC) RestoreBankState([]byte) error { return nil }
