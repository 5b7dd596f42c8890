package mmu

// Snapshot captures WRAM, HRAM, and the CGB banking/speed registers
// for save-state round trips. Components reachable through the MMU
// (cartridge, PPU, APU, timer, serial, joypad, interrupts) snapshot
// themselves; internal/state aggregates all of them together.
type Snapshot struct {
	WRAM        [8][0x1000]byte
	WRAMBank    uint8
	HRAM        [0x7F]byte
	BootDone    bool
	Key1        uint8
	DoubleSpeed bool
}

func (m *MMU) Snapshot() Snapshot {
	return Snapshot{
		WRAM: m.wram, WRAMBank: m.wramBank, HRAM: m.hram,
		BootDone: m.bootDone, Key1: m.key1, DoubleSpeed: m.doubleSpeed,
	}
}

func (m *MMU) Restore(s Snapshot) {
	m.wram, m.wramBank, m.hram = s.WRAM, s.WRAMBank, s.HRAM
	m.bootDone, m.key1, m.doubleSpeed = s.BootDone, s.Key1, s.DoubleSpeed
	m.Serial.SetFastMode(m.doubleSpeed)
}
