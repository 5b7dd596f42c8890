// Package mmu routes the Game Boy's 64KiB address space to the
// component that owns each region: cartridge MBC, PPU (VRAM/OAM/
// LCDC/STAT/palettes), APU (NRxx + wave RAM), timer, joypad, DMA
// engines, WRAM, HRAM, and the interrupt registers.
package mmu

import (
	"github.com/kestrelgb/gbcore/internal/apu"
	"github.com/kestrelgb/gbcore/internal/cartridge"
	"github.com/kestrelgb/gbcore/internal/interrupts"
	"github.com/kestrelgb/gbcore/internal/joypad"
	"github.com/kestrelgb/gbcore/internal/ppu"
	"github.com/kestrelgb/gbcore/internal/serial"
	"github.com/kestrelgb/gbcore/internal/timer"
	"github.com/kestrelgb/gbcore/pkg/log"
)

// MMU is the address-space router shared by internal/cpu and every
// peripheral. It is unaware of CPU instruction timing; callers
// advance peripherals themselves via their own Tick methods.
type MMU struct {
	Cart *cartridge.Cartridge
	PPU  *ppu.PPU
	APU  *apu.APU
	Timer *timer.Controller
	Serial *serial.Controller
	Joypad *joypad.State
	IRQ  *interrupts.Controller

	wram     [8][0x1000]byte
	wramBank uint8
	hram     [0x7F]byte

	bootROM      []byte
	bootDone     bool

	isCGB    bool
	key1     uint8 // FF4D: bit0 armed; bit7 on read comes from doubleSpeed
	doubleSpeed bool

	log log.Logger

	// OnCartWrite, when set, fires after every write that can change
	// battery-backed RAM or RTC state, so a host can mark its save
	// data dirty without polling.
	OnCartWrite func()
}

// New returns an MMU wired to every component. bootROM may be nil, in
// which case reads below 0x100 (or 0x900 for CGB) fall through to the
// cartridge immediately and the host is expected to have already
// injected post-boot register state.
func New(cart *cartridge.Cartridge, p *ppu.PPU, a *apu.APU, t *timer.Controller, s *serial.Controller, j *joypad.State, irq *interrupts.Controller, isCGB bool, bootROM []byte, logger log.Logger) *MMU {
	m := &MMU{
		Cart: cart, PPU: p, APU: a, Timer: t, Serial: s, Joypad: j, IRQ: irq,
		isCGB: isCGB, bootROM: bootROM, log: logger,
		wramBank: 1,
	}
	if bootROM == nil {
		m.bootDone = true
	}
	p.DMA().SetSource(m.Read)
	p.HDMA().SetSource(m.Read)
	return m
}

// IsDoubleSpeed reports whether KEY1's current-speed bit is set.
func (m *MMU) IsDoubleSpeed() bool { return m.doubleSpeed }

// ArmSpeedSwitch reports whether a STOP instruction should perform the
// CGB speed switch (KEY1 bit 0 armed) instead of a normal stop.
func (m *MMU) ArmSpeedSwitch() bool { return m.isCGB && m.key1&0x01 != 0 }

// DoSpeedSwitch flips the current-speed bit and clears the arm bit,
// called by internal/cpu when STOP executes with the switch armed.
func (m *MMU) DoSpeedSwitch() {
	m.doubleSpeed = !m.doubleSpeed
	m.key1 &^= 0x01
	m.Serial.SetFastMode(m.doubleSpeed)
}

func (m *MMU) bootROMLength() int {
	if m.isCGB {
		return 0x900
	}
	return 0x100
}

// FinishBoot switches address 0x0000-0x00FF (and, on CGB, 0x0200-0x08FF)
// back to cartridge ROM; written by the FF50 register.
func (m *MMU) FinishBoot() { m.bootDone = true }

func (m *MMU) inBootROM(addr uint16) bool {
	if m.bootDone || m.bootROM == nil {
		return false
	}
	if addr < 0x100 {
		return true
	}
	return m.isCGB && addr >= 0x200 && addr < 0x900
}

// Read returns the byte visible at addr, honoring PPU VRAM/OAM access
// gating, active OAM DMA, and boot ROM overlay.
func (m *MMU) Read(addr uint16) uint8 {
	switch {
	case m.inBootROM(addr):
		return m.bootROM[addr]
	case addr <= 0x7FFF:
		return m.Cart.MBC.ReadROM(addr)
	case addr <= 0x9FFF:
		return m.PPU.ReadVRAM(addr)
	case addr <= 0xBFFF:
		return m.Cart.MBC.ReadRAM(addr)
	case addr <= 0xCFFF:
		return m.wram[0][addr-0xC000]
	case addr <= 0xDFFF:
		return m.wram[m.wramBank][addr-0xD000]
	case addr <= 0xEFFF: // echo of bank 0
		return m.wram[0][addr-0xE000]
	case addr <= 0xFDFF: // echo of the switchable bank
		return m.wram[m.wramBank][addr-0xF000]
	case addr <= 0xFE9F:
		return m.PPU.ReadOAM(addr)
	case addr <= 0xFEFF: // unusable
		return 0xFF
	case addr <= 0xFF7F:
		return m.readIO(addr)
	case addr <= 0xFFFE:
		return m.hram[addr-0xFF80]
	default: // 0xFFFF
		return m.IRQ.ReadIE()
	}
}

// Write stores v at addr, applying the same region gating as Read.
func (m *MMU) Write(addr uint16, v uint8) {
	switch {
	case addr <= 0x7FFF:
		m.writeCartControl(addr, v)
	case addr <= 0x9FFF:
		m.PPU.WriteVRAM(addr, v)
	case addr <= 0xBFFF:
		m.Cart.MBC.WriteRAM(addr, v)
		if m.OnCartWrite != nil {
			m.OnCartWrite()
		}
	case addr <= 0xCFFF:
		m.wram[0][addr-0xC000] = v
	case addr <= 0xDFFF:
		m.wram[m.wramBank][addr-0xD000] = v
	case addr <= 0xEFFF:
		m.wram[0][addr-0xE000] = v
	case addr <= 0xFDFF:
		m.wram[m.wramBank][addr-0xF000] = v
	case addr <= 0xFE9F:
		m.PPU.WriteOAM(addr, v)
	case addr <= 0xFEFF: // unusable
	case addr <= 0xFF7F:
		m.writeIO(addr, v)
	case addr <= 0xFFFE:
		m.hram[addr-0xFF80] = v
	default: // 0xFFFF
		m.IRQ.WriteIE(v)
	}
}

// writeCartControl dispatches the four MBC control-register windows.
func (m *MMU) writeCartControl(addr uint16, v uint8) {
	switch {
	case addr <= 0x1FFF:
		m.Cart.MBC.WriteEnable(addr, v)
	case addr <= 0x3FFF:
		m.Cart.MBC.WriteRomBank(addr, v)
	case addr <= 0x5FFF:
		m.Cart.MBC.WriteRamBank(addr, v)
	default:
		m.Cart.MBC.WriteType(addr, v)
		if m.OnCartWrite != nil {
			m.OnCartWrite()
		}
	}
}
