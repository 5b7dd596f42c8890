package mmu

import (
	"testing"

	"github.com/kestrelgb/gbcore/internal/apu"
	"github.com/kestrelgb/gbcore/internal/cartridge"
	"github.com/kestrelgb/gbcore/internal/interrupts"
	"github.com/kestrelgb/gbcore/internal/joypad"
	"github.com/kestrelgb/gbcore/internal/ppu"
	"github.com/kestrelgb/gbcore/internal/serial"
	"github.com/kestrelgb/gbcore/internal/timer"
	"github.com/kestrelgb/gbcore/pkg/log"
	"github.com/stretchr/testify/require"
)

func newTestMMU(t *testing.T, isCGB bool) *MMU {
	t.Helper()
	rom := make([]byte, 0x8000)
	cart, err := cartridge.Load(rom)
	require.NoError(t, err)

	irq := interrupts.NewController()
	p := ppu.New(irq, isCGB)
	a := apu.New(44100)
	tm := timer.NewController(irq)
	sr := serial.NewController(irq)
	jp := joypad.New(irq)

	return New(cart, p, a, tm, sr, jp, irq, isCGB, nil, log.NewNull())
}

func TestWRAMEchoMirrorsBank0(t *testing.T) {
	m := newTestMMU(t, false)
	m.Write(0xC010, 0x42)
	require.EqualValues(t, 0x42, m.Read(0xE010))
}

func TestHRAMRoundTrip(t *testing.T) {
	m := newTestMMU(t, false)
	m.Write(0xFF90, 0x99)
	require.EqualValues(t, 0x99, m.Read(0xFF90))
}

func TestIERegisterRoutesToInterruptController(t *testing.T) {
	m := newTestMMU(t, false)
	m.Write(0xFFFF, 0x1F)
	require.EqualValues(t, 0x1F, m.IRQ.ReadIE())
	require.EqualValues(t, 0x1F, m.Read(0xFFFF))
}

func TestSVBKIgnoredOnDMG(t *testing.T) {
	m := newTestMMU(t, false)
	m.Write(0xD000, 0x11)
	m.Write(0xFF70, 0x03) // bank switch attempt, should be ignored on DMG
	require.EqualValues(t, 0x11, m.Read(0xD000))
}

func TestSVBKSwitchesWRAMBankOnCGB(t *testing.T) {
	m := newTestMMU(t, true)
	m.Write(0xFF70, 0x02)
	m.Write(0xD000, 0x55)
	m.Write(0xFF70, 0x03)
	require.EqualValues(t, 0, m.Read(0xD000)) // bank 3 is a fresh, unwritten bank

	m.Write(0xFF70, 0x02)
	require.EqualValues(t, 0x55, m.Read(0xD000))
}

func TestJoypadRegisterRoundTrip(t *testing.T) {
	m := newTestMMU(t, false)
	m.Write(0xFF00, 0x10)
	m.Joypad.KeyDown(joypad.Right)
	require.EqualValues(t, 0xDE, m.Read(0xFF00))
}

func TestOAMDMACopiesFromROM(t *testing.T) {
	m := newTestMMU(t, false)
	m.Write(0xFF46, 0x00) // source base 0x0000, copies cartridge ROM bytes (all zero)
	require.EqualValues(t, 0, m.Read(0xFE00))
}
