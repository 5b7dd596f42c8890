package state

import (
	"testing"

	"github.com/kestrelgb/gbcore/internal/apu"
	"github.com/kestrelgb/gbcore/internal/cartridge"
	"github.com/kestrelgb/gbcore/internal/cpu"
	"github.com/kestrelgb/gbcore/internal/interrupts"
	"github.com/kestrelgb/gbcore/internal/joypad"
	"github.com/kestrelgb/gbcore/internal/mmu"
	"github.com/kestrelgb/gbcore/internal/ppu"
	"github.com/kestrelgb/gbcore/internal/serial"
	"github.com/kestrelgb/gbcore/internal/timer"
	"github.com/kestrelgb/gbcore/pkg/log"
	"github.com/stretchr/testify/require"
)

func newTestComponents(t *testing.T, kind, ramByte byte) Components {
	t.Helper()
	rom := make([]byte, 0x20000)
	rom[0x147] = kind
	rom[0x148] = 0x02 // 8 ROM banks
	rom[0x149] = ramByte
	cart, err := cartridge.Load(rom)
	require.NoError(t, err)

	irq := interrupts.NewController()
	p := ppu.New(irq, false)
	a := apu.New(44100)
	tm := timer.NewController(irq)
	sr := serial.NewController(irq)
	jp := joypad.New(irq)
	m := mmu.New(cart, p, a, tm, sr, jp, irq, false, nil, log.NewNull())
	c := cpu.New(m)

	return Components{
		CPU: c, PPU: p, APU: a, MMU: m,
		Timer: tm, Serial: sr, Joypad: jp, Interrupts: irq, Cart: cart,
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	comp := newTestComponents(t, 0x00, 0x00)
	comp.CPU.InjectPostBoot(false)
	comp.Joypad.KeyDown(joypad.A)
	comp.Interrupts.Request(0x01)

	snap := Capture(comp)
	blob, err := Encode(snap)
	require.NoError(t, err)

	got, err := Decode(blob)
	require.NoError(t, err)
	require.Equal(t, snap.CPU, got.CPU)
	require.Equal(t, snap.Joypad, got.Joypad)
	require.Equal(t, snap.Interrupts, got.Interrupts)
}

func TestDecodeRejectsCorruptBlob(t *testing.T) {
	comp := newTestComponents(t, 0x00, 0x00)
	blob, err := Encode(Capture(comp))
	require.NoError(t, err)

	blob[len(blob)/2] ^= 0xFF
	_, err = Decode(blob)
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestApplyRestoresComponents(t *testing.T) {
	comp := newTestComponents(t, 0x00, 0x00)
	comp.CPU.InjectPostBoot(false)
	snap := Capture(comp)

	comp.CPU.Restore(cpu.Snapshot{}) // scramble
	require.NoError(t, Apply(comp, snap))
	require.Equal(t, snap.CPU, comp.CPU.Snapshot())
}

func TestMBC3BankStateRoundTrip(t *testing.T) {
	comp := newTestComponents(t, 0x0F, 0x00) // MBC3+TIMER+BATTERY
	comp.MMU.Write(0x2000, 0x05)       // select ROM bank 5
	comp.MMU.Write(0x4000, 0x08)       // select RTC seconds register

	blob := comp.Cart.MBC.BankState()
	require.NotEmpty(t, blob)
	require.Equal(t, 5, comp.Cart.MBC.CurrentROMBank())

	require.NoError(t, comp.Cart.MBC.RestoreBankState(blob))
	require.Equal(t, 5, comp.Cart.MBC.CurrentROMBank())
}

func TestRTCSnapshotRoundTrip(t *testing.T) {
	comp := newTestComponents(t, 0x0F, 0x00)
	rtc := comp.Cart.MBC.RTC()
	require.NotNil(t, rtc)

	rtc.Tick(4194304 * 90) // 90 seconds
	rtc.Latch()
	snap := rtc.Snapshot()

	blob, err := EncodeRTC(snap)
	require.NoError(t, err)
	got, err := DecodeRTC(blob)
	require.NoError(t, err)
	require.Equal(t, snap, got)
	require.EqualValues(t, 1, got.LatchMinutes)
	require.EqualValues(t, 30, got.LatchSeconds)
}

func TestSRAMRoundTrip(t *testing.T) {
	comp := newTestComponents(t, 0x03, 0x02) // MBC1+RAM+BATTERY
	comp.Cart.MBC.LoadRAM([]byte{0xAA, 0xBB, 0xCC})

	blob := EncodeSRAM(comp.Cart.MBC.RAM())
	got, err := DecodeSRAM(blob)
	require.NoError(t, err)
	require.Equal(t, comp.Cart.MBC.RAM(), got)
}
