package cpu

import (
	"testing"

	"github.com/kestrelgb/gbcore/internal/apu"
	"github.com/kestrelgb/gbcore/internal/cartridge"
	"github.com/kestrelgb/gbcore/internal/interrupts"
	"github.com/kestrelgb/gbcore/internal/joypad"
	"github.com/kestrelgb/gbcore/internal/mmu"
	"github.com/kestrelgb/gbcore/internal/ppu"
	"github.com/kestrelgb/gbcore/internal/serial"
	"github.com/kestrelgb/gbcore/internal/timer"
	"github.com/kestrelgb/gbcore/pkg/log"
	"github.com/stretchr/testify/require"
)

func newTestCPU(t *testing.T) *CPU {
	t.Helper()
	rom := make([]byte, 0x8000)
	cart, err := cartridge.Load(rom)
	require.NoError(t, err)

	irq := interrupts.NewController()
	p := ppu.New(irq, false)
	a := apu.New(44100)
	tm := timer.NewController(irq)
	sr := serial.NewController(irq)
	jp := joypad.New(irq)
	m := mmu.New(cart, p, a, tm, sr, jp, irq, false, nil, log.NewNull())

	c := New(m)
	c.PC = 0xC000 // place code in WRAM, away from the zeroed ROM
	return c
}

func loadProgram(c *CPU, addr uint16, bytes ...uint8) {
	for i, b := range bytes {
		c.mmu.Write(addr+uint16(i), b)
	}
	c.PC = addr
}

func TestLDRegisterToRegister(t *testing.T) {
	c := newTestCPU(t)
	c.B = 0x42
	loadProgram(c, 0xC000, 0x78) // LD A, B
	c.Step()
	require.EqualValues(t, 0x42, c.A)
}

func TestINCSetsHalfCarryAndZero(t *testing.T) {
	c := newTestCPU(t)
	c.A = 0xFF
	loadProgram(c, 0xC000, 0x3C) // INC A
	c.Step()
	require.EqualValues(t, 0, c.A)
	require.True(t, c.flag(flagZ))
	require.True(t, c.flag(flagH))
	require.False(t, c.flag(flagN))
}

func TestADDSetsCarry(t *testing.T) {
	c := newTestCPU(t)
	c.A, c.B = 0xF0, 0x20
	loadProgram(c, 0xC000, 0x80) // ADD A, B
	c.Step()
	require.EqualValues(t, 0x10, c.A)
	require.True(t, c.flag(flagC))
}

func TestJRConditionalTakenAndNotTaken(t *testing.T) {
	c := newTestCPU(t)
	c.setFlags(true, false, false, false) // Z set
	loadProgram(c, 0xC000, 0x20, 0x05)    // JR NZ, +5 -- not taken
	cycles := c.Step()
	require.EqualValues(t, 0xC002, c.PC)
	require.EqualValues(t, 8, cycles)

	c.setFlags(false, false, false, false)
	loadProgram(c, 0xC000, 0x20, 0x05) // JR NZ, +5 -- taken
	cycles = c.Step()
	require.EqualValues(t, 0xC007, c.PC)
	require.EqualValues(t, 12, cycles)
}

func TestCallAndRet(t *testing.T) {
	c := newTestCPU(t)
	c.SP = 0xFFFE
	loadProgram(c, 0xC000, 0xCD, 0x00, 0xD0) // CALL 0xD000
	c.Step()
	require.EqualValues(t, 0xD000, c.PC)
	require.EqualValues(t, 0xC003, uint16(c.mmu.Read(0xFFFC))|uint16(c.mmu.Read(0xFFFD))<<8)

	c.mmu.Write(0xD000, 0xC9) // RET
	c.Step()
	require.EqualValues(t, 0xC003, c.PC)
}

func TestPushPopAFMasksLowNibble(t *testing.T) {
	c := newTestCPU(t)
	c.SP = 0xFFFE
	c.A, c.F = 0x12, 0xFF
	loadProgram(c, 0xC000, 0xF5) // PUSH AF
	c.Step()

	c.A, c.F = 0, 0
	c.mmu.Write(0xC000, 0xF1) // POP AF
	c.PC = 0xC000
	c.Step()
	require.EqualValues(t, 0x12, c.A)
	require.EqualValues(t, 0xF0, c.F)
}

func TestCBBitSetRes(t *testing.T) {
	c := newTestCPU(t)
	c.B = 0x00
	loadProgram(c, 0xC000, 0xCB, 0xC0) // SET 0, B
	c.Step()
	require.EqualValues(t, 0x01, c.B)

	loadProgram(c, 0xC000, 0xCB, 0x40) // BIT 0, B
	c.Step()
	require.False(t, c.flag(flagZ))

	loadProgram(c, 0xC000, 0xCB, 0x80) // RES 0, B
	c.Step()
	require.EqualValues(t, 0x00, c.B)
}

func TestHaltBugDuplicatesNextOpcode(t *testing.T) {
	c := newTestCPU(t)
	c.mmu.IRQ.IME = false
	c.mmu.IRQ.WriteIE(0xFF)
	c.mmu.IRQ.Request(1) // pending + enabled but IME off: triggers the halt bug
	loadProgram(c, 0xC000, 0x76, 0x3C) // HALT; INC A
	c.Step()                           // executes HALT, sets haltBug
	require.True(t, c.haltBug)

	c.A = 5
	c.Step() // PC does not advance past INC A: the 0x3C byte will be fetched again
	require.EqualValues(t, 6, c.A)
	require.EqualValues(t, 0xC001, c.PC)
}

func TestInterruptDispatchPushesPCAndClearsIME(t *testing.T) {
	c := newTestCPU(t)
	c.mmu.IRQ.IME = true
	c.mmu.IRQ.WriteIE(0xFF)
	c.mmu.IRQ.Request(1) // vblank
	c.SP = 0xFFFE
	loadProgram(c, 0xC000, 0x00) // NOP, then interrupt dispatches after
	c.Step()

	require.EqualValues(t, 0x40, c.PC) // vblank vector
	require.False(t, c.mmu.IRQ.IME)
	lo := c.mmu.Read(0xFFFC)
	hi := c.mmu.Read(0xFFFD)
	require.EqualValues(t, 0xC001, uint16(hi)<<8|uint16(lo))
}

func TestEIDelaysEnablingIME(t *testing.T) {
	c := newTestCPU(t)
	c.mmu.IRQ.WriteIE(0xFF)
	loadProgram(c, 0xC000, 0xFB, 0x00, 0x00) // EI; NOP; NOP
	c.Step()                                 // EI
	require.False(t, c.mmu.IRQ.IME)
	c.Step() // NOP right after EI: IME still not active for dispatch during it
	require.True(t, c.mmu.IRQ.IME)
}
