package gameboy

import (
	"testing"

	"github.com/kestrelgb/gbcore/internal/joypad"
	"github.com/kestrelgb/gbcore/internal/types"
	"github.com/kestrelgb/gbcore/pkg/log"
	"github.com/stretchr/testify/require"
)

func blankROM(kind, ramByte byte) []byte {
	rom := make([]byte, 0x20000)
	rom[0x147] = kind
	rom[0x148] = 0x02
	rom[0x149] = ramByte
	return rom
}

func newTestCore(t *testing.T) *Core {
	t.Helper()
	c := NewCore(Config{Model: types.ModelDMG, Log: log.NewNull()}, HostCallbacks{})
	require.NoError(t, c.InsertCartridge(blankROM(0x00, 0x00)))
	require.NoError(t, c.Start())
	return c
}

func TestStartInjectsPostBootState(t *testing.T) {
	c := newTestCore(t)
	require.EqualValues(t, 0x0100, c.cpu.PC)
	require.EqualValues(t, 0xFFFE, c.cpu.SP)
}

func TestRunAdvancesAtLeastOneIterationBudget(t *testing.T) {
	c := newTestCore(t)
	advanced := c.Run()
	require.Greater(t, advanced, 0)
}

func TestRunDeliversFrameAndAudio(t *testing.T) {
	var frames int
	var audioSamples int
	c := NewCore(Config{Model: types.ModelDMG, Log: log.NewNull()}, HostCallbacks{
		DrawFrame:  func(rgba []byte, w, h int) { frames++; require.Len(t, rgba, w*h*4) },
		WriteAudio: func(stereo []float32) { audioSamples += len(stereo) },
	})
	require.NoError(t, c.InsertCartridge(blankROM(0x00, 0x00)))
	require.NoError(t, c.Start())

	// One full frame (70224 cycles) is slightly more than one iteration's
	// budget at the default 60Hz; run enough to guarantee a VBlank.
	for i := 0; i < 10; i++ {
		c.Run()
	}
	require.Greater(t, frames, 0)
	require.Greater(t, audioSamples, 0)
}

func TestSaveStateLoadStateRoundTrip(t *testing.T) {
	c := newTestCore(t)
	c.Run()
	c.joypad.KeyDown(joypad.Start)

	blob, err := c.SaveState()
	require.NoError(t, err)

	c.joypad.KeyUp(joypad.Start)
	require.NoError(t, c.LoadState(blob))

	require.EqualValues(t, 0xF7, c.joypad.Snapshot().Buttons) // Start still shows pressed
}

func TestSetSpeedRescalesBudget(t *testing.T) {
	c := newTestCore(t)
	base := c.Run()

	c2 := newTestCore(t)
	c2.SetSpeed(2)
	doubled := c2.Run()

	require.InDelta(t, base*2, doubled, float64(base)*0.05)
}

func TestSaveSRAMReportsNoBatteryForROMOnly(t *testing.T) {
	c := newTestCore(t)
	_, ok := c.SaveSRAM()
	require.False(t, ok)
}

func TestSaveLoadSRAMRoundTrip(t *testing.T) {
	c := NewCore(Config{Model: types.ModelDMG, Log: log.NewNull()}, HostCallbacks{})
	require.NoError(t, c.InsertCartridge(blankROM(0x03, 0x02))) // MBC1+RAM+BATTERY
	require.NoError(t, c.Start())

	c.cart.MBC.LoadRAM([]byte{0x11, 0x22, 0x33})
	blob, ok := c.SaveSRAM()
	require.True(t, ok)

	c.cart.MBC.LoadRAM([]byte{0, 0, 0})
	require.NoError(t, c.LoadSRAM(blob))
	want := make([]byte, len(c.cart.MBC.RAM()))
	copy(want, []byte{0x11, 0x22, 0x33})
	require.Equal(t, want, c.cart.MBC.RAM())
}

func TestMBCWriteCallbackFires(t *testing.T) {
	var fired bool
	c := NewCore(Config{Model: types.ModelDMG, Log: log.NewNull()}, HostCallbacks{
		OnMBCWrite: func() { fired = true },
	})
	require.NoError(t, c.InsertCartridge(blankROM(0x03, 0x02)))
	require.NoError(t, c.Start())

	c.mmu.Write(0xA000, 0x42)
	require.True(t, fired)
}
