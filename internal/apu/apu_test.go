package apu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChannel1TriggerSetsVolumeAndLength(t *testing.T) {
	a := New(44100)
	a.WriteNR52(0x80)
	a.WriteNR12(0xF0) // max volume, no envelope sweep, DAC on
	a.WriteNR14(0x80) // trigger
	require.True(t, a.ch1.enabled)
	require.EqualValues(t, 64, a.ch1.lengthCounter)
	require.EqualValues(t, 0x0F, a.ch1.currentVolume)
}

func TestChannel1DACOffDisablesChannel(t *testing.T) {
	a := New(44100)
	a.WriteNR52(0x80)
	a.WriteNR12(0xF0)
	a.WriteNR14(0x80)
	require.True(t, a.ch1.enabled)

	a.WriteNR12(0x00) // volume 0, direction down: DAC off
	require.False(t, a.ch1.dacEnabled)
	require.False(t, a.ch1.enabled)
}

func TestLengthCounterSilencesChannel(t *testing.T) {
	a := New(44100)
	a.WriteNR52(0x80)
	a.WriteNR12(0xF0)
	a.WriteNR11(0x3F) // length load 63, counter = 1
	a.WriteNR14(0xC0) // trigger + length enable

	require.EqualValues(t, 1, a.ch1.lengthCounter)

	// advance to step 0 of the frame sequencer, which clocks length.
	a.stepSequencer()
	require.False(t, a.ch1.enabled)
}

func TestPowerOffClearsRegistersButKeepsWaveRAM(t *testing.T) {
	a := New(44100)
	a.WriteNR52(0x80)
	a.WriteNR50(0x77)
	a.WriteNR51(0xFF)
	a.WriteWaveRAM(0xFF30, 0xAB)

	a.WriteNR52(0x00)
	require.EqualValues(t, 0, a.ReadNR50()&0x77)
	require.EqualValues(t, 0, a.nr51)
	require.EqualValues(t, uint8(0xAB), a.ch3.waveRAM[0])
}

func TestSweepOverflowDisablesChannel(t *testing.T) {
	a := New(44100)
	a.WriteNR52(0x80)
	a.WriteNR12(0xF0)
	a.WriteNR10(0x11) // period 1, shift 1, positive
	a.WriteNR13(0x00)
	a.WriteNR14(0x84) // frequency 0x400, trigger
	require.True(t, a.ch1.enabled)

	a.ch1.sweepStep()
	require.False(t, a.ch1.enabled)
}

func TestWaveChannelReadQuirkReturnsLastPlayedByte(t *testing.T) {
	a := New(44100)
	a.WriteNR52(0x80)
	a.WriteNR30(0x80) // DAC on
	a.WriteNR33(0x00)
	a.WriteNR34(0x87) // trigger, high freq bits set so freqTimer isn't tiny
	a.ch3.waveRAM[5] = 0x42
	a.ch3.lastReadIndex = 10 // nibble 10 -> byte index 5

	got := a.ReadWaveRAM(0xFF30)
	require.EqualValues(t, 0x42, got)
}

func TestNoiseChannelMutesWhenLFSRBit0Set(t *testing.T) {
	a := New(44100)
	a.WriteNR52(0x80)
	a.WriteNR42(0xF0)
	a.WriteNR44(0x80)
	a.ch4.lfsr = 0x0001
	require.EqualValues(t, 0, a.ch4.outputSample())
	a.ch4.lfsr = 0x0000
	require.EqualValues(t, 0x0F, a.ch4.outputSample())
}

func TestResamplerProducesStereoPairs(t *testing.T) {
	a := New(44100)
	a.WriteNR52(0x80)
	a.WriteNR50(0x77)
	a.WriteNR51(0xFF)
	a.WriteNR12(0xF0)
	a.WriteNR14(0x80)

	a.Tick(a.resamplerFactor * 4)
	buf := a.Flush()
	require.NotEmpty(t, buf)
	require.Equal(t, 0, len(buf)%2)
}
