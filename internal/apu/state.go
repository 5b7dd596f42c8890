package apu

import (
	"bytes"
	"encoding/gob"
)

// Snapshot captures the full APU register and channel state for
// deterministic save-state round trips. The resampler accumulator is
// intentionally excluded: it is sub-frame transient state that would
// otherwise desync the output sample count across a save/load boundary.
type Snapshot struct {
	Enabled         bool
	NR50, NR51      uint8
	SequencerClocks uint32
	SequencerStep   uint8
	Ch1             channel1
	Ch2             channel2
	Ch3             channel3
	Ch4             channel4
}

func (a *APU) Snapshot() Snapshot {
	return Snapshot{
		Enabled: a.enabled, NR50: a.nr50, NR51: a.nr51,
		SequencerClocks: a.sequencerClocks, SequencerStep: a.sequencerStep,
		Ch1: *a.ch1, Ch2: *a.ch2, Ch3: *a.ch3, Ch4: *a.ch4,
	}
}

func (a *APU) Restore(s Snapshot) {
	a.enabled, a.nr50, a.nr51 = s.Enabled, s.NR50, s.NR51
	a.sequencerClocks, a.sequencerStep = s.SequencerClocks, s.SequencerStep
	*a.ch1, *a.ch2, *a.ch3, *a.ch4 = s.Ch1, s.Ch2, s.Ch3, s.Ch4
	a.sumL, a.sumR, a.resamplerAccum = 0, 0, 0
}

// channel1-4's fields are unexported, so encoding/gob would silently
// drop them if Snapshot were handed to a gob.Encoder directly from
// outside this package (gob only transmits exported struct fields, a
// restriction reflect enforces regardless of the caller's package).
// Snapshot implements GobEncode/GobDecode here, inside the package,
// via exported mirror structs that carry every field gob needs.
type gobChannel1 struct {
	Enabled, DACEnabled                              bool
	Duty, DutyStep, LengthLoad                       uint8
	LengthCounter                                    uint16
	LengthEnabled                                    bool
	StartVolume                                      uint8
	EnvelopeAdd                                      bool
	EnvelopePeriod, EnvelopeTimer, CurrentVolume     uint8
	Frequency, FreqTimer                             uint16
	SweepPeriod, SweepShift, SweepTimer              uint8
	SweepNegate, SweepEnabled, SweepFault, NegateUsed bool
	ShadowFreq                                       uint16
}

type gobChannel2 struct {
	Enabled, DACEnabled                          bool
	Duty, DutyStep, LengthLoad                   uint8
	LengthCounter                                uint16
	LengthEnabled                                bool
	StartVolume                                  uint8
	EnvelopeAdd                                  bool
	EnvelopePeriod, EnvelopeTimer, CurrentVolume uint8
	Frequency, FreqTimer                         uint16
}

type gobChannel3 struct {
	Enabled, DACEnabled      bool
	LengthLoad               uint8
	LengthCounter            uint16
	LengthEnabled            bool
	VolumeCode               uint8
	Frequency, FreqTimer     uint16
	WaveRAM                  [16]byte
	SamplePos, LastReadIndex uint8
}

type gobChannel4 struct {
	Enabled, DACEnabled                          bool
	LengthLoad                                   uint8
	LengthCounter                                uint16
	LengthEnabled                                bool
	StartVolume                                  uint8
	EnvelopeAdd                                  bool
	EnvelopePeriod, EnvelopeTimer, CurrentVolume uint8
	ClockShift                                   uint8
	WidthMode7                                   bool
	DivisorCode                                  uint8
	FreqTimer                                    uint32
	LFSR                                         uint16
}

type gobSnapshot struct {
	Enabled         bool
	NR50, NR51      uint8
	SequencerClocks uint32
	SequencerStep   uint8
	Ch1             gobChannel1
	Ch2             gobChannel2
	Ch3             gobChannel3
	Ch4             gobChannel4
}

func (s Snapshot) GobEncode() ([]byte, error) {
	g := gobSnapshot{
		Enabled: s.Enabled, NR50: s.NR50, NR51: s.NR51,
		SequencerClocks: s.SequencerClocks, SequencerStep: s.SequencerStep,
		Ch1: gobChannel1{
			Enabled: s.Ch1.enabled, DACEnabled: s.Ch1.dacEnabled,
			Duty: s.Ch1.duty, DutyStep: s.Ch1.dutyStep, LengthLoad: s.Ch1.lengthLoad,
			LengthCounter: s.Ch1.lengthCounter, LengthEnabled: s.Ch1.lengthEnabled,
			StartVolume: s.Ch1.startVolume, EnvelopeAdd: s.Ch1.envelopeAdd,
			EnvelopePeriod: s.Ch1.envelopePeriod, EnvelopeTimer: s.Ch1.envelopeTimer,
			CurrentVolume: s.Ch1.currentVolume, Frequency: s.Ch1.frequency, FreqTimer: s.Ch1.freqTimer,
			SweepPeriod: s.Ch1.sweepPeriod, SweepShift: s.Ch1.sweepShift, SweepTimer: s.Ch1.sweepTimer,
			SweepNegate: s.Ch1.sweepNegate, SweepEnabled: s.Ch1.sweepEnabled,
			SweepFault: s.Ch1.sweepFault, NegateUsed: s.Ch1.negateUsed, ShadowFreq: s.Ch1.shadowFreq,
		},
		Ch2: gobChannel2{
			Enabled: s.Ch2.enabled, DACEnabled: s.Ch2.dacEnabled,
			Duty: s.Ch2.duty, DutyStep: s.Ch2.dutyStep, LengthLoad: s.Ch2.lengthLoad,
			LengthCounter: s.Ch2.lengthCounter, LengthEnabled: s.Ch2.lengthEnabled,
			StartVolume: s.Ch2.startVolume, EnvelopeAdd: s.Ch2.envelopeAdd,
			EnvelopePeriod: s.Ch2.envelopePeriod, EnvelopeTimer: s.Ch2.envelopeTimer,
			CurrentVolume: s.Ch2.currentVolume, Frequency: s.Ch2.frequency, FreqTimer: s.Ch2.freqTimer,
		},
		Ch3: gobChannel3{
			Enabled: s.Ch3.enabled, DACEnabled: s.Ch3.dacEnabled,
			LengthLoad: s.Ch3.lengthLoad, LengthCounter: s.Ch3.lengthCounter, LengthEnabled: s.Ch3.lengthEnabled,
			VolumeCode: s.Ch3.volumeCode, Frequency: s.Ch3.frequency, FreqTimer: s.Ch3.freqTimer,
			WaveRAM: s.Ch3.waveRAM, SamplePos: s.Ch3.samplePos, LastReadIndex: s.Ch3.lastReadIndex,
		},
		Ch4: gobChannel4{
			Enabled: s.Ch4.enabled, DACEnabled: s.Ch4.dacEnabled,
			LengthLoad: s.Ch4.lengthLoad, LengthCounter: s.Ch4.lengthCounter, LengthEnabled: s.Ch4.lengthEnabled,
			StartVolume: s.Ch4.startVolume, EnvelopeAdd: s.Ch4.envelopeAdd,
			EnvelopePeriod: s.Ch4.envelopePeriod, EnvelopeTimer: s.Ch4.envelopeTimer,
			CurrentVolume: s.Ch4.currentVolume, ClockShift: s.Ch4.clockShift,
			WidthMode7: s.Ch4.widthMode7, DivisorCode: s.Ch4.divisorCode,
			FreqTimer: s.Ch4.freqTimer, LFSR: s.Ch4.lfsr,
		},
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Snapshot) GobDecode(data []byte) error {
	var g gobSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&g); err != nil {
		return err
	}
	s.Enabled, s.NR50, s.NR51 = g.Enabled, g.NR50, g.NR51
	s.SequencerClocks, s.SequencerStep = g.SequencerClocks, g.SequencerStep
	s.Ch1 = channel1{
		enabled: g.Ch1.Enabled, dacEnabled: g.Ch1.DACEnabled,
		duty: g.Ch1.Duty, dutyStep: g.Ch1.DutyStep, lengthLoad: g.Ch1.LengthLoad,
		lengthCounter: g.Ch1.LengthCounter, lengthEnabled: g.Ch1.LengthEnabled,
		startVolume: g.Ch1.StartVolume, envelopeAdd: g.Ch1.EnvelopeAdd,
		envelopePeriod: g.Ch1.EnvelopePeriod, envelopeTimer: g.Ch1.EnvelopeTimer,
		currentVolume: g.Ch1.CurrentVolume, frequency: g.Ch1.Frequency, freqTimer: g.Ch1.FreqTimer,
		sweepPeriod: g.Ch1.SweepPeriod, sweepShift: g.Ch1.SweepShift, sweepTimer: g.Ch1.SweepTimer,
		sweepNegate: g.Ch1.SweepNegate, sweepEnabled: g.Ch1.SweepEnabled,
		sweepFault: g.Ch1.SweepFault, negateUsed: g.Ch1.NegateUsed, shadowFreq: g.Ch1.ShadowFreq,
	}
	s.Ch2 = channel2{
		enabled: g.Ch2.Enabled, dacEnabled: g.Ch2.DACEnabled,
		duty: g.Ch2.Duty, dutyStep: g.Ch2.DutyStep, lengthLoad: g.Ch2.LengthLoad,
		lengthCounter: g.Ch2.LengthCounter, lengthEnabled: g.Ch2.LengthEnabled,
		startVolume: g.Ch2.StartVolume, envelopeAdd: g.Ch2.EnvelopeAdd,
		envelopePeriod: g.Ch2.EnvelopePeriod, envelopeTimer: g.Ch2.EnvelopeTimer,
		currentVolume: g.Ch2.CurrentVolume, frequency: g.Ch2.Frequency, freqTimer: g.Ch2.FreqTimer,
	}
	s.Ch3 = channel3{
		enabled: g.Ch3.Enabled, dacEnabled: g.Ch3.DACEnabled,
		lengthLoad: g.Ch3.LengthLoad, lengthCounter: g.Ch3.LengthCounter, lengthEnabled: g.Ch3.LengthEnabled,
		volumeCode: g.Ch3.VolumeCode, frequency: g.Ch3.Frequency, freqTimer: g.Ch3.FreqTimer,
		waveRAM: g.Ch3.WaveRAM, samplePos: g.Ch3.SamplePos, lastReadIndex: g.Ch3.LastReadIndex,
	}
	s.Ch4 = channel4{
		enabled: g.Ch4.Enabled, dacEnabled: g.Ch4.DACEnabled,
		lengthLoad: g.Ch4.LengthLoad, lengthCounter: g.Ch4.LengthCounter, lengthEnabled: g.Ch4.LengthEnabled,
		startVolume: g.Ch4.StartVolume, envelopeAdd: g.Ch4.EnvelopeAdd,
		envelopePeriod: g.Ch4.EnvelopePeriod, envelopeTimer: g.Ch4.EnvelopeTimer,
		currentVolume: g.Ch4.CurrentVolume, clockShift: g.Ch4.ClockShift,
		widthMode7: g.Ch4.WidthMode7, divisorCode: g.Ch4.DivisorCode,
		freqTimer: g.Ch4.FreqTimer, lfsr: g.Ch4.LFSR,
	}
	return nil
}
