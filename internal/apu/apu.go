// Package apu implements the four-channel audio synthesizer, frame
// sequencer, and resampling mixer.
package apu

const sequencerReload = 8192 // machine clocks between 512 Hz frame-sequencer ticks

// APU owns the four sound channels and the mixer/resampler pipeline.
// Register writes flush pending audio first so a mid-sample register
// change takes effect at the correct sample boundary.
type APU struct {
	enabled bool // NR52 bit 7, master power

	nr50, nr51 uint8

	ch1 *channel1
	ch2 *channel2
	ch3 *channel3
	ch4 *channel4

	sequencerClocks  uint32
	sequencerStep    uint8

	resamplerFactor uint32
	resamplerAccum  uint32
	sumL, sumR      int64

	WriteAudio func(stereo []float32)
	sampleBuf  []float32

	isCGB    bool
	speed    float64
	outputHz int
}

// New returns an APU with the channels and resampler configured for
// the given output sample rate (44100 is a standard choice).
func New(outputHz int) *APU {
	a := &APU{
		ch1:   newChannel1(),
		ch2:   newChannel2(),
		ch3:   newChannel3(),
		ch4:   newChannel4(),
		speed: 1.0,
	}
	a.SetSampleRate(outputHz)
	return a
}

// SetSampleRate recomputes the first-pass resampler factor for a new
// output rate; Core.SetSpeed calls SetSpeed, not this method.
func (a *APU) SetSampleRate(outputHz int) {
	a.outputHz = outputHz
	a.recomputeResamplerFactor()
}

// SetSpeed rescales the resampler factor for a non-1x core speed
// multiplier so pitch stays correct (called by Core.SetSpeed).
func (a *APU) SetSpeed(multiplier float64) {
	if multiplier <= 0 {
		multiplier = 1.0
	}
	a.speed = multiplier
	a.recomputeResamplerFactor()
}

func (a *APU) recomputeResamplerFactor() {
	if a.outputHz == 0 {
		return
	}
	factor := uint32(clockSpeedFor(a.isCGB, a.speed) / a.outputHz)
	if factor < 1 {
		factor = 1
	}
	a.resamplerFactor = factor
}

func clockSpeedFor(isCGB bool, speed float64) int {
	return int(4194304 * speed)
}

// SetModel toggles CGB-only mixer behavior (none currently differ, but
// the hook exists for double-speed resampler rescaling at the host
// layer).
func (a *APU) SetModel(isCGB bool) { a.isCGB = isCGB }

// flush is the audioJIT hook: historically it would push the prior
// register value's contribution to the sample window before a write
// took effect. tickOne already accumulates every machine clock's worth
// of output unconditionally, so there's never anything pending at
// register-write time and the hook is a deliberate no-op.
func (a *APU) flush() {}

// Tick advances the APU by cycles already scaled for double speed,
// the same scaled clock the LCD ticks on.
func (a *APU) Tick(cycles uint32) {
	for i := uint32(0); i < cycles; i++ {
		a.tickOne()
	}
}

func (a *APU) tickOne() {
	if a.enabled {
		a.ch1.step()
		a.ch2.step()
		a.ch3.step()
		a.ch4.step()

		a.sequencerClocks++
		if a.sequencerClocks >= sequencerReload {
			a.sequencerClocks = 0
			a.stepSequencer()
		}
	}

	a.accumulateSample()
}

// stepSequencer advances the 512 Hz, 8-step frame sequencer: length at
// steps {0,2,4,6}, sweep at {2,6}, envelope at {7}.
func (a *APU) stepSequencer() {
	step := a.sequencerStep
	if step%2 == 0 {
		a.ch1.lengthStep()
		a.ch2.lengthStep()
		a.ch3.lengthStep()
		a.ch4.lengthStep()
	}
	if step == 2 || step == 6 {
		a.ch1.sweepStep()
	}
	if step == 7 {
		a.ch1.volumeStep()
		a.ch2.volumeStep()
		a.ch4.volumeStep()
	}
	a.sequencerStep = (step + 1) % 8
}

// mixerOutputCache computes the current packed left|right sample:
// each channel's base sample gated by NR51 left/right enables and the
// channel's own enable/DAC gate, summed, then scaled by the NR50 Vin
// volumes.
func (a *APU) mixerOutputCache() (left, right int32) {
	type src struct {
		sample  uint8
		lBit, rBit uint8
	}
	samples := [4]src{
		{a.ch1.outputSample(), 0x01, 0x10},
		{a.ch2.outputSample(), 0x02, 0x20},
		{a.ch3.outputSample(), 0x04, 0x40},
		{a.ch4.outputSample(), 0x08, 0x80},
	}
	var l, r int32
	for _, s := range samples {
		if a.nr51&s.lBit != 0 {
			l += int32(s.sample)
		}
		if a.nr51&s.rBit != 0 {
			r += int32(s.sample)
		}
	}
	volL := int32((a.nr50>>4)&0x07) + 1
	volR := int32(a.nr50&0x07) + 1
	return l * volL, r * volR
}

func (a *APU) accumulateSample() {
	l, r := int64(0), int64(0)
	if a.enabled {
		ll, rr := a.mixerOutputCache()
		l, r = int64(ll), int64(rr)
	}
	a.sumL += l
	a.sumR += r
	a.resamplerAccum++
	if a.resamplerAccum >= a.resamplerFactor {
		a.resamplerAccum = 0
		denom := float32(a.resamplerFactor) * 0xF0
		sampleL := float32(a.sumL)/denom - 1
		sampleR := float32(a.sumR)/denom - 1
		a.sumL, a.sumR = 0, 0
		a.sampleBuf = append(a.sampleBuf, sampleL, sampleR)
	}
}

// Flush returns and clears the accumulated stereo sample buffer,
// called once per Core.Run iteration and delivered via WriteAudio.
func (a *APU) Flush() []float32 {
	buf := a.sampleBuf
	a.sampleBuf = nil
	if a.WriteAudio != nil && len(buf) > 0 {
		a.WriteAudio(buf)
	}
	return buf
}
