// Package scheduler implements the per-iteration cycle budget the
// reference host drives the core with: a budgeted "tick until the
// cycle target is met" interpreter loop, plus audio-underrun feedback
// that extends the budget. It owns only the budget math, not
// per-event scheduling.
package scheduler

// Budget tracks the cycle target for a single Core.Run() iteration and
// the underrun feedback that extends it.
type Budget struct {
	base      uint32 // baseCyclesPerIteration at 1x speed
	speed     float64
	extended  bool
	cyclesRun uint32
	total     uint32
}

// NewBudget returns a Budget for the given clock speed (Hz) and frame
// rate (Hz), e.g. NewBudget(4194304, 60).
func NewBudget(clockHz int, frameRateHz int) *Budget {
	return &Budget{
		base:  uint32(clockHz / frameRateHz),
		speed: 1,
	}
}

// SetSpeed rescales the per-iteration budget, used by Core.SetSpeed.
func (b *Budget) SetSpeed(multiplier float64) {
	if multiplier <= 0 {
		multiplier = 1
	}
	b.speed = multiplier
}

// Begin starts a new iteration. underrun reports whether the audio
// sink was starved; when set, the budget is doubled. The budget is
// rounded down to a multiple of 4 (so CPU instruction boundaries never
// split a tick group).
func (b *Budget) Begin(underrun bool) {
	target := float64(b.base) * b.speed
	if underrun {
		target *= 2
		b.extended = true
	} else {
		b.extended = false
	}
	total := uint32(target)
	total -= total % 4
	if total < 4 {
		total = 4
	}
	b.total = total
	b.cyclesRun = 0
}

// Advance records cycles consumed this iteration and reports whether
// the budget has been met.
func (b *Budget) Advance(cycles uint32) bool {
	b.cyclesRun += cycles
	return b.cyclesRun >= b.total
}

// Done reports whether the iteration has consumed its full budget.
func (b *Budget) Done() bool {
	return b.cyclesRun >= b.total
}

// Remaining returns how many cycles are left in the current budget.
func (b *Budget) Remaining() uint32 {
	if b.cyclesRun >= b.total {
		return 0
	}
	return b.total - b.cyclesRun
}

// Extended reports whether this iteration's budget was extended due to
// a prior audio underrun.
func (b *Budget) Extended() bool {
	return b.extended
}

// Total returns the cycle budget for the current iteration.
func (b *Budget) Total() uint32 {
	return b.total
}
