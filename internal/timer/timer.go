// Package timer provides the CHIP-8 delay timer, an 8-bit counter
// that decays at a fixed 60 Hz in real time regardless of how often
// the emulator is updated.
package timer

// Frequency is the decay rate of the timer in Hz.
const Frequency = 60

// Timer is an 8-bit countdown timer. A fixed-timestep accumulator
// converts variable frame deltas into 60 Hz ticks.
type Timer struct {
	value uint8
	accum float64
}

// New returns a new stopped timer.
func New() *Timer {
	return &Timer{}
}

// Set sets the current value of the timer.
func (t *Timer) Set(v uint8) {
	t.value = v
}

// Reset stops the timer and discards any accumulated time.
func (t *Timer) Reset() {
	t.value = 0
	t.accum = 0
}

// Value returns the current value of the timer.
func (t *Timer) Value() uint8 {
	return t.value
}

// Update advances the timer by dt seconds, decrementing the value once
// per elapsed 1/60 s. The value never goes below zero, and time is
// only accumulated while the timer is running.
func (t *Timer) Update(dt float64) {
	if t.value == 0 {
		return
	}
	t.accum += dt

	// derive whole ticks by multiplication; repeated subtraction of
	// 1/60 drops a tick on exact second boundaries
	ticks := int(t.accum * Frequency)
	if ticks == 0 {
		return
	}
	t.accum -= float64(ticks) / Frequency

	if ticks >= int(t.value) {
		t.value = 0
		t.accum = 0
		return
	}
	t.value -= uint8(ticks)
}
