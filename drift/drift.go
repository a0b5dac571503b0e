// Package drift keeps a variable-rate capture loop aligned with its nominal
// frame rate.
//
// Every tick that takes longer than the nominal frame period leaves a
// deficit. Whole periods of deficit are paid back by repeating the current
// frame (and one audio chunk per frame) so the written stream keeps pace with
// wall-clock time. When repeats pile up the inference throttle is widened,
// trading gesture responsiveness for real-time fidelity.
package drift

import "time"

// Defaults.
const (
	DefaultRepeatLimit = 10
	DefaultMinThrottle = 1
	DefaultMaxThrottle = 5
)

// Compensator tracks the accumulated timing deficit of a capture loop.
// It is not safe for concurrent use.
type Compensator struct {
	period      time.Duration
	repeatLimit int
	maxThrottle int

	deficit  time.Duration
	repeats  int // repeats since the last throttle adjustment
	throttle int
	total    int64 // repeats since Reset
}

// New creates a compensator for the given nominal frame period.
func New(period time.Duration) *Compensator {
	if period <= 0 {
		panic("drift: non-positive frame period")
	}
	return &Compensator{
		period:      period,
		repeatLimit: DefaultRepeatLimit,
		maxThrottle: DefaultMaxThrottle,
		throttle:    DefaultMinThrottle,
	}
}

// PeriodForFPS returns the nominal frame period for fps.
func PeriodForFPS(fps float64) time.Duration {
	return time.Duration(float64(time.Second) / fps)
}

// Tick records one loop iteration that took elapsed and returns how many
// extra frames are owed.
func (c *Compensator) Tick(elapsed time.Duration) int {
	if over := elapsed - c.period; over > 0 {
		c.deficit += over
	}

	owed := 0
	for c.deficit >= c.period {
		c.deficit -= c.period
		owed++
		c.total++
		c.repeats++
		if c.repeats > c.repeatLimit && c.throttle < c.maxThrottle {
			c.throttle++
			c.repeats = 0
		}
	}
	return owed
}

// Throttle returns the current inference throttle in frames, within
// [DefaultMinThrottle, DefaultMaxThrottle].
func (c *Compensator) Throttle() int {
	return c.throttle
}

// Deficit returns the outstanding deficit, always in [0, period).
func (c *Compensator) Deficit() time.Duration {
	return c.deficit
}

// Repeated returns the number of repeated frames since Reset.
func (c *Compensator) Repeated() int64 {
	return c.total
}

// Period returns the nominal frame period.
func (c *Compensator) Period() time.Duration {
	return c.period
}

// Reset clears all timing state.
func (c *Compensator) Reset() {
	c.deficit = 0
	c.repeats = 0
	c.throttle = DefaultMinThrottle
	c.total = 0
}
