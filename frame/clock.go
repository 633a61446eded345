package frame

import "time"

// StepClock is a Clock that only moves when stepped. Recording uses it so
// every frame advances by exactly one frame interval.
type StepClock struct {
	now  time.Time
	step time.Duration
}

// NewStepClock starts at start and advances by 1/fps per Step.
func NewStepClock(start time.Time, fps int) *StepClock {
	if fps <= 0 {
		fps = 60
	}
	return &StepClock{now: start, step: time.Second / time.Duration(fps)}
}

func (c *StepClock) Now() time.Time { return c.now }

// Step advances the clock by one frame.
func (c *StepClock) Step() { c.now = c.now.Add(c.step) }

// Interval is the duration of one step.
func (c *StepClock) Interval() time.Duration { return c.step }
