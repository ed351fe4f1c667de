package gesture

import "time"

const maxSamples = 16

type sample struct {
	x, y float64
	t    time.Time
}

// velocityTracker keeps a short rolling window of pointer samples.
type velocityTracker struct {
	horizon time.Duration
	samples []sample
}

func newVelocityTracker(horizon time.Duration) *velocityTracker {
	return &velocityTracker{horizon: horizon, samples: make([]sample, 0, maxSamples)}
}

func (v *velocityTracker) add(x, y float64, t time.Time) {
	if len(v.samples) == maxSamples {
		copy(v.samples, v.samples[1:])
		v.samples = v.samples[:maxSamples-1]
	}

	v.samples = append(v.samples, sample{x: x, y: y, t: t})
}

// velocity returns pixels per second along each axis, measured from the oldest sample
// inside the horizon to the newest. The sample just before the newest is always used
// when nothing else is recent enough.
func (v *velocityTracker) velocity() (float64, float64) {
	if len(v.samples) < 2 {
		return 0, 0
	}

	last := v.samples[len(v.samples)-1]
	first := v.samples[len(v.samples)-2]

	for i := len(v.samples) - 3; i >= 0; i-- {
		if last.t.Sub(v.samples[i].t) > v.horizon {
			break
		}

		first = v.samples[i]
	}

	dt := last.t.Sub(first.t).Seconds()
	if dt <= 0 {
		return 0, 0
	}

	return (last.x - first.x) / dt, (last.y - first.y) / dt
}
