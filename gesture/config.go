package gesture

import "time"

type Config struct {
	LongPressTimeout time.Duration
	RepeatStartDelay time.Duration
	RepeatInterval   time.Duration

	SwipeEnabled bool
	// SwipeTravel is the minimum displacement in pixels along the swipe axis.
	SwipeTravel float64
	// SwipeVelocity is the minimum speed in pixels per second along the swipe axis.
	SwipeVelocity float64

	// DebounceTime is the window in which a release drifting onto a neighbour snaps back.
	DebounceTime     time.Duration
	MultiTapInterval time.Duration
	// VelocityHorizon is how far back velocity samples are considered.
	VelocityHorizon time.Duration

	// PopupsEnabled lets long-press open mini keyboards.
	PopupsEnabled bool
}

func DefaultConfig() Config {
	return Config{
		LongPressTimeout: 400 * time.Millisecond,
		RepeatStartDelay: 400 * time.Millisecond,
		RepeatInterval:   50 * time.Millisecond,
		SwipeEnabled:     true,
		SwipeTravel:      80,
		SwipeVelocity:    200,
		DebounceTime:     70 * time.Millisecond,
		MultiTapInterval: 800 * time.Millisecond,
		VelocityHorizon:  100 * time.Millisecond,
		PopupsEnabled:    true,
	}
}
