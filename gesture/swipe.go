package gesture

import (
	"math"

	"github.com/dasdy/softkeys/model"
)

type axis struct {
	interaction model.InteractionType
	ok          bool
}

// detectSwipe checks the finished gesture against the travel and velocity thresholds.
// The axis with the larger displacement is tried first; when the key has no binding for
// that direction the other axis is tried.
func (r *Resolver) detectSwipe(p *pointer) (model.InteractionType, bool) {
	if !r.cfg.SwipeEnabled {
		return 0, false
	}

	k := r.kb.Key(p.downKey)
	if k == nil {
		return 0, false
	}

	dx, dy := p.displacement()
	vx, vy := p.velocity.velocity()

	horizontal := axis{interaction: model.InteractionSwipeRight}
	if dx < 0 {
		horizontal.interaction = model.InteractionSwipeLeft
	}

	horizontal.ok = math.Abs(dx) > r.cfg.SwipeTravel && vx*sign(dx) >= r.cfg.SwipeVelocity

	vertical := axis{interaction: model.InteractionSwipeDown}
	if dy < 0 {
		vertical.interaction = model.InteractionSwipeUp
	}

	vertical.ok = math.Abs(dy) > r.cfg.SwipeTravel && vy*sign(dy) >= r.cfg.SwipeVelocity

	order := []axis{horizontal, vertical}
	if math.Abs(dy) > math.Abs(dx) {
		order = []axis{vertical, horizontal}
	}

	for _, a := range order {
		if a.ok && k.HasBinding(a.interaction) {
			return a.interaction, true
		}
	}

	return 0, false
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}

	return 1
}
