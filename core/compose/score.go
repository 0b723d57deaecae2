package compose

// Score weights. The base of 50 is the floor an all-degraded run bottoms out
// at: no preferences, no calendar check and zero confidence still yield 50.
const (
	scoreBase           = 50.0
	weightConfidence    = 20.0
	weightOptimalSlots  = 15.0
	weightConfirmed     = 10.0
	weightPreferences   = 5.0
	prefConfidenceFloor = 0.5
)

// Score computes the 0-100 optimization score. It is the caller-visible
// signal of how degraded a proposal is; a low score communicates low
// confidence without a hard failure.
func Score(in Input) float64 {
	s := scoreBase
	s += weightConfidence * in.Analysis.Confidence

	if n := len(in.Slots); n > 0 {
		optimal, confirmed := 0, 0
		for _, slot := range in.Slots {
			if slot.IsOptimal {
				optimal++
			}
			if slot.AvailabilityConfirmed {
				confirmed++
			}
		}
		s += weightOptimalSlots * float64(optimal) / float64(n)
		if in.CalendarChecked {
			s += weightConfirmed * float64(confirmed) / float64(n)
		}
	}

	if in.Preferences != nil && in.Preferences.ConfidenceScore > prefConfidenceFloor {
		s += weightPreferences
	}

	if s < 0 {
		s = 0
	}
	if s > 100 {
		s = 100
	}
	return s
}
