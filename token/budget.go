package token

import "math"

// Limits is the derived budget triple for one model: the declared hard
// limit, the safety margin, and the effective packing ceiling
// (limit - margin).
//
// All three fields are nil when the model declares no limit, in which
// case no budget is enforced.
type Limits struct {
	Limit     *int
	Margin    *int
	Effective *int
}

// EffectiveLimits derives the packing ceiling for a model.
//
// It is a pure function of the inputs and cheap enough to recompute on
// demand rather than cache.
//
// Rules:
//   - maxInput nil: no budget; all outputs nil.
//   - marginOverride nil: margin = max(4000, round(0.10 * limit)).
//   - margin is clamped to limit-1 so effective never goes below 1.
func EffectiveLimits(maxInput, marginOverride *int) Limits {
	if maxInput == nil {
		return Limits{}
	}

	limit := *maxInput
	var margin int
	if marginOverride != nil {
		margin = *marginOverride
	} else {
		margin = int(math.Round(0.10 * float64(limit)))
		if margin < 4000 {
			margin = 4000
		}
	}

	// Keep at least one usable token below the hard limit.
	if margin > limit-1 {
		margin = limit - 1
	}
	effective := limit - margin

	return Limits{
		Limit:     &limit,
		Margin:    &margin,
		Effective: &effective,
	}
}
