package recommend

import (
	"math"
	"strings"
)

const (
	defaultStrideM  = 0.75
	maleStrideM     = 0.78
	femaleStrideM   = 0.70
	walkingSpeedKmh = 4.8
	walkingMET      = 3.5
	defaultWeightKg = 70.0
)

// WalkingSteps estimates the steps needed to walk km from the average stride
// for gender ("male", "female", anything else for the default).
func WalkingSteps(km float64, gender string) int {
	stride := defaultStrideM
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case "male":
		stride = maleStrideM
	case "female":
		stride = femaleStrideM
	}
	return nonNegativeInt(km * 1000 / stride)
}

// WalkingCalories estimates kcal burned walking km with the MET formula at a
// steady walking pace. A non-positive weight uses the default.
func WalkingCalories(km, weightKg float64) int {
	if weightKg <= 0 || math.IsNaN(weightKg) {
		weightKg = defaultWeightKg
	}
	hours := km / walkingSpeedKmh
	return nonNegativeInt(walkingMET * weightKg * hours)
}

func nonNegativeInt(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if math.IsInf(v, 1) {
		return math.MaxInt32
	}
	return int(math.Round(v))
}
