package core

import (
	"math"
)

const (
	popularityScale = 10.0
	activityScale   = 5.0
	scoreCeiling    = 100.0
)

// PopularityScore is 100·(1 − e^(−timesBorrowed/10)) at two-decimal precision.
// It is monotone in timesBorrowed and bounded by 100.
func PopularityScore(timesBorrowed int) float64 {
	return saturating(timesBorrowed, popularityScale)
}

// ActivityScore is 100·(1 − e^(−lifetimeBorrows/5)) at two-decimal precision.
// lifetimeBorrows counts every successful borrow of the user and never decreases,
// so the score never decreases either.
func ActivityScore(lifetimeBorrows int) float64 {
	return saturating(lifetimeBorrows, activityScale)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func saturating(count int, scale float64) float64 {
	if count <= 0 {
		return 0
	}

	return Round2(scoreCeiling * (1 - math.Exp(-float64(count)/scale)))
}
