// ABOUTME: Confidence is the bounded [0,1] score type shared by items and profiles
// ABOUTME: The EMA nudge and clamped add are its only mutators
package models

import "math"

// Confidence is a score bounded to [0,1]. It replaces the loose floats the
// rest of the system would otherwise pass around for outcome scores,
// technology weights, and pattern confidence.
type Confidence float64

// Neutral is the starting confidence for anything never observed:
// fresh technology weights, unknown patterns, unscored preference lookups.
const Neutral Confidence = 0.5

// Clamp forces c into [0,1].
func (c Confidence) Clamp() Confidence {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// Nudge moves c toward target by step*(target-c), the exponential-moving-average
// update. A single call can never move the value by more than step, so no
// single observation can saturate a weight.
func (c Confidence) Nudge(target, step float64) Confidence {
	next := float64(c) + step*(target-float64(c))
	return Confidence(next).Clamp()
}

// Add returns c+delta clamped to [0,1].
func (c Confidence) Add(delta float64) Confidence {
	return (c + Confidence(delta)).Clamp()
}

// Float returns the underlying float64.
func (c Confidence) Float() float64 {
	return float64(c)
}

// ApproxEqual reports whether c and other agree within tolerance.
func (c Confidence) ApproxEqual(other Confidence, tolerance float64) bool {
	return math.Abs(float64(c)-float64(other)) <= tolerance
}
