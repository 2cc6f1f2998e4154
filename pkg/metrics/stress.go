// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package metrics

import (
	"github.com/SynapseWorks/mindstream/pkg/thinkgear"
)

// Stress score bounds and level thresholds. The score is the beta/alpha
// band power ratio scaled by 500 and capped at 1000; rising beta against
// falling alpha tracks arousal in the consumer-EEG literature.
const (
	MaxStressScore = 1000

	stressMediumAt = 300
	stressHighAt   = 700
)

// StressLevel buckets a stress score for display
type StressLevel int

const (
	StressLow StressLevel = iota
	StressMedium
	StressHigh
)

var stressNames = map[StressLevel]string{
	StressLow:    "Low",
	StressMedium: "Medium",
	StressHigh:   "High",
}

// String returns the stress level's display name
func (l StressLevel) String() string {
	if name, ok := stressNames[l]; ok {
		return name
	}
	return "Unknown"
}

// StressIndex derives a stress score from the most recent alpha and beta
// band powers. Feed it every decoded item; it keeps the band state it
// needs and ignores the rest.
type StressIndex struct {
	lowAlpha  float64
	highAlpha float64
	lowBeta   float64
	highBeta  float64
	ready     bool
}

// NewStressIndex creates an index with no band data yet
func NewStressIndex() *StressIndex {
	return &StressIndex{}
}

// Update records band powers from a decoded item. Returns true when the
// item completed a band block and the score changed.
func (x *StressIndex) Update(item thinkgear.DataItem) bool {
	if item.Kind != thinkgear.KindBandPower {
		return false
	}
	switch item.Band {
	case thinkgear.BandLowAlpha:
		x.lowAlpha = float64(item.Value)
	case thinkgear.BandHighAlpha:
		x.highAlpha = float64(item.Value)
	case thinkgear.BandLowBeta:
		x.lowBeta = float64(item.Value)
	case thinkgear.BandHighBeta:
		x.highBeta = float64(item.Value)
	case thinkgear.BandMidGamma:
		// Mid-gamma closes a band block: every block carries all eight
		// bands, so the four inputs above are now from this block.
		x.ready = true
		return true
	}
	return false
}

// Ready reports whether at least one complete band block has been seen
func (x *StressIndex) Ready() bool {
	return x.ready
}

// Score returns the current stress score in [0, MaxStressScore]. Zero
// alpha power reads as zero stress rather than dividing by it.
func (x *StressIndex) Score() float64 {
	alpha := x.lowAlpha + x.highAlpha
	if !x.ready || alpha == 0 {
		return 0
	}
	beta := x.lowBeta + x.highBeta
	score := beta / alpha * 500
	if score > MaxStressScore {
		return MaxStressScore
	}
	return score
}

// Level buckets the current score
func (x *StressIndex) Level() StressLevel {
	score := x.Score()
	switch {
	case score < stressMediumAt:
		return StressLow
	case score < stressHighAt:
		return StressMedium
	default:
		return StressHigh
	}
}
