// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package thinkgear

// QualityLevel classifies a POOR_SIGNAL reading into electrode contact
// quality bands
type QualityLevel int

// Quality levels, best to worst
const (
	QualityExcellent QualityLevel = iota
	QualityGood
	QualityFair
	QualityPoor
	QualityNoContact
)

// Classification thresholds on the 0-200 signal scale
const (
	qualityGoodBelow = 50
	qualityFairBelow = 100
	qualityPoorBelow = 200
)

var qualityNames = map[QualityLevel]string{
	QualityExcellent: "Excellent",
	QualityGood:      "Good",
	QualityFair:      "Fair",
	QualityPoor:      "Poor",
	QualityNoContact: "No Contact",
}

// String returns the quality level's display name
func (q QualityLevel) String() string {
	if name, ok := qualityNames[q]; ok {
		return name
	}
	return "Unknown"
}

// ClassifySignal maps a signal quality value to a contact quality level.
// 0 is a clean contact; 200 means the electrode is off the skin.
func ClassifySignal(value uint8) QualityLevel {
	switch {
	case value == 0:
		return QualityExcellent
	case value < qualityGoodBelow:
		return QualityGood
	case value < qualityFairBelow:
		return QualityFair
	case value < qualityPoorBelow:
		return QualityPoor
	default:
		return QualityNoContact
	}
}
