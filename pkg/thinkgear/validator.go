// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Teo Aldana, SynapseWorks

package thinkgear

import "fmt"

// AnomalyType represents different classes of data item anomalies
type AnomalyType int

const (
	AnomalyInvalidEsense AnomalyType = iota
	AnomalyInvalidSignal
	AnomalyInvalidBandPower
	AnomalyBlinkNoContact
)

// ValidationError represents a data item validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateItem checks one decoded item against the device's documented
// value ranges. The stock handlers cannot produce out-of-range values, so
// findings here mean either buggy firmware or a custom row handler; both
// are worth flagging to the operator. Returns an empty slice for a valid
// item.
func ValidateItem(item DataItem) []ValidationError {
	errors := []ValidationError{}

	switch item.Kind {
	case KindAttention, KindMeditation:
		if item.Value < 0 || item.Value > MaxEsenseValue {
			errors = append(errors, ValidationError{
				Type:    AnomalyInvalidEsense,
				Message: fmt.Sprintf("%s value %d out of range (0-%d)", item.Kind, item.Value, MaxEsenseValue),
				Details: map[string]interface{}{"kind": item.Kind.String(), "value": item.Value, "max": MaxEsenseValue},
			})
		}

	case KindSignalQuality:
		if item.Value < 0 || item.Value > MaxSignalValue {
			errors = append(errors, ValidationError{
				Type:    AnomalyInvalidSignal,
				Message: fmt.Sprintf("signal quality %d out of range (0-%d)", item.Value, MaxSignalValue),
				Details: map[string]interface{}{"value": item.Value, "max": MaxSignalValue},
			})
		}

	case KindBandPower:
		if item.Value < 0 || item.Value > MaxBandPowerValue {
			errors = append(errors, ValidationError{
				Type:    AnomalyInvalidBandPower,
				Message: fmt.Sprintf("%s band power %d out of range (0-%d)", item.Band, item.Value, MaxBandPowerValue),
				Details: map[string]interface{}{"band": item.Band.String(), "value": item.Value, "max": MaxBandPowerValue},
			})
		}
	}

	return errors
}

// ValidateItems validates a payload's worth of items together. Beyond
// the per-item range checks it flags blink strength reported in the same
// payload as a no-contact signal reading, which indicates a sensor sitting
// off the skin while still claiming eye activity.
func ValidateItems(items []DataItem) []ValidationError {
	errors := []ValidationError{}

	noContact := false
	var blink *DataItem
	for i := range items {
		errors = append(errors, ValidateItem(items[i])...)
		switch items[i].Kind {
		case KindSignalQuality:
			if items[i].Value >= MaxSignalValue {
				noContact = true
			}
		case KindBlinkStrength:
			if items[i].Value > 0 {
				blink = &items[i]
			}
		}
	}

	if noContact && blink != nil {
		errors = append(errors, ValidationError{
			Type:    AnomalyBlinkNoContact,
			Message: fmt.Sprintf("blink strength %d reported with no skin contact", blink.Value),
			Details: map[string]interface{}{"blink": blink.Value},
		})
	}

	return errors
}
