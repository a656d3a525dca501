package booking

import (
	"fmt"
	"time"
)

// PolicyType identifies a cancellation policy family.
type PolicyType string

const (
	PolicyFlexible PolicyType = "flexible"
	PolicyModerate PolicyType = "moderate"
	PolicyStrict   PolicyType = "strict"
	PolicyCustom   PolicyType = "custom"
)

// PolicyRule is one custom-policy tier: cancelling at least ThresholdDays
// before check-in refunds RefundPercent of the total price.
type PolicyRule struct {
	ThresholdDays int     `json:"threshold_days"`
	RefundPercent float64 `json:"refund_percent"`
}

// CancellationPolicy describes the refund rules applied to a cancellation
// request. Rules is only consulted for the custom type.
type CancellationPolicy struct {
	Type  PolicyType   `json:"type"`
	Rules []PolicyRule `json:"rules,omitempty"`
}

// CancellationOutcome is the deterministic result of evaluating a
// cancellation request.
type CancellationOutcome struct {
	RefundPercent float64 `json:"refund_percent"`
	RefundAmount  float64 `json:"refund_amount"`
	Fee           float64 `json:"fee"`
	Explanation   string  `json:"explanation"`
}

// standardCheckInHour is the assumed check-in time of day; the canonical
// model carries no time component.
const standardCheckInHour = 15

// EvaluateCancellation computes the refund outcome for cancelling a booking
// with the given check-in date and total price at the given moment.
func EvaluateCancellation(policy CancellationPolicy, checkIn string, totalPrice float64, at time.Time) (CancellationOutcome, error) {
	checkInDay, err := time.Parse("2006-01-02", checkIn)
	if err != nil {
		return CancellationOutcome{}, fmt.Errorf("invalid check-in date %q: %w", checkIn, err)
	}
	checkInTime := time.Date(checkInDay.Year(), checkInDay.Month(), checkInDay.Day(),
		standardCheckInHour, 0, 0, 0, time.UTC)

	daysBefore := checkInTime.Sub(at.UTC()).Hours() / 24

	if daysBefore <= 0 {
		return outcome(0, totalPrice, "check-in has already passed, no refund"), nil
	}

	switch policy.Type {
	case PolicyFlexible:
		if daysBefore >= 1 {
			return outcome(100, totalPrice, "flexible policy: cancelled at least 1 day before check-in"), nil
		}
		return outcome(0, totalPrice, "flexible policy: cancelled less than 1 day before check-in"), nil

	case PolicyModerate:
		if daysBefore >= 5 {
			return outcome(100, totalPrice, "moderate policy: cancelled at least 5 days before check-in"), nil
		}
		return outcome(50, totalPrice, "moderate policy: cancelled less than 5 days before check-in"), nil

	case PolicyStrict:
		return outcome(0, totalPrice, "strict policy: non-refundable"), nil

	case PolicyCustom:
		// Select the rule with the largest threshold still within the actual
		// days-before value.
		best := -1
		for i, rule := range policy.Rules {
			if daysBefore >= float64(rule.ThresholdDays) {
				if best == -1 || rule.ThresholdDays > policy.Rules[best].ThresholdDays {
					best = i
				}
			}
		}
		if best == -1 {
			return outcome(0, totalPrice, "out of custom cancellation window"), nil
		}
		rule := policy.Rules[best]
		return outcome(rule.RefundPercent, totalPrice,
			fmt.Sprintf("custom policy: %d+ days before check-in refunds %.0f%%", rule.ThresholdDays, rule.RefundPercent)), nil

	default:
		return CancellationOutcome{}, fmt.Errorf("unknown policy type %q", policy.Type)
	}
}

func outcome(percent, totalPrice float64, explanation string) CancellationOutcome {
	refund := totalPrice * percent / 100
	return CancellationOutcome{
		RefundPercent: percent,
		RefundAmount:  refund,
		Fee:           totalPrice - refund,
		Explanation:   explanation,
	}
}
