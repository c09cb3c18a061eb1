package booking

import "fmt"

// RateCalculator computes a booking's monetary total.
type RateCalculator interface {
	// Total returns the amount in cents for renting at the given daily rate
	// over the window.
	Total(dailyRateCents int64, window Window) (int64, error)
}

// StandardRateCalculator charges the car type's daily rate for each calendar
// day the window touches, boundaries inclusive.
type StandardRateCalculator struct{}

// NewStandardRateCalculator creates a new StandardRateCalculator.
func NewStandardRateCalculator() *StandardRateCalculator {
	return &StandardRateCalculator{}
}

// Total computes dailyRate * inclusive rental days.
func (c *StandardRateCalculator) Total(dailyRateCents int64, window Window) (int64, error) {
	if dailyRateCents < 0 {
		return 0, fmt.Errorf("daily rate cannot be negative")
	}
	days := window.Days()
	if days < 1 {
		days = 1
	}
	return dailyRateCents * int64(days), nil
}
