package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{"confirmed to active", StatusConfirmed, StatusActive, true},
		{"confirmed to cancelled", StatusConfirmed, StatusCancelled, true},
		{"confirmed to completed skips handover", StatusConfirmed, StatusCompleted, false},
		{"active to completed", StatusActive, StatusCompleted, true},
		{"active to cancelled", StatusActive, StatusCancelled, true},
		{"active back to confirmed", StatusActive, StatusConfirmed, false},
		{"completed is terminal", StatusCompleted, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusActive, false},
		{"cancelled cannot be resurrected", StatusCancelled, StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestBookingStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusActive.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, BookingStatus("GARBAGE").IsTerminal())
}

func TestBookingStatus_Occupies(t *testing.T) {
	assert.True(t, StatusConfirmed.Occupies())
	assert.True(t, StatusActive.Occupies())
	assert.False(t, StatusCompleted.Occupies())
	assert.False(t, StatusCancelled.Occupies())
}

func TestParseBookingStatus(t *testing.T) {
	status, err := ParseBookingStatus("CONFIRMED")
	assert.NoError(t, err)
	assert.Equal(t, StatusConfirmed, status)

	_, err = ParseBookingStatus("confirmed")
	assert.Error(t, err)

	_, err = ParseBookingStatus("PENDING")
	assert.Error(t, err)
}
