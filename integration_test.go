//go:build integration

package main_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/driveport/service-rental/internal/application"
	"github.com/driveport/service-rental/internal/domain"
	"github.com/driveport/service-rental/internal/events"
	"github.com/driveport/service-rental/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCreateBooking_PersistsAndPublishes verifies the full create path: the
// booking lands in PostgreSQL as CONFIRMED, the confirmation is dispatched and
// a rental.booking.created event reaches the topic.
func TestCreateBooking_PersistsAndPublishes(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	_, carID, customerID := seedFleet(t, infra.DB)

	dto, err := stack.Bookings.CreateBooking(context.Background(), application.CreateBookingRequest{
		CarID:      carID.String(),
		CustomerID: customerID.String(),
		StartDate:  "2026-03-10",
		EndDate:    "2026-03-12",
		PickupTime: "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", dto.Status)
	assert.Equal(t, int64(7500_00), dto.TotalCents, "three inclusive days at 2500.00/day")

	var model repository.BookingModel
	require.NoError(t, infra.DB.Where("id = ?", dto.ID).First(&model).Error)
	assert.Equal(t, "CONFIRMED", model.Status)
	assert.Equal(t, dto.ConfirmationNumber, model.ConfirmationNumber)

	require.Len(t, stack.Notifier.sent(), 1)
	assert.Equal(t, "Asha Rao", stack.Notifier.sent()[0].CustomerName)

	ce := consumeOneEvent(t, infra.KafkaBrokers, testTopic, events.BookingCreated, 15*time.Second)
	var created events.BookingCreatedEvent
	require.NoError(t, ce.ParseData(&created))
	assert.Equal(t, dto.ID, created.BookingID)
	assert.Equal(t, dto.ConfirmationNumber, created.ConfirmationNumber)
	assert.Equal(t, "INR", created.Currency)
}

// TestOverlap_ExclusionConstraintBackstop bypasses the service's in-process
// lock and writes overlapping bookings straight through the repository. The
// database exclusion constraint must reject all but one.
func TestOverlap_ExclusionConstraintBackstop(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	_, carID, customerID := seedFleet(t, infra.DB)

	const attempts = 5
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bk := newConfirmedBooking(t, carID, customerID, "2026-03-10", "2026-03-20")
			errs[i] = stack.BookingRepo.Save(context.Background(), bk)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var conflictErr *domain.ConflictError
		assert.ErrorAs(t, err, &conflictErr)
	}
	assert.Equal(t, 1, succeeded, "constraint admits exactly one overlapping booking")
}

// TestLifecycle_EndToEnd walks a booking through handover and return against
// the real store, checking the optimistic version at each step.
func TestLifecycle_EndToEnd(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	_, carID, customerID := seedFleet(t, infra.DB)
	ctx := context.Background()

	created, err := stack.Bookings.CreateBooking(ctx, application.CreateBookingRequest{
		CarID:      carID.String(),
		CustomerID: customerID.String(),
		StartDate:  "2026-03-10",
		EndDate:    "2026-03-12",
	})
	require.NoError(t, err)

	active, err := stack.Bookings.Handover(ctx, created.ID, application.HandoverRequest{FuelStatus: "Full"})
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", active.Status)
	assert.Equal(t, created.Version+1, active.Version)

	completed, err := stack.Bookings.Return(ctx, created.ID, application.ReturnRequest{FuelStatus: "1/2"})
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", completed.Status)

	// A completed booking frees the window for a fresh one.
	_, err = stack.Bookings.CreateBooking(ctx, application.CreateBookingRequest{
		CarID:      carID.String(),
		CustomerID: customerID.String(),
		StartDate:  "2026-03-10",
		EndDate:    "2026-03-12",
	})
	assert.NoError(t, err)

	ce := consumeOneEvent(t, infra.KafkaBrokers, testTopic, events.BookingReturned, 15*time.Second)
	var returned events.BookingReturnedEvent
	require.NoError(t, ce.ParseData(&returned))
	assert.Equal(t, created.ID, returned.BookingID)
}

// TestFleetSnapshot_AgainstStore verifies hub grouping and the windowed
// availability query against real SQL.
func TestFleetSnapshot_AgainstStore(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	_, carID, customerID := seedFleet(t, infra.DB)
	ctx := context.Background()

	_, err := stack.Bookings.CreateBooking(ctx, application.CreateBookingRequest{
		CarID:      carID.String(),
		CustomerID: customerID.String(),
		StartDate:  "2026-03-10",
		EndDate:    "2026-03-20",
	})
	require.NoError(t, err)

	// Point in time: the booking is CONFIRMED, not ACTIVE, so the car is free.
	snapshot, err := stack.Fleet.Snapshot(ctx, nil)
	require.NoError(t, err)
	require.Len(t, snapshot.Hubs, 1)
	assert.Equal(t, "Koramangala", snapshot.Hubs[0].HubName)
	assert.Equal(t, application.CarStatusAvailable, snapshot.Hubs[0].Cars[0].Status)

	// Windowed: the CONFIRMED booking blocks the overlapping window.
	window := mustWindow(t, "2026-03-15", "2026-03-25")
	snapshot, err = stack.Fleet.Snapshot(ctx, &window)
	require.NoError(t, err)
	assert.Equal(t, application.CarStatusRented, snapshot.Hubs[0].Cars[0].Status)
	require.NotNil(t, snapshot.Hubs[0].Cars[0].Rental)
	assert.Equal(t, "Asha Rao", snapshot.Hubs[0].Cars[0].Rental.CustomerName)
}
