package notification

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// BookingSummary is the confirmation payload handed to the notifier.
type BookingSummary struct {
	ConfirmationNumber string
	CustomerName       string
	StartDate          time.Time
	EndDate            time.Time
	PickupTime         string
	TotalCents         int64
	Currency           string
}

// Notifier dispatches booking confirmations. Implementations are best-effort:
// the lifecycle engine logs and swallows any failure, so a broken notifier
// must never fail a booking.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, customerEmail string, summary BookingSummary) error
}

// LogNotifier records the dispatch in the service log. Real delivery (SMTP,
// SMS) is owned by a downstream consumer of rental.events.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// SendBookingConfirmation logs the confirmation dispatch.
func (n *LogNotifier) SendBookingConfirmation(ctx context.Context, customerEmail string, summary BookingSummary) error {
	n.logger.Info("booking confirmation dispatched",
		zap.String("email", customerEmail),
		zap.String("confirmation_number", summary.ConfirmationNumber),
		zap.Time("start_date", summary.StartDate),
		zap.Time("end_date", summary.EndDate),
	)
	return nil
}
