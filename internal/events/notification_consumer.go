package events

import (
	"context"
	"encoding/json"

	"github.com/driveport/service-rental/internal/kafka"
	"github.com/driveport/service-rental/internal/notification"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// NotificationEventConsumer listens to rental lifecycle events and dispatches
// customer-facing confirmations through the Notifier.
type NotificationEventConsumer struct {
	consumer *kafka.Consumer
	notifier notification.Notifier
	logger   *zap.Logger
}

// NewNotificationEventConsumer creates a consumer bound to rental.events.
func NewNotificationEventConsumer(
	brokers []string,
	groupID string,
	notifier notification.Notifier,
	logger *zap.Logger,
) *NotificationEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicRentalEvents, logger)
	return &NotificationEventConsumer{
		consumer: consumer,
		notifier: notifier,
		logger:   logger,
	}
}

// Start begins consuming rental events. Blocks until the context is cancelled.
func (c *NotificationEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *NotificationEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *NotificationEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from rental topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case BookingCreated:
		return c.handleBookingCreated(ctx, cloudEvent)
	default:
		// Other lifecycle events carry no customer-facing notification yet.
		return nil
	}
}

func (c *NotificationEventConsumer) handleBookingCreated(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt BookingCreatedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse BookingCreatedEvent data", zap.Error(err))
		return nil // Don't retry malformed data
	}

	summary := notification.BookingSummary{
		ConfirmationNumber: evt.ConfirmationNumber,
		CustomerName:       evt.CustomerName,
		StartDate:          evt.StartDate,
		EndDate:            evt.EndDate,
		PickupTime:         evt.PickupTime,
		TotalCents:         evt.TotalCents,
		Currency:           evt.Currency,
	}

	if err := c.notifier.SendBookingConfirmation(ctx, evt.CustomerEmail, summary); err != nil {
		// Best-effort: log and drop, never redeliver forever.
		c.logger.Error("failed to send booking confirmation",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
	}
	return nil
}
