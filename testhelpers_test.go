//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/driveport/service-rental/internal/application"
	bookingDomain "github.com/driveport/service-rental/internal/domain/booking"
	"github.com/driveport/service-rental/internal/kafka"
	"github.com/driveport/service-rental/internal/notification"
	"github.com/driveport/service-rental/internal/repository"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const testTopic = "rental.events"

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// rentalStack holds wired-up rental service components.
type rentalStack struct {
	Bookings        *application.BookingService
	Fleet           *application.FleetService
	BookingRepo     *repository.GormBookingRepository
	Notifier        *recordingNotifier
	CleanupProducer func()
}

// recordingNotifier captures confirmation sends for assertions.
type recordingNotifier struct {
	mu    sync.Mutex
	sends []notification.BookingSummary
}

func (n *recordingNotifier) SendBookingConfirmation(ctx context.Context, email string, summary notification.BookingSummary) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sends = append(n.sends, summary)
	return nil
}

func (n *recordingNotifier) sent() []notification.BookingSummary {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.BookingSummary(nil), n.sends...)
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_rental",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_rental sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	applySchema(t, db)

	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, testTopic)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// applySchema migrates the models and installs the overlap exclusion constraint
// the SQL migrations create in production.
func applySchema(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error)
	require.NoError(t, db.AutoMigrate(
		&repository.HubModel{},
		&repository.CustomerModel{},
		&repository.StaffModel{},
		&repository.CarModel{},
		&repository.BookingModel{},
	))
	require.NoError(t, db.Exec(`
		ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap EXCLUDE USING gist (
			car_id WITH =,
			tstzrange(start_date, end_date, '[]') WITH &&
		) WHERE (status IN ('CONFIRMED', 'ACTIVE'))`).Error)
}

// setupRentalStack wires up the full rental service stack.
func setupRentalStack(t *testing.T, db *gorm.DB, brokers []string) *rentalStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookingRepo := repository.NewGormBookingRepository(db)
	carRepo := repository.NewGormCarRepository(db)
	hubRepo := repository.NewGormHubRepository(db)
	customerRepo := repository.NewGormCustomerRepository(db)
	staffRepo := repository.NewGormStaffRepository(db)

	producer := kafka.NewProducer(brokers, logger)
	notifier := &recordingNotifier{}

	bookingSvc := application.NewBookingService(
		bookingRepo,
		carRepo,
		customerRepo,
		bookingDomain.NewStandardRateCalculator(),
		notifier,
		producer,
		logger,
	)
	fleetSvc := application.NewFleetService(carRepo, hubRepo, customerRepo, staffRepo, bookingRepo, repository.NewTxRunner(db), logger)

	return &rentalStack{
		Bookings:        bookingSvc,
		Fleet:           fleetSvc,
		BookingRepo:     bookingRepo,
		Notifier:        notifier,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedFleet inserts a hub, a car and a customer and returns their IDs.
func seedFleet(t *testing.T, db *gorm.DB) (hubID, carID, customerID uuid.UUID) {
	t.Helper()
	now := time.Now().UTC()

	hubID = uuid.New()
	require.NoError(t, db.Create(&repository.HubModel{
		ID:       hubID,
		Name:     "Koramangala",
		CityID:   uuid.New(),
		CityName: "Bengaluru",
	}).Error)

	carID = uuid.New()
	require.NoError(t, db.Create(&repository.CarModel{
		ID:             carID,
		Name:           "Swift Dzire",
		NumberPlate:    fmt.Sprintf("KA-01-%s", uuid.New().String()[:8]),
		HubID:          hubID,
		CarTypeName:    "Sedan",
		DailyRateCents: 2500_00,
		Available:      true,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}).Error)

	customerID = uuid.New()
	require.NoError(t, db.Create(&repository.CustomerModel{
		ID:        customerID,
		FirstName: "Asha",
		LastName:  "Rao",
		Email:     fmt.Sprintf("asha+%s@example.com", uuid.New().String()[:8]),
		Phone:     "+91-9000000000",
	}).Error)

	return hubID, carID, customerID
}

// newConfirmedBooking builds a CONFIRMED booking aggregate for direct
// repository writes.
func newConfirmedBooking(t *testing.T, carID, customerID uuid.UUID, start, end string) *bookingDomain.Booking {
	t.Helper()
	w := mustWindow(t, start, end)
	bk, err := bookingDomain.NewBooking(carID, customerID, w, "", 100_00, "INR")
	require.NoError(t, err)
	return bk
}

// mustWindow parses two DateOnly strings into a validated window.
func mustWindow(t *testing.T, start, end string) bookingDomain.Window {
	t.Helper()
	startDate, err := time.Parse(time.DateOnly, start)
	require.NoError(t, err)
	endDate, err := time.Parse(time.DateOnly, end)
	require.NoError(t, err)
	w, err := bookingDomain.NewWindow(startDate, endDate)
	require.NoError(t, err)
	return w
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
