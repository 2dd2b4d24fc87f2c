package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"rental-payment-service/config"
	"rental-payment-service/internal/core/domain"
	"rental-payment-service/internal/core/ports"
	"rental-payment-service/internal/metrics"
	"rental-payment-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const dedupTTL = 24 * time.Hour

// messageReader is the part of kafka.Reader the consumer needs.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// RentalEvent is the rental service's event payload for rental lifecycle
// changes. Price comes across as a decimal number.
type RentalEvent struct {
	EventID  string      `json:"event_id"`
	RentalID string      `json:"rental_id"`
	UserID   string      `json:"user_id"`
	KosID    string      `json:"kos_id"`
	OwnerID  string      `json:"kos_owner_id"`
	Price    json.Number `json:"price"`
	Status   string      `json:"status"`
}

// Consumer reads rental events and charges the first month's rent when a
// rental becomes payable.
type Consumer struct {
	reader     messageReader
	paymentSvc ports.PaymentService
	dedup      ports.EventDeduplicator
	log        zerolog.Logger
}

// NewConsumer creates a Kafka-backed rental event consumer.
func NewConsumer(cfg config.KafkaConfig, paymentSvc ports.PaymentService, dedup ports.EventDeduplicator, log zerolog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	return newConsumer(reader, paymentSvc, dedup, log)
}

func newConsumer(reader messageReader, paymentSvc ports.PaymentService, dedup ports.EventDeduplicator, log zerolog.Logger) *Consumer {
	return &Consumer{
		reader:     reader,
		paymentSvc: paymentSvc,
		dedup:      dedup,
		log:        log.With().Str("component", "rental_event_consumer").Logger(),
	}
}

// Run consumes messages until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	c.log.Info().Msg("rental event consumer started")
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, kafka.ErrGroupClosed) {
				c.log.Info().Msg("rental event consumer stopped")
				return
			}
			c.log.Error().Err(err).Msg("failed to read kafka message")
			continue
		}
		c.handleMessage(ctx, msg)
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) {
	var event RentalEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.log.Error().Err(err).Str("key", string(msg.Key)).Msg("failed to unmarshal rental event")
		metrics.EventsConsumed.WithLabelValues("invalid").Inc()
		return
	}

	rentalID, err := uuid.Parse(event.RentalID)
	if err != nil {
		c.log.Error().Str("rental_id", event.RentalID).Msg("rental event carries invalid rental_id")
		metrics.EventsConsumed.WithLabelValues("invalid").Inc()
		return
	}
	tenantID, err := uuid.Parse(event.UserID)
	if err != nil {
		c.log.Error().Str("user_id", event.UserID).Msg("rental event carries invalid user_id")
		metrics.EventsConsumed.WithLabelValues("invalid").Inc()
		return
	}
	amount, err := domain.ParseAmount(event.Price.String())
	if err != nil {
		c.log.Error().Str("price", event.Price.String()).Msg("rental event carries invalid price")
		metrics.EventsConsumed.WithLabelValues("invalid").Inc()
		return
	}

	// Only payable rentals trigger a charge; other lifecycle events are
	// not ours to act on.
	if !payableStatus(event.Status) {
		c.log.Debug().
			Str("rental_id", event.RentalID).
			Str("status", event.Status).
			Msg("skipping rental event in non-payable status")
		return
	}

	dedupKey := event.EventID
	if dedupKey == "" {
		dedupKey = event.RentalID
	}
	isNew, dedupErr := c.dedup.CheckAndSet(ctx, dedupKey, dedupTTL)
	if dedupErr != nil {
		c.log.Warn().Err(dedupErr).Str("key", dedupKey).Msg("event dedup check failed, processing anyway")
	} else if !isNew {
		c.log.Info().Str("key", dedupKey).Msg("skipping already processed rental event")
		metrics.EventsConsumed.WithLabelValues("duplicate").Inc()
		return
	}
	marked := dedupErr == nil

	txn, err := c.paymentSvc.PayForRental(ctx, tenantID, rentalID, amount)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.HTTPStatus < 500 {
			// Business rejection: insufficient funds, mismatched price,
			// non-payable rental. Redelivery will not change the outcome.
			c.log.Warn().
				Str("rental_id", event.RentalID).
				Str("tenant_id", event.UserID).
				Str("code", appErr.Code).
				Msg("rental payment rejected")
			metrics.EventsConsumed.WithLabelValues("rejected").Inc()
			return
		}
		// Infrastructure failure. Release the dedup mark so a redelivery
		// can retry the payment once the dependency recovers.
		if marked {
			if clearErr := c.dedup.Clear(ctx, dedupKey); clearErr != nil {
				c.log.Warn().Err(clearErr).Str("key", dedupKey).Msg("failed to release dedup key after payment failure")
			}
		}
		c.log.Error().Err(err).
			Str("rental_id", event.RentalID).
			Str("tenant_id", event.UserID).
			Msg("rental payment failed")
		metrics.EventsConsumed.WithLabelValues("failed").Inc()
		return
	}

	c.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("rental_id", event.RentalID).
		Str("tenant_id", event.UserID).
		Int64("amount", amount).
		Msg("rental event payment processed")
	metrics.EventsConsumed.WithLabelValues("processed").Inc()
}

func payableStatus(status string) bool {
	switch strings.ToUpper(status) {
	case "APPROVED", "ACTIVE":
		return true
	}
	return false
}

// Close shuts down the underlying reader.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("closing kafka reader: %w", err)
	}
	return nil
}
