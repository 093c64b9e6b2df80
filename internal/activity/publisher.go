package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Tejash97/klassico-style-haven/internal/domain/cart"
)

// DefaultBufferSize is how many events may wait for the producer before new ones are dropped
const DefaultBufferSize = 256

// CartActivity is the event published for every cart mutation
type CartActivity struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Kind      string          `json:"kind"`
	ProductID string          `json:"product_id,omitempty"`
	Quantity  int             `json:"quantity"`
	Count     int             `json:"count"`
	Total     decimal.Decimal `json:"total"`
	At        time.Time       `json:"at"`
}

// Producer is the message sink, satisfied by kafka.Producer
type Producer interface {
	Publish(ctx context.Context, key string, value any) error
}

// Publisher forwards cart changes to a Producer without blocking the cart
type Publisher struct {
	producer  Producer
	sessionID string
	events    chan CartActivity
	logger    zerolog.Logger
}

func NewPublisher(producer Producer, sessionID string, bufferSize int, logger zerolog.Logger) *Publisher {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Publisher{
		producer:  producer,
		sessionID: sessionID,
		events:    make(chan CartActivity, bufferSize),
		logger:    logger.With().Str("component", "activity").Logger(),
	}
}

// Observe is a cart.Observer
func (p *Publisher) Observe(change cart.Change) {
	event := CartActivity{
		ID:        uuid.New().String(),
		SessionID: p.sessionID,
		Kind:      change.Type,
		ProductID: change.ProductID,
		Quantity:  change.Quantity,
		Count:     change.Count,
		Total:     change.Total,
		At:        change.At,
	}

	select {
	case p.events <- event:
	default:
		p.logger.Warn().Str("kind", event.Kind).Msg("Activity buffer full, dropping event")
	}
}

// Run publishes queued events until ctx is cancelled, then flushes what is left
// using flushTimeout as the deadline.
func (p *Publisher) Run(ctx context.Context, flushTimeout time.Duration) {
	p.logger.Info().Msg("Activity publisher started")
	for {
		select {
		case event := <-p.events:
			p.publish(ctx, event)
		case <-ctx.Done():
			p.flush(flushTimeout)
			p.logger.Info().Msg("Activity publisher stopped")
			return
		}
	}
}

func (p *Publisher) flush(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for {
		select {
		case event := <-p.events:
			p.publish(ctx, event)
		default:
			return
		}
	}
}

func (p *Publisher) publish(ctx context.Context, event CartActivity) {
	if err := p.producer.Publish(ctx, p.sessionID, event); err != nil {
		p.logger.Error().Err(err).Str("kind", event.Kind).Str("event_id", event.ID).Msg("Failed to publish cart activity")
		return
	}
	p.logger.Debug().Str("kind", event.Kind).Str("event_id", event.ID).Msg("Published cart activity")
}
