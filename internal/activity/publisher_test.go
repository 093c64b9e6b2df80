package activity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tejash97/klassico-style-haven/internal/catalog"
	"github.com/Tejash97/klassico-style-haven/internal/domain/cart"
	"github.com/Tejash97/klassico-style-haven/internal/infrastructure/storage"
)

type publishCall struct {
	Key   string
	Event CartActivity
}

type mockProducer struct {
	mu    sync.Mutex
	calls []publishCall
	err   error
}

func (m *mockProducer) Publish(ctx context.Context, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, publishCall{Key: key, Event: value.(CartActivity)})
	return m.err
}

func (m *mockProducer) Calls() []publishCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]publishCall, len(m.calls))
	copy(out, m.calls)
	return out
}

func TestPublisher_ObserveQueuesEvent(t *testing.T) {
	p := NewPublisher(&mockProducer{}, "session-1", 4, zerolog.Nop())
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	p.Observe(cart.Change{
		Type:      cart.EventItemAdded,
		ProductID: "p1",
		Quantity:  2,
		Count:     3,
		Total:     decimal.RequireFromString("5727.3"),
		At:        at,
	})

	require.Len(t, p.events, 1)
	event := <-p.events
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "session-1", event.SessionID)
	assert.Equal(t, cart.EventItemAdded, event.Kind)
	assert.Equal(t, "p1", event.ProductID)
	assert.Equal(t, 2, event.Quantity)
	assert.Equal(t, 3, event.Count)
	assert.Equal(t, "5727.3", event.Total.String())
	assert.Equal(t, at, event.At)
}

func TestPublisher_DropsWhenBufferFull(t *testing.T) {
	p := NewPublisher(&mockProducer{}, "s", 1, zerolog.Nop())

	p.Observe(cart.Change{Type: cart.EventItemAdded})
	p.Observe(cart.Change{Type: cart.EventCartCleared})

	require.Len(t, p.events, 1)
	assert.Equal(t, cart.EventItemAdded, (<-p.events).Kind)
}

func TestPublisher_RunPublishesAndFlushes(t *testing.T) {
	producer := &mockProducer{}
	p := NewPublisher(producer, "session-1", 8, zerolog.Nop())
	store := cart.NewStore(storage.NewMemoryStorage())
	store.Subscribe(p.Observe)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx, time.Second)
		close(done)
	}()

	require.NoError(t, store.Add(catalog.Product{ID: "p1", Name: "Tee", Price: decimal.NewFromInt(499)}, 1))
	store.Clear()

	require.Eventually(t, func() bool { return len(producer.Calls()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	calls := producer.Calls()
	assert.Equal(t, "session-1", calls[0].Key)
	assert.Equal(t, cart.EventItemAdded, calls[0].Event.Kind)
	assert.Equal(t, cart.EventCartCleared, calls[1].Event.Kind)
	assert.NotEqual(t, calls[0].Event.ID, calls[1].Event.ID)
}

func TestPublisher_FlushOnStop(t *testing.T) {
	producer := &mockProducer{}
	p := NewPublisher(producer, "s", 8, zerolog.Nop())
	p.Observe(cart.Change{Type: cart.EventItemAdded})
	p.Observe(cart.Change{Type: cart.EventItemRemoved})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Run(ctx, time.Second)

	assert.Len(t, producer.Calls(), 2)
}

func TestPublisher_ProducerErrorIsNotFatal(t *testing.T) {
	producer := &mockProducer{err: errors.New("broker down")}
	p := NewPublisher(producer, "s", 8, zerolog.Nop())
	p.Observe(cart.Change{Type: cart.EventItemAdded})
	p.Observe(cart.Change{Type: cart.EventCartCleared})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Run(ctx, time.Second)

	assert.Len(t, producer.Calls(), 2)
}
