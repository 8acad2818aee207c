package alert

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeProducer struct {
	mu    sync.Mutex
	msgs  []kafka.Message
	err   error
	block chan struct{}
}

func (p *fakeProducer) WriteMessage(ctx context.Context, msg kafka.Message) error {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *fakeProducer) Close() error { return nil }

func (p *fakeProducer) sent() []kafka.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]kafka.Message(nil), p.msgs...)
}

type fakeDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (d *fakeDeduper) MarkOnce(_ context.Context, key string, _ time.Duration) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}

func signal() LowStockSignal {
	return LowStockSignal{BranchID: "b1", DrugID: "d1", InventoryID: "inv1", Quantity: 3, ReorderPoint: 5}
}

func TestKafkaNotifier_PublishesOncePerWindow(t *testing.T) {
	producer := &fakeProducer{}
	n := NewKafkaNotifier(producer, &fakeDeduper{seen: map[string]bool{}}, time.Minute, logger.Wrap(zaptest.NewLogger(t)))

	n.NotifyLowStock(context.Background(), signal())
	n.NotifyLowStock(context.Background(), signal())
	n.Close()

	msgs := producer.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, "inv1", string(msgs[0].Key))

	var evt Event
	require.NoError(t, json.Unmarshal(msgs[0].Value, &evt))
	assert.Equal(t, EventLowStock, evt.EventType)
	assert.Equal(t, int64(3), evt.Payload.Quantity)
}

func TestKafkaNotifier_DedupeFailureStillPublishes(t *testing.T) {
	producer := &fakeProducer{}
	n := NewKafkaNotifier(producer, &fakeDeduper{err: errors.New("redis down")}, time.Minute, logger.Wrap(zaptest.NewLogger(t)))

	n.NotifyLowStock(context.Background(), signal())
	n.Close()

	assert.Len(t, producer.sent(), 1)
}

func TestKafkaNotifier_ProducerErrorIsSwallowed(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker unavailable")}
	n := NewKafkaNotifier(producer, nil, 0, logger.Wrap(zaptest.NewLogger(t)))

	assert.NotPanics(t, func() {
		n.NotifyLowStock(context.Background(), signal())
		n.Close()
	})
	assert.Empty(t, producer.sent())
}

func TestKafkaNotifier_DoesNotWaitForBroker(t *testing.T) {
	producer := &fakeProducer{block: make(chan struct{})}
	n := NewKafkaNotifier(producer, nil, 0, logger.Wrap(zaptest.NewLogger(t)))

	returned := make(chan struct{})
	go func() {
		n.NotifyLowStock(context.Background(), signal())
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("NotifyLowStock blocked on the producer")
	}
	assert.Empty(t, producer.sent())

	close(producer.block)
	n.Close()
	assert.Len(t, producer.sent(), 1)
}

func TestKafkaNotifier_OutlivesCallerContext(t *testing.T) {
	producer := &fakeProducer{}
	n := NewKafkaNotifier(producer, nil, 0, logger.Wrap(zaptest.NewLogger(t)))
	ctx, cancel := context.WithCancel(context.Background())

	n.NotifyLowStock(ctx, signal())
	cancel()
	n.Close()

	assert.Len(t, producer.sent(), 1)
}
