package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const EventLowStock = "LowStock"

// Deduper is satisfied by cache.RedisClient.
type Deduper interface {
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type Event struct {
	EventType string         `json:"event_type"`
	Payload   LowStockSignal `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

// KafkaNotifier publishes LowStock events keyed by inventory id in the background. When a
// deduper is set, one (branch, drug) pair raises at most one event per window.
type KafkaNotifier struct {
	producer broker.Producer
	dedupe   Deduper
	window   time.Duration
	timeout  time.Duration
	logger   logger.ZapLogger
	inflight sync.WaitGroup
}

func NewKafkaNotifier(producer broker.Producer, dedupe Deduper, window time.Duration, log logger.ZapLogger) *KafkaNotifier {
	return &KafkaNotifier{
		producer: producer,
		dedupe:   dedupe,
		window:   window,
		timeout:  5 * time.Second,
		logger:   log,
	}
}

// NotifyLowStock returns at once. The event outlives the caller's context and is bounded by
// the publish timeout instead.
func (n *KafkaNotifier) NotifyLowStock(ctx context.Context, s LowStockSignal) {
	ctx = context.WithoutCancel(ctx)
	n.inflight.Add(1)
	go func() {
		defer n.inflight.Done()
		n.publish(ctx, s)
	}()
}

// Close waits for events already handed to the notifier. Call it before closing the producer.
func (n *KafkaNotifier) Close() {
	n.inflight.Wait()
}

func (n *KafkaNotifier) publish(ctx context.Context, s LowStockSignal) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	log := n.logger.With(zap.String("branch_id", s.BranchID), zap.String("drug_id", s.DrugID))

	if n.dedupe != nil && n.window > 0 {
		key := fmt.Sprintf("alert:low-stock:%s:%s", s.BranchID, s.DrugID)
		first, err := n.dedupe.MarkOnce(ctx, key, n.window)
		if err != nil {
			log.Warn("alert dedupe unavailable, publishing anyway", zap.Error(err))
		} else if !first {
			log.Debug("low stock alert suppressed")
			return
		}
	}

	value, err := json.Marshal(Event{EventType: EventLowStock, Payload: s, Timestamp: time.Now().UTC()})
	if err != nil {
		log.Error("failed to marshal low stock event", zap.Error(err))
		return
	}

	err = n.producer.WriteMessage(ctx, kafka.Message{
		Key:   []byte(s.InventoryID),
		Value: value,
	})
	if err != nil {
		log.Error("failed to publish low stock event", zap.Error(err))
		return
	}
	log.Info("low stock event published", zap.Int64("quantity", s.Quantity))
}
