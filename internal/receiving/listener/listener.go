package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/receiving"
	"github.com/fekuna/omnipos-inventory-service/internal/receiving/dto"
	"go.uber.org/zap"
)

const EventGoodsReceived = "GoodsReceived"

type ReceiptListener struct {
	consumer broker.Consumer
	uc       receiving.UseCase
	logger   logger.ZapLogger
}

func NewReceiptListener(consumer broker.Consumer, uc receiving.UseCase, logger logger.ZapLogger) *ReceiptListener {
	return &ReceiptListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *ReceiptListener) Start(ctx context.Context) {
	l.logger.Info("Starting goods receipt Kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping goods receipt Kafka listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.Handle(ctx, msg.Value)
		}
	}
}

type GoodsReceivedEvent struct {
	EventID   string               `json:"event_id"`
	EventType string               `json:"event_type"`
	Payload   GoodsReceivedPayload `json:"payload"`
	Timestamp time.Time            `json:"timestamp"`
}

type GoodsReceivedPayload struct {
	OrganizationID  string                 `json:"organization_id"`
	PurchaseOrderID string                 `json:"purchase_order_id"`
	ReceivedBy      string                 `json:"received_by"`
	Lines           []dto.ReceiveLineInput `json:"lines"`
}

// Handle processes one raw event. Failures are logged and the message is dropped; the purchasing
// service re-emits receipts that were not acknowledged on the order.
func (l *ReceiptListener) Handle(ctx context.Context, value []byte) {
	var event GoodsReceivedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}
	if event.EventType != EventGoodsReceived {
		return
	}

	p := event.Payload
	l.logger.Info("Processing GoodsReceived event",
		zap.String("event_id", event.EventID),
		zap.String("purchase_order_id", p.PurchaseOrderID),
	)

	// the event is trusted as coming from inside the organization
	ctx = auth.WithPrincipal(ctx, auth.Principal{
		OrganizationID: p.OrganizationID,
		UserID:         p.ReceivedBy,
		Role:           auth.RoleOwner,
	})
	_, err := l.uc.ReceiveGoods(ctx, &dto.ReceiveGoodsInput{
		OrganizationID:  p.OrganizationID,
		PurchaseOrderID: p.PurchaseOrderID,
		Lines:           p.Lines,
		ActorID:         p.ReceivedBy,
	})
	if err != nil {
		l.logger.Error("Failed to receive goods",
			zap.String("event_id", event.EventID),
			zap.String("purchase_order_id", p.PurchaseOrderID),
			zap.Error(err),
		)
	}
}
