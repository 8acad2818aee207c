package listener

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/receiving/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingUseCase struct {
	inputs     []*dto.ReceiveGoodsInput
	principals []auth.Principal
}

func (u *recordingUseCase) ReceiveGoods(ctx context.Context, in *dto.ReceiveGoodsInput) (*dto.ReceiptResult, error) {
	p, _ := auth.FromContext(ctx)
	u.inputs = append(u.inputs, in)
	u.principals = append(u.principals, p)
	return &dto.ReceiptResult{}, nil
}

func (u *recordingUseCase) SyncPurchaseOrder(context.Context, *dto.SyncPurchaseOrderInput) (*model.PurchaseOrder, error) {
	return nil, nil
}

func (u *recordingUseCase) GetPurchaseOrder(context.Context, string, string) (*model.PurchaseOrder, error) {
	return nil, nil
}

func TestHandle_GoodsReceived(t *testing.T) {
	uc := &recordingUseCase{}
	l := NewReceiptListener(nil, uc, logger.Wrap(zaptest.NewLogger(t)))

	l.Handle(context.Background(), []byte(`{
		"event_id": "evt-1",
		"event_type": "GoodsReceived",
		"payload": {
			"organization_id": "org-1",
			"purchase_order_id": "po-1",
			"received_by": "clerk-1",
			"lines": [{"line_id": "line-1", "quantity": 4, "batch_number": "LOT-9", "expiry_date": "2028-01-31T00:00:00Z"}]
		},
		"timestamp": "2026-10-01T08:00:00Z"
	}`))

	require.Len(t, uc.inputs, 1)
	in := uc.inputs[0]
	assert.Equal(t, "po-1", in.PurchaseOrderID)
	assert.Equal(t, "clerk-1", in.ActorID)
	require.Len(t, in.Lines, 1)
	assert.Equal(t, int64(4), in.Lines[0].Quantity)
	assert.Equal(t, "LOT-9", in.Lines[0].BatchNumber)
	assert.Equal(t, 2028, in.Lines[0].ExpiryDate.Year())

	assert.Equal(t, "org-1", uc.principals[0].OrganizationID)
	assert.Equal(t, auth.RoleOwner, uc.principals[0].Role)
}

func TestHandle_IgnoresOtherEvents(t *testing.T) {
	uc := &recordingUseCase{}
	l := NewReceiptListener(nil, uc, logger.Wrap(zaptest.NewLogger(t)))

	l.Handle(context.Background(), []byte(`{"event_type": "PurchaseOrderApproved", "payload": {}}`))
	l.Handle(context.Background(), []byte(`not json`))

	assert.Empty(t, uc.inputs)
}
