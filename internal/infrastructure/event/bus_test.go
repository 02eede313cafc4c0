package event

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/erp/retailcore/internal/domain/trade"
	"github.com/erp/retailcore/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type orderEvent struct {
	shared.BaseDomainEvent
}

func newOrderEvent(eventType string) *orderEvent {
	return &orderEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, trade.AggregateTypeSalesOrder, uuid.New(), uuid.New()),
	}
}

type panickingHandler struct{}

func (panickingHandler) EventTypes() []string { return []string{trade.EventTypeSalesOrderCompleted} }

func (panickingHandler) Handle(context.Context, shared.DomainEvent) error {
	panic("boom")
}

func TestInMemoryEventBus_DeliversInPublishOrder(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := testutil.NewMockEventHandler(trade.EventTypeSalesOrderCompleted, trade.EventTypeSalesOrderReopened)
	bus.Subscribe(handler)

	completed := newOrderEvent(trade.EventTypeSalesOrderCompleted)
	reopened := newOrderEvent(trade.EventTypeSalesOrderReopened)
	cancelled := newOrderEvent(trade.EventTypeSalesOrderCancelled)
	require.NoError(t, bus.Publish(context.Background(), completed, cancelled, reopened))

	handled := handler.Handled()
	require.Len(t, handled, 2)
	assert.Equal(t, completed, handled[0])
	assert.Equal(t, reopened, handled[1])
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := testutil.NewMockEventHandler(trade.EventTypeSalesOrderCompleted)
	bus.Subscribe(handler, trade.EventTypeSalesOrderCancelled)

	require.NoError(t, bus.Publish(context.Background(),
		newOrderEvent(trade.EventTypeSalesOrderCompleted),
		newOrderEvent(trade.EventTypeSalesOrderCancelled)))

	require.Len(t, handler.Handled(), 1)
	assert.Equal(t, trade.EventTypeSalesOrderCancelled, handler.Handled()[0].EventType())
}

func TestInMemoryEventBus_WildcardSeesEverything(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	all := testutil.NewMockEventHandler()
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newOrderEvent(trade.EventTypeSalesOrderInTransit),
		newOrderEvent("PaymentRecorded")))
	assert.Len(t, all.Handled(), 2)
}

func TestInMemoryEventBus_FailingHandlersDoNotStopDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := testutil.NewMockEventHandler(trade.EventTypeSalesOrderCompleted)
	failing.SetError(errors.New("summary store down"))
	after := testutil.NewMockEventHandler(trade.EventTypeSalesOrderCompleted)

	bus.Subscribe(failing)
	bus.Subscribe(panickingHandler{})
	bus.Subscribe(after)

	err := bus.Publish(context.Background(), newOrderEvent(trade.EventTypeSalesOrderCompleted))
	require.NoError(t, err)
	assert.Len(t, failing.Handled(), 1)
	assert.Len(t, after.Handled(), 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := testutil.NewMockEventHandler(trade.EventTypeSalesOrderCompleted)
	bus.Subscribe(handler)

	_ = bus.Publish(context.Background(), newOrderEvent(trade.EventTypeSalesOrderCompleted))
	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), newOrderEvent(trade.EventTypeSalesOrderCompleted))

	assert.Len(t, handler.Handled(), 1)
}
