package event

import (
	"testing"

	"github.com/erp/retailcore/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_TypedThenWildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	wildcard := testutil.NewMockEventHandler()
	typed := testutil.NewMockEventHandler("SalesOrderCompleted")

	registry.Register(wildcard)
	registry.Register(typed, "SalesOrderCompleted", "SalesOrderReopened")

	handlers := registry.Handlers("SalesOrderCompleted")
	assert.Len(t, handlers, 2)
	assert.Same(t, typed, handlers[0])
	assert.Same(t, wildcard, handlers[1])

	assert.Len(t, registry.Handlers("InvoiceCreated"), 1)
	assert.Equal(t, 2, registry.Len())
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	first := testutil.NewMockEventHandler()
	second := testutil.NewMockEventHandler()
	all := testutil.NewMockEventHandler()

	registry.Register(first, "SalesOrderCompleted", "SalesOrderReopened")
	registry.Register(second, "SalesOrderCompleted")
	registry.Register(all)

	registry.Unregister(first)
	registry.Unregister(all)

	handlers := registry.Handlers("SalesOrderCompleted")
	assert.Len(t, handlers, 1)
	assert.Same(t, second, handlers[0])
	assert.Empty(t, registry.Handlers("SalesOrderReopened"))
	assert.Equal(t, 1, registry.Len())
}
