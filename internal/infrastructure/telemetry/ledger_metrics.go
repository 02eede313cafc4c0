package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	AttrOperation  = attribute.Key("operation")
	AttrOutcome    = attribute.Key("outcome")
	AttrChangeType = attribute.Key("change_type")
	AttrKind       = attribute.Key("kind")
)

// LedgerMetrics counts ledger activity. A nil *LedgerMetrics is valid and
// records nothing.
type LedgerMetrics struct {
	transitions metric.Int64Counter
	movements   metric.Int64Counter
	payments    metric.Int64Counter
	numbers     metric.Int64Counter
}

// NewLedgerMetrics creates the instruments on meter, or on the global meter when nil
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(TracerName)
	}
	m := &LedgerMetrics{}
	var err error
	if m.transitions, err = meter.Int64Counter("retailcore_order_transitions_total",
		metric.WithDescription("Sales order state transitions by outcome"),
		metric.WithUnit("{transitions}")); err != nil {
		return nil, err
	}
	if m.movements, err = meter.Int64Counter("retailcore_stock_movements_total",
		metric.WithDescription("Stock movement rows appended"),
		metric.WithUnit("{movements}")); err != nil {
		return nil, err
	}
	if m.payments, err = meter.Int64Counter("retailcore_payments_total",
		metric.WithDescription("Payments and refunds recorded"),
		metric.WithUnit("{payments}")); err != nil {
		return nil, err
	}
	if m.numbers, err = meter.Int64Counter("retailcore_sequence_numbers_total",
		metric.WithDescription("Document numbers issued"),
		metric.WithUnit("{numbers}")); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordTransition counts one transition attempt
func (m *LedgerMetrics) RecordTransition(ctx context.Context, operation string, err error) {
	if m == nil {
		return
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(AttrOperation.String(operation), AttrOutcome.String(outcome(err))))
}

// RecordMovements counts appended movement rows
func (m *LedgerMetrics) RecordMovements(ctx context.Context, changeType string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.movements.Add(ctx, int64(n), metric.WithAttributes(AttrChangeType.String(changeType)))
}

// RecordPayment counts one payment or refund attempt
func (m *LedgerMetrics) RecordPayment(ctx context.Context, kind string, err error) {
	if m == nil {
		return
	}
	m.payments.Add(ctx, 1, metric.WithAttributes(AttrKind.String(kind), AttrOutcome.String(outcome(err))))
}

// RecordNumber counts one issued document number
func (m *LedgerMetrics) RecordNumber(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.numbers.Add(ctx, 1, metric.WithAttributes(AttrKind.String(kind)))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
