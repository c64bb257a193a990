package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when metrics are constructed without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// Metric attribute keys
var (
	AttrBuyerClass = attribute.Key("buyer_class")
	AttrCurrency   = attribute.Key("currency")
	AttrErrorCode  = attribute.Key("error_code")
	AttrOutcome    = attribute.Key("outcome")
)

// CheckoutMetrics records checkout business metrics
type CheckoutMetrics struct {
	ordersPlaced     *Counter
	orderAmountMinor *Counter
	unitsSold        *Counter
	rejected         *Counter
	duration         *Histogram
}

// NewCheckoutMetrics registers the checkout instruments on meter
func NewCheckoutMetrics(meter metric.Meter) (*CheckoutMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &CheckoutMetrics{}
	var err error
	if m.ordersPlaced, err = NewCounter(meter, "storefront_orders_placed_total",
		"Total number of orders placed", "{orders}"); err != nil {
		return nil, err
	}
	if m.orderAmountMinor, err = NewCounter(meter, "storefront_order_amount_total",
		"Total order amount in minor currency units", "{minor_units}"); err != nil {
		return nil, err
	}
	if m.unitsSold, err = NewCounter(meter, "storefront_units_sold_total",
		"Total units sold across all order lines", "{units}"); err != nil {
		return nil, err
	}
	if m.rejected, err = NewCounter(meter, "storefront_checkout_rejected_total",
		"Checkouts rejected, by error code", "{checkouts}"); err != nil {
		return nil, err
	}
	if m.duration, err = NewHistogram(meter, "storefront_checkout_duration_seconds",
		"Checkout processing time", "s", 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordOrderPlaced records a committed order. The amount is converted to minor
// units (two decimal places) and rounded half away from zero.
func (m *CheckoutMetrics) RecordOrderPlaced(ctx context.Context, buyerClass, currency string, total decimal.Decimal, units int) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrBuyerClass.String(buyerClass), AttrCurrency.String(currency)}
	m.ordersPlaced.Inc(ctx, attrs...)
	m.orderAmountMinor.Add(ctx, total.Shift(2).Round(0).IntPart(), attrs...)
	m.unitsSold.Add(ctx, int64(units), attrs...)
}

// RecordRejected records a checkout that failed with the given error code.
func (m *CheckoutMetrics) RecordRejected(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.rejected.Inc(ctx, AttrErrorCode.String(code))
}

// RecordDuration records how long a checkout took and whether it succeeded.
func (m *CheckoutMetrics) RecordDuration(ctx context.Context, d time.Duration, success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.duration.RecordDuration(ctx, d, AttrOutcome.String(outcome))
}
