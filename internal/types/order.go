package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/quantra-lab/quantra/pkg/errors"
)

type Side string

type OrderType string

type OrderStatus string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

const (
	// OrderStatusPending is the initial state of a freshly created order,
	// before the submission attempt.
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusSubmitted means the order reached the venue and is resting.
	OrderStatusSubmitted OrderStatus = "SUBMITTED"
	// OrderStatusFilled is terminal. FillPrice and Fee are set.
	OrderStatusFilled OrderStatus = "FILLED"
	// OrderStatusCancelled is terminal.
	OrderStatusCancelled OrderStatus = "CANCELLED"
	// OrderStatusRejected is terminal and never enters PENDING.
	OrderStatusRejected OrderStatus = "REJECTED"
)

// Order is a mutable record created from a validated non-HOLD signal. The ID is
// assigned at creation and never changes or gets reused; Symbol, Side,
// OrderType, Quantity and LimitPrice are immutable after creation. Only Status,
// FillPrice and Fee change over the order's lifetime.
type Order struct {
	ID        string    `yaml:"id" json:"id" validate:"required,uuid"`
	Symbol    string    `yaml:"symbol" json:"symbol" validate:"required"`
	Side      Side      `yaml:"side" json:"side" validate:"required,oneof=BUY SELL"`
	OrderType OrderType `yaml:"order_type" json:"order_type" validate:"required,oneof=MARKET LIMIT"`
	Quantity  float64   `yaml:"quantity" json:"quantity" validate:"required,gt=0"`
	// LimitPrice is present only for LIMIT orders.
	LimitPrice optional.Option[float64] `yaml:"limit_price" json:"limit_price"`
	Status     OrderStatus              `yaml:"status" json:"status" validate:"required,oneof=PENDING SUBMITTED FILLED CANCELLED REJECTED"`
	// FillPrice is set exactly when Status is FILLED.
	FillPrice optional.Option[float64] `yaml:"fill_price" json:"fill_price"`
	// Fee is the commission charged on the fill, proportional to notional value.
	Fee       float64   `yaml:"fee" json:"fee" validate:"gte=0"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at" validate:"required"`
	// SourceStrategy is the provenance tag copied from the signal.
	SourceStrategy string `yaml:"source_strategy" json:"source_strategy" validate:"required"`
}

// Validate validates the Order struct.
func (o *Order) Validate() error {
	validate := validator.New()
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, "invalid order", err)
	}

	return nil
}

// IsTerminal reports whether the order can no longer transition.
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case OrderStatusFilled, OrderStatusCancelled, OrderStatusRejected:
		return true
	default:
		return false
	}
}

// IsCancellable reports whether a cancel request may succeed. Only resting
// SUBMITTED orders are cancellable.
func (o *Order) IsCancellable() bool {
	return o.Status == OrderStatusSubmitted
}
