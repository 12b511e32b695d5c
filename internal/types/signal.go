package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/quantra-lab/quantra/pkg/errors"
)

type SignalAction string

const (
	// SignalActionBuy instructs the engine to open or increase a long exposure.
	SignalActionBuy SignalAction = "BUY"
	// SignalActionSell instructs the engine to open or increase a short exposure,
	// or reduce an existing long.
	SignalActionSell SignalAction = "SELL"
	// SignalActionHold carries no execution payload. The engine acknowledges it
	// without creating an order.
	SignalActionHold SignalAction = "HOLD"
)

// Signal is an immutable instruction describing a desired trade action. Signals
// are produced by the strategy layer and consumed by the execution engine; the
// engine trusts nothing beyond what Validate checks.
type Signal struct {
	Symbol    string       `yaml:"symbol" json:"symbol" validate:"required"`
	Action    SignalAction `yaml:"action" json:"action" validate:"required,oneof=BUY SELL HOLD"`
	Quantity  float64      `yaml:"quantity" json:"quantity" validate:"required_unless=Action HOLD"`
	OrderType OrderType    `yaml:"order_type" json:"order_type" validate:"required,oneof=MARKET LIMIT"`
	// Price is required for LIMIT orders. For MARKET orders it is an optional
	// reference price that, when present, becomes the simulated fill price.
	Price        optional.Option[float64] `yaml:"price" json:"price"`
	StrategyName string                   `yaml:"strategy_name" json:"strategy_name" validate:"required"`
}

// Validate checks the signal against the execution engine's admission rules:
// required fields, known action and order type, positive quantity for non-HOLD
// actions, and a positive price for LIMIT orders. HOLD signals pass regardless
// of quantity and price. Validate is a pure predicate over the signal.
func (s *Signal) Validate() error {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSignal, "invalid signal", err)
	}

	if s.Action == SignalActionHold {
		return nil
	}

	if s.Quantity <= 0 {
		return errors.Newf(errors.ErrCodeInvalidSignal, "signal quantity must be positive, got %v", s.Quantity)
	}

	if s.OrderType == OrderTypeLimit {
		if s.Price.IsNone() {
			return errors.New(errors.ErrCodeInvalidSignal, "limit order signal requires a price")
		}

		if price := s.Price.Unwrap(); price <= 0 {
			return errors.Newf(errors.ErrCodeInvalidSignal, "limit order price must be positive, got %v", price)
		}
	}

	return nil
}
