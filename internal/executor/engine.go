// Package executor implements the trade execution engine: it turns validated
// signals into orders, simulates their submission against a venue, and
// maintains the per-symbol position ledger with weighted-average entry prices
// and realized PnL.
package executor

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/quantra-lab/quantra/internal/executor/fees"
	"github.com/quantra-lab/quantra/internal/logger"
	"github.com/quantra-lab/quantra/internal/types"
	"github.com/quantra-lab/quantra/pkg/errors"
	"go.uber.org/zap"
)

// Config carries the engine's immutable execution parameters.
type Config struct {
	// FeeRate is the fraction of notional value charged per fill.
	FeeRate float64 `yaml:"fee_rate" json:"fee_rate" validate:"gte=0"`
	// SlippageTolerance bounds the random perturbation applied to MARKET
	// fills that have no signal price.
	SlippageTolerance float64 `yaml:"slippage_tolerance" json:"slippage_tolerance" validate:"gte=0"`
	// LimitFillProbability is the probability a LIMIT order fills per
	// submission attempt.
	LimitFillProbability float64 `yaml:"limit_fill_probability" json:"limit_fill_probability" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the reference execution parameters.
func DefaultConfig() Config {
	return Config{
		FeeRate:              0.001,
		SlippageTolerance:    0.002,
		LimitFillProbability: 0.5,
	}
}

// Recorder receives a copy of every order and fill for observability. Failures
// are logged and never affect the trade: the engine's in-memory ledger is the
// ledger of record.
type Recorder interface {
	RecordOrder(order types.Order) error
	RecordFill(trade types.Trade, position types.Position) error
	RecordOrderStatus(orderID string, status types.OrderStatus) error
}

// Engine is the trade execution engine. All operations against a single
// instance are observed in call order; the order table and position ledger are
// guarded by one lock, which also serves as the linearization point for
// cancel-versus-fill races.
type Engine struct {
	mu        sync.RWMutex
	config    Config
	oracle    FillOracle
	feeModel  fees.Model
	recorder  Recorder
	logger    *logger.Logger
	orders    map[string]*types.Order
	positions map[string]*types.Position
}

// NewEngine creates an engine. recorder may be nil to disable journaling.
func NewEngine(config Config, oracle FillOracle, feeModel fees.Model, recorder Recorder, log *logger.Logger) *Engine {
	return &Engine{
		config:    config,
		oracle:    oracle,
		feeModel:  feeModel,
		recorder:  recorder,
		logger:    log,
		orders:    make(map[string]*types.Order),
		positions: make(map[string]*types.Position),
	}
}

// ExecuteSignal validates the signal, creates and submits an order, and folds
// a resulting fill into the position ledger. Business-rule failures (invalid
// signals, HOLD acknowledgements) are returned as result values, never errors.
func (e *Engine) ExecuteSignal(signal types.Signal) types.ExecutionResult {
	if err := signal.Validate(); err != nil {
		e.logger.Warn("signal rejected",
			zap.String("symbol", signal.Symbol),
			zap.String("strategy", signal.StrategyName),
			zap.Error(err),
		)

		return types.ExecutionResult{
			OrderID: optional.None[string](),
			Status:  types.ExecutionStatusRejected,
			Reason:  err.Error(),
		}
	}

	if signal.Action == types.SignalActionHold {
		e.logger.Info("HOLD signal received, no trade action taken",
			zap.String("symbol", signal.Symbol),
			zap.String("strategy", signal.StrategyName),
		)

		return types.ExecutionResult{
			OrderID: optional.None[string](),
			Status:  types.ExecutionStatusHandled,
			Reason:  "HOLD signal, no trade executed",
		}
	}

	order := newOrderFromSignal(signal)

	e.mu.Lock()
	defer e.mu.Unlock()

	order.Status = types.OrderStatusSubmitted
	e.orders[order.ID] = order
	e.record(func() error { return e.recorder.RecordOrder(*order) })

	if !e.oracle.ShouldFill(*order) {
		e.logger.Info("order resting unfilled",
			zap.String("order_id", order.ID),
			zap.String("symbol", order.Symbol),
		)

		return types.ExecutionResult{
			OrderID: optional.Some(order.ID),
			Status:  types.ExecutionStatusSubmitted,
			Reason:  "limit order resting, not yet filled",
		}
	}

	fillPrice := e.oracle.FillPrice(*order, signal.Price)
	order.Status = types.OrderStatusFilled
	order.FillPrice = optional.Some(fillPrice)
	order.Fee = e.feeModel.Calculate(order.Quantity, fillPrice)

	realized, err := e.updateLedger(order)
	if err != nil {
		// Invariant violation: a FILLED order must carry a fill price. The
		// ledger is left untouched to avoid corrupting it.
		e.logger.Error("fill invariant violated, position ledger not updated",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)

		return types.ExecutionResult{
			OrderID: optional.Some(order.ID),
			Status:  types.ExecutionStatusFilled,
			Reason:  "filled, ledger update failed",
		}
	}

	e.record(func() error {
		trade := types.Trade{
			OrderID:      order.ID,
			Symbol:       order.Symbol,
			Side:         order.Side,
			Quantity:     order.Quantity,
			Price:        fillPrice,
			Fee:          order.Fee,
			PnL:          realized,
			ExecutedAt:   order.CreatedAt,
			StrategyName: order.SourceStrategy,
		}

		return e.recorder.RecordFill(trade, *e.positions[order.Symbol])
	})

	e.logger.Info("order filled",
		zap.String("order_id", order.ID),
		zap.String("symbol", order.Symbol),
		zap.Float64("quantity", order.Quantity),
		zap.Float64("fill_price", fillPrice),
		zap.Float64("fee", order.Fee),
		zap.Float64("realized_pnl", realized),
	)

	return types.ExecutionResult{
		OrderID: optional.Some(order.ID),
		Status:  types.ExecutionStatusFilled,
	}
}

// CancelOrder applies the cancel transition to a resting order. Unknown ids
// and orders already in a terminal state are reported in the result value.
func (e *Engine) CancelOrder(orderID string) types.CancelResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	order, ok := e.orders[orderID]
	if !ok {
		return types.CancelResult{
			OrderID: orderID,
			Status:  types.CancelStatusNotFound,
			Reason:  "order not found",
		}
	}

	if !order.IsCancellable() {
		return types.CancelResult{
			OrderID:     orderID,
			Status:      types.CancelStatusNotCancellable,
			OrderStatus: optional.Some(order.Status),
			Reason:      fmt.Sprintf("order is not cancellable in status %s", order.Status),
		}
	}

	order.Status = types.OrderStatusCancelled
	e.record(func() error { return e.recorder.RecordOrderStatus(orderID, types.OrderStatusCancelled) })

	e.logger.Info("order cancelled", zap.String("order_id", orderID))

	return types.CancelResult{
		OrderID:     orderID,
		Status:      types.CancelStatusCancelled,
		OrderStatus: optional.Some(types.OrderStatusCancelled),
	}
}

// GetPositions returns a snapshot copy of the position ledger. Mutating the
// returned map never affects engine state.
func (e *Engine) GetPositions() map[string]types.Position {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snapshot := make(map[string]types.Position, len(e.positions))
	for symbol, position := range e.positions {
		snapshot[symbol] = *position
	}

	return snapshot
}

// GetOrders returns a snapshot copy of the order table, optionally filtered by
// status.
func (e *Engine) GetOrders(statusFilter optional.Option[types.OrderStatus]) map[string]types.Order {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snapshot := make(map[string]types.Order, len(e.orders))

	for id, order := range e.orders {
		if statusFilter.IsSome() && order.Status != statusFilter.Unwrap() {
			continue
		}

		snapshot[id] = *order
	}

	return snapshot
}

// updateLedger folds a filled order into its symbol's position, creating the
// position on first fill. Returns the realized PnL of this fill. Callers must
// hold the write lock.
func (e *Engine) updateLedger(order *types.Order) (float64, error) {
	if order.Status != types.OrderStatusFilled {
		return 0, nil
	}

	if order.FillPrice.IsNone() {
		return 0, errors.Newf(errors.ErrCodeMissingFillPrice, "order %s is FILLED without a fill price", order.ID)
	}

	position, ok := e.positions[order.Symbol]
	if !ok {
		position = &types.Position{
			Symbol:   order.Symbol,
			OpenedAt: order.CreatedAt,
		}
		e.positions[order.Symbol] = position
	}

	realized := applyFill(position, order.Side, order.Quantity, order.FillPrice.Unwrap())

	return realized, nil
}

// record runs a recorder callback when a recorder is configured. Journal
// failures are logged and swallowed.
func (e *Engine) record(fn func() error) {
	if e.recorder == nil {
		return
	}

	if err := fn(); err != nil {
		e.logger.Warn("trade journal write failed", zap.Error(err))
	}
}

func newOrderFromSignal(signal types.Signal) *types.Order {
	side := types.SideBuy
	if signal.Action == types.SignalActionSell {
		side = types.SideSell
	}

	limitPrice := optional.None[float64]()
	if signal.OrderType == types.OrderTypeLimit {
		limitPrice = signal.Price
	}

	return &types.Order{
		ID:             uuid.New().String(),
		Symbol:         signal.Symbol,
		Side:           side,
		OrderType:      signal.OrderType,
		Quantity:       signal.Quantity,
		LimitPrice:     limitPrice,
		Status:         types.OrderStatusPending,
		FillPrice:      optional.None[float64](),
		CreatedAt:      time.Now().UTC(),
		SourceStrategy: signal.StrategyName,
	}
}
