package executor

import (
	"sync"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/quantra-lab/quantra/internal/executor/fees"
	"github.com/quantra-lab/quantra/internal/logger"
	"github.com/quantra-lab/quantra/internal/types"
	"github.com/quantra-lab/quantra/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// fakeOracle is a deterministic FillOracle: market orders always fill, limit
// orders fill iff fillLimit is set. Pricing follows the venue rules without
// randomness.
type fakeOracle struct {
	fillLimit   bool
	marketPrice float64
}

func (o fakeOracle) ShouldFill(order types.Order) bool {
	if order.OrderType == types.OrderTypeMarket {
		return true
	}

	return o.fillLimit
}

func (o fakeOracle) FillPrice(order types.Order, signalPrice optional.Option[float64]) float64 {
	if order.OrderType == types.OrderTypeLimit && order.LimitPrice.IsSome() {
		return order.LimitPrice.Unwrap()
	}

	if signalPrice.IsSome() {
		return signalPrice.Unwrap()
	}

	return o.marketPrice
}

type EngineTestSuite struct {
	suite.Suite
	engine *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (suite *EngineTestSuite) SetupTest() {
	suite.engine = NewEngine(
		DefaultConfig(),
		fakeOracle{fillLimit: false, marketPrice: 50000},
		fees.NewProportionalFee(0.001),
		nil,
		logger.NewNopLogger(),
	)
}

func marketSignal(action types.SignalAction, quantity float64, price optional.Option[float64]) types.Signal {
	return types.Signal{
		Symbol:       "BTC/USD",
		Action:       action,
		Quantity:     quantity,
		OrderType:    types.OrderTypeMarket,
		Price:        price,
		StrategyName: "test_strategy",
	}
}

func limitSignal(action types.SignalAction, quantity float64, price float64) types.Signal {
	return types.Signal{
		Symbol:       "BTC/USD",
		Action:       action,
		Quantity:     quantity,
		OrderType:    types.OrderTypeLimit,
		Price:        optional.Some(price),
		StrategyName: "test_strategy",
	}
}

func (suite *EngineTestSuite) TestHoldSignalMutatesNothing() {
	signal := types.Signal{
		Symbol:       "BTC/USD",
		Action:       types.SignalActionHold,
		OrderType:    types.OrderTypeMarket,
		StrategyName: "test_strategy",
	}

	result := suite.engine.ExecuteSignal(signal)

	suite.Equal(types.ExecutionStatusHandled, result.Status)
	suite.True(result.OrderID.IsNone())
	suite.NotEmpty(result.Reason)
	suite.Empty(suite.engine.GetOrders(optional.None[types.OrderStatus]()))
	suite.Empty(suite.engine.GetPositions())
}

func (suite *EngineTestSuite) TestInvalidSignalsAreRejected() {
	tests := []struct {
		name   string
		signal types.Signal
	}{
		{
			name: "missing symbol",
			signal: types.Signal{
				Action:       types.SignalActionBuy,
				Quantity:     1,
				OrderType:    types.OrderTypeMarket,
				StrategyName: "test_strategy",
			},
		},
		{
			name: "unknown action",
			signal: types.Signal{
				Symbol:       "BTC/USD",
				Action:       "SHORT",
				Quantity:     1,
				OrderType:    types.OrderTypeMarket,
				StrategyName: "test_strategy",
			},
		},
		{
			name: "unknown order type",
			signal: types.Signal{
				Symbol:       "BTC/USD",
				Action:       types.SignalActionBuy,
				Quantity:     1,
				OrderType:    "STOP",
				StrategyName: "test_strategy",
			},
		},
		{
			name:   "non-positive quantity",
			signal: marketSignal(types.SignalActionBuy, -1, optional.None[float64]()),
		},
		{
			name: "limit without price",
			signal: types.Signal{
				Symbol:       "BTC/USD",
				Action:       types.SignalActionBuy,
				Quantity:     1,
				OrderType:    types.OrderTypeLimit,
				StrategyName: "test_strategy",
			},
		},
		{
			name:   "limit with non-positive price",
			signal: limitSignal(types.SignalActionBuy, 1, -50000),
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			result := suite.engine.ExecuteSignal(tc.signal)

			suite.Equal(types.ExecutionStatusRejected, result.Status)
			suite.True(result.OrderID.IsNone())
			suite.NotEmpty(result.Reason)
			suite.Empty(suite.engine.GetOrders(optional.None[types.OrderStatus]()))
			suite.Empty(suite.engine.GetPositions())
		})
	}
}

func (suite *EngineTestSuite) TestMarketOrderFillsWithFee() {
	result := suite.engine.ExecuteSignal(marketSignal(types.SignalActionBuy, 1, optional.None[float64]()))

	suite.Equal(types.ExecutionStatusFilled, result.Status)
	suite.True(result.OrderID.IsSome())

	orders := suite.engine.GetOrders(optional.None[types.OrderStatus]())
	suite.Len(orders, 1)

	order := orders[result.OrderID.Unwrap()]
	suite.Equal(types.OrderStatusFilled, order.Status)
	suite.True(order.FillPrice.IsSome())
	suite.Equal(50000.0, order.FillPrice.Unwrap())
	// fee = quantity * fillPrice * feeRate
	suite.InDelta(1*50000*0.001, order.Fee, 1e-9)

	positions := suite.engine.GetPositions()
	suite.Len(positions, 1)
	suite.InDelta(1.0, positions["BTC/USD"].Quantity, 1e-9)
	suite.InDelta(50000.0, positions["BTC/USD"].AveragePrice, 1e-9)
}

func (suite *EngineTestSuite) TestMarketOrderUsesSignalPrice() {
	result := suite.engine.ExecuteSignal(marketSignal(types.SignalActionBuy, 2, optional.Some(48000.0)))

	suite.Equal(types.ExecutionStatusFilled, result.Status)

	order := suite.engine.GetOrders(optional.None[types.OrderStatus]())[result.OrderID.Unwrap()]
	suite.Equal(48000.0, order.FillPrice.Unwrap())
}

func (suite *EngineTestSuite) TestRoundTripLeavesFlatPosition() {
	buy := suite.engine.ExecuteSignal(marketSignal(types.SignalActionBuy, 2, optional.Some(50000.0)))
	sell := suite.engine.ExecuteSignal(marketSignal(types.SignalActionSell, 2, optional.Some(51000.0)))

	suite.Equal(types.ExecutionStatusFilled, buy.Status)
	suite.Equal(types.ExecutionStatusFilled, sell.Status)

	position := suite.engine.GetPositions()["BTC/USD"]
	suite.Zero(position.Quantity)
	suite.Zero(position.AveragePrice)
	suite.InDelta((51000.0-50000.0)*2, position.RealizedPnL, 1e-9)
}

func (suite *EngineTestSuite) TestFlipThroughEngine() {
	suite.engine.ExecuteSignal(marketSignal(types.SignalActionBuy, 10, optional.Some(100.0)))
	suite.engine.ExecuteSignal(marketSignal(types.SignalActionSell, 15, optional.Some(110.0)))

	position := suite.engine.GetPositions()["BTC/USD"]
	suite.InDelta(-5.0, position.Quantity, 1e-9)
	suite.InDelta(110.0, position.AveragePrice, 1e-9)
	suite.InDelta(100.0, position.RealizedPnL, 1e-9)
}

func (suite *EngineTestSuite) TestUnfilledLimitOrderRests() {
	result := suite.engine.ExecuteSignal(limitSignal(types.SignalActionBuy, 1, 45000))

	suite.Equal(types.ExecutionStatusSubmitted, result.Status)
	suite.True(result.OrderID.IsSome())

	order := suite.engine.GetOrders(optional.None[types.OrderStatus]())[result.OrderID.Unwrap()]
	suite.Equal(types.OrderStatusSubmitted, order.Status)
	suite.True(order.FillPrice.IsNone())
	suite.Empty(suite.engine.GetPositions())
}

func (suite *EngineTestSuite) TestLimitOrderFillsAtLimitPrice() {
	suite.engine.oracle = fakeOracle{fillLimit: true}

	result := suite.engine.ExecuteSignal(limitSignal(types.SignalActionBuy, 1, 45000))

	suite.Equal(types.ExecutionStatusFilled, result.Status)

	order := suite.engine.GetOrders(optional.None[types.OrderStatus]())[result.OrderID.Unwrap()]
	suite.Equal(45000.0, order.FillPrice.Unwrap())
	suite.InDelta(45000.0, suite.engine.GetPositions()["BTC/USD"].AveragePrice, 1e-9)
}

func (suite *EngineTestSuite) TestCancelRestingOrder() {
	result := suite.engine.ExecuteSignal(limitSignal(types.SignalActionBuy, 1, 45000))
	orderID := result.OrderID.Unwrap()

	cancel := suite.engine.CancelOrder(orderID)
	suite.Equal(types.CancelStatusCancelled, cancel.Status)
	suite.Equal(types.OrderStatusCancelled, cancel.OrderStatus.Unwrap())

	order := suite.engine.GetOrders(optional.None[types.OrderStatus]())[orderID]
	suite.Equal(types.OrderStatusCancelled, order.Status)
}

func (suite *EngineTestSuite) TestCancelUnknownOrder() {
	cancel := suite.engine.CancelOrder("no-such-order")

	suite.Equal(types.CancelStatusNotFound, cancel.Status)
	suite.True(cancel.OrderStatus.IsNone())
	suite.NotEmpty(cancel.Reason)
}

func (suite *EngineTestSuite) TestCancelFilledOrderIsRejected() {
	result := suite.engine.ExecuteSignal(marketSignal(types.SignalActionBuy, 1, optional.Some(50000.0)))
	orderID := result.OrderID.Unwrap()

	cancel := suite.engine.CancelOrder(orderID)
	suite.Equal(types.CancelStatusNotCancellable, cancel.Status)
	suite.Equal(types.OrderStatusFilled, cancel.OrderStatus.Unwrap())
	suite.Contains(cancel.Reason, "FILLED")

	// The fill must stand: the position is untouched by the failed cancel.
	suite.InDelta(1.0, suite.engine.GetPositions()["BTC/USD"].Quantity, 1e-9)
}

func (suite *EngineTestSuite) TestCancelCancelledOrderIsRejected() {
	result := suite.engine.ExecuteSignal(limitSignal(types.SignalActionBuy, 1, 45000))
	orderID := result.OrderID.Unwrap()

	first := suite.engine.CancelOrder(orderID)
	suite.Equal(types.CancelStatusCancelled, first.Status)

	second := suite.engine.CancelOrder(orderID)
	suite.Equal(types.CancelStatusNotCancellable, second.Status)
	suite.Equal(types.OrderStatusCancelled, second.OrderStatus.Unwrap())
}

func (suite *EngineTestSuite) TestQuerySnapshotsAreIdempotent() {
	suite.engine.ExecuteSignal(marketSignal(types.SignalActionBuy, 1, optional.Some(50000.0)))
	suite.engine.ExecuteSignal(limitSignal(types.SignalActionSell, 1, 60000))

	suite.Equal(suite.engine.GetPositions(), suite.engine.GetPositions())
	suite.Equal(
		suite.engine.GetOrders(optional.None[types.OrderStatus]()),
		suite.engine.GetOrders(optional.None[types.OrderStatus]()),
	)
}

func (suite *EngineTestSuite) TestSnapshotsAreDefensiveCopies() {
	result := suite.engine.ExecuteSignal(marketSignal(types.SignalActionBuy, 1, optional.Some(50000.0)))

	positions := suite.engine.GetPositions()
	mutated := positions["BTC/USD"]
	mutated.Quantity = 999
	positions["BTC/USD"] = mutated
	delete(positions, "other")

	suite.InDelta(1.0, suite.engine.GetPositions()["BTC/USD"].Quantity, 1e-9)

	orders := suite.engine.GetOrders(optional.None[types.OrderStatus]())
	order := orders[result.OrderID.Unwrap()]
	order.Quantity = 999
	orders[result.OrderID.Unwrap()] = order

	suite.InDelta(1.0, suite.engine.GetOrders(optional.None[types.OrderStatus]())[result.OrderID.Unwrap()].Quantity, 1e-9)
}

func (suite *EngineTestSuite) TestGetOrdersStatusFilter() {
	filled := suite.engine.ExecuteSignal(marketSignal(types.SignalActionBuy, 1, optional.Some(50000.0)))
	resting := suite.engine.ExecuteSignal(limitSignal(types.SignalActionSell, 1, 60000))

	submitted := suite.engine.GetOrders(optional.Some(types.OrderStatusSubmitted))
	suite.Len(submitted, 1)
	suite.Contains(submitted, resting.OrderID.Unwrap())

	filledOrders := suite.engine.GetOrders(optional.Some(types.OrderStatusFilled))
	suite.Len(filledOrders, 1)
	suite.Contains(filledOrders, filled.OrderID.Unwrap())

	cancelled := suite.engine.GetOrders(optional.Some(types.OrderStatusCancelled))
	suite.Empty(cancelled)
}

func (suite *EngineTestSuite) TestOrderIDsAreUnique() {
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		result := suite.engine.ExecuteSignal(marketSignal(types.SignalActionBuy, 1, optional.Some(50000.0)))
		id := result.OrderID.Unwrap()
		suite.False(seen[id])
		seen[id] = true
	}
}

func (suite *EngineTestSuite) TestUpdateLedgerRequiresFillPrice() {
	order := newOrderFromSignal(marketSignal(types.SignalActionBuy, 1, optional.None[float64]()))
	order.Status = types.OrderStatusFilled

	_, err := suite.engine.updateLedger(order)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingFillPrice))
	suite.Empty(suite.engine.GetPositions())
}

func (suite *EngineTestSuite) TestUpdateLedgerIgnoresUnfilledOrders() {
	order := newOrderFromSignal(limitSignal(types.SignalActionBuy, 1, 45000))
	order.Status = types.OrderStatusSubmitted

	realized, err := suite.engine.updateLedger(order)
	suite.NoError(err)
	suite.Zero(realized)
	suite.Empty(suite.engine.GetPositions())
}

func (suite *EngineTestSuite) TestConcurrentSignalsOnSameSymbol() {
	const goroutines = 32

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			suite.engine.ExecuteSignal(marketSignal(types.SignalActionBuy, 1, optional.Some(50000.0)))
		}()
	}

	wg.Wait()

	position := suite.engine.GetPositions()["BTC/USD"]
	suite.InDelta(float64(goroutines), position.Quantity, 1e-9)
	suite.InDelta(50000.0, position.AveragePrice, 1e-9)
	suite.Len(suite.engine.GetOrders(optional.None[types.OrderStatus]()), goroutines)
}

func (suite *EngineTestSuite) TestConcurrentCancelAndFillAreExclusive() {
	// Race cancels against executions; every order must end in exactly one
	// terminal-or-resting state and a successful cancel implies the order
	// never filled.
	const orders = 16

	ids := make([]string, 0, orders)
	for i := 0; i < orders; i++ {
		result := suite.engine.ExecuteSignal(limitSignal(types.SignalActionBuy, 1, 45000))
		ids = append(ids, result.OrderID.Unwrap())
	}

	var wg sync.WaitGroup
	results := make([]types.CancelResult, orders)

	for i, id := range ids {
		wg.Add(1)

		go func(i int, id string) {
			defer wg.Done()
			results[i] = suite.engine.CancelOrder(id)
		}(i, id)
	}

	wg.Wait()

	table := suite.engine.GetOrders(optional.None[types.OrderStatus]())
	for i, id := range ids {
		suite.Equal(types.CancelStatusCancelled, results[i].Status)
		suite.Equal(types.OrderStatusCancelled, table[id].Status)
	}

	suite.Empty(suite.engine.GetPositions())
}
