package executor

import (
	"math/rand"
	"strings"

	"github.com/moznion/go-optional"
	"github.com/quantra-lab/quantra/internal/types"
)

// FillOracle decides whether a submitted order fills and at what price. The
// engine's fill behavior is isolated behind this interface so deterministic
// implementations can drive the lifecycle tests without relying on randomness.
type FillOracle interface {
	// ShouldFill reports whether the order fills on this submission attempt.
	ShouldFill(order types.Order) bool
	// FillPrice determines the execution price for an order that fills.
	// signalPrice is the optional price carried by the originating signal.
	FillPrice(order types.Order, signalPrice optional.Option[float64]) float64
}

// ReferencePriceFunc supplies a reference market price for a symbol, used to
// price MARKET orders whose signal carried no price.
type ReferencePriceFunc func(symbol string) float64

// SimulatedVenue is the default FillOracle. MARKET orders always fill; LIMIT
// orders fill with a configured probability per attempt. MARKET fills with no
// signal price execute at the reference price perturbed by a symmetric random
// amount bounded by the slippage tolerance.
type SimulatedVenue struct {
	limitFillProbability float64
	slippageTolerance    float64
	referencePrice       ReferencePriceFunc
	rng                  *rand.Rand
}

// NewSimulatedVenue creates a venue simulator. A nil referencePrice falls back
// to fixed per-asset base prices.
func NewSimulatedVenue(limitFillProbability float64, slippageTolerance float64, referencePrice ReferencePriceFunc, seed int64) *SimulatedVenue {
	if referencePrice == nil {
		referencePrice = defaultReferencePrice
	}

	return &SimulatedVenue{
		limitFillProbability: limitFillProbability,
		slippageTolerance:    slippageTolerance,
		referencePrice:       referencePrice,
		rng:                  rand.New(rand.NewSource(seed)),
	}
}

// ShouldFill implements FillOracle.
func (v *SimulatedVenue) ShouldFill(order types.Order) bool {
	if order.OrderType == types.OrderTypeMarket {
		return true
	}

	return v.rng.Float64() < v.limitFillProbability
}

// FillPrice implements FillOracle. LIMIT orders fill at their limit price.
func (v *SimulatedVenue) FillPrice(order types.Order, signalPrice optional.Option[float64]) float64 {
	if order.OrderType == types.OrderTypeLimit && order.LimitPrice.IsSome() {
		return order.LimitPrice.Unwrap()
	}

	if signalPrice.IsSome() {
		return signalPrice.Unwrap()
	}

	reference := v.referencePrice(order.Symbol)
	perturbation := (v.rng.Float64()*2 - 1) * v.slippageTolerance * reference

	return reference + perturbation
}

// defaultReferencePrice mirrors the mock data generator's per-asset base
// prices.
func defaultReferencePrice(symbol string) float64 {
	if strings.Contains(strings.ToUpper(symbol), "ETH") {
		return 1500
	}

	return 50000
}
