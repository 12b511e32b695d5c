package executor

import (
	"math"

	"github.com/quantra-lab/quantra/internal/types"
	"github.com/shopspring/decimal"
)

// flatEpsilon is the threshold below which a residual quantity is snapped to
// exactly zero to absorb floating-point dust from closing trades.
const flatEpsilon = 1e-9

// applyFill folds a single fill into the position and returns the realized PnL
// contributed by this fill.
//
// Let Q be the position quantity before the fill (signed), A its average
// price, q the signed fill quantity and p the fill price. Three cases, in
// priority order:
//
//  1. Close or flip: Q != 0, q on the opposite side, |q| >= |Q|. The whole
//     exposure is closed at p, realizing (p - A) * Q. If the fill exceeds the
//     exposure, the remainder opens a position in the opposite direction whose
//     cost basis is p; otherwise the position is flat and the average resets
//     to zero.
//  2. Increase or open: same side or flat. The average price becomes the
//     notional-weighted blend (A*Q + p*q) / (Q + q). Nothing is realized.
//  3. Partial reduction: opposite side, |q| < |Q|. The closed portion realizes
//     (p - A) * |q| * sign(Q); the remaining exposure keeps its cost basis.
func applyFill(position *types.Position, side types.Side, quantity float64, price float64) float64 {
	direction := 1.0
	if side == types.SideSell {
		direction = -1.0
	}

	signedQty := quantity * direction
	currentQty := position.Quantity
	realized := 0.0

	switch {
	case currentQty != 0 && currentQty*signedQty < 0 && quantity >= math.Abs(currentQty):
		// Close or flip.
		realized = realizedDelta(price, position.AveragePrice, currentQty)
		position.RealizedPnL += realized
		position.Quantity = currentQty + signedQty

		if position.Quantity == 0 {
			position.AveragePrice = 0
		} else {
			// Flipped: the new exposure's cost basis is this fill's price.
			position.AveragePrice = price
		}
	case currentQty*signedQty >= 0:
		// Increase or open.
		newQty := currentQty + signedQty
		if newQty != 0 {
			position.AveragePrice = blendAveragePrice(position.AveragePrice, currentQty, price, signedQty, newQty)
		} else {
			position.AveragePrice = 0
		}

		position.Quantity = newQty
	default:
		// Partial reduction: the closed slice realizes PnL, the average price
		// of the remaining exposure is unchanged.
		closedQty := quantity
		if currentQty < 0 {
			closedQty = -quantity
		}

		realized = realizedDelta(price, position.AveragePrice, closedQty)
		position.RealizedPnL += realized
		position.Quantity = currentQty + signedQty
	}

	if math.Abs(position.Quantity) < flatEpsilon {
		position.Quantity = 0
		position.AveragePrice = 0
	}

	return realized
}

// realizedDelta computes (price - avgPrice) * closedQty where closedQty carries
// the sign of the exposure being closed: profit when a long is closed above its
// basis or a short below it.
func realizedDelta(price float64, avgPrice float64, closedQty float64) float64 {
	diff := decimal.NewFromFloat(price).Sub(decimal.NewFromFloat(avgPrice))
	delta, _ := diff.Mul(decimal.NewFromFloat(closedQty)).Float64()

	return delta
}

// blendAveragePrice returns the notional-weighted average (A*Q + p*q) / Q'.
func blendAveragePrice(avgPrice float64, currentQty float64, price float64, signedQty float64, newQty float64) float64 {
	existing := decimal.NewFromFloat(avgPrice).Mul(decimal.NewFromFloat(currentQty))
	incoming := decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(signedQty))
	blended, _ := existing.Add(incoming).Div(decimal.NewFromFloat(newQty)).Float64()

	return blended
}
