package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the per-symbol aggregate state maintained by the execution
// engine's ledger. A position is created lazily on the first fill for its
// symbol and persists for the life of the engine, even when flat, so that
// cumulative realized PnL stays queryable.
type Position struct {
	Symbol string `yaml:"symbol" json:"symbol"`
	// Quantity is signed: positive is net long, negative is net short, zero is flat.
	Quantity float64 `yaml:"quantity" json:"quantity"`
	// AveragePrice is the volume-weighted average entry price of the open
	// exposure. It is zero exactly when the position is flat and is reseeded
	// to the fill price when the position flips direction.
	AveragePrice float64 `yaml:"average_price" json:"average_price"`
	// RealizedPnL accumulates profit and loss locked in by reducing or closing
	// exposure. It is never reset.
	RealizedPnL float64 `yaml:"realized_pnl" json:"realized_pnl"`
	// OpenedAt is the time of the first fill that created this position entry.
	OpenedAt time.Time `yaml:"opened_at" json:"opened_at"`
}

// IsFlat reports whether the position carries no exposure.
func (p *Position) IsFlat() bool {
	return p.Quantity == 0
}

// Notional returns the absolute cash value of the open exposure at the given
// mark price.
func (p *Position) Notional(price float64) float64 {
	qty := decimal.NewFromFloat(p.Quantity).Abs()
	value, _ := qty.Mul(decimal.NewFromFloat(price)).Float64()

	return value
}
