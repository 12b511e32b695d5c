package types

import "time"

// Trade records a single fill for the journal. PnL is the realized profit and
// loss contributed by this fill: zero when the fill opens or increases
// exposure, the locked-in amount when it reduces, closes or flips.
type Trade struct {
	OrderID      string    `yaml:"order_id" json:"order_id"`
	Symbol       string    `yaml:"symbol" json:"symbol"`
	Side         Side      `yaml:"side" json:"side"`
	Quantity     float64   `yaml:"quantity" json:"quantity"`
	Price        float64   `yaml:"price" json:"price"`
	Fee          float64   `yaml:"fee" json:"fee"`
	PnL          float64   `yaml:"pnl" json:"pnl"`
	ExecutedAt   time.Time `yaml:"executed_at" json:"executed_at"`
	StrategyName string    `yaml:"strategy_name" json:"strategy_name"`
}
