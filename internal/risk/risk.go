// Package risk holds the caller-side risk gates. The execution engine never
// consults these: the bot loop checks a signal against the limits before
// handing it to the engine.
package risk

import (
	"github.com/quantra-lab/quantra/internal/logger"
	"github.com/quantra-lab/quantra/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultLimitKey is the per-symbol size map entry used when a symbol has no
// limit of its own.
const DefaultLimitKey = "default"

// Limits is the static risk configuration.
type Limits struct {
	// MaxOrderSizes caps order quantity per symbol. The DefaultLimitKey entry
	// applies to symbols without an explicit cap; a zero or missing default
	// means uncapped.
	MaxOrderSizes map[string]float64 `yaml:"max_order_sizes" json:"max_order_sizes"`
	// MaxTotalExposureUSD caps the summed absolute notional across all open
	// positions. Zero means uncapped.
	MaxTotalExposureUSD float64 `yaml:"max_total_exposure_usd" json:"max_total_exposure_usd" validate:"gte=0"`
}

// DefaultLimits returns the reference limits.
func DefaultLimits() Limits {
	return Limits{
		MaxOrderSizes: map[string]float64{
			DefaultLimitKey: 5,
			"BTC/USD":       2,
			"ETH/USD":       50,
		},
		MaxTotalExposureUSD: 250000,
	}
}

// Checker evaluates signals and positions against the configured limits.
type Checker struct {
	limits Limits
	logger *logger.Logger
}

// NewChecker creates a checker.
func NewChecker(limits Limits, log *logger.Logger) *Checker {
	return &Checker{limits: limits, logger: log}
}

// CheckOrderSize reports whether an order of the given quantity is within the
// symbol's size cap. Violations are logged.
func (c *Checker) CheckOrderSize(symbol string, quantity float64) bool {
	limit, ok := c.limits.MaxOrderSizes[symbol]
	if !ok {
		limit = c.limits.MaxOrderSizes[DefaultLimitKey]
	}

	if limit <= 0 {
		return true
	}

	if quantity > limit {
		c.logger.Warn("order size limit exceeded",
			zap.String("symbol", symbol),
			zap.Float64("quantity", quantity),
			zap.Float64("limit", limit),
		)

		return false
	}

	return true
}

// CheckExposure reports whether total absolute notional across positions stays
// under the USD cap. prices maps symbol to its current mark price; positions
// without a price contribute nothing.
func (c *Checker) CheckExposure(positions map[string]types.Position, prices map[string]float64) bool {
	if c.limits.MaxTotalExposureUSD <= 0 {
		return true
	}

	total := decimal.Zero

	for symbol, position := range positions {
		price, ok := prices[symbol]
		if !ok {
			continue
		}

		total = total.Add(decimal.NewFromFloat(position.Notional(price)))
	}

	exposure, _ := total.Float64()
	if exposure > c.limits.MaxTotalExposureUSD {
		c.logger.Warn("total exposure limit exceeded",
			zap.Float64("exposure_usd", exposure),
			zap.Float64("limit_usd", c.limits.MaxTotalExposureUSD),
		)

		return false
	}

	return true
}

// LogExchangeError records a simulated exchange failure for later review.
// The prototype only logs; a production build would page.
func (c *Checker) LogExchangeError(operation string, err error, fields ...zap.Field) {
	all := append([]zap.Field{
		zap.String("operation", operation),
		zap.Error(err),
	}, fields...)

	c.logger.Error("exchange error", all...)
}
