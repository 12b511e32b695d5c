// Package strategy defines the strategy catalog and the regime-driven
// selection rule. Strategies carry parameters only: signal generation is out
// of scope for the prototype, so the bot loop logs the selection and trades
// nothing on its own.
package strategy

import (
	"github.com/go-playground/validator/v10"
	"github.com/quantra-lab/quantra/internal/regime"
	"github.com/quantra-lab/quantra/pkg/errors"
)

// Kind identifies a strategy variant.
type Kind string

const (
	KindMovingAverageCrossover      Kind = "moving_average_crossover"
	KindChannelBreakout             Kind = "channel_breakout"
	KindBollingerBandsMeanReversion Kind = "bollinger_bands_mean_reversion"
	KindGridTrading                 Kind = "grid_trading"
)

// MovingAverageCrossoverParams parameterizes the trend-following variant.
type MovingAverageCrossoverParams struct {
	FastPeriod int `yaml:"fast_period" json:"fast_period" validate:"gt=0"`
	SlowPeriod int `yaml:"slow_period" json:"slow_period" validate:"gt=0,gtfield=FastPeriod"`
}

// ChannelBreakoutParams parameterizes the breakout variant.
type ChannelBreakoutParams struct {
	LookbackPeriod int `yaml:"lookback_period" json:"lookback_period" validate:"gt=0"`
}

// BollingerBandsMeanReversionParams parameterizes the range variant.
type BollingerBandsMeanReversionParams struct {
	Period float64 `yaml:"period" json:"period" validate:"gt=0"`
	StdDev float64 `yaml:"std_dev" json:"std_dev" validate:"gt=0"`
}

// GridTradingParams parameterizes the grid variant.
type GridTradingParams struct {
	Levels      int     `yaml:"levels" json:"levels" validate:"gt=1"`
	SpacingRate float64 `yaml:"spacing_rate" json:"spacing_rate" validate:"gt=0,lt=1"`
}

// Configs holds the parameter block for every catalog entry.
type Configs struct {
	MovingAverageCrossover      MovingAverageCrossoverParams      `yaml:"moving_average_crossover" json:"moving_average_crossover"`
	ChannelBreakout             ChannelBreakoutParams             `yaml:"channel_breakout" json:"channel_breakout"`
	BollingerBandsMeanReversion BollingerBandsMeanReversionParams `yaml:"bollinger_bands_mean_reversion" json:"bollinger_bands_mean_reversion"`
	GridTrading                 GridTradingParams                 `yaml:"grid_trading" json:"grid_trading"`
}

// DefaultConfigs returns the reference parameters for every variant.
func DefaultConfigs() Configs {
	return Configs{
		MovingAverageCrossover:      MovingAverageCrossoverParams{FastPeriod: 10, SlowPeriod: 30},
		ChannelBreakout:             ChannelBreakoutParams{LookbackPeriod: 20},
		BollingerBandsMeanReversion: BollingerBandsMeanReversionParams{Period: 20, StdDev: 2},
		GridTrading:                 GridTradingParams{Levels: 10, SpacingRate: 0.005},
	}
}

var validate = validator.New()

// Validate checks every parameter block.
func (c Configs) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigInvalid, "invalid strategy configuration", err)
	}

	return nil
}

// Strategy is a tagged variant: Kind says which parameter field is active.
type Strategy struct {
	Kind                        Kind
	MovingAverageCrossover      *MovingAverageCrossoverParams
	ChannelBreakout             *ChannelBreakoutParams
	BollingerBandsMeanReversion *BollingerBandsMeanReversionParams
	GridTrading                 *GridTradingParams
}

// Name returns the strategy's catalog name.
func (s Strategy) Name() string {
	return string(s.Kind)
}

// Select maps a regime classification to the strategy that trades it. The
// second return is false when the classification names no known regime.
func Select(classification regime.Classification, configs Configs) (Strategy, bool) {
	switch classification.State {
	case regime.StateTrend:
		params := configs.MovingAverageCrossover

		return Strategy{
			Kind:                   KindMovingAverageCrossover,
			MovingAverageCrossover: &params,
		}, true
	case regime.StateRange:
		params := configs.BollingerBandsMeanReversion

		return Strategy{
			Kind:                        KindBollingerBandsMeanReversion,
			BollingerBandsMeanReversion: &params,
		}, true
	default:
		return Strategy{}, false
	}
}
