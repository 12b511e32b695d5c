package strategy

import (
	"testing"

	"github.com/quantra-lab/quantra/internal/regime"
	"github.com/quantra-lab/quantra/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type StrategyTestSuite struct {
	suite.Suite
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

func (suite *StrategyTestSuite) TestDefaultConfigsAreValid() {
	suite.NoError(DefaultConfigs().Validate())
}

func (suite *StrategyTestSuite) TestConfigValidation() {
	tests := []struct {
		name   string
		mutate func(*Configs)
	}{
		{
			name:   "fast period not positive",
			mutate: func(c *Configs) { c.MovingAverageCrossover.FastPeriod = 0 },
		},
		{
			name:   "slow period not greater than fast",
			mutate: func(c *Configs) { c.MovingAverageCrossover.SlowPeriod = 5 },
		},
		{
			name:   "lookback not positive",
			mutate: func(c *Configs) { c.ChannelBreakout.LookbackPeriod = -1 },
		},
		{
			name:   "std dev not positive",
			mutate: func(c *Configs) { c.BollingerBandsMeanReversion.StdDev = 0 },
		},
		{
			name:   "single grid level",
			mutate: func(c *Configs) { c.GridTrading.Levels = 1 },
		},
		{
			name:   "grid spacing out of range",
			mutate: func(c *Configs) { c.GridTrading.SpacingRate = 1.5 },
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			configs := DefaultConfigs()
			tc.mutate(&configs)

			err := configs.Validate()
			suite.Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeStrategyConfigInvalid))
		})
	}
}

func (suite *StrategyTestSuite) TestSelect() {
	configs := DefaultConfigs()

	tests := []struct {
		name         string
		state        regime.State
		expectedKind Kind
		expectedOK   bool
	}{
		{"trend selects moving average crossover", regime.StateTrend, KindMovingAverageCrossover, true},
		{"range selects bollinger mean reversion", regime.StateRange, KindBollingerBandsMeanReversion, true},
		{"unknown regime selects nothing", regime.State("CHOP"), "", false},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			selected, ok := Select(regime.Classification{State: tc.state, Confidence: 0.8}, configs)

			suite.Equal(tc.expectedOK, ok)
			suite.Equal(tc.expectedKind, selected.Kind)
		})
	}
}

func (suite *StrategyTestSuite) TestSelectCarriesParams() {
	configs := DefaultConfigs()
	configs.MovingAverageCrossover = MovingAverageCrossoverParams{FastPeriod: 5, SlowPeriod: 50}

	selected, ok := Select(regime.Classification{State: regime.StateTrend}, configs)

	suite.Require().True(ok)
	suite.Require().NotNil(selected.MovingAverageCrossover)
	suite.Equal(5, selected.MovingAverageCrossover.FastPeriod)
	suite.Equal(50, selected.MovingAverageCrossover.SlowPeriod)
	suite.Equal("moving_average_crossover", selected.Name())
}

func (suite *StrategyTestSuite) TestSelectDoesNotAliasConfigs() {
	configs := DefaultConfigs()
	selected, ok := Select(regime.Classification{State: regime.StateRange}, configs)
	suite.Require().True(ok)

	configs.BollingerBandsMeanReversion.StdDev = 99

	suite.Equal(2.0, selected.BollingerBandsMeanReversion.StdDev)
}
