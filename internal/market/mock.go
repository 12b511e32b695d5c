package market

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/quantra-lab/quantra/internal/logger"
	"github.com/quantra-lab/quantra/internal/types"
	"github.com/quantra-lab/quantra/pkg/errors"
	"go.uber.org/zap"
)

// MockCollector synthesizes OHLCV candles with a random walk around a fixed
// per-asset base price. Each call produces a fresh window ending at the current
// time, so consecutive fetches look like live data.
type MockCollector struct {
	logger     *logger.Logger
	rng        *rand.Rand
	volatility float64
	volumeBase float64
}

// NewMockCollector creates a collector seeded for reproducibility.
func NewMockCollector(log *logger.Logger, seed int64) *MockCollector {
	return &MockCollector{
		logger:     log,
		rng:        rand.New(rand.NewSource(seed)),
		volatility: 0.002,
		volumeBase: 10,
	}
}

// Fetch implements Collector. An unparseable timeframe is logged and replaced
// with the default rather than failing the loop iteration.
func (c *MockCollector) Fetch(ctx context.Context, symbol string, timeframe string, limit int) (types.Candles, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "fetch aborted", err)
	}

	if limit <= 0 {
		return nil, errors.Newf(errors.ErrCodeNoMarketData, "invalid candle limit %d", limit)
	}

	interval, err := ParseTimeframe(timeframe)
	if err != nil {
		c.logger.Warn("unsupported timeframe, using default",
			zap.String("timeframe", timeframe),
			zap.String("default", DefaultTimeframe),
		)

		interval, _ = ParseTimeframe(DefaultTimeframe)
	}

	candles := make(types.Candles, limit)
	price := basePrice(symbol)
	barTime := time.Now().UTC().Add(-time.Duration(limit) * interval).Truncate(interval)

	for i := 0; i < limit; i++ {
		open := price
		// Box-Muller gives normally distributed bar returns.
		u1 := c.rng.Float64()
		u2 := c.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		close := open * (1 + c.volatility*z)
		if close <= 0 {
			close = open * 0.99
		}

		highExtension := math.Abs(c.rng.Float64() * c.volatility * open * 0.5)
		lowExtension := math.Abs(c.rng.Float64() * c.volatility * open * 0.5)

		high := math.Max(open, close) + highExtension

		low := math.Min(open, close) - lowExtension
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		candles[i] = types.MarketData{
			Symbol: symbol,
			Time:   barTime,
			Open:   roundToDecimals(open, 4),
			High:   roundToDecimals(high, 4),
			Low:    roundToDecimals(low, 4),
			Close:  roundToDecimals(close, 4),
			Volume: roundToDecimals(c.volumeBase*(1+(c.rng.Float64()*2-1)*0.3), 2),
		}

		price = close
		barTime = barTime.Add(interval)
	}

	return candles, nil
}

// basePrice anchors the random walk per asset.
func basePrice(symbol string) float64 {
	if strings.Contains(strings.ToUpper(symbol), "ETH") {
		return 1500
	}

	return 50000
}

func roundToDecimals(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))

	return math.Round(value*factor) / factor
}
