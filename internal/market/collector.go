// Package market provides OHLCV market data to the bot loop. The only shipped
// implementation is a mock collector that synthesizes plausible candles; the
// Collector interface is the seam where an exchange-backed implementation
// would plug in.
package market

import (
	"context"
	"time"

	"github.com/quantra-lab/quantra/internal/types"
	"github.com/quantra-lab/quantra/pkg/errors"
)

// Collector fetches recent OHLCV candles for a symbol.
type Collector interface {
	// Fetch returns up to limit candles for symbol at the given timeframe,
	// oldest first.
	Fetch(ctx context.Context, symbol string, timeframe string, limit int) (types.Candles, error)
}

// DefaultTimeframe is used when a configured timeframe cannot be parsed.
const DefaultTimeframe = "1h"

// ParseTimeframe maps a timeframe label to its bar interval.
func ParseTimeframe(timeframe string) (time.Duration, error) {
	switch timeframe {
	case "1m":
		return time.Minute, nil
	case "5m":
		return 5 * time.Minute, nil
	case "15m":
		return 15 * time.Minute, nil
	case "1h":
		return time.Hour, nil
	case "4h":
		return 4 * time.Hour, nil
	case "1d":
		return 24 * time.Hour, nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe %q", timeframe)
	}
}
