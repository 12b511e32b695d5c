package types

import "time"

// MarketData is a single OHLCV bar.
type MarketData struct {
	Symbol string    `yaml:"symbol" json:"symbol"`
	Time   time.Time `yaml:"time" json:"time"`
	Open   float64   `yaml:"open" json:"open"`
	High   float64   `yaml:"high" json:"high"`
	Low    float64   `yaml:"low" json:"low"`
	Close  float64   `yaml:"close" json:"close"`
	Volume float64   `yaml:"volume" json:"volume"`
}

// Candles is a time-ordered series of bars, oldest first.
type Candles []MarketData

// LastClose returns the close of the most recent bar, or false when the series
// is empty.
func (c Candles) LastClose() (float64, bool) {
	if len(c) == 0 {
		return 0, false
	}

	return c[len(c)-1].Close, true
}
