// Package regime classifies recent market data into a market regime that
// drives strategy selection. The shipped classifier is a mock standing in for
// an external model call.
package regime

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/quantra-lab/quantra/internal/logger"
	"github.com/quantra-lab/quantra/internal/types"
	"github.com/quantra-lab/quantra/pkg/errors"
	"go.uber.org/zap"
)

// State is the detected market regime.
type State string

const (
	StateTrend State = "TREND"
	StateRange State = "RANGE"
)

// Classification is the classifier's verdict for one window of candles.
type Classification struct {
	State      State   `json:"state"`
	Confidence float64 `json:"confidence"`
	// Rationale is a short human-readable explanation of the verdict.
	Rationale string `json:"rationale"`
}

// Classifier detects the current market regime from a candle window.
type Classifier interface {
	Classify(ctx context.Context, candles types.Candles) (Classification, error)
}

// trendWindow and trendThreshold implement the heuristic: a move of at least
// 2% over the last 10 bars is always a trend.
const (
	trendWindow    = 10
	trendThreshold = 0.02
)

// MockClassifier simulates a regime model. A clear directional move is
// classified deterministically; ambiguous windows get a random verdict with a
// confidence drawn from [0.65, 0.95).
type MockClassifier struct {
	mu     sync.Mutex
	logger *logger.Logger
	rng    *rand.Rand
}

// NewMockClassifier creates a classifier seeded for reproducibility.
func NewMockClassifier(log *logger.Logger, seed int64) *MockClassifier {
	return &MockClassifier{
		logger: log,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Classify implements Classifier. It requires at least trendWindow+1 candles.
func (c *MockClassifier) Classify(ctx context.Context, candles types.Candles) (Classification, error) {
	if err := ctx.Err(); err != nil {
		return Classification{}, errors.Wrap(errors.ErrCodeClassificationFailed, "classification aborted", err)
	}

	if len(candles) < trendWindow+1 {
		return Classification{}, errors.Newf(errors.ErrCodeClassificationFailed,
			"need at least %d candles, got %d", trendWindow+1, len(candles))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	latest := candles[len(candles)-1].Close
	reference := candles[len(candles)-1-trendWindow].Close
	move := math.Abs(latest/reference - 1)

	var classification Classification

	if move >= trendThreshold {
		classification = Classification{
			State:      StateTrend,
			Confidence: c.confidence(),
			Rationale:  fmt.Sprintf("%.2f%% move over last %d bars", move*100, trendWindow),
		}
	} else {
		state := StateRange
		if c.rng.Float64() < 0.5 {
			state = StateTrend
		}

		classification = Classification{
			State:      state,
			Confidence: c.confidence(),
			Rationale:  "no clear directional move, simulated model verdict",
		}
	}

	c.logger.Info("market regime classified",
		zap.String("symbol", candles[len(candles)-1].Symbol),
		zap.String("state", string(classification.State)),
		zap.Float64("confidence", classification.Confidence),
	)

	return classification, nil
}

func (c *MockClassifier) confidence() float64 {
	return 0.65 + c.rng.Float64()*0.3
}
