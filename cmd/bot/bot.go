package main

import (
	"context"
	"time"

	"github.com/quantra-lab/quantra/internal/config"
	"github.com/quantra-lab/quantra/internal/executor"
	"github.com/quantra-lab/quantra/internal/logger"
	"github.com/quantra-lab/quantra/internal/market"
	"github.com/quantra-lab/quantra/internal/regime"
	"github.com/quantra-lab/quantra/internal/risk"
	"github.com/quantra-lab/quantra/internal/strategy"
	"github.com/quantra-lab/quantra/internal/types"
	"go.uber.org/zap"
)

// Bot drives the fetch, classify, select, execute cycle.
type Bot struct {
	config     config.BotConfig
	logger     *logger.Logger
	engine     *executor.Engine
	collector  market.Collector
	classifier regime.Classifier
	risk       *risk.Checker
}

// Run executes loop iterations until the configured cap or ctx cancellation.
func (b *Bot) Run(ctx context.Context) error {
	interval := time.Duration(b.config.Loop.IntervalSeconds) * time.Second

	b.logger.Info("trading loop starting",
		zap.String("symbol", b.config.Loop.Symbol),
		zap.Int("max_runs", b.config.Loop.MaxRuns),
		zap.Duration("interval", interval),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for run := 1; b.config.Loop.MaxRuns == 0 || run <= b.config.Loop.MaxRuns; run++ {
		b.iterate(ctx, run)

		if b.config.Loop.MaxRuns != 0 && run == b.config.Loop.MaxRuns {
			break
		}

		select {
		case <-ctx.Done():
			b.logger.Info("trading loop interrupted")

			return nil
		case <-ticker.C:
		}
	}

	b.logger.Info("trading loop finished",
		zap.Int("positions", len(b.engine.GetPositions())),
	)

	return nil
}

// iterate runs one cycle. Failures are logged and the loop moves on: a bad
// iteration must never take the bot down.
func (b *Bot) iterate(ctx context.Context, run int) {
	loop := b.config.Loop

	candles, err := b.collector.Fetch(ctx, loop.Symbol, loop.Timeframe, loop.FetchLimit)
	if err != nil {
		b.risk.LogExchangeError("fetch_market_data", err, zap.String("symbol", loop.Symbol))

		return
	}

	classification, err := b.classifier.Classify(ctx, candles)
	if err != nil {
		b.logger.Warn("regime classification failed", zap.Int("run", run), zap.Error(err))

		return
	}

	selected, ok := strategy.Select(classification, b.config.Strategies)
	if !ok {
		b.logger.Warn("no strategy for regime",
			zap.String("state", string(classification.State)),
		)

		return
	}

	b.logger.Info("strategy selected",
		zap.Int("run", run),
		zap.String("strategy", selected.Name()),
		zap.String("regime", string(classification.State)),
		zap.Float64("confidence", classification.Confidence),
	)

	// Strategies carry parameters only and emit no signals in this prototype,
	// so each iteration routes a HOLD through the engine.
	signal := types.Signal{
		Symbol:       loop.Symbol,
		Action:       types.SignalActionHold,
		OrderType:    types.OrderTypeMarket,
		StrategyName: selected.Name(),
	}

	if !b.gate(signal, candles) {
		return
	}

	result := b.engine.ExecuteSignal(signal)

	b.logger.Info("signal executed",
		zap.Int("run", run),
		zap.String("status", string(result.Status)),
		zap.String("reason", result.Reason),
	)
}

// gate applies the caller-side risk checks to a signal before execution.
func (b *Bot) gate(signal types.Signal, candles types.Candles) bool {
	if signal.Action == types.SignalActionHold {
		return true
	}

	if !b.risk.CheckOrderSize(signal.Symbol, signal.Quantity) {
		return false
	}

	prices := map[string]float64{}
	if last, ok := candles.LastClose(); ok {
		prices[signal.Symbol] = last
	}

	return b.risk.CheckExposure(b.engine.GetPositions(), prices)
}
