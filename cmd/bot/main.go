package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantra-lab/quantra/internal/config"
	"github.com/quantra-lab/quantra/internal/executor"
	"github.com/quantra-lab/quantra/internal/executor/fees"
	"github.com/quantra-lab/quantra/internal/journal"
	"github.com/quantra-lab/quantra/internal/logger"
	"github.com/quantra-lab/quantra/internal/market"
	"github.com/quantra-lab/quantra/internal/regime"
	"github.com/quantra-lab/quantra/internal/risk"
	"github.com/urfave/cli/v3"
)

// runAction wires the bot from configuration and runs the trading loop until
// the iteration cap or an interrupt.
func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadConfig(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.IsSet("iterations") {
		cfg.Loop.MaxRuns = int(cmd.Int("iterations"))
	}

	if cmd.IsSet("symbol") {
		cfg.Loop.Symbol = cmd.String("symbol")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration after flag overrides: %w", err)
	}

	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	var recorder executor.Recorder

	if cfg.Journal.Enabled {
		tradeJournal, err := journal.NewJournal(cfg.Journal.Path, log)
		if err != nil {
			return fmt.Errorf("failed to open trade journal: %w", err)
		}
		defer tradeJournal.Close()

		if err := tradeJournal.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize trade journal: %w", err)
		}

		recorder = tradeJournal
	}

	engine := executor.NewEngine(
		cfg.Engine,
		executor.NewSimulatedVenue(cfg.Engine.LimitFillProbability, cfg.Engine.SlippageTolerance, nil, cfg.Seed),
		fees.NewProportionalFee(cfg.Engine.FeeRate),
		recorder,
		log,
	)

	bot := &Bot{
		config:     cfg,
		logger:     log,
		engine:     engine,
		collector:  market.NewMockCollector(log, cfg.Seed),
		classifier: regime.NewMockClassifier(log, cfg.Seed),
		risk:       risk.NewChecker(cfg.Risk, log),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return bot.Run(ctx)
}

// schemaAction prints the JSON schema for the config file.
func schemaAction(ctx context.Context, cmd *cli.Command) error {
	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "bot",
		Usage: "Prototype trading bot with a simulated execution engine",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the trading loop",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to the YAML config file",
						Value:   "config.yaml",
					},
					&cli.IntFlag{
						Name:    "iterations",
						Aliases: []string{"n"},
						Usage:   "Override the configured iteration cap (0 runs until interrupted)",
					},
					&cli.StringFlag{
						Name:    "symbol",
						Aliases: []string{"s"},
						Usage:   "Override the configured trading symbol",
					},
				},
				Action: runAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema for the config file",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
