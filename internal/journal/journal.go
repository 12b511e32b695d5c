// Package journal persists orders, fills and position snapshots to an embedded
// DuckDB database so a run can be inspected after the fact. The journal is an
// observer: the executor's in-memory ledger stays authoritative and journal
// failures never affect a trade.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/quantra-lab/quantra/internal/logger"
	"github.com/quantra-lab/quantra/internal/types"
	"github.com/quantra-lab/quantra/pkg/errors"
	"go.uber.org/zap"
)

// Journal records the trading session into DuckDB.
type Journal struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewJournal opens a journal at path. An empty path opens an in-memory
// database, which is what the tests use.
func NewJournal(path string, log *logger.Logger) (*Journal, error) {
	dsn := ":memory:"
	if path != "" {
		dsn = path
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalInitFailed, "failed to open journal database", err)
	}

	return &Journal{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates the journal tables.
func (j *Journal) Initialize() error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			order_id TEXT PRIMARY KEY,
			symbol TEXT,
			side TEXT,
			order_type TEXT,
			quantity DOUBLE,
			limit_price DOUBLE,
			status TEXT,
			created_at TIMESTAMP,
			strategy_name TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalInitFailed, "failed to create orders table", err)
	}

	_, err = j.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			order_id TEXT,
			symbol TEXT,
			side TEXT,
			quantity DOUBLE,
			price DOUBLE,
			fee DOUBLE,
			pnl DOUBLE,
			executed_at TIMESTAMP,
			strategy_name TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalInitFailed, "failed to create trades table", err)
	}

	_, err = j.db.Exec(`
		CREATE TABLE IF NOT EXISTS positions (
			symbol TEXT PRIMARY KEY,
			quantity DOUBLE,
			average_price DOUBLE,
			realized_pnl DOUBLE,
			opened_at TIMESTAMP
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalInitFailed, "failed to create positions table", err)
	}

	return nil
}

// RecordOrder inserts a newly submitted order.
func (j *Journal) RecordOrder(order types.Order) error {
	limitPrice := 0.0
	if order.LimitPrice.IsSome() {
		limitPrice = order.LimitPrice.Unwrap()
	}

	_, err := j.sq.
		Insert("orders").
		Columns(
			"order_id", "symbol", "side", "order_type", "quantity",
			"limit_price", "status", "created_at", "strategy_name",
		).
		Values(
			order.ID, order.Symbol, order.Side, order.OrderType, order.Quantity,
			limitPrice, order.Status, order.CreatedAt, order.SourceStrategy,
		).
		RunWith(j.db).
		Exec()
	if err != nil {
		return errors.Wrapf(errors.ErrCodeJournalWriteFailed, err, "failed to record order %s", order.ID)
	}

	return nil
}

// RecordFill writes the trade and the resulting position snapshot in one
// transaction, and marks the originating order as filled.
func (j *Journal) RecordFill(trade types.Trade, position types.Position) error {
	tx, err := j.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalWriteFailed, "failed to begin transaction", err)
	}

	_, err = j.sq.
		Insert("trades").
		Columns(
			"order_id", "symbol", "side", "quantity", "price",
			"fee", "pnl", "executed_at", "strategy_name",
		).
		Values(
			trade.OrderID, trade.Symbol, trade.Side, trade.Quantity, trade.Price,
			trade.Fee, trade.PnL, trade.ExecutedAt, trade.StrategyName,
		).
		RunWith(tx).
		Exec()
	if err != nil {
		tx.Rollback()

		return errors.Wrapf(errors.ErrCodeJournalWriteFailed, err, "failed to record trade for order %s", trade.OrderID)
	}

	// DuckDB upsert keeps one row per symbol.
	_, err = tx.Exec(`
		INSERT INTO positions (symbol, quantity, average_price, realized_pnl, opened_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (symbol) DO UPDATE SET
			quantity = excluded.quantity,
			average_price = excluded.average_price,
			realized_pnl = excluded.realized_pnl
	`, position.Symbol, position.Quantity, position.AveragePrice, position.RealizedPnL, position.OpenedAt)
	if err != nil {
		tx.Rollback()

		return errors.Wrapf(errors.ErrCodeJournalWriteFailed, err, "failed to record position for %s", position.Symbol)
	}

	_, err = j.sq.
		Update("orders").
		Set("status", types.OrderStatusFilled).
		Where(squirrel.Eq{"order_id": trade.OrderID}).
		RunWith(tx).
		Exec()
	if err != nil {
		tx.Rollback()

		return errors.Wrapf(errors.ErrCodeJournalWriteFailed, err, "failed to update order %s status", trade.OrderID)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeJournalWriteFailed, "failed to commit fill", err)
	}

	return nil
}

// RecordOrderStatus updates the journaled status of an order.
func (j *Journal) RecordOrderStatus(orderID string, status types.OrderStatus) error {
	result, err := j.sq.
		Update("orders").
		Set("status", status).
		Where(squirrel.Eq{"order_id": orderID}).
		RunWith(j.db).
		Exec()
	if err != nil {
		return errors.Wrapf(errors.ErrCodeJournalWriteFailed, err, "failed to update order %s status", orderID)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return errors.Newf(errors.ErrCodeOrderNotFound, "order %s not in journal", orderID)
	}

	return nil
}

// GetAllTrades returns every journaled trade in execution order.
func (j *Journal) GetAllTrades() ([]types.Trade, error) {
	rows, err := j.sq.
		Select(
			"order_id", "symbol", "side", "quantity", "price",
			"fee", "pnl", "executed_at", "strategy_name",
		).
		From("trades").
		OrderBy("executed_at ASC").
		RunWith(j.db).
		Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to query trades", err)
	}
	defer rows.Close()

	var trades []types.Trade

	for rows.Next() {
		var trade types.Trade

		err := rows.Scan(
			&trade.OrderID,
			&trade.Symbol,
			&trade.Side,
			&trade.Quantity,
			&trade.Price,
			&trade.Fee,
			&trade.PnL,
			&trade.ExecutedAt,
			&trade.StrategyName,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to scan trade", err)
		}

		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "error iterating trades", err)
	}

	return trades, nil
}

// GetOrderByID returns a journaled order.
func (j *Journal) GetOrderByID(orderID string) (types.Order, error) {
	var (
		order      types.Order
		limitPrice float64
	)

	err := j.sq.
		Select(
			"order_id", "symbol", "side", "order_type", "quantity",
			"limit_price", "status", "created_at", "strategy_name",
		).
		From("orders").
		Where(squirrel.Eq{"order_id": orderID}).
		RunWith(j.db).
		QueryRow().
		Scan(
			&order.ID,
			&order.Symbol,
			&order.Side,
			&order.OrderType,
			&order.Quantity,
			&limitPrice,
			&order.Status,
			&order.CreatedAt,
			&order.SourceStrategy,
		)
	if err == sql.ErrNoRows {
		return types.Order{}, errors.Newf(errors.ErrCodeOrderNotFound, "order %s not in journal", orderID)
	}

	if err != nil {
		return types.Order{}, errors.Wrapf(errors.ErrCodeJournalQueryFailed, err, "failed to query order %s", orderID)
	}

	if order.OrderType == types.OrderTypeLimit && limitPrice > 0 {
		order.LimitPrice = optional.Some(limitPrice)
	}

	return order, nil
}

// WriteParquet exports the journal tables as Parquet files under path.
func (j *Journal) WriteParquet(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeJournalExportFailed, "failed to create output directory", err)
	}

	for _, table := range []string{"orders", "trades", "positions"} {
		target := filepath.Join(path, table+".parquet")

		// COPY has no placeholder support in DuckDB.
		_, err := j.db.Exec(fmt.Sprintf(`COPY %s TO '%s' (FORMAT PARQUET)`, table, target))
		if err != nil {
			return errors.Wrapf(errors.ErrCodeJournalExportFailed, err, "failed to export %s to Parquet", table)
		}
	}

	j.logger.Info("journal exported", zap.String("path", path))

	return nil
}

// Cleanup drops and recreates the journal tables.
func (j *Journal) Cleanup() error {
	_, err := j.db.Exec(`
		DROP TABLE IF EXISTS trades;
		DROP TABLE IF EXISTS orders;
		DROP TABLE IF EXISTS positions;
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalInitFailed, "failed to drop journal tables", err)
	}

	return j.Initialize()
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
