package repository

import (
	"database/sql"
	"errors"

	"triarb/internal/models"
)

// Ошибки репозитория сделок
var (
	ErrTradeNotFound = errors.New("trade not found")
)

// TradeRepository - постоянный журнал сделок (таблица trades).
//
// Журнал опционален и служит только аудитом: источником данных для
// status-поверхности остаётся история в памяти. Ошибки записи
// логируются вызывающим и не влияют на работу бота.
type TradeRepository struct {
	db *sql.DB
}

// NewTradeRepository создает новый экземпляр репозитория
func NewTradeRepository(db *sql.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// Insert записывает сделку в журнал
func (r *TradeRepository) Insert(trade *models.Trade) error {
	query := `
		INSERT INTO trades (trade_id, triangle, pair1, pair2, pair3, profit_pct, profit, status, error_message, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(
		query,
		trade.ID,
		trade.Triangle,
		trade.Pairs[0],
		trade.Pairs[1],
		trade.Pairs[2],
		trade.ProfitPct,
		trade.Profit,
		trade.Status,
		trade.Error,
		trade.Timestamp,
	)

	return err
}

// GetByID возвращает сделку по её идентификатору
func (r *TradeRepository) GetByID(tradeID string) (*models.Trade, error) {
	query := `
		SELECT trade_id, triangle, pair1, pair2, pair3, profit_pct, profit, status, error_message, executed_at
		FROM trades
		WHERE trade_id = $1`

	trade := &models.Trade{}
	err := r.db.QueryRow(query, tradeID).Scan(
		&trade.ID,
		&trade.Triangle,
		&trade.Pairs[0],
		&trade.Pairs[1],
		&trade.Pairs[2],
		&trade.ProfitPct,
		&trade.Profit,
		&trade.Status,
		&trade.Error,
		&trade.Timestamp,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTradeNotFound
		}
		return nil, err
	}

	return trade, nil
}

// GetRecent возвращает последние N сделок, новые первыми
func (r *TradeRepository) GetRecent(limit int) ([]*models.Trade, error) {
	query := `
		SELECT trade_id, triangle, pair1, pair2, pair3, profit_pct, profit, status, error_message, executed_at
		FROM trades
		ORDER BY executed_at DESC
		LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*models.Trade
	for rows.Next() {
		trade := &models.Trade{}
		err := rows.Scan(
			&trade.ID,
			&trade.Triangle,
			&trade.Pairs[0],
			&trade.Pairs[1],
			&trade.Pairs[2],
			&trade.ProfitPct,
			&trade.Profit,
			&trade.Status,
			&trade.Error,
			&trade.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return trades, nil
}

// GetByStatus возвращает сделки с определенным статусом
func (r *TradeRepository) GetByStatus(status string) ([]*models.Trade, error) {
	query := `
		SELECT trade_id, triangle, pair1, pair2, pair3, profit_pct, profit, status, error_message, executed_at
		FROM trades
		WHERE status = $1
		ORDER BY executed_at DESC`

	rows, err := r.db.Query(query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*models.Trade
	for rows.Next() {
		trade := &models.Trade{}
		err := rows.Scan(
			&trade.ID,
			&trade.Triangle,
			&trade.Pairs[0],
			&trade.Pairs[1],
			&trade.Pairs[2],
			&trade.ProfitPct,
			&trade.Profit,
			&trade.Status,
			&trade.Error,
			&trade.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return trades, nil
}

// CreateSchema создаёт таблицу журнала, если её ещё нет.
// Вызывается один раз при старте, когда журнал включён.
func (r *TradeRepository) CreateSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS trades (
			id            SERIAL PRIMARY KEY,
			trade_id      TEXT NOT NULL,
			triangle      TEXT NOT NULL,
			pair1         TEXT NOT NULL,
			pair2         TEXT NOT NULL,
			pair3         TEXT NOT NULL,
			profit_pct    DOUBLE PRECISION NOT NULL,
			profit        DOUBLE PRECISION NOT NULL,
			status        TEXT NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			executed_at   TIMESTAMPTZ NOT NULL
		)`

	_, err := r.db.Exec(query)
	return err
}
