package repository

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"triarb/internal/models"
)

// ============================================================
// TradeRepository Tests
// ============================================================

func TestNewTradeRepository(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := NewTradeRepository(db)
	if repo == nil {
		t.Fatal("NewTradeRepository returned nil")
	}
	if repo.db != db {
		t.Error("db not set correctly")
	}
}

func TestTradeRepositoryInsert(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		trade       *models.Trade
		mockSetup   func(mock sqlmock.Sqlmock)
		expectError bool
	}{
		{
			name: "success",
			trade: &models.Trade{
				ID:        "TR1700000000",
				Triangle:  "USDT → BTC → ETH → USDT",
				Pairs:     [3]string{"BTCUSDT", "ETHBTC", "ETHUSDT"},
				ProfitPct: 4.69,
				Profit:    0.14,
				Status:    models.TradeStatusDryRun,
				Error:     "",
				Timestamp: now,
			},
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO trades`).
					WithArgs("TR1700000000", "USDT → BTC → ETH → USDT", "BTCUSDT", "ETHBTC", "ETHUSDT", 4.69, 0.14, models.TradeStatusDryRun, "", now).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
			expectError: false,
		},
		{
			name: "database error",
			trade: &models.Trade{
				ID:        "TR1700000001",
				Triangle:  "USDT → BTC → ETH → USDT",
				Pairs:     [3]string{"BTCUSDT", "ETHBTC", "ETHUSDT"},
				Status:    models.TradeStatusFailed,
				Error:     "leg 2 rejected",
				Timestamp: now,
			},
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO trades`).
					WithArgs("TR1700000001", "USDT → BTC → ETH → USDT", "BTCUSDT", "ETHBTC", "ETHUSDT", float64(0), float64(0), models.TradeStatusFailed, "leg 2 rejected", now).
					WillReturnError(errors.New("database error"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer db.Close()

			tt.mockSetup(mock)

			repo := NewTradeRepository(db)
			err = repo.Insert(tt.trade)

			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestTradeRepositoryGetByID(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		tradeID     string
		mockSetup   func(mock sqlmock.Sqlmock)
		expected    *models.Trade
		expectError error
	}{
		{
			name:    "success",
			tradeID: "TR1700000000",
			mockSetup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"trade_id", "triangle", "pair1", "pair2", "pair3", "profit_pct", "profit", "status", "error_message", "executed_at"}).
					AddRow("TR1700000000", "USDT → BTC → ETH → USDT", "BTCUSDT", "ETHBTC", "ETHUSDT", 4.69, 0.14, "dry_run", "", now)
				mock.ExpectQuery(`SELECT .+ FROM trades WHERE trade_id = \$1`).
					WithArgs("TR1700000000").
					WillReturnRows(rows)
			},
			expected: &models.Trade{
				ID:       "TR1700000000",
				Triangle: "USDT → BTC → ETH → USDT",
				Status:   models.TradeStatusDryRun,
			},
			expectError: nil,
		},
		{
			name:    "not found",
			tradeID: "TR0",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .+ FROM trades WHERE trade_id = \$1`).
					WithArgs("TR0").
					WillReturnError(sql.ErrNoRows)
			},
			expected:    nil,
			expectError: ErrTradeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer db.Close()

			tt.mockSetup(mock)

			repo := NewTradeRepository(db)
			result, err := repo.GetByID(tt.tradeID)

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Errorf("expected error %v, got %v", tt.expectError, err)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				if result.Triangle != tt.expected.Triangle {
					t.Errorf("expected Triangle=%s, got %s", tt.expected.Triangle, result.Triangle)
				}
				if result.Status != tt.expected.Status {
					t.Errorf("expected Status=%s, got %s", tt.expected.Status, result.Status)
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestTradeRepositoryGetRecent(t *testing.T) {
	now := time.Now()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"trade_id", "triangle", "pair1", "pair2", "pair3", "profit_pct", "profit", "status", "error_message", "executed_at"}).
		AddRow("TR1700000002", "USDT → ETH → BTC → USDT", "ETHUSDT", "ETHBTC", "BTCUSDT", 1.2, 0.04, "dry_run", "", now).
		AddRow("TR1700000001", "USDT → BTC → ETH → USDT", "BTCUSDT", "ETHBTC", "ETHUSDT", 4.69, 0.14, "executed", "", now).
		AddRow("TR1700000000", "USDT → BTC → BNB → USDT", "BTCUSDT", "BNBBTC", "BNBUSDT", 0.0, 0.0, "failed", "leg 3 rejected", now)
	mock.ExpectQuery(`SELECT .+ FROM trades ORDER BY executed_at DESC LIMIT \$1`).
		WithArgs(10).
		WillReturnRows(rows)

	repo := NewTradeRepository(db)
	result, err := repo.GetRecent(10)

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if len(result) != 3 {
		t.Errorf("expected 3 trades, got %d", len(result))
	}
	if result[0].ID != "TR1700000002" {
		t.Errorf("expected newest trade first, got %s", result[0].ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestTradeRepositoryGetByStatus(t *testing.T) {
	now := time.Now()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"trade_id", "triangle", "pair1", "pair2", "pair3", "profit_pct", "profit", "status", "error_message", "executed_at"}).
		AddRow("TR1700000000", "USDT → BTC → ETH → USDT", "BTCUSDT", "ETHBTC", "ETHUSDT", 4.69, 0.14, "executed", "", now)
	mock.ExpectQuery(`SELECT .+ FROM trades WHERE status = \$1 ORDER BY executed_at DESC`).
		WithArgs(models.TradeStatusExecuted).
		WillReturnRows(rows)

	repo := NewTradeRepository(db)
	result, err := repo.GetByStatus(models.TradeStatusExecuted)

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if len(result) != 1 {
		t.Errorf("expected 1 trade, got %d", len(result))
	}
	if result[0].Status != models.TradeStatusExecuted {
		t.Errorf("expected Status=executed, got %s", result[0].Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestTradeRepositoryCreateSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS trades`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewTradeRepository(db)
	if err := repo.CreateSchema(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
