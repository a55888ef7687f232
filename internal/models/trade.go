package models

import "time"

// Статусы сделки
const (
	TradeStatusDryRun   = "dry_run"  // сделка записана без отправки ордеров
	TradeStatusExecuted = "executed" // все три ноги отправлены успешно
	TradeStatusFailed   = "failed"   // одна из ног не прошла, остальные отменены
)

// Trade - запись об исполненной (или симулированной) сделке.
// Хранится в ограниченной истории: последние 100, новые первыми.
type Trade struct {
	ID        string    `json:"id"`       // "TR" + unix timestamp
	Triangle  string    `json:"triangle"` // строка цикла, например "USDT → BTC → ETH → USDT"
	Pairs     [3]string `json:"pairs"`
	ProfitPct float64   `json:"profit_pct"`
	Profit    float64   `json:"profit"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats - накопительная статистика работы бота.
// Счётчики только растут, сброс во время работы не предусмотрен.
type Stats struct {
	TotalTrades int     `json:"total_trades"`
	Profitable  int     `json:"profitable"`
	TotalProfit float64 `json:"total_profit"`
	BestTrade   float64 `json:"best_trade"`
}
