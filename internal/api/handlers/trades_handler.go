package handlers

import (
	"net/http"
	"strconv"

	"triarb/internal/models"
)

// Лимиты выдачи истории сделок
const (
	defaultTradesLimit = 50
	maxTradesLimit     = 100 // размер истории в памяти
)

// TradesSource отдает последние сделки, новые первыми.
// Реализуется журналом сделок в памяти.
type TradesSource interface {
	Recent(n int) []models.Trade
}

// TradesHandler обрабатывает HTTP запросы для истории сделок.
//
// Endpoints:
// - GET /api/v1/trades?limit=N - последние N сделок, новые первыми
type TradesHandler struct {
	source TradesSource
}

// NewTradesHandler создает новый TradesHandler с внедрением зависимостей.
func NewTradesHandler(source TradesSource) *TradesHandler {
	return &TradesHandler{
		source: source,
	}
}

// GetTrades возвращает последние сделки из истории в памяти.
//
// GET /api/v1/trades?limit=N
//
// Query Parameters:
// - limit (optional): количество сделок (по умолчанию 50, максимум 100)
//
// Response 200 OK:
//
//	[
//	  {
//	    "id": "TR1700000000",
//	    "triangle": "USDT → BTC → ETH → USDT",
//	    "pairs": ["BTCUSDT", "ETHBTC", "ETHUSDT"],
//	    "profit_pct": 4.69,
//	    "profit": 0.14,
//	    "status": "dry_run",
//	    "timestamp": "2026-08-23T14:32:00Z"
//	  }
//	]
func (h *TradesHandler) GetTrades(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Проверяем, что источник инициализирован
	if h.source == nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "trades source not initialized",
		})
		return
	}

	// Получаем лимит из query string
	limit := defaultTradesLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "invalid limit",
			})
			return
		}
		limit = parsed
		if limit > maxTradesLimit {
			limit = maxTradesLimit
		}
	}

	trades := h.source.Recent(limit)

	// Пустой массив возвращаем как [], а не null
	if trades == nil {
		trades = []models.Trade{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(trades)
}
