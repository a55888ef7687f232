package handlers

import (
	"net/http"

	"triarb/internal/models"
)

// StatsSource отдает накопительную статистику сделок.
// Реализуется журналом сделок в памяти.
type StatsSource interface {
	Stats() models.Stats
}

// StatsHandler обрабатывает HTTP запросы для статистики работы бота.
//
// Endpoints:
// - GET /api/v1/stats - получить накопительную статистику
//
// Статистика включает:
// - Количество исполненных сделок (включая dry-run и неудачные)
// - Количество прибыльных сделок
// - Суммарную прибыль в hub-валюте
// - Лучшую сделку
type StatsHandler struct {
	source StatsSource
}

// NewStatsHandler создает новый StatsHandler с внедрением зависимостей.
func NewStatsHandler(source StatsSource) *StatsHandler {
	return &StatsHandler{
		source: source,
	}
}

// GetStats возвращает накопительную статистику работы бота.
//
// GET /api/v1/stats
//
// Response 200 OK:
//
//	{
//	  "total_trades": 150,
//	  "profitable": 42,
//	  "total_profit": 12.50,
//	  "best_trade": 1.41
//	}
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Проверяем, что источник инициализирован
	if h.source == nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "stats source not initialized",
		})
		return
	}

	stats := h.source.Stats()

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(stats)
}
