package bot

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================
// Prometheus метрики сканера и исполнителя
// ============================================================
//
// Использование:
// - Grafana дашборды для визуализации
// - Alertmanager для уведомлений о проблемах
// - Анализ производительности в production

// ============ Метрики сканирования ============

// ScanDuration - длительность одного тика сканирования.
// Buckets подобраны под интервал сканирования 300ms: тик дольше
// cooldown - повод для алерта.
var ScanDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "triarb",
		Subsystem: "scanner",
		Name:      "scan_duration_ms",
		Help:      "Duration of a full scan tick in milliseconds",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 300, 1000, 2000},
	},
)

// TrianglesEvaluated - количество оценённых треугольников
var TrianglesEvaluated = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "triarb",
		Subsystem: "scanner",
		Name:      "triangles_evaluated_total",
		Help:      "Total number of triangle simulations performed",
	},
)

// OpportunitiesDetected - найденные возможности по треугольникам
var OpportunitiesDetected = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "triarb",
		Subsystem: "scanner",
		Name:      "opportunities_detected_total",
		Help:      "Number of qualifying opportunities detected",
	},
	[]string{"triangle"},
)

// ============ Метрики сделок ============

// TradesTotal - количество сделок по статусам
var TradesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "triarb",
		Subsystem: "trading",
		Name:      "trades_total",
		Help:      "Total number of trades by status",
	},
	[]string{"status"}, // dry_run, executed, failed
)

// ProfitTotal - суммарная прибыль в hub-активе
var ProfitTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "triarb",
		Subsystem: "trading",
		Name:      "profit_total",
		Help:      "Cumulative recorded profit in hub asset units",
	},
)

// ============ Метрики поллера стаканов ============

// BookUpdates - успешные обновления стаканов
var BookUpdates = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "triarb",
		Subsystem: "books",
		Name:      "updates_total",
		Help:      "Total number of order book snapshot updates",
	},
)

// BookFetchErrors - ошибки загрузки стаканов по символам
var BookFetchErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "triarb",
		Subsystem: "books",
		Name:      "fetch_errors_total",
		Help:      "Total number of order book fetch failures",
	},
	[]string{"symbol"},
)

// TrackedSymbols - количество символов с актуальными данными
var TrackedSymbols = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "triarb",
		Subsystem: "books",
		Name:      "tracked_symbols",
		Help:      "Number of symbols with at least one stored snapshot",
	},
)

// ============ Вспомогательные функции ============

// ObserveScan записывает длительность тика и число оценок
func ObserveScan(elapsed time.Duration, triangles int) {
	ScanDuration.Observe(float64(elapsed.Microseconds()) / 1000.0)
	TrianglesEvaluated.Add(float64(triangles))
}

// RecordOpportunity записывает найденную возможность
func RecordOpportunity(triangle string) {
	OpportunitiesDetected.WithLabelValues(triangle).Inc()
}

// RecordTrade записывает сделку и её прибыль
func RecordTrade(status string, profit float64) {
	TradesTotal.WithLabelValues(status).Inc()
	if profit > 0 {
		ProfitTotal.Add(profit)
	}
}

// RecordBookUpdate записывает успешное обновление стакана
func RecordBookUpdate(trackedTotal int) {
	BookUpdates.Inc()
	TrackedSymbols.Set(float64(trackedTotal))
}

// RecordBookFetchError записывает ошибку загрузки стакана
func RecordBookFetchError(symbol string) {
	BookFetchErrors.WithLabelValues(symbol).Inc()
}
