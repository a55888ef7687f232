package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"triarb/internal/api/handlers"
	"triarb/internal/api/middleware"
	"triarb/internal/models"
	"triarb/internal/websocket"
)

// Dependencies содержит все зависимости для API handlers
type Dependencies struct {
	Stats     handlers.StatsSource
	Trades    handlers.TradesSource
	Triangles []models.Triangle
	Hub       *websocket.Hub
	Logger    *zap.Logger

	// bcrypt-хеш API_AUTH_TOKEN; пустой хеш = auth выключен
	AuthTokenHash string
}

// SetupRoutes настраивает все HTTP маршруты приложения
//
// Назначение:
// Центральное место для определения всех endpoints status-поверхности.
// Регистрирует handlers для каждого маршрута.
// Применяет middleware к группам маршрутов.
//
// Структура маршрутов:
//
// /api/v1/
//
//	├── GET /stats      - накопительная статистика сделок
//	├── GET /trades     - последние сделки (limit=N, новые первыми)
//	└── GET /triangles  - отслеживаемые треугольники
//
// /ws/
//
//	└── /stream - WebSocket для real-time обновлений dashboard
//
// /        - встроенная страница dashboard
// /health  - liveness probe
// /metrics - Prometheus метрики
//
// Middleware применяется в следующем порядке:
// 1. Recovery (для всех маршрутов)
// 2. Logging (для всех маршрутов)
// 3. CORS (для всех маршрутов)
// 4. BearerAuth (только для /api/v1)
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	logger := zap.NewNop()
	if deps != nil && deps.Logger != nil {
		logger = deps.Logger
	}

	// Глобальные middleware (применяются ко всем маршрутам)
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))
	router.Use(middleware.CORS)

	// Создание handlers с внедрением зависимостей
	var statsHandler *handlers.StatsHandler
	if deps != nil && deps.Stats != nil {
		statsHandler = handlers.NewStatsHandler(deps.Stats)
	}

	var tradesHandler *handlers.TradesHandler
	if deps != nil && deps.Trades != nil {
		tradesHandler = handlers.NewTradesHandler(deps.Trades)
	}

	var trianglesHandler *handlers.TrianglesHandler
	if deps != nil {
		trianglesHandler = handlers.NewTrianglesHandler(deps.Triangles)
	}

	// API v1 routes
	apiRouter := router.PathPrefix("/api/v1").Subrouter()

	if deps != nil {
		apiRouter.Use(middleware.BearerAuth(deps.AuthTokenHash))
	}

	if statsHandler != nil {
		apiRouter.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")
	}

	if tradesHandler != nil {
		apiRouter.HandleFunc("/trades", tradesHandler.GetTrades).Methods("GET")
	}

	if trianglesHandler != nil {
		apiRouter.HandleFunc("/triangles", trianglesHandler.GetTriangles).Methods("GET")
	}

	// WebSocket route (вне /api/v1: браузерный WebSocket не умеет
	// выставлять Authorization заголовок)
	if deps != nil && deps.Hub != nil {
		hub := deps.Hub
		router.HandleFunc("/ws/stream", func(w http.ResponseWriter, r *http.Request) {
			websocket.ServeWS(hub, w, r)
		})
	}

	// Встроенная страница dashboard
	dashboardHandler := handlers.NewDashboardHandler()
	router.HandleFunc("/", dashboardHandler.GetDashboard).Methods("GET")

	// Prometheus метрики
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return router
}
