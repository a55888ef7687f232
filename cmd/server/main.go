package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"triarb/internal/api"
	"triarb/internal/bot"
	"triarb/internal/config"
	"triarb/internal/exchange"
	"triarb/internal/models"
	"triarb/internal/repository"
	"triarb/internal/websocket"
	"triarb/pkg/crypto"
	"triarb/pkg/utils"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	logger, err := utils.InitLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting triangular arbitrage bot",
		zap.String("hub", cfg.Bot.HubAsset),
		zap.Bool("dry_run", cfg.Bot.DryRun),
		zap.Bool("testnet", cfg.Exchange.UseTestnet),
	)

	// Клиент биржи
	client := exchange.NewBinance(cfg.Exchange.APIKey, cfg.Exchange.APISecret, cfg.Exchange.UseTestnet)
	defer client.Close()

	// Загрузка рынков и построение вселенной треугольников
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 30*time.Second)
	markets, err := client.LoadMarkets(loadCtx)
	loadCancel()
	if err != nil {
		logger.Fatal("failed to load markets", zap.Error(err))
	}

	universe := selectUniverse(markets, cfg.Bot.HubAsset, cfg.Bot.MaxSymbols)
	graph := bot.BuildMarketGraph(cfg.Bot.HubAsset, universe)
	triangles := bot.EnumerateTriangles(graph, cfg.Bot.MaxTriangles)
	symbols := bot.TriangleSymbols(triangles)

	logger.Info("universe built",
		zap.Int("markets_total", len(markets)),
		zap.Int("markets_selected", len(universe)),
		zap.Int("assets", graph.AssetCount()),
		zap.Int("triangles", len(triangles)),
		zap.Int("symbols", len(symbols)),
	)

	// Хранилище стаканов, симулятор, журнал сделок
	store := bot.NewOrderBookStore()
	simulator := bot.NewSimulator(store, cfg.Bot.FeeRate, cfg.Bot.MinProfitPct)
	tradeLog := bot.NewTradeLog()

	// Исполнитель
	executor := bot.NewExecutor(client, tradeLog, cfg.Bot.DryRun, cfg.Bot.LegDelay, logger)

	// WebSocket hub для push-обновлений dashboard
	hub := websocket.NewHub(logger)
	go hub.Run()
	executor.SetNotifier(hub)

	// Опциональный постоянный журнал сделок
	var db *sql.DB
	if cfg.Database.Enabled {
		db, err = initDatabase(cfg)
		if err != nil {
			logger.Fatal("failed to connect to database",
				zap.String("dsn", cfg.Database.DSNWithoutPassword()),
				zap.Error(err),
			)
		}
		defer db.Close()

		tradeRepo := repository.NewTradeRepository(db)
		if err := tradeRepo.CreateSchema(); err != nil {
			logger.Fatal("failed to create trades schema", zap.Error(err))
		}
		executor.SetJournal(tradeRepo)
		logger.Info("trade journal enabled", zap.String("dsn", cfg.Database.DSNWithoutPassword()))
	}

	// Поллер стаканов
	pollerCfg := exchange.DefaultPollerConfig()
	pollerCfg.DepthLevels = cfg.Bot.DepthLevels
	pollerCfg.SymbolDelay = cfg.Bot.SymbolDelay
	pollerCfg.RoundDelay = cfg.Bot.RoundDelay
	pollerCfg.FetchBackoff = cfg.Bot.FetchBackoff
	pollerCfg.FetchRetries = cfg.Bot.FetchRetries

	poller := exchange.NewPoller(client, store, symbols, pollerCfg, logger)
	poller.SetCallbacks(bot.RecordBookUpdate, bot.RecordBookFetchError)

	// Планировщик сканирования
	scheduler := bot.NewScheduler(
		triangles,
		simulator,
		executor,
		cfg.Bot.TradeAmount,
		cfg.Bot.ScanInterval,
		cfg.Bot.Cooldown,
		logger,
	)

	// bcrypt-хеш токена API (сам токен дальше нигде не хранится)
	var authTokenHash string
	if cfg.Server.AuthToken != "" {
		authTokenHash, err = crypto.HashToken(cfg.Server.AuthToken)
		if err != nil {
			logger.Fatal("failed to hash API token", zap.Error(err))
		}
	}

	// Настройка зависимостей для API
	deps := &api.Dependencies{
		Stats:         tradeLog,
		Trades:        tradeLog,
		Triangles:     triangles,
		Hub:           hub,
		Logger:        logger,
		AuthTokenHash: authTokenHash,
	}

	router := api.SetupRoutes(deps)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Фоновые циклы: поллер и планировщик
	runCtx, runCancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Run(runCtx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		scheduler.Run(runCtx)
	}()

	// Запуск сервера в отдельной горутине
	go func() {
		logger.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Останавливаем фоновые циклы и ждём их завершения
	runCancel()
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("stopped",
		zap.Int64("scans", scheduler.ScanCount()),
		zap.Int("books", store.Size()),
	)
}

// selectUniverse отбирает активные пары вокруг hub, сохраняя порядок
// выдачи биржи, и обрезает список до maxSymbols первых
func selectUniverse(markets []models.Market, hub string, maxSymbols int) []models.Market {
	var selected []models.Market
	for _, m := range markets {
		if !m.Active {
			continue
		}
		if m.Base != hub && m.Quote != hub {
			continue
		}
		selected = append(selected, m)
		if len(selected) >= maxSymbols {
			break
		}
	}
	return selected
}

// initDatabase создает подключение к базе данных
func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Проверка подключения
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
