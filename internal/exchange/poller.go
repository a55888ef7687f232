package exchange

import (
	"context"
	"time"

	"go.uber.org/zap"

	"triarb/internal/models"
	"triarb/pkg/ratelimit"
	"triarb/pkg/retry"
)

// BookSink - потребитель снимков стаканов (хранилище сканера)
type BookSink interface {
	Update(symbol string, snapshot *models.BookSnapshot)
	Size() int
}

// PollerConfig - параметры цикла опроса стаканов
type PollerConfig struct {
	DepthLevels  int           // сколько уровней храним на сторону
	FetchLimit   int           // сколько уровней запрашиваем у биржи
	SymbolDelay  time.Duration // пауза между символами
	RoundDelay   time.Duration // пауза между полными кругами
	FetchBackoff time.Duration // пауза после неудачного символа
	FetchRetries int           // попыток на символ за круг
	RequestRate  float64       // запросов в секунду к REST API
}

// DefaultPollerConfig - параметры по умолчанию: 10 уровней из 20
// запрошенных, 50ms между символами, 500ms между кругами.
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		DepthLevels:  10,
		FetchLimit:   20,
		SymbolDelay:  50 * time.Millisecond,
		RoundDelay:   500 * time.Millisecond,
		FetchBackoff: 1 * time.Second,
		FetchRetries: 3,
		RequestRate:  15,
	}
}

// Poller циклически обновляет снимки стаканов отслеживаемых символов
// через REST API биржи.
//
// Ошибка по одному символу логируется и приводит к короткому backoff,
// после чего цикл переходит к следующему символу - круг никогда не
// останавливается из-за отдельных сбоев. Скорость запросов ограничена
// token bucket лимитером, отдельные запросы повторяются с
// экспоненциальным backoff и jitter.
type Poller struct {
	client  Exchange
	sink    BookSink
	symbols []string
	cfg     PollerConfig
	limiter *ratelimit.RateLimiter
	logger  *zap.Logger

	// колбэки для метрик (могут быть nil)
	onUpdate func(trackedTotal int)
	onError  func(symbol string)
}

// NewPoller создаёт поллер для списка символов
func NewPoller(client Exchange, sink BookSink, symbols []string, cfg PollerConfig, logger *zap.Logger) *Poller {
	if cfg.FetchLimit < cfg.DepthLevels {
		cfg.FetchLimit = cfg.DepthLevels
	}

	return &Poller{
		client:  client,
		sink:    sink,
		symbols: symbols,
		cfg:     cfg,
		limiter: ratelimit.NewRateLimiter(cfg.RequestRate, cfg.RequestRate*2),
		logger:  logger,
	}
}

// SetCallbacks подключает учёт обновлений и ошибок (метрики)
func (p *Poller) SetCallbacks(onUpdate func(trackedTotal int), onError func(symbol string)) {
	p.onUpdate = onUpdate
	p.onError = onError
}

// Run крутит круги опроса до отмены контекста
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("book poller started",
		zap.Int("symbols", len(p.symbols)),
		zap.Int("depth", p.cfg.DepthLevels),
	)

	for {
		for _, symbol := range p.symbols {
			if ctx.Err() != nil {
				p.logger.Info("book poller stopped")
				return
			}

			if err := p.refreshSymbol(ctx, symbol); err != nil {
				if ctx.Err() != nil {
					p.logger.Info("book poller stopped")
					return
				}
				p.logger.Warn("order book fetch failed",
					zap.String("symbol", symbol),
					zap.Error(err),
				)
				if p.onError != nil {
					p.onError(symbol)
				}
				// Backoff после сбоя, затем следующий символ
				if !sleepCtx(ctx, p.cfg.FetchBackoff) {
					return
				}
				continue
			}

			if !sleepCtx(ctx, p.cfg.SymbolDelay) {
				return
			}
		}

		if !sleepCtx(ctx, p.cfg.RoundDelay) {
			return
		}
	}
}

// refreshSymbol загружает стакан символа с retry и публикует снимок
func (p *Poller) refreshSymbol(ctx context.Context, symbol string) error {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = p.cfg.FetchRetries
	retryCfg.RetryIf = retry.RetryIfNotContext

	book, err := retry.DoWithResult(ctx, func() (*OrderBook, error) {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return p.client.GetOrderBook(ctx, symbol, p.cfg.FetchLimit)
	}, retryCfg)
	if err != nil {
		return err
	}

	p.sink.Update(symbol, toSnapshot(book, p.cfg.DepthLevels))
	if p.onUpdate != nil {
		p.onUpdate(p.sink.Size())
	}
	return nil
}

// toSnapshot обрезает стакан до maxLevels на сторону и переводит его
// в неизменяемый снимок для хранилища
func toSnapshot(book *OrderBook, maxLevels int) *models.BookSnapshot {
	bids := book.Bids
	if len(bids) > maxLevels {
		bids = bids[:maxLevels]
	}
	asks := book.Asks
	if len(asks) > maxLevels {
		asks = asks[:maxLevels]
	}

	snapshot := &models.BookSnapshot{
		Symbol:    book.Symbol,
		Bids:      make([]models.PriceLevel, len(bids)),
		Asks:      make([]models.PriceLevel, len(asks)),
		Timestamp: book.Timestamp,
	}
	for i, l := range bids {
		snapshot.Bids[i] = models.PriceLevel{Price: l.Price, Volume: l.Volume}
	}
	for i, l := range asks {
		snapshot.Asks[i] = models.PriceLevel{Price: l.Price, Volume: l.Volume}
	}
	return snapshot
}

// sleepCtx ждёт d с возможностью отмены. false = контекст отменён.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
