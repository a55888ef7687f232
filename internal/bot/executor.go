package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"triarb/internal/exchange"
	"triarb/internal/models"
)

// historyCapacity - сколько последних сделок хранится в памяти.
// При переполнении вытесняется самая старая.
const historyCapacity = 100

// ============================================================
// TradeLog - ограниченная история сделок + накопительная статистика
// ============================================================
//
// История и статистика мутируются исполнителем и конкурентно читаются
// status-поверхностью, поэтому обе живут под одним мьютексом.
// Дисциплина: копируем под коротким lock, считаем снаружи.

// TradeLog хранит последние сделки (новые первыми) и счётчики
type TradeLog struct {
	trades []models.Trade
	stats  models.Stats
	mu     sync.Mutex
}

// NewTradeLog создаёт пустой журнал
func NewTradeLog() *TradeLog {
	return &TradeLog{
		trades: make([]models.Trade, 0, historyCapacity),
	}
}

// Record добавляет сделку в начало истории и обновляет статистику.
// Статистика отражает ВСЕ сделки за время работы, а не только
// удержанные в истории.
func (l *TradeLog) Record(trade models.Trade) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.trades) < historyCapacity {
		l.trades = append(l.trades, models.Trade{})
	}
	copy(l.trades[1:], l.trades)
	l.trades[0] = trade

	l.stats.TotalTrades++
	if trade.Profit > 0 {
		l.stats.Profitable++
		l.stats.TotalProfit += trade.Profit
		if trade.Profit > l.stats.BestTrade {
			l.stats.BestTrade = trade.Profit
		}
	}
}

// Recent возвращает копию последних n сделок, новые первыми.
// n <= 0 или n больше размера истории - вся история.
func (l *TradeLog) Recent(n int) []models.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || n > len(l.trades) {
		n = len(l.trades)
	}

	out := make([]models.Trade, n)
	copy(out, l.trades[:n])
	return out
}

// Stats возвращает снимок статистики
func (l *TradeLog) Stats() models.Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// ============================================================
// Executor - превращает возможность в записанную сделку
// ============================================================

// LegSubmitter - внешняя возможность отправки одной ноги цикла
type LegSubmitter interface {
	PlaceMarketOrder(ctx context.Context, symbol, side string, amount float64) (*exchange.Order, error)
}

// TradeNotifier - push-уведомления dashboard-клиентам о сделках
type TradeNotifier interface {
	BroadcastTradeExecuted(trade models.Trade)
	BroadcastStatsUpdate(stats models.Stats)
}

// TradeJournal - опциональная запись сделок в постоянное хранилище
type TradeJournal interface {
	Insert(trade *models.Trade) error
}

// Executor исполняет возможности в одном из двух режимов:
//   - dry run: сделка записывается сразу, внешних вызовов нет;
//   - live: три ноги отправляются последовательно с небольшой паузой;
//     ошибка любой ноги прерывает оставшиеся, сделка получает статус
//     failed с причиной.
// В обоих режимах сделка попадает в историю и статистику.
type Executor struct {
	submitter LegSubmitter
	log       *TradeLog
	notifier  TradeNotifier // может быть nil
	journal   TradeJournal  // может быть nil
	logger    *zap.Logger

	dryRun   bool
	legDelay time.Duration
}

// NewExecutor создаёт исполнителя. notifier и journal опциональны.
func NewExecutor(submitter LegSubmitter, log *TradeLog, dryRun bool, legDelay time.Duration, logger *zap.Logger) *Executor {
	return &Executor{
		submitter: submitter,
		log:       log,
		dryRun:    dryRun,
		legDelay:  legDelay,
		logger:    logger,
	}
}

// SetNotifier подключает push-уведомления
func (e *Executor) SetNotifier(n TradeNotifier) {
	e.notifier = n
}

// SetJournal подключает постоянный журнал сделок
func (e *Executor) SetJournal(j TradeJournal) {
	e.journal = j
}

// Execute превращает возможность в сделку и записывает её.
// Никогда не возвращает ошибку наружу: неудача исполнения - это
// сделка со статусом failed, а не сбой планировщика.
func (e *Executor) Execute(ctx context.Context, opp *models.Opportunity) models.Trade {
	trade := models.Trade{
		ID:        newTradeID(time.Now()),
		Triangle:  opp.Triangle.Display,
		Pairs:     opp.Triangle.Pairs,
		ProfitPct: opp.ProfitPct,
		Profit:    opp.Profit,
		Status:    models.TradeStatusDryRun,
		Timestamp: time.Now(),
	}

	if e.dryRun {
		e.logger.Info("dry run trade recorded",
			zap.String("id", trade.ID),
			zap.String("triangle", trade.Triangle),
			zap.Float64("profit_pct", trade.ProfitPct),
			zap.Float64("profit", trade.Profit),
		)
	} else {
		trade.Status = models.TradeStatusExecuted
		if err := e.submitLegs(ctx, opp); err != nil {
			trade.Status = models.TradeStatusFailed
			trade.Error = err.Error()
			trade.Profit = 0
			trade.ProfitPct = 0
			e.logger.Error("trade failed",
				zap.String("id", trade.ID),
				zap.String("triangle", trade.Triangle),
				zap.Error(err),
			)
		} else {
			e.logger.Info("trade executed",
				zap.String("id", trade.ID),
				zap.String("triangle", trade.Triangle),
				zap.Float64("profit_pct", trade.ProfitPct),
			)
		}
	}

	e.record(trade)
	return trade
}

// submitLegs последовательно отправляет три ноги цикла.
// Размер каждой ноги берётся из симуляции, породившей возможность.
func (e *Executor) submitLegs(ctx context.Context, opp *models.Opportunity) error {
	for i := 0; i < 3; i++ {
		pair := opp.Triangle.Pairs[i]
		side := opp.Triangle.Directions[i]

		if _, err := e.submitter.PlaceMarketOrder(ctx, pair, side, opp.LegAmounts[i]); err != nil {
			return fmt.Errorf("leg %d (%s %s): %w", i+1, side, pair, err)
		}

		// Небольшая пауза между ногами, чтобы биржа успела провести ордер
		if i < 2 {
			select {
			case <-time.After(e.legDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

// ID сделки: "TR" + unix секунда. Несколько сделок в одну секунду
// получают порядковый суффикс, чтобы ID оставался уникальным.
var tradeIDState struct {
	mu  sync.Mutex
	sec int64
	seq int
}

func newTradeID(now time.Time) string {
	tradeIDState.mu.Lock()
	defer tradeIDState.mu.Unlock()

	sec := now.Unix()
	if sec == tradeIDState.sec {
		tradeIDState.seq++
		return fmt.Sprintf("TR%d-%d", sec, tradeIDState.seq)
	}
	tradeIDState.sec = sec
	tradeIDState.seq = 0
	return fmt.Sprintf("TR%d", sec)
}

// record кладёт сделку в историю, обновляет метрики и рассылает
// уведомления. Ошибка записи в журнал логируется и не влияет на бота.
func (e *Executor) record(trade models.Trade) {
	e.log.Record(trade)
	RecordTrade(trade.Status, trade.Profit)

	if e.journal != nil {
		if err := e.journal.Insert(&trade); err != nil {
			e.logger.Warn("trade journal insert failed",
				zap.String("id", trade.ID),
				zap.Error(err),
			)
		}
	}

	if e.notifier != nil {
		e.notifier.BroadcastTradeExecuted(trade)
		e.notifier.BroadcastStatsUpdate(e.log.Stats())
	}
}
