package bot

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"triarb/internal/models"
)

// Scheduler - цикл сканирования.
//
// На каждом тике симулирует все известные треугольники с настроенной
// суммой входа, выбирает возможность с максимальным процентом прибыли
// и передаёт её исполнителю, если с прошлого исполнения прошло не
// меньше cooldown. Тик без подходящей возможности или внутри окна
// cooldown просто завершается - это намеренный debounce, не сбой.
//
// Решение "cooldown истёк + застолбить окно" принимается одним
// compare-and-swap по наносекундной метке: даже если медленный тик
// растянется дольше окна cooldown и пересечётся со следующим, два
// исполнения за одно окно невозможны.
type Scheduler struct {
	triangles []models.Triangle
	simulator *Simulator
	executor  *Executor
	logger    *zap.Logger

	tradeAmount float64
	interval    time.Duration
	cooldown    time.Duration

	// unix-наносекунды последнего исполнения
	lastTrigger atomic.Int64

	scanCount atomic.Int64
}

// NewScheduler создаёт планировщик. Список треугольников после
// создания только читается и не требует блокировок.
func NewScheduler(
	triangles []models.Triangle,
	simulator *Simulator,
	executor *Executor,
	tradeAmount float64,
	interval, cooldown time.Duration,
	logger *zap.Logger,
) *Scheduler {
	s := &Scheduler{
		triangles:   triangles,
		simulator:   simulator,
		executor:    executor,
		logger:      logger,
		tradeAmount: tradeAmount,
		interval:    interval,
		cooldown:    cooldown,
	}
	// Стартуем с "давно в прошлом", чтобы первый тик мог исполниться
	s.lastTrigger.Store(time.Now().Add(-cooldown).UnixNano())
	return s
}

// Run крутит тики до отмены контекста. Завершение останавливает новые
// тики; начатое исполнение доводится до конца (Scan синхронен).
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler started",
		zap.Int("triangles", len(s.triangles)),
		zap.Duration("interval", s.interval),
		zap.Duration("cooldown", s.cooldown),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped",
				zap.Int64("scans", s.scanCount.Load()),
			)
			return
		case <-ticker.C:
			s.Scan(ctx)
		}
	}
}

// Scan выполняет один тик: оценка всех треугольников, выбор лучшей
// возможности, исполнение под cooldown-гейтом. Возвращает исполненную
// сделку и признак исполнения (для тестов и метрик).
func (s *Scheduler) Scan(ctx context.Context) (models.Trade, bool) {
	n := s.scanCount.Add(1)
	started := time.Now()

	best := s.findBest()
	ObserveScan(time.Since(started), len(s.triangles))

	if best == nil {
		if n%100 == 0 {
			s.logger.Debug("no opportunities", zap.Int64("scan", n))
		}
		return models.Trade{}, false
	}

	RecordOpportunity(best.Triangle.Display)

	if !s.tryAcquire(time.Now()) {
		// Окно cooldown ещё не истекло - debounce
		return models.Trade{}, false
	}

	s.logger.Info("opportunity found",
		zap.Int64("scan", n),
		zap.String("triangle", best.Triangle.Display),
		zap.Float64("profit_pct", best.ProfitPct),
		zap.Float64("profit", best.Profit),
	)

	return s.executor.Execute(ctx, best), true
}

// findBest симулирует все треугольники и возвращает возможность с
// максимальным процентом прибыли (по полной точности) или nil.
func (s *Scheduler) findBest() *models.Opportunity {
	var best *models.Opportunity

	for _, t := range s.triangles {
		opp, ok := s.simulator.Simulate(t, s.tradeAmount)
		if !ok {
			continue
		}
		if best == nil || opp.RawProfitPct > best.RawProfitPct {
			best = opp
		}
	}

	return best
}

// tryAcquire атомарно проверяет cooldown и застолбляет окно.
// CAS-петля: при гонке двух тиков ровно один выигрывает окно.
func (s *Scheduler) tryAcquire(now time.Time) bool {
	for {
		last := s.lastTrigger.Load()
		if now.UnixNano()-last < s.cooldown.Nanoseconds() {
			return false
		}
		if s.lastTrigger.CompareAndSwap(last, now.UnixNano()) {
			return true
		}
	}
}

// ScanCount возвращает количество выполненных тиков
func (s *Scheduler) ScanCount() int64 {
	return s.scanCount.Load()
}

// TriangleCount возвращает размер вселенной треугольников
func (s *Scheduler) TriangleCount() int {
	return len(s.triangles)
}
