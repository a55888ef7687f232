package bot

import (
	"time"

	"triarb/internal/models"
	"triarb/pkg/utils"
)

// fillEpsilon - допустимый неисполненный остаток после обхода стакана.
// Остаток больше эпсилона означает недостаточную глубину, и весь цикл
// признаётся неоцениваемым на этом тике.
const fillEpsilon = 1e-5

// Точность округления для отображения (само ранжирование и сравнение
// с порогом идут по полной точности)
const (
	profitPctPrecision = 3
	profitPrecision    = 2
)

// Simulator оценивает реализуемую прибыль цикла по живой глубине стаканов
//
// Модель комиссии: фиксированная пропорциональная ставка на каждую ногу,
// применяется к выходу ноги перед подачей на вход следующей. Это
// сознательное упрощение: реальные биржи публикуют по-парные ступенчатые
// комиссии.
type Simulator struct {
	store        *OrderBookStore
	feeRate      float64 // ставка на одну ногу, 0.001 = 0.1%
	minProfitPct float64 // порог прибыли в процентах
}

// NewSimulator создаёт симулятор поверх хранилища стаканов
func NewSimulator(store *OrderBookStore, feeRate, minProfitPct float64) *Simulator {
	return &Simulator{
		store:        store,
		feeRate:      feeRate,
		minProfitPct: minProfitPct,
	}
}

// Simulate прогоняет startAmount через три ноги цикла.
//
// Возвращает (nil, false) если:
//   - по любой из пар нет снимка стакана (данные ещё не пришли);
//   - глубины стакана не хватает для полного исполнения ноги;
//   - итоговая прибыль ниже порога.
// Все три случая - "возможности сейчас нет", не ошибки.
func (s *Simulator) Simulate(triangle models.Triangle, startAmount float64) (*models.Opportunity, bool) {
	current := startAmount
	var legAmounts [3]float64

	for i := 0; i < 3; i++ {
		book, ok := s.store.Get(triangle.Pairs[i])
		if !ok {
			return nil, false
		}

		legAmounts[i] = current

		var out float64
		var filled bool
		if triangle.Directions[i] == models.DirectionSell {
			out, filled = walkBids(book.Bids, current)
		} else {
			out, filled = walkAsks(book.Asks, current)
		}
		if !filled {
			return nil, false
		}

		// Комиссия снимается с выхода ноги
		current = out * (1 - s.feeRate)
	}

	rawProfit := current - startAmount
	rawProfitPct := rawProfit / startAmount * 100

	if rawProfitPct < s.minProfitPct {
		return nil, false
	}

	return &models.Opportunity{
		Triangle:     triangle,
		Profit:       utils.Round(rawProfit, profitPrecision),
		ProfitPct:    utils.Round(rawProfitPct, profitPctPrecision),
		RawProfit:    rawProfit,
		RawProfitPct: rawProfitPct,
		StartAmount:  startAmount,
		LegAmounts:   legAmounts,
		Timestamp:    time.Now().Unix(),
	}, true
}

// walkBids моделирует продажу amount базового актива по bid уровням
// (от лучшей цены вниз). Возвращает полученную сумму котируемого актива
// и признак полного исполнения.
func walkBids(bids []models.PriceLevel, amount float64) (float64, bool) {
	remaining := amount
	received := 0.0

	for _, level := range bids {
		if level.Volume >= remaining {
			received += remaining * level.Price
			remaining = 0
			break
		}
		received += level.Volume * level.Price
		remaining -= level.Volume
	}

	if remaining > fillEpsilon {
		return 0, false
	}
	return received, true
}

// walkAsks моделирует покупку базового актива на amount котируемого
// актива по ask уровням (от лучшей цены вверх). Возвращает приобретённый
// объём базового актива и признак полного исполнения.
func walkAsks(asks []models.PriceLevel, amount float64) (float64, bool) {
	remaining := amount
	acquired := 0.0

	for _, level := range asks {
		cost := level.Price * level.Volume
		if cost <= remaining {
			acquired += level.Volume
			remaining -= cost
		} else {
			acquired += remaining / level.Price
			remaining = 0
			break
		}
	}

	if remaining > fillEpsilon {
		return 0, false
	}
	return acquired, true
}
