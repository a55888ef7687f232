package models

import "fmt"

// Market - торгуемая пара на бирже.
// Неизменяема после загрузки списка рынков.
type Market struct {
	Symbol string `json:"symbol"` // идентификатор пары, например BTCUSDT
	Base   string `json:"base"`   // базовый актив
	Quote  string `json:"quote"`  // котируемый актив
	Active bool   `json:"active"` // допущена ли пара к торгам
}

// Направления ноги цикла.
// "buy" - тратим котируемый актив, получаем базовый (идём по ask уровням).
// "sell" - тратим базовый актив, получаем котируемый (идём по bid уровням).
const (
	DirectionBuy  = "buy"
	DirectionSell = "sell"
)

// Edge - направленное ребро графа активов: конвертация одного актива
// в соседний через конкретную пару.
type Edge struct {
	To        string // актив, который получаем
	Symbol    string // пара, через которую идёт конвертация
	Direction string // DirectionBuy или DirectionSell
}

// Triangle - замкнутый цикл из трёх ног через базовый актив:
// hub → A → B → hub. Пары и направления идут в порядке обхода.
type Triangle struct {
	Path       [3]string `json:"path"`       // [hub, A, B]
	Pairs      [3]string `json:"pairs"`      // символы трёх ног
	Directions [3]string `json:"directions"` // направления трёх ног
	Display    string    `json:"display"`    // "USDT → BTC → ETH → USDT"
}

// NewTriangle собирает треугольник с каноничной строкой отображения
func NewTriangle(hub, a, b string, pairs, directions [3]string) Triangle {
	return Triangle{
		Path:       [3]string{hub, a, b},
		Pairs:      pairs,
		Directions: directions,
		Display:    fmt.Sprintf("%s → %s → %s → %s", hub, a, b, hub),
	}
}

// Opportunity - найденная возможность в рамках одного тика сканирования.
// RawProfit/RawProfitPct хранят полную точность для ранжирования и порога;
// Profit/ProfitPct округлены только для отображения.
type Opportunity struct {
	Triangle     Triangle  `json:"triangle"`
	Profit       float64   `json:"profit"`     // прибыль в hub-активе, округлена до 2 знаков
	ProfitPct    float64   `json:"profit_pct"` // прибыль в процентах, округлена до 3 знаков
	RawProfit    float64   `json:"-"`
	RawProfitPct float64   `json:"-"`
	StartAmount  float64   `json:"start_amount"`
	LegAmounts   [3]float64 `json:"-"` // входная сумма каждой ноги (для live исполнения)
	Timestamp    int64     `json:"timestamp"` // unix-время оценки
}
