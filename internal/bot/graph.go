package bot

import (
	"triarb/internal/models"
)

// ============================================================
// MarketGraph - граф активов вокруг базового актива
// ============================================================
//
// Назначение:
// Строит направленную структуру смежности по списку торгуемых пар.
// В граф попадают только пары, в которых базовый актив бота является
// base или quote (звезда вокруг hub). Пары между двумя не-hub активами
// игнорируются: каждый цикл обязан начинаться и заканчиваться в hub.
//
// ВАЖНО: порядок рёбер в списках смежности совпадает с порядком
// загрузки рынков. Это делает перечисление треугольников
// детерминированным и воспроизводимым в тестах.

// MarketGraph - списки смежности по активам
type MarketGraph struct {
	hub string

	// asset → рёбра в порядке вставки
	adjacency map[string][]models.Edge

	// порядок появления активов (для детерминированной итерации)
	order []string
}

// NewMarketGraph создаёт пустой граф вокруг hub
func NewMarketGraph(hub string) *MarketGraph {
	return &MarketGraph{
		hub:       hub,
		adjacency: make(map[string][]models.Edge),
	}
}

// BuildMarketGraph строит граф по списку рынков.
// Для каждой активной пары, касающейся hub, вставляются два ребра:
// base→quote "sell" (продаём базовый актив по bid уровням) и
// quote→base "buy" (покупаем базовый актив за котируемый по ask уровням).
func BuildMarketGraph(hub string, markets []models.Market) *MarketGraph {
	g := NewMarketGraph(hub)

	for _, m := range markets {
		if !m.Active {
			continue
		}

		// Только пары вокруг hub
		if m.Base != hub && m.Quote != hub {
			continue
		}

		g.addEdge(m.Base, models.Edge{
			To:        m.Quote,
			Symbol:    m.Symbol,
			Direction: models.DirectionSell,
		})
		g.addEdge(m.Quote, models.Edge{
			To:        m.Base,
			Symbol:    m.Symbol,
			Direction: models.DirectionBuy,
		})
	}

	return g
}

// addEdge добавляет ребро, сохраняя порядок вставки
func (g *MarketGraph) addEdge(from string, edge models.Edge) {
	if _, seen := g.adjacency[from]; !seen {
		g.order = append(g.order, from)
	}
	g.adjacency[from] = append(g.adjacency[from], edge)
}

// Edges возвращает рёбра актива в порядке вставки.
// Возвращаемый слайс не копируется: граф после построения только читается.
func (g *MarketGraph) Edges(asset string) []models.Edge {
	return g.adjacency[asset]
}

// Hub возвращает базовый актив графа
func (g *MarketGraph) Hub() string {
	return g.hub
}

// HasEdge проверяет наличие ребра from→to через конкретную пару
func (g *MarketGraph) HasEdge(from, to, symbol string) bool {
	for _, e := range g.adjacency[from] {
		if e.To == to && e.Symbol == symbol {
			return true
		}
	}
	return false
}

// AssetCount возвращает количество активов в графе
func (g *MarketGraph) AssetCount() int {
	return len(g.adjacency)
}

// ============================================================
// EnumerateTriangles - перечисление замкнутых циклов hub→A→B→hub
// ============================================================

// EnumerateTriangles перечисляет все тройки (hub, A, B) такие, что
// существуют рёбра hub→A, A→B и B→hub, при этом A и B отличны от hub
// и друг от друга. Порядок результата - порядок вложенной итерации
// по спискам смежности. Результат обрезается до maxTriangles первых
// циклов в порядке перечисления: ранжирование по прибыльности
// происходит позже, на каждом тике сканирования, а не здесь.
//
// Структурно различные циклы, использующие одни и те же пары в разных
// направлениях, не дедуплицируются: это разные циклы.
func EnumerateTriangles(g *MarketGraph, maxTriangles int) []models.Triangle {
	var triangles []models.Triangle

	hub := g.Hub()
	for _, first := range g.Edges(hub) {
		a := first.To
		if a == hub {
			continue
		}
		for _, second := range g.Edges(a) {
			b := second.To
			if b == hub || b == a {
				continue
			}
			for _, third := range g.Edges(b) {
				if third.To != hub {
					continue
				}
				triangles = append(triangles, models.NewTriangle(
					hub, a, b,
					[3]string{first.Symbol, second.Symbol, third.Symbol},
					[3]string{first.Direction, second.Direction, third.Direction},
				))
				if len(triangles) >= maxTriangles {
					return triangles
				}
			}
		}
	}

	return triangles
}

// TriangleSymbols возвращает уникальные символы пар, задействованные
// в треугольниках, в порядке первого появления. Используется поллером
// для ограничения круга опрашиваемых стаканов.
func TriangleSymbols(triangles []models.Triangle) []string {
	seen := make(map[string]struct{})
	var symbols []string

	for _, t := range triangles {
		for _, s := range t.Pairs {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			symbols = append(symbols, s)
		}
	}

	return symbols
}
