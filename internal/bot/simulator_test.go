package bot

import (
	"math"
	"testing"

	"triarb/internal/models"
)

// ============================================================
// Simulator Tests
// ============================================================

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// btcEthTriangle - цикл USDT→BTC→ETH→USDT
func btcEthTriangle() models.Triangle {
	return models.NewTriangle("USDT", "BTC", "ETH",
		[3]string{"BTCUSDT", "ETHBTC", "ETHUSDT"},
		[3]string{models.DirectionBuy, models.DirectionBuy, models.DirectionSell},
	)
}

// fillStore наполняет хранилище стаканами для btcEthTriangle
func fillStore(store *OrderBookStore) {
	store.Update("BTCUSDT", &models.BookSnapshot{
		Symbol: "BTCUSDT",
		Asks:   []models.PriceLevel{{Price: 20000, Volume: 1}},
		Bids:   []models.PriceLevel{{Price: 19999, Volume: 1}},
	})
	store.Update("ETHBTC", &models.BookSnapshot{
		Symbol: "ETHBTC",
		Asks:   []models.PriceLevel{{Price: 0.05, Volume: 10}},
		Bids:   []models.PriceLevel{{Price: 0.049, Volume: 10}},
	})
	store.Update("ETHUSDT", &models.BookSnapshot{
		Symbol: "ETHUSDT",
		Asks:   []models.PriceLevel{{Price: 1051, Volume: 10}},
		Bids:   []models.PriceLevel{{Price: 1050, Volume: 10}},
	})
}

// Сквозной прогон цикла с комиссией 0.1% на ногу:
// 3 USDT → 0.00014985 BTC → 0.002994003 ETH → 3.14055944685 USDT
func TestSimulateProfitableCycle(t *testing.T) {
	store := NewOrderBookStore()
	fillStore(store)

	sim := NewSimulator(store, 0.001, 0.3)

	opp, ok := sim.Simulate(btcEthTriangle(), 3.0)
	if !ok {
		t.Fatal("expected opportunity, got none")
	}

	if !approxEqual(opp.RawProfit, 0.14055944685, 1e-9) {
		t.Errorf("expected raw profit 0.14055944685, got %.12f", opp.RawProfit)
	}
	if !approxEqual(opp.RawProfitPct, 4.685314895, 1e-6) {
		t.Errorf("expected raw profit pct 4.685314895, got %.9f", opp.RawProfitPct)
	}

	// Отображаемые значения округлены: процент до 3 знаков, прибыль до 2
	if opp.ProfitPct != 4.685 {
		t.Errorf("expected display pct 4.685, got %v", opp.ProfitPct)
	}
	if opp.Profit != 0.14 {
		t.Errorf("expected display profit 0.14, got %v", opp.Profit)
	}

	// Размеры ног - вход каждой ноги до комиссии следующей
	if opp.LegAmounts[0] != 3.0 {
		t.Errorf("expected leg 1 amount 3.0, got %v", opp.LegAmounts[0])
	}
	if !approxEqual(opp.LegAmounts[1], 0.00014985, 1e-12) {
		t.Errorf("expected leg 2 amount 0.00014985, got %.12f", opp.LegAmounts[1])
	}
	if !approxEqual(opp.LegAmounts[2], 0.002994003, 1e-12) {
		t.Errorf("expected leg 3 amount 0.002994003, got %.12f", opp.LegAmounts[2])
	}
	if opp.StartAmount != 3.0 {
		t.Errorf("expected start amount 3.0, got %v", opp.StartAmount)
	}
}

func TestSimulateMissingSnapshot(t *testing.T) {
	store := NewOrderBookStore()
	fillStore(store)

	sim := NewSimulator(store, 0.001, 0.3)

	// Убираем среднюю ногу: данных нет - возможности нет
	empty := NewOrderBookStore()
	empty.Update("BTCUSDT", &models.BookSnapshot{
		Symbol: "BTCUSDT",
		Asks:   []models.PriceLevel{{Price: 20000, Volume: 1}},
	})

	simEmpty := NewSimulator(empty, 0.001, 0.3)
	if _, ok := simEmpty.Simulate(btcEthTriangle(), 3.0); ok {
		t.Error("expected no opportunity when a snapshot is missing")
	}

	// Контроль: с полными данными возможность есть
	if _, ok := sim.Simulate(btcEthTriangle(), 3.0); !ok {
		t.Error("expected opportunity with full data")
	}
}

func TestSimulateInsufficientDepth(t *testing.T) {
	store := NewOrderBookStore()
	fillStore(store)

	// Первая нога: на 3 USDT доступно только 0.0001 BTC по 20000
	store.Update("BTCUSDT", &models.BookSnapshot{
		Symbol: "BTCUSDT",
		Asks:   []models.PriceLevel{{Price: 20000, Volume: 0.0001}},
	})

	sim := NewSimulator(store, 0.001, 0.3)
	if _, ok := sim.Simulate(btcEthTriangle(), 3.0); ok {
		t.Error("expected no opportunity with insufficient depth")
	}
}

func TestSimulateBelowMinProfit(t *testing.T) {
	store := NewOrderBookStore()
	fillStore(store)

	// Порог выше фактической прибыли ~4.69%
	sim := NewSimulator(store, 0.001, 10.0)
	if _, ok := sim.Simulate(btcEthTriangle(), 3.0); ok {
		t.Error("expected opportunity below threshold to be rejected")
	}
}

func TestSimulateZeroFee(t *testing.T) {
	store := NewOrderBookStore()
	fillStore(store)

	sim := NewSimulator(store, 0, 0.3)

	opp, ok := sim.Simulate(btcEthTriangle(), 3.0)
	if !ok {
		t.Fatal("expected opportunity, got none")
	}

	// Без комиссии: 3/20000/0.05*1050 = 3.15
	if !approxEqual(opp.RawProfit, 0.15, 1e-9) {
		t.Errorf("expected raw profit 0.15 without fees, got %.12f", opp.RawProfit)
	}
}

// ============================================================
// Обход стакана
// ============================================================

func TestWalkBids(t *testing.T) {
	tests := []struct {
		name     string
		bids     []models.PriceLevel
		amount   float64
		expected float64
		filled   bool
	}{
		{
			name:     "single level covers all",
			bids:     []models.PriceLevel{{Price: 100, Volume: 5}},
			amount:   2,
			expected: 200,
			filled:   true,
		},
		{
			name: "spans two levels",
			bids: []models.PriceLevel{
				{Price: 100, Volume: 1},
				{Price: 99, Volume: 5},
			},
			amount:   2,
			expected: 100 + 99, // 1 по 100 + 1 по 99
			filled:   true,
		},
		{
			name:     "insufficient depth",
			bids:     []models.PriceLevel{{Price: 100, Volume: 1}},
			amount:   2,
			expected: 0,
			filled:   false,
		},
		{
			name:     "empty book",
			bids:     nil,
			amount:   1,
			expected: 0,
			filled:   false,
		},
		{
			// Остаток меньше эпсилона считается исполненным
			name:     "residual below epsilon",
			bids:     []models.PriceLevel{{Price: 1, Volume: 0.999995}},
			amount:   1,
			expected: 0.999995,
			filled:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, filled := walkBids(tt.bids, tt.amount)
			if filled != tt.filled {
				t.Fatalf("expected filled=%v, got %v", tt.filled, filled)
			}
			if !approxEqual(got, tt.expected, 1e-9) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestWalkAsks(t *testing.T) {
	tests := []struct {
		name     string
		asks     []models.PriceLevel
		amount   float64
		expected float64
		filled   bool
	}{
		{
			name:     "single level covers all",
			asks:     []models.PriceLevel{{Price: 100, Volume: 5}},
			amount:   200,
			expected: 2,
			filled:   true,
		},
		{
			name: "spans two levels",
			asks: []models.PriceLevel{
				{Price: 100, Volume: 1},
				{Price: 101, Volume: 5},
			},
			amount:   201,
			expected: 1 + 1, // 1 по 100, затем 101 USDT по 101
			filled:   true,
		},
		{
			name:     "insufficient depth",
			asks:     []models.PriceLevel{{Price: 100, Volume: 1}},
			amount:   200,
			expected: 0,
			filled:   false,
		},
		{
			name:     "empty book",
			asks:     nil,
			amount:   1,
			expected: 0,
			filled:   false,
		},
		{
			// Остаток меньше эпсилона считается исполненным
			name:     "residual below epsilon",
			asks:     []models.PriceLevel{{Price: 1, Volume: 0.999995}},
			amount:   1,
			expected: 0.999995,
			filled:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, filled := walkAsks(tt.asks, tt.amount)
			if filled != tt.filled {
				t.Fatalf("expected filled=%v, got %v", tt.filled, filled)
			}
			if !approxEqual(got, tt.expected, 1e-9) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func BenchmarkSimulate(b *testing.B) {
	store := NewOrderBookStore()
	fillStore(store)
	sim := NewSimulator(store, 0.001, 0.3)
	triangle := btcEthTriangle()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sim.Simulate(triangle, 3.0)
	}
}
