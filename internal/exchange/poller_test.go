package exchange

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"triarb/internal/models"
)

// ============================================================
// Poller Tests
// ============================================================

// fakeExchange отдаёт заранее заданные стаканы; символы из failing
// всегда падают
type fakeExchange struct {
	books   map[string]*OrderBook
	failing map[string]bool

	mu    sync.Mutex
	calls map[string]int
}

func newFakeExchange() *fakeExchange {
	return &fakeExchange{
		books:   make(map[string]*OrderBook),
		failing: make(map[string]bool),
		calls:   make(map[string]int),
	}
}

func (f *fakeExchange) GetName() string { return "fake" }

func (f *fakeExchange) LoadMarkets(ctx context.Context) ([]models.Market, error) {
	return nil, nil
}

func (f *fakeExchange) GetOrderBook(ctx context.Context, symbol string, depth int) (*OrderBook, error) {
	f.mu.Lock()
	f.calls[symbol]++
	f.mu.Unlock()

	if f.failing[symbol] {
		return nil, errors.New("fetch failed")
	}
	book, ok := f.books[symbol]
	if !ok {
		return nil, errors.New("unknown symbol")
	}
	return book, nil
}

func (f *fakeExchange) PlaceMarketOrder(ctx context.Context, symbol, side string, amount float64) (*Order, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeExchange) Close() error { return nil }

func (f *fakeExchange) callCount(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[symbol]
}

// fakeSink собирает опубликованные снимки
type fakeSink struct {
	mu    sync.Mutex
	books map[string]*models.BookSnapshot
}

func newFakeSink() *fakeSink {
	return &fakeSink{books: make(map[string]*models.BookSnapshot)}
}

func (s *fakeSink) Update(symbol string, snapshot *models.BookSnapshot) {
	s.mu.Lock()
	s.books[symbol] = snapshot
	s.mu.Unlock()
}

func (s *fakeSink) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.books)
}

func (s *fakeSink) get(symbol string) *models.BookSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.books[symbol]
}

// fastPollerConfig - конфигурация без пауз для тестов
func fastPollerConfig() PollerConfig {
	return PollerConfig{
		DepthLevels:  10,
		FetchLimit:   20,
		SymbolDelay:  0,
		RoundDelay:   0,
		FetchBackoff: 0,
		FetchRetries: 1,
		RequestRate:  10000,
	}
}

// levels генерирует n уровней стакана
func levels(n int, start float64) []PriceLevel {
	out := make([]PriceLevel, n)
	for i := range out {
		out[i] = PriceLevel{Price: start + float64(i), Volume: 1}
	}
	return out
}

func TestPollerRefreshSymbol(t *testing.T) {
	client := newFakeExchange()
	client.books["BTCUSDT"] = &OrderBook{
		Symbol:    "BTCUSDT",
		Bids:      levels(20, 19980),
		Asks:      levels(20, 20001),
		Timestamp: time.Now(),
	}

	sink := newFakeSink()
	p := NewPoller(client, sink, []string{"BTCUSDT"}, fastPollerConfig(), zap.NewNop())

	if err := p.refreshSymbol(context.Background(), "BTCUSDT"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := sink.get("BTCUSDT")
	if snap == nil {
		t.Fatal("expected snapshot published to sink")
	}

	// Снимок обрезан до DepthLevels на сторону
	if len(snap.Bids) != 10 || len(snap.Asks) != 10 {
		t.Errorf("expected 10 levels per side, got %d/%d", len(snap.Bids), len(snap.Asks))
	}
	if snap.Bids[0].Price != 19980 {
		t.Errorf("expected first bid preserved, got %v", snap.Bids[0].Price)
	}
}

func TestPollerSkipsFailingSymbol(t *testing.T) {
	client := newFakeExchange()
	client.failing["BADUSDT"] = true
	client.books["ETHUSDT"] = &OrderBook{
		Symbol:    "ETHUSDT",
		Bids:      levels(5, 1050),
		Asks:      levels(5, 1051),
		Timestamp: time.Now(),
	}

	sink := newFakeSink()
	p := NewPoller(client, sink, []string{"BADUSDT", "ETHUSDT"}, fastPollerConfig(), zap.NewNop())

	var errorsSeen []string
	var mu sync.Mutex
	p.SetCallbacks(nil, func(symbol string) {
		mu.Lock()
		errorsSeen = append(errorsSeen, symbol)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	// Ждём пока сбойный символ не остановил круг: здоровый обновился
	deadline := time.After(2 * time.Second)
	for sink.get("ETHUSDT") == nil {
		select {
		case <-deadline:
			t.Fatal("healthy symbol was never refreshed")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done

	if sink.get("BADUSDT") != nil {
		t.Error("failing symbol must not publish snapshots")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(errorsSeen) == 0 || errorsSeen[0] != "BADUSDT" {
		t.Errorf("expected error callback for BADUSDT, got %v", errorsSeen)
	}
}

func TestPollerStopsOnCancel(t *testing.T) {
	client := newFakeExchange()
	client.books["BTCUSDT"] = &OrderBook{
		Symbol:    "BTCUSDT",
		Bids:      levels(5, 19999),
		Asks:      levels(5, 20001),
		Timestamp: time.Now(),
	}

	sink := newFakeSink()
	p := NewPoller(client, sink, []string{"BTCUSDT"}, fastPollerConfig(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for client.callCount("BTCUSDT") == 0 {
		select {
		case <-deadline:
			t.Fatal("poller never fetched")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after context cancellation")
	}
}

func TestPollerUpdateCallback(t *testing.T) {
	client := newFakeExchange()
	client.books["BTCUSDT"] = &OrderBook{
		Symbol:    "BTCUSDT",
		Bids:      levels(5, 19999),
		Asks:      levels(5, 20001),
		Timestamp: time.Now(),
	}

	sink := newFakeSink()
	p := NewPoller(client, sink, []string{"BTCUSDT"}, fastPollerConfig(), zap.NewNop())

	var tracked int
	p.SetCallbacks(func(trackedTotal int) { tracked = trackedTotal }, nil)

	if err := p.refreshSymbol(context.Background(), "BTCUSDT"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tracked != 1 {
		t.Errorf("expected tracked total 1, got %d", tracked)
	}
}

func TestPollerFetchLimitFloor(t *testing.T) {
	cfg := fastPollerConfig()
	cfg.DepthLevels = 50
	cfg.FetchLimit = 20

	p := NewPoller(newFakeExchange(), newFakeSink(), nil, cfg, zap.NewNop())

	// Запрашивать меньше, чем храним, бессмысленно
	if p.cfg.FetchLimit != 50 {
		t.Errorf("expected fetch limit raised to 50, got %d", p.cfg.FetchLimit)
	}
}
