package exchange

import (
	"context"
	"time"

	"triarb/internal/models"
)

// Exchange определяет интерфейс биржи, достаточный для треугольного
// сканера: загрузка рынков, снимки стаканов и отправка рыночных ордеров.
type Exchange interface {
	// GetName возвращает имя биржи
	GetName() string

	// LoadMarkets загружает список торгуемых пар
	LoadMarkets(ctx context.Context) ([]models.Market, error)

	// GetOrderBook получает снимок стакана с заданной глубиной
	GetOrderBook(ctx context.Context, symbol string, depth int) (*OrderBook, error)

	// PlaceMarketOrder размещает рыночный ордер.
	// Для side="buy" amount - сумма в котируемом активе,
	// для side="sell" amount - объём в базовом активе.
	PlaceMarketOrder(ctx context.Context, symbol, side string, amount float64) (*Order, error)

	// Close закрывает соединения с биржей
	Close() error
}

// OrderBook представляет снимок стакана ордеров
type OrderBook struct {
	Symbol    string       `json:"symbol"`
	Bids      []PriceLevel `json:"bids"` // заявки на покупку, по убыванию цены
	Asks      []PriceLevel `json:"asks"` // заявки на продажу, по возрастанию цены
	Timestamp time.Time    `json:"timestamp"`
}

// PriceLevel представляет уровень цены в стакане
type PriceLevel struct {
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}

// Order представляет размещённый ордер
type Order struct {
	ID           string    `json:"id"`
	Symbol       string    `json:"symbol"`
	Side         string    `json:"side"` // "buy" или "sell"
	Quantity     float64   `json:"quantity"`
	FilledQty    float64   `json:"filled_qty"`
	AvgFillPrice float64   `json:"avg_fill_price"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// ExchangeError представляет ошибку от биржи
type ExchangeError struct {
	Exchange string
	Code     string
	Message  string
	Original error
}

func (e *ExchangeError) Error() string {
	return e.Exchange + ": " + e.Message
}

// Unwrap возвращает оригинальную ошибку для поддержки errors.Is() и errors.As()
func (e *ExchangeError) Unwrap() error {
	return e.Original
}

// Side constants for orders
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Order status constants
const (
	OrderStatusFilled   = "filled"
	OrderStatusPartial  = "partial"
	OrderStatusRejected = "rejected"
)
