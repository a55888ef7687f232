package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"triarb/internal/models"
)

const (
	binanceBaseURL    = "https://api.binance.com"
	binanceTestnetURL = "https://testnet.binance.vision"
)

// json-iterator в горячем пути разбора стаканов: ответы /depth
// приходят каждые десятки миллисекунд
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Binance реализует интерфейс Exchange для спотового рынка Binance
type Binance struct {
	apiKey    string
	secretKey string
	baseURL   string

	httpClient *http.Client
}

// NewBinance создаёт клиент Binance. testnet=true переключает на
// тестовую площадку (ключи боевого аккаунта там не работают).
// Использует глобальный HTTP клиент с connection pooling.
func NewBinance(apiKey, secretKey string, testnet bool) *Binance {
	baseURL := binanceBaseURL
	if testnet {
		baseURL = binanceTestnetURL
	}

	return &Binance{
		apiKey:     apiKey,
		secretKey:  secretKey,
		baseURL:    baseURL,
		httpClient: GetGlobalHTTPClient().GetClient(),
	}
}

func (b *Binance) GetName() string {
	return "binance"
}

// sign создаёт подпись HMAC-SHA256 по строке запроса
func (b *Binance) sign(queryString string) string {
	h := hmac.New(sha256.New, []byte(b.secretKey))
	h.Write([]byte(queryString))
	return hex.EncodeToString(h.Sum(nil))
}

// doRequest выполняет HTTP запрос к Binance API.
// Для signed запросов добавляет timestamp и подпись к query string.
func (b *Binance) doRequest(ctx context.Context, method, endpoint string, params map[string]string, signed bool) ([]byte, error) {
	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}

	if signed {
		query.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
		query.Set("recvWindow", "5000")
	}

	queryString := query.Encode()
	if signed {
		queryString += "&signature=" + b.sign(queryString)
	}

	var reqURL string
	var reqBody string
	if method == http.MethodGet {
		reqURL = b.baseURL + endpoint
		if queryString != "" {
			reqURL += "?" + queryString
		}
	} else {
		reqURL = b.baseURL + endpoint
		reqBody = queryString
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, strings.NewReader(reqBody))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if b.apiKey != "" {
		req.Header.Set("X-MBX-APIKEY", b.apiKey)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, &ExchangeError{
			Exchange: "binance",
			Message:  "request failed",
			Original: err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		// Binance отдаёт {"code":-1121,"msg":"Invalid symbol."}
		var apiErr struct {
			Code int    `json:"code"`
			Msg  string `json:"msg"`
		}
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Msg != "" {
			return nil, &ExchangeError{
				Exchange: "binance",
				Code:     strconv.Itoa(apiErr.Code),
				Message:  apiErr.Msg,
			}
		}
		return nil, &ExchangeError{
			Exchange: "binance",
			Code:     strconv.Itoa(resp.StatusCode),
			Message:  "unexpected HTTP status " + resp.Status,
		}
	}

	return body, nil
}

// LoadMarkets загружает спотовые пары через /api/v3/exchangeInfo.
// Active=true только у пар со статусом TRADING.
func (b *Binance) LoadMarkets(ctx context.Context) ([]models.Market, error) {
	body, err := b.doRequest(ctx, http.MethodGet, "/api/v3/exchangeInfo", nil, false)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Symbols []struct {
			Symbol     string `json:"symbol"`
			Status     string `json:"status"`
			BaseAsset  string `json:"baseAsset"`
			QuoteAsset string `json:"quoteAsset"`
		} `json:"symbols"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	markets := make([]models.Market, 0, len(resp.Symbols))
	for _, s := range resp.Symbols {
		markets = append(markets, models.Market{
			Symbol: s.Symbol,
			Base:   s.BaseAsset,
			Quote:  s.QuoteAsset,
			Active: s.Status == "TRADING",
		})
	}

	return markets, nil
}

// GetOrderBook получает снимок стакана через /api/v3/depth.
// Binance отдаёт уровни строками: [["цена","объём"], ...].
func (b *Binance) GetOrderBook(ctx context.Context, symbol string, depth int) (*OrderBook, error) {
	if depth > 5000 {
		depth = 5000
	}

	params := map[string]string{
		"symbol": symbol,
		"limit":  strconv.Itoa(depth),
	}

	body, err := b.doRequest(ctx, http.MethodGet, "/api/v3/depth", params, false)
	if err != nil {
		return nil, err
	}

	var resp struct {
		LastUpdateID int64      `json:"lastUpdateId"`
		Bids         [][]string `json:"bids"`
		Asks         [][]string `json:"asks"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	orderBook := &OrderBook{
		Symbol:    symbol,
		Bids:      make([]PriceLevel, len(resp.Bids)),
		Asks:      make([]PriceLevel, len(resp.Asks)),
		Timestamp: time.Now(),
	}

	for i, bid := range resp.Bids {
		price, _ := strconv.ParseFloat(bid[0], 64)
		volume, _ := strconv.ParseFloat(bid[1], 64)
		orderBook.Bids[i] = PriceLevel{Price: price, Volume: volume}
	}

	for i, ask := range resp.Asks {
		price, _ := strconv.ParseFloat(ask[0], 64)
		volume, _ := strconv.ParseFloat(ask[1], 64)
		orderBook.Asks[i] = PriceLevel{Price: price, Volume: volume}
	}

	// Сортируем: bids по убыванию, asks по возрастанию
	sort.Slice(orderBook.Bids, func(i, j int) bool {
		return orderBook.Bids[i].Price > orderBook.Bids[j].Price
	})
	sort.Slice(orderBook.Asks, func(i, j int) bool {
		return orderBook.Asks[i].Price < orderBook.Asks[j].Price
	})

	return orderBook, nil
}

// PlaceMarketOrder размещает рыночный ордер через /api/v3/order.
// Покупка задаётся суммой котируемого актива (quoteOrderQty),
// продажа - объёмом базового (quantity): так размеры ног цикла
// подаются в тех единицах, в которых их считала симуляция.
func (b *Binance) PlaceMarketOrder(ctx context.Context, symbol, side string, amount float64) (*Order, error) {
	binanceSide := "BUY"
	amountParam := "quoteOrderQty"
	if side == SideSell {
		binanceSide = "SELL"
		amountParam = "quantity"
	}

	params := map[string]string{
		"symbol":           symbol,
		"side":             binanceSide,
		"type":             "MARKET",
		amountParam:        strconv.FormatFloat(amount, 'f', -1, 64),
		"newOrderRespType": "RESULT",
	}

	body, err := b.doRequest(ctx, http.MethodPost, "/api/v3/order", params, true)
	if err != nil {
		return nil, err
	}

	var resp struct {
		OrderID             int64  `json:"orderId"`
		Symbol              string `json:"symbol"`
		Status              string `json:"status"`
		ExecutedQty         string `json:"executedQty"`
		CummulativeQuoteQty string `json:"cummulativeQuoteQty"`
		TransactTime        int64  `json:"transactTime"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	filledQty, _ := strconv.ParseFloat(resp.ExecutedQty, 64)
	quoteQty, _ := strconv.ParseFloat(resp.CummulativeQuoteQty, 64)

	order := &Order{
		ID:        strconv.FormatInt(resp.OrderID, 10),
		Symbol:    resp.Symbol,
		Side:      side,
		Quantity:  amount,
		FilledQty: filledQty,
		Status:    mapOrderStatus(resp.Status),
		CreatedAt: time.UnixMilli(resp.TransactTime),
	}
	if filledQty > 0 {
		order.AvgFillPrice = quoteQty / filledQty
	}

	if resp.Status != "FILLED" {
		return order, &ExchangeError{
			Exchange: "binance",
			Code:     resp.Status,
			Message:  fmt.Sprintf("order %d not fully filled: %s", resp.OrderID, resp.Status),
		}
	}

	return order, nil
}

// mapOrderStatus переводит статус Binance во внутренний
func mapOrderStatus(status string) string {
	switch status {
	case "FILLED":
		return OrderStatusFilled
	case "PARTIALLY_FILLED":
		return OrderStatusPartial
	default:
		return OrderStatusRejected
	}
}

// Close закрывает idle-соединения клиента
func (b *Binance) Close() error {
	CloseGlobalClient()
	return nil
}
