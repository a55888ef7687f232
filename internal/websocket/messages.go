package websocket

import (
	"time"

	"triarb/internal/models"
)

// MessageType определяет тип WebSocket сообщения
type MessageType string

// Типы WebSocket сообщений
const (
	// MessageTypeTradeExecuted - новая сделка записана в историю.
	// Отправляется после каждого исполнения (dry_run, executed, failed).
	MessageTypeTradeExecuted MessageType = "tradeExecuted"

	// MessageTypeStatsUpdate - обновление накопительной статистики.
	// Отправляется вместе с каждым tradeExecuted.
	MessageTypeStatsUpdate MessageType = "statsUpdate"
)

// TradeExecutedMessage - сообщение о новой сделке
type TradeExecutedMessage struct {
	Type      MessageType  `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Data      models.Trade `json:"data"`
}

// StatsUpdateMessage - сообщение со статистикой
type StatsUpdateMessage struct {
	Type      MessageType  `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Data      models.Stats `json:"data"`
}
