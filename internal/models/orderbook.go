package models

import "time"

// PriceLevel - один уровень стакана
type PriceLevel struct {
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}

// BookSnapshot - снимок стакана одной пары.
// Bids отсортированы по убыванию цены, Asks - по возрастанию.
// После публикации в хранилище снимок не изменяется: поллер всегда
// строит новый снимок и заменяет его целиком.
type BookSnapshot struct {
	Symbol    string       `json:"symbol"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	Timestamp time.Time    `json:"timestamp"`
}
