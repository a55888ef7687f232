package bot

import (
	"sync"

	"triarb/internal/models"
)

// OrderBookStore - конкурентное хранилище последних снимков стаканов.
//
// Update атомарно заменяет снимок символа; Get возвращает указатель на
// неизменяемый снимок, который безопасно читать после выхода из-под
// блокировки. Симуляция читает до трёх снимков, пока поллер может
// перезаписывать любой из них - "рваное" чтение (bids одного
// обновления с asks другого) исключено заменой указателя целиком.
type OrderBookStore struct {
	books map[string]*models.BookSnapshot
	mu    sync.RWMutex
}

// NewOrderBookStore создаёт пустое хранилище
func NewOrderBookStore() *OrderBookStore {
	return &OrderBookStore{
		books: make(map[string]*models.BookSnapshot),
	}
}

// Update заменяет снимок символа. Вызывающий передаёт владение
// снимком хранилищу и не должен изменять его после вызова.
func (s *OrderBookStore) Update(symbol string, snapshot *models.BookSnapshot) {
	s.mu.Lock()
	s.books[symbol] = snapshot
	s.mu.Unlock()
}

// Get возвращает последний снимок символа.
// ok=false означает, что данных по символу ещё нет - это не ошибка,
// а "пара сейчас не оценивается".
func (s *OrderBookStore) Get(symbol string) (*models.BookSnapshot, bool) {
	s.mu.RLock()
	snapshot, ok := s.books[symbol]
	s.mu.RUnlock()
	return snapshot, ok
}

// Size возвращает количество символов с данными
func (s *OrderBookStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}
