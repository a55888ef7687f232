package handlers

import (
	"net/http"

	"triarb/internal/models"
)

// TrianglesHandler обрабатывает HTTP запросы для списка треугольников.
//
// Endpoints:
// - GET /api/v1/triangles - треугольники, отслеживаемые в текущем запуске
//
// Список фиксируется при старте (перечисление идёт по загруженному списку
// рынков) и не меняется до перезапуска, поэтому handler держит его копию.
type TrianglesHandler struct {
	triangles []models.Triangle
}

// NewTrianglesHandler создает новый TrianglesHandler.
func NewTrianglesHandler(triangles []models.Triangle) *TrianglesHandler {
	return &TrianglesHandler{
		triangles: triangles,
	}
}

// GetTriangles возвращает все отслеживаемые треугольники.
//
// GET /api/v1/triangles
//
// Response 200 OK:
//
//	{
//	  "count": 2,
//	  "triangles": [
//	    {
//	      "path": ["USDT", "BTC", "ETH"],
//	      "pairs": ["BTCUSDT", "ETHBTC", "ETHUSDT"],
//	      "directions": ["buy", "buy", "sell"],
//	      "display": "USDT → BTC → ETH → USDT"
//	    }
//	  ]
//	}
func (h *TrianglesHandler) GetTriangles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	triangles := h.triangles
	// Пустой массив возвращаем как [], а не null
	if triangles == nil {
		triangles = []models.Triangle{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count":     len(triangles),
		"triangles": triangles,
	})
}
