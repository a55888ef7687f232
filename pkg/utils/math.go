package utils

import (
	"math"
)

// math.go - математические утилиты для треугольного сканера
//
// Все функции чистые, без побочных эффектов.

// Round округляет значение до decimals знаков после запятой.
//
// Используется ТОЛЬКО для отображения: ранжирование возможностей и
// сравнение с порогом прибыли идут по полной точности.
//
// Примеры:
//   - Round(4.6876, 3) = 4.688
//   - Round(0.1406, 2) = 0.14
func Round(value float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(value*pow) / pow
}

// RoundToStep округляет значение ВНИЗ до ближайшего кратного step.
//
// Используется для приведения объёма ордера к шагу лота биржи.
// Округление вниз гарантирует, что мы не превысим доступные средства.
// step <= 0 возвращает исходное значение.
func RoundToStep(value, step float64) float64 {
	if step <= 0 {
		return value
	}
	return math.Floor(value/step) * step
}
