package middleware

import (
	"net/http"
	"strings"

	"triarb/pkg/crypto"
)

// BearerAuth - middleware для защиты status-API токеном
//
// Назначение:
// Проверяет заголовок Authorization: Bearer <token> против bcrypt-хеша,
// вычисленного один раз при старте из API_AUTH_TOKEN. Сам токен в памяти
// процесса не хранится.
//
// Конфигурация:
// - Пустой tokenHash означает, что auth выключен: все запросы проходят.
//   Это режим локального развертывания, когда dashboard и бот на одной машине.
//
// Использование:
//
//	api := router.PathPrefix("/api/v1").Subrouter()
//	api.Use(middleware.BearerAuth(tokenHash))
func BearerAuth(tokenHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenHash == "" {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				w.Header().Set("WWW-Authenticate", "Bearer")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// bcrypt сравнение constant-time, timing attack не раскрывает токен
			if !crypto.CheckTokenMatch(token, tokenHash) {
				w.Header().Set("WWW-Authenticate", "Bearer")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
