package middleware

import (
	"net/http"

	"salonmenu/internal/reqctx"

	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// RequestID берёт X-Request-ID клиента или генерирует новый и возвращает его в ответе.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(reqctx.WithRequestID(r.Context(), id)))
	})
}
