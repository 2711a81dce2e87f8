package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequireJSON rejects requests with a body that is not application/json with
// 415. Requests without a body pass through.
func RequireJSON(next http.Handler) http.Handler {
	return chimw.AllowContentType("application/json")(next)
}
