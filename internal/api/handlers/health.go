package handlers

import (
	"net/http"
	"time"

	"github.com/IshpreetSingh8264/InflowBackend/internal/api/middleware"
)

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
