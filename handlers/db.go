package handlers

import (
	"context"
	"net/http"

	"github.com/learnify/backend/logger"
)

// HealthChecker reports the database name and its collections.
type HealthChecker interface {
	Health(ctx context.Context) (string, []string, error)
}

type DBHandler struct {
	Store HealthChecker
	Log   *logger.Logger
}

type DBStatusResponse struct {
	Message     string   `json:"message"`
	DBName      string   `json:"dbName"`
	Collections []string `json:"collections"`
}

// Status handles GET /api/db.
func (h *DBHandler) Status(w http.ResponseWriter, r *http.Request) {
	name, collections, err := h.Store.Health(r.Context())
	if err != nil {
		h.Log.Error("database health check failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Database connection failed",
			"error":   "database unavailable",
		})
		return
	}
	if collections == nil {
		collections = []string{}
	}
	writeJSON(w, http.StatusOK, DBStatusResponse{Message: "Database connection successful", DBName: name, Collections: collections})
}
