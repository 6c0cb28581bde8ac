package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/learnify/backend/logger"
	"github.com/learnify/backend/middleware"
	"github.com/learnify/backend/models"
	"github.com/learnify/backend/service"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func statusFor(kind models.Kind) int {
	switch kind {
	case models.KindValidation, models.KindConflict, models.KindInvalidSignature:
		return http.StatusBadRequest
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError maps a classified error to its status. Upstream failures
// are logged and answered with their generic message only.
func writeServiceError(w http.ResponseWriter, log *logger.Logger, r *http.Request, err error) {
	status := statusFor(models.KindOf(err))
	if status == http.StatusInternalServerError {
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": models.MessageOf(err)})
}

// ActorResolver turns the guard's identity into an ownership actor.
type ActorResolver interface {
	Actor(ctx context.Context, externalID string, role models.Role) (service.Actor, error)
}

func actorFrom(r *http.Request, resolver ActorResolver) (service.Actor, error) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok || id.ExternalID == "" {
		return service.Actor{}, models.Forbidden("authentication required")
	}
	return resolver.Actor(r.Context(), id.ExternalID, id.Role)
}
