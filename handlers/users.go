package handlers

import (
	"net/http"

	"github.com/learnify/backend/logger"
	"github.com/learnify/backend/middleware"
	"github.com/learnify/backend/service"
)

type UsersHandler struct {
	Profiles *service.ProfileService
	Log      *logger.Logger
}

// Update handles POST /api/user/update from the complete-profile form.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.CompletionRequest
	if !decode(w, r, &req) {
		return
	}
	// The route is allowlisted, so the identity carries only the session subject.
	id, _ := middleware.IdentityFromContext(r.Context())
	if err := h.Profiles.CompleteProfile(r.Context(), id.ExternalID, req); err != nil {
		writeServiceError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "success"})
}
