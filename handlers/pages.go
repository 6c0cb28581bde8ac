package handlers

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/learnify/backend/logger"
	"github.com/learnify/backend/middleware"
	"github.com/learnify/backend/models"
)

// NewPagesHandler serves page routes that passed the guard. With a frontend
// URL they are proxied there; otherwise a JSON stub names the page and role.
func NewPagesHandler(frontendURL string, log *logger.Logger) (http.Handler, error) {
	if frontendURL == "" {
		return http.HandlerFunc(pageStub), nil
	}
	target, err := url.Parse(frontendURL)
	if err != nil {
		return nil, err
	}
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error("frontend proxy failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, "frontend unavailable")
	}
	return proxy, nil
}

func pageStub(w http.ResponseWriter, r *http.Request) {
	role := models.RoleUnset
	if id, ok := middleware.IdentityFromContext(r.Context()); ok {
		role = id.Role
	}
	writeJSON(w, http.StatusOK, map[string]string{"page": r.URL.Path, "role": role.String()})
}
