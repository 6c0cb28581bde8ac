package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/learnify/backend/identity"
	"github.com/learnify/backend/logger"
	"github.com/learnify/backend/metrics"
	"github.com/learnify/backend/models"
	"github.com/learnify/backend/service"
)

const maxWebhookBody = 1 << 20

// SignatureVerifier authenticates a webhook delivery from its headers and raw body.
type SignatureVerifier interface {
	Verify(h http.Header, body []byte) error
}

// WebhookHandler receives identity-provider events. A nil Verifier means the
// endpoint's secret is not configured.
type WebhookHandler struct {
	Verifier SignatureVerifier
	Profiles *service.ProfileService
	// Accept limits the event types acted on; nil accepts all.
	Accept  map[string]bool
	Metrics metrics.Recorder
	Log     *logger.Logger
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Verifier == nil {
		writeError(w, http.StatusNotFound, "webhook not configured")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if err := h.Verifier.Verify(r.Header, body); err != nil {
		h.Log.Warn("webhook rejected", "path", r.URL.Path, "svix_id", r.Header.Get(identity.HeaderWebhookID), "error", err)
		h.Metrics.RecordWebhookEvent("", models.KindInvalidSignature.String())
		writeServiceError(w, h.Log, r, models.InvalidSignature(err))
		return
	}

	var evt identity.Event
	if err := json.Unmarshal(body, &evt); err != nil {
		h.Metrics.RecordWebhookEvent("", models.KindValidation.String())
		writeError(w, http.StatusBadRequest, "invalid event payload")
		return
	}

	outcome, err := h.Profiles.HandleEvent(r.Context(), evt, h.Accept)
	if err != nil {
		h.Metrics.RecordWebhookEvent(evt.Type, models.KindOf(err).String())
		writeServiceError(w, h.Log, r, err)
		return
	}
	h.Metrics.RecordWebhookEvent(evt.Type, string(outcome))
	h.Log.Info("webhook processed", "type", evt.Type, "user", evt.Data.ID, "outcome", string(outcome))

	status := http.StatusOK
	if outcome == service.OutcomeCreated {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]string{"message": "user " + string(outcome)})
}
