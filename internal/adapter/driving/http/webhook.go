package httphandler

import (
	"errors"
	"io"
	"net/http"

	"github.com/ericfisherdev/ptalbot/internal/webhook"
)

// maxWebhookBody matches GitHub's cap on delivery payloads.
const maxWebhookBody = 25 << 20

// Webhook authenticates and decodes a GitHub delivery, hands it to the
// processor and answers 202 without waiting for the side effects.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	eventName := r.Header.Get(webhook.EventHeader)
	signature := r.Header.Get(webhook.SignatureHeader)
	deliveryID := r.Header.Get(webhook.DeliveryHeader)

	if eventName == "" || signature == "" {
		writeError(w, http.StatusBadRequest, "missing X-GitHub-Event or X-Hub-Signature-256 header")
		return
	}

	// Senders only ever see 400, 401 or 202, so an oversized body is a 400.
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, "payload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	if err := webhook.Verify(body, signature, h.webhookSecret); err != nil {
		h.logger.Warn("webhook rejected", "delivery", deliveryID, "event", eventName, "error", err)
		writeError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	ev, err := webhook.Decode(eventName, body)
	if err != nil {
		h.logger.Warn("webhook undecodable", "delivery", deliveryID, "event", eventName, "error", err)
		writeError(w, http.StatusBadRequest, "malformed payload")
		return
	}

	h.deps.Webhooks.Enqueue(r.Context(), ev, deliveryID)

	writeJSON(w, http.StatusAccepted, AcceptedResponse{Status: "accepted", Event: string(ev.Kind())})
}
