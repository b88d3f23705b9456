package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/ptalbot/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// AcceptedResponse acknowledges a webhook delivery queued for processing.
type AcceptedResponse struct {
	Status string `json:"status"`
	Event  string `json:"event"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// PTALResponse is the JSON representation of a tracked status message.
type PTALResponse struct {
	ID          int64  `json:"id"`
	Owner       string `json:"owner"`
	Repository  string `json:"repository"`
	Number      int    `json:"number"`
	GuildID     string `json:"guild_id"`
	ChannelID   string `json:"channel_id"`
	MessageID   string `json:"message_id"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// CreatePTALRequest is the JSON body for the create PTAL endpoint.
type CreatePTALRequest struct {
	Owner       string `json:"owner"`
	Repository  string `json:"repository"`
	Number      int    `json:"number"`
	GuildID     string `json:"guild_id"`
	ChannelID   string `json:"channel_id"`
	Description string `json:"description"`
}

// RegistrationResponse is the JSON representation of a sync registration.
type RegistrationResponse struct {
	Owner      string `json:"owner"`
	Repository string `json:"repository"`
	GuildID    string `json:"guild_id"`
	ChannelID  string `json:"channel_id"`
	CreatedAt  string `json:"created_at"`
}

// AddRegistrationRequest is the JSON body for the add registration endpoint.
type AddRegistrationRequest struct {
	Owner      string `json:"owner"`
	Repository string `json:"repository"`
	GuildID    string `json:"guild_id"`
	ChannelID  string `json:"channel_id"`
}

// GuildResponse is the JSON representation of a known guild.
type GuildResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	JoinedAt string `json:"joined_at"`
}

// SweepResponse reports the outcome of an on-demand sweep.
type SweepResponse struct {
	Records    int   `json:"records"`
	Edited     int   `json:"edited"`
	Skipped    int   `json:"skipped"`
	Failed     int   `json:"failed"`
	DurationMS int64 `json:"duration_ms"`
}

func toPTALResponse(rec model.PTALRecord) PTALResponse {
	return PTALResponse{
		ID:          rec.ID,
		Owner:       rec.Owner,
		Repository:  rec.Repository,
		Number:      rec.PR,
		GuildID:     rec.GuildID,
		ChannelID:   rec.ChannelID,
		MessageID:   rec.MessageID,
		Description: rec.Description,
		CreatedAt:   rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toRegistrationResponse(reg model.Registration) RegistrationResponse {
	return RegistrationResponse{
		Owner:      reg.Owner,
		Repository: reg.Repository,
		GuildID:    reg.GuildID,
		ChannelID:  reg.ChannelID,
		CreatedAt:  reg.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toGuildResponse(g model.Guild) GuildResponse {
	return GuildResponse{
		ID:       g.ID,
		Name:     g.Name,
		JoinedAt: g.JoinedAt.UTC().Format(time.RFC3339),
	}
}
