package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ericfisherdev/ptalbot/internal/application"
	"github.com/ericfisherdev/ptalbot/internal/domain/model"
	"github.com/ericfisherdev/ptalbot/internal/domain/port/driven"
)

// ListPTALs returns every tracked status message.
func (h *Handler) ListPTALs(w http.ResponseWriter, r *http.Request) {
	records, err := h.deps.PTALs.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list ptal records", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]PTALResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toPTALResponse(rec))
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreatePTAL posts a review request for a pull request into a channel.
func (h *Handler) CreatePTAL(w http.ResponseWriter, r *http.Request) {
	var req CreatePTALRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !isValidName(req.Owner) || !isValidName(req.Repository) || req.Number <= 0 ||
		req.GuildID == "" || req.ChannelID == "" {
		writeError(w, http.StatusBadRequest, "owner, repository, number, guild_id and channel_id are required")
		return
	}

	rec, err := h.deps.Reviews.RequestReview(r.Context(), application.ReviewRequest{
		PR:          model.PRKey{Owner: req.Owner, Repository: req.Repository, Number: req.Number},
		GuildID:     req.GuildID,
		ChannelID:   req.ChannelID,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidRequest):
			writeError(w, http.StatusBadRequest, "invalid review request")
		case errors.Is(err, application.ErrNotInGuild):
			writeError(w, http.StatusConflict, "bot is not a member of that guild")
		default:
			h.logger.Error("failed to create ptal", "owner", req.Owner, "repo", req.Repository, "pr", req.Number, "error", err)
			writeError(w, http.StatusBadGateway, "failed to post review request")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toPTALResponse(rec))
}

// DeletePTALs stops tracking every message of a pull request. The chat
// messages themselves are left in place.
func (h *Handler) DeletePTALs(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	repo := r.PathValue("repo")

	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil || number <= 0 {
		writeError(w, http.StatusBadRequest, "invalid PR number")
		return
	}

	key := model.PRKey{Owner: owner, Repository: repo, Number: number}
	n, err := h.deps.PTALs.DeleteByKey(r.Context(), key)
	if err != nil {
		h.logger.Error("failed to delete ptal records", "pr", key.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if n == 0 {
		writeError(w, http.StatusNotFound, "no records for pull request")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListRegistrations returns every translation-sync registration.
func (h *Handler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.deps.Registrations.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list registrations", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]RegistrationResponse, 0, len(regs))
	for _, reg := range regs {
		resp = append(resp, toRegistrationResponse(reg))
	}

	writeJSON(w, http.StatusOK, resp)
}

// AddRegistration subscribes a channel to sync requests for a repository.
func (h *Handler) AddRegistration(w http.ResponseWriter, r *http.Request) {
	var req AddRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !isValidName(req.Owner) || !isValidName(req.Repository) || req.GuildID == "" || req.ChannelID == "" {
		writeError(w, http.StatusBadRequest, "owner, repository, guild_id and channel_id are required")
		return
	}

	saved, err := h.deps.Registrations.Add(r.Context(), model.Registration{
		Owner:      req.Owner,
		Repository: req.Repository,
		GuildID:    req.GuildID,
		ChannelID:  req.ChannelID,
	})
	if err != nil {
		if errors.Is(err, driven.ErrRegistrationExists) {
			writeError(w, http.StatusConflict, "channel already registered for repository")
			return
		}
		h.logger.Error("failed to add registration", "repo", req.Owner+"/"+req.Repository, "channel", req.ChannelID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toRegistrationResponse(saved))
}

// RemoveRegistration unsubscribes a channel from a repository.
func (h *Handler) RemoveRegistration(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	repo := r.PathValue("repo")
	channel := r.PathValue("channel")

	if err := h.deps.Registrations.Remove(r.Context(), owner, repo, channel); err != nil {
		if errors.Is(err, driven.ErrRegistrationNotFound) {
			writeError(w, http.StatusNotFound, "registration not found")
			return
		}
		h.logger.Error("failed to remove registration", "repo", owner+"/"+repo, "channel", channel, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListGuilds returns the workspaces the bot is known to belong to.
func (h *Handler) ListGuilds(w http.ResponseWriter, r *http.Request) {
	guilds, err := h.deps.Guilds.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list guilds", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]GuildResponse, 0, len(guilds))
	for _, g := range guilds {
		resp = append(resp, toGuildResponse(g))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Sweep runs a catch-up sweep and reports its outcome. The request blocks
// until the sweep finishes.
func (h *Handler) Sweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.deps.Sweeper.Sweep(r.Context())
	if err != nil {
		h.logger.Error("sweep failed", "error", err)
		writeError(w, http.StatusInternalServerError, "sweep failed")
		return
	}

	writeJSON(w, http.StatusOK, SweepResponse{
		Records:    result.Records,
		Edited:     result.Edited,
		Skipped:    result.Skipped,
		Failed:     result.Failed,
		DurationMS: result.Duration.Milliseconds(),
	})
}
