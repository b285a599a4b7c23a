package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carerelay/carerelay/internal/application"
)

func (h *Handler) advanceEpisode(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingClaimsError(r.Context(), w, "advance_episode")
		return
	}
	episodeID, err := uuid.Parse(chi.URLParam(r, "episode_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "advance_episode", errors.New("invalid episode_id"))
		return
	}

	res, err := h.service.Advance(r.Context(), episodeID, claims.CaregiverID)
	if err != nil {
		writeMappedError(r.Context(), w, "advance_episode", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) resolveEpisode(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingClaimsError(r.Context(), w, "resolve_episode")
		return
	}
	episodeID, err := uuid.Parse(chi.URLParam(r, "episode_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "resolve_episode", errors.New("invalid episode_id"))
		return
	}
	var req application.ResolveRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "resolve_episode", err)
		return
	}

	if err := h.service.Resolve(r.Context(), episodeID, claims.CaregiverID, req); err != nil {
		writeMappedError(r.Context(), w, "resolve_episode", err)
		return
	}
	writeMessage(w, http.StatusOK, "Episode resolved successfully")
}

func (h *Handler) recordDebrief(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingClaimsError(r.Context(), w, "record_debrief")
		return
	}
	episodeID, err := uuid.Parse(chi.URLParam(r, "episode_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "record_debrief", errors.New("invalid episode_id"))
		return
	}
	var req application.DebriefRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "record_debrief", err)
		return
	}

	res, err := h.service.RecordDebrief(r.Context(), episodeID, claims.CaregiverID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "record_debrief", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}
