package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carerelay/carerelay/internal/application"
)

func (h *Handler) createPairing(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingClaimsError(r.Context(), w, "create_pairing")
		return
	}
	var req application.CreatePairingRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_pairing", err)
		return
	}

	res, err := h.service.CreatePairing(r.Context(), claims.CaregiverID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_pairing", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) listPairings(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingClaimsError(r.Context(), w, "list_pairings")
		return
	}

	limit := parseIntDefault(r.URL.Query().Get("limit"), 20)
	offset := parseIntDefault(r.URL.Query().Get("offset"), 0)
	items, err := h.service.ListPairings(r.Context(), claims.CaregiverID, limit, offset)
	if err != nil {
		writeMappedError(r.Context(), w, "list_pairings", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"pairings": items})
}

func (h *Handler) getPairing(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingClaimsError(r.Context(), w, "get_pairing")
		return
	}
	pairingID, err := uuid.Parse(chi.URLParam(r, "pairing_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "get_pairing", errors.New("invalid pairing_id"))
		return
	}

	detail, err := h.service.GetPairingDetail(r.Context(), pairingID, claims.CaregiverID)
	if err != nil {
		writeMappedError(r.Context(), w, "get_pairing", err)
		return
	}
	writeSuccess(w, http.StatusOK, detail)
}

func (h *Handler) revokePairing(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingClaimsError(r.Context(), w, "revoke_pairing")
		return
	}
	pairingID, err := uuid.Parse(chi.URLParam(r, "pairing_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "revoke_pairing", errors.New("invalid pairing_id"))
		return
	}

	if err := h.service.RevokePairing(r.Context(), pairingID, claims.CaregiverID); err != nil {
		writeMappedError(r.Context(), w, "revoke_pairing", err)
		return
	}
	writeMessage(w, http.StatusOK, "Pairing revoked successfully")
}

func (h *Handler) setCareActions(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingClaimsError(r.Context(), w, "set_care_actions")
		return
	}
	pairingID, err := uuid.Parse(chi.URLParam(r, "pairing_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "set_care_actions", errors.New("invalid pairing_id"))
		return
	}
	var req application.CareActionsRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "set_care_actions", err)
		return
	}

	if err := h.service.RecordCareActions(r.Context(), pairingID, claims.CaregiverID, req); err != nil {
		writeMappedError(r.Context(), w, "set_care_actions", err)
		return
	}
	writeMessage(w, http.StatusOK, "Care actions recorded successfully")
}
