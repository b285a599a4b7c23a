package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carerelay/carerelay/internal/application"
)

func (h *Handler) redeem(w http.ResponseWriter, r *http.Request) {
	var req application.RedeemRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "redeem", err)
		return
	}
	req.ContextKey = readIP(r)

	res, err := h.service.Redeem(r.Context(), req)
	if err != nil {
		writeRedeemError(r.Context(), w, "redeem", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

// redeemLink handles the deep-link path. The token travels in the body, not
// the URL, so it never lands in access logs.
func (h *Handler) redeemLink(w http.ResponseWriter, r *http.Request) {
	var req application.RedeemRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "redeem_link", err)
		return
	}
	req.ShortCode = ""
	req.ContextKey = readIP(r)

	res, err := h.service.Redeem(r.Context(), req)
	if err != nil {
		writeRedeemError(r.Context(), w, "redeem_link", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) confirmDay(w http.ResponseWriter, r *http.Request) {
	pairingID, err := uuid.Parse(chi.URLParam(r, "pairing_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "confirm_day", errors.New("invalid pairing_id"))
		return
	}

	view, err := h.service.RecordConfirm(r.Context(), application.ConfirmRequest{PairingID: pairingID})
	if err != nil {
		writeMappedError(r.Context(), w, "confirm_day", err)
		return
	}
	writeSuccess(w, http.StatusOK, view)
}

func (h *Handler) requestHelp(w http.ResponseWriter, r *http.Request) {
	pairingID, err := uuid.Parse(chi.URLParam(r, "pairing_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "request_help", errors.New("invalid pairing_id"))
		return
	}

	view, err := h.service.RecordHelp(r.Context(), application.ConfirmRequest{PairingID: pairingID})
	if err != nil {
		writeMappedError(r.Context(), w, "request_help", err)
		return
	}
	writeSuccess(w, http.StatusOK, view)
}
