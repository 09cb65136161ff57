package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"nscollab/models"
)

type submitPitchRequest struct {
	IdeaID int64 `json:"idea_id"`
}

type investRequest struct {
	PitchID int64           `json:"pitch_id"`
	Amount  decimal.Decimal `json:"amount"`
}

type calculateResultsRequest struct {
	Force bool `json:"force"`
}

type balanceResponse struct {
	Balance *models.Balance `json:"balance"`
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	setResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) getEventForMonth(w http.ResponseWriter, r *http.Request) {
	month, err := time.Parse("2006-01", mux.Vars(r)["month"])
	if err != nil {
		setErrorResponse(w, http.StatusBadRequest, errTypeBadRequest, "Month must look like 2025-06.")
		return
	}

	event, err := h.services.Events.GetOrCreateEventForMonth(r.Context(), month)
	if err != nil {
		setServiceError(w, r, err)
		return
	}
	setResponse(w, http.StatusOK, event)
}

func (h *handler) startPitching(w http.ResponseWriter, r *http.Request) {
	identity, eventID, ok := h.requestTarget(w, r)
	if !ok {
		return
	}

	event, err := h.services.Events.StartPitching(r.Context(), eventID, identity.UserID)
	if err != nil {
		setServiceError(w, r, err)
		return
	}
	setResponse(w, http.StatusOK, event)
}

func (h *handler) updateDetails(w http.ResponseWriter, r *http.Request) {
	identity, eventID, ok := h.requestTarget(w, r)
	if !ok {
		return
	}

	var details models.EventDetails
	if !decodeBody(w, r, &details) {
		return
	}

	event, err := h.services.Events.UpdateDetails(r.Context(), eventID, identity.UserID, details)
	if err != nil {
		setServiceError(w, r, err)
		return
	}
	setResponse(w, http.StatusOK, event)
}

func (h *handler) registerAngel(w http.ResponseWriter, r *http.Request) {
	identity, eventID, ok := h.requestTarget(w, r)
	if !ok {
		return
	}

	balance, err := h.services.Angels.Register(r.Context(), eventID, identity.UserID)
	if err != nil {
		setServiceError(w, r, err)
		return
	}
	setResponse(w, http.StatusOK, balanceResponse{Balance: balance})
}

func (h *handler) getBalance(w http.ResponseWriter, r *http.Request) {
	identity, eventID, ok := h.requestTarget(w, r)
	if !ok {
		return
	}

	balance, err := h.services.Angels.GetBalance(r.Context(), eventID, identity.UserID)
	if err != nil {
		setServiceError(w, r, err)
		return
	}
	setResponse(w, http.StatusOK, balanceResponse{Balance: balance})
}

func (h *handler) getHistory(w http.ResponseWriter, r *http.Request) {
	identity, eventID, ok := h.requestTarget(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			setErrorResponse(w, http.StatusBadRequest, errTypeBadRequest, "Limit must be a number.")
			return
		}
		limit = parsed
	}

	history, err := h.services.Angels.GetHistory(r.Context(), eventID, identity.UserID, limit)
	if err != nil {
		setServiceError(w, r, err)
		return
	}
	setResponse(w, http.StatusOK, nonNil(history))
}

func (h *handler) listPitches(w http.ResponseWriter, r *http.Request) {
	_, eventID, ok := h.requestTarget(w, r)
	if !ok {
		return
	}

	pitches, err := h.services.Pitches.ListPitches(r.Context(), eventID)
	if err != nil {
		setServiceError(w, r, err)
		return
	}
	setResponse(w, http.StatusOK, nonNil(pitches))
}

func (h *handler) submitPitch(w http.ResponseWriter, r *http.Request) {
	identity, eventID, ok := h.requestTarget(w, r)
	if !ok {
		return
	}

	var req submitPitchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pitch, err := h.services.Pitches.Submit(r.Context(), eventID, identity.UserID, req.IdeaID)
	if err != nil {
		setServiceError(w, r, err)
		return
	}
	setResponse(w, http.StatusCreated, pitch)
}

func (h *handler) cancelPitch(w http.ResponseWriter, r *http.Request) {
	identity, pitchID, ok := h.requestTarget(w, r)
	if !ok {
		return
	}

	if err := h.services.Pitches.Cancel(r.Context(), pitchID, identity.UserID); err != nil {
		setServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) invest(w http.ResponseWriter, r *http.Request) {
	identity, eventID, ok := h.requestTarget(w, r)
	if !ok {
		return
	}

	var req investRequest
	if !decodeBody(w, r, &req) {
		return
	}

	balance, err := h.services.Investments.Invest(r.Context(), eventID, identity.UserID, req.PitchID, req.Amount)
	if err != nil {
		setServiceError(w, r, err)
		return
	}
	setResponse(w, http.StatusOK, balanceResponse{Balance: balance})
}

func (h *handler) listInvestments(w http.ResponseWriter, r *http.Request) {
	identity, eventID, ok := h.requestTarget(w, r)
	if !ok {
		return
	}

	investments, err := h.services.Investments.ListInvestments(r.Context(), eventID, identity.UserID)
	if err != nil {
		setServiceError(w, r, err)
		return
	}
	setResponse(w, http.StatusOK, nonNil(investments))
}

func (h *handler) calculateResults(w http.ResponseWriter, r *http.Request) {
	identity, eventID, ok := h.requestTarget(w, r)
	if !ok {
		return
	}

	// The body is optional, an empty one means no force
	var req calculateResultsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		setErrorResponse(w, http.StatusBadRequest, errTypeBadRequest, "Request body is not valid JSON.")
		return
	}

	snapshot, err := h.services.Results.Calculate(r.Context(), eventID, identity.UserID, req.Force)
	if err != nil {
		setServiceError(w, r, err)
		return
	}
	setResponse(w, http.StatusOK, snapshot)
}

func (h *handler) getResults(w http.ResponseWriter, r *http.Request) {
	_, eventID, ok := h.requestTarget(w, r)
	if !ok {
		return
	}

	snapshot, err := h.services.Results.GetResults(r.Context(), eventID)
	if err != nil {
		setServiceError(w, r, err)
		return
	}
	setResponse(w, http.StatusOK, snapshot)
}

// requestTarget returns the caller and the numeric {id} of the route
func (h *handler) requestTarget(w http.ResponseWriter, r *http.Request) (*Identity, int64, bool) {
	identity, ok := identityFrom(r)
	if !ok {
		setErrorResponse(w, http.StatusUnauthorized, errTypeUnauthorized, "Please sign in with Discord.")
		return nil, 0, false
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		setErrorResponse(w, http.StatusBadRequest, errTypeBadRequest, "Invalid id.")
		return nil, 0, false
	}
	return identity, id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		setErrorResponse(w, http.StatusBadRequest, errTypeBadRequest, "Request body is not valid JSON.")
		return false
	}
	return true
}

// nonNil encodes empty lists as [] instead of null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
