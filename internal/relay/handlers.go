package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/payment-relay/internal/common"
	"github.com/noah-isme/payment-relay/internal/obs"
)

// Handler exposes HTTP endpoints for payment initiation, gateway callbacks
// and status polling.
type Handler struct {
	Svc *Service
}

type payResp struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId"`
	URL           string `json:"url"`
}

type callbackResp struct {
	Message       string    `json:"message"`
	TransactionID string    `json:"transactionId"`
	Timestamp     time.Time `json:"timestamp"`
}

type statusResp struct {
	Success       bool      `json:"success"`
	TransactionID string    `json:"transactionId"`
	Status        string    `json:"status"`
	Data          any       `json:"data,omitempty"`
	Message       string    `json:"message,omitempty"`
	Code          string    `json:"code,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Pay validates the payment intent and relays it to the gateway.
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeServerMisconfigured, "payment relay unavailable", nil)
		return
	}
	var intent Intent
	if err := json.NewDecoder(r.Body).Decode(&intent); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidationFailed, "invalid JSON body", nil)
		return
	}
	result, err := h.Svc.Initiate(r.Context(), intent)
	if err != nil {
		h.countInitiate(err)
		common.RenderError(w, err)
		return
	}
	h.countInitiate(nil)
	common.JSON(w, http.StatusOK, payResp{
		Success:       true,
		TransactionID: result.TransactionID,
		URL:           result.RedirectURL,
	})
}

// CallbackPost acknowledges an asynchronous gateway notification. The body
// is accepted as-is; receipt never depends on an upstream call.
func (h *Handler) CallbackPost(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeServerMisconfigured, "payment relay unavailable", nil)
		return
	}
	txnID := strings.TrimSpace(chi.URLParam(r, "transactionId"))
	if obs.CallbackReceivedTotal != nil {
		obs.CallbackReceivedTotal.WithLabelValues(http.MethodPost).Inc()
	}
	h.Svc.Logger.Info().Str("transaction_id", txnID).Msg("gateway callback received")
	h.Svc.CrossVerify(r.Context(), txnID)
	common.JSON(w, http.StatusOK, callbackResp{
		Message:       "callback received",
		TransactionID: txnID,
		Timestamp:     time.Now().UTC(),
	})
}

// CallbackGet handles gateways that redirect the payer's browser back with
// query parameters instead of posting a body.
func (h *Handler) CallbackGet(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeServerMisconfigured, "payment relay unavailable", nil)
		return
	}
	txnID := strings.TrimSpace(chi.URLParam(r, "transactionId"))
	if obs.CallbackReceivedTotal != nil {
		obs.CallbackReceivedTotal.WithLabelValues(http.MethodGet).Inc()
	}
	h.Svc.Logger.Info().Str("transaction_id", txnID).Msg("gateway callback received")
	h.Svc.CrossVerify(r.Context(), txnID)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "callback received for %s\n", txnID)
}

// Status polls the gateway for a transaction's current state.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeServerMisconfigured, "payment relay unavailable", nil)
		return
	}
	txnID := strings.TrimSpace(chi.URLParam(r, "transactionId"))
	result, err := h.Svc.Status(r.Context(), txnID)
	if err != nil {
		if obs.StatusCheckTotal != nil {
			obs.StatusCheckTotal.WithLabelValues(resultLabel(err)).Inc()
		}
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			appErr.WithDetail("transactionId", txnID)
		}
		common.RenderError(w, err)
		return
	}
	if obs.StatusCheckTotal != nil {
		obs.StatusCheckTotal.WithLabelValues("ok").Inc()
	}
	common.JSON(w, http.StatusOK, statusResp{
		Success:       true,
		TransactionID: txnID,
		Status:        result.State,
		Data:          result.Data,
		Message:       result.Message,
		Code:          result.Code,
		Timestamp:     time.Now().UTC(),
	})
}

func (h *Handler) countInitiate(err error) {
	if obs.PaymentInitiateTotal == nil {
		return
	}
	obs.PaymentInitiateTotal.WithLabelValues(resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return strings.ToLower(appErr.Code)
	}
	return "error"
}
