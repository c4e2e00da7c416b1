package checkout

import (
	"encoding/json"
	"net/http"

	"github.com/mintpay/checkout-api/internal/common"
	"github.com/mintpay/checkout-api/internal/order"
)

// Handler exposes the checkout HTTP surface: the non-secret config endpoint
// and payment intent creation.
type Handler struct {
	Svc            *Service
	PublishableKey string
}

type createIntentReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type createIntentResp struct {
	ClientSecret string `json:"clientSecret"`
}

type configResp struct {
	PublishableKey string     `json:"publishableKey"`
	Cart           order.Cart `json:"cart"`
}

// Config returns the identifiers the client needs to talk to the processor
// directly. Only the publishable key crosses this boundary; the secret API
// key and signing secret never appear in any response.
func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "checkout handler unavailable", nil)
		return
	}
	common.JSON(w, http.StatusOK, configResp{
		PublishableKey: h.PublishableKey,
		Cart:           h.Svc.Valuator.ComputeTotal(),
	})
}

// CreateIntent runs the synchronous checkout chain and relays the client
// secret. Name and email are passed through to the processor as-is; the
// processor applies its own validation.
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "checkout handler unavailable", nil)
		return
	}
	var req createIntentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid body", nil)
		return
	}
	session, err := h.Svc.CreatePaymentIntent(r.Context(), req.Name, req.Email)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, createIntentResp{ClientSecret: session.ClientSecret})
}
