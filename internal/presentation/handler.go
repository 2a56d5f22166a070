package presentation

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Ralet11/cocina-orders/internal/application"
	"github.com/Ralet11/cocina-orders/internal/deeplink"
	"github.com/Ralet11/cocina-orders/internal/domain"
	"github.com/Ralet11/cocina-orders/internal/logger"
	"github.com/Ralet11/cocina-orders/internal/mw"
	"github.com/Ralet11/cocina-orders/internal/payment"
	"github.com/Ralet11/cocina-orders/internal/presentation/helpers"
	"github.com/Ralet11/cocina-orders/internal/tracking"
	"github.com/go-chi/chi/v5"
)

// Handler is the screens' surface over the order core. Screens only read
// and write the data model here; every lifecycle rule lives below.
type Handler struct {
	cart      *application.CartStore
	orders    *application.OrderStore
	addresses *application.AddressBook
	checkout  *application.Coordinator
	sheet     *payment.SheetBridge
}

func NewHandler(cart *application.CartStore, orders *application.OrderStore, addresses *application.AddressBook, checkout *application.Coordinator, sheet *payment.SheetBridge) *Handler {
	return &Handler{
		cart:      cart,
		orders:    orders,
		addresses: addresses,
		checkout:  checkout,
		sheet:     sheet,
	}
}

func (h *Handler) Register(r chi.Router, jwtSecret string) {
	r.Group(func(pr chi.Router) {
		pr.Use(mw.AuthMiddleware(jwtSecret))

		pr.Get("/cart", h.GetCart)
		pr.Post("/cart/items", h.AddCartItem)
		pr.Delete("/cart/items/{id}", h.RemoveCartItem)
		pr.Patch("/cart/items/{id}/quantity", h.SetCartItemQuantity)
		pr.Delete("/cart", h.ClearCart)

		pr.Get("/order/draft", h.GetDraft)
		pr.Put("/order/draft", h.SetDraft)
		pr.Delete("/order/draft", h.ClearDraft)

		pr.Get("/address", h.GetAddress)
		pr.Put("/address", h.UpsertAddress)

		pr.Post("/checkout", h.Checkout)
		pr.Post("/payment/outcome", h.PaymentOutcome)

		pr.Get("/orders", h.ListOrders)
		pr.Get("/orders/{id}", h.GetOrder)
	})

	r.Get("/return/{route}", h.Return)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"items":    h.cart.Snapshot(userID),
		"subtotal": h.cart.Subtotal(userID),
	})
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var item domain.CartItem
	if err := helpers.DecodeJSON(r.Body, &item); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if item.ProductID == 0 || item.Name == "" {
		helpers.HttpError(w, http.StatusBadRequest, "product_id and name are required")
		return
	}

	added := h.cart.Add(mw.UserID(r.Context()), item)
	helpers.WriteJSON(w, http.StatusCreated, added)
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	h.cart.Remove(mw.UserID(r.Context()), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetCartItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	userID := mw.UserID(r.Context())
	h.cart.SetQuantity(userID, chi.URLParam(r, "id"), req.Quantity)
	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"items":    h.cart.Snapshot(userID),
		"subtotal": h.cart.Subtotal(userID),
	})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear(mw.UserID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

type draftRequest struct {
	PartnerID       *int64            `json:"partner_id"`
	Price           *float64          `json:"price"`
	DeliveryFee     *float64          `json:"delivery_fee"`
	DeliveryAddress *string           `json:"delivery_address"`
	Items           []domain.CartItem `json:"items"`
}

func (h *Handler) SetDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	draft := h.orders.SetDraft(mw.UserID(r.Context()), application.DraftPatch{
		PartnerID:       req.PartnerID,
		Price:           req.Price,
		DeliveryFee:     req.DeliveryFee,
		DeliveryAddress: req.DeliveryAddress,
		Items:           req.Items,
	})
	helpers.WriteJSON(w, http.StatusOK, draft)
}

func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, h.orders.Draft(mw.UserID(r.Context())))
}

func (h *Handler) ClearDraft(w http.ResponseWriter, r *http.Request) {
	h.orders.ClearDraft(mw.UserID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpsertAddress(w http.ResponseWriter, r *http.Request) {
	var addr domain.Address
	if err := helpers.DecodeJSON(r.Body, &addr); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if addr.Street == "" {
		helpers.HttpError(w, http.StatusBadRequest, "street is required")
		return
	}

	saved := h.addresses.Upsert(mw.UserID(r.Context()), addr)
	helpers.WriteJSON(w, http.StatusOK, saved)
}

func (h *Handler) GetAddress(w http.ResponseWriter, r *http.Request) {
	addr := h.addresses.Current(mw.UserID(r.Context()))
	if addr == nil {
		helpers.HttpError(w, http.StatusNotFound, "no current address")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, addr)
}

// Checkout runs the whole coordinator flow. The request stays open while
// the payment sheet is up; closing it cancels the payment.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkout.Checkout(r.Context(), mw.UserID(r.Context()))
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, map[string]any{
		"order":    order,
		"progress": tracking.ForOrder(order),
	})
}

// writeCheckoutError maps the coordinator's taxonomy onto responses the
// screens can act on. Cancellation is not an error: the user simply
// returns to an unchanged checkout screen.
func (h *Handler) writeCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, application.ErrCheckoutCancelled):
		helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
	case errors.Is(err, application.ErrAddressMissing):
		helpers.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": err.Error(),
			"code":  "address_missing",
		})
	case errors.Is(err, application.ErrEmptyCart):
		helpers.HttpError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrPaymentFailed):
		helpers.WriteJSON(w, http.StatusPaymentRequired, map[string]string{
			"error": err.Error(),
			"code":  "payment_failed",
		})
	case errors.Is(err, application.ErrSubmissionFailedAfterPayment):
		helpers.WriteJSON(w, http.StatusBadGateway, map[string]string{
			"error":   err.Error(),
			"code":    "submission_failed_after_payment",
			"support": "contact support with the payment reference; you have been charged",
		})
	default:
		logger.Error("checkout failed", "err", err)
		helpers.HttpError(w, http.StatusInternalServerError, "checkout failed")
	}
}

type outcomeRequest struct {
	IntentID string `json:"intent_id"`
	Outcome  string `json:"outcome"`
}

// PaymentOutcome is the device's report from the payment sheet; it
// unparks the checkout waiting on the intent.
func (h *Handler) PaymentOutcome(w http.ResponseWriter, r *http.Request) {
	var req outcomeRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	outcome := domain.PaymentOutcome(req.Outcome)
	switch outcome {
	case domain.PaymentConfirmed, domain.PaymentCancelled, domain.PaymentFailed:
	default:
		helpers.HttpError(w, http.StatusBadRequest, "unknown outcome")
		return
	}

	if !h.sheet.Complete(req.IntentID, outcome) {
		helpers.HttpError(w, http.StatusNotFound, "no checkout waiting on intent")
		return
	}
	helpers.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "delivered"})
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"active":   h.orders.Active(userID),
		"historic": h.orders.Historic(userID),
	})
}

// GetOrder serves the tracking screen: it refreshes the authoritative
// status first, healing any gap the event channel left. The refresh is
// scoped to the caller, so other users' order ids answer 404 without
// touching the backend.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.checkout.RefreshFor(r.Context(), mw.UserID(r.Context()), id)
	if err != nil {
		helpers.HttpError(w, http.StatusNotFound, "order not found")
		return
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"order":    order,
		"progress": tracking.ForOrder(order),
	})
}

// Return handles the redirect back from a hosted payment page. The
// route key picks the screen; an intent id in the query unparks the
// checkout; an unknown key changes nothing.
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	nav, ok := deeplink.Resolve(r.URL.String())
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if intentID := nav.Params["intentId"]; intentID != "" {
		switch nav.Route {
		case "payment-success":
			h.sheet.Complete(intentID, domain.PaymentConfirmed)
		case "payment-failure":
			h.sheet.Complete(intentID, domain.PaymentFailed)
		}
	}

	if nav.OrderID != 0 {
		if _, err := h.checkout.Refresh(r.Context(), nav.OrderID); err != nil {
			logger.Warn("deep-link order refresh failed", "id", nav.OrderID, "err", err)
		}
	}

	helpers.WriteJSON(w, http.StatusOK, nav)
}
