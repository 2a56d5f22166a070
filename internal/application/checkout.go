package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ralet11/cocina-orders/internal/domain"
	"github.com/Ralet11/cocina-orders/internal/logger"
	"github.com/Ralet11/cocina-orders/internal/repository"
)

var (
	// ErrAddressMissing means checkout was attempted with no current
	// address; nothing was charged and no network call was made.
	ErrAddressMissing = errors.New("delivery address missing")

	// ErrEmptyCart means there was nothing to check out.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrCheckoutCancelled means the user dismissed the payment sheet.
	// The draft and cart are untouched; the caller returns to the
	// checkout screen silently.
	ErrCheckoutCancelled = errors.New("payment cancelled by user")

	// ErrPaymentFailed means the charge was declined or errored. The
	// draft and cart are preserved so the user can retry.
	ErrPaymentFailed = errors.New("payment failed")

	// ErrSubmissionFailedAfterPayment means money was captured but the
	// order-creation call failed. The cart is preserved and the error
	// carries the payment-intent id so a retry reuses the same
	// idempotency key and support can reconcile the charge manually.
	ErrSubmissionFailedAfterPayment = errors.New("order submission failed after captured payment")
)

// PaymentGateway creates payment intents at the payment backend.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountMinor int64) (domain.PaymentIntent, error)
}

// PaymentPresenter runs the user-facing payment step. It blocks until
// the device reports an outcome or ctx is cancelled; cancellation is an
// outcome, not an error.
type PaymentPresenter interface {
	Present(ctx context.Context, intent domain.PaymentIntent) (domain.PaymentOutcome, error)
}

// OrderBackend is the remote order service: idempotent submission and
// authoritative reads.
type OrderBackend interface {
	Submit(ctx context.Context, sub domain.OrderSubmission) (*domain.Order, []domain.CartItem, error)
	Fetch(ctx context.Context, orderID int64) (*domain.Order, error)
}

// Coordinator runs the checkout flow as one strictly sequential
// transaction: populate draft → create intent → present payment →
// submit order → commit. Each step starts only after the previous one
// resolved, because each depends on the previous result.
type Coordinator struct {
	cart      *CartStore
	orders    *OrderStore
	addresses *AddressBook
	payments  PaymentGateway
	presenter PaymentPresenter
	backend   OrderBackend
}

func NewCoordinator(cart *CartStore, orders *OrderStore, addresses *AddressBook, payments PaymentGateway, presenter PaymentPresenter, backend OrderBackend) *Coordinator {
	return &Coordinator{
		cart:      cart,
		orders:    orders,
		addresses: addresses,
		payments:  payments,
		presenter: presenter,
		backend:   backend,
	}
}

// Checkout assembles the user's draft from the cart snapshot and the
// current address, charges the total, and submits the order. On success
// the cart is cleared and the draft reset; on any failure both are
// preserved for retry.
func (c *Coordinator) Checkout(ctx context.Context, userID string) (*domain.Order, error) {
	address := c.addresses.Current(userID)
	if address == nil {
		return nil, ErrAddressMissing
	}

	items := c.cart.Snapshot(userID)
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	// finalPrice is fixed here; it is never recomputed from live cart
	// state afterward.
	price := c.cart.Subtotal(userID)
	total := price + c.orders.Draft(userID).DeliveryFee + domain.FixedTaxes
	street := address.Street
	draft := c.orders.SetDraft(userID, DraftPatch{
		Price:           &price,
		FinalPrice:      &total,
		DeliveryAddress: &street,
		Items:           items,
	})

	intent, err := c.payments.CreateIntent(ctx, domain.MinorUnits(total))
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	outcome, err := c.presenter.Present(ctx, intent)
	if err != nil {
		return nil, fmt.Errorf("present payment: %w", err)
	}
	switch outcome {
	case domain.PaymentCancelled:
		return nil, ErrCheckoutCancelled
	case domain.PaymentFailed:
		return nil, ErrPaymentFailed
	case domain.PaymentConfirmed:
	default:
		return nil, fmt.Errorf("%w: unexpected outcome %q", ErrPaymentFailed, outcome)
	}

	order, serverItems, err := c.backend.Submit(ctx, domain.OrderSubmission{
		UserID:          userID,
		PartnerID:       draft.PartnerID,
		DeliveryAddress: draft.DeliveryAddress,
		Price:           draft.Price,
		DeliveryFee:     draft.DeliveryFee,
		FinalPrice:      draft.FinalPrice,
		Items:           draft.Items,
		IdempotencyKey:  intent.ID,
	})
	if err != nil {
		logger.Error("order submission failed after captured payment",
			"user", userID, "intent", intent.ID, "err", err)
		return nil, fmt.Errorf("intent %s: %w", intent.ID, ErrSubmissionFailedAfterPayment)
	}

	order.PaymentIntentID = intent.ID
	committed := c.orders.CommitDraftAsOrder(ctx, userID, order, serverItems)
	c.cart.Clear(userID)

	logger.Info("order committed", "id", committed.ID, "user", userID, "intent", intent.ID)
	return committed, nil
}

// Refresh re-fetches the authoritative order state and reconciles it
// into the store through the monotonic rule. Screens call it on mount or
// focus to heal any gap the event channel may have left. A backend
// failure degrades to the local copy.
func (c *Coordinator) Refresh(ctx context.Context, orderID int64) (*domain.Order, error) {
	local := c.orders.FindById(orderID)

	remote, err := c.backend.Fetch(ctx, orderID)
	if err != nil {
		if local != nil {
			logger.Warn("order refresh failed; serving local state", "id", orderID, "err", err)
			return local, nil
		}
		return nil, err
	}

	if local == nil {
		return c.orders.Adopt(ctx, remote), nil
	}
	c.orders.UpdateStatus(ctx, orderID, remote.Status)
	return c.orders.FindById(orderID), nil
}

// RefreshFor is Refresh scoped to the requesting user. An order that
// belongs to someone else is never fetched into the store, so a caller
// probing foreign ids cannot trigger backend reads or adoption.
func (c *Coordinator) RefreshFor(ctx context.Context, userID string, orderID int64) (*domain.Order, error) {
	if local := c.orders.FindById(orderID); local != nil {
		if local.UserID != userID {
			return nil, repository.ErrOrderNotFound
		}
		return c.Refresh(ctx, orderID)
	}

	remote, err := c.backend.Fetch(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if remote.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}
	return c.orders.Adopt(ctx, remote), nil
}
