package payment

import (
	"context"
	"sync"

	"github.com/Ralet11/cocina-orders/internal/domain"
	"github.com/Ralet11/cocina-orders/internal/logger"
)

// SheetBridge connects the checkout coordinator to the device's payment
// sheet. Present parks the checkout on a per-intent channel until the
// device reports the outcome (via the payment screens or a hosted-page
// deep-link return). Context cancellation counts as the user walking
// away, i.e. a cancelled payment.
type SheetBridge struct {
	mu      sync.Mutex
	waiting map[string]chan domain.PaymentOutcome
}

func NewSheetBridge() *SheetBridge {
	return &SheetBridge{waiting: make(map[string]chan domain.PaymentOutcome)}
}

func (b *SheetBridge) Present(ctx context.Context, intent domain.PaymentIntent) (domain.PaymentOutcome, error) {
	ch := make(chan domain.PaymentOutcome, 1)

	b.mu.Lock()
	b.waiting[intent.ID] = ch
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.waiting, intent.ID)
		b.mu.Unlock()
	}()

	logger.Info("payment sheet presented", "intent", intent.ID)

	select {
	case outcome := <-ch:
		return outcome, nil
	case <-ctx.Done():
		return domain.PaymentCancelled, nil
	}
}

// Complete delivers the device-reported outcome to the parked checkout.
// It reports whether a checkout was actually waiting on the intent.
func (b *SheetBridge) Complete(intentID string, outcome domain.PaymentOutcome) bool {
	b.mu.Lock()
	ch, ok := b.waiting[intentID]
	b.mu.Unlock()

	if !ok {
		logger.Warn("payment outcome for unknown intent; ignored", "intent", intentID)
		return false
	}

	select {
	case ch <- outcome:
		return true
	default:
		// a second report for the same intent; first one wins
		return false
	}
}
