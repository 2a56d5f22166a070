package deeplink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		ok      bool
		screen  string
		orderID int64
	}{
		{"payment success goes to tracking", "https://app.cocina.dev/return/payment-success?orderId=42", true, ScreenTracking, 42},
		{"payment pending goes to tracking", "https://app.cocina.dev/return/payment-pending?orderId=42", true, ScreenTracking, 42},
		{"payment failure goes back to checkout", "https://app.cocina.dev/return/payment-failure?orderId=42", true, ScreenCheckout, 42},
		{"app scheme host form", "cocina://payment-success?orderId=7", true, ScreenTracking, 7},
		{"unknown route yields no navigation", "https://app.cocina.dev/return/unknown-path?x=1", false, "", 0},
		{"missing order id still resolves", "https://app.cocina.dev/return/payment-success", true, ScreenTracking, 0},
		{"non-numeric order id is ignored", "https://app.cocina.dev/return/payment-success?orderId=abc", true, ScreenTracking, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav, ok := Resolve(tt.raw)
			require.Equal(t, tt.ok, ok)
			if !ok {
				assert.Zero(t, nav)
				return
			}
			assert.Equal(t, tt.screen, nav.Screen)
			assert.Equal(t, tt.orderID, nav.OrderID)
		})
	}
}

func TestResolveKeepsQueryParams(t *testing.T) {
	nav, ok := Resolve("https://app.cocina.dev/return/payment-success?orderId=42&intentId=pi_1")
	require.True(t, ok)
	assert.Equal(t, "pi_1", nav.Params["intentId"])
	assert.Equal(t, "42", nav.Params["orderId"])
}
