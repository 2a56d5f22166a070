package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Ralet11/cocina-orders/internal/domain"
)

// PaymentClient talks to the payment backend that fronts the card
// processor. The confirmation step itself happens on the device; this
// client only opens the session.
type PaymentClient struct {
	baseURL string
	client  *http.Client
}

func NewPaymentClient(baseURL string) *PaymentClient {
	return &PaymentClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type intentRequest struct {
	Amount int64 `json:"amount"`
}

type intentResponse struct {
	ClientSecret string `json:"clientSecret"`
	IntentID     string `json:"intentId"`
}

// CreateIntent requests a payment intent for the amount in minor units.
func (c *PaymentClient) CreateIntent(ctx context.Context, amountMinor int64) (domain.PaymentIntent, error) {
	body, err := json.Marshal(intentRequest{Amount: amountMinor})
	if err != nil {
		return domain.PaymentIntent{}, err
	}

	url := c.baseURL + "/payment-intent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return domain.PaymentIntent{}, fmt.Errorf("unexpected status: %d, body: %s", resp.StatusCode, string(raw))
	}

	var res intentResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("decode response: %w", err)
	}
	if res.ClientSecret == "" {
		return domain.PaymentIntent{}, fmt.Errorf("payment backend returned empty client secret")
	}

	id := res.IntentID
	if id == "" {
		id = intentIDFromSecret(res.ClientSecret)
	}
	return domain.PaymentIntent{ID: id, ClientSecret: res.ClientSecret}, nil
}

// intentIDFromSecret recovers the intent id from a processor client
// secret of the form "<intent_id>_secret_<nonce>".
func intentIDFromSecret(secret string) string {
	if i := strings.Index(secret, "_secret"); i > 0 {
		return secret[:i]
	}
	return secret
}
