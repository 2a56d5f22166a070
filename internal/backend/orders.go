package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Ralet11/cocina-orders/internal/domain"
)

// IdempotencyHeader carries the caller-supplied key ensuring a retried
// submission does not duplicate its side effect.
const IdempotencyHeader = "Idempotency-Key"

// OrdersClient talks to the order-creation backend.
type OrdersClient struct {
	baseURL string
	client  *http.Client
}

func NewOrdersClient(baseURL string) *OrdersClient {
	return &OrdersClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type submitResponse struct {
	Order         *domain.Order     `json:"order"`
	OrderProducts []domain.CartItem `json:"orderProducts"`
}

// Submit creates the order. The idempotency key rides in a header, so a
// replay after a timeout returns the already-created order instead of a
// duplicate.
func (c *OrdersClient) Submit(ctx context.Context, sub domain.OrderSubmission) (*domain.Order, []domain.CartItem, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, nil, err
	}

	url := c.baseURL + "/orders"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(IdempotencyHeader, sub.IdempotencyKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return nil, nil, fmt.Errorf("unexpected status: %d, body: %s", resp.StatusCode, string(raw))
	}

	var res submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, nil, fmt.Errorf("decode response: %w", err)
	}
	if res.Order == nil {
		return nil, nil, fmt.Errorf("order backend returned no order")
	}
	normalizeStatus(res.Order)
	return res.Order, res.OrderProducts, nil
}

// Fetch reads the authoritative order state, used to reconcile the local
// store when a screen mounts or regains focus.
func (c *OrdersClient) Fetch(ctx context.Context, orderID int64) (*domain.Order, error) {
	url := c.baseURL + "/orders/" + strconv.FormatInt(orderID, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var o domain.Order
		if err := json.NewDecoder(resp.Body).Decode(&o); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		normalizeStatus(&o)
		return &o, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("order %d not found", orderID)
	default:
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status: %d, body: %s", resp.StatusCode, string(raw))
	}
}

// normalizeStatus folds transport status synonyms into the canonical set
// before anything downstream sees them.
func normalizeStatus(o *domain.Order) {
	if s, ok := domain.ParseStatus(string(o.Status)); ok {
		o.Status = s
	}
}
