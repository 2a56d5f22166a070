package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Ralet11/cocina-orders/internal/application"
	"github.com/Ralet11/cocina-orders/internal/domain"
	"github.com/Ralet11/cocina-orders/internal/logger"
	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"
)

type ConsumerConfig struct {
	Brokers string
	Topic   string
	GroupID string
}

// statusEvent is the wire shape of an order-status notification. Type
// distinguishes it from other traffic on the topic; Status arrives as a
// raw string that may use localized synonyms.
type statusEvent struct {
	Type    string `json:"type"`
	OrderID int64  `json:"orderId"`
	Status  string `json:"status"`
}

// eventTypes accepted as status notifications; both spellings are live
// on the backend.
func isStatusEvent(t string) bool {
	return t == "state changed" || t == "order_state_changed"
}

// StartConsumer runs the event channel: a long-lived consumer-group
// reader delivering order_state_changed messages into the order store.
// Fetch errors reconnect with fibonacci backoff; missed events are not
// replayed here — screens heal gaps by re-fetching on mount. Duplicate
// and out-of-order deliveries are absorbed by the store's monotonic
// transition rule, so every message commits exactly once regardless.
func StartConsumer(ctx context.Context, store *application.OrderStore, cfg ConsumerConfig) (*kafka.Reader, error) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:         strings.Split(cfg.Brokers, ","),
		GroupID:         cfg.GroupID,
		Topic:           cfg.Topic,
		MinBytes:        1,
		MaxBytes:        10e6,
		CommitInterval:  0,
		StartOffset:     kafka.LastOffset,
		ReadLagInterval: -1,
	})

	logger.Info("event channel starting", "brokers", cfg.Brokers, "topic", cfg.Topic, "group", cfg.GroupID)

	go func() {
		defer r.Close()

		for {
			m, err := fetchWithBackoff(ctx, r)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("event channel fetch gave up", "err", err)
				continue
			}

			handleEvent(ctx, store, m.Value)

			if err := r.CommitMessages(ctx, m); err != nil {
				logger.Warn("event channel commit failed", "err", err)
			}
		}
	}()
	return r, nil
}

// fetchWithBackoff retries a dropped connection transparently; the
// channel never surfaces disconnects to the rest of the app.
func fetchWithBackoff(ctx context.Context, r *kafka.Reader) (kafka.Message, error) {
	var m kafka.Message
	backoff := retry.WithMaxDuration(2*time.Minute, retry.NewFibonacci(300*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		m, err = r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			logger.Warn("event channel disconnected; retrying", "err", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	return m, err
}

// handleEvent applies one raw message. Malformed payloads, foreign event
// types, and unknown status strings are skipped; the message is still
// committed because redelivery cannot make them valid.
func handleEvent(ctx context.Context, store *application.OrderStore, value []byte) {
	var ev statusEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		logger.Warn("event channel invalid json; skip", "err", err)
		return
	}
	if !isStatusEvent(ev.Type) {
		return
	}

	status, ok := domain.ParseStatus(ev.Status)
	if !ok {
		logger.Warn("event channel unknown status; skip",
			"order", ev.OrderID, "status", fmt.Sprintf("%q", ev.Status))
		return
	}

	store.UpdateStatus(ctx, ev.OrderID, status)
	logger.Info("status event applied", "order", ev.OrderID, "status", status)
}
