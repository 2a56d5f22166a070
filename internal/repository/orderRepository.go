package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Ralet11/cocina-orders/internal/domain"
	"github.com/Ralet11/cocina-orders/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderRepo interface {
	SaveOrder(ctx context.Context, o *domain.Order) error
	UpdateStatus(ctx context.Context, id int64, status domain.Status) error
	GetOrderById(ctx context.Context, id int64) (*domain.Order, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Order, error)
}

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(p *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: p}
}

// SaveOrder persists a committed order. The id is server-assigned, so a
// replayed commit for the same id is a no-op.
func (p *OrderRepository) SaveOrder(ctx context.Context, o *domain.Order) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return err
	}

	created := o.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO storefront.orders
			(id, user_id, partner_id, status, price_cents, delivery_fee_cents,
			 final_price_cents, delivery_address, payment_intent_id, payload, created_at)
		 VALUES
			($1, $2, $3, $4, $5, $6,
			 $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO NOTHING
		`, o.ID,
		o.UserID,
		o.PartnerID,
		string(o.Status),
		domain.MinorUnits(o.Price),
		domain.MinorUnits(o.DeliveryFee),
		domain.MinorUnits(o.FinalPrice),
		o.DeliveryAddress,
		o.PaymentIntentID,
		payload,
		created,
	)
	if err != nil {
		logger.Warn("save order failed", "id", o.ID, "err", err)
		return err
	}
	return nil
}

// UpdateStatus writes the status and refreshes the payload snapshot so
// ListRecent restores the same state. The rank predicate repeats the
// transition rule in SQL: a write that arrives late cannot regress a
// status another writer already advanced. Zero rows means the order is
// missing or already past the new status; both are no-ops.
func (p *OrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE storefront.orders
		 SET status = $1,
		     payload = jsonb_set(payload, '{status}', to_jsonb($1::text)),
		     updated_at = now()
		 WHERE id = $2
		   AND CASE
		         WHEN $1::text = 'rejected' THEN status = 'pending'
		         ELSE CASE status
		                WHEN 'pending' THEN 0
		                WHEN 'accepted' THEN 1
		                WHEN 'sending' THEN 2
		                WHEN 'finished' THEN 3
		                ELSE 4 END
		            < CASE $1::text
		                WHEN 'accepted' THEN 1
		                WHEN 'sending' THEN 2
		                WHEN 'finished' THEN 3
		                ELSE 0 END
		       END
		`, string(status), id)
	return err
}

func (p *OrderRepository) GetOrderById(ctx context.Context, id int64) (*domain.Order, error) {
	var payload []byte
	err := p.pool.QueryRow(ctx,
		`SELECT payload FROM storefront.orders WHERE id = $1`, id,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	var o domain.Order
	if err := json.Unmarshal(payload, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListRecent returns the newest orders, payload-first, for cache restore
// at startup.
func (p *OrderRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Order, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT payload FROM storefront.orders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Order
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var o domain.Order
		if err := json.Unmarshal(payload, &o); err != nil {
			logger.Warn("failed to unmarshal order payload; skip", "err", err)
			continue
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}
