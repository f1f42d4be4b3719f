package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when the requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Repository is the persistence surface the handlers and services need.
type Repository interface {
	Insert(ctx context.Context, doc Document) (Document, error)
	GetByID(ctx context.Context, id string) (Document, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, int64, error)
	Update(ctx context.Context, doc Document) error
}

// Store is the Postgres-backed order repository.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store on the provided pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const orderColumns = `id, user_id, display_order_id, products, subtotal, total_amt,
final_amount, shipping, tax, discount, discount_amount, membership_discount,
influencer_discount, coin_redemption, coupon_code, influencer_code,
order_status, shipment_status, awb, status_timeline, tracking_events, created_at, updated_at`

// Insert persists a new order, generating its id when absent.
func (s *Store) Insert(ctx context.Context, doc Document) (Document, error) {
	if s == nil || s.pool == nil {
		return Document{}, errors.New("order store not configured")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	if doc.OrderStatus == "" {
		doc.OrderStatus = StatusPending
	}

	products, err := json.Marshal(doc.Products)
	if err != nil {
		return Document{}, fmt.Errorf("encode products: %w", err)
	}
	timeline, err := json.Marshal(doc.StatusTimeline)
	if err != nil {
		return Document{}, fmt.Errorf("encode timeline: %w", err)
	}
	tracking, err := json.Marshal(doc.TrackingEvents)
	if err != nil {
		return Document{}, fmt.Errorf("encode tracking events: %w", err)
	}
	var coinRedemption []byte
	if doc.CoinRedemption != nil {
		coinRedemption, err = json.Marshal(doc.CoinRedemption)
		if err != nil {
			return Document{}, fmt.Errorf("encode coin redemption: %w", err)
		}
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)`,
		doc.ID, doc.UserID, doc.DisplayOrderID, products, doc.Subtotal, doc.TotalAmt,
		doc.FinalAmount, doc.Shipping, doc.Tax, doc.Discount, doc.DiscountAmount,
		doc.MembershipDiscount, doc.InfluencerDiscount, coinRedemption, doc.CouponCode,
		doc.InfluencerCode, string(doc.OrderStatus), doc.ShipmentStatus, doc.AWB,
		timeline, tracking, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, fmt.Errorf("insert order: %w", err)
	}
	return doc, nil
}

// GetByID loads a single order.
func (s *Store) GetByID(ctx context.Context, id string) (Document, error) {
	if s == nil || s.pool == nil {
		return Document{}, errors.New("order store not configured")
	}
	row := s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	doc, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	return doc, err
}

// ListByUser returns a page of orders for the user ordered newest first,
// along with the total count.
func (s *Store) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, int64, error) {
	if s == nil || s.pool == nil {
		return nil, 0, errors.New("order store not configured")
	}
	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, doc)
	}
	return docs, total, rows.Err()
}

// ListOpenShipments returns orders that carry an AWB and have not reached a
// final state yet. The shipment sync worker polls these.
func (s *Store) ListOpenShipments(ctx context.Context, limit int) ([]Document, error) {
	if s == nil || s.pool == nil {
		return nil, errors.New("order store not configured")
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE awb <> ''
		  AND order_status NOT IN ('delivered', 'completed', 'cancelled', 'rto_completed')
		ORDER BY updated_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list open shipments: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Update persists the mutable order fields (status, shipment, timeline and
// reconciled money columns).
func (s *Store) Update(ctx context.Context, doc Document) error {
	if s == nil || s.pool == nil {
		return errors.New("order store not configured")
	}
	timeline, err := json.Marshal(doc.StatusTimeline)
	if err != nil {
		return fmt.Errorf("encode timeline: %w", err)
	}
	tracking, err := json.Marshal(doc.TrackingEvents)
	if err != nil {
		return fmt.Errorf("encode tracking events: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE orders SET
			order_status = $2,
			shipment_status = $3,
			awb = $4,
			status_timeline = $5,
			tracking_events = $6,
			subtotal = $7,
			total_amt = $8,
			final_amount = $9,
			shipping = $10,
			tax = $11,
			discount = $12,
			updated_at = now()
		WHERE id = $1`,
		doc.ID, string(doc.OrderStatus), doc.ShipmentStatus, doc.AWB, timeline, tracking,
		doc.Subtotal, doc.TotalAmt, doc.FinalAmount, doc.Shipping, doc.Tax, doc.Discount,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (Document, error) {
	var (
		doc            Document
		status         string
		products       []byte
		timeline       []byte
		tracking       []byte
		coinRedemption []byte
	)
	err := row.Scan(
		&doc.ID, &doc.UserID, &doc.DisplayOrderID, &products, &doc.Subtotal, &doc.TotalAmt,
		&doc.FinalAmount, &doc.Shipping, &doc.Tax, &doc.Discount, &doc.DiscountAmount,
		&doc.MembershipDiscount, &doc.InfluencerDiscount, &coinRedemption, &doc.CouponCode,
		&doc.InfluencerCode, &status, &doc.ShipmentStatus, &doc.AWB,
		&timeline, &tracking, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	doc.OrderStatus = Status(status)
	if len(products) > 0 {
		if err := json.Unmarshal(products, &doc.Products); err != nil {
			return Document{}, fmt.Errorf("decode products: %w", err)
		}
	}
	if len(timeline) > 0 {
		if err := json.Unmarshal(timeline, &doc.StatusTimeline); err != nil {
			return Document{}, fmt.Errorf("decode timeline: %w", err)
		}
	}
	if len(tracking) > 0 {
		if err := json.Unmarshal(tracking, &doc.TrackingEvents); err != nil {
			return Document{}, fmt.Errorf("decode tracking events: %w", err)
		}
	}
	if len(coinRedemption) > 0 {
		if err := json.Unmarshal(coinRedemption, &doc.CoinRedemption); err != nil {
			return Document{}, fmt.Errorf("decode coin redemption: %w", err)
		}
	}
	return doc, nil
}
