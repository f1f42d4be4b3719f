package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store loads coupon rules from Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store on the provided pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Resolve loads the rule for a coupon code. Codes are matched
// case-insensitively.
func (s *Store) Resolve(ctx context.Context, code string) (Rule, error) {
	if s == nil || s.pool == nil {
		return Rule{}, errors.New("coupon store not configured")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Rule{}, ErrCouponNotFound
	}
	var rule Rule
	err := s.pool.QueryRow(ctx, `
		SELECT code, kind, value, max_discount, min_spend, active,
		       valid_from, valid_to, usage_limit, used_count,
		       per_user_limit
		FROM coupons WHERE upper(code) = $1`, code).Scan(
		&rule.Code, &rule.Kind, &rule.Value, &rule.MaxDiscount, &rule.MinSpend, &rule.Active,
		&rule.ValidFrom, &rule.ValidTo, &rule.UsageLimit, &rule.UsedCount,
		&rule.PerUserLimit,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rule{}, ErrCouponNotFound
	}
	if err != nil {
		return Rule{}, fmt.Errorf("resolve coupon %q: %w", code, err)
	}
	return rule, nil
}

// MarkUsed bumps the global usage counter after a successful checkout.
func (s *Store) MarkUsed(ctx context.Context, code string) error {
	if s == nil || s.pool == nil {
		return errors.New("coupon store not configured")
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE coupons SET used_count = used_count + 1 WHERE upper(code) = upper($1)`, code)
	if err != nil {
		return fmt.Errorf("mark coupon %q used: %w", code, err)
	}
	return nil
}
