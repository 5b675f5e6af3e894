package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/makex/makex-api/internal/model"
)

// GetLatestSubscription returns the most recent billable subscription row
// for the user, ordered by creation time descending. Zero rows is
// ErrSubscriptionNotFound; whether that is a valid steady state is a
// product question the handler owns.
func (r *Repository) GetLatestSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	query := `
		SELECT id, user_id, status, price_id, quantity, cancel_at_period_end,
		       canceled_at, current_period_start, current_period_end, created_at
		FROM subscriptions
		WHERE user_id = $1 AND status = ANY($2)
		ORDER BY created_at DESC
		LIMIT 1
	`

	statuses := []string{
		model.SubscriptionActive,
		model.SubscriptionTrialing,
		model.SubscriptionPastDue,
	}

	var sub model.Subscription
	err := r.pool.QueryRow(ctx, query, userID, statuses).Scan(
		&sub.ID,
		&sub.UserID,
		&sub.Status,
		&sub.PriceID,
		&sub.Quantity,
		&sub.CancelAtPeriodEnd,
		&sub.CanceledAt,
		&sub.CurrentPeriodStart,
		&sub.CurrentPeriodEnd,
		&sub.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return &sub, nil
}
