package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/makex/makex-api/internal/model"
)

// UpsertDeviceToken registers a push token, keyed on device_token
// uniqueness so repeated registration from the same device is idempotent.
// A token re-registered by a different account is moved to that account.
func (r *Repository) UpsertDeviceToken(ctx context.Context, userID, token string) error {
	query := `
		INSERT INTO user_devices (user_id, device_token, last_used_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (device_token)
		DO UPDATE SET user_id = EXCLUDED.user_id, last_used_at = EXCLUDED.last_used_at
	`

	_, err := r.pool.Exec(ctx, query, userID, token, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert device token: %w", err)
	}

	return nil
}

// ListDeviceTokens returns all registered push tokens for a user.
func (r *Repository) ListDeviceTokens(ctx context.Context, userID string) ([]*model.DeviceToken, error) {
	query := `
		SELECT user_id, device_token, last_used_at
		FROM user_devices
		WHERE user_id = $1 AND device_token IS NOT NULL
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*model.DeviceToken
	for rows.Next() {
		var dt model.DeviceToken
		if err := rows.Scan(&dt.UserID, &dt.Token, &dt.LastUsedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, &dt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating device tokens: %w", err)
	}

	return tokens, nil
}
