package repository

import (
	"context"
	"fmt"
)

// HasIntegration reports whether the user has a connection of the given
// type. Only existence is exposed; credential contents never leave the
// store through this path.
func (r *Repository) HasIntegration(ctx context.Context, userID, integrationType string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM user_integrations
			WHERE user_id = $1 AND integration_type = $2
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, userID, integrationType).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check integration: %w", err)
	}

	return exists, nil
}
