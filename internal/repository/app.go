package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/makex/makex-api/internal/model"
)

const appColumns = `id, user_id, name, description, status, prompt, app_url, created_at, updated_at, deleted_at`

// GetAppForUser retrieves an app by id, filtered by owning user.
// Ownership is part of the query filter: a row owned by someone else is
// indistinguishable from an absent row and both return ErrAppNotFound.
func (r *Repository) GetAppForUser(ctx context.Context, appID, userID string) (*model.App, error) {
	query := `
		SELECT ` + appColumns + `
		FROM apps
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`

	app, err := scanApp(r.pool.QueryRow(ctx, query, appID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppNotFound
		}
		return nil, fmt.Errorf("failed to get app: %w", err)
	}

	return app, nil
}

// ListAppsForUser returns the caller's apps, newest first.
func (r *Repository) ListAppsForUser(ctx context.Context, userID string) ([]*model.App, error) {
	query := `
		SELECT ` + appColumns + `
		FROM apps
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}
	defer rows.Close()

	var apps []*model.App
	for rows.Next() {
		app, err := scanApp(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan app: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating apps: %w", err)
	}

	return apps, nil
}

// ResetStuckApps flips apps that have been building for longer than the
// threshold back to failed. Returns the number of rows reset.
func (r *Repository) ResetStuckApps(ctx context.Context, threshold time.Duration) (int64, error) {
	query := `
		UPDATE apps
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND updated_at < NOW() - $3::interval
	`

	interval := fmt.Sprintf("%d seconds", int64(threshold.Seconds()))
	result, err := r.pool.Exec(ctx, query, model.AppStatusFailed, model.AppStatusBuilding, interval)
	if err != nil {
		return 0, fmt.Errorf("failed to reset stuck apps: %w", err)
	}

	return result.RowsAffected(), nil
}

// InsertAgentResponse records one AI agent reply against an app.
func (r *Repository) InsertAgentResponse(ctx context.Context, resp *model.AgentResponse) error {
	query := `
		INSERT INTO agent_responses (id, app_id, user_id, agent_response, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		resp.ID,
		resp.AppID,
		resp.UserID,
		resp.Response,
		resp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert agent response: %w", err)
	}

	return nil
}

// scanApp scans a single row into an App model.
func scanApp(row pgx.Row) (*model.App, error) {
	var app model.App
	err := row.Scan(
		&app.ID,
		&app.UserID,
		&app.Name,
		&app.Description,
		&app.Status,
		&app.Prompt,
		&app.AppURL,
		&app.CreatedAt,
		&app.UpdatedAt,
		&app.DeletedAt,
	)
	return &app, err
}
