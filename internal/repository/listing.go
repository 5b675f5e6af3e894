package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/makex/makex-api/internal/model"
)

const listingColumns = `id, app_id, share_id, name, description, app_url, image_url, created_at`

// GetListingByShareID resolves a public share id to its listing row.
func (r *Repository) GetListingByShareID(ctx context.Context, shareID string) (*model.AppListing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM app_listing_info
		WHERE share_id = $1
	`
	return r.getListing(ctx, query, shareID)
}

// GetListingByAppID resolves an app id to its listing row.
func (r *Repository) GetListingByAppID(ctx context.Context, appID string) (*model.AppListing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM app_listing_info
		WHERE app_id = $1
	`
	return r.getListing(ctx, query, appID)
}

func (r *Repository) getListing(ctx context.Context, query, arg string) (*model.AppListing, error) {
	var listing model.AppListing
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&listing.ID,
		&listing.AppID,
		&listing.ShareID,
		&listing.Name,
		&listing.Description,
		&listing.AppURL,
		&listing.ImageURL,
		&listing.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get app listing: %w", err)
	}

	return &listing, nil
}
