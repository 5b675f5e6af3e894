//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/makex/makex-api/internal/model"
	"github.com/makex/makex-api/internal/testutil"
)

func newTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()

	databaseURL := testutil.RequireEnv(t, "DATABASE_URL")
	ctx := context.Background()

	repo, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("connect database: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() { _ = unlock() })

	if err := testutil.EnsureSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := testutil.TruncateAll(ctx, repo.Pool()); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	return ctx, repo
}

func insertApp(t *testing.T, ctx context.Context, repo *Repository, app *model.App) {
	t.Helper()
	_, err := repo.Pool().Exec(ctx, `
		INSERT INTO apps (id, user_id, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`, app.ID, app.UserID, app.Name, app.Status, app.CreatedAt)
	if err != nil {
		t.Fatalf("insert app fixture: %v", err)
	}
}

func TestIntegrationGetAppForUser(t *testing.T) {
	ctx, repo := newTestEnv(t)

	app := &model.App{
		ID:        testutil.UniqueID("app"),
		UserID:    testutil.UniqueID("user"),
		Name:      "todo list",
		Status:    model.AppStatusReady,
		CreatedAt: time.Now().UTC(),
	}
	insertApp(t, ctx, repo, app)

	got, err := repo.GetAppForUser(ctx, app.ID, app.UserID)
	if err != nil {
		t.Fatalf("GetAppForUser failed: %v", err)
	}
	if got.Name != "todo list" {
		t.Errorf("Name mismatch: got %q", got.Name)
	}
}

func TestIntegrationGetAppForUser_OtherOwner(t *testing.T) {
	ctx, repo := newTestEnv(t)

	app := &model.App{
		ID:        testutil.UniqueID("app"),
		UserID:    testutil.UniqueID("owner"),
		Name:      "private app",
		Status:    model.AppStatusReady,
		CreatedAt: time.Now().UTC(),
	}
	insertApp(t, ctx, repo, app)

	// A row owned by someone else is reported exactly like an absent row.
	_, err := repo.GetAppForUser(ctx, app.ID, testutil.UniqueID("intruder"))
	if !errors.Is(err, ErrAppNotFound) {
		t.Errorf("expected ErrAppNotFound, got: %v", err)
	}
}

func TestIntegrationUpsertDeviceToken_Idempotent(t *testing.T) {
	ctx, repo := newTestEnv(t)

	userID := testutil.UniqueID("user")
	token := testutil.UniqueID("device")

	if err := repo.UpsertDeviceToken(ctx, userID, token); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	var firstUsed time.Time
	err := repo.Pool().QueryRow(ctx,
		"SELECT last_used_at FROM user_devices WHERE device_token = $1", token,
	).Scan(&firstUsed)
	if err != nil {
		t.Fatalf("read first row: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if err := repo.UpsertDeviceToken(ctx, userID, token); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	var count int
	var secondUsed time.Time
	err = repo.Pool().QueryRow(ctx,
		"SELECT COUNT(*), MAX(last_used_at) FROM user_devices WHERE device_token = $1", token,
	).Scan(&count, &secondUsed)
	if err != nil {
		t.Fatalf("read second row: %v", err)
	}

	if count != 1 {
		t.Errorf("expected exactly one row, got %d", count)
	}
	if !secondUsed.After(firstUsed) {
		t.Errorf("last_used_at not refreshed: first=%v second=%v", firstUsed, secondUsed)
	}
}

func TestIntegrationGetLatestSubscription(t *testing.T) {
	ctx, repo := newTestEnv(t)

	userID := testutil.UniqueID("user")

	_, err := repo.GetLatestSubscription(ctx, userID)
	if !errors.Is(err, ErrSubscriptionNotFound) {
		t.Fatalf("expected ErrSubscriptionNotFound for empty table, got: %v", err)
	}

	now := time.Now().UTC()
	for i, status := range []string{model.SubscriptionCanceled, model.SubscriptionActive} {
		_, err := repo.Pool().Exec(ctx, `
			INSERT INTO subscriptions (id, user_id, status, price_id, current_period_start, current_period_end, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			testutil.UniqueID("sub"), userID, status, "price_starter",
			now.AddDate(0, -1, 0), now.AddDate(0, 1, 0), now.Add(time.Duration(i)*time.Minute),
		)
		if err != nil {
			t.Fatalf("insert subscription fixture: %v", err)
		}
	}

	sub, err := repo.GetLatestSubscription(ctx, userID)
	if err != nil {
		t.Fatalf("GetLatestSubscription failed: %v", err)
	}
	// Canceled rows are filtered out; the active row is the latest match.
	if sub.Status != model.SubscriptionActive {
		t.Errorf("expected active subscription, got %s", sub.Status)
	}
	if !sub.IsActive() {
		t.Error("IsActive should be true for active status")
	}
}

func TestIntegrationHasIntegration(t *testing.T) {
	ctx, repo := newTestEnv(t)

	userID := testutil.UniqueID("user")

	exists, err := repo.HasIntegration(ctx, userID, model.IntegrationSupabase)
	if err != nil {
		t.Fatalf("HasIntegration failed: %v", err)
	}
	if exists {
		t.Error("expected no integration for fresh user")
	}

	_, err = repo.Pool().Exec(ctx, `
		INSERT INTO user_integrations (id, user_id, integration_type)
		VALUES ($1, $2, $3)
	`, testutil.UniqueID("int"), userID, model.IntegrationSupabase)
	if err != nil {
		t.Fatalf("insert integration fixture: %v", err)
	}

	exists, err = repo.HasIntegration(ctx, userID, model.IntegrationSupabase)
	if err != nil {
		t.Fatalf("HasIntegration failed: %v", err)
	}
	if !exists {
		t.Error("expected integration to exist")
	}
}

func TestIntegrationGetListingByShareID(t *testing.T) {
	ctx, repo := newTestEnv(t)

	shareID := testutil.UniqueID("share")
	_, err := repo.Pool().Exec(ctx, `
		INSERT INTO app_listing_info (id, app_id, share_id, name)
		VALUES ($1, $2, $3, $4)
	`, testutil.UniqueID("listing"), testutil.UniqueID("app"), shareID, "shared app")
	if err != nil {
		t.Fatalf("insert listing fixture: %v", err)
	}

	listing, err := repo.GetListingByShareID(ctx, shareID)
	if err != nil {
		t.Fatalf("GetListingByShareID failed: %v", err)
	}
	if listing.Name != "shared app" {
		t.Errorf("Name mismatch: got %q", listing.Name)
	}

	_, err = repo.GetListingByShareID(ctx, "nonexistent")
	if !errors.Is(err, ErrListingNotFound) {
		t.Errorf("expected ErrListingNotFound, got: %v", err)
	}
}

func TestIntegrationInsertAgentResponse(t *testing.T) {
	ctx, repo := newTestEnv(t)

	row := &model.AgentResponse{
		ID:        testutil.UniqueID("resp"),
		AppID:     testutil.UniqueID("app"),
		UserID:    testutil.UniqueID("user"),
		Response:  "added a settings screen",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	if err := repo.InsertAgentResponse(ctx, row); err != nil {
		t.Fatalf("InsertAgentResponse failed: %v", err)
	}

	var got model.AgentResponse
	err := repo.Pool().QueryRow(ctx, `
		SELECT id, app_id, user_id, agent_response, created_at
		FROM agent_responses WHERE id = $1
	`, row.ID).Scan(&got.ID, &got.AppID, &got.UserID, &got.Response, &got.CreatedAt)
	if err != nil {
		t.Fatalf("read inserted row: %v", err)
	}

	if got.ID == "" || got.CreatedAt.IsZero() {
		t.Errorf("row persisted without identity: %+v", got)
	}
	if got.Response != row.Response || got.AppID != row.AppID || got.UserID != row.UserID {
		t.Errorf("row mismatch: got %+v, want %+v", got, row)
	}
	if !got.CreatedAt.Equal(row.CreatedAt) {
		t.Errorf("created_at mismatch: got %v, want %v", got.CreatedAt, row.CreatedAt)
	}
}

func TestIntegrationResetStuckApps(t *testing.T) {
	ctx, repo := newTestEnv(t)

	stuck := &model.App{
		ID:        testutil.UniqueID("app"),
		UserID:    testutil.UniqueID("user"),
		Name:      "stuck build",
		Status:    model.AppStatusBuilding,
		CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
	}
	insertApp(t, ctx, repo, stuck)

	fresh := &model.App{
		ID:        testutil.UniqueID("app"),
		UserID:    stuck.UserID,
		Name:      "fresh build",
		Status:    model.AppStatusBuilding,
		CreatedAt: time.Now().UTC(),
	}
	insertApp(t, ctx, repo, fresh)

	reset, err := repo.ResetStuckApps(ctx, time.Hour)
	if err != nil {
		t.Fatalf("ResetStuckApps failed: %v", err)
	}
	if reset != 1 {
		t.Errorf("expected 1 app reset, got %d", reset)
	}

	got, err := repo.GetAppForUser(ctx, stuck.ID, stuck.UserID)
	if err != nil {
		t.Fatalf("GetAppForUser failed: %v", err)
	}
	if got.Status != model.AppStatusFailed {
		t.Errorf("expected failed status, got %s", got.Status)
	}
}
