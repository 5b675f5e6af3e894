package model

import "time"

// Integration types recognized by the integrations endpoints.
const (
	IntegrationSupabase = "supabase"
	IntegrationGitHub   = "github"
)

// Integration records a user's connection to a third-party service.
// Handlers only ever report existence, never credential contents.
type Integration struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	IntegrationType string    `json:"integration_type"`
	CreatedAt       time.Time `json:"created_at"`
}
