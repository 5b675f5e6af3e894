package model

import "time"

// AppListing is the public share record for an app. Share pages resolve a
// short share id to this row without authentication.
type AppListing struct {
	ID          string    `json:"id"`
	AppID       string    `json:"app_id"`
	ShareID     string    `json:"share_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	AppURL      string    `json:"app_url,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
