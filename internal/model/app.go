package model

import "time"

// App statuses as stored in the apps table.
const (
	AppStatusReady    = "ready"
	AppStatusBuilding = "building"
	AppStatusFailed   = "failed"
)

// App is a user-created application.
type App struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Prompt      string     `json:"prompt,omitempty"`
	AppURL      *string    `json:"app_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// AgentResponse is one AI agent reply recorded against an app.
type AgentResponse struct {
	ID        string    `json:"id"`
	AppID     string    `json:"app_id"`
	UserID    string    `json:"user_id"`
	Response  string    `json:"agent_response"`
	CreatedAt time.Time `json:"created_at"`
}
