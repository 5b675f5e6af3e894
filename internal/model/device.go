package model

import "time"

// DeviceToken is a push-notification registration for one device.
// Uniqueness is keyed on the token itself so repeated registration from
// the same device is an idempotent upsert.
type DeviceToken struct {
	UserID     string    `json:"user_id"`
	Token      string    `json:"device_token"`
	LastUsedAt time.Time `json:"last_used_at"`
}
