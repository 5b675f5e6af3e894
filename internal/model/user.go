// Package model defines domain entities for the application.
package model

// User is the authenticated principal resolved by the hosted auth service.
// Identity is owned by the auth service; this is only what handlers need.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
