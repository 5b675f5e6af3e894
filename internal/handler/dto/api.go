// Package dto defines request and response shapes for the HTTP API.
package dto

// RemixRequest is the body for POST /api/app/remix.
type RemixRequest struct {
	AppID string `json:"appId"`
}

// DeviceRequest is the body for POST /api/device.
type DeviceRequest struct {
	DeviceToken string `json:"deviceToken"`
}

// DBQueryRequest is the body for POST /api/db.
type DBQueryRequest struct {
	ConnectionURI string `json:"connectionUri"`
	Query         string `json:"query"`
	Params        []any  `json:"params"`
}

// WaitlistRequest is the body for POST /api/waitlist.
type WaitlistRequest struct {
	Email string `json:"email"`
}

// ProxyRouteRequest is the body for PUT/DELETE /api/ops/proxy-route.
// TargetURL is ignored on delete.
type ProxyRouteRequest struct {
	AppName   string `json:"appName"`
	TargetURL string `json:"targetUrl"`
}
