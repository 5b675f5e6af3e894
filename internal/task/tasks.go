package task

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/makex/makex-api/internal/model"
	"github.com/makex/makex-api/internal/push"
)

// ContactCreator registers email signups with the email provider.
type ContactCreator interface {
	CreateContact(ctx context.Context, email, source string) error
}

// AgentResponseStore persists agent output rows.
type AgentResponseStore interface {
	InsertAgentResponse(ctx context.Context, resp *model.AgentResponse) error
}

// ProjectDeleter removes projects on the lifecycle service.
type ProjectDeleter interface {
	DeleteProject(ctx context.Context, projectID string) error
}

// AlertSender pushes a notification to one device.
type AlertSender interface {
	SendAlert(ctx context.Context, deviceToken string, alert push.Alert) error
}

// DeviceTokenLister loads the device tokens registered for a user.
type DeviceTokenLister interface {
	ListDeviceTokens(ctx context.Context, userID string) ([]*model.DeviceToken, error)
}

// EmailSignupPayload is the payload for the email-signup task.
type EmailSignupPayload struct {
	Email string `json:"email"`
}

// InsertAgentResponsePayload is the payload for insert-agent-response.
type InsertAgentResponsePayload struct {
	AppID    string `json:"app_id"`
	UserID   string `json:"user_id"`
	Response string `json:"response"`
}

// DeleteProjectPayload is the payload for delete-project.
type DeleteProjectPayload struct {
	ProjectID string `json:"project_id"`
}

// SendNotificationPayload is the payload for send-notification.
type SendNotificationPayload struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Deps are the outbound clients the task handlers call.
type Deps struct {
	Contacts ContactCreator
	Store    AgentResponseStore
	Projects ProjectDeleter
	Push     AlertSender
	Devices  DeviceTokenLister
}

// RegisterAll registers every task definition against its handler.
func RegisterAll(r *Registry, deps Deps) error {
	defs := []Definition{
		{
			Name:        TaskEmailSignup,
			Queue:       QueueDefault,
			MaxAttempts: 0,
			Handler:     emailSignupHandler(deps.Contacts),
		},
		{
			Name:        TaskInsertAgentResponse,
			Queue:       QueueDefault,
			MaxAttempts: 0,
			Handler:     insertAgentResponseHandler(deps.Store),
		},
		{
			Name:        TaskDeleteProject,
			Queue:       QueueSetup,
			MaxAttempts: 1,
			Handler:     deleteProjectHandler(deps.Projects),
		},
		{
			Name:        TaskSendNotification,
			Queue:       QueueDefault,
			MaxAttempts: 3,
			Handler:     sendNotificationHandler(deps.Devices, deps.Push),
		},
	}

	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func emailSignupHandler(contacts ContactCreator) Handler {
	return func(ctx context.Context, payload json.RawMessage) error {
		var p EmailSignupPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		if p.Email == "" {
			return fmt.Errorf("email is required")
		}
		return contacts.CreateContact(ctx, p.Email, "waitlist")
	}
}

func insertAgentResponseHandler(store AgentResponseStore) Handler {
	return func(ctx context.Context, payload json.RawMessage) error {
		var p InsertAgentResponsePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		if p.AppID == "" || p.UserID == "" {
			return fmt.Errorf("app_id and user_id are required")
		}
		now := time.Now()
		return store.InsertAgentResponse(ctx, &model.AgentResponse{
			ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
			AppID:     p.AppID,
			UserID:    p.UserID,
			Response:  p.Response,
			CreatedAt: now.UTC(),
		})
	}
}

func deleteProjectHandler(projects ProjectDeleter) Handler {
	return func(ctx context.Context, payload json.RawMessage) error {
		var p DeleteProjectPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		if p.ProjectID == "" {
			return fmt.Errorf("project_id is required")
		}
		return projects.DeleteProject(ctx, p.ProjectID)
	}
}

func sendNotificationHandler(devices DeviceTokenLister, sender AlertSender) Handler {
	return func(ctx context.Context, payload json.RawMessage) error {
		var p SendNotificationPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		if p.UserID == "" {
			return fmt.Errorf("user_id is required")
		}

		tokens, err := devices.ListDeviceTokens(ctx, p.UserID)
		if err != nil {
			return fmt.Errorf("list device tokens: %w", err)
		}

		var failed int
		for _, tok := range tokens {
			if err := sender.SendAlert(ctx, tok.Token, push.Alert{Title: p.Title, Body: p.Body}); err != nil {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("failed to deliver to %d of %d devices", failed, len(tokens))
		}
		return nil
	}
}
