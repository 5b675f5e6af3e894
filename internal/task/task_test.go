package task

import (
	"context"
	"encoding/json"
	"testing"
)

func noopHandler(ctx context.Context, payload json.RawMessage) error { return nil }

func TestAttemptsAllowed(t *testing.T) {
	t.Parallel()

	// 0 and 1 both mean exactly one attempt.
	tests := []struct {
		maxAttempts int
		want        int
	}{
		{0, 1},
		{1, 1},
		{3, 3},
	}

	for _, tt := range tests {
		def := Definition{MaxAttempts: tt.maxAttempts}
		if got := def.attemptsAllowed(); got != tt.want {
			t.Errorf("attemptsAllowed() with MaxAttempts=%d = %d, want %d", tt.maxAttempts, got, tt.want)
		}
	}
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	err := r.Register(Definition{Name: "t1", Queue: QueueSetup, Handler: noopHandler})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	def, ok := r.Lookup("t1")
	if !ok {
		t.Fatal("Lookup should find registered task")
	}
	if def.Queue != QueueSetup {
		t.Errorf("queue = %q, want %q", def.Queue, QueueSetup)
	}
}

func TestRegistry_DefaultsQueue(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := r.Register(Definition{Name: "t1", Handler: noopHandler}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	def, _ := r.Lookup("t1")
	if def.Queue != QueueDefault {
		t.Errorf("queue = %q, want %q", def.Queue, QueueDefault)
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := r.Register(Definition{Name: "t1", Handler: noopHandler}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(Definition{Name: "t1", Handler: noopHandler}); err == nil {
		t.Fatal("expected error registering duplicate name")
	}
}

func TestRegistry_RejectsUndeclaredQueue(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	err := r.Register(Definition{Name: "t1", Queue: "mystery-queue", Handler: noopHandler})
	if err == nil {
		t.Fatal("expected error for undeclared queue")
	}
}

func TestRegistry_RejectsMissingHandler(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := r.Register(Definition{Name: "t1"}); err == nil {
		t.Fatal("expected error for nil handler")
	}
}
