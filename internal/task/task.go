package task

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// Task names.
const (
	TaskEmailSignup         = "email-signup"
	TaskInsertAgentResponse = "insert-agent-response"
	TaskDeleteProject       = "delete-project"
	TaskSendNotification    = "send-notification"
)

// Handler executes one task run with its JSON payload.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Definition declares a task: the queue it runs on, its attempt
// ceiling, and the handler. MaxAttempts of 0 and 1 both mean a single
// attempt; higher values allow that many runs before dead-lettering.
type Definition struct {
	Name        string
	Queue       string
	MaxAttempts int
	Handler     Handler
}

// attemptsAllowed normalizes the declared ceiling to the number of runs
// the worker will perform.
func (d Definition) attemptsAllowed() int {
	if d.MaxAttempts <= 1 {
		return 1
	}
	return d.MaxAttempts
}

// Registry holds task definitions keyed by name.
type Registry struct {
	defs map[string]Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a definition. Registering the same name twice is a
// programming error.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("task definition missing name")
	}
	if def.Handler == nil {
		return fmt.Errorf("task %q missing handler", def.Name)
	}
	if def.Queue == "" {
		def.Queue = QueueDefault
	}
	if _, ok := queueConcurrency[def.Queue]; !ok {
		return fmt.Errorf("task %q references undeclared queue %q", def.Name, def.Queue)
	}
	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("task %q already registered", def.Name)
	}
	r.defs[def.Name] = def
	return nil
}

// Lookup returns the definition for name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Names returns registered task names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
