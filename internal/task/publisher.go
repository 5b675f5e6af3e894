package task

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/makex/makex-api/internal/metrics"
)

const (
	// MaxStreamLen is the approximate max length of each task stream.
	MaxStreamLen = 100000
)

// Publisher enqueues tasks onto their queue streams.
type Publisher struct {
	redis    *redis.Client
	registry *Registry
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewPublisher creates a Publisher over the given registry.
func NewPublisher(client *redis.Client, registry *Registry, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:    client,
		registry: registry,
		logger:   logger.With("component", "task.publisher"),
		metrics:  recorder,
	}
}

// Enqueue publishes one run of the named task with payload. The payload
// must marshal to JSON. Returns the task run ID.
func (p *Publisher) Enqueue(ctx context.Context, name string, payload any) (string, error) {
	def, ok := p.registry.Lookup(name)
	if !ok {
		return "", fmt.Errorf("unknown task %q", name)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	runID := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()

	if err := p.publish(ctx, def, runID, data, 1); err != nil {
		return "", err
	}

	p.logger.Debug("task enqueued",
		"task", name,
		"queue", def.Queue,
		"run_id", runID,
	)
	p.metrics.IncTaskPublished(name)

	return runID, nil
}

// publish writes one message to the queue stream. attempt is 1-based.
func (p *Publisher) publish(ctx context.Context, def Definition, runID string, payload []byte, attempt int) error {
	err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey(def.Queue),
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"task":    def.Name,
			"run_id":  runID,
			"payload": string(payload),
			"attempt": strconv.Itoa(attempt),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", StreamKey(def.Queue), err)
	}
	return nil
}
