package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/makex/makex-api/internal/metrics"
)

const (
	// ConsumerGroup is the Redis consumer group name shared by workers.
	ConsumerGroup = "task_workers"

	// DefaultBlockTimeout is how long to block waiting for messages.
	DefaultBlockTimeout = 5 * time.Second

	// DefaultClaimInterval is how often to scan pending messages.
	DefaultClaimInterval = 10 * time.Second

	// DefaultClaimIdle is the idle time before reclaiming pending messages.
	DefaultClaimIdle = 30 * time.Second

	// DefaultMetricsInterval is how often to refresh queue depth metrics.
	DefaultMetricsInterval = 5 * time.Second
)

// Worker consumes task streams. Each declared queue gets its own read
// loop; runs within a queue are limited by the queue's declared
// concurrency.
type Worker struct {
	redis           *redis.Client
	registry        *Registry
	logger          *slog.Logger
	metrics         metrics.Recorder
	consumerID      string
	blockTimeout    time.Duration
	claimInterval   time.Duration
	claimIdle       time.Duration
	metricsInterval time.Duration

	started  bool
	draining bool
	cancel   context.CancelFunc
	done     chan struct{}
	mu       sync.Mutex
}

// NewWorker creates a Worker over the given registry.
func NewWorker(client *redis.Client, registry *Registry, logger *slog.Logger, consumerID string, recorder metrics.Recorder) *Worker {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Worker{
		redis:           client,
		registry:        registry,
		logger:          logger.With("component", "task.worker", "consumer_id", consumerID),
		metrics:         recorder,
		consumerID:      consumerID,
		blockTimeout:    DefaultBlockTimeout,
		claimInterval:   DefaultClaimInterval,
		claimIdle:       DefaultClaimIdle,
		metricsInterval: DefaultMetricsInterval,
	}
}

// SetBlockTimeout overrides the default blocking timeout.
func (w *Worker) SetBlockTimeout(timeout time.Duration) {
	if timeout > 0 {
		w.blockTimeout = timeout
	}
}

// Run starts one consumer loop per declared queue and blocks until the
// context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return errors.New("worker already started")
	}
	w.started = true
	w.done = make(chan struct{})
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	defer close(w.done)

	for _, queue := range Queues() {
		if err := w.ensureConsumerGroup(ctx, queue); err != nil {
			return fmt.Errorf("ensure consumer group for %s: %w", queue, err)
		}
	}

	w.logger.Info("task worker started", "queues", len(Queues()))

	var wg sync.WaitGroup
	for _, queue := range Queues() {
		wg.Add(1)
		go func(queue string) {
			defer wg.Done()
			w.runQueue(ctx, queue)
		}(queue)
	}
	wg.Wait()

	w.logger.Info("task worker stopped")
	return nil
}

// Shutdown gracefully stops the worker, completing in-flight runs.
// It implements server.ShutdownFunc for integration with graceful shutdown.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return nil
	}
	w.draining = true
	cancel := w.cancel
	done := w.done
	w.mu.Unlock()

	w.logger.Info("task worker shutdown initiated")

	if cancel != nil {
		cancel()
	}

	if done != nil {
		select {
		case <-done:
			w.logger.Info("task worker shutdown complete")
			return nil
		case <-ctx.Done():
			w.logger.Warn("task worker shutdown timed out")
			return ctx.Err()
		}
	}
	return nil
}

// runQueue is the consumer loop for one queue.
func (w *Worker) runQueue(ctx context.Context, queue string) {
	limit := ConcurrencyLimit(queue)
	sem := make(chan struct{}, limit)
	var inflight sync.WaitGroup

	logger := w.logger.With("queue", queue)
	logger.Info("queue consumer started", "concurrency", limit)

	var lastClaim, lastMetrics time.Time
	claimStartID := "0-0"

	for {
		select {
		case <-ctx.Done():
			inflight.Wait()
			logger.Info("queue consumer stopping")
			return
		default:
		}

		if w.metricsInterval > 0 && time.Since(lastMetrics) >= w.metricsInterval {
			lastMetrics = time.Now()
			w.updateQueueDepth(ctx, queue)
		}

		var messages []redis.XMessage
		if w.claimInterval > 0 && time.Since(lastClaim) >= w.claimInterval {
			lastClaim = time.Now()
			claimed, start, err := w.claimPending(ctx, queue, claimStartID)
			if err != nil {
				logger.Warn("failed to claim pending messages", "error", err)
			}
			if start != "" {
				claimStartID = start
			}
			messages = claimed
		}

		if len(messages) == 0 {
			read, err := w.readBatch(ctx, queue, limit)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					continue
				}
				logger.Error("read error", "error", err)
				time.Sleep(time.Second)
				continue
			}
			messages = read
		}

		for _, msg := range messages {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				inflight.Wait()
				return
			}
			inflight.Add(1)
			go func(msg redis.XMessage) {
				defer func() {
					<-sem
					inflight.Done()
				}()
				w.handleMessage(ctx, queue, msg)
			}(msg)
		}
	}
}

// handleMessage runs one task message and decides its fate: ack on
// success, re-enqueue with attempt+1 while under the ceiling, otherwise
// dead-letter. The message is always acked so the stream drains.
func (w *Worker) handleMessage(ctx context.Context, queue string, msg redis.XMessage) {
	logger := w.logger.With("queue", queue, "message_id", msg.ID)

	name, _ := msg.Values["task"].(string)
	payload, _ := msg.Values["payload"].(string)
	runID, _ := msg.Values["run_id"].(string)
	attempt := parseAttempt(msg.Values["attempt"])

	def, ok := w.registry.Lookup(name)
	if !ok {
		w.deadLetter(ctx, queue, msg, "unknown_task", fmt.Sprintf("no definition for %q", name))
		w.ack(ctx, queue, msg.ID)
		return
	}

	start := time.Now()
	err := def.Handler(ctx, json.RawMessage(payload))
	w.metrics.ObserveTaskDuration(name, time.Since(start))

	if err == nil {
		logger.Info("task run succeeded",
			"task", name,
			"run_id", runID,
			"attempt", attempt,
			"duration_ms", float64(time.Since(start).Microseconds())/1000,
		)
		w.metrics.IncTaskRun(name, "success")
		w.ack(ctx, queue, msg.ID)
		return
	}

	if attempt < def.attemptsAllowed() {
		logger.Warn("task run failed, re-enqueueing",
			"task", name,
			"run_id", runID,
			"attempt", attempt,
			"max_attempts", def.attemptsAllowed(),
			"error", err,
		)
		w.metrics.IncTaskRun(name, "retried")
		if pubErr := w.reenqueue(ctx, def, runID, payload, attempt+1); pubErr != nil {
			logger.Error("failed to re-enqueue task", "task", name, "error", pubErr)
			// Leave the message pending so the claim loop retries it.
			return
		}
		w.ack(ctx, queue, msg.ID)
		return
	}

	logger.Error("task run exhausted attempts, dead-lettering",
		"task", name,
		"run_id", runID,
		"attempt", attempt,
		"error", err,
	)
	w.metrics.IncTaskRun(name, "dead_lettered")
	w.deadLetter(ctx, queue, msg, "attempts_exhausted", err.Error())
	w.ack(ctx, queue, msg.ID)
}

// reenqueue publishes the failed run back onto its stream with the
// bumped attempt counter.
func (w *Worker) reenqueue(ctx context.Context, def Definition, runID string, payload string, attempt int) error {
	return w.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey(def.Queue),
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"task":    def.Name,
			"run_id":  runID,
			"payload": payload,
			"attempt": strconv.Itoa(attempt),
		},
	}).Err()
}

// deadLetter moves an exhausted or malformed message off the queue.
func (w *Worker) deadLetter(ctx context.Context, queue string, msg redis.XMessage, reason, detail string) {
	err := w.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: DeadLetterKey(queue),
		MaxLen: 10000,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"original_id":      msg.ID,
			"original_stream":  StreamKey(queue),
			"task":             msg.Values["task"],
			"run_id":           msg.Values["run_id"],
			"payload":          msg.Values["payload"],
			"attempt":          msg.Values["attempt"],
			"reason":           reason,
			"detail":           detail,
			"dead_lettered_at": time.Now().UTC().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		w.logger.Error("failed to write to dead-letter stream",
			"queue", queue,
			"message_id", msg.ID,
			"error", err,
		)
	}
}

func (w *Worker) ack(ctx context.Context, queue, messageID string) {
	if err := w.redis.XAck(ctx, StreamKey(queue), ConsumerGroup, messageID).Err(); err != nil {
		w.logger.Warn("xack failed", "queue", queue, "message_id", messageID, "error", err)
	}
}

func (w *Worker) readBatch(ctx context.Context, queue string, count int) ([]redis.XMessage, error) {
	streams, err := w.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    ConsumerGroup,
		Consumer: w.consumerID,
		Streams:  []string{StreamKey(queue), ">"},
		Count:    int64(count),
		Block:    w.blockTimeout,
	}).Result()

	if err == redis.Nil || len(streams) == 0 {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup: %w", err)
	}

	return streams[0].Messages, nil
}

func (w *Worker) claimPending(ctx context.Context, queue, startID string) ([]redis.XMessage, string, error) {
	messages, start, err := w.redis.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   StreamKey(queue),
		Group:    ConsumerGroup,
		Consumer: w.consumerID,
		MinIdle:  w.claimIdle,
		Start:    startID,
		Count:    int64(ConcurrencyLimit(queue)),
	}).Result()
	if err != nil && err != redis.Nil {
		return nil, "", fmt.Errorf("xautoclaim: %w", err)
	}
	return messages, start, nil
}

func (w *Worker) updateQueueDepth(ctx context.Context, queue string) {
	groups, err := w.redis.XInfoGroups(ctx, StreamKey(queue)).Result()
	if err != nil {
		return
	}
	for _, group := range groups {
		if group.Name == ConsumerGroup {
			w.metrics.SetQueueDepth(queue, group.Pending+group.Lag)
			return
		}
	}
}

// ensureConsumerGroup creates the consumer group if it doesn't exist.
func (w *Worker) ensureConsumerGroup(ctx context.Context, queue string) error {
	err := w.redis.XGroupCreateMkStream(ctx, StreamKey(queue), ConsumerGroup, "0").Err()
	if err != nil && !isConsumerGroupExistsError(err) {
		return err
	}
	return nil
}

// isConsumerGroupExistsError checks if the error is "BUSYGROUP" (group exists).
func isConsumerGroupExistsError(err error) bool {
	return err != nil && (err.Error() == "BUSYGROUP Consumer Group name already exists" ||
		err.Error() == "BUSYGROUP")
}

func parseAttempt(v any) int {
	s, ok := v.(string)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
