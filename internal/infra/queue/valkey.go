package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

type jobEnvelope struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

// ValkeyOptions tunes the Valkey-backed queue.
type ValkeyOptions struct {
	Key        string
	Workers    int
	JobTimeout time.Duration
	// ShardKey routes jobs with the same key to the same worker so they run
	// in enqueue order. Without it every worker pops from one shared list.
	ShardKey func(payload []byte) string
}

// ValkeyQueue persists jobs in a Valkey list and delivers them to a handler.
type ValkeyQueue struct {
	client      valkey.Client
	queueKey    string
	workers     int
	jobTimeout  time.Duration
	shardKey    func(payload []byte) string
	handler     Handler
	logger      *slog.Logger
	pollTimeout time.Duration
	wg          sync.WaitGroup
}

// NewValkeyQueue constructs a Valkey-backed queue.
func NewValkeyQueue(client valkey.Client, opts ValkeyOptions, handler Handler, logger *slog.Logger) *ValkeyQueue {
	if opts.Key == "" {
		opts.Key = "glucobot:events"
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ValkeyQueue{
		client:      client,
		queueKey:    opts.Key,
		workers:     opts.Workers,
		jobTimeout:  opts.JobTimeout,
		shardKey:    opts.ShardKey,
		handler:     handler,
		logger:      logger.With("component", "queue.valkey"),
		pollTimeout: 5 * time.Second,
	}
}

// Enqueue pushes a job onto the queue.
func (q *ValkeyQueue) Enqueue(ctx context.Context, name string, payload []byte) error {
	encoded, err := json.Marshal(jobEnvelope{Name: name, Payload: payload})
	if err != nil {
		return err
	}
	cmd := q.client.B().Lpush().Key(q.listFor(payload)).Element(string(encoded)).Build()
	return q.client.Do(ctx, cmd).Error()
}

// Start launches the worker loops. They exit once ctx is cancelled.
func (q *ValkeyQueue) Start(ctx context.Context) {
	if q.handler == nil {
		return
	}
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func(worker int) {
			defer q.wg.Done()
			q.consume(ctx, worker)
		}(i)
	}
	q.logger.Info("queue consumers started", "key", q.queueKey, "workers", q.workers, "sharded", q.sharded())
}

// Wait blocks until every worker has returned.
func (q *ValkeyQueue) Wait() {
	q.wg.Wait()
}

func (q *ValkeyQueue) consume(ctx context.Context, worker int) {
	for {
		if ctx.Err() != nil {
			return
		}
		resp := q.client.Do(ctx, q.client.B().Brpop().Key(q.workerList(worker)).Timeout(q.pollTimeout.Seconds()).Build())
		values, err := resp.ToArray()
		if err != nil {
			if !valkey.IsValkeyNil(err) && ctx.Err() == nil {
				q.logger.Warn("queue pop failed", "worker", worker, "error", err)
				time.Sleep(time.Second)
			}
			continue
		}
		if len(values) < 2 {
			continue
		}
		raw, err := values[1].ToString()
		if err != nil {
			q.logger.Warn("queue payload decode failed", "worker", worker, "error", err)
			continue
		}
		var job jobEnvelope
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			q.logger.Warn("queue unmarshal failed", "worker", worker, "error", err)
			continue
		}
		q.run(ctx, worker, job)
	}
}

func (q *ValkeyQueue) sharded() bool {
	return q.shardKey != nil && q.workers > 1
}

// workerList is the list a worker pops from.
func (q *ValkeyQueue) workerList(worker int) string {
	if !q.sharded() {
		return q.queueKey
	}
	return fmt.Sprintf("%s:%d", q.queueKey, worker)
}

// listFor picks the list a payload is pushed to.
func (q *ValkeyQueue) listFor(payload []byte) string {
	if !q.sharded() {
		return q.queueKey
	}
	return q.workerList(shardIndex(q.shardKey(payload), q.workers))
}

func shardIndex(key string, shards int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(shards))
}

func (q *ValkeyQueue) run(ctx context.Context, worker int, job jobEnvelope) {
	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.jobTimeout)
	defer cancel()
	if err := q.handler(jobCtx, job.Name, job.Payload); err != nil {
		q.logger.Error("queued job failed", "worker", worker, "job", job.Name, "error", err)
	}
}

var _ Queue = (*ValkeyQueue)(nil)
