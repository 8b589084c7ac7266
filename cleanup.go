package main

// cleanup.go removes superseded media in the background. Nothing here is ever
// reported back to the workflow that asked for it; failures land in the
// failed_cleanups collection instead.

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type cleanupJob struct {
	collection Collection
	recordID   string
	publicID   string
}

type Cleaner struct {
	media   MediaHost
	repo    Repository
	metrics *Metrics
	log     zerolog.Logger
	timeout time.Duration

	jobs     chan cleanupJob
	pending  sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	finished chan struct{}
}

func NewCleaner(media MediaHost, repo Repository, metrics *Metrics, log zerolog.Logger, queueSize int, timeout time.Duration) *Cleaner {
	if queueSize < 1 {
		queueSize = 1
	}
	c := &Cleaner{
		media:    media,
		repo:     repo,
		metrics:  metrics,
		log:      log.With().Str("component", "cleanup").Logger(),
		timeout:  timeout,
		jobs:     make(chan cleanupJob, queueSize),
		finished: make(chan struct{}),
	}
	go c.run()
	return c
}

// Enqueue never waits on the worker. A full queue sends the job to the dead
// letter in the background; a stopped cleaner dead-letters it before
// returning, outside the pending count that Close waits on.
func (c *Cleaner) Enqueue(job cleanupJob) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		c.deadLetter(job, "cleaner stopped")
		return
	}
	defer c.mu.RUnlock()
	c.pending.Add(1)
	select {
	case c.jobs <- job:
	default:
		go c.reject(job, "cleanup queue full")
	}
}

func (c *Cleaner) reject(job cleanupJob, reason string) {
	defer c.pending.Done()
	c.deadLetter(job, reason)
}

// Wait blocks until every job enqueued so far has been handled.
func (c *Cleaner) Wait() {
	c.pending.Wait()
}

// Close drains the queue and stops the worker.
func (c *Cleaner) Close(ctx context.Context) error {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.jobs)
	}
	c.mu.Unlock()

	select {
	case <-c.finished:
		c.pending.Wait()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Cleaner) run() {
	defer close(c.finished)
	for job := range c.jobs {
		c.process(job)
	}
}

func (c *Cleaner) process(job cleanupJob) {
	defer c.pending.Done()
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.media.Destroy(ctx, job.publicID); err != nil {
		c.deadLetter(job, err.Error())
		return
	}
	c.metrics.cleanups.WithLabelValues("ok").Inc()
	c.log.Info().
		Str("collection", string(job.collection)).
		Str("record", job.recordID).
		Str("public_id", job.publicID).
		Msg("old asset deleted")
}

func (c *Cleaner) deadLetter(job cleanupJob, reason string) {
	c.metrics.cleanups.WithLabelValues("failed").Inc()
	c.log.Error().
		Str("collection", string(job.collection)).
		Str("record", job.recordID).
		Str("public_id", job.publicID).
		Str("reason", reason).
		Msg("failed to delete asset")

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	_, err := c.repo.Create(ctx, FailedCleanups, Fields{
		"collection": string(job.collection),
		"record_id":  job.recordID,
		"public_id":  job.publicID,
		"reason":     reason,
		"created_at": time.Now().UnixMilli(),
	})
	if err != nil {
		c.log.Error().Err(err).Str("public_id", job.publicID).Msg("failed to record dead letter")
	}
}
