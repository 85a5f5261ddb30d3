// Package pipeline publishes simulation results asynchronously so that
// request handlers never wait on the message broker.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/impact-sim-service/internal/domain"
	"github.com/couchcryptid/impact-sim-service/internal/observability"
	"github.com/couchcryptid/impact-sim-service/internal/retry"
	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
)

const (
	maxLoadAttempts = 3
	drainTimeout    = 5 * time.Second
	queueFactor     = 16
)

// BatchLoader writes multiple simulation events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.SimulationEvent) error
}

// Pipeline buffers simulation events and writes them in batches.
type Pipeline struct {
	loader        BatchLoader
	logger        *slog.Logger
	metrics       *observability.Metrics
	queue         chan domain.SimulationEvent
	batchSize     int
	flushInterval time.Duration
	backoff       retry.Backoff
	running       atomic.Bool
}

// New creates a Pipeline. Batches are written when batchSize events are
// buffered or flushInterval elapses, whichever comes first.
func New(l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, flushInterval time.Duration) *Pipeline {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Pipeline{
		loader:        l,
		logger:        logger,
		metrics:       metrics,
		queue:         make(chan domain.SimulationEvent, batchSize*queueFactor),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		backoff:       retry.Backoff{Initial: 200 * time.Millisecond, Max: 5 * time.Second},
	}
}

// Enqueue hands an event to the publish loop without blocking. It reports
// false and counts a publish error when the queue is full.
func (p *Pipeline) Enqueue(ev domain.SimulationEvent) bool {
	select {
	case p.queue <- ev:
		return true
	default:
		p.metrics.PublishErrors.Inc()
		p.logger.Warn("publish queue full, dropping simulation event", "id", ev.ID, "source", ev.Source)
		return false
	}
}

// CheckReadiness returns nil while the publish loop is running.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.running.Load() {
		return errors.New("publish loop is not running")
	}
	return nil
}

// Run executes the batch publish loop until the context is cancelled, then
// drains whatever is still queued.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("publisher started", "batch_size", p.batchSize, "flush_interval", p.flushInterval)
	p.running.Store(true)
	p.metrics.PublisherRunning.Set(1)
	defer func() {
		p.running.Store(false)
		p.metrics.PublisherRunning.Set(0)
	}()

	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	batch := make([]domain.SimulationEvent, 0, p.batchSize)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("publisher stopping", "reason", ctx.Err())
			p.drain(context.WithoutCancel(ctx), batch)
			return nil
		case ev := <-p.queue:
			batch = append(batch, ev)
			if len(batch) >= p.batchSize {
				p.flush(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				p.flush(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

// drain publishes the pending batch and anything left in the queue, bounded
// by drainTimeout.
func (p *Pipeline) drain(ctx context.Context, batch []domain.SimulationEvent) {
	ctx, cancel := context.WithTimeout(ctx, drainTimeout)
	defer cancel()

	for {
		select {
		case ev := <-p.queue:
			batch = append(batch, ev)
			if len(batch) >= p.batchSize {
				p.flush(ctx, batch)
				batch = batch[:0]
			}
		default:
			if len(batch) > 0 {
				p.flush(ctx, batch)
			}
			return
		}
	}
}

// flush writes one batch, retrying with backoff. A batch that still fails is
// dropped and counted.
func (p *Pipeline) flush(ctx context.Context, batch []domain.SimulationEvent) {
	backoff := p.backoff
	for attempt := 1; ; attempt++ {
		err := p.loader.LoadBatch(ctx, batch)
		if err == nil {
			p.metrics.EventsPublished.Add(float64(len(batch)))
			p.metrics.PublishBatchSize.Observe(float64(len(batch)))
			return
		}
		if attempt == maxLoadAttempts || ctx.Err() != nil {
			p.logger.Error("publish batch failed, dropping", "error", err, "batch_size", len(batch), "attempts", attempt)
			p.metrics.PublishErrors.Add(float64(len(batch)))
			return
		}
		delay := backoff.Next()
		p.logger.Warn("publish batch failed, retrying", "error", err, "attempt", attempt, "backoff", delay)
		if !sharedretry.SleepWithContext(ctx, delay) {
			p.metrics.PublishErrors.Add(float64(len(batch)))
			return
		}
	}
}
