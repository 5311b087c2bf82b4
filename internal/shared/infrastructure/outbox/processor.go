package outbox

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/nudge/pkg/observability"
)

// ProcessorConfig tunes polling and retries. A message is dead-lettered on
// its MaxRetries-th failed publish; zero dead-letters on the first failure.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
	RetentionDays    int
}

func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     100 * time.Millisecond,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
		RetentionDays:    7,
	}
}

// Stats is a snapshot of what the processor has done since it was built.
type Stats struct {
	Running         bool
	Published       uint64
	Failed          uint64
	Dead            uint64
	Pending         int
	LagSeconds      float64
	LastError       string
	LastErrorAt     *time.Time
	LastProcessedAt *time.Time
}

// Processor publishes outbox messages in id order. Failed publishes are
// retried with exponential backoff until MaxRetries.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger
	metrics   observability.Metrics
	clock     func() time.Time

	running atomic.Bool
	batchMu sync.Mutex

	statsMu sync.Mutex
	stats   Stats
}

type ProcessorOption func(*Processor)

func WithProcessorMetrics(m observability.Metrics) ProcessorOption {
	return func(p *Processor) { p.metrics = m }
}

func WithProcessorClock(clock func() time.Time) ProcessorOption {
	return func(p *Processor) { p.clock = clock }
}

func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger, opts ...ProcessorOption) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
		metrics:   observability.NoopMetrics{},
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run publishes a batch every PollInterval until ctx is done. Batch errors
// are logged and the loop keeps going.
func (p *Processor) Run(ctx context.Context) error {
	interval := p.config.PollInterval
	if interval <= 0 {
		interval = DefaultProcessorConfig().PollInterval
	}
	p.running.Store(true)
	defer p.running.Store(false)

	p.logger.Info("outbox processor running", "poll_interval", interval, "batch_size", p.config.BatchSize)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox processor stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := p.ProcessOnce(ctx); err != nil {
				p.logger.Error("failed to process outbox batch", "error", err)
			}
		}
	}
}

// ProcessOnce publishes one batch. Only a failure to read the batch is
// returned; per-message failures are recorded on the message.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	p.batchMu.Lock()
	defer p.batchMu.Unlock()

	messages, err := p.repo.GetUnpublished(ctx, p.batchSize())
	if err != nil {
		p.noteError(err)
		return err
	}
	p.noteBatch(messages)

	for _, msg := range messages {
		if err := p.publisher.Publish(ctx, msg.RoutingKey, msg.Payload); err != nil {
			p.handleFailure(ctx, msg, err)
			continue
		}
		if err := p.repo.MarkPublished(ctx, msg.ID); err != nil {
			p.logger.Error("failed to mark outbox message published", "id", msg.ID, "event_id", msg.EventID, "error", err)
			continue
		}
		p.update(func(s *Stats) { s.Published++ })
		p.metrics.Counter(observability.MetricEventsPublished, 1, observability.T("routing_key", msg.RoutingKey))
	}
	return nil
}

func (p *Processor) handleFailure(ctx context.Context, msg *Message, err error) {
	metadata := msg.EventMetadata()
	p.logger.Warn("failed to publish outbox message",
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"event_id", msg.EventID,
		"correlation_id", metadata.CorrelationID,
		"user_id", metadata.UserID,
		"attempt", msg.RetryCount+1,
		"error", err,
	)
	p.noteError(err)

	if msg.RetryCount+1 >= p.config.MaxRetries {
		p.update(func(s *Stats) { s.Dead++ })
		p.metrics.Counter(observability.MetricOperationErrors, 1, observability.T("operation", "outbox.dead_letter"))
		if markErr := p.repo.MarkDead(ctx, msg.ID, err.Error()); markErr != nil {
			p.logger.Error("failed to dead-letter outbox message", "id", msg.ID, "error", markErr)
		}
		return
	}

	p.update(func(s *Stats) { s.Failed++ })
	retryAt := p.clock().Add(p.backoff(msg.RetryCount + 1))
	if markErr := p.repo.MarkFailed(ctx, msg.ID, err.Error(), retryAt); markErr != nil {
		p.logger.Error("failed to record outbox publish failure", "id", msg.ID, "error", markErr)
	}
}

// backoff doubles from RetryBackoffBase per attempt, capped at
// RetryBackoffMax.
func (p *Processor) backoff(attempt int) time.Duration {
	base, ceiling := p.config.RetryBackoffBase, p.config.RetryBackoffMax
	if base <= 0 {
		base = time.Second
	}
	if ceiling <= 0 {
		ceiling = time.Minute
	}
	delay := base
	for i := 1; i < attempt && delay < ceiling; i++ {
		delay *= 2
	}
	return min(delay, ceiling)
}

func (p *Processor) batchSize() int {
	if p.config.BatchSize <= 0 {
		return DefaultProcessorConfig().BatchSize
	}
	return p.config.BatchSize
}

// Cleanup prunes published messages past RetentionDays. Zero retention
// keeps everything.
func (p *Processor) Cleanup(ctx context.Context) (int64, error) {
	days := p.config.RetentionDays
	if days <= 0 {
		return 0, nil
	}
	deleted, err := p.repo.DeleteOld(ctx, days)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		p.logger.Info("pruned published outbox messages", "count", deleted, "retention_days", days)
	}
	return deleted, nil
}

func (p *Processor) IsRunning() bool {
	return p.running.Load()
}

func (p *Processor) Stats() Stats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	s := p.stats
	s.Running = p.IsRunning()
	return s
}

func (p *Processor) update(fn func(*Stats)) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	fn(&p.stats)
}

func (p *Processor) noteError(err error) {
	now := p.clock()
	p.update(func(s *Stats) {
		s.LastError = err.Error()
		s.LastErrorAt = &now
	})
}

// noteBatch records lag as the age of the oldest message in the batch.
func (p *Processor) noteBatch(messages []*Message) {
	now := p.clock()
	lag := 0.0
	for _, msg := range messages {
		lag = max(lag, now.Sub(msg.CreatedAt).Seconds())
	}
	p.update(func(s *Stats) {
		s.LastProcessedAt = &now
		s.Pending = len(messages)
		s.LagSeconds = lag
	})
}
