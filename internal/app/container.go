package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/application/commands"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/queries"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/services"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/subscribers"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/focus"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/leaderboard"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/value_objects"
	"github.com/felixgeelhaar/nudge/internal/productivity/infrastructure/persistence"
	"github.com/felixgeelhaar/nudge/internal/productivity/infrastructure/reminders"
	"github.com/felixgeelhaar/nudge/internal/productivity/infrastructure/weightswatch"
	sharedApplication "github.com/felixgeelhaar/nudge/internal/shared/application"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/nudge/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/nudge/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/docstore"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/nudge/pkg/config"
	"github.com/felixgeelhaar/nudge/pkg/observability"
	"github.com/redis/go-redis/v9"
)

// ReminderStore schedules reminders and hands them out once due.
type ReminderStore interface {
	task.ReminderScheduler
	reminders.Source
}

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	// Infrastructure
	DBConn      database.Connection
	RedisClient *redis.Client
	Store       docstore.Store

	// Repositories
	TaskRepo        task.Repository
	LeaderboardRepo leaderboard.Repository
	FocusRepo       focus.Repository
	OutboxRepo      outbox.Repository
	UnitOfWork      sharedApplication.UnitOfWork
	Reminders       ReminderStore

	// Publishers
	EventPublisher eventbus.Publisher
	LocalBus       *eventbus.InProcessBus

	// Ranking
	Engine    *services.PriorityEngine
	Session   *services.Session
	Tracker   *services.FocusTracker
	Lifecycle *services.LifecycleAdapter

	// Command Handlers
	CreateTaskHandler *commands.CreateTaskHandler
	LifecycleHandler  *commands.LifecycleHandler
	PinTaskHandler    *commands.PinTaskHandler

	// Query Handlers
	ListTasksHandler      *queries.ListTasksHandler
	GetTaskHandler        *queries.GetTaskHandler
	RankTasksHandler      *queries.RankTasksHandler
	ExplainTaskHandler    *queries.ExplainTaskHandler
	CompletedTasksHandler *queries.CompletedTasksHandler
	LeaderboardHandler    *queries.LeaderboardHandler

	// Background work
	OutboxProcessor    *outbox.Processor
	ReminderDispatcher *reminders.Dispatcher
	ReminderNudger     *subscribers.ReminderNudger
	WeightsWatcher     *weightswatch.Watcher

	unsubscribeFocus func()
}

type options struct {
	clock  func() time.Time
	notify subscribers.Notifier
}

// Option configures NewContainer.
type Option func(*options)

// WithClock overrides time.Now for every time-dependent component.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// WithNotifier delivers reminder nudges in addition to logging them.
func WithNotifier(notify subscribers.Notifier) Option {
	return func(o *options) { o.notify = notify }
}

// NewContainer creates and wires all dependencies. The focus event observer
// publishes with ctx, so it should live as long as the process.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
	}

	if err := c.initStorage(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initMessaging(ctx, o); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initRanking(ctx, o); err != nil {
		c.Close()
		return nil, err
	}
	c.initHandlers()

	logger.Info("container ready",
		"driver", c.DBConn.Driver(),
		"strategy", c.Tracker.Strategy(),
		"user_id", cfg.UserID,
		"redis", c.RedisClient != nil,
		"rabbitmq", cfg.RabbitMQURL != "",
	)
	return c, nil
}

func (c *Container) initStorage(ctx context.Context) error {
	cfg := c.Config

	conn, err := database.Open(ctx, database.Config{
		Driver:      database.Driver(cfg.DatabaseDriver),
		URL:         cfg.DatabaseURL,
		SQLitePath:  sqlitePath(cfg),
		BusyTimeout: cfg.SQLiteBusyTimeout,
		MaxConns:    cfg.DatabaseMaxConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.Health.Register("database", observability.DatabaseHealthChecker(conn.Ping))

	if err := migrations.Run(ctx, conn); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	var store docstore.Store = docstore.NewSQLStore(conn)
	if cfg.StoreBreakerEnabled {
		store = docstore.NewBreakerStore(store, docstore.BreakerConfig{
			Name:             "docstore",
			FailureThreshold: convert.IntToUint32Clamped(cfg.StoreBreakerFailures),
			HalfOpenRequests: convert.IntToUint32Clamped(cfg.StoreBreakerHalfOpen),
			Interval:         cfg.StoreBreakerInterval,
			OpenTimeout:      cfg.StoreBreakerTimeout,
		}, c.Logger)
	}
	c.Store = store

	c.TaskRepo = persistence.NewDocumentTaskRepository(store, c.Logger)
	c.LeaderboardRepo = persistence.NewDocumentLeaderboardRepository(store)
	c.FocusRepo = persistence.NewDocumentFocusRepository(store)
	c.OutboxRepo = outbox.NewSQLRepository(conn)
	c.UnitOfWork = database.NewUnitOfWork(conn)
	return nil
}

func (c *Container) initMessaging(ctx context.Context, o options) error {
	cfg := c.Config

	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		client := redis.NewClient(redisOpts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.RedisClient = client
		c.Reminders = reminders.NewRedisScheduler(client, cfg.ReminderKeyPrefix, cfg.UserID, o.clock)
		c.Health.Register("redis", observability.RedisHealthChecker(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}))
	} else {
		c.Reminders = reminders.NewMemoryScheduler(cfg.UserID, o.clock)
	}

	c.ReminderNudger = subscribers.NewReminderNudger(c.TaskRepo, o.notify, c.Logger, c.Metrics)

	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, c.Logger)
		if err != nil {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.EventPublisher = publisher
		c.Health.Register("rabbitmq", observability.RabbitMQHealthChecker(publisher.Ping))
	} else {
		c.LocalBus = eventbus.NewInProcessBus(c.Logger)
		c.LocalBus.Register(c.ReminderNudger)
		c.EventPublisher = c.LocalBus
	}

	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, outbox.ProcessorConfig{
		PollInterval:     cfg.OutboxPollInterval,
		BatchSize:        cfg.OutboxBatchSize,
		MaxRetries:       cfg.OutboxMaxRetries,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
		RetentionDays:    cfg.OutboxRetentionDays,
	}, c.Logger, outbox.WithProcessorMetrics(c.Metrics))

	c.ReminderDispatcher = reminders.NewDispatcher(c.Reminders, c.OutboxRepo,
		reminders.WithDispatcherClock(o.clock),
		reminders.WithDispatcherLogger(c.Logger),
		reminders.WithDispatcherMetrics(c.Metrics),
	)
	return nil
}

func (c *Container) initRanking(ctx context.Context, o options) error {
	cfg := c.Config

	weights := services.DefaultWeights()
	if cfg.WeightsFile != "" {
		loaded, err := services.LoadWeights(cfg.WeightsFile)
		if err != nil {
			return fmt.Errorf("failed to load weights: %w", err)
		}
		weights = loaded
	}
	c.Engine = services.NewPriorityEngine(weights)

	c.Session = services.NewSession(cfg.UserID)
	ranker := services.NewRanker(c.Engine, services.StrategyByName(cfg.Strategy, c.Engine))
	c.Tracker = services.NewFocusTracker(c.Session, ranker,
		services.WithClock(o.clock),
		services.WithTrackerLogger(c.Logger),
		services.WithTrackerMetrics(c.Metrics),
	)
	c.unsubscribeFocus = c.Tracker.Subscribe(
		services.NewFocusEventObserver(ctx, c.EventPublisher, cfg.UserID, c.Logger),
	)

	c.Lifecycle = services.NewLifecycleAdapter(c.Session, c.TaskRepo, c.Reminders,
		services.WithUnitOfWork(c.UnitOfWork),
		services.WithOutbox(c.OutboxRepo),
		services.WithLeaderboard(c.LeaderboardRepo),
		services.WithTracker(c.Tracker),
		services.WithLifecycleClock(o.clock),
		services.WithDefaultInterval(value_objects.ReminderInterval(cfg.ReminderDefaultMinutes)),
		services.WithLifecycleLogger(c.Logger),
		services.WithLifecycleMetrics(c.Metrics),
	)

	if cfg.WeightsFile != "" {
		watcher, err := weightswatch.New(cfg.WeightsFile, c.Engine, func() { c.Tracker.Recompute() }, c.Logger, c.Metrics)
		if err != nil {
			return fmt.Errorf("failed to watch weights: %w", err)
		}
		c.WeightsWatcher = watcher
	}
	return nil
}

func (c *Container) initHandlers() {
	c.CreateTaskHandler = commands.NewCreateTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork, c.Tracker)
	c.LifecycleHandler = commands.NewLifecycleHandler(c.TaskRepo, c.Session, c.Lifecycle)
	c.PinTaskHandler = commands.NewPinTaskHandler(c.FocusRepo, c.Tracker)

	c.ListTasksHandler = queries.NewListTasksHandler(c.TaskRepo)
	c.GetTaskHandler = queries.NewGetTaskHandler(c.TaskRepo)
	c.RankTasksHandler = queries.NewRankTasksHandler(c.TaskRepo, c.FocusRepo, c.Tracker)
	c.ExplainTaskHandler = queries.NewExplainTaskHandler(c.TaskRepo, c.Tracker)
	c.CompletedTasksHandler = queries.NewCompletedTasksHandler(c.TaskRepo)
	c.LeaderboardHandler = queries.NewLeaderboardHandler(c.LeaderboardRepo)
}

// LoadSession fills the session with the user's active tasks and ranks them.
func (c *Container) LoadSession(ctx context.Context) (services.RankResult, error) {
	if err := queries.LoadSession(ctx, c.TaskRepo, c.FocusRepo, c.Session); err != nil {
		return services.RankResult{}, err
	}
	return c.Tracker.Recompute(), nil
}

// Flush moves due reminders into the outbox and publishes pending messages
// once. Short-lived processes call it before exiting.
func (c *Container) Flush(ctx context.Context) error {
	if _, err := c.ReminderDispatcher.DispatchOnce(ctx); err != nil {
		return fmt.Errorf("failed to dispatch reminders: %w", err)
	}
	if !c.Config.OutboxProcessorEnabled {
		return nil
	}
	if err := c.OutboxProcessor.ProcessOnce(ctx); err != nil {
		return fmt.Errorf("failed to process outbox: %w", err)
	}
	return nil
}

// Close releases every resource in reverse order of creation.
func (c *Container) Close() {
	if c.unsubscribeFocus != nil {
		c.unsubscribeFocus()
	}

	if c.WeightsWatcher != nil {
		if err := c.WeightsWatcher.Close(); err != nil {
			c.Logger.Warn("error closing weights watcher", "error", err)
		}
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Debug("database connection closed")
		}
	}
}

func sqlitePath(cfg *config.Config) string {
	if cfg.SQLitePath != "" {
		return cfg.SQLitePath
	}
	if cfg.DatabaseURL != "" && database.DetectDriver(cfg.DatabaseURL) == database.DriverSQLite {
		return database.SQLitePathFromURL(cfg.DatabaseURL)
	}
	return database.DefaultSQLitePath()
}
