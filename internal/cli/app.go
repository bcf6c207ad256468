package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Oniqq60/task_system_control/taskclient/internal/cfg"
	"github.com/Oniqq60/task_system_control/taskclient/internal/events"
	"github.com/Oniqq60/task_system_control/taskclient/internal/logging"
	"github.com/Oniqq60/task_system_control/taskclient/internal/search"
	"github.com/Oniqq60/task_system_control/taskclient/internal/services"
	"github.com/Oniqq60/task_system_control/taskclient/internal/session"
	"github.com/Oniqq60/task_system_control/taskclient/internal/task"
)

const metricsShutdownTimeout = 5 * time.Second

// App - зависимости команд, собранные один раз за запуск
type App struct {
	Config   cfg.Config
	Logger   *zap.Logger
	Tasks    *services.TaskService
	Auth     *services.AuthService
	Session  *session.Service
	Events   task.Publisher
	Registry *prometheus.Registry

	metricsServer *http.Server
	closers       []func() error
}

// Builder creates the App for one command invocation.
type Builder func(configPath string) (*App, error)

// DefaultBuilder loads configuration and wires the real services.
func DefaultBuilder(configPath string) (*App, error) {
	conf, err := cfg.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(conf.Log)
	if err != nil {
		return nil, err
	}
	app, err := NewApp(conf, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	app.closers = append(app.closers, func() error {
		_ = logger.Sync()
		return nil
	})
	return app, nil
}

func NewApp(conf cfg.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{
		Config:   conf,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	app.Registry.MustRegister(collectors.NewGoCollector())

	metrics, err := services.NewMetrics(app.Registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	timeout := conf.RequestTimeout
	if timeout == 0 {
		timeout = -1
	}
	opts := services.Options{
		BaseURL: conf.APIURL,
		Timeout: timeout,
		Logger:  logger.Named("task_service"),
		Metrics: metrics,
		Limiter: services.NewRateLimiter(conf.RateLimitRequests, conf.RateLimitWindow),
	}

	app.Tasks, err = services.NewTaskService(opts)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, app.Tasks.Close)

	app.Auth, err = services.NewAuthService(opts)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.closers = append(app.closers, app.Auth.Close)

	store, err := app.newStore()
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Session = session.NewService(session.Options{
		Auth:          app.Auth,
		Store:         store,
		Logger:        logger.Named("session"),
		DefaultUserID: conf.DefaultUserID,
	})

	if conf.Kafka.Enabled() {
		producer := events.NewKafkaProducer(conf.Kafka.Brokers, conf.Kafka.Topic)
		app.Events = producer
		app.closers = append(app.closers, producer.Close)
	}

	return app, nil
}

func (a *App) newStore() (session.Store, error) {
	switch a.Config.Session.Backend {
	case cfg.SessionRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     a.Config.Redis.Addr,
			Password: a.Config.Redis.Password,
			DB:       a.Config.Redis.DB,
		})
		a.closers = append(a.closers, rdb.Close)
		return session.NewRedisStore(rdb, a.Config.Redis.KeyPrefix), nil
	case cfg.SessionMemory:
		return session.NewMemoryStore(), nil
	case cfg.SessionFile, "":
		return session.NewFileStore(a.Config.Session.File), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", a.Config.Session.Backend)
	}
}

// Start restores the persisted session and, when configured, starts the
// metrics endpoint.
func (a *App) Start(ctx context.Context) error {
	if err := a.Session.Restore(ctx); err != nil {
		a.Logger.Warn("failed to restore session", zap.Error(err))
	}
	if a.Config.MetricsAddr == "" {
		return nil
	}
	return a.serveMetrics()
}

func (a *App) serveMetrics() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))

	ln, err := net.Listen("tcp", a.Config.MetricsAddr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	a.metricsServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.Logger.Info("metrics endpoint listening", zap.String("addr", ln.Addr().String()))
		if err := a.metricsServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	return nil
}

// RequireSession validates the stored credential and returns it.
func (a *App) RequireSession(ctx context.Context) (string, error) {
	if !a.Session.SignedIn() {
		return "", session.ErrNotSignedIn
	}
	if _, err := a.Session.Validate(ctx); err != nil {
		return "", err
	}
	return a.Session.Token(), nil
}

func (a *App) NewList(token string) *task.List {
	return task.NewList(a.Tasks, token, a.Events, a.Logger.Named("tasks"))
}

func (a *App) NewSearch(token string, deliver func([]task.Task)) (*search.Controller, error) {
	return search.NewController(search.Options{
		Service: a.Tasks,
		Token:   token,
		Deliver: deliver,
		Delay:   a.Config.SearchDebounce,
		Logger:  a.Logger.Named("search"),
	})
}

// Close releases everything NewApp and Start acquired, newest first.
func (a *App) Close() error {
	var errs []error
	if a.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		cancel()
		a.metricsServer = nil
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
