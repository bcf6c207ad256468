// Package search turns free-text input into task list or search calls and
// hands the results to a delivery callback.
package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Oniqq60/task_system_control/taskclient/internal/debounce"
	"github.com/Oniqq60/task_system_control/taskclient/internal/task"
)

const DefaultDelay = time.Second

var (
	ErrNoSearcher = errors.New("search: task service is required")
	ErrNoDeliver  = errors.New("search: delivery callback is required")
	ErrSuperseded = errors.New("search: response superseded by a newer query")
)

// Searcher - операции сервиса задач, которые нужны поиску
type Searcher interface {
	ListTasks(ctx context.Context, token string) ([]task.Task, error)
	SearchTasks(ctx context.Context, token, query string) ([]task.Task, error)
}

type Options struct {
	Service Searcher
	Token   string
	Deliver func([]task.Task)
	Delay   time.Duration
	Logger  *zap.Logger
}

// Controller владеет текущим запросом. Каждый выполненный запрос получает
// номер; более новый запрос отменяет предыдущий, а ответ с устаревшим
// номером не доставляется.
type Controller struct {
	service Searcher
	token   string
	deliver func([]task.Task)
	logger  *zap.Logger

	debouncer *debounce.Debouncer[string]
	ctx       context.Context
	stop      context.CancelFunc

	mu       sync.Mutex
	query    string
	seq      uint64
	inflight context.CancelFunc

	deliverMu sync.Mutex
}

func NewController(opts Options) (*Controller, error) {
	if opts.Service == nil {
		return nil, ErrNoSearcher
	}
	if opts.Deliver == nil {
		return nil, ErrNoDeliver
	}
	delay := opts.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, stop := context.WithCancel(context.Background())
	c := &Controller{
		service: opts.Service,
		token:   opts.Token,
		deliver: opts.Deliver,
		logger:  logger,
		ctx:     ctx,
		stop:    stop,
	}
	c.debouncer = debounce.New(delay, c.run)
	return c, nil
}

// OnInput records value as the current query and schedules it; only the
// last value of a typing burst is executed.
func (c *Controller) OnInput(value string) {
	c.mu.Lock()
	c.query = value
	c.mu.Unlock()
	c.debouncer.Trigger(value)
}

// Flush executes the scheduled query now instead of waiting for the delay.
func (c *Controller) Flush() bool {
	return c.debouncer.Flush()
}

func (c *Controller) CurrentQuery() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Query runs q immediately. A blank query lists every task; anything else is
// sent to search exactly as typed. Failures are logged and nothing is
// delivered, so the previous result set stays in place.
func (c *Controller) Query(ctx context.Context, q string) error {
	reqCtx, seq := c.begin(ctx)
	defer c.finish(seq)

	var (
		tasks []task.Task
		err   error
	)
	op := "search"
	if strings.TrimSpace(q) == "" {
		op = "list"
		tasks, err = c.service.ListTasks(reqCtx, c.token)
	} else {
		tasks, err = c.service.SearchTasks(reqCtx, c.token, q)
	}

	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	if !c.latest(seq) {
		c.logger.Debug("dropping stale search response", zap.Uint64("seq", seq), zap.String("query", q))
		return ErrSuperseded
	}
	if err != nil {
		c.logger.Warn("task search failed",
			zap.String("op", op),
			zap.String("query", q),
			zap.Error(err),
		)
		return err
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	c.deliver(tasks)
	return nil
}

// Drain runs the scheduled query, if any, and waits for a query the timer
// already started, so the last input is always delivered.
func (c *Controller) Drain() {
	c.debouncer.Flush()
	c.debouncer.Wait()
}

// Close drops a scheduled query and cancels the one in flight.
func (c *Controller) Close() {
	c.debouncer.Stop()
	c.stop()
}

func (c *Controller) run(q string) {
	_ = c.Query(c.ctx, q)
}

func (c *Controller) begin(parent context.Context) (context.Context, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight != nil {
		c.inflight()
	}
	c.seq++
	ctx, cancel := context.WithCancel(parent)
	c.inflight = cancel
	return ctx, c.seq
}

func (c *Controller) finish(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq == c.seq && c.inflight != nil {
		c.inflight()
		c.inflight = nil
	}
}

func (c *Controller) latest(seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return seq == c.seq
}
