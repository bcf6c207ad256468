package task

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Service - операции удалённого сервиса задач, которые использует список
type Service interface {
	ListTasks(ctx context.Context, token string) ([]Task, error)
	CreateTask(ctx context.Context, token string, t Task) (Task, error)
	UpdateTask(ctx context.Context, token string, id int64, t Task) (Task, error)
}

const (
	EventCreated = "task_created"
	EventUpdated = "task_updated"
)

// Publisher получает уведомления об успешно созданных и обновлённых задачах
type Publisher interface {
	Publish(ctx context.Context, kind string, t Task) error
}

type LoadState int

const (
	LoadIdle LoadState = iota
	LoadLoading
	LoadLoaded
	LoadErrored
)

func (s LoadState) String() string {
	switch s {
	case LoadLoading:
		return "loading"
	case LoadLoaded:
		return "loaded"
	case LoadErrored:
		return "errored"
	default:
		return "idle"
	}
}

type SubmitState int

const (
	SubmitIdle SubmitState = iota
	SubmitInFlight
	SubmitErrored
)

func (s SubmitState) String() string {
	switch s {
	case SubmitInFlight:
		return "submitting"
	case SubmitErrored:
		return "errored"
	default:
		return "idle"
	}
}

// List владеет коллекцией задач текущей сессии: загружает её, применяет
// результаты поиска, создаёт и обновляет задачи и строит отображаемое
// подмножество по фильтрам статуса и дат.
type List struct {
	service   Service
	token     string
	publisher Publisher
	logger    *zap.Logger

	mu         sync.Mutex
	tasks      []Task
	generation uint64
	state      LoadState
	loadErr    error
	submit     SubmitState
	submitErr  error
	status     Status
	dates      DateRange

	publishing sync.WaitGroup
}

func NewList(service Service, token string, publisher Publisher, logger *zap.Logger) *List {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &List{
		service:   service,
		token:     token,
		publisher: publisher,
		logger:    logger,
		status:    StatusAll,
	}
}

// Load заново запрашивает всю коллекцию. Ответ, пришедший после более
// новой загрузки или результата поиска, отбрасывается.
func (l *List) Load(ctx context.Context) error {
	if l.service == nil {
		return ErrNoService
	}

	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.state = LoadLoading
	l.loadErr = nil
	l.mu.Unlock()

	tasks, err := l.service.ListTasks(ctx, l.token)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		l.logger.Debug("discarding stale task list", zap.Uint64("generation", gen))
		return err
	}
	if err != nil {
		l.state = LoadErrored
		l.loadErr = err
		l.logger.Error("failed to fetch tasks", zap.Error(err))
		return err
	}

	l.tasks = cloneTasks(tasks)
	l.state = LoadLoaded
	return nil
}

// Retry повторяет загрузку после ошибки
func (l *List) Retry(ctx context.Context) error {
	return l.Load(ctx)
}

// Deliver целиком заменяет коллекцию результатом поиска
func (l *List) Deliver(tasks []Task) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.generation++
	l.tasks = cloneTasks(tasks)
	l.state = LoadLoaded
	l.loadErr = nil
}

// Create проверяет форму и создаёт задачу. При ошибке валидации сетевой
// вызов не выполняется и возвращается *ValidationError.
func (l *List) Create(ctx context.Context, d Draft) (Task, error) {
	if err := d.Validate(); err != nil {
		return Task{}, err
	}
	if l.service == nil {
		return Task{}, ErrNoService
	}

	l.beginSubmit()
	created, err := l.service.CreateTask(ctx, l.token, d.Task())
	if err != nil {
		l.failSubmit(err)
		l.logger.Error("failed to create task", zap.Error(err))
		return Task{}, err
	}

	l.mu.Lock()
	l.tasks = append(l.tasks, created)
	l.submit = SubmitIdle
	l.submitErr = nil
	l.mu.Unlock()

	l.publish(EventCreated, created)
	return created, nil
}

// Update отправляет полную копию задачи и заменяет запись с тем же id
// ответом сервера. При ошибке коллекция не меняется.
func (l *List) Update(ctx context.Context, t Task) (Task, error) {
	if t.ID == 0 {
		return Task{}, ErrMissingTaskID
	}
	if l.service == nil {
		return Task{}, ErrNoService
	}

	payload := t
	payload.Username = ""

	l.beginSubmit()
	updated, err := l.service.UpdateTask(ctx, l.token, t.ID, payload)
	if err != nil {
		l.failSubmit(err)
		l.logger.Error("failed to update task", zap.Int64("task_id", t.ID), zap.Error(err))
		return Task{}, err
	}

	l.mu.Lock()
	for i := range l.tasks {
		if l.tasks[i].ID == updated.ID {
			l.tasks[i] = updated
			break
		}
	}
	l.submit = SubmitIdle
	l.submitErr = nil
	l.mu.Unlock()

	l.publish(EventUpdated, updated)
	return updated, nil
}

// Find ищет задачу в коллекции по id
func (l *List) Find(id int64) (Task, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

func (l *List) Tasks() []Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneTasks(l.tasks)
}

func (l *List) SetStatusFilter(s Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s == "" {
		s = StatusAll
	}
	l.status = NormalizeStatus(string(s))
}

func (l *List) StatusFilter() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

func (l *List) SetDateRange(r DateRange) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dates = r
}

// Displayed возвращает задачи, прошедшие текущие фильтры
func (l *List) Displayed() []Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Display(l.tasks, l.status, l.dates)
}

func (l *List) Counts() map[Status]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return StatusCounts(l.tasks)
}

func (l *List) State() (LoadState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state, l.loadErr
}

func (l *List) Submission() (SubmitState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.submit, l.submitErr
}

func (l *List) beginSubmit() {
	l.mu.Lock()
	l.submit = SubmitInFlight
	l.submitErr = nil
	l.mu.Unlock()
}

func (l *List) failSubmit(err error) {
	l.mu.Lock()
	l.submit = SubmitErrored
	l.submitErr = err
	l.mu.Unlock()
}

func (l *List) publish(kind string, t Task) {
	if l.publisher == nil {
		return
	}
	// Отправляем событие асинхронно (не блокируем ответ)
	l.publishing.Add(1)
	go func() {
		defer l.publishing.Done()
		if err := l.publisher.Publish(context.Background(), kind, t); err != nil {
			l.logger.Warn("failed to publish task event",
				zap.String("kind", kind),
				zap.Int64("task_id", t.ID),
				zap.Error(err),
			)
		}
	}()
}

// Wait блокируется, пока не завершатся отправки событий, начатые Create и Update
func (l *List) Wait() {
	l.publishing.Wait()
}

func cloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return []Task{}
	}
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}
