package state

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/aoyama/taskvault/internal/models"
	"github.com/aoyama/taskvault/internal/repository"
)

// TaskStats aggregates the cached collection into the dashboard numbers.
// CompletionRate is a whole percentage in [0,100], zero for an empty list.
type TaskStats struct {
	Total          int
	Completed      int
	Active         int
	Overdue        int
	CompletionRate int
}

// TaskState is the in-memory mirror of the task collection. The cache is
// non-authoritative: it is rebuilt by Load and nudged toward the persisted
// state after each action by the smallest possible local mutation (append,
// index-replace, filter-out), never a full reload. Only actions mutate the
// cache; consumers read through the accessor methods.
type TaskState struct {
	repo repository.TaskRepository

	mu      sync.RWMutex
	tasks   []models.Task
	loading bool
	lastErr error
	version uint64

	views taskViewCache
	perID *keyedMutex
}

// taskViewCache memoizes the derived views against the cache version; any
// mutating action bumps the version, and views recompute lazily on the next
// read instead of on every access.
type taskViewCache struct {
	version   uint64
	validAt   time.Time
	completed []models.Task
	active    []models.Task
	today     []models.Task
	overdue   []models.Task
	stats     TaskStats
}

// NewTaskState creates a TaskState over a task repository.
func NewTaskState(repo repository.TaskRepository) *TaskState {
	return &TaskState{repo: repo, perID: newKeyedMutex()}
}

// Loading reports whether the most recently settled action was still marked
// in flight. Overlapping actions share the single flag; the last one to
// settle wins.
func (s *TaskState) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LastError returns the error captured by the most recent failing action,
// nil after a success.
func (s *TaskState) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Tasks returns a copy of the cached collection.
func (s *TaskState) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyTasks(s.tasks)
}

// Load rebuilds the cache from the store.
func (s *TaskState) Load() error {
	s.begin()
	tasks, err := s.repo.GetAll()
	if err != nil {
		s.finish(err)
		return err
	}

	s.mu.Lock()
	s.tasks = tasks
	s.version++
	s.mu.Unlock()
	s.finish(nil)
	return nil
}

// Add persists a new task and appends it to the cache.
func (s *TaskState) Add(data models.Task) (*models.Task, error) {
	s.begin()
	task, err := s.repo.Add(data)
	if err != nil {
		s.finish(err)
		return nil, err
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, *task)
	s.version++
	s.mu.Unlock()
	s.finish(nil)
	return task, nil
}

// Update persists changes to one task and replaces its cached element in
// place. Writes to the same id are serialized.
func (s *TaskState) Update(id string, changes repository.TaskChanges) (*models.Task, error) {
	unlock := s.perID.Lock(id)
	defer unlock()

	s.begin()
	task, err := s.repo.Update(id, changes)
	if err != nil {
		s.finish(err)
		return nil, err
	}

	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i] = *task
			break
		}
	}
	s.version++
	s.mu.Unlock()
	s.finish(nil)
	return task, nil
}

// Delete removes a task from the store and filters it out of the cache.
func (s *TaskState) Delete(id string) error {
	unlock := s.perID.Lock(id)
	defer unlock()

	s.begin()
	if err := s.repo.Delete(id); err != nil {
		s.finish(err)
		return err
	}

	s.mu.Lock()
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	s.version++
	s.mu.Unlock()
	s.finish(nil)
	return nil
}

// Toggle flips a task's completion state. It deliberately skips the loading
// flag (checkbox taps should not flash a spinner) but still captures and
// returns errors. A missing record is a no-op.
func (s *TaskState) Toggle(id string) (bool, error) {
	unlock := s.perID.Lock(id)
	defer unlock()

	completed, err := s.repo.ToggleCompletion(id)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return false, err
	}

	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Completed = completed
			s.tasks[i].UpdatedAt = time.Now().UnixMilli()
			break
		}
	}
	s.version++
	s.lastErr = nil
	s.mu.Unlock()
	return completed, nil
}

// Search matches tasks against a free-text query. A blank query short-circuits
// to the cached collection without touching the store.
func (s *TaskState) Search(query string) ([]models.Task, error) {
	if strings.TrimSpace(query) == "" {
		return s.Tasks(), nil
	}

	tasks, err := s.repo.Search(query)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Lock()
	s.lastErr = nil
	s.mu.Unlock()
	return tasks, nil
}

// CompletedTasks returns the cached tasks marked completed.
func (s *TaskState) CompletedTasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshViews()
	return copyTasks(s.views.completed)
}

// ActiveTasks returns the cached tasks not yet completed.
func (s *TaskState) ActiveTasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshViews()
	return copyTasks(s.views.active)
}

// TodayTasks returns cached tasks due within the current local day, using
// the same day-window rule as the repository's today query.
func (s *TaskState) TodayTasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshViews()
	return copyTasks(s.views.today)
}

// OverdueTasks returns cached uncompleted tasks whose due date has passed.
func (s *TaskState) OverdueTasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshViews()
	return copyTasks(s.views.overdue)
}

// Stats returns the aggregate numbers for the cached collection.
func (s *TaskState) Stats() TaskStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshViews()
	return s.views.stats
}

// TasksByCategory filters the cache by category reference.
func (s *TaskState) TasksByCategory(categoryID string) []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tasks []models.Task
	for _, t := range s.tasks {
		if t.CategoryID == categoryID {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// TasksByPriority filters the cache by priority level.
func (s *TaskState) TasksByPriority(priority models.Priority) []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tasks []models.Task
	for _, t := range s.tasks {
		if t.Priority == priority {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// refreshViews recomputes the memoized views when the cache version moved or
// the local day rolled over since they were last computed. Callers hold mu.
func (s *TaskState) refreshViews() {
	now := time.Now()
	start, end := models.DayWindow(now)
	if s.views.version == s.version && !s.views.validAt.Before(start) && s.views.validAt.Before(end) {
		return
	}

	views := taskViewCache{version: s.version, validAt: now}
	for _, t := range s.tasks {
		if t.Completed {
			views.completed = append(views.completed, t)
		} else {
			views.active = append(views.active, t)
		}
		due, ok := t.DueTime()
		if !ok {
			continue
		}
		if !due.Before(start) && due.Before(end) {
			views.today = append(views.today, t)
		}
		if due.Before(now) && !t.Completed {
			views.overdue = append(views.overdue, t)
		}
	}

	views.stats = TaskStats{
		Total:     len(s.tasks),
		Completed: len(views.completed),
		Active:    len(views.active),
		Overdue:   len(views.overdue),
	}
	if views.stats.Total > 0 {
		rate := float64(views.stats.Completed) / float64(views.stats.Total) * 100
		views.stats.CompletionRate = int(math.Round(rate))
	}

	s.views = views
}

// begin marks an action in flight and clears the previous error.
func (s *TaskState) begin() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = nil
	s.mu.Unlock()
}

// finish settles an action, capturing its error and always dropping the
// loading flag.
func (s *TaskState) finish(err error) {
	s.mu.Lock()
	if err != nil {
		s.lastErr = err
	}
	s.loading = false
	s.mu.Unlock()
}

func copyTasks(tasks []models.Task) []models.Task {
	if tasks == nil {
		return nil
	}
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	return out
}
