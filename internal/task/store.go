package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskdeck/internal/kv"
	"taskdeck/internal/validate"
)

// Store is the ordered, locally persisted task collection.
// It is safe for concurrent use; each mutation and its persist happen under
// one lock so writes reach storage in the order they were issued.
type Store struct {
	mu    sync.Mutex
	kv    kv.Store
	log   *slog.Logger
	now   func() time.Time
	newID func() string
	tasks []Task
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs overrides the id generator.
func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// NewStore creates an empty store backed by kv. Call Load to read the
// persisted collection.
func NewStore(store kv.Store, log *slog.Logger, opts ...Option) *Store {
	s := &Store{
		kv:    store,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collection with the persisted one.
// Missing, unreadable or corrupt data yields an empty collection.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = nil

	data, err := s.kv.Get(ctx, kv.KeyTasks)
	if errors.Is(err, kv.ErrNotFound) {
		return
	}
	if err != nil {
		s.log.Warn("task data unreadable, starting empty", "error", err)
		return
	}

	var loaded []Task
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.log.Warn("task data corrupt, starting empty", "error", err)
		return
	}

	seen := make(map[string]bool, len(loaded))
	for _, t := range loaded {
		if t.ID == "" || seen[t.ID] {
			s.log.Debug("dropping stored task without unique id", "title", t.Title)
			continue
		}
		seen[t.ID] = true
		s.tasks = append(s.tasks, t)
	}
	s.log.Debug("tasks loaded", "count", len(s.tasks))
}

// All returns a copy of the collection in insertion order.
func (s *Store) All() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.tasks)
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i].clone(), true
	}
	return Task{}, false
}

// Add validates in, appends a new task and persists the collection.
func (s *Store) Add(ctx context.Context, in Input) (Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(in); err != nil {
		return Task{}, err
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}

	t := Task{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Category:    in.Category,
		CreatedAt:   s.now(),
	}
	if in.DueDate != nil {
		d := *in.DueDate
		t.DueDate = &d
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append(s.tasks, t)
	if err := s.persist(ctx); err != nil {
		return t.clone(), err
	}
	s.log.Debug("task added", "id", t.ID)
	return t.clone(), nil
}

// Toggle flips Completed on the task with the given id.
// It reports false and changes nothing when the id is absent.
func (s *Store) Toggle(ctx context.Context, id string) (Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, false, nil
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	t := s.tasks[i].clone()
	return t, true, s.persist(ctx)
}

// Delete removes the task with the given id.
// It reports false and changes nothing when the id is absent.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	return true, s.persist(ctx)
}

// Edit merges p onto the task with the given id. ID and CreatedAt are kept.
// It reports false and changes nothing when the id is absent.
func (s *Store) Edit(ctx context.Context, id string, p Patch) (Task, bool, error) {
	if err := p.validate(); err != nil {
		return Task{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, false, nil
	}
	if p.IsEmpty() {
		return s.tasks[i].clone(), true, nil
	}
	s.tasks[i] = p.apply(s.tasks[i])
	t := s.tasks[i].clone()
	return t, true, s.persist(ctx)
}

func (p Patch) validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return validate.Field("Title", "title required")
	}
	if p.Priority != nil && p.Priority.Rank() == 0 {
		return validate.Field("Priority", fmt.Sprintf("invalid priority: %s", *p.Priority))
	}
	if p.Category != nil && *p.Category != "" && !IsCategory(*p.Category) {
		return validate.Field("Category", fmt.Sprintf("invalid category: %s", *p.Category))
	}
	return nil
}

// IsCategory reports whether name is one of Categories.
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// persist writes the whole collection. Caller holds s.mu.
func (s *Store) persist(ctx context.Context) error {
	tasks := s.tasks
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := s.kv.Set(ctx, kv.KeyTasks, data); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}
