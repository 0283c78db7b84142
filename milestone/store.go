package milestone

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Persister receives a snapshot of the store after every user mutation.
type Persister interface {
	Save(milestones []Milestone) error
}

// Store owns the ordered collection of milestones.
// Thread-safe: reads take a read lock, mutations and Update take the write lock.
type Store struct {
	mu         sync.RWMutex
	milestones []*Milestone
	tokens     Tokens
	persister  Persister
	logger     *slog.Logger
}

// StoreOptions configures a Store.
type StoreOptions struct {
	Tokens    Tokens
	Persister Persister // optional
	Logger    *slog.Logger
}

// NewStore creates a store holding a copy of initial in the given order.
func NewStore(initial []Milestone, options StoreOptions) *Store {
	if options.Tokens.Marker == "" {
		options.Tokens = DefaultTokens
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	s := &Store{
		milestones: make([]*Milestone, 0, len(initial)),
		tokens:     options.Tokens,
		persister:  options.Persister,
		logger:     options.Logger,
	}
	for i := range initial {
		m := initial[i].clone()
		s.milestones = append(s.milestones, &m)
	}
	return s
}

// Tokens returns the keywords the store validates names against.
func (s *Store) Tokens() Tokens {
	return s.tokens
}

// Create adds a new NotStarted milestone at the end of the list.
func (s *Store) Create(name string, date time.Time) (Milestone, error) {
	if err := ValidateName(name, s.tokens); err != nil {
		return Milestone{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(name) >= 0 {
		return Milestone{}, &ValidationError{Field: "name", Value: name, Reason: "a milestone with the same name already exists"}
	}

	m := &Milestone{Name: name, Date: Day(date), State: NotStarted}
	s.milestones = append(s.milestones, m)
	s.persistLocked("create")
	return m.clone(), nil
}

// CreateFromInput parses dateText and creates the milestone.
// Nothing is mutated when either the name or the date is rejected.
func (s *Store) CreateFromInput(name string, dateText string) (Milestone, error) {
	if err := ValidateName(name, s.tokens); err != nil {
		return Milestone{}, err
	}
	date, err := ParseDate(dateText)
	if err != nil {
		return Milestone{}, err
	}
	return s.Create(name, date)
}

// All returns copies of every milestone in the current order.
func (s *Store) All() []Milestone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Len returns the number of milestones.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.milestones)
}

// Get returns a copy of the named milestone.
func (s *Store) Get(name string) (Milestone, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.find(name)
	if idx < 0 {
		return Milestone{}, false
	}
	return s.milestones[idx].clone(), true
}

// Locate returns the marker line of the named milestone, used to navigate to it.
// It reports false for unknown milestones and for milestones without a location.
func (s *Store) Locate(name string) (Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.find(name)
	if idx < 0 || s.milestones[idx].Location == nil {
		return Location{}, false
	}
	return *s.milestones[idx].Location, true
}

// Delete removes the named milestone.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.find(name)
	if idx < 0 {
		return fmt.Errorf("deleting %q: %w", name, ErrNotFound)
	}
	s.milestones = append(s.milestones[:idx], s.milestones[idx+1:]...)
	s.persistLocked("delete")
	return nil
}

// SetDate changes the due date of the named milestone.
func (s *Store) SetDate(name string, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.find(name)
	if idx < 0 {
		return fmt.Errorf("changing date of %q: %w", name, ErrNotFound)
	}
	s.milestones[idx].Date = Day(date)
	s.persistLocked("set date")
	return nil
}

// ToggleDone flips the named milestone between Done and NotStarted.
// An InProgress milestone becomes Done and keeps its location;
// a milestone leaving Done loses its location.
func (s *Store) ToggleDone(name string) (Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.find(name)
	if idx < 0 {
		return Milestone{}, fmt.Errorf("toggling %q: %w", name, ErrNotFound)
	}
	m := s.milestones[idx]
	if m.State == Done {
		m.State = NotStarted
		m.Location = nil
	} else {
		m.State = Done
	}
	s.persistLocked("toggle done")
	return m.clone(), nil
}

// SortByDate orders milestones by ascending date, keeping ties in their current order.
func (s *Store) SortByDate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortByDateLocked()
}

// SortByState groups milestones by state (NotStarted, InProgress, Done),
// ordered by date within each group.
func (s *Store) SortByState() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sortByDateLocked()
	sort.SliceStable(s.milestones, func(i, j int) bool {
		return s.milestones[i].State < s.milestones[j].State
	})
}

// Update runs fn over the live records while holding the write lock.
// fn may change State and Location but must not add, remove or reorder records.
// Reconciliation goes through here; it does not trigger persistence.
func (s *Store) Update(fn func(milestones []*Milestone)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.milestones)
}

func (s *Store) sortByDateLocked() {
	sort.SliceStable(s.milestones, func(i, j int) bool {
		return s.milestones[i].Date.Before(s.milestones[j].Date)
	})
}

func (s *Store) find(name string) int {
	for i, m := range s.milestones {
		if m.Name == name {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() []Milestone {
	result := make([]Milestone, 0, len(s.milestones))
	for _, m := range s.milestones {
		result = append(result, m.clone())
	}
	return result
}

// persistLocked hands the current list to the persister.
// A failed save is logged; the in-memory mutation stands.
func (s *Store) persistLocked(operation string) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(s.snapshotLocked()); err != nil {
		s.logger.Error("failed to persist milestones", "operation", operation, "error", err)
	}
}
