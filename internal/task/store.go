package task

import (
	"sort"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck/internal/dates"
)

// Store holds the ordered task sequence. The position of a task in the
// sequence is its user-facing identifier; deleting shifts later indices
// down by one. Mutations touch memory only — the caller decides when to
// Save.
type Store struct {
	path       string
	schemaPath string
	tasks      []Task

	// now supplies the reference time for due-date parsing and overdue
	// checks, injectable for deterministic tests.
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithSchema enables JSON Schema validation of the tasks file on load.
func WithSchema(path string) Option {
	return func(s *Store) {
		s.schemaPath = path
	}
}

// WithNow overrides the store's clock.
func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty store backed by the file at path.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path: path,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Add parses dueText, builds a task, and appends it. Returns the new
// task's index.
func (s *Store) Add(title string, priority Priority, dueText string, tags []string) (int, error) {
	due, err := dates.Parse(dueText, s.now())
	if err != nil {
		return 0, err
	}
	t, err := New(title, priority, due, tags)
	if err != nil {
		return 0, err
	}
	s.tasks = append(s.tasks, t)
	return len(s.tasks) - 1, nil
}

// Get returns the task at index.
func (s *Store) Get(index int) (*Task, error) {
	if index < 0 || index >= len(s.tasks) {
		return nil, &NotFoundError{Index: index, Len: len(s.tasks)}
	}
	return &s.tasks[index], nil
}

// Update holds a partial task update. Nil fields are left unchanged; a
// pointer to an empty string clears the due date.
type Update struct {
	Title    *string
	Priority *Priority
	DueText  *string
	Tags     *[]string
}

// ApplyUpdate applies a partial update to the task at index. On any error
// the stored task is left untouched.
func (s *Store) ApplyUpdate(index int, u Update) error {
	t, err := s.Get(index)
	if err != nil {
		return err
	}

	next := *t
	if u.Title != nil {
		next.Title = strings.TrimSpace(*u.Title)
	}
	if u.Priority != nil {
		next.Priority = Priority(strings.ToLower(string(*u.Priority)))
	}
	if u.DueText != nil {
		due, err := dates.Parse(*u.DueText, s.now())
		if err != nil {
			return err
		}
		next.DueDate = due
	}
	if u.Tags != nil {
		next.Tags = normalizeTags(*u.Tags)
	}
	if err := next.validate(); err != nil {
		return err
	}

	*t = next
	return nil
}

// Complete marks the task at index as done. Completing a completed task is
// a no-op success.
func (s *Store) Complete(index int) error {
	t, err := s.Get(index)
	if err != nil {
		return err
	}
	t.Completed = true
	return nil
}

// Delete removes the task at index. Later tasks shift down by one.
func (s *Store) Delete(index int) (Task, error) {
	t, err := s.Get(index)
	if err != nil {
		return Task{}, err
	}
	removed := *t
	s.tasks = append(s.tasks[:index], s.tasks[index+1:]...)
	return removed, nil
}

// AddTag adds a tag to the task at index. Adding a tag the task already
// carries is a no-op success.
func (s *Store) AddTag(index int, tag string) error {
	t, err := s.Get(index)
	if err != nil {
		return err
	}
	tag = NormalizeTag(tag)
	if tag == "" || t.HasTag(tag) {
		return nil
	}
	t.Tags = append(t.Tags, tag)
	return nil
}

// RemoveTag removes a tag from the task at index. Removing an absent tag
// is a no-op success.
func (s *Store) RemoveTag(index int, tag string) error {
	t, err := s.Get(index)
	if err != nil {
		return err
	}
	tag = NormalizeTag(tag)
	for i, have := range t.Tags {
		if have == tag {
			t.Tags = append(t.Tags[:i], t.Tags[i+1:]...)
			return nil
		}
	}
	return nil
}

// Clear removes tasks and returns how many were removed. With
// completedOnly it removes only completed tasks, preserving the relative
// order of the rest; otherwise it empties the store.
func (s *Store) Clear(completedOnly bool) int {
	if !completedOnly {
		n := len(s.tasks)
		s.tasks = nil
		return n
	}
	kept := s.tasks[:0]
	removed := 0
	for _, t := range s.tasks {
		if t.Completed {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	return removed
}

// Entry pairs a task with its position in the full sequence.
type Entry struct {
	Index int
	Task  Task
}

// Filter narrows a listing. Zero values mean "no constraint"; supplied
// criteria are combined with AND.
type Filter struct {
	Priority      Priority
	Tag           string
	HideCompleted bool
}

// List returns the tasks satisfying f, sorted for display: overdue first,
// then incomplete before completed, then by priority rank, ties keeping
// their original order. The ordering is recomputed on every call and never
// persisted.
func (s *Store) List(f Filter) []Entry {
	now := s.now()

	entries := make([]Entry, 0, len(s.tasks))
	for i, t := range s.tasks {
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.Tag != "" && !t.HasTag(f.Tag) {
			continue
		}
		if f.HideCompleted && t.Completed {
			continue
		}
		entries = append(entries, Entry{Index: i, Task: t})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Task, entries[j].Task
		ao, bo := a.IsOverdue(now), b.IsOverdue(now)
		if ao != bo {
			return ao
		}
		if a.Completed != b.Completed {
			return !a.Completed
		}
		return a.Priority.Rank() < b.Priority.Rank()
	})

	return entries
}

// Search returns tasks whose title contains query or that carry a tag
// containing query, case-insensitive. A task matching both ways appears
// once, in sequence order.
func (s *Store) Search(query string) []Entry {
	query = strings.ToLower(strings.TrimSpace(query))

	var entries []Entry
	for i, t := range s.tasks {
		if matchesQuery(&t, query) {
			entries = append(entries, Entry{Index: i, Task: t})
		}
	}
	return entries
}

func matchesQuery(t *Task, query string) bool {
	if strings.Contains(strings.ToLower(t.Title), query) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(tag, query) {
			return true
		}
	}
	return false
}

// Stats aggregates the state of the store.
type Stats struct {
	Total      int              `json:"total"`
	Completed  int              `json:"completed"`
	Incomplete int              `json:"incomplete"`
	Overdue    int              `json:"overdue"`
	ByPriority map[Priority]int `json:"by_priority"`
	Tags       map[string]int   `json:"tags"`
}

// Stats computes aggregate counts in one pass. ByPriority counts
// incomplete tasks only; Tags maps every tag in use to its usage count.
func (s *Store) Stats() Stats {
	now := s.now()
	stats := Stats{
		ByPriority: map[Priority]int{
			PriorityLow:    0,
			PriorityMedium: 0,
			PriorityHigh:   0,
		},
		Tags: make(map[string]int),
	}

	for i := range s.tasks {
		t := &s.tasks[i]
		stats.Total++
		if t.Completed {
			stats.Completed++
		} else {
			stats.Incomplete++
			stats.ByPriority[t.Priority]++
		}
		if t.IsOverdue(now) {
			stats.Overdue++
		}
		for _, tag := range t.Tags {
			stats.Tags[tag]++
		}
	}
	return stats
}
