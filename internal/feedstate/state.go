// Package feedstate holds the mutable view state shared by the
// synthesis orchestrator and the feed composition engine. It is an
// injected container with change notifications and no business logic.
package feedstate

import (
	"sync"

	"github.com/amirkhadim36-creator/reelpress/internal/catalog"
	"github.com/amirkhadim36-creator/reelpress/internal/store"
)

// Session holds the ephemeral synthesis session fields.
type Session struct {
	Status     string         `json:"status"`
	Progress   int            `json:"progress"`
	HasError   bool           `json:"has_error"`
	Autopilot  bool           `json:"autopilot"`
	LastTarget *catalog.Movie `json:"last_target,omitempty"`
}

// Snapshot is a consistent, point-in-time copy of the view state.
// Slices are shared with the state and must be treated as read-only.
type Snapshot struct {
	Movies  []catalog.Movie
	Posts   []store.Post
	Topics  []catalog.Topic
	Query   string
	Genre   string
	Page    int
	Loading bool
	Session Session
}

// State is the shared mutable store. All mutation methods notify
// subscribers after the change is applied.
type State struct {
	mu        sync.RWMutex
	movies    []catalog.Movie
	posts     []store.Post
	topics    []catalog.Topic
	query     string
	genre     string
	page      int
	loading   bool
	session   Session
	listeners map[int]func()
	nextID    int
}

// New creates a State with the initial filter values.
func New() *State {
	return &State{
		genre: catalog.GenreAll,
		page:  1,
		session: Session{
			Status: "System Ready: Connection Secure.",
		},
		listeners: make(map[int]func()),
	}
}

// Subscribe registers a change listener and returns an unsubscribe
// function. Listeners run synchronously after every mutation.
func (s *State) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *State) notify() {
	s.mu.RLock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// Snapshot returns a consistent copy of all fields under read lock.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Movies:  s.movies,
		Posts:   s.posts,
		Topics:  s.topics,
		Query:   s.query,
		Genre:   s.genre,
		Page:    s.page,
		Loading: s.loading,
		Session: s.session,
	}
}

func dedupMovies(movies []catalog.Movie) []catalog.Movie {
	seen := make(map[int64]bool, len(movies))
	unique := make([]catalog.Movie, 0, len(movies))
	for _, m := range movies {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		unique = append(unique, m)
	}
	return unique
}

// SetMovies replaces the catalog collection, removing duplicate ids.
func (s *State) SetMovies(movies []catalog.Movie) {
	s.mu.Lock()
	s.movies = dedupMovies(movies)
	s.mu.Unlock()
	s.notify()
}

// AppendMovies appends a page, deduplicating against everything
// already present. A catalog id seen once is never re-inserted.
func (s *State) AppendMovies(movies []catalog.Movie) {
	s.mu.Lock()
	merged := make([]catalog.Movie, 0, len(s.movies)+len(movies))
	merged = append(merged, s.movies...)
	merged = append(merged, movies...)
	s.movies = dedupMovies(merged)
	s.mu.Unlock()
	s.notify()
}

// SetPosts replaces the generated-post collection.
func (s *State) SetPosts(posts []store.Post) {
	s.mu.Lock()
	s.posts = posts
	s.mu.Unlock()
	s.notify()
}

// PrependPost puts a freshly published post at the head of the
// collection (most-recent-first ordering).
func (s *State) PrependPost(p store.Post) {
	s.mu.Lock()
	posts := make([]store.Post, 0, len(s.posts)+1)
	posts = append(posts, p)
	posts = append(posts, s.posts...)
	s.posts = posts
	s.mu.Unlock()
	s.notify()
}

// SetTopics replaces the trending-topic set.
func (s *State) SetTopics(topics []catalog.Topic) {
	s.mu.Lock()
	s.topics = topics
	s.mu.Unlock()
	s.notify()
}

// SetQuery commits a search query to the shared filter. The catalog
// collection is intentionally left alone; search is a lens over it.
func (s *State) SetQuery(query string) {
	s.mu.Lock()
	s.query = query
	s.mu.Unlock()
	s.notify()
}

// SetGenre switches the active genre, clearing the catalog collection
// and resetting pagination in the same critical section so no reader
// ever observes a mixed-genre page.
func (s *State) SetGenre(genre string) {
	s.mu.Lock()
	s.genre = genre
	s.page = 1
	s.movies = nil
	s.mu.Unlock()
	s.notify()
}

// CommitSearchShortcut sets a curated search query and resets the
// genre filter to All in one atomic step.
func (s *State) CommitSearchShortcut(query string) {
	s.mu.Lock()
	s.query = query
	s.genre = catalog.GenreAll
	s.mu.Unlock()
	s.notify()
}

// ResetFilters restores the default browse view.
func (s *State) ResetFilters() {
	s.mu.Lock()
	s.query = ""
	s.genre = catalog.GenreAll
	s.page = 1
	s.movies = nil
	s.mu.Unlock()
	s.notify()
}

// SetPage moves the pagination cursor.
func (s *State) SetPage(page int) {
	s.mu.Lock()
	s.page = page
	s.mu.Unlock()
	s.notify()
}

// SetLoading flips the catalog fetch flag.
func (s *State) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
	s.notify()
}

// SetAutopilot flips the autopilot flag.
func (s *State) SetAutopilot(active bool) {
	s.mu.Lock()
	s.session.Autopilot = active
	s.mu.Unlock()
	s.notify()
}

// SetSession updates the status label and progress together.
func (s *State) SetSession(status string, progress int) {
	s.mu.Lock()
	s.session.Status = status
	s.session.Progress = progress
	s.mu.Unlock()
	s.notify()
}

// SetProgress updates the progress value only.
func (s *State) SetProgress(progress int) {
	s.mu.Lock()
	s.session.Progress = progress
	s.mu.Unlock()
	s.notify()
}

// SetError flips the session error flag.
func (s *State) SetError(hasError bool) {
	s.mu.Lock()
	s.session.HasError = hasError
	s.mu.Unlock()
	s.notify()
}

// SetLastTarget remembers the last manually attempted catalog entry
// for the retry path.
func (s *State) SetLastTarget(m *catalog.Movie) {
	s.mu.Lock()
	s.session.LastTarget = m
	s.mu.Unlock()
	s.notify()
}
