package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/amirkhadim36-creator/reelpress/internal/catalog"
	"github.com/amirkhadim36-creator/reelpress/internal/feedstate"
	"github.com/amirkhadim36-creator/reelpress/internal/store"
)

type fakeCatalog struct {
	mu            sync.Mutex
	pages         map[int][]catalog.Movie
	searchResults []catalog.Movie
	topics        []catalog.Topic
	discoverCalls int
	searchCalls   int
	lastGenre     string
	lastQuery     string
}

func (f *fakeCatalog) DiscoverByGenre(ctx context.Context, genre string, page int) ([]catalog.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discoverCalls++
	f.lastGenre = genre
	return f.pages[page], nil
}

func (f *fakeCatalog) Search(ctx context.Context, query string) ([]catalog.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	f.lastQuery = query
	return f.searchResults, nil
}

func (f *fakeCatalog) TrendingTopics(ctx context.Context) ([]catalog.Topic, error) {
	return f.topics, nil
}

type fakePosts struct {
	posts []store.Post
}

func (f *fakePosts) ListPosts() ([]store.Post, error) {
	return f.posts, nil
}

func movieIDs(movies []catalog.Movie) []int64 {
	ids := make([]int64, len(movies))
	for i, m := range movies {
		ids[i] = m.ID
	}
	return ids
}

func newTestController(cat *fakeCatalog) (*Controller, *feedstate.State) {
	state := feedstate.New()
	c := NewController(state, cat, &fakePosts{}, 4, 5*time.Millisecond)
	return c, state
}

func TestPaginationAppendDedup(t *testing.T) {
	cat := &fakeCatalog{pages: map[int][]catalog.Movie{
		1: {movie(5, "Five", ""), movie(6, "Six", "")},
		2: {movie(6, "Six", ""), movie(7, "Seven", "")},
	}}
	c, state := newTestController(cat)

	c.SetGenre(context.Background(), catalog.GenreAll)
	c.RequestNextPage(context.Background())

	snap := state.Snapshot()
	require.Equal(t, []int64{5, 6, 7}, movieIDs(snap.Movies))
	require.Equal(t, 2, snap.Page)
}

func TestSearchIsolatesPagination(t *testing.T) {
	cat := &fakeCatalog{pages: map[int][]catalog.Movie{
		1: {movie(1, "A", "")},
	}}
	c, state := newTestController(cat)

	c.SetGenre(context.Background(), catalog.GenreAll)
	callsBefore := cat.discoverCalls

	state.SetQuery("blade")
	c.RequestNextPage(context.Background())

	snap := state.Snapshot()
	require.Equal(t, 1, snap.Page, "page cursor must not advance while searching")
	require.Equal(t, callsBefore, cat.discoverCalls, "no page fetch while searching")
}

func TestGenreChangeClearsAndResets(t *testing.T) {
	cat := &fakeCatalog{pages: map[int][]catalog.Movie{
		1: {movie(1, "A", ""), movie(2, "B", "")},
		2: {movie(3, "C", "")},
	}}
	c, state := newTestController(cat)

	c.SetGenre(context.Background(), catalog.GenreAll)
	c.RequestNextPage(context.Background())
	require.Equal(t, 2, state.Snapshot().Page)

	c.SetGenre(context.Background(), "Horror")

	snap := state.Snapshot()
	require.Equal(t, 1, snap.Page)
	require.Equal(t, "Horror", cat.lastGenre)
}

func TestSearchDebounceCollapsesKeystrokes(t *testing.T) {
	cat := &fakeCatalog{searchResults: []catalog.Movie{movie(9, "Found", "")}}
	c, state := newTestController(cat)

	ctx := context.Background()
	c.SetSearchQuery(ctx, "b")
	c.SetSearchQuery(ctx, "bl")
	c.SetSearchQuery(ctx, "blade")

	require.Eventually(t, func() bool {
		snap := state.Snapshot()
		return snap.Query == "blade" && len(snap.Movies) == 1
	}, time.Second, 10*time.Millisecond)

	cat.mu.Lock()
	defer cat.mu.Unlock()
	require.Equal(t, 1, cat.searchCalls, "keystrokes must collapse into one search")
	require.Equal(t, "blade", cat.lastQuery)
}

func TestSearchShortcutResetsGenre(t *testing.T) {
	cat := &fakeCatalog{searchResults: []catalog.Movie{movie(3, "Hit", "")}}
	c, state := newTestController(cat)

	c.SetGenre(context.Background(), "Horror")
	c.CommitSearchShortcut(context.Background(), "film noir")

	snap := state.Snapshot()
	require.Equal(t, "film noir", snap.Query)
	require.Equal(t, catalog.GenreAll, snap.Genre)
}

func TestEmptyQueryCommitSkipsSearch(t *testing.T) {
	cat := &fakeCatalog{}
	c, state := newTestController(cat)

	c.SetSearchQuery(context.Background(), "  ")

	require.Eventually(t, func() bool {
		return state.Snapshot().Query == "  "
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, 0, cat.searchCalls)
}
