package feed

import (
	"context"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bep/debounce"
	"golang.org/x/sync/errgroup"

	"github.com/amirkhadim36-creator/reelpress/internal/catalog"
	"github.com/amirkhadim36-creator/reelpress/internal/feedstate"
	"github.com/amirkhadim36-creator/reelpress/internal/store"
)

// Catalog is the slice of the gateway the controller needs
type Catalog interface {
	DiscoverByGenre(ctx context.Context, genre string, page int) ([]catalog.Movie, error)
	Search(ctx context.Context, query string) ([]catalog.Movie, error)
	TrendingTopics(ctx context.Context) ([]catalog.Topic, error)
}

// PostLister reloads the generated-post collection on refresh
type PostLister interface {
	ListPosts() ([]store.Post, error)
}

// Controller owns the fetch side of the feed: guarded page fetches,
// pagination, debounced search, and filter changes.
type Controller struct {
	state      *feedstate.State
	catalog    Catalog
	posts      PostLister
	prependCap int

	fetching atomic.Bool   // catalog-page fetch guard, drop-not-queue
	gen      atomic.Uint64 // fetch generation, bumps on filter/query change
	debounce func(func())
	closed   atomic.Bool
}

// NewController creates a feed controller
func NewController(state *feedstate.State, cat Catalog, posts PostLister, prependCap int, searchDebounce time.Duration) *Controller {
	if prependCap <= 0 {
		prependCap = 4
	}
	if searchDebounce <= 0 {
		searchDebounce = 600 * time.Millisecond
	}
	return &Controller{
		state:      state,
		catalog:    cat,
		posts:      posts,
		prependCap: prependCap,
		debounce:   debounce.New(searchDebounce),
	}
}

// Close stops the controller from committing any further debounced
// queries.
func (c *Controller) Close() {
	c.closed.Store(true)
}

// Feed returns the current composed entry list
func (c *Controller) Feed() []Entry {
	return Compose(c.state.Snapshot(), c.prependCap)
}

// SetGenre switches the active genre: the catalog collection is
// cleared and pagination reset before the fetch resolves.
func (c *Controller) SetGenre(ctx context.Context, genre string) {
	c.gen.Add(1)
	c.state.SetGenre(genre)
	c.fetchPage(ctx, 1)
}

// SetSearchQuery schedules a query commit after the debounce quiet
// period. Rapid keystrokes collapse into one commit.
func (c *Controller) SetSearchQuery(ctx context.Context, query string) {
	c.debounce(func() {
		if c.closed.Load() {
			return
		}
		c.commitSearch(ctx, query)
	})
}

// CommitSearchShortcut applies a curated subcategory search: the
// query is set and the genre reset to All in one atomic step, with no
// debounce delay.
func (c *Controller) CommitSearchShortcut(ctx context.Context, query string) {
	c.gen.Add(1)
	c.state.CommitSearchShortcut(query)
	c.runSearch(ctx, query)
}

func (c *Controller) commitSearch(ctx context.Context, query string) {
	c.gen.Add(1)
	c.state.SetQuery(query)
	if strings.TrimSpace(query) == "" {
		return
	}
	c.runSearch(ctx, query)
}

// runSearch replaces the catalog collection with server search
// results; the composed view applies the local lens on top.
func (c *Controller) runSearch(ctx context.Context, query string) {
	gen := c.gen.Load()
	c.state.SetLoading(true)
	defer c.state.SetLoading(false)

	results, err := c.catalog.Search(ctx, query)
	if err != nil {
		// Transient fetch faults degrade to an empty result.
		log.Printf("[feed] Search failed: %v", err)
		return
	}
	if c.gen.Load() != gen {
		log.Printf("[feed] Discarding stale search response for %q", query)
		return
	}
	c.state.SetMovies(results)
}

// RequestNextPage advances pagination when the viewport sentinel
// becomes visible. No-op while a fetch is in flight or a search query
// is active.
func (c *Controller) RequestNextPage(ctx context.Context) {
	snap := c.state.Snapshot()
	if snap.Loading || strings.TrimSpace(snap.Query) != "" || c.fetching.Load() {
		return
	}

	next := snap.Page + 1
	c.state.SetPage(next)
	c.fetchPage(ctx, next)
}

// ResetFilters restores the default browse view and refetches page 1.
func (c *Controller) ResetFilters(ctx context.Context) {
	c.gen.Add(1)
	c.state.ResetFilters()
	c.fetchPage(ctx, 1)
}

// fetchPage loads one catalog page. Page 1 replaces the collection;
// later pages append with dedup. A request arriving while one is in
// flight is dropped, not queued.
func (c *Controller) fetchPage(ctx context.Context, page int) {
	if !c.fetching.CompareAndSwap(false, true) {
		return
	}
	defer c.fetching.Store(false)

	gen := c.gen.Load()
	snap := c.state.Snapshot()

	c.state.SetLoading(true)
	defer c.state.SetLoading(false)

	results, err := c.catalog.DiscoverByGenre(ctx, snap.Genre, page)
	if err != nil {
		log.Printf("[feed] Page fetch failed: %v", err)
		return
	}
	if c.gen.Load() != gen {
		log.Printf("[feed] Discarding stale page %d response", page)
		return
	}

	if page == 1 {
		c.state.SetMovies(results)
	} else {
		c.state.AppendMovies(results)
	}
}

// Refresh reloads posts, the first catalog page, and the topic set in
// parallel.
func (c *Controller) Refresh(ctx context.Context) error {
	c.gen.Add(1)
	c.state.SetPage(1)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		posts, err := c.posts.ListPosts()
		if err != nil {
			return err
		}
		c.state.SetPosts(posts)
		return nil
	})

	g.Go(func() error {
		c.fetchPage(ctx, 1)
		return nil
	})

	g.Go(func() error {
		topics, err := c.catalog.TrendingTopics(ctx)
		if err != nil {
			log.Printf("[feed] Topic refresh failed: %v", err)
			return nil
		}
		c.state.SetTopics(topics)
		return nil
	})

	return g.Wait()
}
