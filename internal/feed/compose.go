// Package feed turns the shared view state into the single ordered,
// duplicate-free list the consumer renders, and drives the fetches
// that feed it.
package feed

import (
	"fmt"
	"strings"

	"github.com/amirkhadim36-creator/reelpress/internal/catalog"
	"github.com/amirkhadim36-creator/reelpress/internal/feedstate"
	"github.com/amirkhadim36-creator/reelpress/internal/store"
)

// Entry kinds. The (kind, id) pair is unique across both source types.
const (
	KindMovie = "catalog"
	KindPost  = "ai"
)

// Entry is the transient union of a catalog item and a generated post
type Entry struct {
	Kind  string         `json:"kind"`
	Movie *catalog.Movie `json:"movie,omitempty"`
	Post  *store.Post    `json:"post,omitempty"`
}

// Key returns the unique (kind, id) render key
func (e Entry) Key() string {
	switch e.Kind {
	case KindPost:
		return fmt.Sprintf("%s-%s", e.Kind, e.Post.ID)
	default:
		return fmt.Sprintf("%s-%d", e.Kind, e.Movie.ID)
	}
}

// Title returns the display title regardless of kind
func (e Entry) Title() string {
	if e.Kind == KindPost {
		return e.Post.Title
	}
	return e.Movie.Title
}

// Compose projects the view state into the ordered feed list.
// Pure: no network calls, no mutation of the snapshot.
func Compose(snap feedstate.Snapshot, prependCap int) []Entry {
	byCatalogID := make(map[int64]*store.Post, len(snap.Posts))
	for i := range snap.Posts {
		p := &snap.Posts[i]
		if _, ok := byCatalogID[p.CatalogID]; !ok {
			byCatalogID[p.CatalogID] = p
		}
	}

	// Merge rule: a generated post supersedes the raw catalog item at
	// the same feed position.
	merged := make([]Entry, 0, len(snap.Movies))
	for i := range snap.Movies {
		m := &snap.Movies[i]
		if p, ok := byCatalogID[m.ID]; ok {
			merged = append(merged, Entry{Kind: KindPost, Post: p})
		} else {
			merged = append(merged, Entry{Kind: KindMovie, Movie: m})
		}
	}

	// Search override: a strict local lens, no pagination, no prepend.
	if query := strings.TrimSpace(snap.Query); query != "" {
		query = strings.ToLower(query)
		filtered := merged[:0:0]
		for _, e := range merged {
			var description string
			if e.Kind == KindPost {
				description = e.Post.Preview
			} else {
				description = e.Movie.Overview
			}
			if strings.Contains(strings.ToLower(e.Title()), query) ||
				strings.Contains(strings.ToLower(description), query) {
				filtered = append(filtered, e)
			}
		}
		return filtered
	}

	// Category prepend injection, first page only: surface generated
	// posts for the active genre ahead of the merged list.
	if snap.Page == 1 {
		inPage := make(map[int64]bool, len(snap.Movies))
		for _, m := range snap.Movies {
			inPage[m.ID] = true
		}

		var prepended []Entry
		for i := range snap.Posts {
			if len(prepended) >= prependCap {
				break
			}
			p := &snap.Posts[i]
			matchesGenre := snap.Genre == catalog.GenreAll ||
				strings.EqualFold(p.Category, snap.Genre)
			if matchesGenre && !inPage[p.CatalogID] {
				prepended = append(prepended, Entry{Kind: KindPost, Post: p})
			}
		}

		if len(prepended) > 0 {
			merged = append(prepended, merged...)
		}
	}

	return merged
}
