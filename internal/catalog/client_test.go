package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestClient spins up a stub catalog API that routes by path.
func newTestClient(t *testing.T, handlers map[string]http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			http.Error(w, `{"status_message":"Invalid API key"}`, http.StatusUnauthorized)
			return
		}
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-key", "https://image.test")
}

func writeBody(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, body)
}

func TestTrendingTopicsBucketsAndCap(t *testing.T) {
	results := `[`
	for i := 0; i < 12; i++ {
		if i > 0 {
			results += ","
		}
		pop := 100.0
		if i == 0 {
			pop = 2000
		} else if i == 1 {
			pop = 900
		}
		results += fmt.Sprintf(`{"id":%d,"title":"Movie %d","media_type":"movie","popularity":%f,"vote_average":7.5}`, i+1, i+1, pop)
	}
	results += `]`

	c := newTestClient(t, map[string]http.HandlerFunc{
		"/trending/all/week": func(w http.ResponseWriter, r *http.Request) {
			writeBody(w, `{"results":`+results+`}`)
		},
	})

	topics, err := c.TrendingTopics(context.Background())
	require.NoError(t, err)
	require.Len(t, topics, 10)
	require.Equal(t, VolumeHigh, topics[0].Volume)
	require.Equal(t, VolumeMedium, topics[1].Volume)
	require.Equal(t, VolumeLow, topics[2].Volume)
}

func TestTrendingTopicsTVUsesNameAndSeries(t *testing.T) {
	c := newTestClient(t, map[string]http.HandlerFunc{
		"/trending/all/week": func(w http.ResponseWriter, r *http.Request) {
			writeBody(w, `{"results":[{"id":7,"name":"The Wire","media_type":"tv","popularity":50,"vote_average":9.3}]}`)
		},
	})

	topics, err := c.TrendingTopics(context.Background())
	require.NoError(t, err)
	require.Len(t, topics, 1)
	require.Equal(t, "The Wire", topics[0].Title)
	require.Equal(t, "Series", topics[0].Category)
}

func TestSearchMergesKeywordHits(t *testing.T) {
	c := newTestClient(t, map[string]http.HandlerFunc{
		"/search/movie": func(w http.ResponseWriter, r *http.Request) {
			writeBody(w, `{"results":[{"id":1,"title":"Blade Runner"},{"id":2,"title":"Blade Runner 2049"}]}`)
		},
		"/search/keyword": func(w http.ResponseWriter, r *http.Request) {
			writeBody(w, `{"results":[{"id":100},{"id":101},{"id":102},{"id":103}]}`)
		},
		"/discover/movie": func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "100|101|102", r.URL.Query().Get("with_keywords"))
			writeBody(w, `{"results":[{"id":2,"title":"Blade Runner 2049"},{"id":3,"title":"Ghost in the Shell"}]}`)
		},
	})

	movies, err := c.Search(context.Background(), "blade")
	require.NoError(t, err)

	var ids []int64
	for _, m := range movies {
		ids = append(ids, m.ID)
	}
	// Title hits first, keyword hits appended without duplicates.
	require.Equal(t, []int64{1, 2, 3}, ids)
}

func TestSearchSurvivesKeywordFailure(t *testing.T) {
	c := newTestClient(t, map[string]http.HandlerFunc{
		"/search/movie": func(w http.ResponseWriter, r *http.Request) {
			writeBody(w, `{"results":[{"id":1,"title":"Solaris"}]}`)
		},
		"/search/keyword": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
	})

	movies, err := c.Search(context.Background(), "solaris")
	require.NoError(t, err)
	require.Len(t, movies, 1)
}

func TestDiscoverUnknownGenreFallsBackToTrending(t *testing.T) {
	trendingCalls := 0
	c := newTestClient(t, map[string]http.HandlerFunc{
		"/trending/movie/day": func(w http.ResponseWriter, r *http.Request) {
			trendingCalls++
			writeBody(w, `{"results":[{"id":1,"title":"Trending"}]}`)
		},
	})

	for _, genre := range []string{"", GenreAll, "Mockumentary"} {
		movies, err := c.DiscoverByGenre(context.Background(), genre, 1)
		require.NoError(t, err)
		require.Len(t, movies, 1)
	}
	require.Equal(t, 3, trendingCalls)
}

func TestTrendingAnnotatesGenreNames(t *testing.T) {
	c := newTestClient(t, map[string]http.HandlerFunc{
		"/trending/movie/day": func(w http.ResponseWriter, r *http.Request) {
			writeBody(w, `{"results":[{"id":1,"title":"Alien","genre_ids":[27,878,99999]}]}`)
		},
	})

	movies, err := c.Trending(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	// Known ids resolve to display names; unknown ids are skipped.
	require.Equal(t, []string{"Horror", "Sci-Fi"}, movies[0].GenreNames)
}

func TestDiscoverByGenreSendsGenreID(t *testing.T) {
	c := newTestClient(t, map[string]http.HandlerFunc{
		"/discover/movie": func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "27", r.URL.Query().Get("with_genres"))
			require.Equal(t, "2", r.URL.Query().Get("page"))
			writeBody(w, `{"results":[{"id":5,"title":"Horror Pick"}]}`)
		},
	})

	movies, err := c.DiscoverByGenre(context.Background(), "Horror", 2)
	require.NoError(t, err)
	require.Len(t, movies, 1)
}

func TestVideosTrailerFirstYouTubeOnly(t *testing.T) {
	c := newTestClient(t, map[string]http.HandlerFunc{
		"/movie/5/videos": func(w http.ResponseWriter, r *http.Request) {
			writeBody(w, `{"results":[
				{"key":"a","site":"YouTube","type":"Clip"},
				{"key":"b","site":"Vimeo","type":"Trailer"},
				{"key":"c","site":"YouTube","type":"Trailer"},
				{"key":"d","site":"YouTube","type":"Featurette"}
			]}`)
		},
	})

	videos, err := c.Videos(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, videos, 3)
	require.Equal(t, "c", videos[0].Key)
	require.Equal(t, "a", videos[1].Key)
	require.Equal(t, "d", videos[2].Key)
}

func TestDetails(t *testing.T) {
	c := newTestClient(t, map[string]http.HandlerFunc{
		"/movie/603": func(w http.ResponseWriter, r *http.Request) {
			writeBody(w, `{"title":"The Matrix","budget":63000000,"revenue":463517383,"status":"Released","runtime":136,"tagline":"Free your mind","backdrop_path":"/bd.jpg","genres":[{"name":"Action"},{"name":"Science Fiction"}]}`)
		},
	})

	d, err := c.Details(context.Background(), 603)
	require.NoError(t, err)
	require.Equal(t, "The Matrix", d.Title)
	require.Equal(t, int64(63000000), d.Budget)
	require.Equal(t, 136, d.Runtime)
	require.Equal(t, []string{"Action", "Science Fiction"}, d.GenreNames)
}

func TestImageURLs(t *testing.T) {
	c := New("https://api.test", "k", "https://image.test")

	require.Equal(t, "https://image.test/w1280/bd.jpg", c.ImageURL("w1280", "/bd.jpg"))
	require.Empty(t, c.ImageURL("w1280", ""))
	require.Equal(t, "https://image.test/original/345", c.FallbackImageURL(2345))
}

func TestGetReportsAPIError(t *testing.T) {
	c := newTestClient(t, map[string]http.HandlerFunc{
		"/trending/movie/day": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"status_message":"rate limited"}`, http.StatusTooManyRequests)
		},
	})

	_, err := c.Trending(context.Background(), 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}
