// Package catalog is the HTTP client for the external movie/TV
// metadata provider.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const topicCap = 10

// Client talks to a TMDB-style catalog API
type Client struct {
	baseURL      string
	apiKey       string
	imageBaseURL string
	client       *http.Client
}

// New creates a new catalog client
func New(baseURL, apiKey, imageBaseURL string) *Client {
	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		imageBaseURL: imageBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ImageURL resolves a provider image path into a fetchable URL at the
// given width preset (e.g. "w1280", "original").
func (c *Client) ImageURL(size, path string) string {
	if path == "" {
		return ""
	}
	return c.imageBaseURL + "/" + size + path
}

// FallbackImageURL derives a deterministic image URL from a catalog id
// for entries that carry no artwork at all.
func (c *Client) FallbackImageURL(id int64) string {
	return fmt.Sprintf("%s/original/%d", c.imageBaseURL, id%1000)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call catalog API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse catalog response: %w", err)
	}
	return nil
}

type pageResponse struct {
	Results []Movie `json:"results"`
}

// annotateGenres fills GenreNames from the numeric genre ids list
// pages carry. Unknown ids are skipped.
func annotateGenres(movies []Movie) []Movie {
	for i := range movies {
		m := &movies[i]
		if len(m.GenreNames) > 0 {
			continue
		}
		for _, id := range m.GenreIDs {
			if name := GenreName(id); name != "" {
				m.GenreNames = append(m.GenreNames, name)
			}
		}
	}
	return movies
}

// Trending returns the daily trending movie page
func (c *Client) Trending(ctx context.Context, page int) ([]Movie, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))

	var resp pageResponse
	if err := c.get(ctx, "/trending/movie/day", q, &resp); err != nil {
		return nil, err
	}
	return annotateGenres(resp.Results), nil
}

// DiscoverByGenre returns a page of movies for a genre name. "All" or
// an unknown genre falls back to the trending feed.
func (c *Client) DiscoverByGenre(ctx context.Context, genre string, page int) ([]Movie, error) {
	if genre == "" || genre == GenreAll {
		return c.Trending(ctx, page)
	}

	genreID := GenreID(genre)
	if genreID == 0 {
		return c.Trending(ctx, page)
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("with_genres", strconv.FormatInt(genreID, 10))
	q.Set("sort_by", "popularity.desc")

	var resp pageResponse
	if err := c.get(ctx, "/discover/movie", q, &resp); err != nil {
		return nil, err
	}
	return annotateGenres(resp.Results), nil
}

type keywordResponse struct {
	Results []struct {
		ID int64 `json:"id"`
	} `json:"results"`
}

// Search combines a title search with a keyword-based discover pass.
// Title hits come first; keyword hits are appended deduplicated by id.
func (c *Client) Search(ctx context.Context, query string) ([]Movie, error) {
	q := url.Values{}
	q.Set("query", query)

	var titleResp pageResponse
	if err := c.get(ctx, "/search/movie", q, &titleResp); err != nil {
		return nil, err
	}
	results := annotateGenres(titleResp.Results)

	var kwResp keywordResponse
	if err := c.get(ctx, "/search/keyword", q, &kwResp); err != nil {
		// Keyword expansion is best-effort; the title results stand alone.
		return results, nil
	}

	topKeywords := kwResp.Results
	if len(topKeywords) > 3 {
		topKeywords = topKeywords[:3]
	}
	if len(topKeywords) == 0 {
		return results, nil
	}

	ids := ""
	for i, k := range topKeywords {
		if i > 0 {
			ids += "|"
		}
		ids += strconv.FormatInt(k.ID, 10)
	}

	dq := url.Values{}
	dq.Set("with_keywords", ids)
	dq.Set("sort_by", "popularity.desc")

	var discoverResp pageResponse
	if err := c.get(ctx, "/discover/movie", dq, &discoverResp); err != nil {
		return results, nil
	}

	seen := make(map[int64]bool, len(results))
	for _, m := range results {
		seen[m.ID] = true
	}
	for _, m := range annotateGenres(discoverResp.Results) {
		if !seen[m.ID] {
			results = append(results, m)
			seen[m.ID] = true
		}
	}

	return results, nil
}

type detailResponse struct {
	Title        string `json:"title"`
	Budget       int64  `json:"budget"`
	Revenue      int64  `json:"revenue"`
	Status       string `json:"status"`
	Runtime      int    `json:"runtime"`
	Tagline      string `json:"tagline"`
	ReleaseDate  string `json:"release_date"`
	BackdropPath string `json:"backdrop_path"`
	PosterPath   string `json:"poster_path"`
	Genres       []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

// Details returns the enriched fields for a single movie
func (c *Client) Details(ctx context.Context, id int64) (*Details, error) {
	var resp detailResponse
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), nil, &resp); err != nil {
		return nil, err
	}

	d := &Details{
		Title:        resp.Title,
		Budget:       resp.Budget,
		Revenue:      resp.Revenue,
		Status:       resp.Status,
		Runtime:      resp.Runtime,
		Tagline:      resp.Tagline,
		ReleaseDate:  resp.ReleaseDate,
		BackdropPath: resp.BackdropPath,
		PosterPath:   resp.PosterPath,
	}
	for _, g := range resp.Genres {
		d.GenreNames = append(d.GenreNames, g.Name)
	}
	return d, nil
}

type videoResponse struct {
	Results []Video `json:"results"`
}

// Videos returns YouTube videos for a movie, trailer first if present
func (c *Client) Videos(ctx context.Context, id int64) ([]Video, error) {
	var resp videoResponse
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10)+"/videos", nil, &resp); err != nil {
		return nil, err
	}

	var youtube []Video
	for _, v := range resp.Results {
		if v.Site == "YouTube" {
			youtube = append(youtube, v)
		}
	}

	for i, v := range youtube {
		if v.Type == "Trailer" {
			ordered := make([]Video, 0, len(youtube))
			ordered = append(ordered, v)
			ordered = append(ordered, youtube[:i]...)
			ordered = append(ordered, youtube[i+1:]...)
			return ordered, nil
		}
	}

	return youtube, nil
}

type trendingAllResponse struct {
	Results []struct {
		ID           int64   `json:"id"`
		Title        string  `json:"title"`
		Name         string  `json:"name"`
		MediaType    string  `json:"media_type"`
		Popularity   float64 `json:"popularity"`
		VoteAverage  float64 `json:"vote_average"`
		BackdropPath string  `json:"backdrop_path"`
		PosterPath   string  `json:"poster_path"`
	} `json:"results"`
}

// TrendingTopics returns up to 10 weekly trending entries as generation
// candidates, each tagged with a coarse popularity bucket.
func (c *Client) TrendingTopics(ctx context.Context) ([]Topic, error) {
	var resp trendingAllResponse
	if err := c.get(ctx, "/trending/all/week", nil, &resp); err != nil {
		return nil, err
	}

	results := resp.Results
	if len(results) > topicCap {
		results = results[:topicCap]
	}

	topics := make([]Topic, 0, len(results))
	for _, r := range results {
		title := r.Title
		if title == "" {
			title = r.Name
		}

		category := "Cinema"
		if r.MediaType == "tv" {
			category = "Series"
		}

		volume := VolumeLow
		switch {
		case r.Popularity > 1500:
			volume = VolumeHigh
		case r.Popularity > 800:
			volume = VolumeMedium
		}

		topics = append(topics, Topic{
			ID:           r.ID,
			Title:        title,
			Category:     category,
			Volume:       volume,
			Rating:       r.VoteAverage,
			BackdropPath: r.BackdropPath,
			PosterPath:   r.PosterPath,
		})
	}

	return topics, nil
}
