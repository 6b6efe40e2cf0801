package catalog

// Movie represents a browsable catalog entry
type Movie struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	PosterPath   string   `json:"poster_path"`
	BackdropPath string   `json:"backdrop_path,omitempty"`
	Overview     string   `json:"overview"`
	VoteAverage  float64  `json:"vote_average"`
	ReleaseDate  string   `json:"release_date"`
	GenreIDs     []int64  `json:"genre_ids,omitempty"`
	GenreNames   []string `json:"genre_names,omitempty"`
}

// Details holds the enriched fields returned by a detail lookup
type Details struct {
	Title        string   `json:"title"`
	Budget       int64    `json:"budget"`
	Revenue      int64    `json:"revenue"`
	Status       string   `json:"status"`
	Runtime      int      `json:"runtime"`
	Tagline      string   `json:"tagline"`
	ReleaseDate  string   `json:"release_date"`
	BackdropPath string   `json:"backdrop_path"`
	PosterPath   string   `json:"poster_path"`
	GenreNames   []string `json:"genre_names"`
}

// Video represents a related video (trailers, clips)
type Video struct {
	Name        string `json:"name"`
	Key         string `json:"key"`
	Site        string `json:"site"`
	Type        string `json:"type"`
	PublishedAt string `json:"published_at"`
}

// Popularity buckets for trending topics
const (
	VolumeHigh   = "High"
	VolumeMedium = "Medium"
	VolumeLow    = "Low"
)

// Topic is a lightweight projection of a catalog entry used as
// generation fodder
type Topic struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Category     string  `json:"category"`
	Volume       string  `json:"volume"`
	Rating       float64 `json:"rating,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	PosterPath   string  `json:"poster_path,omitempty"`
}
