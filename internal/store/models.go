package store

import "time"

// Post is a generated long-form review tied to exactly one catalog entry
type Post struct {
	ID        string    `json:"id"`
	CatalogID int64     `json:"catalog_id"`
	Title     string    `json:"title"`
	Preview   string    `json:"preview"`
	Content   string    `json:"content"`
	Image     string    `json:"image"`
	Sentiment int       `json:"sentiment"`
	Category  string    `json:"category"`
	Keywords  []string  `json:"keywords,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Technical specs from the detail lookup, when the synthesizer
	// returned them.
	Budget  int64  `json:"budget,omitempty"`
	Revenue int64  `json:"revenue,omitempty"`
	Runtime int    `json:"runtime,omitempty"`
	Status  string `json:"status,omitempty"`
	Tagline string `json:"tagline,omitempty"`

	// Cached narration audio, lazily populated. Raw PCM16, never sent
	// in list payloads.
	Audio []byte `json:"-"`

	HasAudio bool `json:"has_audio"`
}
