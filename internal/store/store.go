package store

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store handles all database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with SQLite backend
func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		catalog_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		preview TEXT,
		content TEXT NOT NULL,
		image TEXT,
		sentiment INTEGER,
		category TEXT,
		keywords TEXT,
		budget INTEGER,
		revenue INTEGER,
		runtime INTEGER,
		status TEXT,
		tagline TEXT,
		audio BLOB,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_posts_catalog_id ON posts(catalog_id);
	CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// InsertPost persists a new post, assigning its internal id and
// creation timestamp. The passed post is returned with both filled in.
func (s *Store) InsertPost(p *Post) (*Post, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()

	keywordsJSON, _ := json.Marshal(p.Keywords)

	_, err := s.db.Exec(`
		INSERT INTO posts (id, catalog_id, title, preview, content, image,
			sentiment, category, keywords, budget, revenue, runtime,
			status, tagline, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.CatalogID, p.Title, p.Preview, p.Content, p.Image,
		p.Sentiment, p.Category, string(keywordsJSON), p.Budget, p.Revenue,
		p.Runtime, p.Status, p.Tagline, p.CreatedAt)
	if err != nil {
		return nil, err
	}

	return p, nil
}

const postColumns = `id, catalog_id, title, preview, content, image,
	sentiment, category, keywords, budget, revenue, runtime,
	status, tagline, audio, created_at`

// FindByCatalogID returns the post for a catalog id, or nil if none exists
func (s *Store) FindByCatalogID(catalogID int64) (*Post, error) {
	row := s.db.QueryRow(`
		SELECT `+postColumns+`
		FROM posts
		WHERE catalog_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, catalogID)

	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// FindByID returns the post with the given internal id
func (s *Store) FindByID(id string) (*Post, error) {
	row := s.db.QueryRow(`
		SELECT `+postColumns+`
		FROM posts
		WHERE id = ?
	`, id)

	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// ListPosts returns all posts, most recent first
func (s *Store) ListPosts() ([]Post, error) {
	rows, err := s.db.Query(`
		SELECT ` + postColumns + `
		FROM posts
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// UpdateAudio attaches cached narration audio to a post
func (s *Store) UpdateAudio(postID string, audio []byte) error {
	_, err := s.db.Exec(`UPDATE posts SET audio = ? WHERE id = ?`, audio, postID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var p Post
	var keywordsJSON sql.NullString
	var audio []byte

	err := row.Scan(
		&p.ID, &p.CatalogID, &p.Title, &p.Preview, &p.Content, &p.Image,
		&p.Sentiment, &p.Category, &keywordsJSON, &p.Budget, &p.Revenue,
		&p.Runtime, &p.Status, &p.Tagline, &audio, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if keywordsJSON.Valid {
		json.Unmarshal([]byte(keywordsJSON.String), &p.Keywords)
	}
	p.Audio = audio
	p.HasAudio = len(audio) > 0

	return &p, nil
}
