// Package vectorstore persists audit snapshots as embedded points in
// postgres with the pgvector extension. Each named collection maps to its
// own table; points carry a UUID, the raw text and a fixed-width vector.
package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"regexp"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/ljmonteiro/interviewcast/internal/models"
)

// Point is one stored snapshot.
type Point struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"-"`
}

type Store struct {
	db   *sql.DB
	dims int
}

func New(databaseURL string, dims int) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	log.Println("[VectorStore] connected")
	return &Store{db: db, dims: dims}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

var collectionName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// tableFor maps a collection to its table. Names are restricted because
// they are interpolated into DDL and queries.
func tableFor(collection string) (string, error) {
	if !collectionName.MatchString(collection) {
		return "", fmt.Errorf("invalid collection name %q", collection)
	}
	return "audit_" + collection, nil
}

// EnsureCollection creates the collection table (and the vector extension)
// if it does not exist yet. Safe to call repeatedly.
func (s *Store) EnsureCollection(ctx context.Context, collection string) error {
	table, err := tableFor(collection)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}

	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY,
			text text NOT NULL,
			embedding vector(%d) NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, table, s.dims)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create collection %s: %w", collection, err)
	}
	return nil
}

// Upsert inserts or replaces a point by ID.
func (s *Store) Upsert(ctx context.Context, collection string, p Point) error {
	table, err := tableFor(collection)
	if err != nil {
		return err
	}
	if len(p.Embedding) != s.dims {
		return fmt.Errorf("embedding has %d dims, store expects %d", len(p.Embedding), s.dims)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, text, embedding)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET text = EXCLUDED.text, embedding = EXCLUDED.embedding`,
		table)
	if _, err := s.db.ExecContext(ctx, query, p.ID, p.Text, pgvector.NewVector(p.Embedding)); err != nil {
		return fmt.Errorf("upsert into %s: %w", collection, err)
	}
	return nil
}

// Retrieve fetches a point by ID. Returns models.ErrNotFound when absent.
func (s *Store) Retrieve(ctx context.Context, collection string, id uuid.UUID) (*Point, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}

	var p Point
	var emb pgvector.Vector
	query := fmt.Sprintf(`SELECT id, text, embedding FROM %s WHERE id = $1`, table)
	err = s.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Text, &emb)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("point %s in %s: %w", id, collection, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("retrieve from %s: %w", collection, err)
	}
	p.Embedding = emb.Slice()
	return &p, nil
}

// Scroll lists the most recent points in a collection.
func (s *Store) Scroll(ctx context.Context, collection string, limit int) ([]Point, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(`SELECT id, text FROM %s ORDER BY created_at DESC LIMIT $1`, table)
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("scroll %s: %w", collection, err)
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.ID, &p.Text); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", collection, err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scroll %s: %w", collection, err)
	}
	return points, nil
}

// Nearest returns the single point closest to the query vector by cosine
// distance. Returns models.ErrNotFound for an empty collection.
func (s *Store) Nearest(ctx context.Context, collection string, embedding []float32) (*Point, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}

	var p Point
	query := fmt.Sprintf(`SELECT id, text FROM %s ORDER BY embedding <=> $1 LIMIT 1`, table)
	err = s.db.QueryRowContext(ctx, query, pgvector.NewVector(embedding)).Scan(&p.ID, &p.Text)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("collection %s is empty: %w", collection, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("nearest in %s: %w", collection, err)
	}
	return &p, nil
}
