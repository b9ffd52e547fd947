// Package audit records text snapshots as embedded points and compares the
// generated collection against the corrected one with a unified diff.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/ljmonteiro/interviewcast/internal/dialogue"
	"github.com/ljmonteiro/interviewcast/internal/models"
	"github.com/ljmonteiro/interviewcast/internal/vectorstore"
)

// Embedder turns text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// PointStore is the slice of the vector store the audit layer needs.
type PointStore interface {
	EnsureCollection(ctx context.Context, collection string) error
	Upsert(ctx context.Context, collection string, p vectorstore.Point) error
	Nearest(ctx context.Context, collection string, embedding []float32) (*vectorstore.Point, error)
}

var _ PointStore = (*vectorstore.Store)(nil)

// Recorder persists snapshots. It satisfies dialogue.AuditStore.
type Recorder struct {
	store    PointStore
	embedder Embedder
}

var _ dialogue.AuditStore = (*Recorder)(nil)

func NewRecorder(store PointStore, embedder Embedder) *Recorder {
	return &Recorder{store: store, embedder: embedder}
}

// Save embeds the text, makes sure the collection exists and upserts a
// fresh point. The new point's ID is returned as a string.
func (r *Recorder) Save(ctx context.Context, collection, text string) (string, error) {
	vec, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("embed for %s: %w", collection, err)
	}
	if err := r.store.EnsureCollection(ctx, collection); err != nil {
		return "", err
	}

	id := uuid.New()
	if err := r.store.Upsert(ctx, collection, vectorstore.Point{ID: id, Text: text, Embedding: vec}); err != nil {
		return "", err
	}
	log.Printf("[Audit] saved point %s to %s (%d chars)", id, collection, len(text))
	return id.String(), nil
}

// Comparer answers free-text audit queries: find the closest generated and
// corrected snapshots and show how they differ.
type Comparer struct {
	store    PointStore
	embedder Embedder
}

func NewComparer(store PointStore, embedder Embedder) *Comparer {
	return &Comparer{store: store, embedder: embedder}
}

// QueryAndCompare embeds the query, pulls the nearest point from both audit
// collections and returns a report with a unified diff. When either
// collection has no match the report says so instead of failing.
func (c *Comparer) QueryAndCompare(ctx context.Context, query string) (string, error) {
	vec, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}

	gen, err := c.store.Nearest(ctx, dialogue.CollectionGenerated, vec)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return "", err
	}
	cor, err := c.store.Nearest(ctx, dialogue.CollectionCorrected, vec)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return "", err
	}

	if gen == nil || cor == nil {
		return "No matching records found.", nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(gen.Text),
		B:        difflib.SplitLines(cor.Text),
		FromFile: "generated",
		ToFile:   "corrected",
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("diff: %w", err)
	}
	if diff == "" {
		diff = "(no differences)\n"
	}

	return fmt.Sprintf("Generated text:\n%s\n\nCorrected text:\n%s\n\nDifferences:\n%s",
		gen.Text, cor.Text, diff), nil
}
