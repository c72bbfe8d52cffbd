// Package documents is the gorm-backed read store for site content.
package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/Egham-7/site-context/internal/models"

	"gorm.io/gorm"
)

// Store reads documents through gorm.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over an open connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// GetDocument returns the document with id, or nil when none exists.
func (s *Store) GetDocument(ctx context.Context, id uint64) (*models.Document, error) {
	var doc models.Document
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document %d: %w", id, err)
	}
	return &doc, nil
}

// ListRecent returns up to limit public documents of the given types, newest
// modification first with id descending as tie-break.
func (s *Store) ListRecent(ctx context.Context, types []string, limit int) ([]models.Document, error) {
	var docs []models.Document
	q := s.db.WithContext(ctx).
		Where("status = ? AND (password = '' OR password IS NULL)", models.StatusPublish)
	if len(types) > 0 {
		q = q.Where("type IN ?", types)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Order("modified_at DESC, id DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list recent documents: %w", err)
	}
	return docs, nil
}

// Save inserts or updates a document.
func (s *Store) Save(ctx context.Context, doc *models.Document) error {
	if err := s.db.WithContext(ctx).Save(doc).Error; err != nil {
		return fmt.Errorf("save document %d: %w", doc.ID, err)
	}
	return nil
}
