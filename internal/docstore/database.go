package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"opportunity-sync-go/internal/document"
	"opportunity-sync-go/internal/models"
)

// DatabaseStore implements Store over the documents table. Handles are
// decimal primary keys; paragraphs are serialized as JSON.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed document store.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// GetOrCreate opens the record by handle, creating a fresh named
// document when the handle is empty or does not resolve.
func (s *DatabaseStore) GetOrCreate(ctx context.Context, handle, name string) (string, bool, error) {
	if handle != "" {
		if id, err := strconv.ParseUint(handle, 10, 64); err == nil {
			var existing models.StoredDocument
			err := s.db.WithContext(ctx).First(&existing, uint(id)).Error
			if err == nil {
				return handle, false, nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return "", false, &ResolutionError{Handle: handle, Err: err}
			}
		}
	}

	record := models.StoredDocument{Name: name, Content: "[]"}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", false, &ResolutionError{Handle: handle, Err: err}
	}

	return strconv.FormatUint(uint64(record.ID), 10), true, nil
}

// Load deserializes the stored paragraph list.
func (s *DatabaseStore) Load(ctx context.Context, handle string) (*document.Document, error) {
	record, err := s.find(ctx, handle)
	if err != nil {
		return nil, err
	}

	doc := document.New()
	if record.Content != "" {
		if err := json.Unmarshal([]byte(record.Content), &doc.Paragraphs); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", handle, err)
		}
	}
	return doc, nil
}

// Save serializes the paragraph list back to the record.
func (s *DatabaseStore) Save(ctx context.Context, handle string, doc *document.Document) error {
	record, err := s.find(ctx, handle)
	if err != nil {
		return err
	}

	content, err := json.Marshal(doc.Paragraphs)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", handle, err)
	}

	err = s.db.WithContext(ctx).
		Model(&models.StoredDocument{}).
		Where("id = ?", record.ID).
		Update("content", string(content)).Error
	if err != nil {
		return fmt.Errorf("failed to save document %s: %w", handle, err)
	}
	return nil
}

func (s *DatabaseStore) find(ctx context.Context, handle string) (*models.StoredDocument, error) {
	id, err := strconv.ParseUint(handle, 10, 64)
	if err != nil {
		return nil, &ResolutionError{Handle: handle, Err: err}
	}

	var record models.StoredDocument
	if err := s.db.WithContext(ctx).First(&record, uint(id)).Error; err != nil {
		return nil, &ResolutionError{Handle: handle, Err: err}
	}
	return &record, nil
}
