package configstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"opportunity-sync-go/internal/formatter"
	"opportunity-sync-go/internal/models"
)

// DatabaseStore implements Store over the opportunities table, keyed by
// primary key instead of a physical row number.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed configuration store.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// ReadAll returns every opportunity row ordered by ID.
func (s *DatabaseStore) ReadAll(ctx context.Context) ([]models.Opportunity, error) {
	var opportunities []models.Opportunity
	if err := s.db.WithContext(ctx).Order("id").Find(&opportunities).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreNotFound, err)
	}

	for i := range opportunities {
		opportunities[i].RowNumber = int(opportunities[i].ID)
	}
	return opportunities, nil
}

// UpdateCursor writes the sync timestamp for one row.
func (s *DatabaseStore) UpdateCursor(ctx context.Context, opp *models.Opportunity, t time.Time) error {
	return s.updateColumn(ctx, opp, "last_sync", formatter.SyncTimestamp(t))
}

// UpdateStatus writes the status for one row.
func (s *DatabaseStore) UpdateStatus(ctx context.Context, opp *models.Opportunity, status string) error {
	return s.updateColumn(ctx, opp, "status", status)
}

// UpdateDocHandle writes a newly created document's handle for one row.
func (s *DatabaseStore) UpdateDocHandle(ctx context.Context, opp *models.Opportunity, handle string) error {
	return s.updateColumn(ctx, opp, "doc_id", handle)
}

// LogError writes a timestamp-prefixed message to the row's error log.
func (s *DatabaseStore) LogError(ctx context.Context, opp *models.Opportunity, message string) error {
	entry := fmt.Sprintf("[%s] %s", formatter.SyncTimestamp(time.Now()), message)
	return s.updateColumn(ctx, opp, "error_log", entry)
}

// ClearError empties the row's error log.
func (s *DatabaseStore) ClearError(ctx context.Context, opp *models.Opportunity) error {
	return s.updateColumn(ctx, opp, "error_log", "")
}

func (s *DatabaseStore) updateColumn(ctx context.Context, opp *models.Opportunity, column, value string) error {
	err := s.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Where("id = ?", opp.ID).
		Update(column, value).Error
	if err != nil {
		return fmt.Errorf("failed to update opportunity %d: %w", opp.ID, err)
	}
	return nil
}
