package repository

import (
	"fmt"

	"gorm.io/gorm"

	"opportunity-sync-go/internal/models"
)

// Repository persists and queries run summaries.
type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SaveRun persists the summary of a completed sync run.
func (r *Repository) SaveRun(run *models.SyncRun) error {
	if result := r.db.Create(run); result.Error != nil {
		return fmt.Errorf("failed to save run summary: %w", result.Error)
	}
	return nil
}

// LastRun returns the most recent run summary, or nil when no run has
// been recorded yet.
func (r *Repository) LastRun() (*models.SyncRun, error) {
	var run models.SyncRun
	result := r.db.Order("id DESC").First(&run)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get last run: %w", result.Error)
	}
	return &run, nil
}

// RecentRuns returns up to limit run summaries, newest first.
func (r *Repository) RecentRuns(limit int) ([]models.SyncRun, error) {
	var runs []models.SyncRun
	result := r.db.Order("id DESC").Limit(limit).Find(&runs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get runs: %w", result.Error)
	}
	return runs, nil
}
