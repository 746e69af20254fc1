// Package configstore reads and updates the per-opportunity configuration
// rows that drive each sync run. Two backends exist: the original Google
// Sheet ("Opportunity Tracker") and a MySQL table.
package configstore

import (
	"context"
	"errors"
	"time"

	"opportunity-sync-go/internal/models"
)

// ErrStoreNotFound indicates the backing store cannot be read at all.
// The orchestrator treats it as run-fatal: no rows can be processed.
var ErrStoreNotFound = errors.New("opportunity tracker not found")

// Store is the configuration store collaborator. Point updates address a
// single row; concurrent runs are assumed not to overlap.
type Store interface {
	ReadAll(ctx context.Context) ([]models.Opportunity, error)
	UpdateCursor(ctx context.Context, opp *models.Opportunity, t time.Time) error
	UpdateStatus(ctx context.Context, opp *models.Opportunity, status string) error
	UpdateDocHandle(ctx context.Context, opp *models.Opportunity, handle string) error
	LogError(ctx context.Context, opp *models.Opportunity, message string) error
	ClearError(ctx context.Context, opp *models.Opportunity) error
}
