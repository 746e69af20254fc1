package models

import (
	"time"

	"gorm.io/gorm"
)

// Opportunity status values, in lifecycle order.
const (
	StatusIdle       = "Idle"
	StatusProcessing = "Processing"
	StatusSuccess    = "Success"
	StatusError      = "Error"
)

// Opportunity is one tracked customer relationship: a single row in the
// configuration store. The same struct backs both the Sheets store (where
// RowNumber addresses the physical row) and the database store (where ID
// is the primary key).
type Opportunity struct {
	ID             uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name           string         `json:"name" gorm:"type:varchar(255);not null"`
	SalesforceURL  string         `json:"salesforce_url" gorm:"type:varchar(512)"`
	CustomerDomain string         `json:"customer_domain" gorm:"type:varchar(255)"`
	GmailLabel     string         `json:"gmail_label" gorm:"type:varchar(255)"`
	DocID          string         `json:"doc_id" gorm:"type:varchar(255)"`
	LastSync       string         `json:"last_sync" gorm:"type:varchar(32)"`
	Status         string         `json:"status" gorm:"type:varchar(32)"`
	ErrorLog       string         `json:"error_log" gorm:"type:text"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	// RowNumber is the 1-based physical row in the backing sheet (header is
	// row 1, so data starts at 2). Unused by the database store.
	RowNumber int `json:"row_number" gorm:"-"`
}

// TableName specifies the table name for Opportunity
func (Opportunity) TableName() string {
	return "opportunities"
}

// StoredDocument holds a consolidation document when the database document
// store is selected instead of Google Docs. Paragraphs are serialized JSON.
type StoredDocument struct {
	ID        uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string         `json:"name" gorm:"type:varchar(255);not null"`
	Content   string         `json:"content" gorm:"type:longtext"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for StoredDocument
func (StoredDocument) TableName() string {
	return "documents"
}

// SyncRun is the persisted summary of one orchestration run.
type SyncRun struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Processed  int       `json:"processed"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
	Errors     string    `json:"errors" gorm:"type:text"` // JSON-encoded []RowError
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for SyncRun
func (SyncRun) TableName() string {
	return "sync_runs"
}

// OpportunityResponse represents the response structure for opportunities
type OpportunityResponse struct {
	ID             uint   `json:"id,omitempty"`
	RowNumber      int    `json:"row_number,omitempty"`
	Name           string `json:"name"`
	SalesforceURL  string `json:"salesforce_url"`
	CustomerDomain string `json:"customer_domain"`
	GmailLabel     string `json:"gmail_label"`
	DocID          string `json:"doc_id"`
	LastSync       string `json:"last_sync"`
	Status         string `json:"status"`
	ErrorLog       string `json:"error_log"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Database  string            `json:"database"`
	Metrics   map[string]string `json:"metrics,omitempty"`
}
