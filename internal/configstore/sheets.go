package configstore

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"opportunity-sync-go/internal/config"
	"opportunity-sync-go/internal/formatter"
	"opportunity-sync-go/internal/googleauth"
	"opportunity-sync-go/internal/models"
)

// Column letters for point updates, matching the fixed 8-column layout.
const (
	colDocID    = "E"
	colLastSync = "F"
	colStatus   = "G"
	colErrorLog = "H"
)

var headerRow = []interface{}{
	"Opportunity Name",
	"Salesforce URL",
	"Customer Domain",
	"Gmail Labels",
	"Doc ID",
	"Last Sync Date",
	"Status",
	"Error Log",
}

// SheetStore implements Store over a Google Sheet, one opportunity per
// row below a header row.
type SheetStore struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetStore creates a Sheets-backed configuration store.
func NewSheetStore(cfg *config.GoogleConfig) (*SheetStore, error) {
	ctx := context.Background()

	service, err := sheets.NewService(ctx,
		option.WithTokenSource(googleauth.TokenSource(ctx, cfg, sheets.SpreadsheetsScope)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}

	return &SheetStore{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
	}, nil
}

// ReadAll reads every data row below the header. A spreadsheet that
// cannot be resolved at all surfaces as ErrStoreNotFound; a missing
// tracker sheet inside it is bootstrapped with a styled header row.
func (s *SheetStore) ReadAll(ctx context.Context) ([]models.Opportunity, error) {
	spreadsheet, err := s.service.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreNotFound, err)
	}

	found := false
	for _, sh := range spreadsheet.Sheets {
		if sh.Properties != nil && sh.Properties.Title == s.sheetName {
			found = true
			break
		}
	}
	if !found {
		if err := s.bootstrap(ctx); err != nil {
			return nil, fmt.Errorf("failed to create tracker sheet: %w", err)
		}
		return []models.Opportunity{}, nil
	}

	readRange := fmt.Sprintf("'%s'!A2:H", s.sheetName)
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreNotFound, err)
	}

	return ParseRows(resp.Values), nil
}

// ParseRows maps raw sheet values to opportunities. Each row maps eight
// fixed columns positionally, defaulting absent cells to empty strings.
// Row numbers are physical (header is row 1, data starts at 2).
func ParseRows(values [][]interface{}) []models.Opportunity {
	opportunities := make([]models.Opportunity, 0, len(values))

	for i, row := range values {
		opportunities = append(opportunities, models.Opportunity{
			Name:           cell(row, 0),
			SalesforceURL:  cell(row, 1),
			CustomerDomain: cell(row, 2),
			GmailLabel:     cell(row, 3),
			DocID:          cell(row, 4),
			LastSync:       cell(row, 5),
			Status:         cell(row, 6),
			ErrorLog:       cell(row, 7),
			RowNumber:      i + 2,
		})
	}

	return opportunities
}

func cell(row []interface{}, col int) string {
	if col >= len(row) || row[col] == nil {
		return ""
	}
	return fmt.Sprintf("%v", row[col])
}

// UpdateCursor writes the sync timestamp to the row's cursor column.
func (s *SheetStore) UpdateCursor(ctx context.Context, opp *models.Opportunity, t time.Time) error {
	return s.writeCell(ctx, colLastSync, opp.RowNumber, formatter.SyncTimestamp(t))
}

// UpdateStatus writes the status column of the row.
func (s *SheetStore) UpdateStatus(ctx context.Context, opp *models.Opportunity, status string) error {
	return s.writeCell(ctx, colStatus, opp.RowNumber, status)
}

// UpdateDocHandle writes a newly created document's ID back to the row.
func (s *SheetStore) UpdateDocHandle(ctx context.Context, opp *models.Opportunity, handle string) error {
	return s.writeCell(ctx, colDocID, opp.RowNumber, handle)
}

// LogError writes a timestamp-prefixed message to the error-log column.
func (s *SheetStore) LogError(ctx context.Context, opp *models.Opportunity, message string) error {
	entry := fmt.Sprintf("[%s] %s", formatter.SyncTimestamp(time.Now()), message)
	return s.writeCell(ctx, colErrorLog, opp.RowNumber, entry)
}

// ClearError empties the error-log column.
func (s *SheetStore) ClearError(ctx context.Context, opp *models.Opportunity) error {
	return s.writeCell(ctx, colErrorLog, opp.RowNumber, "")
}

func (s *SheetStore) writeCell(ctx context.Context, column string, rowNumber int, value string) error {
	cellRange := fmt.Sprintf("'%s'!%s%d", s.sheetName, column, rowNumber)
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}

	_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, cellRange, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", cellRange, err)
	}
	return nil
}

// bootstrap creates the tracker sheet with a bold, shaded header row.
func (s *SheetStore) bootstrap(ctx context.Context) error {
	logrus.Infof("Creating tracker sheet %q", s.sheetName)

	addResp, err := s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: s.sheetName},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	headerRange := fmt.Sprintf("'%s'!A1:H1", s.sheetName)
	vr := &sheets.ValueRange{Values: [][]interface{}{headerRow}}
	if _, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, headerRange, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	var sheetID int64
	if len(addResp.Replies) > 0 && addResp.Replies[0].AddSheet != nil &&
		addResp.Replies[0].AddSheet.Properties != nil {
		sheetID = addResp.Replies[0].AddSheet.Properties.SheetId
	}

	_, err = s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:       sheetID,
					StartRowIndex: 0,
					EndRowIndex:   1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat:      &sheets.TextFormat{Bold: true},
						BackgroundColor: &sheets.Color{Red: 0.95, Green: 0.95, Blue: 0.95},
					},
				},
				Fields: "userEnteredFormat(textFormat,backgroundColor)",
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to style header row: %w", err)
	}

	return nil
}
