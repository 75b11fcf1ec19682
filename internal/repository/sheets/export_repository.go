package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"opnamecore/internal/config"
	"opnamecore/internal/domain/models"
)

const (
	historyExportRange = "StockOpname!A:G"
	exportDateLayout   = "2006-01-02 15:04:05"
)

// Exporter pushes a one-row summary of each finalized count to an external
// spreadsheet. Export is best-effort; callers log failures and move on.
type Exporter interface {
	AppendHistoryRow(ctx context.Context, record models.SOHistoryRecord) error
}

// GoogleSheetExporter implements Exporter using the official Sheets API.
type GoogleSheetExporter struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetExporter builds a Sheets-backed exporter instance.
func NewGoogleSheetExporter(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Exporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetExporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendHistoryRow appends the record summary to the export range.
func (e *GoogleSheetExporter) AppendHistoryRow(ctx context.Context, record models.SOHistoryRecord) error {
	values := []interface{}{
		record.ID,
		record.Date.Format(exportDateLayout),
		record.UserName,
		record.TotalItems,
		record.TotalQtyDifference,
		record.TotalRpDifference,
		record.DurationSeconds,
	}
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := e.service.Spreadsheets.Values.Append(e.spreadsheetID, historyExportRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append history row into range %s: %w", historyExportRange, err)
	}

	e.logger.Debug("history row exported to sheet", zap.String("record_id", record.ID))
	return nil
}
