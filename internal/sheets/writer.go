package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/visit-recap/internal/common"
	"github.com/Veraticus/visit-recap/internal/model"
	"github.com/Veraticus/visit-recap/internal/service"
)

// Writer implements the TableWriter interface for Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets table writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newWriter(service, config, logger), nil
}

func newWriter(service *sheets.Service, config Config, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		config:  config,
		service: service,
		logger:  logger,
	}
}

// Write replaces the contents of the recap tab with table.
func (w *Writer) Write(ctx context.Context, table *model.Table) error {
	w.logger.Info("starting sheets export",
		"rows", len(table.Rows),
		"columns", len(table.Columns))

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var spreadsheetID string
	var sheetID int64
	err := common.WithRetry(ctx, func() error {
		var err error
		spreadsheetID, sheetID, err = w.prepareSpreadsheet(ctx)
		return classify(err)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	err = common.WithRetry(ctx, func() error {
		return classify(w.clearSheet(ctx, spreadsheetID))
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to clear sheet: %w", err)
	}

	values := prepareValues(table)

	err = common.WithRetry(ctx, func() error {
		return classify(w.writeData(ctx, spreadsheetID, values))
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return classify(w.applyFormatting(ctx, spreadsheetID, sheetID, len(table.Columns)))
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic; the data is already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("sheets export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))

	return nil
}

// createSheetsService builds an authenticated Sheets client for the
// configured auth method.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	switch config.AuthMethod() {
	case AuthServiceAccount:
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}
		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	case AuthOAuth2:
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}
		tokenSource = client.TokenSource(ctx, &oauth2.Token{RefreshToken: config.RefreshToken})
	default:
		return nil, fmt.Errorf("no usable google credentials")
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// prepareSpreadsheet returns the target spreadsheet and the id of the recap
// tab, creating either when missing.
func (w *Writer) prepareSpreadsheet(ctx context.Context) (string, int64, error) {
	if w.config.SpreadsheetID == "" {
		return w.createSpreadsheet(ctx)
	}

	existing, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return "", 0, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
	}

	for _, sheet := range existing.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == w.config.SheetTitle {
			return existing.SpreadsheetId, sheet.Properties.SheetId, nil
		}
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(existing.SpreadsheetId, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: w.config.SheetTitle},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return "", 0, fmt.Errorf("unable to add sheet %q: %w", w.config.SheetTitle, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return "", 0, fmt.Errorf("unable to add sheet %q: empty reply", w.config.SheetTitle)
	}

	w.logger.Info("added recap sheet", "title", w.config.SheetTitle)
	return existing.SpreadsheetId, resp.Replies[0].AddSheet.Properties.SheetId, nil
}

func (w *Writer) createSpreadsheet(ctx context.Context) (string, int64, error) {
	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{
				Properties: &sheets.SheetProperties{
					Title: w.config.SheetTitle,
				},
			},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", 0, fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	// Remember it so a retry does not create a second one.
	w.config.SpreadsheetID = created.SpreadsheetId

	var sheetID int64
	if len(created.Sheets) > 0 && created.Sheets[0].Properties != nil {
		sheetID = created.Sheets[0].Properties.SheetId
	}
	return created.SpreadsheetId, sheetID, nil
}

// clearSheet clears all data from the recap tab.
func (w *Writer) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, w.sheetRange(""), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// prepareValues converts the table to the row-major form the Sheets API takes:
// a header row, then one row per visit. Empty cells become "".
func prepareValues(table *model.Table) [][]any {
	values := make([][]any, 0, len(table.Rows)+1)

	header := make([]any, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col
	}
	values = append(values, header)

	for _, row := range table.Rows {
		out := make([]any, len(row))
		for i, cell := range row {
			if v := cell.Value(); v != nil {
				out[i] = v
			} else {
				out[i] = ""
			}
		}
		values = append(values, out)
	}

	return values
}

// writeData writes the data to the spreadsheet in batches.
func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		batch := values[i:end]
		valueRange := &sheets.ValueRange{
			Values: batch,
		}

		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, w.sheetRange(fmt.Sprintf("A%d", i+1)), valueRange).
			ValueInputOption("RAW").
			Context(ctx).
			Do()

		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}

	return nil
}

// applyFormatting bolds and freezes the header row and fits the columns.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, sheetID int64, columns int) error {
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   int64(columns),
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{
							Bold: true,
						},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   int64(columns),
				},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId: sheetID,
					GridProperties: &sheets.GridProperties{
						FrozenRowCount: 1,
					},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	batchUpdate := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, batchUpdate).Context(ctx).Do()
	return err
}

// sheetRange qualifies an A1 cell reference with the recap tab's name.
// An empty cell selects the whole tab.
func (w *Writer) sheetRange(cell string) string {
	name := "'" + strings.ReplaceAll(w.config.SheetTitle, "'", "''") + "'"
	if cell == "" {
		return name
	}
	return name + "!" + cell
}

// classify marks client errors other than 429 as permanent.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
		}
		if apiErr.Code >= 400 && apiErr.Code < 500 {
			return common.Permanent(err)
		}
	}
	return err
}
