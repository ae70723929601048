package sheets

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/visit-recap/internal/model"
)

// fakeSheetsAPI records what the writer sends to the Sheets REST API.
type fakeSheetsAPI struct {
	sheets       []*sheets.Sheet
	updates      []sheets.ValueRange
	updateRanges []string
	inputOptions []string
	clears       []string
	batchUpdates []sheets.BatchUpdateSpreadsheetRequest
	created      []sheets.Spreadsheet
	failUpdates  int
	failFormat   bool
	mu           sync.Mutex
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && path == "/v4/spreadsheets":
		var req sheets.Spreadsheet
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.created = append(f.created, req)
		req.SpreadsheetId = "created-1"
		req.SpreadsheetUrl = "https://docs.google.com/spreadsheets/d/created-1"
		req.Sheets[0].Properties.SheetId = 0
		_ = json.NewEncoder(w).Encode(req)

	case r.Method == http.MethodGet && strings.HasPrefix(path, "/v4/spreadsheets/"):
		_ = json.NewEncoder(w).Encode(sheets.Spreadsheet{
			SpreadsheetId: strings.TrimPrefix(path, "/v4/spreadsheets/"),
			Sheets:        f.sheets,
		})

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.clears = append(f.clears, rangeOf(path))
		_, _ = io.WriteString(w, `{}`)

	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		if f.failUpdates > 0 {
			f.failUpdates--
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `{"error":{"code":503,"message":"backend error"}}`)
			return
		}
		var vr sheets.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.updates = append(f.updates, vr)
		f.updateRanges = append(f.updateRanges, rangeOf(path))
		f.inputOptions = append(f.inputOptions, r.URL.Query().Get("valueInputOption"))
		_, _ = io.WriteString(w, `{}`)

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req sheets.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.batchUpdates = append(f.batchUpdates, req)

		if len(req.Requests) > 0 && req.Requests[0].AddSheet != nil {
			_, _ = io.WriteString(w, `{"replies":[{"addSheet":{"properties":{"sheetId":99,"title":"Recap"}}}]}`)
			return
		}
		if f.failFormat {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"code":400,"message":"bad format request"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"replies":[]}`)

	default:
		http.NotFound(w, r)
	}
}

func rangeOf(path string) string {
	_, after, _ := strings.Cut(path, "/values/")
	return strings.TrimSuffix(after, ":clear")
}

func newTestWriter(t *testing.T, api *fakeSheetsAPI, cfg Config) *Writer {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	return newWriter(svc, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ServiceAccountPath = "/unused.json"
	cfg.SpreadsheetID = "sheet-1"
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func recapTable() *model.Table {
	text := model.TextCell
	num := func(s string) model.Cell { return model.NumberCell(decimal.RequireFromString(s)) }
	return &model.Table{
		Columns: []string{"Reported on", "Reported by", "POS Visit", "POS Alternative Import Name", "Status", "A", "B", "Total"},
		Rows: []model.Row{
			{text("2024-01-16 21:20"), model.EmptyCell(), text("Store Beta Visit"), model.EmptyCell(), text("reported"), num("2"), model.EmptyCell(), num("2")},
			{text("2024-01-15 17:30"), text("John"), text("Store Alpha Visit"), model.EmptyCell(), text("Validated"), num("5"), num("3.5"), num("8.5")},
		},
	}
}

func TestPrepareValues(t *testing.T) {
	values := prepareValues(recapTable())

	require.Len(t, values, 3)
	assert.Equal(t, []any{"Reported on", "Reported by", "POS Visit", "POS Alternative Import Name", "Status", "A", "B", "Total"}, values[0])
	assert.Equal(t, []any{"2024-01-16 21:20", "", "Store Beta Visit", "", "reported", int64(2), "", int64(2)}, values[1])
	assert.Equal(t, []any{"2024-01-15 17:30", "John", "Store Alpha Visit", "", "Validated", int64(5), 3.5, 8.5}, values[2])
}

func TestPrepareValues_EmptyTable(t *testing.T) {
	values := prepareValues(&model.Table{Columns: append([]string{}, model.FixedColumns...)})
	require.Len(t, values, 1)
	assert.Len(t, values[0], len(model.FixedColumns))
}

func TestWriter_Write(t *testing.T) {
	api := &fakeSheetsAPI{sheets: []*sheets.Sheet{
		{Properties: &sheets.SheetProperties{SheetId: 7, Title: "Other"}},
		{Properties: &sheets.SheetProperties{SheetId: 42, Title: "Recap"}},
	}}
	w := newTestWriter(t, api, testConfig())

	require.NoError(t, w.Write(context.Background(), recapTable()))

	assert.Equal(t, []string{"'Recap'"}, api.clears)
	require.Len(t, api.updates, 1)
	assert.Equal(t, "'Recap'!A1", api.updateRanges[0])
	assert.Equal(t, []string{"RAW"}, api.inputOptions)
	assert.Len(t, api.updates[0].Values, 3)
	assert.Equal(t, "Store Alpha Visit", api.updates[0].Values[2][2])
	assert.InDelta(t, 8.5, api.updates[0].Values[2][7], 0.0001)

	require.Len(t, api.batchUpdates, 1)
	reqs := api.batchUpdates[0].Requests
	require.Len(t, reqs, 3)
	assert.Equal(t, int64(42), reqs[0].RepeatCell.Range.SheetId)
	assert.Equal(t, int64(8), reqs[0].RepeatCell.Range.EndColumnIndex)
	assert.True(t, reqs[0].RepeatCell.Cell.UserEnteredFormat.TextFormat.Bold)
	assert.Equal(t, int64(1), reqs[2].UpdateSheetProperties.Properties.GridProperties.FrozenRowCount)
}

func TestWriter_AddsMissingSheet(t *testing.T) {
	api := &fakeSheetsAPI{sheets: []*sheets.Sheet{
		{Properties: &sheets.SheetProperties{SheetId: 0, Title: "Sheet1"}},
	}}
	w := newTestWriter(t, api, testConfig())

	require.NoError(t, w.Write(context.Background(), recapTable()))

	require.Len(t, api.batchUpdates, 2)
	assert.Equal(t, "Recap", api.batchUpdates[0].Requests[0].AddSheet.Properties.Title)
	assert.Equal(t, int64(99), api.batchUpdates[1].Requests[0].RepeatCell.Range.SheetId)
}

func TestWriter_CreatesSpreadsheet(t *testing.T) {
	api := &fakeSheetsAPI{}
	cfg := testConfig()
	cfg.SpreadsheetID = ""
	w := newTestWriter(t, api, cfg)

	require.NoError(t, w.Write(context.Background(), recapTable()))

	require.Len(t, api.created, 1)
	assert.Equal(t, DefaultSpreadsheetName, api.created[0].Properties.Title)
	assert.Equal(t, "Asia/Jakarta", api.created[0].Properties.TimeZone)
	assert.Equal(t, "Recap", api.created[0].Sheets[0].Properties.Title)
	assert.Len(t, api.updates, 1)
}

func TestWriter_BatchesRows(t *testing.T) {
	api := &fakeSheetsAPI{sheets: []*sheets.Sheet{{Properties: &sheets.SheetProperties{Title: "Recap"}}}}
	cfg := testConfig()
	cfg.BatchSize = 2
	w := newTestWriter(t, api, cfg)

	require.NoError(t, w.Write(context.Background(), recapTable()))

	assert.Equal(t, []string{"'Recap'!A1", "'Recap'!A3"}, api.updateRanges)
	assert.Len(t, api.updates[0].Values, 2)
	assert.Len(t, api.updates[1].Values, 1)
}

func TestWriter_RetriesTransientWriteFailure(t *testing.T) {
	api := &fakeSheetsAPI{
		sheets:      []*sheets.Sheet{{Properties: &sheets.SheetProperties{Title: "Recap"}}},
		failUpdates: 1,
	}
	w := newTestWriter(t, api, testConfig())

	require.NoError(t, w.Write(context.Background(), recapTable()))
	assert.Len(t, api.updates, 1)
}

func TestWriter_WriteFailsAfterRetries(t *testing.T) {
	api := &fakeSheetsAPI{
		sheets:      []*sheets.Sheet{{Properties: &sheets.SheetProperties{Title: "Recap"}}},
		failUpdates: 10,
	}
	w := newTestWriter(t, api, testConfig())

	err := w.Write(context.Background(), recapTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write data")
	assert.Equal(t, 7, api.failUpdates)
}

func TestWriter_FormattingFailureIsNotFatal(t *testing.T) {
	api := &fakeSheetsAPI{
		sheets:     []*sheets.Sheet{{Properties: &sheets.SheetProperties{Title: "Recap"}}},
		failFormat: true,
	}
	w := newTestWriter(t, api, testConfig())

	require.NoError(t, w.Write(context.Background(), recapTable()))
	assert.Len(t, api.updates, 1)
	// 400 is not retried.
	assert.Len(t, api.batchUpdates, 1)
}

func TestWriter_FormattingDisabled(t *testing.T) {
	api := &fakeSheetsAPI{sheets: []*sheets.Sheet{{Properties: &sheets.SheetProperties{Title: "Recap"}}}}
	cfg := testConfig()
	cfg.EnableFormatting = false
	w := newTestWriter(t, api, cfg)

	require.NoError(t, w.Write(context.Background(), recapTable()))
	assert.Empty(t, api.batchUpdates)
}

func TestSheetRange_QuotesTitle(t *testing.T) {
	w := &Writer{config: Config{SheetTitle: "Bob's Recap"}}
	assert.Equal(t, "'Bob''s Recap'!A1", w.sheetRange("A1"))
	assert.Equal(t, "'Bob''s Recap'", w.sheetRange(""))
}
