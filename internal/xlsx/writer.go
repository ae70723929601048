// Package xlsx renders recap tables as Excel workbooks.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/visit-recap/internal/model"
)

// DefaultFileName is the name the recap is saved under when none is given.
const DefaultFileName = "pos_visit_recap.xlsx"

// SheetName is the single worksheet the recap is written to.
const SheetName = "Sheet1"

// ContentType is the MIME type of an .xlsx workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Encode renders the table as an in-memory workbook.
func Encode(table *model.Table) ([]byte, error) {
	f, err := build(table)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func build(table *model.Table) (*excelize.File, error) {
	f := excelize.NewFile()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, name := range table.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := f.SetCellStr(SheetName, cell, name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to write header %q: %w", name, err)
		}
	}
	if len(table.Columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(table.Columns), 1)
		if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to style header: %w", err)
		}
	}

	for i, row := range table.Rows {
		for col, c := range row {
			v := c.Value()
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				_ = f.Close()
				return nil, err
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	return f, nil
}

// Writer saves recap tables to a file. It implements service.TableWriter.
type Writer struct {
	logger *slog.Logger
	path   string
}

// NewWriter creates a writer for path, defaulting to DefaultFileName.
func NewWriter(path string, logger *slog.Logger) *Writer {
	if path == "" {
		path = DefaultFileName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{path: path, logger: logger}
}

// Path returns the file the writer saves to.
func (w *Writer) Path() string {
	return w.path
}

// Write encodes the table and replaces the file.
func (w *Writer) Write(_ context.Context, table *model.Table) error {
	data, err := Encode(table)
	if err != nil {
		return err
	}
	if err := os.WriteFile(w.path, data, 0o644); err != nil { // #nosec G306
		return fmt.Errorf("failed to save %s: %w", w.path, err)
	}

	w.logger.Info("saved recap workbook", "path", w.path, "rows", len(table.Rows))
	return nil
}
