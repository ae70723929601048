package model

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Fixed recap column names, in display order.
const (
	ColumnReportedOn            = "Reported on"
	ColumnReportedBy            = "Reported by"
	ColumnVisitName             = "POS Visit"
	ColumnAlternativeImportName = "POS Alternative Import Name"
	ColumnStatus                = "Status"
	ColumnTotal                 = "Total"
)

// FixedColumns lists the columns every recap starts with.
var FixedColumns = []string{
	ColumnReportedOn,
	ColumnReportedBy,
	ColumnVisitName,
	ColumnAlternativeImportName,
	ColumnStatus,
}

// CellKind tells what a Cell holds.
type CellKind int

// Cell kinds.
const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// Cell is one value of the recap table.
type Cell struct {
	Number decimal.Decimal
	Text   string
	Kind   CellKind
}

// EmptyCell returns a blank cell.
func EmptyCell() Cell {
	return Cell{Kind: CellEmpty}
}

// TextCell returns a text cell.
func TextCell(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

// NumberCell returns a numeric cell.
func NumberCell(d decimal.Decimal) Cell {
	return Cell{Kind: CellNumber, Number: d}
}

// IsEmpty reports whether the cell is blank.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// IsNumber reports whether the cell holds a number.
func (c Cell) IsNumber() bool {
	return c.Kind == CellNumber
}

// String renders the cell for display. Numbers use their shortest exact form.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return c.Number.String()
	default:
		return ""
	}
}

// Value returns the cell as a plain Go value: nil, string, int64 or float64.
func (c Cell) Value() any {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		if c.Number.IsInteger() {
			return c.Number.IntPart()
		}
		return c.Number.InexactFloat64()
	default:
		return nil
	}
}

// Row is one recap row, aligned with Table.Columns.
type Row []Cell

// Table is the wide recap: one row per visit, one column per product.
type Table struct {
	Columns []string
	Rows    []Row
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	return slices.Index(t.Columns, name)
}

// Cell returns the cell at row i in the named column. Unknown columns read as empty.
func (t *Table) Cell(i int, column string) Cell {
	idx := t.ColumnIndex(column)
	if idx < 0 || i < 0 || i >= len(t.Rows) || idx >= len(t.Rows[i]) {
		return EmptyCell()
	}
	return t.Rows[i][idx]
}

// ProductColumns returns the columns between the fixed ones and Total.
func (t *Table) ProductColumns() []string {
	if len(t.Columns) <= len(FixedColumns) {
		return nil
	}
	end := len(t.Columns)
	if t.Columns[end-1] == ColumnTotal {
		end--
	}
	return t.Columns[len(FixedColumns):end]
}
