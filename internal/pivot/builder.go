// Package pivot reshapes visit line records into the per-visit recap table.
package pivot

import (
	"slices"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/visit-recap/internal/model"
)

// Builder turns fetched visit lines into a recap table. It keeps no state
// between calls and never mutates its inputs, so one Builder can serve
// concurrent callers.
type Builder struct {
	loc *time.Location
}

// NewBuilder creates a builder that renders timestamps in loc (UTC when nil).
func NewBuilder(loc *time.Location) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	return &Builder{loc: loc}
}

// Location returns the zone Reported on values are rendered in.
func (b *Builder) Location() *time.Location {
	return b.loc
}

// visitRow accumulates one visit. Fixed fields come from the first line seen.
type visitRow struct {
	status     *string
	quantities map[string]decimal.Decimal
	reportedOn string
	reportedBy string
	visitName  string
	altName    string
}

// Build pivots lines into one row per visit and one column per product.
// A line with an unparseable reported-on timestamp fails the whole build.
func (b *Builder) Build(lines []model.VisitLine, headers []model.VisitHeader) (*model.Table, error) {
	names := make(map[model.VisitKey]string, len(headers))
	for _, h := range headers {
		if h.ID == model.NoVisit || h.Name == "" {
			continue
		}
		names[h.ID] = h.Name
	}

	var rows []*visitRow
	byVisit := make(map[model.VisitKey]*visitRow)
	products := make(map[string]struct{})

	for _, line := range lines {
		row, seen := byVisit[line.Visit]
		if !seen {
			reportedOn, err := FormatTimestamp(line.ReportedOn, b.loc)
			if err != nil {
				return nil, err
			}
			row = &visitRow{
				reportedOn: reportedOn,
				reportedBy: line.ReportedBy,
				visitName:  names[line.Visit],
				altName:    line.AlternativeImportName,
				status:     line.Status,
				quantities: make(map[string]decimal.Decimal),
			}
			byVisit[line.Visit] = row
			rows = append(rows, row)
		}

		if line.Product == "" {
			continue
		}
		row.quantities[line.Product] = row.quantities[line.Product].Add(line.Quantity)
		products[line.Product] = struct{}{}
	}

	productColumns := make([]string, 0, len(products))
	for p := range products {
		productColumns = append(productColumns, p)
	}
	slices.Sort(productColumns)

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].reportedOn > rows[j].reportedOn
	})

	table := &model.Table{
		Columns: make([]string, 0, len(model.FixedColumns)+len(productColumns)+1),
		Rows:    make([]model.Row, 0, len(rows)),
	}
	table.Columns = append(table.Columns, model.FixedColumns...)
	table.Columns = append(table.Columns, productHeaders(productColumns)...)
	table.Columns = append(table.Columns, model.ColumnTotal)

	for _, r := range rows {
		table.Rows = append(table.Rows, r.render(productColumns))
	}

	return table, nil
}

func (r *visitRow) render(productColumns []string) model.Row {
	out := make(model.Row, 0, len(model.FixedColumns)+len(productColumns)+1)
	out = append(out,
		textOrEmpty(r.reportedOn),
		textOrEmpty(r.reportedBy),
		textOrEmpty(r.visitName),
		textOrEmpty(r.altName),
	)
	if r.status != nil {
		out = append(out, textOrEmpty(*r.status))
	} else {
		out = append(out, model.EmptyCell())
	}

	total := decimal.Zero
	for _, p := range productColumns {
		qty, ok := r.quantities[p]
		if !ok {
			out = append(out, model.EmptyCell())
			continue
		}
		total = total.Add(qty)
		out = append(out, model.NumberCell(qty))
	}

	return append(out, model.NumberCell(total))
}

// ProductSuffix is appended to a product column header whose name would
// clash with a fixed column or with another header.
const ProductSuffix = " (product)"

// productHeaders names the product columns so that every header in the
// table is unique.
func productHeaders(products []string) []string {
	taken := make(map[string]bool, len(model.FixedColumns)+len(products)+1)
	for _, c := range model.FixedColumns {
		taken[c] = true
	}
	taken[model.ColumnTotal] = true
	for _, p := range products {
		taken[p] = true
	}

	headers := make([]string, len(products))
	for i, p := range products {
		if !slices.Contains(model.FixedColumns, p) && p != model.ColumnTotal {
			headers[i] = p
			continue
		}
		h := p + ProductSuffix
		for taken[h] {
			h += ProductSuffix
		}
		taken[h] = true
		headers[i] = h
	}
	return headers
}

func textOrEmpty(s string) model.Cell {
	if s == "" {
		return model.EmptyCell()
	}
	return model.TextCell(s)
}
