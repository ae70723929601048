// Package testutil provides fixture builders for recap tests.
//
// Example:
//
//	lines := []model.VisitLine{
//		testutil.Line(1).Product("A").Qty(5).ReportedOn("2024-01-15T10:30:00Z").Build(),
//		testutil.Line(1).Product("B").Qty(3).Build(),
//	}
package testutil

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/visit-recap/internal/model"
)

// Jakarta is the default recap zone (UTC+7, no DST).
const Jakarta = "Asia/Jakarta"

// LineBuilder builds a model.VisitLine fluently.
type LineBuilder struct {
	line model.VisitLine
}

// Line starts a line for the visit with the given numeric id.
func Line(visitID int) *LineBuilder {
	return &LineBuilder{line: model.VisitLine{Visit: VisitKey(visitID)}}
}

// OrphanLine starts a line that references no visit.
func OrphanLine() *LineBuilder {
	return &LineBuilder{line: model.VisitLine{Visit: model.NoVisit}}
}

// Product sets the product name.
func (b *LineBuilder) Product(name string) *LineBuilder {
	b.line.Product = name
	return b
}

// Qty sets an integer quantity.
func (b *LineBuilder) Qty(n int64) *LineBuilder {
	b.line.Quantity = decimal.NewFromInt(n)
	return b
}

// QtyString sets a quantity from its decimal text, e.g. "2.5".
func (b *LineBuilder) QtyString(s string) *LineBuilder {
	b.line.Quantity = decimal.RequireFromString(s)
	return b
}

// ReportedOn sets the raw backend timestamp.
func (b *LineBuilder) ReportedOn(ts string) *LineBuilder {
	b.line.ReportedOn = ts
	return b
}

// ReportedBy sets the reporting user's name.
func (b *LineBuilder) ReportedBy(name string) *LineBuilder {
	b.line.ReportedBy = name
	return b
}

// Status sets the visit status label.
func (b *LineBuilder) Status(s string) *LineBuilder {
	b.line.Status = model.StringPtr(s)
	return b
}

// AltName sets the alternative import name.
func (b *LineBuilder) AltName(s string) *LineBuilder {
	b.line.AlternativeImportName = s
	return b
}

// Build returns the line.
func (b *LineBuilder) Build() model.VisitLine {
	return b.line
}

// VisitKey returns the key a numeric backend id normalizes to.
func VisitKey(id int) model.VisitKey {
	return model.VisitKey(strconv.Itoa(id))
}

// Header returns a visit header for a numeric id.
func Header(id int, name string) model.VisitHeader {
	return model.VisitHeader{ID: VisitKey(id), Name: name}
}

// StoreScenario returns the two-visit fixture used across recap tests:
// visit 1 has A=5 and B=3, visit 2 has A=2 and was reported a day later.
func StoreScenario() ([]model.VisitLine, []model.VisitHeader) {
	lines := []model.VisitLine{
		Line(1).Product("A").Qty(5).ReportedOn("2024-01-15T10:30:00Z").Status("Validated").ReportedBy("John").Build(),
		Line(1).Product("B").Qty(3).ReportedOn("2024-01-15T10:30:00Z").Build(),
		Line(2).Product("A").Qty(2).ReportedOn("2024-01-16T14:20:00Z").Status("reported").Build(),
	}
	headers := []model.VisitHeader{
		Header(1, "Store Alpha Visit"),
		Header(2, "Store Beta Visit"),
	}
	return lines, headers
}
