// Package model holds the data types shared by the fetcher, the pivot builder and the exporters.
package model

import "github.com/shopspring/decimal"

// VisitKey is the normalized scalar identifier of a visit. It holds the canonical
// JSON text of the backend id (`12`, `"abc"`), so ids of different JSON types never collide.
type VisitKey string

// NoVisit groups the lines whose visit reference is absent or null.
const NoVisit VisitKey = ""

// VisitLine is one product-quantity entry of a visit report, with reference
// fields already resolved to scalars.
type VisitLine struct {
	Status                *string
	Quantity              decimal.Decimal
	Visit                 VisitKey
	Product               string // empty when the line has no product
	ReportedOn            string // ISO-8601 UTC, may be empty
	ReportedBy            string
	AlternativeImportName string
}

// VisitHeader maps a visit id to its display name.
type VisitHeader struct {
	ID   VisitKey
	Name string
}

// StringPtr returns a pointer to s, for building lines with a status.
func StringPtr(s string) *string {
	return &s
}
