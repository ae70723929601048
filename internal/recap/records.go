package recap

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/visit-recap/internal/model"
)

// Backend field names on the line and header models.
const (
	fieldReportedOn = "x_studio_pos_visit_reported_on"
	fieldReportedBy = "x_studio_pos_visit_reported_by"
	fieldVisit      = "x_studio_pos_visit_id"
	fieldAltName    = "x_studio_alternative_import_name"
	fieldStatus     = "x_studio_pos_visit_status"
	fieldProduct    = "x_studio_product"
	fieldQuantity   = "x_studio_qty"
	fieldID         = "id"
	fieldName       = "x_name"
)

var (
	lineFields   = []string{fieldReportedOn, fieldReportedBy, fieldVisit, fieldAltName, fieldStatus, fieldProduct, fieldQuantity}
	headerFields = []string{fieldID, fieldName}
)

// ref is a relational field. The backend sends [id, display_name] for a set
// reference, false for an empty one, and sometimes a bare id.
type ref struct {
	key  model.VisitKey
	name string
	pair bool
}

func (r *ref) UnmarshalJSON(b []byte) error {
	*r = ref{}
	b = bytes.TrimSpace(b)
	if isBlank(b) {
		return nil
	}

	if b[0] != '[' {
		r.key = canonical(b)
		return nil
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(b, &parts); err != nil {
		return nil
	}
	r.pair = true
	if len(parts) > 0 && !isBlank(parts[0]) {
		r.key = canonical(parts[0])
	}
	if len(parts) > 1 {
		_ = json.Unmarshal(parts[1], &r.name)
	}
	return nil
}

// label is the display name of a pair reference, or "".
func (r ref) label() string {
	if !r.pair {
		return ""
	}
	return r.name
}

// optString is a text field the backend reports as false when unset.
type optString struct {
	value string
	set   bool
}

func (s *optString) UnmarshalJSON(b []byte) error {
	*s = optString{}
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	s.value, s.set = v, true
	return nil
}

func (s optString) ptr() *string {
	if !s.set {
		return nil
	}
	return model.StringPtr(s.value)
}

// quantity accepts a JSON number or numeric string; anything else counts as zero.
type quantity struct {
	value decimal.Decimal
}

func (q *quantity) UnmarshalJSON(b []byte) error {
	q.value = decimal.Zero
	text := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if d, err := decimal.NewFromString(text); err == nil {
		q.value = d
	}
	return nil
}

type lineRecord struct {
	ReportedOn optString `json:"x_studio_pos_visit_reported_on"`
	ReportedBy ref       `json:"x_studio_pos_visit_reported_by"`
	Visit      ref       `json:"x_studio_pos_visit_id"`
	AltName    optString `json:"x_studio_alternative_import_name"`
	Status     optString `json:"x_studio_pos_visit_status"`
	Product    ref       `json:"x_studio_product"`
	Quantity   quantity  `json:"x_studio_qty"`
}

func (r lineRecord) toModel() model.VisitLine {
	return model.VisitLine{
		Visit:                 r.Visit.key,
		Product:               r.Product.label(),
		Quantity:              r.Quantity.value,
		Status:                r.Status.ptr(),
		ReportedOn:            r.ReportedOn.value,
		ReportedBy:            r.ReportedBy.label(),
		AlternativeImportName: r.AltName.value,
	}
}

type headerRecord struct {
	ID   ref       `json:"id"`
	Name optString `json:"x_name"`
}

func (r headerRecord) toModel() model.VisitHeader {
	return model.VisitHeader{ID: r.ID.key, Name: r.Name.value}
}

func isBlank(b []byte) bool {
	return len(b) == 0 || bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte("false"))
}

// canonical normalizes an id to compact JSON text. Numbers are rewritten in
// their shortest decimal form, so 1, 1.0 and 1e0 name the same visit while
// the string "1" stays distinct.
func canonical(b []byte) model.VisitKey {
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return model.VisitKey(b)
	}

	text := buf.String()
	if c := text[0]; c == '-' || (c >= '0' && c <= '9') {
		if d, err := decimal.NewFromString(text); err == nil {
			return model.VisitKey(d.String())
		}
	}
	return model.VisitKey(text)
}
