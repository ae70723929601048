package pivot

import (
	"errors"
	"time"

	"github.com/Veraticus/visit-recap/internal/common"
)

// DisplayLayout is the local-time format of the Reported on column.
// It is fixed-width, so string order matches chronological order.
const DisplayLayout = "2006-01-02 15:04"

// Layouts without a zone are read as UTC, which is how the backend stores datetimes.
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02T15:04Z07:00",
		"2006-01-02 15:04Z07:00",
	}
	naiveLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

var errNotISO8601 = errors.New("not an ISO-8601 timestamp")

// FormatTimestamp converts a backend UTC timestamp to "YYYY-MM-DD HH:MM" in loc.
// An empty value yields an empty string. Anything else that does not parse is a
// *common.ParseError.
func FormatTimestamp(value string, loc *time.Location) (string, error) {
	if value == "" {
		return "", nil
	}
	if loc == nil {
		loc = time.UTC
	}

	t, err := parseTimestamp(value)
	if err != nil {
		return "", &common.ParseError{Field: "reported_on", Value: value, Err: err}
	}

	return t.In(loc).Format(DisplayLayout), nil
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errNotISO8601
}
