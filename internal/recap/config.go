// Package recap fetches visit records from the backend and turns them into
// the recap table, caching the last fetch for the session.
package recap

import (
	"fmt"
	"time"

	"github.com/Veraticus/visit-recap/internal/common"
)

// Backend model names used by the recap.
const (
	DefaultLineModel   = "x_pos_visit_line_1233b"
	DefaultHeaderModel = "x_pos_visit"
	DefaultTimeZone    = "Asia/Jakarta"
	DefaultMaxRecords  = 50000
)

// Config holds the fetch-layer filters and session settings.
type Config struct {
	LineModel   string
	HeaderModel string
	TimeZone    string
	Statuses    []string
	Days        int // recency window; 0 fetches everything
	MaxRecords  int
	CacheTTL    time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LineModel:   DefaultLineModel,
		HeaderModel: DefaultHeaderModel,
		TimeZone:    DefaultTimeZone,
		Days:        30,
		MaxRecords:  DefaultMaxRecords,
		CacheTTL:    10 * time.Minute,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.LineModel == "" || c.HeaderModel == "" {
		return fmt.Errorf("%w: line and header models are required", common.ErrMissingConfig)
	}
	if c.Days < 0 {
		return fmt.Errorf("%w: days cannot be negative", common.ErrInvalidConfig)
	}
	if c.MaxRecords <= 0 {
		return fmt.Errorf("%w: max records must be positive", common.ErrInvalidConfig)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("%w: cache ttl cannot be negative", common.ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	name := c.TimeZone
	if name == "" {
		name = DefaultTimeZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: time zone %q: %v", common.ErrInvalidConfig, name, err)
	}
	return loc, nil
}
