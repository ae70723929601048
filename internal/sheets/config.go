// Package sheets exports recap tables to Google Sheets.
package sheets

import (
	"fmt"
	"time"

	"github.com/Veraticus/visit-recap/internal/common"
)

// Default spreadsheet and tab names.
const (
	DefaultSpreadsheetName = "POS Visit Recap"
	DefaultSheetTitle      = "Recap"
)

// AuthMethod is how the writer obtains Google credentials.
type AuthMethod int

// Supported auth methods.
const (
	AuthNone AuthMethod = iota
	AuthOAuth2
	AuthServiceAccount
)

// Config describes the export target and credentials. SpreadsheetID names an
// existing spreadsheet; when empty a new one called SpreadsheetName is created.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	SheetTitle         string
	TimeZone           string // spreadsheet zone for newly created files
	BatchSize          int    // rows per values.update call
	RetryAttempts      int
	RetryDelay         time.Duration
	EnableFormatting   bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:  DefaultSpreadsheetName,
		SheetTitle:       DefaultSheetTitle,
		TimeZone:         "Asia/Jakarta",
		BatchSize:        1000,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
		EnableFormatting: true,
	}
}

// AuthMethod reports which credentials are configured. OAuth2 needs the
// client id, the secret and a refresh token together.
func (c *Config) AuthMethod() AuthMethod {
	oauth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	switch {
	case oauth && c.ServiceAccountPath != "":
		return AuthNone
	case oauth:
		return AuthOAuth2
	case c.ServiceAccountPath != "":
		return AuthServiceAccount
	default:
		return AuthNone
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	oauth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	switch {
	case oauth && c.ServiceAccountPath != "":
		return fmt.Errorf("%w: multiple authentication methods configured; use either OAuth2 or a service account", common.ErrInvalidConfig)
	case c.AuthMethod() == AuthNone:
		return fmt.Errorf("%w: no authentication method configured", common.ErrMissingConfig)
	case c.SheetTitle == "":
		return fmt.Errorf("%w: sheet title is required", common.ErrMissingConfig)
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch size must be positive", common.ErrInvalidConfig)
	case c.RetryAttempts < 0:
		return fmt.Errorf("%w: retry attempts cannot be negative", common.ErrInvalidConfig)
	case c.RetryDelay < 0:
		return fmt.Errorf("%w: retry delay cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}
