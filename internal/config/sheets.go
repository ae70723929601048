package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/visit-recap/internal/common"
	"github.com/Veraticus/visit-recap/internal/sheets"
)

// LoadSheetsConfig loads Google Sheets configuration from Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or RECAP_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. Default values
func LoadSheetsConfig() (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	config.ServiceAccountPath = ExpandPath(firstNonEmpty(viper.GetString("sheets.service_account_path"), "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"))
	config.ClientID = firstNonEmpty(viper.GetString("sheets.client_id"), "GOOGLE_SHEETS_CLIENT_ID")
	config.ClientSecret = firstNonEmpty(viper.GetString("sheets.client_secret"), "GOOGLE_SHEETS_CLIENT_SECRET")
	config.RefreshToken = firstNonEmpty(viper.GetString("sheets.refresh_token"), "GOOGLE_SHEETS_REFRESH_TOKEN")
	config.SpreadsheetID = firstNonEmpty(viper.GetString("sheets.spreadsheet_id"), "GOOGLE_SHEETS_SPREADSHEET_ID")

	if v := firstNonEmpty(viper.GetString("sheets.spreadsheet_name"), "GOOGLE_SHEETS_SPREADSHEET_NAME"); v != "" {
		config.SpreadsheetName = v
	}
	if v := viper.GetString("sheets.sheet_title"); v != "" {
		config.SheetTitle = v
	}
	if v := viper.GetString("recap.timezone"); v != "" {
		config.TimeZone = v
	}
	if viper.IsSet("sheets.enable_formatting") {
		config.EnableFormatting = viper.GetBool("sheets.enable_formatting")
	}

	// A refresh token saved by `recap auth sheets` is used when none is configured.
	if config.RefreshToken == "" && config.ServiceAccountPath == "" {
		if tokenFile := SheetsTokenFile(); tokenFile != "" {
			if token, err := sheets.LoadToken(tokenFile); err == nil {
				config.RefreshToken = token.RefreshToken
			} else if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// SheetsTokenFile returns where `recap auth sheets` stores its token.
func SheetsTokenFile() string {
	if v := viper.GetString("sheets.token_file"); v != "" {
		return ExpandPath(v)
	}
	return ExpandPath("~/.config/recap/sheets-token.json")
}

// LoadSheetsOAuthConfig returns the settings for `recap auth sheets`.
func LoadSheetsOAuthConfig() (sheets.OAuth2Config, error) {
	config := sheets.OAuth2Config{
		ClientID:     firstNonEmpty(viper.GetString("sheets.client_id"), "GOOGLE_SHEETS_CLIENT_ID"),
		ClientSecret: firstNonEmpty(viper.GetString("sheets.client_secret"), "GOOGLE_SHEETS_CLIENT_SECRET"),
		TokenFile:    SheetsTokenFile(),
	}
	if config.ClientID == "" || config.ClientSecret == "" {
		return config, fmt.Errorf("%w: sheets.client_id and sheets.client_secret", common.ErrMissingConfig)
	}
	return config, nil
}
