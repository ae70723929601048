package config

import (
	"github.com/spf13/viper"

	"github.com/Veraticus/visit-recap/internal/odoo"
)

// LoadOdooConfig loads the backend connection settings. Viper keys (config
// file or RECAP_ env vars) win over the plain ODOO_* variables.
func LoadOdooConfig() (*odoo.Config, error) {
	config := odoo.DefaultConfig()

	config.URL = firstNonEmpty(viper.GetString("odoo.url"), "ODOO_URL")
	config.DB = firstNonEmpty(viper.GetString("odoo.db"), "ODOO_DB")
	config.Username = firstNonEmpty(viper.GetString("odoo.username"), "ODOO_USERNAME")
	config.APIKey = firstNonEmpty(viper.GetString("odoo.api_key"), "ODOO_API_KEY")

	if viper.IsSet("odoo.timeout") {
		config.Timeout = viper.GetDuration("odoo.timeout")
	}
	if viper.IsSet("odoo.retry_attempts") {
		config.Retry.MaxAttempts = viper.GetInt("odoo.retry_attempts")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
