package config

import (
	"github.com/spf13/viper"

	"github.com/Veraticus/visit-recap/internal/recap"
)

// LoadRecapConfig loads the fetch filters and session settings.
func LoadRecapConfig() (*recap.Config, error) {
	config := recap.DefaultConfig()

	if v := viper.GetString("recap.line_model"); v != "" {
		config.LineModel = v
	}
	if v := viper.GetString("recap.header_model"); v != "" {
		config.HeaderModel = v
	}
	if v := viper.GetString("recap.timezone"); v != "" {
		config.TimeZone = v
	}
	if viper.IsSet("recap.days") {
		config.Days = viper.GetInt("recap.days")
	}
	if v := viper.GetStringSlice("recap.statuses"); len(v) > 0 {
		config.Statuses = v
	}
	if viper.IsSet("recap.max_records") {
		config.MaxRecords = viper.GetInt("recap.max_records")
	}
	if viper.IsSet("recap.cache_ttl") {
		config.CacheTTL = viper.GetDuration("recap.cache_ttl")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
