package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/visit-recap/internal/config"
	"github.com/Veraticus/visit-recap/internal/odoo"
	"github.com/Veraticus/visit-recap/internal/pivot"
	"github.com/Veraticus/visit-recap/internal/recap"
)

// session is everything a fetching command needs.
type session struct {
	client  *odoo.Client
	fetcher *recap.Fetcher
	service *recap.Service
	config  *recap.Config
}

// addFetchFlags registers the filters shared by every fetching command.
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().Int("days", recap.DefaultConfig().Days, "only visits reported in the last N days (0 for all)")
	cmd.Flags().StringSlice("status", nil, "only lines with this status (repeatable)")
	cmd.Flags().String("timezone", "", "time zone for the Reported on column (default "+recap.DefaultTimeZone+")")
}

// bindFetchFlags points the recap.* keys at this command's flags. It runs
// per invocation since several commands own flags with the same key.
func bindFetchFlags(cmd *cobra.Command) error {
	bindings := map[string]string{
		"recap.days":     "days",
		"recap.statuses": "status",
		"recap.timezone": "timezone",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", flag, err)
		}
	}
	return nil
}

// newSession wires the backend client, fetcher, pivot builder and cached
// service from configuration.
func newSession(cmd *cobra.Command, logger *slog.Logger) (*session, error) {
	if err := bindFetchFlags(cmd); err != nil {
		return nil, err
	}

	odooConfig, err := config.LoadOdooConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load odoo config: %w", err)
	}
	recapConfig, err := config.LoadRecapConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load recap config: %w", err)
	}

	client, err := odoo.NewClient(*odooConfig, logger)
	if err != nil {
		return nil, err
	}

	loc, err := recapConfig.Location()
	if err != nil {
		return nil, err
	}

	fetcher := recap.NewFetcher(client, *recapConfig, logger)
	svc := recap.NewService(fetcher, pivot.NewBuilder(loc), recapConfig.CacheTTL, logger)

	logger.Debug("recap session ready",
		"days", recapConfig.Days,
		"statuses", recapConfig.Statuses,
		"timezone", loc.String(),
		"cache_ttl", recapConfig.CacheTTL)

	return &session{
		client:  client,
		fetcher: fetcher,
		service: svc,
		config:  recapConfig,
	}, nil
}
