package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/visit-recap/internal/cli"
	"github.com/Veraticus/visit-recap/internal/common"
	"github.com/Veraticus/visit-recap/internal/recap"
)

func pingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check the Odoo connection",
		Long:  `Log in to Odoo and count the visit lines and headers the current filters select.`,
		RunE:  runPing,
	}

	addFetchFlags(cmd)

	return cmd
}

func runPing(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	sess, err := newSession(cmd, logger)
	if err != nil {
		return err
	}

	uid, err := sess.client.Login(ctx)
	if err != nil {
		return common.NewUserError("Could not log in to Odoo; check odoo.url, odoo.db, odoo.username and odoo.api_key", err)
	}

	start := time.Now()
	snap, err := recap.Fetch(ctx, sess.fetcher, start)
	if err != nil {
		return fmt.Errorf("failed to fetch visits: %w", err)
	}

	slog.Info(cli.RenderBox("Odoo connection OK", cli.FormatFields(
		cli.Field{Label: "User id", Value: uid},
		cli.Field{Label: "Visit lines", Value: len(snap.Lines)},
		cli.Field{Label: "Visit headers", Value: len(snap.Headers)},
		cli.Field{Label: "Round trip", Value: time.Since(start).Round(time.Millisecond)},
	)))
	return nil
}
