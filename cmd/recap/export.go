package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/visit-recap/internal/cli"
	"github.com/Veraticus/visit-recap/internal/common"
	"github.com/Veraticus/visit-recap/internal/config"
	"github.com/Veraticus/visit-recap/internal/service"
	"github.com/Veraticus/visit-recap/internal/sheets"
	"github.com/Veraticus/visit-recap/internal/xlsx"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the recap to a workbook or Google Sheets",
		Long: `Fetch the recap once and write it out.

By default the table goes to an .xlsx workbook with a bold, frozen header row.
With --sheets it replaces the contents of the configured Google Sheets tab.`,
		RunE: runExport,
	}

	addFetchFlags(cmd)
	cmd.Flags().StringP("output", "o", xlsx.DefaultFileName, "workbook path")
	cmd.Flags().Bool("sheets", false, "write to Google Sheets instead of a workbook")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	logger := slog.Default()

	interruptHandler := cli.NewInterruptHandler(os.Stderr)
	ctx, stop := interruptHandler.HandleInterrupts(cmd.Context(), "Export")
	defer stop()

	sess, err := newSession(cmd, logger)
	if err != nil {
		return err
	}

	writer, target, err := exportWriter(cmd, logger)
	if err != nil {
		return err
	}

	spinner := cli.StartSpinner(os.Stderr, "Fetching visits from Odoo")
	result, err := sess.service.Table(ctx, false)
	spinner.Stop()
	if err != nil {
		if interruptHandler.WasInterrupted() {
			return nil
		}
		if errors.Is(err, common.ErrUpstreamData) {
			return common.NewUserError("Odoo returned data the recap cannot read", err)
		}
		return fmt.Errorf("failed to build recap: %w", err)
	}

	if len(result.Table.Rows) == 0 {
		slog.Warn(cli.FormatWarning("No visits matched the filters; writing headers only"))
	}

	if err := writer.Write(ctx, result.Table); err != nil {
		if interruptHandler.WasInterrupted() {
			return nil
		}
		return fmt.Errorf("failed to export recap: %w", err)
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Exported %d visits × %d products to %s",
		len(result.Table.Rows), len(result.Table.ProductColumns()), target)))
	return nil
}

// exportWriter picks the destination from the --sheets and --output flags.
func exportWriter(cmd *cobra.Command, logger *slog.Logger) (service.TableWriter, string, error) {
	useSheets, _ := cmd.Flags().GetBool("sheets")
	if !useSheets {
		output, _ := cmd.Flags().GetString("output")
		w := xlsx.NewWriter(output, logger)
		return w, w.Path(), nil
	}

	sheetsConfig, err := config.LoadSheetsConfig()
	if err != nil {
		return nil, "", common.NewUserError("Google Sheets is not configured; run `recap auth sheets` or set sheets.service_account_path", err)
	}
	w, err := sheets.NewWriter(cmd.Context(), *sheetsConfig, logger)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create sheets writer: %w", err)
	}

	target := "Google Sheets"
	if sheetsConfig.SpreadsheetID != "" {
		target = fmt.Sprintf("Google Sheets (%s)", sheetsConfig.SpreadsheetID)
	}
	return w, target, nil
}
