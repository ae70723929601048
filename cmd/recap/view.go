package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/visit-recap/internal/common"
	"github.com/Veraticus/visit-recap/internal/tui"
	"github.com/Veraticus/visit-recap/internal/tui/themes"
	"github.com/Veraticus/visit-recap/internal/xlsx"
)

func viewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse the recap in the terminal",
		Long: `Fetch the recap and show it as a scrollable table.

Keys: r refreshes from Odoo, e exports the table on screen to a workbook,
? shows every key, q quits.`,
		RunE: runView,
	}

	addFetchFlags(cmd)
	cmd.Flags().StringP("output", "o", xlsx.DefaultFileName, "workbook written by the export key")
	cmd.Flags().String("theme", "", "color theme ("+strings.Join(themes.Names(), ", ")+")")
	cmd.Flags().Int("max-col-width", 32, "widest a column may grow")
	cmd.Flags().String("log-file", "", "write logs here while the table is on screen (default: discard)")
	_ = viper.BindPFlag("tui.theme", cmd.Flags().Lookup("theme"))

	return cmd
}

func runView(cmd *cobra.Command, _ []string) error {
	logger, closeLog, err := tuiLogger(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	sess, err := newSession(cmd, logger)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	maxColWidth, _ := cmd.Flags().GetInt("max-col-width")
	writer := xlsx.NewWriter(output, logger)

	return tui.Run(cmd.Context(), sess.service,
		tui.WithTheme(themes.GetTheme(viper.GetString("tui.theme"))),
		tui.WithExporter(writer, writer.Path()),
		tui.WithMaxColumnWidth(maxColWidth),
	)
}

// tuiLogger keeps log lines off the alternate screen.
func tuiLogger(cmd *cobra.Command) (*slog.Logger, func(), error) {
	path, _ := cmd.Flags().GetString("log-file")

	var w io.Writer = io.Discard
	closeFn := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}

	level, err := common.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	logger, err := common.NewLogger(w, level, viper.GetString("logging.format"))
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	// Retry warnings go through the default logger.
	slog.SetDefault(logger)
	return logger, closeFn, nil
}
