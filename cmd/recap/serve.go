package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/visit-recap/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the recap over HTTP",
		Long: `Serve the recap as JSON at /api/recap and as a workbook download at
/recap.xlsx. Add ?refresh=1 to either to bypass the cache.`,
		RunE: runServe,
	}

	addFetchFlags(cmd)
	cmd.Flags().String("addr", server.DefaultAddr, "listen address")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := slog.Default()

	sess, err := newSession(cmd, logger)
	if err != nil {
		return err
	}

	cfg := server.DefaultConfig()
	if addr := viper.GetString("server.addr"); addr != "" {
		cfg.Addr = addr
	}

	srv := server.New(sess.service, logger)
	return server.ListenAndServe(cmd.Context(), cfg, srv.Router(), logger)
}
