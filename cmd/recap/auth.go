package main

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Veraticus/visit-recap/internal/cli"
	"github.com/Veraticus/visit-recap/internal/config"
	"github.com/Veraticus/visit-recap/internal/sheets"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}

	cmd.AddCommand(authSheetsCmd())

	return cmd
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authorize Google Sheets export",
		Long: `Run the Google OAuth2 consent flow and save the token.

This needs sheets.client_id and sheets.client_secret (or the
GOOGLE_SHEETS_CLIENT_ID and GOOGLE_SHEETS_CLIENT_SECRET variables). The token
is saved to sheets.token_file and used by "recap export --sheets".`,
		RunE: runAuthSheets,
	}

	cmd.Flags().String("listen", "localhost:8085", "callback listener address")
	cmd.Flags().Bool("no-browser", false, "print the URL instead of opening a browser")

	return cmd
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	listen, _ := cmd.Flags().GetString("listen")
	noBrowser, _ := cmd.Flags().GetBool("no-browser")

	oauthConfig, err := config.LoadSheetsOAuthConfig()
	if err != nil {
		return err
	}
	oauthConfig.ListenAddr = listen

	var open func(string) error
	if !noBrowser {
		open = openBrowser
	}

	token, err := sheets.AuthenticateOAuth2Interactive(cmd.Context(), oauthConfig, open)
	if err != nil {
		return fmt.Errorf("google sheets authentication failed: %w", err)
	}
	if token.RefreshToken == "" {
		slog.Warn(cli.FormatWarning("Google did not return a refresh token; revoke the app's access and run this again"))
		return nil
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Google Sheets authorized; token saved to %s", oauthConfig.TokenFile)))
	return nil
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("xdg-open", url).Start() //nolint:gosec,forbidigo
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start() //nolint:gosec,forbidigo
	case "darwin":
		return exec.Command("open", url).Start() //nolint:gosec,forbidigo
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
}
