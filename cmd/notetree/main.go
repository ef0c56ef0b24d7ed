package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ammiranda/notetree/config"
	"github.com/ammiranda/notetree/internal/app"
	"github.com/ammiranda/notetree/tree"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	application *app.App
	configFile  string
	dbPath      string
	logLevel    string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "notetree",
		Short:         "Manage campaign notes from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (yaml, toml or json)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default ~/.notetree/notetree.db)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		provider, err := config.NewViperProvider(configFile)
		if err != nil {
			return err
		}
		if dbPath != "" {
			provider.Set("SQLITE_PATH", dbPath)
		}

		application, err = app.New(cmd.Context(), provider, app.NewLogger(logLevel))
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
		return nil
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if application == nil {
			return nil
		}
		return application.Close(cmd.Context())
	}

	rootCmd.AddCommand(NewCampaignCmd(&application))
	rootCmd.AddCommand(NewNotesCmd(&application))
	return rootCmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		var warning *tree.Warning
		if errors.As(err, &warning) {
			fmt.Fprintln(os.Stderr, color.New(color.FgYellow).Sprint("warning: ")+warning.Message)
		} else {
			fmt.Fprintln(os.Stderr, color.New(color.FgRed).Sprint("error: ")+err.Error())
		}
		os.Exit(1)
	}
}
