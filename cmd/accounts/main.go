package main

import (
	"fmt"
	"log"

	"github.com/aussiebroadwan/accounts/internal/accounts/app"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("accounts: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	var port int

	serve := func(cmd *cobra.Command, _ []string) error {
		cfg := app.LoadConfig()
		if cmd.Flags().Changed("port") {
			cfg.Port = port
		}

		application, err := app.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		return application.Run()
	}

	rootCmd := &cobra.Command{
		Use:           "accounts",
		Short:         "Accounts service",
		Long:          "Runs the accounts HTTP service. Configuration is read from the environment.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          serve,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service (default)",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().IntVar(&port, "port", 8080, "Listen port (overrides PORT)")
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := app.LoadConfig()
			return app.Migrate(cfg, app.NewLogger(cfg))
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), app.BuildVersion)
			return err
		},
	})

	return rootCmd
}
