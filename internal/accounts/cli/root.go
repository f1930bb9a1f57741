// Package cli implements accountsctl, a command-line client for the accounts service.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/spf13/cobra"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			errObj := map[string]any{"error": err.Error()}
			if apiErr, ok := asAPIError(err); ok {
				errObj["http_status"] = apiErr.StatusCode
				errObj["code"] = apiErr.Code
			}
			_ = printJSON(os.Stdout, errObj)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

type globals struct {
	host   string
	token  string
	output string
}

func (g *globals) client() *accountsdk.Client {
	return accountsdk.NewClient(g.host).WithToken(g.token)
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:           "accountsctl",
		Short:         "Accounts service CLI",
		Long:          "Command-line interface for registering, authenticating and managing accounts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Apply precedence: flag > env > default
			if !cmd.Flags().Changed("host") {
				if v := os.Getenv("ACCOUNTS_HOST"); v != "" {
					g.host = v
				}
			}
			if !cmd.Flags().Changed("token") {
				if v := os.Getenv("ACCOUNTS_TOKEN"); v != "" {
					g.token = v
				}
			}
			return validateOutputFormat(g.output)
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.host, "host", "http://localhost:8080", "Accounts service URL")
	rootCmd.PersistentFlags().StringVar(&g.token, "token", "", "Bearer token for authenticated commands")
	rootCmd.PersistentFlags().StringVarP(&g.output, "output", "o", "table", "Output format (table, json)")

	rootCmd.AddCommand(newRegisterCmd(g))
	rootCmd.AddCommand(newLoginCmd(g))
	rootCmd.AddCommand(newProfileCmd(g))
	rootCmd.AddCommand(newListCmd(g))
	rootCmd.AddCommand(newUpdateCmd(g))
	rootCmd.AddCommand(newDeleteCmd(g))

	return rootCmd
}

func validateOutputFormat(output string) error {
	if output != "" && output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", output)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
