package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/spf13/cobra"
)

func newRegisterCmd(g *globals) *cobra.Command {
	var req accountsdk.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Example: `  # Prompt for the password
  accountsctl register --email jane@example.com --name Jane

  # Register an admin (only honored when the service allows it)
  accountsctl register --email root@example.com --password secret --admin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := passwordOrPrompt(req.Password, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			req.Password = pw

			u, err := g.client().Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printUser(cmd.OutOrStdout(), g.output, u)
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&req.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (prompted when omitted)")
	cmd.Flags().BoolVar(&req.IsAdmin, "admin", false, "Request admin rights")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newLoginCmd(g *globals) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Exchange credentials for a bearer token",
		Long:    "Log in and print the bearer token. In table mode only the token is printed so it can be captured into ACCOUNTS_TOKEN.",
		Example: `  export ACCOUNTS_TOKEN=$(accountsctl login --email jane@example.com)`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := passwordOrPrompt(password, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			resp, err := g.client().Login(cmd.Context(), email, pw)
			if err != nil {
				return err
			}

			if g.output == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
			return err
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newProfileCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the account the token belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := g.client().Profile(cmd.Context())
			if err != nil {
				return err
			}
			return printUser(cmd.OutOrStdout(), g.output, u)
		},
	}
}

func newListCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every account (admin only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := g.client().ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			if g.output == "json" {
				return printJSON(cmd.OutOrStdout(), users)
			}
			return printUserTable(cmd.OutOrStdout(), users...)
		},
	}
}

func newUpdateCmd(g *globals) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:     "update <id>",
		Short:   "Change an account's name, email or password",
		Long:    "Update an account. Only the flags given are sent; other fields keep their current values.",
		Example: `  accountsctl update 3f2c... --name "Jane Doe"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req accountsdk.UpdateRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("email") {
				req.Email = &email
			}
			if cmd.Flags().Changed("password") {
				req.Password = &password
			}
			if req.Name == nil && req.Email == nil && req.Password == nil {
				return fmt.Errorf("nothing to update: set --name, --email or --password")
			}

			u, err := g.client().UpdateUser(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return printUser(cmd.OutOrStdout(), g.output, u)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&email, "email", "", "New email")
	cmd.Flags().StringVar(&password, "password", "", "New password")

	return cmd
}

func newDeleteCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.client().DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			if g.output == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]string{"deleted": args[0]})
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return err
		},
	}
}

func printUser(w io.Writer, output string, u *accountsdk.User) error {
	if output == "json" {
		return printJSON(w, u)
	}
	return printUserTable(w, *u)
}

func printUserTable(w io.Writer, users ...accountsdk.User) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tADMIN\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Name, u.Email, strconv.FormatBool(u.IsAdmin), u.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}
