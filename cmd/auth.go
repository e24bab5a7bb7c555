package cmd

import (
	"github.com/spf13/cobra"

	"embedctl/internal/color"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored API key",
		RunE:  groupHelp,
	}
	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthStatusCmd())
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var creds credentialFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with an API key",
		Long: `Validates an API key against the selected region and stores it, replacing
any stored credential. The stored default environment is cleared.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := creds.credentials()
			if err != nil {
				return err
			}
			if !creds.complete() {
				if err := application.RequireInteractive("pass --api-key and --region"); err != nil {
					return err
				}
			}
			cfg, err := application.Orchestrator().Authenticate(commandContext(cmd), c)
			if err != nil {
				return err
			}
			application.Printer().Success("Logged in to %s", cfg.Region.Display())
			return nil
		},
	}
	creds.register(cmd)
	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := application.Orchestrator().Logout(commandContext(cmd), yes)
			if err != nil {
				return err
			}
			if !removed {
				application.Printer().Info("Not logged in")
				return nil
			}
			application.Printer().Success("Logged out successfully")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored credential and check it against the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := application.Printer()
			task := p.Start("Checking authentication...")
			st, err := application.Orchestrator().Status(commandContext(cmd))
			if err != nil {
				task.Fail("Not authenticated")
				return err
			}
			if st.Reachable {
				task.Done("Authenticated")
			} else {
				task.Fail("API key was rejected or the API is unreachable")
			}

			p.Println("  Region:              " + st.Config.Region.Display())
			p.Println("  API key:             " + st.Config.MaskedAPIKey())
			if st.Config.DefaultEnvironment != "" {
				p.Println("  Default environment: " + st.Config.DefaultEnvironment)
			} else {
				p.Println("  Default environment: " + color.MutedStyle.Render("not set"))
			}

			if !st.Reachable {
				return &exitError{code: 1, reason: "API key validation failed"}
			}
			return nil
		},
	}
}
