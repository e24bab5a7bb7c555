package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"embedctl/internal/api"
	"embedctl/internal/provision"
	"embedctl/internal/ui"
	"embedctl/internal/validation"
)

func newDatabaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "database",
		Aliases: []string{"db"},
		Short:   "Manage database connections",
		RunE:    groupHelp,
	}
	cmd.AddCommand(newDatabaseConnectCmd())
	cmd.AddCommand(newDatabaseListCmd())
	cmd.AddCommand(newDatabaseTestCmd())
	cmd.AddCommand(newDatabaseUpdateCmd())
	cmd.AddCommand(newDatabaseRemoveCmd())
	return cmd
}

// connectionSource reads a connection definition given inline or as a file.
type connectionSource struct {
	json string
	file string
}

func (s *connectionSource) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.json, "json", "", "Connection definition as JSON")
	cmd.Flags().StringVarP(&s.file, "file", "f", "", "Connection definition file (.json, .jsonc, .yaml)")
	cmd.MarkFlagsMutuallyExclusive("json", "file")
}

func (s *connectionSource) given() bool {
	return s.json != "" || s.file != ""
}

func (s *connectionSource) load() (validation.ConnectionConfigInput, error) {
	if s.file != "" {
		return provision.LoadConnectionFile(s.file)
	}
	return provision.ParseConnectionJSON([]byte(s.json))
}

func newDatabaseConnectCmd() *cobra.Command {
	var (
		src      connectionSource
		skipTest bool
	)
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Create a database connection",
		Long: `Creates a database connection. The connection is tested before it is saved;
a failed test explains the likely cause and asks whether to save anyway.

Without --json or --file the connection details are asked for interactively.
Supported types: postgres, mysql, bigquery, snowflake, redshift.`,
		Example: `  embed database connect
  embed database connect --file prod-db.yaml
  embed database connect --json '{"name":"pg","type":"postgres","host":"db","port":5432,"database":"app","username":"reader","password":"..."}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, client, err := session()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)

			var in validation.ConnectionConfigInput
			if src.given() {
				if in, err = src.load(); err != nil {
					return err
				}
			} else {
				if err := application.RequireInteractive("pass --json or --file"); err != nil {
					return err
				}
				if in, err = orch.CollectConnection(ctx); err != nil {
					return err
				}
			}

			_, err = orch.CreateConnection(ctx, client, in, provision.ConnectionOptions{SkipTest: skipTest})
			return err
		},
	}
	src.register(cmd)
	cmd.Flags().BoolVar(&skipTest, "skip-test", false, "Save without testing the connection first")
	return cmd
}

func newDatabaseListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List database connections",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := session()
			if err != nil {
				return err
			}
			conns, err := client.ListConnections(commandContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to list connections: %w", err)
			}

			f := application.Config().Output
			if f == ui.FormatTable && len(conns) == 0 {
				application.Printer().Info(`No database connections found. Create one with "embed database connect".`)
				return nil
			}
			return ui.Render(application.Printer().Out(), f, conns, func() string {
				return connectionTable(conns)
			})
		},
	}
}

func connectionTable(conns []api.Connection) string {
	rows := make([][]string, len(conns))
	for i, c := range conns {
		rows[i] = []string{c.Identifier(), c.Name, c.Type, orDash(c.Host()), orDash(c.Database())}
	}
	return ui.Table([]string{"ID", "Name", "Type", "Host", "Database"}, rows) +
		fmt.Sprintf("\n%d connection(s)", len(conns))
}

func newDatabaseTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test [name]",
		Short: "Test a saved database connection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, client, err := session()
			if err != nil {
				return err
			}
			name := firstArg(args)
			if name == "" {
				if err := application.RequireInteractive("pass the connection name"); err != nil {
					return err
				}
			}

			out, err := orch.TestConnection(commandContext(cmd), client, name)
			if err != nil {
				return err
			}
			if out.Result.Success {
				return nil
			}
			application.Printer().Note(out.Guidance.Title, out.Guidance.Body())
			return &exitError{code: 1, reason: fmt.Sprintf("connection %q failed its test", out.Connection)}
		},
	}
}

func newDatabaseUpdateCmd() *cobra.Command {
	var src connectionSource
	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Replace the details of a database connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !src.given() {
				return fmt.Errorf("pass the new connection details with --json or --file")
			}
			in, err := src.load()
			if err != nil {
				return err
			}
			orch, client, err := session()
			if err != nil {
				return err
			}
			_, err = orch.UpdateConnection(commandContext(cmd), client, args[0], in)
			return err
		},
	}
	src.register(cmd)
	return cmd
}

func newDatabaseRemoveCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "remove [name]",
		Aliases: []string{"rm"},
		Short:   "Delete a database connection",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, client, err := session()
			if err != nil {
				return err
			}
			name := firstArg(args)
			if name == "" || !yes {
				if err := application.RequireInteractive("pass the connection name and --yes"); err != nil {
					return err
				}
			}
			_, err = orch.RemoveConnection(commandContext(cmd), client, name, yes)
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func firstArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
