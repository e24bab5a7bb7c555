package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"embedctl/internal/api"
	"embedctl/internal/provision"
	"embedctl/internal/ui"
)

func newEnvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "env",
		Aliases: []string{"environment"},
		Short:   "Manage environments",
		Long: `Environments map the data source names used in your Embeddable models to
database connections, so the same dashboards can run against development,
staging and production data.`,
		RunE: groupHelp,
	}
	cmd.AddCommand(newEnvCreateCmd())
	cmd.AddCommand(newEnvListCmd())
	cmd.AddCommand(newEnvSetDefaultCmd())
	cmd.AddCommand(newEnvRemoveCmd())
	return cmd
}

func newEnvCreateCmd() *cobra.Command {
	var (
		name       string
		mappings   map[string]string
		connection string
		makeDef    bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an environment",
		Example: `  embed env create
  embed env create --name production --map main=pg-prod --map events=bq --default`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, client, err := session()
			if err != nil {
				return err
			}
			if name == "" || len(mappings) == 0 {
				if err := application.RequireInteractive("pass --name and --map"); err != nil {
					return err
				}
			}

			req := provision.EnvironmentRequest{
				Name:       strings.TrimSpace(name),
				Mappings:   mappings,
				Connection: connection,
				Default:    provision.AskDefault,
			}
			switch {
			case makeDef:
				req.Default = provision.MakeDefault
			case !application.Interactive():
				req.Default = provision.KeepDefault
			}

			res, err := orch.CreateEnvironment(commandContext(cmd), client, req)
			if err != nil {
				return err
			}
			application.Printer().Println("")
			application.Printer().Println(environmentTable([]api.Environment{*res.Environment}, defaultEnvironment()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Environment name (letters, digits, - and _)")
	cmd.Flags().StringToStringVar(&mappings, "map", nil, "Data source mapping as datasource=connection (repeatable)")
	cmd.Flags().StringVar(&connection, "connection", "", "Use this connection for every interactively added data source")
	cmd.Flags().BoolVar(&makeDef, "default", false, "Make the new environment the default")
	return cmd
}

func defaultEnvironment() string {
	if cfg, ok := application.Store().Get(); ok {
		return cfg.DefaultEnvironment
	}
	return ""
}

// environmentRow is the printable form of an environment.
type environmentRow struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	DataSources map[string]string `json:"datasources" yaml:"datasources"`
	Default     bool              `json:"default" yaml:"default"`
}

func environmentRows(envs []api.Environment, def string) []environmentRow {
	rows := make([]environmentRow, len(envs))
	for i, env := range envs {
		ds := env.Mappings
		if ds == nil {
			ds = map[string]string{}
		}
		rows[i] = environmentRow{
			ID:          env.Identifier(),
			Name:        env.Name,
			DataSources: ds,
			Default:     def != "" && env.Identifier() == def,
		}
	}
	return rows
}

func environmentTable(envs []api.Environment, def string) string {
	rows := make([][]string, len(envs))
	for i, env := range envs {
		pairs := make([]string, 0, len(env.Mappings))
		for _, ds := range env.DataSources() {
			pairs = append(pairs, ds+" → "+env.Mappings[ds])
		}
		mark := ""
		if def != "" && env.Identifier() == def {
			mark = ui.IconSuccess
		}
		rows[i] = []string{env.Identifier(), env.Name, orDash(strings.Join(pairs, ", ")), mark}
	}
	return ui.Table([]string{"ID", "Name", "Data Sources", "Default"}, rows)
}

func newEnvListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List environments",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := session()
			if err != nil {
				return err
			}
			envs, err := client.ListEnvironments(commandContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to list environments: %w", err)
			}

			def := defaultEnvironment()
			f := application.Config().Output
			if f == ui.FormatTable && len(envs) == 0 {
				application.Printer().Info(`No environments found. Create one with "embed env create".`)
				return nil
			}
			return ui.Render(application.Printer().Out(), f, environmentRows(envs, def), func() string {
				return environmentTable(envs, def) + fmt.Sprintf("\n%d environment(s)", len(envs))
			})
		},
	}
}

func newEnvSetDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-default [id]",
		Short: "Choose the environment used for tokens by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, client, err := session()
			if err != nil {
				return err
			}
			id := firstArg(args)
			if id == "" {
				if err := application.RequireInteractive("pass the environment id"); err != nil {
					return err
				}
			}
			id, err = orch.SetDefaultEnvironment(commandContext(cmd), client, id)
			if err != nil {
				return err
			}
			application.Printer().Success("Default environment set to %q", id)
			return nil
		},
	}
}

func newEnvRemoveCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "remove [id]",
		Aliases: []string{"rm"},
		Short:   "Delete an environment",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, client, err := session()
			if err != nil {
				return err
			}
			id := firstArg(args)
			if id == "" || !yes {
				if err := application.RequireInteractive("pass the environment id and --yes"); err != nil {
					return err
				}
			}
			_, err = orch.RemoveEnvironment(commandContext(cmd), client, id, yes)
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
