package cmd

import (
	"github.com/spf13/cobra"

	"embedctl/internal/config"
	"embedctl/internal/provision"
)

type credentialFlags struct {
	apiKey string
	region string
}

func (f *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "Embeddable API key (asked for when omitted)")
	cmd.Flags().StringVar(&f.region, "region", "", "Region: US, EU or Dev (asked for when omitted)")
}

func (f *credentialFlags) credentials() (provision.Credentials, error) {
	creds := provision.Credentials{APIKey: f.apiKey}
	if f.region != "" {
		r, err := config.ParseRegion(f.region)
		if err != nil {
			return creds, err
		}
		creds.Region = r
	}
	return creds, nil
}

// complete reports whether no question is needed for the credential itself.
func (f *credentialFlags) complete() bool {
	return f.apiKey != "" && f.region != ""
}

func newInitCmd() *cobra.Command {
	var (
		creds credentialFlags
		force bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Store your API key and region",
		Long: `Validates your Embeddable API key against the selected region and stores it
in the local configuration file. An existing configuration is only replaced
after confirmation, or with --force.`,
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

			p := application.Printer()
			p.Heading("🚀 Embeddable CLI initialization")
			cfg, err := application.Orchestrator().Init(commandContext(cmd), c, force)
			if err != nil {
				return err
			}

			p.Success("Configuration saved to %s", application.Store().Path())
			p.Info("Region: %s", cfg.Region.Display())
			p.Println("")
			p.Note("Next steps", "• embed database connect   Connect a database\n"+
				"• embed env create         Map data sources to connections\n"+
				"• embed token              Generate a security token\n"+
				"• embed setup              Run the guided walkthrough")
			return nil
		},
	}
	creds.register(cmd)
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration without asking")
	return cmd
}
