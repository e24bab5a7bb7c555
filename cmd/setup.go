package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"embedctl/internal/provision"
	"embedctl/internal/ui"
)

func newSetupCmd() *cobra.Command {
	var opts provision.SetupOptions
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Guided setup: authenticate, connect a database, create an environment",
		Long: `Walks through everything needed to embed a dashboard:

  1. Authentication      store and validate your API key
  2. Database connection reuse a connection or create and test a new one
  3. Environment         map data sources to the connection
  4. Security token      optionally generate a token right away

Each step is saved as soon as it completes, so cancelling part way keeps
what was already configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := application.RequireInteractive(`run "embed init", "embed database connect --file" and "embed env create" instead`); err != nil {
				return err
			}
			p := application.Printer()
			p.Heading("🚀 Welcome to Embeddable setup")

			summary, err := application.Orchestrator().Setup(commandContext(cmd), opts)
			if err != nil {
				if errors.Is(err, provision.ErrCancelled) && summary != nil && summary.Connection != "" {
					p.Muted("Steps completed before cancelling were saved.")
				}
				return err
			}
			if summary.Token != nil {
				printToken(p, summary.Token)
			}
			printSetupSummary(p, summary)
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.SkipToken, "skip-token", false, "Skip the security token step")
	cmd.Flags().BoolVar(&opts.SkipTest, "skip-test", false, "Do not test a new connection before saving it")
	return cmd
}

func printSetupSummary(p *ui.Printer, s *provision.SetupSummary) {
	p.Println("")
	p.Heading("✅ Setup complete")
	p.Println("Here's what we configured:")
	p.Println("  • API Region: " + s.Region.Display())
	p.Println(fmt.Sprintf("  • Database Connections: %d", s.Connections))
	p.Println(fmt.Sprintf("  • Environments: %d", s.Environments))
	if s.DefaultSet {
		p.Println("  • Default Environment: Set " + ui.IconSuccess)
	}
	p.Println("")
	p.Heading("📚 Next steps")
	p.Println("  1. List your embeddables: embed list")
	p.Println("  2. Generate tokens:       embed token")
	p.Println("  3. View all commands:     embed --help")
	p.Println("  4. Read the docs:         https://docs.embeddable.com")
}
