package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"embedctl/internal/updatecheck"
)

func newVersionCmd() *cobra.Command {
	var check, update bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of embed",
		Long:  `Prints the version of embed. With --check it also looks up the latest release.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "embed version %s\n", rootCmd.Version)
			if update {
				return runSelfUpdate(cmd, args)
			}
			if !check {
				return nil
			}

			latest, err := updatecheck.LatestVersion(commandContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to check for updates: %w", err)
			}
			if updatecheck.IsRelease(rootCmd.Version) && updatecheck.IsNewer(rootCmd.Version, latest) {
				application.Printer().Warn("%s", updatecheck.Notice{Current: rootCmd.Version, Latest: latest})
				return nil
			}
			application.Printer().Success("You are running the latest version (%s)", latest)
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Check for a newer release")
	cmd.Flags().BoolVar(&update, "update", false, "Update to the latest release")
	return cmd
}
