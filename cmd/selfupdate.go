package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"embedctl/internal/updatecheck"
)

var githubRepoSlug = updatecheck.RepoSlug

func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update embed to the latest version",
		Long: `Checks for the latest release of embed on GitHub and
updates the current binary if a newer version is found.`,
		Args: cobra.NoArgs,
		RunE: runSelfUpdate,
	}
}

func runSelfUpdate(cmd *cobra.Command, args []string) error {
	current := rootCmd.Version
	if !updatecheck.IsRelease(current) {
		return fmt.Errorf("cannot self-update a development version")
	}

	out := rootCmd.OutOrStdout()
	if cmd != nil {
		out = cmd.OutOrStdout()
	}
	ctx := commandContext(cmd)

	fmt.Fprintf(out, "Current version: %s\n", current)
	fmt.Fprintf(out, "Checking for updates from %s...\n", githubRepoSlug)

	latest, err := updatecheck.Latest(ctx)
	if err != nil {
		return err
	}
	if latest.LessOrEqual(current) {
		fmt.Fprintf(out, "Current version (%s) is the latest.\n", current)
		return nil
	}

	fmt.Fprintf(out, "Found newer version: %s (published at %s)\n", latest.Version(), latest.PublishedAt)
	fmt.Fprintf(out, "Release notes:\n%s\n", latest.ReleaseNotes)
	fmt.Fprintf(out, "Updating to %s...\n", latest.Version())

	if err := updatecheck.Apply(ctx, latest); err != nil {
		return err
	}
	fmt.Fprintf(out, "Successfully updated to version %s\n", latest.Version())
	return nil
}
