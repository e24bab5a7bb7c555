package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"embedctl/internal/api"
	"embedctl/internal/app"
	"embedctl/internal/color"
	"embedctl/internal/provision"
	"embedctl/internal/updatecheck"
	"embedctl/internal/validation"
	"embedctl/pkg/logging"
)

var (
	globalDebug  bool
	globalOutput string

	// application is set up before every command runs.
	application   *app.Application
	pendingUpdate *updatecheck.Pending
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "embed",
	Short: "Set up Embeddable from your terminal",
	Long: `embed configures an Embeddable workspace from the command line:
store your API key, connect databases, map data sources to connections
in environments, and issue security tokens for embedded dashboards.

Start with "embed setup" for a guided walkthrough, or "embed init" to
store credentials only.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. invalid arguments, failed connections)
	SilenceUsage: true,
	// Errors are printed by Execute according to the exit policy.
	SilenceErrors:     true,
	PersistentPostRun: printUpdateNotice,
}

// noUpdateCheck lists commands that must not start a background check.
var noUpdateCheck = map[string]bool{
	"version":     true,
	"self-update": true,
	"mcp-server":  true,
	"help":        true,
}

func setupApplication(cmd *cobra.Command, args []string) error {
	cfg, err := app.NewConfig(globalDebug, globalOutput, rootCmd.Version)
	if err != nil {
		return err
	}
	application, err = app.NewApplication(cfg, app.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	pendingUpdate = nil
	if noUpdateCheck[cmd.Name()] {
		return nil
	}
	if checker := application.UpdateChecker(); checker != nil {
		pendingUpdate = checker.Start(commandContext(cmd))
	}
	return nil
}

func printUpdateNotice(cmd *cobra.Command, args []string) {
	if application == nil {
		return
	}
	if n := pendingUpdate.Ready(); n != nil {
		application.Printer().Println("")
		application.Printer().Warn("%s", n)
	}
}

// commandContext never returns nil, even for commands executed without
// ExecuteContext in tests.
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// groupHelp is the RunE of commands that only group subcommands.
func groupHelp(cmd *cobra.Command, args []string) error {
	return cmd.Help()
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v // Set cobra's version field as well
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Set up version template
	rootCmd.SetVersionTemplate(`{{printf "embed version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(rootCmd.ErrOrStderr(), err))
}

// coded is implemented by errors that choose their own exit status. They
// are not printed again.
type coded interface {
	ExitCode() int
}

// exitCode prints err for the user and returns the process exit status.
// Cancellation is a clean exit.
func exitCode(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, provision.ErrCancelled) || errors.Is(err, context.Canceled) {
		fmt.Fprintln(w, color.MutedStyle.Render("Operation cancelled."))
		return 0
	}

	var c coded
	if errors.As(err, &c) {
		logging.Debug("cmd", "Exiting with status %d: %v", c.ExitCode(), err)
		return c.ExitCode()
	}

	fmt.Fprintln(w, color.ErrorStyle.Render("✗ "+userMessage(err)))
	if logging.DebugEnabled() {
		for e := err; e != nil; e = errors.Unwrap(e) {
			fmt.Fprintf(w, "  %T: %v\n", e, e)
		}
	}
	return 1
}

// userMessage phrases err for the terminal.
func userMessage(err error) string {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return "Validation failed: " + verr.Reason
	case api.IsUnauthorized(err):
		return err.Error() + "\nYour API key was rejected. Run \"embed auth login\" to update it."
	}
	return err.Error()
}

// exitError is a failure that was already reported to the user and only
// needs to set the exit status.
type exitError struct {
	code   int
	reason string
}

func (e *exitError) Error() string { return e.reason }
func (e *exitError) ExitCode() int { return e.code }

// session returns the orchestrator and a client for the stored credential.
func session() (*provision.Orchestrator, *api.Client, error) {
	orch := application.Orchestrator()
	client, _, err := orch.Client()
	if err != nil {
		return nil, nil, err
	}
	return orch, client, nil
}

func init() {
	// Assigned here rather than in the literal: setupApplication reads
	// rootCmd, which would otherwise form an initialization cycle.
	rootCmd.PersistentPreRunE = setupApplication

	rootCmd.PersistentFlags().BoolVarP(&globalDebug, "debug", "d", false, "Enable debug logging and detailed errors")
	rootCmd.PersistentFlags().StringVarP(&globalOutput, "output", "o", "table", "Output format for list commands: table, json or yaml")

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newSetupCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDatabaseCmd())
	rootCmd.AddCommand(newEnvCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newMCPServerCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
