package app

import (
	"fmt"
	"io"
	"os"

	"embedctl/internal/api"
	"embedctl/internal/color"
	"embedctl/internal/config"
	"embedctl/internal/prompt"
	"embedctl/internal/provision"
	"embedctl/internal/ui"
	"embedctl/internal/updatecheck"
	"embedctl/pkg/logging"
)

// Application wires settings, the config store and the terminal together
// for one CLI invocation.
type Application struct {
	config   *Config
	settings config.Settings
	store    *config.Store
	printer  *ui.Printer
	prompter provision.Prompter
}

// Option adjusts how the Application talks to the user.
type Option func(*Application)

// WithOutput sends printed output to out and errors to errOut.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *Application) {
		a.printer = ui.NewPrinter(out, errOut)
	}
}

// WithPrompter replaces the terminal prompter. A nil prompter makes every
// question fail with provision.ErrNotInteractive.
func WithPrompter(p provision.Prompter) Option {
	return func(a *Application) {
		a.prompter = p
	}
}

// NewApplication reads environment settings, configures logging and
// colors, and opens the config store.
func NewApplication(cfg *Config, opts ...Option) (*Application, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}

	// Configure logging based on debug flag
	appLogLevel := logging.LevelWarn
	if cfg.Debug || settings.Debug {
		cfg.Debug = true
		appLogLevel = logging.LevelDebug
	}
	logging.InitForCLI(appLogLevel, os.Stderr)
	color.FromEnv()

	a := &Application{
		config:   cfg,
		settings: settings,
		store:    config.NewStore(settings.StorePath()),
		printer:  ui.Stdio(),
	}
	if prompt.Interactive() {
		a.prompter = prompt.Stdio()
	}
	for _, opt := range opts {
		opt(a)
	}

	logging.Debug("Bootstrap", "Using configuration at %s", a.store.Path())
	return a, nil
}

func (a *Application) Config() *Config              { return a.config }
func (a *Application) Settings() config.Settings    { return a.settings }
func (a *Application) Store() *config.Store         { return a.store }
func (a *Application) Printer() *ui.Printer         { return a.printer }
func (a *Application) Prompter() provision.Prompter { return a.prompter }

// Interactive reports whether questions can be asked.
func (a *Application) Interactive() bool {
	return a.prompter != nil
}

// RequireInteractive fails with a hint naming the flags that replace the
// questions when no terminal is attached.
func (a *Application) RequireInteractive(hint string) error {
	if a.Interactive() {
		return nil
	}
	return fmt.Errorf("%w: %s", provision.ErrNotInteractive, hint)
}

// ClientOptions are the api options implied by the settings.
func (a *Application) ClientOptions() []api.Option {
	opts := []api.Option{
		api.WithTimeout(a.settings.APITimeout),
		api.WithUserAgent("embed/" + a.config.Version),
	}
	if a.settings.APIURL != "" {
		opts = append(opts, api.WithBaseURL(a.settings.APIURL))
	}
	return opts
}

// Orchestrator builds a provision.Orchestrator reporting to the printer.
func (a *Application) Orchestrator() *provision.Orchestrator {
	opts := []provision.Option{
		provision.WithReporter(a.printer),
		provision.WithClientOptions(a.ClientOptions()...),
	}
	if a.prompter != nil {
		opts = append(opts, provision.WithPrompter(a.prompter))
	}
	return provision.New(a.store, opts...)
}

// UpdateChecker returns nil when update checks are disabled.
func (a *Application) UpdateChecker() *updatecheck.Checker {
	if a.settings.NoUpdateCheck {
		return nil
	}
	return updatecheck.New(a.settings.UpdateStatePath(), a.config.Version)
}
