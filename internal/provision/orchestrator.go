package provision

import (
	"context"
	"fmt"
	"strings"

	"embedctl/internal/api"
	"embedctl/internal/config"
	"embedctl/internal/validation"
	"embedctl/pkg/logging"
)

// Orchestrator sequences the provisioning flows. It owns no state beyond
// its collaborators; every remote view is fetched fresh per call.
type Orchestrator struct {
	store   *config.Store
	prompt  Prompter
	out     Reporter
	apiOpts []api.Option
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithPrompter sets the source of interactive answers.
func WithPrompter(p Prompter) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.prompt = p
		}
	}
}

// WithReporter sets where progress and guidance are rendered.
func WithReporter(r Reporter) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.out = r
		}
	}
}

// WithClientOptions are applied to every API client the orchestrator builds.
func WithClientOptions(opts ...api.Option) Option {
	return func(o *Orchestrator) {
		o.apiOpts = append(o.apiOpts, opts...)
	}
}

// New creates an Orchestrator over store. Without a prompter every
// interactive decision fails with ErrNotInteractive.
func New(store *config.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:  store,
		prompt: noPrompter{},
		out:    Discard,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Store returns the config store the orchestrator reads and writes.
func (o *Orchestrator) Store() *config.Store {
	return o.store
}

func (o *Orchestrator) newClient(apiKey string, region config.Region) *api.Client {
	return api.New(apiKey, region, o.apiOpts...)
}

// Client returns an API client for the stored credential, or
// config.ErrNotAuthenticated.
func (o *Orchestrator) Client() (*api.Client, *config.Config, error) {
	cfg, ok := o.store.Get()
	if !ok {
		return nil, nil, config.ErrNotAuthenticated
	}
	return o.newClient(cfg.APIKey, cfg.Region), cfg, nil
}

// Credentials are login inputs supplied up front. Empty fields are asked for.
type Credentials struct {
	APIKey string
	Region config.Region
}

// Authenticate validates the credential locally, then against the API, and
// persists it only on success. Any previous default environment is dropped.
func (o *Orchestrator) Authenticate(ctx context.Context, creds Credentials) (*config.Config, error) {
	apiKey := strings.TrimSpace(creds.APIKey)
	if apiKey == "" {
		var err error
		apiKey, err = o.prompt.Text(ctx, TextPrompt{
			Message:     "Enter your Embeddable API key:",
			Placeholder: "Your API key",
			Secret:      true,
			Validate:    validation.Required("API key"),
		})
		if err != nil {
			return nil, err
		}
		apiKey = strings.TrimSpace(apiKey)
	}
	if err := validation.APIKey(apiKey); err != nil {
		return nil, err
	}

	region := creds.Region
	if region == "" {
		var err error
		region, err = o.selectRegion(ctx)
		if err != nil {
			return nil, err
		}
	}
	if !region.Valid() {
		return nil, fmt.Errorf("unknown region %q", region)
	}

	task := o.out.Start("Validating API key...")
	if !o.newClient(apiKey, region).ValidateAPIKey(ctx) {
		if err := ctx.Err(); err != nil {
			task.Fail("API key validation interrupted")
			return nil, err
		}
		task.Fail("Invalid API key")
		return nil, ErrInvalidAPIKey
	}
	task.Done("API key validated")

	cfg := config.Config{APIKey: apiKey, Region: region}
	if err := o.store.Save(cfg); err != nil {
		return nil, err
	}
	logging.Info("provision", "Authenticated against region %s", region)
	return &cfg, nil
}

func (o *Orchestrator) selectRegion(ctx context.Context) (config.Region, error) {
	choices := make([]Choice, len(config.Regions))
	for i, r := range config.Regions {
		choices[i] = Choice{Label: r.Label(), Value: string(r)}
	}
	v, err := o.prompt.Select(ctx, "Select your region:", choices)
	if err != nil {
		return "", err
	}
	return config.ParseRegion(v)
}

// Init authenticates from scratch. An existing config is only replaced
// after confirmation unless force is set.
func (o *Orchestrator) Init(ctx context.Context, creds Credentials, force bool) (*config.Config, error) {
	if _, ok := o.store.Get(); ok && !force {
		overwrite, err := o.prompt.Confirm(ctx, "Configuration already exists. Do you want to overwrite it?", false)
		if err != nil {
			return nil, err
		}
		if !overwrite {
			return nil, ErrCancelled
		}
	}
	return o.Authenticate(ctx, creds)
}

// EnsureAuthenticated returns the stored credential, running Authenticate
// first when there is none. The bool reports whether login just happened.
func (o *Orchestrator) EnsureAuthenticated(ctx context.Context) (*config.Config, bool, error) {
	if cfg, ok := o.store.Get(); ok {
		return cfg, false, nil
	}
	cfg, err := o.Authenticate(ctx, Credentials{})
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// Logout removes the stored credential after confirmation. It reports
// false when there was nothing to remove.
func (o *Orchestrator) Logout(ctx context.Context, skipConfirm bool) (bool, error) {
	if _, ok := o.store.Get(); !ok {
		return false, nil
	}
	if !skipConfirm {
		yes, err := o.prompt.Confirm(ctx, "Are you sure you want to logout?", false)
		if err != nil {
			return false, err
		}
		if !yes {
			return false, ErrCancelled
		}
	}
	if err := o.store.Delete(); err != nil {
		return false, err
	}
	return true, nil
}

// AuthStatus describes the stored credential and whether the API accepts it.
type AuthStatus struct {
	Config    config.Config
	Reachable bool
}

// Status checks the stored credential against the API.
func (o *Orchestrator) Status(ctx context.Context) (*AuthStatus, error) {
	client, cfg, err := o.Client()
	if err != nil {
		return nil, err
	}
	reachable := client.ValidateAPIKey(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &AuthStatus{Config: *cfg, Reachable: reachable}, nil
}
