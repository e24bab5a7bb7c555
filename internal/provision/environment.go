package provision

import (
	"context"
	"fmt"
	"strings"

	"embedctl/internal/api"
	"embedctl/internal/config"
	"embedctl/internal/validation"
)

// DefaultMode decides whether a new environment becomes the default.
type DefaultMode int

const (
	// AskDefault asks the user.
	AskDefault DefaultMode = iota
	// MakeDefault always sets it.
	MakeDefault
	// KeepDefault never touches the stored default.
	KeepDefault
)

// EnvironmentRequest describes an environment to create. Empty fields are
// asked for interactively.
type EnvironmentRequest struct {
	Name string
	// Mappings from data source name to connection identifier. When empty
	// the user is asked for pairs until they stop.
	Mappings map[string]string
	// Connection, when set, is used for every interactively added mapping
	// instead of asking which connection to use.
	Connection string
	Default    DefaultMode
	// DefaultIfFirst sets the default without asking when no environment
	// existed before.
	DefaultIfFirst bool
}

// EnvironmentResult is a created environment plus what happened around it.
type EnvironmentResult struct {
	Environment *api.Environment
	// Existing is the number of environments before creation.
	Existing   int
	Created    bool
	DefaultSet bool
}

// CreateEnvironment enforces case-insensitive name uniqueness against a
// fresh listing, builds the data source mapping and creates the
// environment. A duplicate name given up front fails with
// ErrDuplicateEnvironment; an interactive duplicate asks for another name
// and never renames on its own.
func (o *Orchestrator) CreateEnvironment(ctx context.Context, client *api.Client, req EnvironmentRequest) (*EnvironmentResult, error) {
	existing, err := client.ListEnvironments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list environments: %w", err)
	}
	taken := make(map[string]bool, len(existing))
	for _, env := range existing {
		taken[strings.ToLower(env.Name)] = true
	}

	name, err := o.environmentName(ctx, req.Name, taken)
	if err != nil {
		return nil, err
	}

	mappings := req.Mappings
	if len(mappings) == 0 {
		mappings, err = o.collectMappings(ctx, client, req.Connection)
		if err != nil {
			return nil, err
		}
	}
	for ds := range mappings {
		if err := validation.DataSourceName(ds); err != nil {
			return nil, err
		}
	}

	task := o.out.Start("Creating environment...")
	env, err := client.CreateEnvironment(ctx, name, mappings)
	if err != nil {
		task.Fail("Failed to create environment")
		if api.IsConflict(err) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateEnvironment, name)
		}
		return nil, fmt.Errorf("failed to create environment %q: %w", name, err)
	}
	task.Done(fmt.Sprintf("Environment %q created successfully", env.Name))

	res := &EnvironmentResult{Environment: env, Existing: len(existing), Created: true}
	setDefault, err := o.decideDefault(ctx, req, len(existing))
	if err != nil {
		return res, err
	}
	if setDefault {
		if err := o.store.Update(config.SetDefaultEnvironment(env.Identifier())); err != nil {
			return res, err
		}
		res.DefaultSet = true
		o.out.Success("Default environment set")
	}
	return res, nil
}

func (o *Orchestrator) environmentName(ctx context.Context, given string, taken map[string]bool) (string, error) {
	if given != "" {
		if err := validation.EnvironmentName(given); err != nil {
			return "", err
		}
		if taken[strings.ToLower(given)] {
			return "", fmt.Errorf("%w: %q", ErrDuplicateEnvironment, given)
		}
		return given, nil
	}

	for {
		name, err := o.prompt.Text(ctx, TextPrompt{
			Message:     "Environment name:",
			Placeholder: "production",
			Validate:    validation.EnvironmentName,
		})
		if err != nil {
			return "", err
		}
		if !taken[strings.ToLower(name)] {
			return name, nil
		}

		o.out.Warn("An environment named %q already exists.", name)
		again, err := o.prompt.Confirm(ctx, "Would you like to choose a different name?", true)
		if err != nil {
			return "", err
		}
		if !again {
			return "", ErrCancelled
		}
	}
}

// collectMappings asks for (data source, connection) pairs until the user
// stops. At least one pair is collected.
func (o *Orchestrator) collectMappings(ctx context.Context, client *api.Client, fixed string) (map[string]string, error) {
	var conns []api.Connection
	if fixed == "" {
		var err error
		conns, err = client.ListConnections(ctx)
		if err != nil {
			return nil, err
		}
		if len(conns) == 0 {
			return nil, ErrNoConnections
		}
	}

	o.out.Info("Data sources are logical names used in your Embeddable models.")
	mappings := map[string]string{}
	for {
		ds, err := o.prompt.Text(ctx, TextPrompt{
			Message:     "Data source name:",
			Placeholder: "main_db",
			Validate:    validation.DataSourceName,
		})
		if err != nil {
			return nil, err
		}
		ds = strings.TrimSpace(ds)

		conn := fixed
		if conn == "" {
			if conn, err = o.SelectConnection(ctx, conns); err != nil {
				return nil, err
			}
		}
		mappings[ds] = conn
		o.out.Success("Mapped %q to connection %q", ds, conn)

		more, err := o.prompt.Confirm(ctx, "Add another data source mapping?", false)
		if err != nil {
			return nil, err
		}
		if !more {
			return mappings, nil
		}
	}
}

func (o *Orchestrator) decideDefault(ctx context.Context, req EnvironmentRequest, existing int) (bool, error) {
	switch req.Default {
	case MakeDefault:
		return true, nil
	case KeepDefault:
		return false, nil
	}
	if req.DefaultIfFirst && existing == 0 {
		return true, nil
	}
	return o.prompt.Confirm(ctx, "Set as default environment?", true)
}

// SelectEnvironment asks the user to pick one of envs and returns its
// identifier.
func (o *Orchestrator) SelectEnvironment(ctx context.Context, message string, envs []api.Environment) (string, error) {
	choices := make([]Choice, len(envs))
	for i, env := range envs {
		choices[i] = Choice{Label: env.Name, Value: env.Identifier()}
	}
	return o.prompt.Select(ctx, message, choices)
}

func (o *Orchestrator) pickEnvironment(ctx context.Context, client *api.Client, message string) (string, error) {
	envs, err := client.ListEnvironments(ctx)
	if err != nil {
		return "", err
	}
	if len(envs) == 0 {
		return "", fmt.Errorf(`no environments found: create one first with "embed env create"`)
	}
	return o.SelectEnvironment(ctx, message, envs)
}

// SetDefaultEnvironment stores id as the default environment, asking which
// one when id is empty.
func (o *Orchestrator) SetDefaultEnvironment(ctx context.Context, client *api.Client, id string) (string, error) {
	if id == "" {
		var err error
		if id, err = o.pickEnvironment(ctx, client, "Select default environment:"); err != nil {
			return "", err
		}
	}
	if err := o.store.Update(config.SetDefaultEnvironment(id)); err != nil {
		return "", err
	}
	return id, nil
}

// RemoveEnvironment deletes an environment after confirmation and clears
// the stored default when it pointed at it.
func (o *Orchestrator) RemoveEnvironment(ctx context.Context, client *api.Client, id string, skipConfirm bool) (string, error) {
	if id == "" {
		var err error
		if id, err = o.pickEnvironment(ctx, client, "Select environment to remove:"); err != nil {
			return "", err
		}
	}

	if !skipConfirm {
		yes, err := o.prompt.Confirm(ctx, "Are you sure you want to remove this environment?", false)
		if err != nil {
			return "", err
		}
		if !yes {
			return "", ErrCancelled
		}
	}

	task := o.out.Start("Removing environment...")
	if err := client.DeleteEnvironment(ctx, id); err != nil {
		task.Fail("Failed to remove environment")
		return "", fmt.Errorf("failed to remove environment %q: %w", id, err)
	}
	task.Done("Environment removed successfully")

	if cfg, ok := o.store.Get(); ok && cfg.DefaultEnvironment == id {
		if err := o.store.Update(config.ClearDefaultEnvironment()); err != nil {
			return id, err
		}
		o.out.Info("Cleared the default environment")
	}
	return id, nil
}

// ResolveEnvironment picks the environment for a token: the explicit
// argument, else the stored default, else ErrNoEnvironment.
func (o *Orchestrator) ResolveEnvironment(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if cfg, ok := o.store.Get(); ok && cfg.DefaultEnvironment != "" {
		return cfg.DefaultEnvironment, nil
	}
	return "", ErrNoEnvironment
}

// SelectOrCreateEnvironment offers an existing environment when there are
// any and otherwise creates one mapped to connection.
func (o *Orchestrator) SelectOrCreateEnvironment(ctx context.Context, client *api.Client, connection string) (*EnvironmentResult, error) {
	task := o.out.Start("Checking existing environments...")
	envs, err := client.ListEnvironments(ctx)
	if err != nil {
		task.Fail("Failed to list environments")
		return nil, err
	}
	task.Done(fmt.Sprintf("Found %d existing environment(s)", len(envs)))

	if len(envs) > 0 {
		create, err := o.prompt.Confirm(ctx, "Would you like to create a new environment?", true)
		if err != nil {
			return nil, err
		}
		if !create {
			id, err := o.SelectEnvironment(ctx, "Select an environment:", envs)
			if err != nil {
				return nil, err
			}
			for i := range envs {
				if envs[i].Identifier() == id {
					return &EnvironmentResult{Environment: &envs[i], Existing: len(envs)}, nil
				}
			}
			return &EnvironmentResult{Environment: &api.Environment{ID: id}, Existing: len(envs)}, nil
		}
	}

	o.out.Info("Let's create an environment.")
	return o.CreateEnvironment(ctx, client, EnvironmentRequest{
		Connection:     connection,
		DefaultIfFirst: true,
	})
}
