package provision

import (
	"context"
	"fmt"

	"embedctl/internal/api"
	"embedctl/internal/validation"
	"embedctl/pkg/logging"
)

// ConnectionOptions tune CreateConnection.
type ConnectionOptions struct {
	// SkipTest creates the connection without testing it first.
	SkipTest bool
}

// CreateConnection validates in, tests it unless told not to, and creates
// it. A failed test shows guidance and needs explicit confirmation to
// continue; declining returns ErrCancelled. Validation happens before any
// network call.
func (o *Orchestrator) CreateConnection(ctx context.Context, client *api.Client, in validation.ConnectionConfigInput, opts ConnectionOptions) (*api.Connection, error) {
	if err := validation.ConnectionConfig(in); err != nil {
		return nil, err
	}

	if !opts.SkipTest {
		proceed, err := o.testDraft(ctx, client, in)
		if err != nil {
			return nil, err
		}
		if !proceed {
			return nil, ErrCancelled
		}
	}

	task := o.out.Start("Creating connection...")
	conn, err := client.CreateConnection(ctx, in)
	if err != nil {
		task.Fail("Failed to create connection")
		return nil, fmt.Errorf("failed to create connection %q: %w", in.Name, err)
	}
	task.Done(fmt.Sprintf("Connection %q created successfully", conn.Name))
	return conn, nil
}

// testDraft runs the pre-creation test. It reports whether creation should
// go ahead.
func (o *Orchestrator) testDraft(ctx context.Context, client *api.Client, in validation.ConnectionConfigInput) (bool, error) {
	task := o.out.Start(fmt.Sprintf("Testing connection to %s...", in.Name))
	res := client.TestConnection(ctx, api.Draft(in))
	if res.Success {
		task.Done("Connection test successful")
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		task.Fail("Connection test interrupted")
		return false, err
	}

	detail := failureDetail(res)
	task.Fail("Connection test failed: " + detail)
	g := GuidanceFor(detail)
	logging.Debug("provision", "Connection test for %s failed (%s): %s", in.Name, g.Kind, detail)
	o.out.Note(g.Title, g.Body())

	return o.prompt.Confirm(ctx, "Do you want to save this connection anyway?", false)
}

func failureDetail(res api.TestResult) string {
	switch {
	case res.Error != "":
		return res.Error
	case res.Message != "":
		return res.Message
	default:
		return "Unknown error"
	}
}

// TestOutcome is the result of testing a saved connection.
type TestOutcome struct {
	Connection string
	Result     api.TestResult
	// Guidance is set when the test failed.
	Guidance *Guidance
}

// TestConnection tests a saved connection, asking which one when
// identifier is empty. A failed test is reported in the outcome, not as an
// error.
func (o *Orchestrator) TestConnection(ctx context.Context, client *api.Client, identifier string) (*TestOutcome, error) {
	if identifier == "" {
		conns, err := client.ListConnections(ctx)
		if err != nil {
			return nil, err
		}
		if len(conns) == 0 {
			return nil, ErrNoConnections
		}
		if identifier, err = o.SelectConnection(ctx, conns); err != nil {
			return nil, err
		}
	}

	task := o.out.Start("Testing connection...")
	res := client.TestConnection(ctx, api.Saved(identifier))
	out := &TestOutcome{Connection: identifier, Result: res}
	if res.Success {
		task.Done("Connection test successful")
		return out, nil
	}
	if err := ctx.Err(); err != nil {
		task.Fail("Connection test interrupted")
		return nil, err
	}

	detail := failureDetail(res)
	task.Fail("Connection test failed: " + detail)
	g := GuidanceFor(detail)
	out.Guidance = &g
	return out, nil
}

// SelectConnection asks the user to pick one of conns and returns its
// identifier.
func (o *Orchestrator) SelectConnection(ctx context.Context, conns []api.Connection) (string, error) {
	choices := make([]Choice, len(conns))
	for i, c := range conns {
		choices[i] = Choice{Label: c.Name, Value: c.Identifier(), Hint: c.Type}
	}
	return o.prompt.Select(ctx, "Select a connection:", choices)
}

// UpdateConnection validates in and replaces the named connection with it.
func (o *Orchestrator) UpdateConnection(ctx context.Context, client *api.Client, name string, in validation.ConnectionConfigInput) (*api.Connection, error) {
	if in.Name == "" {
		in.Name = name
	}
	if err := validation.ConnectionConfig(in); err != nil {
		return nil, err
	}

	task := o.out.Start("Updating connection...")
	conn, err := client.UpdateConnection(ctx, name, in)
	if err != nil {
		task.Fail("Failed to update connection")
		return nil, fmt.Errorf("failed to update connection %q: %w", name, err)
	}
	task.Done(fmt.Sprintf("Connection %q updated successfully", name))
	return conn, nil
}

// RemoveConnection deletes a connection, asking which one when identifier
// is empty and confirming unless skipConfirm is set. It returns the
// identifier that was removed.
func (o *Orchestrator) RemoveConnection(ctx context.Context, client *api.Client, identifier string, skipConfirm bool) (string, error) {
	if identifier == "" {
		conns, err := client.ListConnections(ctx)
		if err != nil {
			return "", err
		}
		if len(conns) == 0 {
			return "", ErrNoConnections
		}
		if identifier, err = o.SelectConnection(ctx, conns); err != nil {
			return "", err
		}
	}

	if !skipConfirm {
		yes, err := o.prompt.Confirm(ctx, "Are you sure you want to remove this connection?", false)
		if err != nil {
			return "", err
		}
		if !yes {
			return "", ErrCancelled
		}
	}

	task := o.out.Start("Removing connection...")
	if err := client.DeleteConnection(ctx, identifier); err != nil {
		task.Fail("Failed to remove connection")
		return "", fmt.Errorf("failed to remove connection %q: %w", identifier, err)
	}
	task.Done("Connection removed successfully")
	return identifier, nil
}

// ConnectionChoice is the connection picked or created by
// SelectOrCreateConnection.
type ConnectionChoice struct {
	Identifier string
	// Existing is the number of connections before the step ran.
	Existing int
	Created  bool
}

// SelectOrCreateConnection offers reuse when connections already exist and
// otherwise collects and creates a new one.
func (o *Orchestrator) SelectOrCreateConnection(ctx context.Context, client *api.Client, opts ConnectionOptions) (*ConnectionChoice, error) {
	task := o.out.Start("Checking existing connections...")
	conns, err := client.ListConnections(ctx)
	if err != nil {
		task.Fail("Failed to list connections")
		return nil, err
	}
	task.Done(fmt.Sprintf("Found %d existing connection(s)", len(conns)))

	if len(conns) > 0 {
		choice, err := o.prompt.Select(ctx, "Would you like to:", []Choice{
			{Label: "Use an existing connection", Value: "existing"},
			{Label: "Create a new connection", Value: "new"},
		})
		if err != nil {
			return nil, err
		}
		if choice == "existing" {
			id, err := o.SelectConnection(ctx, conns)
			if err != nil {
				return nil, err
			}
			return &ConnectionChoice{Identifier: id, Existing: len(conns)}, nil
		}
	}

	o.out.Info("Let's create a database connection.")
	in, err := o.CollectConnection(ctx)
	if err != nil {
		return nil, err
	}
	conn, err := o.CreateConnection(ctx, client, in, opts)
	if err != nil {
		return nil, err
	}
	return &ConnectionChoice{Identifier: conn.Identifier(), Existing: len(conns), Created: true}, nil
}
