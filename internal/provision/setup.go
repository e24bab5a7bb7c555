package provision

import (
	"context"
	"errors"

	"embedctl/internal/config"
)

// SetupOptions tune the setup wizard.
type SetupOptions struct {
	SkipToken bool
	SkipTest  bool
}

// SetupSummary reports what the wizard configured.
type SetupSummary struct {
	Region        config.Region
	Authenticated bool
	Connection    string
	Environment   string
	// Connections and Environments count what exists after the wizard.
	Connections  int
	Environments int
	DefaultSet   bool
	Token        *TokenResult
}

// Setup runs authenticate, connection, environment and the optional token
// step in order. Each step commits on its own; cancelling later keeps what
// earlier steps created.
func (o *Orchestrator) Setup(ctx context.Context, opts SetupOptions) (*SetupSummary, error) {
	o.out.Heading("📌 Step 1: Authentication")
	cfg, fresh, err := o.EnsureAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if fresh {
		o.out.Success("Authentication configured")
	} else {
		o.out.Success("Already authenticated (region %s)", cfg.Region.Display())
	}
	summary := &SetupSummary{Region: cfg.Region, Authenticated: true}
	client := o.newClient(cfg.APIKey, cfg.Region)

	o.out.Heading("📊 Step 2: Database Connection")
	o.out.Note("Database connections", "Database connections allow Embeddable to securely query your data.\n"+
		"• Your connection details are encrypted\n"+
		"• Embeddable never stores your actual data\n"+
		"• Use read-only database users for security")
	conn, err := o.SelectOrCreateConnection(ctx, client, ConnectionOptions{SkipTest: opts.SkipTest})
	if err != nil {
		return summary, err
	}
	summary.Connection = conn.Identifier
	summary.Connections = conn.Existing
	if conn.Created {
		summary.Connections++
	}

	o.out.Heading("🌍 Step 3: Environment Setup")
	o.out.Note("Environments", "Environments map your data sources to database connections.\n"+
		"• Use different databases for dev/staging/production\n"+
		"• Switch data sources without changing code\n"+
		"• Manage multi-tenant architectures")
	env, err := o.SelectOrCreateEnvironment(ctx, client, conn.Identifier)
	if err != nil {
		return summary, err
	}
	summary.Environment = env.Environment.Identifier()
	summary.Environments = env.Existing
	if env.Created {
		summary.Environments++
	}
	summary.DefaultSet = env.DefaultSet

	if opts.SkipToken {
		return summary, nil
	}

	o.out.Heading("🔐 Step 4: Security Token (Optional)")
	o.out.Note("Security tokens", "Security tokens enable secure dashboard embedding with:\n"+
		"• User identification - Track who views dashboards\n"+
		"• Row-level security - Filter data per user\n"+
		"• Time-based access - Control token expiration")
	want, err := o.prompt.Confirm(ctx, "Would you like to generate a security token now?", false)
	if err != nil {
		return summary, err
	}
	if !want {
		return summary, nil
	}

	tok, err := o.GenerateToken(ctx, client, TokenRequest{
		Environment: summary.Environment,
		AskDetails:  true,
	})
	if err != nil {
		if errors.Is(err, ErrNoEmbeddables) {
			o.out.Warn("No embeddables found. Create one in the Embeddable platform first.")
			return summary, nil
		}
		return summary, err
	}
	summary.Token = tok
	return summary, nil
}
