package provision

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"embedctl/internal/api"
)

// DefaultExpiry is used when no expiry is given or it cannot be parsed.
const (
	DefaultExpiry        = "24h"
	DefaultExpirySeconds = 86400
)

var expiryPattern = regexp.MustCompile(`^(\d+)([mhd])$`)

// ParseExpiry converts a compact duration such as "90m", "2h" or "3d" to
// seconds. Anything else yields DefaultExpirySeconds.
func ParseExpiry(s string) int {
	m := expiryPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return DefaultExpirySeconds
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return DefaultExpirySeconds
	}
	unit, ok := expiryUnits[m[2]]
	if !ok || n > math.MaxInt/unit {
		return DefaultExpirySeconds
	}
	return n * unit
}

var expiryUnits = map[string]int{"m": 60, "h": 3600, "d": 86400}

// TokenRequest describes a token to issue.
type TokenRequest struct {
	// EmbeddableID is asked for when empty.
	EmbeddableID string
	// Environment wins over the stored default.
	Environment string
	// Expiry is a compact duration; see ParseExpiry.
	Expiry          string
	UserID          string
	SecurityContext map[string]any
	// AskDetails prompts for expiry, user and security context.
	AskDetails bool
}

// TokenResult is an issued token and the inputs that produced it.
type TokenResult struct {
	Token        *api.SecurityToken
	EmbeddableID string
	Environment  string
	Expiry       string
	Filtered     bool
}

// GenerateToken resolves the environment, picks an embeddable and issues a
// security token for it.
func (o *Orchestrator) GenerateToken(ctx context.Context, client *api.Client, req TokenRequest) (*TokenResult, error) {
	env, err := o.ResolveEnvironment(req.Environment)
	if err != nil {
		return nil, err
	}

	embeddableID := req.EmbeddableID
	if embeddableID == "" {
		if embeddableID, err = o.SelectEmbeddable(ctx, client); err != nil {
			return nil, err
		}
	}

	if req.AskDetails {
		if err := o.askTokenDetails(ctx, &req); err != nil {
			return nil, err
		}
	}
	if req.Expiry == "" {
		req.Expiry = DefaultExpiry
	}

	opts := api.TokenOptions{
		ExpiryInSeconds: ParseExpiry(req.Expiry),
		SecurityContext: req.SecurityContext,
		Environment:     env,
	}
	if req.UserID != "" {
		opts.User = &api.TokenUser{ID: req.UserID}
	}

	task := o.out.Start("Generating token...")
	tok, err := client.GenerateSecurityToken(ctx, embeddableID, opts)
	if err != nil {
		task.Fail("Failed to generate token")
		return nil, fmt.Errorf("failed to generate token for %q: %w", embeddableID, err)
	}
	task.Done("Token generated successfully")

	return &TokenResult{
		Token:        tok,
		EmbeddableID: embeddableID,
		Environment:  env,
		Expiry:       req.Expiry,
		Filtered:     len(req.SecurityContext) > 0,
	}, nil
}

// SelectEmbeddable lists embeddables and asks the user to pick one.
func (o *Orchestrator) SelectEmbeddable(ctx context.Context, client *api.Client) (string, error) {
	task := o.out.Start("Fetching embeddables...")
	items, err := client.ListEmbeddables(ctx)
	if err != nil {
		task.Fail("Failed to fetch embeddables")
		return "", err
	}
	task.Done(fmt.Sprintf("Found %d embeddable(s)", len(items)))
	if len(items) == 0 {
		return "", ErrNoEmbeddables
	}

	choices := make([]Choice, len(items))
	for i, e := range items {
		choices[i] = Choice{Label: e.Name, Value: e.ID}
	}
	return o.prompt.Select(ctx, "Select an embeddable:", choices)
}

func (o *Orchestrator) askTokenDetails(ctx context.Context, req *TokenRequest) error {
	expiry, err := o.prompt.Text(ctx, TextPrompt{
		Message:     "Token expiration (e.g., 1h, 24h, 7d):",
		Placeholder: DefaultExpiry,
		Default:     DefaultExpiry,
	})
	if err != nil {
		return err
	}
	req.Expiry = strings.TrimSpace(expiry)

	userID, err := o.prompt.Text(ctx, TextPrompt{
		Message:     "User ID (optional):",
		Placeholder: "user123",
	})
	if err != nil {
		return err
	}
	req.UserID = strings.TrimSpace(userID)

	filters, err := o.prompt.Confirm(ctx, "Add row-level security filters?", false)
	if err != nil {
		return err
	}
	if !filters {
		return nil
	}

	raw, err := o.prompt.Text(ctx, TextPrompt{
		Message:     "Enter filters as JSON:",
		Placeholder: `{"org_id": 123}`,
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return nil
			}
			_, err := ParseJSONObject(s)
			return err
		},
	})
	if err != nil {
		return err
	}
	if strings.TrimSpace(raw) != "" {
		if req.SecurityContext, err = ParseJSONObject(raw); err != nil {
			return err
		}
	}
	return nil
}
