package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"embedctl/pkg/logging"
)

// ListEmbeddables returns the embeddables visible to the credential.
func (c *Client) ListEmbeddables(ctx context.Context) ([]Embeddable, error) {
	list, err := request[embeddableList](ctx, c, http.MethodGet, "/embeddables", nil)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return []Embeddable{}, nil
	}
	return []Embeddable(*list), nil
}

// ValidateAPIKey reports whether the credential can list embeddables. The
// underlying error is only logged.
func (c *Client) ValidateAPIKey(ctx context.Context) bool {
	if _, err := c.ListEmbeddables(ctx); err != nil {
		logging.Debug("api", "API key validation failed: %v", err)
		return false
	}
	return true
}

// DefaultTokenExpiry applies when TokenOptions leaves the expiry unset.
const DefaultTokenExpiry = 3600

// DefaultTokenUser is the user recorded on tokens issued without one.
const DefaultTokenUser = "cli-user"

// TokenUser identifies who a security token is issued for.
type TokenUser struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// TokenOptions tune GenerateSecurityToken. Zero values select the defaults.
type TokenOptions struct {
	ExpiryInSeconds int
	SecurityContext map[string]any
	User            *TokenUser
	Environment     string
}

type tokenRequest struct {
	EmbeddableID    string         `json:"embeddableId"`
	ExpiryInSeconds int            `json:"expiryInSeconds"`
	SecurityContext map[string]any `json:"securityContext"`
	User            TokenUser      `json:"user"`
	Environment     string         `json:"environment,omitempty"`
}

type tokenResponse struct {
	Token    string `json:"token"`
	EmbedURL string `json:"embedUrl"`
}

// ErrEmptyToken is returned when the API accepts a token request but sends
// no token back.
var ErrEmptyToken = errors.New("API did not return a security token")

// GenerateSecurityToken issues a token for embeddableID. ExpiresAt is taken
// from the local clock, not the server's.
func (c *Client) GenerateSecurityToken(ctx context.Context, embeddableID string, opts TokenOptions) (*SecurityToken, error) {
	payload := tokenRequest{
		EmbeddableID:    embeddableID,
		ExpiryInSeconds: opts.ExpiryInSeconds,
		SecurityContext: opts.SecurityContext,
		User:            TokenUser{ID: DefaultTokenUser},
		Environment:     opts.Environment,
	}
	if payload.ExpiryInSeconds <= 0 {
		payload.ExpiryInSeconds = DefaultTokenExpiry
	}
	if payload.SecurityContext == nil {
		payload.SecurityContext = map[string]any{}
	}
	if opts.User != nil && opts.User.ID != "" {
		payload.User = *opts.User
	}

	resp, err := request[tokenResponse](ctx, c, http.MethodPost, "/security-token", payload)
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Token == "" {
		return nil, ErrEmptyToken
	}

	return &SecurityToken{
		Token:     resp.Token,
		EmbedURL:  resp.EmbedURL,
		ExpiresAt: c.now().Add(time.Duration(payload.ExpiryInSeconds) * time.Second).UTC(),
	}, nil
}
