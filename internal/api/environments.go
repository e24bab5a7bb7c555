package api

import (
	"context"
	"net/http"
	"net/url"
)

// EnvironmentUpdate carries the fields to change on an environment. Nil or
// empty fields are left alone by the API.
type EnvironmentUpdate struct {
	Name               string            `json:"name,omitempty"`
	DatasourceMappings map[string]string `json:"datasourceMappings,omitempty"`
}

func environmentPath(name string) string {
	return "/environments/" + url.PathEscape(name)
}

// CreateEnvironment creates an environment with the given data source
// mappings. Name uniqueness is not checked here.
func (c *Client) CreateEnvironment(ctx context.Context, name string, mappings map[string]string) (*Environment, error) {
	if mappings == nil {
		mappings = map[string]string{}
	}
	body := map[string]any{
		"name":               name,
		"datasourceMappings": mappings,
	}
	env, err := request[Environment](ctx, c, http.MethodPost, "/environments", body)
	if err != nil {
		return nil, err
	}
	if env == nil {
		return &Environment{Name: name, Mappings: mappings}, nil
	}
	if env.Name == "" {
		env.Name = name
	}
	if len(env.Mappings) == 0 && len(mappings) > 0 {
		env.Mappings = mappings
	}
	return env, nil
}

// ListEnvironments returns every environment.
func (c *Client) ListEnvironments(ctx context.Context) ([]Environment, error) {
	list, err := request[environmentList](ctx, c, http.MethodGet, "/environments", nil)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return []Environment{}, nil
	}
	return []Environment(*list), nil
}

// GetEnvironment fetches one environment by name or id.
func (c *Client) GetEnvironment(ctx context.Context, name string) (*Environment, error) {
	return request[Environment](ctx, c, http.MethodGet, environmentPath(name), nil)
}

// UpdateEnvironment applies u to the named environment.
func (c *Client) UpdateEnvironment(ctx context.Context, name string, u EnvironmentUpdate) (*Environment, error) {
	return request[Environment](ctx, c, http.MethodPut, environmentPath(name), u)
}

// DeleteEnvironment removes the named environment.
func (c *Client) DeleteEnvironment(ctx context.Context, name string) error {
	_, err := request[struct{}](ctx, c, http.MethodDelete, environmentPath(name), nil)
	return err
}
