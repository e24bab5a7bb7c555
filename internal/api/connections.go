package api

import (
	"context"
	"net/http"
	"net/url"

	"embedctl/internal/validation"
	"embedctl/pkg/logging"
)

// connectionPayload is the wire shape of a connection sent to the API.
type connectionPayload struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Credentials any    `json:"credentials"`
}

type credentialsPayload struct {
	Host     string `json:"host"`
	Port     int    `json:"port,omitempty"`
	Database string `json:"database"`
	User     string `json:"user"`
	Password string `json:"password"`
}

// newConnectionPayload converts user input to the API shape. BigQuery sends
// the service account object untouched; every other type sends discrete
// credentials with username renamed to user.
func newConnectionPayload(in validation.ConnectionConfigInput) connectionPayload {
	p := connectionPayload{Name: in.Name, Type: string(in.Type)}
	if in.Type.UsesServiceAccount() {
		p.Credentials = in.Config
		return p
	}
	p.Credentials = credentialsPayload{
		Host:     in.Host,
		Port:     in.Port,
		Database: in.Database,
		User:     in.Username,
		Password: in.Password,
	}
	return p
}

func connectionPath(name string) string {
	return "/connections/" + url.PathEscape(name)
}

// CreateConnection creates a connection. When the API acknowledges without
// a body the returned Connection carries the submitted name and type.
func (c *Client) CreateConnection(ctx context.Context, in validation.ConnectionConfigInput) (*Connection, error) {
	conn, err := request[Connection](ctx, c, http.MethodPost, "/connections", newConnectionPayload(in))
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return &Connection{Name: in.Name, Type: string(in.Type)}, nil
	}
	return conn, nil
}

// ListConnections returns every connection. Entries the API lists by name
// only are fetched one at a time; a failed fetch yields a placeholder with
// type "unknown" instead of failing the whole listing.
func (c *Client) ListConnections(ctx context.Context) ([]Connection, error) {
	list, err := request[connectionList](ctx, c, http.MethodGet, "/connections", nil)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return []Connection{}, nil
	}

	conns := make([]Connection, 0, len(list.entries))
	for _, entry := range list.entries {
		if entry.conn != nil {
			conns = append(conns, *entry.conn)
			continue
		}

		conn, err := c.GetConnection(ctx, entry.name)
		if err != nil || conn == nil {
			if err != nil {
				logging.Debug("api", "Could not fetch details for connection %s: %v", entry.name, err)
			}
			conns = append(conns, Connection{Name: entry.name, Type: "unknown"})
			continue
		}
		conns = append(conns, *conn)
	}
	return conns, nil
}

// GetConnection fetches one connection by name or id.
func (c *Client) GetConnection(ctx context.Context, name string) (*Connection, error) {
	return request[Connection](ctx, c, http.MethodGet, connectionPath(name), nil)
}

// UpdateConnection replaces the stored definition of the named connection.
func (c *Client) UpdateConnection(ctx context.Context, name string, in validation.ConnectionConfigInput) (*Connection, error) {
	conn, err := request[Connection](ctx, c, http.MethodPut, connectionPath(name), newConnectionPayload(in))
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return &Connection{Name: in.Name, Type: string(in.Type)}, nil
	}
	return conn, nil
}

// DeleteConnection removes the named connection.
func (c *Client) DeleteConnection(ctx context.Context, name string) error {
	_, err := request[struct{}](ctx, c, http.MethodDelete, connectionPath(name), nil)
	return err
}
