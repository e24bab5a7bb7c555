package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"embedctl/pkg/logging"
)

// flexString decodes a JSON string or number into a string. Identifiers
// come back as either depending on the endpoint.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(b))
	}
	*f = flexString(n.String())
	return nil
}

// Connection is a named remote credential set for one external database.
type Connection struct {
	ID          string         `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string         `json:"name" yaml:"name"`
	Type        string         `json:"type" yaml:"type"`
	Credentials map[string]any `json:"credentials,omitempty" yaml:"credentials,omitempty"`
	CreatedAt   string         `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt   string         `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

func (c *Connection) UnmarshalJSON(data []byte) error {
	type alias Connection
	aux := struct {
		*alias
		ID flexString `json:"id"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.ID = string(aux.ID)
	return nil
}

// Identifier is the id when the API returned one, otherwise the name.
func (c Connection) Identifier() string {
	if c.ID != "" {
		return c.ID
	}
	return c.Name
}

func (c Connection) credential(key string) string {
	if c.Credentials == nil {
		return ""
	}
	switch v := c.Credentials[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Host returns the host recorded in the credentials, if any.
func (c Connection) Host() string { return c.credential("host") }

// Database returns the database recorded in the credentials, if any.
func (c Connection) Database() string { return c.credential("database") }

// connectionEntry is one element of a connection list: either a bare name
// or a full object.
type connectionEntry struct {
	name string
	conn *Connection
}

func (e *connectionEntry) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		e.name = name
		return nil
	}
	var conn Connection
	if err := json.Unmarshal(data, &conn); err != nil {
		return err
	}
	e.conn = &conn
	return nil
}

// connectionList accepts {"connections": [...]} or a bare array.
type connectionList struct {
	entries []connectionEntry
}

func (l *connectionList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &l.entries)
	}
	var wrapped struct {
		Connections []connectionEntry `json:"connections"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	l.entries = wrapped.Connections
	return nil
}

// Environment maps logical data source names to connection identifiers.
type Environment struct {
	ID        string            `json:"id" yaml:"id"`
	Name      string            `json:"name" yaml:"name"`
	Mappings  map[string]string `json:"datasources,omitempty" yaml:"datasources,omitempty"`
	CreatedAt string            `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt string            `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Identifier is the id when the API returned one, otherwise the name.
func (e Environment) Identifier() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Name
}

// DataSources returns the mapped data source names in sorted order.
func (e Environment) DataSources() []string {
	names := make([]string, 0, len(e.Mappings))
	for name := range e.Mappings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Environment) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID                 flexString      `json:"id"`
		Name               string          `json:"name"`
		Connections        json.RawMessage `json:"connections"`
		Datasources        json.RawMessage `json:"datasources"`
		DatasourceMappings json.RawMessage `json:"datasourceMappings"`
		CreatedAt          string          `json:"createdAt"`
		UpdatedAt          string          `json:"updatedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	mappings := map[string]string{}
	for _, field := range []json.RawMessage{raw.Connections, raw.Datasources, raw.DatasourceMappings} {
		m, err := decodeMappings(field)
		if err != nil {
			logging.Debug("api", "Skipping data source mappings of environment %q: %v", raw.Name, err)
			continue
		}
		for k, v := range m {
			mappings[k] = v
		}
	}

	*e = Environment{
		ID:        string(raw.ID),
		Name:      raw.Name,
		CreatedAt: raw.CreatedAt,
		UpdatedAt: raw.UpdatedAt,
	}
	if len(mappings) > 0 {
		e.Mappings = mappings
	}
	return nil
}

var (
	dataSourceKeys = []string{"dataSource", "datasource", "dataSourceName", "name"}
	connectionKeys = []string{"connection", "connectionId", "connectionName", "connection_id"}
)

// decodeMappings accepts either {"ds": "conn"} or [{"dataSource": "ds",
// "connection": "conn"}] and returns the canonical map. Callers skip the
// field on error so the rest of the environment still decodes.
func decodeMappings(raw json.RawMessage) (map[string]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch raw[0] {
	case '{':
		var m map[string]flexString
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("invalid data source mapping: %w", err)
		}
		out := make(map[string]string, len(m))
		for k, v := range m {
			out[k] = string(v)
		}
		return out, nil
	case '[':
		var items []map[string]any
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("invalid data source mapping list: %w", err)
		}
		out := make(map[string]string, len(items))
		for _, item := range items {
			ds := pick(item, dataSourceKeys)
			conn := pick(item, connectionKeys)
			if ds == "" || conn == "" {
				continue
			}
			out[ds] = conn
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected data source mapping %s", string(raw))
	}
}

func pick(item map[string]any, keys []string) string {
	for _, k := range keys {
		switch v := item[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// environmentList accepts {"environments": [...]} or a bare array.
type environmentList []Environment

func (l *environmentList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var items []json.RawMessage
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
	} else {
		var wrapped struct {
			Environments []json.RawMessage `json:"environments"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		items = wrapped.Environments
	}

	envs := make([]Environment, 0, len(items))
	for _, item := range items {
		var env Environment
		if err := json.Unmarshal(item, &env); err != nil {
			// Keep whatever name the entry carries; duplicate checks need it.
			var named struct {
				Name string `json:"name"`
			}
			if json.Unmarshal(item, &named) != nil || named.Name == "" {
				logging.Debug("api", "Skipping undecodable environment %s: %v", string(item), err)
				continue
			}
			logging.Debug("api", "Environment %q decoded by name only: %v", named.Name, err)
			env = Environment{Name: named.Name}
		}
		envs = append(envs, env)
	}
	*l = envs
	return nil
}

// Embeddable is a dashboard or report that can be rendered with a token.
type Embeddable struct {
	ID              string     `json:"id" yaml:"id"`
	Name            string     `json:"name" yaml:"name"`
	LastPublishedAt *time.Time `json:"lastPublishedAt,omitempty" yaml:"lastPublishedAt,omitempty"`
}

func (e *Embeddable) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID              flexString      `json:"id"`
		Name            string          `json:"name"`
		LastPublishedAt json.RawMessage `json:"lastPublishedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Embeddable{
		ID:              string(raw.ID),
		Name:            raw.Name,
		LastPublishedAt: parsePublished(raw.LastPublishedAt),
	}
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parsePublished understands a date string, an epoch number in milliseconds,
// or an object carrying either under "date" or "timestamp". Anything else,
// including the empty object the API sends for unpublished items, is nil.
func parsePublished(raw json.RawMessage) *time.Time {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	if obj, ok := v.(map[string]any); ok {
		if d, ok := obj["date"]; ok {
			v = d
		} else {
			v = obj["timestamp"]
		}
	}

	switch t := v.(type) {
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return &parsed
			}
		}
	case float64:
		parsed := time.UnixMilli(int64(t)).UTC()
		return &parsed
	}
	return nil
}

// embeddableList accepts {"embeddables": [...]} or a bare array.
type embeddableList []Embeddable

func (l *embeddableList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []Embeddable
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var wrapped struct {
		Embeddables []Embeddable `json:"embeddables"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	*l = wrapped.Embeddables
	return nil
}

// SecurityToken is a short-lived credential for embedding one embeddable.
type SecurityToken struct {
	Token     string    `json:"token" yaml:"token"`
	EmbedURL  string    `json:"embedUrl,omitempty" yaml:"embedUrl,omitempty"`
	ExpiresAt time.Time `json:"expiresAt" yaml:"expiresAt"`
}

// TestResult is the outcome of a connection test. A failed test is not an
// error.
type TestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
