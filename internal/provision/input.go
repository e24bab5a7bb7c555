package provision

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"embedctl/internal/validation"
)

// ParseConnectionJSON decodes a connection description. Comments and
// trailing commas are allowed.
func ParseConnectionJSON(data []byte) (validation.ConnectionConfigInput, error) {
	var in validation.ConnectionConfigInput
	if err := json.Unmarshal(jsonc.ToJSON(data), &in); err != nil {
		return in, fmt.Errorf("invalid connection JSON: %w", err)
	}
	return in, nil
}

// LoadConnectionFile reads a connection description from path. Files
// ending in .yaml or .yml are YAML; anything else is JSON with comments.
func LoadConnectionFile(path string) (validation.ConnectionConfigInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return validation.ConnectionConfigInput{}, fmt.Errorf("failed to read connection file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var in validation.ConnectionConfigInput
		if err := yaml.Unmarshal(data, &in); err != nil {
			return in, fmt.Errorf("invalid connection YAML in %s: %w", path, err)
		}
		return in, nil
	default:
		in, err := ParseConnectionJSON(data)
		if err != nil {
			return in, fmt.Errorf("%s: %w", path, err)
		}
		return in, nil
	}
}

// ParseJSONObject decodes a JSON object such as a security context or a
// service account. Comments are allowed.
func ParseJSONObject(s string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal(jsonc.ToJSON([]byte(s)), &obj); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("invalid JSON object: expected an object")
	}
	return obj, nil
}

// loadServiceAccount accepts inline JSON or a path to a JSON file.
func loadServiceAccount(s string) (map[string]any, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		return ParseJSONObject(s)
	}
	data, err := os.ReadFile(s)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account file: %w", err)
	}
	return ParseJSONObject(string(data))
}

func validServiceAccount(s string) error {
	if strings.TrimSpace(s) == "" {
		return &validation.Error{Field: "config", Reason: "Service account JSON is required"}
	}
	if _, err := loadServiceAccount(s); err != nil {
		return &validation.Error{Field: "config", Reason: "Invalid JSON format or unreadable file"}
	}
	return nil
}

func validPort(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 || n > 65535 {
		return &validation.Error{Field: "port", Reason: "Port must be a number between 1 and 65535"}
	}
	return nil
}

// CollectConnection asks for a connection description field by field.
func (o *Orchestrator) CollectConnection(ctx context.Context) (validation.ConnectionConfigInput, error) {
	var in validation.ConnectionConfigInput

	choices := make([]Choice, len(validation.ConnectionTypes))
	for i, t := range validation.ConnectionTypes {
		choices[i] = Choice{Label: t.Label(), Value: string(t)}
	}
	typ, err := o.prompt.Select(ctx, "Select database type:", choices)
	if err != nil {
		return in, err
	}
	in.Type = validation.ConnectionType(typ)

	if in.Type.UsesServiceAccount() {
		o.out.Note("BigQuery", "For BigQuery, you need to provide service account credentials as JSON")
		raw, err := o.prompt.Text(ctx, TextPrompt{
			Message:  "Paste your service account JSON (or path to JSON file):",
			Validate: validServiceAccount,
		})
		if err != nil {
			return in, err
		}
		if in.Config, err = loadServiceAccount(raw); err != nil {
			return in, err
		}
		if in.Name, err = o.prompt.Text(ctx, TextPrompt{
			Message:     "Connection name:",
			Placeholder: "my-bigquery",
			Validate:    validation.Required("Connection name"),
		}); err != nil {
			return in, err
		}
		return in, nil
	}

	hostPlaceholder := "localhost"
	if in.Type == validation.Snowflake {
		hostPlaceholder = "account.snowflakecomputing.com"
	}
	defaultPort := ""
	if p := in.Type.DefaultPort(); p > 0 {
		defaultPort = strconv.Itoa(p)
	}

	var port string
	steps := []struct {
		dst    *string
		prompt TextPrompt
	}{
		{&in.Name, TextPrompt{Message: "Connection name:", Placeholder: "my-database", Validate: validation.Required("Connection name")}},
		{&in.Host, TextPrompt{Message: "Host:", Placeholder: hostPlaceholder, Validate: validation.Required("Host")}},
		{&port, TextPrompt{Message: "Port:", Placeholder: defaultPort, Default: defaultPort, Validate: validPort}},
		{&in.Database, TextPrompt{Message: "Database name:", Placeholder: "my_database", Validate: validation.Required("Database name")}},
		{&in.Username, TextPrompt{Message: "Username:", Placeholder: "user", Validate: validation.Required("Username")}},
		{&in.Password, TextPrompt{Message: "Password:", Secret: true, Validate: validation.Required("Password")}},
	}
	for _, step := range steps {
		v, err := o.prompt.Text(ctx, step.prompt)
		if err != nil {
			return in, err
		}
		*step.dst = strings.TrimSpace(v)
		if step.prompt.Secret {
			*step.dst = v
		}
	}
	if port != "" {
		in.Port, _ = strconv.Atoi(port)
	}
	return in, nil
}
