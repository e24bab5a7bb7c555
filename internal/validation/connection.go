package validation

import (
	"fmt"
	"strings"
)

// ConnectionType is a supported database engine.
type ConnectionType string

const (
	Postgres  ConnectionType = "postgres"
	MySQL     ConnectionType = "mysql"
	BigQuery  ConnectionType = "bigquery"
	Snowflake ConnectionType = "snowflake"
	Redshift  ConnectionType = "redshift"
)

// ConnectionTypes lists the supported engines in picker order.
var ConnectionTypes = []ConnectionType{Postgres, MySQL, BigQuery, Snowflake, Redshift}

// Valid reports whether t is a supported engine.
func (t ConnectionType) Valid() bool {
	for _, known := range ConnectionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Label is the product name shown in pickers.
func (t ConnectionType) Label() string {
	switch t {
	case Postgres:
		return "PostgreSQL"
	case MySQL:
		return "MySQL"
	case BigQuery:
		return "BigQuery"
	case Snowflake:
		return "Snowflake"
	case Redshift:
		return "Redshift"
	default:
		return string(t)
	}
}

// DefaultPort is the usual port of the engine, or 0 when there is none.
func (t ConnectionType) DefaultPort() int {
	switch t {
	case Postgres:
		return 5432
	case MySQL:
		return 3306
	case Redshift:
		return 5439
	case Snowflake:
		return 443
	default:
		return 0
	}
}

// UsesServiceAccount reports whether the engine is configured with an
// opaque service-account object instead of host credentials.
func (t ConnectionType) UsesServiceAccount() bool {
	return t == BigQuery
}

// ConnectionConfigInput is a user-supplied connection description. It is
// never stored locally.
type ConnectionConfigInput struct {
	Name     string         `json:"name" yaml:"name"`
	Type     ConnectionType `json:"type" yaml:"type"`
	Host     string         `json:"host,omitempty" yaml:"host,omitempty"`
	Port     int            `json:"port,omitempty" yaml:"port,omitempty"`
	Database string         `json:"database,omitempty" yaml:"database,omitempty"`
	Username string         `json:"username,omitempty" yaml:"username,omitempty"`
	Password string         `json:"password,omitempty" yaml:"password,omitempty"`
	// Config is the BigQuery service account object.
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

func typeNames() string {
	names := make([]string, len(ConnectionTypes))
	for i, t := range ConnectionTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// ConnectionConfig checks the name, the type and the type-specific
// required fields of in.
func ConnectionConfig(in ConnectionConfigInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", "Connection name is required and must be a string")
	}

	if !in.Type.Valid() {
		return invalid("type", "Connection type must be one of: %s", typeNames())
	}

	if in.Type.UsesServiceAccount() {
		if in.Config == nil {
			return invalid("config", "BigQuery connections require service account JSON in config field")
		}
		return nil
	}

	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"host", in.Host},
		{"database", in.Database},
		{"username", in.Username},
		{"password", in.Password},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &Error{
			Field:  missing[0],
			Reason: fmt.Sprintf("%s connections require: host, database, username, password (missing: %s)", in.Type, strings.Join(missing, ", ")),
		}
	}
	return nil
}
