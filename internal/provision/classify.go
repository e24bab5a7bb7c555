package provision

import "strings"

// FailureKind groups connection test failures by likely cause.
type FailureKind string

const (
	FailureRefused        FailureKind = "refused"
	FailureAuthentication FailureKind = "authentication"
	FailureDatabase       FailureKind = "database"
	FailureTimeout        FailureKind = "timeout"
	FailureGeneric        FailureKind = "generic"
)

// ClassifyTestFailure maps a test error message to a FailureKind by
// substring. The first matching rule wins.
func ClassifyTestFailure(msg string) FailureKind {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "refused"):
		return FailureRefused
	case strings.Contains(lower, "authentication"),
		strings.Contains(lower, "password"),
		strings.Contains(lower, "user"):
		return FailureAuthentication
	case strings.Contains(lower, "database"):
		return FailureDatabase
	case strings.Contains(lower, "timeout"),
		strings.Contains(lower, "timed out"),
		strings.Contains(lower, "deadline exceeded"):
		return FailureTimeout
	default:
		return FailureGeneric
	}
}

// Guidance is remediation advice for one FailureKind.
type Guidance struct {
	Kind    FailureKind
	Title   string
	Summary string
	Checks  []string
}

// Body renders the summary followed by the checklist.
func (g Guidance) Body() string {
	var b strings.Builder
	b.WriteString(g.Summary)
	if len(g.Checks) > 0 {
		b.WriteString("\nPlease check:")
		for _, c := range g.Checks {
			b.WriteString("\n• ")
			b.WriteString(c)
		}
	}
	return b.String()
}

var guidance = map[FailureKind]Guidance{
	FailureRefused: {
		Kind:    FailureRefused,
		Title:   "💡 Connection refused",
		Summary: "Could not connect to the database server.",
		Checks: []string{
			"The host and port are correct",
			"The database server is running",
			"Firewall rules allow the connection",
		},
	},
	FailureAuthentication: {
		Kind:    FailureAuthentication,
		Title:   "🔐 Authentication error",
		Summary: "Authentication failed.",
		Checks: []string{
			"Username is correct",
			"Password is correct",
			"User has permission to connect",
		},
	},
	FailureDatabase: {
		Kind:    FailureDatabase,
		Title:   "🗄️ Database error",
		Summary: "Database error.",
		Checks: []string{
			"Database name is correct",
			"Database exists",
			"User has access to this database",
		},
	},
	FailureTimeout: {
		Kind:    FailureTimeout,
		Title:   "⏱️ Timeout error",
		Summary: "Connection timed out.",
		Checks: []string{
			"Network connectivity to the host",
			"Firewall rules",
			"Database server is accepting connections",
		},
	},
	FailureGeneric: {
		Kind:    FailureGeneric,
		Title:   "⚠️ Connection test failed",
		Summary: "Please verify your connection details.",
		Checks: []string{
			"Host and port",
			"Database name",
			"Username and password",
			"Network connectivity",
		},
	},
}

// GuidanceFor returns the advice for a test error message.
func GuidanceFor(msg string) Guidance {
	return guidance[ClassifyTestFailure(msg)]
}
