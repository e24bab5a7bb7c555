package provision

import "errors"

var (
	// ErrCancelled means the user abandoned the flow at a decision point.
	// The command exits cleanly with status 0.
	ErrCancelled = errors.New("operation cancelled")

	// ErrInvalidAPIKey means the API rejected the credential during login.
	ErrInvalidAPIKey = errors.New("invalid API key: please check your API key and try again")

	// ErrDuplicateEnvironment means an environment with the same name,
	// compared case-insensitively, already exists.
	ErrDuplicateEnvironment = errors.New("an environment with this name already exists")

	// ErrNoEnvironment means no environment was given and no default is set.
	ErrNoEnvironment = errors.New(`no environment specified: pass --env or set a default with "embed env set-default"`)

	// ErrNoEmbeddables means the account has nothing to issue a token for.
	ErrNoEmbeddables = errors.New("no embeddables found: create one in the Embeddable platform first")

	// ErrNoConnections means a mapping was requested but no connection exists.
	ErrNoConnections = errors.New(`no database connections found: create one first with "embed database connect"`)

	// ErrNotInteractive means input is required that can only come from a
	// prompt, and no prompter is available.
	ErrNotInteractive = errors.New("interactive input required but not available")
)
