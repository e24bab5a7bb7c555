// Package provision drives the dependency-ordered flows of the CLI:
// authenticate, then connection, then environment, then token.
//
// The Orchestrator reads and writes the local config.Store, runs the
// validation package before every mutating API call and talks to the
// remote service only through an api.Client. User input comes from a
// Prompter and progress goes to a Reporter; both are interfaces so the
// flows can be driven by a terminal UI, by flags, or by tests.
//
// Policies enforced here:
//
//   - Environment names are unique case-insensitively, checked against a
//     fresh listing. A collision is never resolved by renaming.
//   - New connections are tested before creation unless the caller opts
//     out. A failed test is classified (refused, authentication, database,
//     timeout or generic), shown with guidance, and creation continues only
//     after explicit confirmation.
//   - Abandoning any decision point yields ErrCancelled. Resources created
//     by earlier steps are kept; there is no rollback across steps.
//   - The environment for a token is the explicit argument, else the stored
//     default, else ErrNoEnvironment.
package provision
