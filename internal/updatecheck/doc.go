// Package updatecheck finds out whether a newer embed release exists.
//
// The result of the last lookup is kept in a small state file next to the
// config so that at most one network lookup happens per Interval. A check
// never creates the config directory, and failures are only logged.
package updatecheck
