// Package prompt asks questions on the terminal with small bubbletea
// programs. Terminal implements provision.Prompter; Esc and Ctrl+C abandon
// the question with provision.ErrCancelled.
package prompt
