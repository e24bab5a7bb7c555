package ui

import (
	"fmt"

	"github.com/atotto/clipboard"
)

var (
	writeClipboard     = clipboard.WriteAll
	clipboardAvailable = func() bool { return !clipboard.Unsupported }
)

// CopyToClipboard places text on the system clipboard.
func CopyToClipboard(text string) error {
	if !clipboardAvailable() {
		return fmt.Errorf("clipboard is not supported on this system")
	}
	if err := writeClipboard(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
