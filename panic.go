package rill

import "fmt"

// formatRecovered renders a recover() value as a diagnostic string for
// a CallbackPanic error.
func formatRecovered(r interface{}) string {
	if err, ok := r.(error); ok {
		return fmt.Sprintf("callback panicked: %v", err)
	}
	return fmt.Sprintf("callback panicked: %v", r)
}
