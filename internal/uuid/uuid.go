// Package uuid wraps UUID generation so the rest of the codebase
// doesn't depend on a specific provider.
package uuid

import "github.com/google/uuid"

// New returns a new random UUID string.
func New() string {
	return uuid.NewString()
}
