// Package prefs persists small per-user settings such as the last active
// project. Values are plain strings with no schema versioning.
package prefs

import (
	"context"

	"github.com/google/uuid"
)

type Store interface {
	// Get returns the value for key and whether it was set.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// LastActiveProjectKey is where a user's active project id is remembered.
func LastActiveProjectKey(userID uuid.UUID) string {
	return "lastActiveProject:" + userID.String()
}

// PreferredCurrencyKey is the currency a user picks for new projects.
func PreferredCurrencyKey(userID uuid.UUID) string {
	return "preferredCurrency:" + userID.String()
}
