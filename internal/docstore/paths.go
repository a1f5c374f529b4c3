package docstore

import (
	"github.com/google/uuid"
)

const (
	// UsersCollection holds one profile document per user.
	UsersCollection = "users"
	// EmailsCollection maps a normalized email address to a user id.
	EmailsCollection = "emails"
)

// Projects is the collection of a user's projects.
func Projects(userID uuid.UUID) string {
	return UsersCollection + "/" + userID.String() + "/projects"
}

// Transactions is the collection of one project's transactions.
func Transactions(userID, projectID uuid.UUID) string {
	return Projects(userID) + "/" + projectID.String() + "/transactions"
}
