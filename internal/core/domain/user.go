package domain

import "github.com/google/uuid"

// AccountOwner is the customer an account belongs to.
// Only the contact details needed for notifications are loaded.
type AccountOwner struct {
	ID         uuid.UUID
	FirstName  string
	LastName   string
	Email      string
	TelegramID *int64 // Nullable
}

// FullName joins first and last name, skipping empty parts.
func (o AccountOwner) FullName() string {
	switch {
	case o.FirstName == "":
		return o.LastName
	case o.LastName == "":
		return o.FirstName
	}
	return o.FirstName + " " + o.LastName
}
