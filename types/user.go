package types

import "time"

// User represents a member of the harbour office staff.
type User struct {
	// ID is the opaque identifier assigned when the account is created.
	ID string `json:"id" db:"id"`

	// Username is the display name of the staff member.
	Username string `json:"username" db:"username"`

	// Email is the unique address used to log in.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
