package user

import "time"

// User is the internal user record. ID is the numeric key other services
// resolve to; Subject is the identity-provider id the token carries.
type User struct {
	ID         int64
	Subject    string
	Email      string
	GivenName  string
	FamilyName string
	Phone      *string
	Role       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Placeholder values applied when a token omits optional profile claims.
// The columns are NOT NULL; absent claims must never propagate as nulls.
const (
	DefaultEmail      = "no-email@clinic.local"
	DefaultGivenName  = "Unknown"
	DefaultFamilyName = "Unknown"
	DefaultRole       = "user"
)
