package model

import "time"

// User represents a directory user record as stored in the `users` table.
// The primary key is the institutional identifier, in practice the user's
// email address.  The json tags are omitted here because these structs are
// primarily used internally by the repository layer; handlers define
// separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – unique identifier (email).
//  FullName     – display name of the user.
//  Role         – one of the enumerated roles (ADMIN, TEACHER, STUDENT).
//  PasswordHash – bcrypt hashed credential.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           string    // users.id
	FullName     string    // users.full_name
	Role         Role      // users.role
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Identity is the sanitized view of a user handed out by the directory
// after authentication or lookup.  It never carries the credential hash.
type Identity struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

// Identity projects the user into its directory view.
func (u User) Identity() Identity {
	return Identity{ID: u.ID, FullName: u.FullName, Role: u.Role}
}
