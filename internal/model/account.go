package model

import "time"

// Account represents a registered user as stored in the `accounts` table.
// Email and Username are each unique across all accounts.  PasswordHash is
// an opaque bcrypt digest and must never leave the process: handlers render
// accounts through their own response types.
//
// Fields:
//
//	ID           – primary key identifier, assigned by the database.
//	Email        – unique email address, case-sensitive as stored.
//	Username     – unique display name.
//	PasswordHash – bcrypt hashed password.
//	IsActive     – whether the account may log in.
//	CreatedAt    – timestamp of creation.
type Account struct {
	ID           uint64    // accounts.id
	Email        string    // accounts.email
	Username     string    // accounts.username
	PasswordHash string    // accounts.password_hash
	IsActive     bool      // accounts.is_active
	CreatedAt    time.Time // accounts.created_at
}
