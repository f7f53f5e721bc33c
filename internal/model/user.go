package model

import "time"

// DefaultName is stored when a name or last name is not supplied.
const DefaultName = "N/A"

// Lifecycle is either active or deleted at a point in time. The zero value is active.
type Lifecycle struct {
	deletedAt time.Time
	deleted   bool
}

// Active returns the active state.
func Active() Lifecycle {
	return Lifecycle{}
}

// DeletedAt returns the soft-deleted state.
func DeletedAt(at time.Time) Lifecycle {
	return Lifecycle{deletedAt: at, deleted: true}
}

// IsDeleted reports whether the user has been soft-deleted.
func (l Lifecycle) IsDeleted() bool {
	return l.deleted
}

// DeletedAt returns the deletion time and whether the user is deleted.
func (l Lifecycle) DeletedAt() (time.Time, bool) {
	return l.deletedAt, l.deleted
}

// User represents an account.
type User struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	LastName         string    `json:"last_name"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"` // Never expose in JSON
	AuthenticationID string    `json:"authentication_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	State            Lifecycle `json:"-"`
}

// NewUser is the sign-up and direct creation payload.
type NewUser struct {
	Name             string `json:"name"`
	LastName         string `json:"last_name"`
	Username         string `json:"username"`
	Password         string `json:"password"`
	Email            string `json:"email"`
	AuthenticationID string `json:"authentication_id"`
}

// User builds the account to persist, with the plaintext password replaced
// by passwordHash and empty names defaulted.
func (n NewUser) User(passwordHash string) *User {
	u := &User{
		Name:             n.Name,
		LastName:         n.LastName,
		Username:         n.Username,
		Email:            n.Email,
		PasswordHash:     passwordHash,
		AuthenticationID: n.AuthenticationID,
		State:            Active(),
	}
	if u.Name == "" {
		u.Name = DefaultName
	}
	if u.LastName == "" {
		u.LastName = DefaultName
	}
	return u
}

// UserPatch is a partial update; nil fields are left untouched.
type UserPatch struct {
	Name             *string `json:"name,omitempty"`
	LastName         *string `json:"last_name,omitempty"`
	Username         *string `json:"username,omitempty"`
	Password         *string `json:"password,omitempty"`
	Email            *string `json:"email,omitempty"`
	AuthenticationID *string `json:"authentication_id,omitempty"`
}

// Apply merges the present fields of p over u. The password, when present,
// must already be hashed by the caller.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Password != nil {
		u.PasswordHash = *p.Password
	}
	if p.AuthenticationID != nil {
		u.AuthenticationID = *p.AuthenticationID
	}
}

// Credentials is a sign-in payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// DeleteResult is returned by a soft delete.
type DeleteResult struct {
	Deleted bool `json:"deleted"`
}
