package models

import (
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Username    string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	FirstName   string    `gorm:"type:varchar(150)" json:"first_name"`
	LastName    string    `gorm:"type:varchar(150)" json:"last_name"`
	Bio         string    `gorm:"type:varchar(200)" json:"bio"`
	Role        Role      `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	IsSuperuser bool      `gorm:"not null;default:false" json:"-"`
	// Argon2id hash of the one-time confirmation code. Never exposed.
	ConfirmationHash string    `gorm:"type:varchar(255)" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user passes the admin gate: the admin role
// or the superuser flag, never a raw string comparison at call sites.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsSuperuser
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}
