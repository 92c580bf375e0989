package models

import (
	"time"
)

type User struct {
	Base
	Email      string `gorm:"uniqueIndex;not null" json:"email"`
	Password   string `gorm:"not null" json:"-"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	OfficeType string `json:"officeType,omitempty"` // e.g. "RO", "DS", "SSO" field office
	Roles      []Role `gorm:"many2many:user_roles;" json:"roles,omitempty"`
}

// RoleCodes returns the codes of all roles assigned to the user.
func (u *User) RoleCodes() []string {
	codes := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		codes = append(codes, r.Code)
	}
	return codes
}

// IsScrutinizer reports whether any assigned role is a scrutiny role.
func (u *User) IsScrutinizer() bool {
	for _, r := range u.Roles {
		if r.IsScrutinizer {
			return true
		}
	}
	return false
}

// IsAdmin reports whether any assigned role is an admin role or carries the
// wildcard permission.
func (u *User) IsAdmin() bool {
	for _, r := range u.Roles {
		if r.IsAdmin || r.Code == RoleCodeAdmin || r.HasWildcard() {
			return true
		}
	}
	return false
}

type AuthTransaction struct {
	Base
	UserID    string    `gorm:"type:uuid;not null" json:"userId"`
	User      *User     `json:"user,omitempty"`
	Token     string    `gorm:"not null" json:"token"`
	Refresh   string    `gorm:"not null" json:"refresh"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	ExpiresAt time.Time `json:"expiresAt"`
}
