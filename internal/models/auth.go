package models

import (
	"time"

	"leadcrm/internal/permissions"
)

type User struct {
	Base
	Email          string           `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	Password       string           `gorm:"not null" json:"-"`
	FirstName      string           `json:"firstName"`
	LastName       string           `json:"lastName"`
	Role           permissions.Role `gorm:"not null;default:'USER'" json:"role" validate:"required,crm_role"`
	CountryID      *string          `gorm:"type:uuid" json:"countryId,omitempty" validate:"omitempty,uuid"`
	Country        *Country         `json:"country,omitempty"`
	IsActive       bool             `gorm:"not null;default:true" json:"isActive"`
	UserPermission *UserPermission  `gorm:"foreignKey:UserID" json:"userPermission,omitempty"`
	Leads          []Lead           `gorm:"foreignKey:AssignedToID" json:"leads,omitempty"`
	Tasks          []Task           `gorm:"foreignKey:AssignedToID" json:"tasks,omitempty"`
}

// Principal resolves the authorization context for this user. An
// unreadable stored payload leaves the set empty, which denies
// everything; a missing row falls back to the role defaults.
func (u *User) Principal() *permissions.Principal {
	if u == nil {
		return nil
	}

	p := &permissions.Principal{
		UserID:   u.ID,
		Role:     u.Role,
		Disabled: !u.IsActive || u.IsDeleted,
	}
	if u.CountryID != nil {
		p.CountryID = *u.CountryID
	}

	if u.UserPermission == nil || len(u.UserPermission.Permissions) == 0 {
		p.Set = permissions.DefaultSet(u.Role)
		return p
	}

	set, err := permissions.Decode(u.UserPermission.Permissions)
	if err != nil {
		// Deny-all rather than 500ing every request over bad data.
		return p
	}
	p.Set = set
	return p
}

type PasswordReset struct {
	Base
	User      *User     `json:"user,omitempty"`
	UserID    string    `gorm:"type:uuid;not null" json:"userId"`
	Code      string    `gorm:"not null" json:"code"`
	Used      bool      `gorm:"default:false" json:"used"`
	ExpiresAt time.Time `json:"expiresAt"`
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
