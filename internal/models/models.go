package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Country struct {
	Base
	Name  string `gorm:"uniqueIndex;not null" json:"name" validate:"required,min=2"`
	Code  string `gorm:"uniqueIndex;not null" json:"code" validate:"required,len=2"`
	Users []User `gorm:"foreignKey:CountryID" json:"users,omitempty"`
}

type Lead struct {
	Base
	Name         string     `gorm:"not null" json:"name" validate:"required,min=2"`
	Email        string     `json:"email" validate:"omitempty,email"`
	Phone        string     `json:"phone"`
	Source       string     `json:"source"`
	Status       LeadStatus `gorm:"not null;default:'NEW'" json:"status" validate:"required,lead_status"`
	AssignedToID string     `gorm:"type:uuid;index" json:"assignedToId" validate:"omitempty,uuid"`
	AssignedTo   *User      `json:"assignedTo,omitempty"`
	CountryID    *string    `gorm:"type:uuid;index" json:"countryId,omitempty" validate:"omitempty,uuid"`
	Country      *Country   `json:"country,omitempty"`
	Tasks        []Task     `gorm:"foreignKey:LeadID" json:"tasks,omitempty"`
}

type Task struct {
	Base
	Title        string     `gorm:"not null" json:"title" validate:"required"`
	Notes        string     `json:"notes"`
	Status       TaskStatus `gorm:"not null;default:'PENDING'" json:"status" validate:"required,oneof=PENDING DONE CANCELLED"`
	DueAt        time.Time  `json:"dueAt"`
	LeadID       string     `gorm:"type:uuid;index" json:"leadId" validate:"omitempty,uuid"`
	Lead         *Lead      `json:"lead,omitempty"`
	AssignedToID string     `gorm:"type:uuid;index" json:"assignedToId" validate:"omitempty,uuid"`
	AssignedTo   *User      `json:"assignedTo,omitempty"`
	CountryID    *string    `gorm:"type:uuid;index" json:"countryId,omitempty" validate:"omitempty,uuid"`
}

type Quotation struct {
	Base
	Reference    string          `gorm:"uniqueIndex;not null" json:"reference"`
	Amount       float64         `gorm:"not null" json:"amount" validate:"required,gt=0"`
	Currency     string          `gorm:"not null;default:'EUR'" json:"currency" validate:"required,len=3"`
	Status       QuotationStatus `gorm:"not null;default:'DRAFT'" json:"status" validate:"required,oneof=DRAFT SENT ACCEPTED REJECTED"`
	LeadID       string          `gorm:"type:uuid;not null;index" json:"leadId" validate:"required,uuid"`
	Lead         *Lead           `json:"lead,omitempty"`
	AssignedToID string          `gorm:"type:uuid;index" json:"assignedToId" validate:"omitempty,uuid"`
	AssignedTo   *User           `json:"assignedTo,omitempty"`
	CountryID    *string         `gorm:"type:uuid;index" json:"countryId,omitempty" validate:"omitempty,uuid"`
	Attachments  []Attachment    `gorm:"foreignKey:QuotationID" json:"attachments,omitempty"`
}

type Reservation struct {
	Base
	Status       ReservationStatus `gorm:"not null;default:'HOLD'" json:"status" validate:"required,oneof=HOLD CONFIRMED EXPIRED CANCELLED"`
	QuotationID  string            `gorm:"type:uuid;not null;index" json:"quotationId" validate:"required,uuid"`
	Quotation    *Quotation        `json:"quotation,omitempty"`
	AssignedToID string            `gorm:"type:uuid;index" json:"assignedToId" validate:"omitempty,uuid"`
	AssignedTo   *User             `json:"assignedTo,omitempty"`
	CountryID    *string           `gorm:"type:uuid;index" json:"countryId,omitempty" validate:"omitempty,uuid"`
	ExpiresAt    time.Time         `json:"expiresAt"`
}

// ActivityLog is the audit trail: logins, permission updates and
// resets, record lifecycle events.
type ActivityLog struct {
	Base
	UserID   string         `gorm:"type:uuid;index" json:"userId"`
	User     *User          `json:"user,omitempty"`
	Type     ActivityType   `gorm:"not null;index" json:"type"`
	Entity   string         `json:"entity"`
	EntityID string         `gorm:"index" json:"entityId"`
	Detail   datatypes.JSON `gorm:"type:jsonb" json:"detail,omitempty"`
}

type Attachment struct {
	Base
	QuotationID string `gorm:"type:uuid;index" json:"quotationId" validate:"omitempty,uuid"`
	LeadID      string `gorm:"type:uuid;index" json:"leadId" validate:"omitempty,uuid"`
	UploadedBy  string `gorm:"type:uuid" json:"uploadedBy" validate:"omitempty,uuid"`
	Path        string `gorm:"not null" json:"path" validate:"required"`
	Name        string `gorm:"not null" json:"name" validate:"required"`
	Size        int64  `gorm:"not null" json:"size" validate:"required,min=1"`
	Type        string `gorm:"not null" json:"type" validate:"required"`
	SignedURL   string `gorm:"-" json:"signedUrl,omitempty"` // Virtual field
}

func (a *Attachment) AfterFind(tx *gorm.DB) error {
	registryMu.RLock()
	generator := urlGenerator
	registryMu.RUnlock()

	if generator != nil {
		url, err := generator.GetSignedURL(tx.Statement.Context, a.Path, time.Hour)
		if err != nil {
			return fmt.Errorf("failed to generate signed URL: %w", err)
		}
		a.SignedURL = url
	}
	return nil
}
