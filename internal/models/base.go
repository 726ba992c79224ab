package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base contains common columns for all tables
type Base struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	DeletedAt time.Time `gorm:"index;default:NULL" json:"-" validate:"omitempty"`
	IsDeleted bool      `json:"isDeleted" default:"false"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *Base) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "NEW"
	LeadStatusContacted LeadStatus = "CONTACTED"
	LeadStatusQualified LeadStatus = "QUALIFIED"
	LeadStatusWon       LeadStatus = "WON"
	LeadStatusLost      LeadStatus = "LOST"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusDone      TaskStatus = "DONE"
	TaskStatusCancelled TaskStatus = "CANCELLED"
)

type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "DRAFT"
	QuotationStatusSent     QuotationStatus = "SENT"
	QuotationStatusAccepted QuotationStatus = "ACCEPTED"
	QuotationStatusRejected QuotationStatus = "REJECTED"
)

type ReservationStatus string

const (
	ReservationStatusHold      ReservationStatus = "HOLD"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusExpired   ReservationStatus = "EXPIRED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

type ActivityType string

const (
	ActivityLogin             ActivityType = "LOGIN"
	ActivityLogout            ActivityType = "LOGOUT"
	ActivityPermissionsUpdate ActivityType = "PERMISSIONS_UPDATE"
	ActivityPermissionsReset  ActivityType = "PERMISSIONS_RESET"
	ActivityRecordCreated     ActivityType = "RECORD_CREATED"
	ActivityRecordDeleted     ActivityType = "RECORD_DELETED"
)
