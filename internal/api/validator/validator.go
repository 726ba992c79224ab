package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"leadcrm/internal/permissions"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ValidationErrors wraps the validator's ValidationErrors
type ValidationErrors []playgroundvalidator.FieldError

// CustomValidator wraps go-playground/validator
type CustomValidator struct {
	validator *playgroundvalidator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() echo.Validator {
	v := playgroundvalidator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validations
	err := v.RegisterValidation("crm_role", validateRole)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("perm_scope", validatePermScope)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("lead_status", validateLeadStatus)
	if err != nil {
		return nil
	}

	return &CustomValidator{validator: v}
}

// Custom validation functions
func validateRole(fl playgroundvalidator.FieldLevel) bool {
	return permissions.Role(fl.Field().String()).Valid()
}

func validatePermScope(fl playgroundvalidator.FieldLevel) bool {
	switch permissions.Scope(fl.Field().String()) {
	case permissions.ScopeSelf, permissions.ScopeTeam, permissions.ScopeAll:
		return true
	default:
		return false
	}
}

func validateLeadStatus(fl playgroundvalidator.FieldLevel) bool {
	status := fl.Field().String()
	return status == "NEW" || status == "CONTACTED" || status == "QUALIFIED" || status == "WON" || status == "LOST"
}

// Validate implements echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		var validationErrors playgroundvalidator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return ValidationErrors(validationErrors)
		}
		return err
	}
	return nil
}

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	var fields []string
	for _, err := range ve {
		fields = append(fields, err.Field())
	}
	return fmt.Sprintf("validation failed on fields: %s", strings.Join(fields, ", "))
}

// UserRequest Request validation structs based on models
type UserRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Role      string  `json:"role" validate:"required,crm_role"`
	CountryID *string `json:"countryId" validate:"omitempty,uuid"`
}

type LeadRequest struct {
	Name         string  `json:"name" validate:"required,min=2"`
	Email        string  `json:"email" validate:"omitempty,email"`
	Phone        string  `json:"phone"`
	Source       string  `json:"source"`
	Status       string  `json:"status" validate:"required,lead_status"`
	AssignedToID string  `json:"assignedToId" validate:"omitempty,uuid"`
	CountryID    *string `json:"countryId" validate:"omitempty,uuid"`
}

type QuotationRequest struct {
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	Currency     string  `json:"currency" validate:"required,len=3"`
	Status       string  `json:"status" validate:"required,oneof=DRAFT SENT ACCEPTED REJECTED"`
	LeadID       string  `json:"leadId" validate:"required,uuid"`
	AssignedToID string  `json:"assignedToId" validate:"omitempty,uuid"`
}

type ReservationRequest struct {
	QuotationID string `json:"quotationId" validate:"required,uuid"`
	Status      string `json:"status" validate:"required,oneof=HOLD CONFIRMED EXPIRED CANCELLED"`
	ExpiresAt   string `json:"expiresAt" validate:"omitempty"`
}
