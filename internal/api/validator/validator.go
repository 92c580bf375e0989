package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"assse/internal/models"

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

	// Register custom validation tags
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validations
	err := v.RegisterValidation("survey_status", validateSurveyStatus)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("assignment_status", validateAssignmentStatus)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("block_type", validateBlockType)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("role_code", validateRoleCode)
	if err != nil {
		return nil
	}

	return &CustomValidator{validator: v}
}

// Custom validation functions
func validateSurveyStatus(fl playgroundvalidator.FieldLevel) bool {
	return models.IsValidSurveyStatus(models.SurveyStatus(fl.Field().String()))
}

func validateAssignmentStatus(fl playgroundvalidator.FieldLevel) bool {
	return models.IsValidAssignmentStatus(models.AssignmentStatus(fl.Field().String()))
}

func validateBlockType(fl playgroundvalidator.FieldLevel) bool {
	t := models.BlockType(fl.Field().String())
	return t == models.BlockTypeFields || t == models.BlockTypeGrid
}

func validateRoleCode(fl playgroundvalidator.FieldLevel) bool {
	code := fl.Field().String()
	validCodes := map[string]bool{
		models.RoleCodeAdmin:      true,
		models.RoleCodeRO:         true,
		models.RoleCodeDS:         true,
		models.RoleCodeSSO:        true,
		models.RoleCodeEnterprise: true,
	}
	return validCodes[code]
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

// RegisterRequest Request validation structs based on models
type RegisterRequest struct {
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=8"`
	FirstName string   `json:"firstName" validate:"required"`
	LastName  string   `json:"lastName"`
	RoleCodes []string `json:"roleCodes" validate:"omitempty,dive,role_code"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type WorkflowStepRequest struct {
	Name         string `json:"name" validate:"required"`
	RoleCode     string `json:"roleCode" validate:"required,role_code"`
	OfficeType   string `json:"officeType"`
	Required     bool   `json:"required"`
	CanReject    bool   `json:"canReject"`
	CanReferBack bool   `json:"canReferBack"`
}

type WorkflowRequest struct {
	Name        string                `json:"name" validate:"required,min=2"`
	Description string                `json:"description"`
	IsActive    bool                  `json:"isActive"`
	Steps       []WorkflowStepRequest `json:"steps" validate:"required,min=1,dive"`
}

type SurveyActionRequest struct {
	StepID  string `json:"stepId" validate:"omitempty,uuid"`
	BlockID string `json:"blockId" validate:"omitempty,uuid"`
	FieldID string `json:"fieldId" validate:"omitempty,uuid"`
	Comment string `json:"comment"`
}

type ScrutinyCommentRequest struct {
	SurveyID string `json:"surveyId" validate:"required,uuid"`
	BlockID  string `json:"blockId" validate:"required,uuid"`
	FieldID  string `json:"fieldId" validate:"required,uuid"`
	Comment  string `json:"comment" validate:"required"`
}

type BulkAssignRequest struct {
	TemplateID    string     `json:"templateId" validate:"required,uuid"`
	EnterpriseIDs []string   `json:"enterpriseIds" validate:"required,min=1,dive,uuid"`
	DueDate       *time.Time `json:"dueDate" validate:"omitempty,gt=now"`
}

type BulkImportRequest struct {
	Enterprises []EnterpriseRequest `json:"enterprises" validate:"required,min=1,dive"`
}

type EnterpriseRequest struct {
	Name      string `json:"name" validate:"required,min=2"`
	DSLNumber string `json:"dslNumber" validate:"required"`
	Sector    string `json:"sector"`
	State     string `json:"state"`
	District  string `json:"district"`
	Address   string `json:"address"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
}

type AssignmentActionRequest struct {
	Action string `json:"action" validate:"required,oneof=start complete cancel"`
}

type RolePermissionRequest struct {
	RoleID     string `json:"roleId" validate:"required,uuid"`
	MenuItemID string `json:"menuItemId" validate:"required,uuid"`
	CanView    bool   `json:"canView"`
	CanCreate  bool   `json:"canCreate"`
	CanEdit    bool   `json:"canEdit"`
	CanDelete  bool   `json:"canDelete"`
}

type SurveyResponseRequest struct {
	SurveyID string                 `json:"surveyId" validate:"required,uuid"`
	BlockID  string                 `json:"blockId" validate:"required,uuid"`
	Values   map[string]interface{} `json:"values" validate:"required"`
	Complete bool                   `json:"complete"`
}
