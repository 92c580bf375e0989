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

// SurveyStatus is the scrutiny-workflow status of a survey instance.
type SurveyStatus string

const (
	SurveyStatusDraft     SurveyStatus = "draft"
	SurveyStatusSubmitted SurveyStatus = "submitted"
	SurveyStatusScrutiny  SurveyStatus = "scrutiny"
	SurveyStatusApproved  SurveyStatus = "approved"
	SurveyStatusRejected  SurveyStatus = "rejected"
)

// AssignmentStatus is the status of an enterprise-survey assignment.
// Overdue is derived from the due date, never stored.
type AssignmentStatus string

const (
	AssignmentStatusAssigned   AssignmentStatus = "assigned"
	AssignmentStatusInProgress AssignmentStatus = "in_progress"
	AssignmentStatusCompleted  AssignmentStatus = "completed"
	AssignmentStatusOverdue    AssignmentStatus = "overdue"
	AssignmentStatusCancelled  AssignmentStatus = "cancelled"
)

// NoticeStatus tracks the dispatch lifecycle of a survey notice.
type NoticeStatus string

const (
	NoticeStatusPending    NoticeStatus = "PENDING"
	NoticeStatusDispatched NoticeStatus = "DISPATCHED"
	NoticeStatusFailed     NoticeStatus = "FAILED"
)

// IsValidSurveyStatus checks if a given status is valid
func IsValidSurveyStatus(status SurveyStatus) bool {
	switch status {
	case SurveyStatusDraft, SurveyStatusSubmitted, SurveyStatusScrutiny,
		SurveyStatusApproved, SurveyStatusRejected:
		return true
	default:
		return false
	}
}

// IsValidAssignmentStatus checks if a given status is valid as a stored
// assignment status. Overdue is excluded on purpose.
func IsValidAssignmentStatus(status AssignmentStatus) bool {
	switch status {
	case AssignmentStatusAssigned, AssignmentStatusInProgress,
		AssignmentStatusCompleted, AssignmentStatusCancelled:
		return true
	default:
		return false
	}
}
