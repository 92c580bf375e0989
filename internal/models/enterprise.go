package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Enterprise is one surveyed unit, tied back to a frame entry through its
// DSL number.
type Enterprise struct {
	Base
	Name       string `gorm:"not null" json:"name" validate:"required,min=2"`
	DSLNumber  string `gorm:"uniqueIndex;not null" json:"dslNumber" validate:"required"`
	Sector     string `json:"sector"`
	State      string `json:"state"`
	District   string `json:"district"`
	Address    string `json:"address"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone"`
	FrameID    string `gorm:"type:uuid;default:NULL" json:"frameId,omitempty"`
	Frame      *Frame `json:"frame,omitempty"`
}

// Frame is an uploaded enumeration of enterprises to be surveyed.
type Frame struct {
	Base
	Name         string `gorm:"not null" json:"name" validate:"required"`
	SurveyYear   string `gorm:"not null" json:"surveyYear" validate:"required"`
	DocumentPath string `json:"documentPath,omitempty"`
	// SignedURL is resolved on read through the registered document URL
	// generator; never stored.
	SignedURL string `gorm:"-" json:"signedUrl,omitempty"`
	RowCount  int    `gorm:"default:0" json:"rowCount"`
}

func (f *Frame) AfterFind(tx *gorm.DB) error {
	return resolveSignedURL(tx, f.DocumentPath, &f.SignedURL)
}

// FrameAllocation assigns a slice of a frame to a field office for data
// collection.
type FrameAllocation struct {
	Base
	FrameID    string `gorm:"type:uuid;not null;index" json:"frameId" validate:"required,uuid"`
	Frame      *Frame `json:"frame,omitempty"`
	OfficeType string `gorm:"not null" json:"officeType" validate:"required"`
	OfficeCode string `gorm:"not null" json:"officeCode" validate:"required"`
	FromDSL    string `json:"fromDsl"`
	ToDSL      string `json:"toDsl"`
}

// SurveyTemplate names a schedule that can be bulk-assigned to enterprises.
type SurveyTemplate struct {
	Base
	Name       string          `gorm:"not null" json:"name" validate:"required"`
	ScheduleID string          `gorm:"type:uuid;not null" json:"scheduleId" validate:"required,uuid"`
	Schedule   *SurveySchedule `json:"schedule,omitempty"`
	SurveyYear string          `json:"surveyYear"`
}

// EnterpriseSurvey is the assignment of a survey template to an enterprise,
// with its own status vocabulary independent of the scrutiny workflow.
type EnterpriseSurvey struct {
	Base
	EnterpriseID string           `gorm:"type:uuid;not null;index:idx_ent_tpl,unique" json:"enterpriseId" validate:"required,uuid"`
	Enterprise   *Enterprise      `json:"enterprise,omitempty"`
	TemplateID   string           `gorm:"type:uuid;not null;index:idx_ent_tpl,unique" json:"templateId" validate:"required,uuid"`
	Template     *SurveyTemplate  `json:"template,omitempty"`
	Status       AssignmentStatus `gorm:"not null;default:'assigned'" json:"status" validate:"required,assignment_status"`
	DueDate      *time.Time       `json:"dueDate,omitempty"`
	AssignedBy   string           `gorm:"type:uuid;default:NULL" json:"assignedBy,omitempty"`
}

// EffectiveStatus derives overdue from the due date. Overdue is a view over
// assigned/in_progress, not a stored state.
func (e *EnterpriseSurvey) EffectiveStatus(now time.Time) AssignmentStatus {
	if e.DueDate != nil && now.After(*e.DueDate) {
		if e.Status == AssignmentStatusAssigned || e.Status == AssignmentStatusInProgress {
			return AssignmentStatusOverdue
		}
	}
	return e.Status
}

// Notice is a generated survey notice for one enterprise. The rendered
// document lives in object storage under DocumentPath.
type Notice struct {
	Base
	EnterpriseID string       `gorm:"type:uuid;not null;index" json:"enterpriseId" validate:"required,uuid"`
	Enterprise   *Enterprise  `json:"enterprise,omitempty"`
	FrameID      string       `gorm:"type:uuid;default:NULL" json:"frameId,omitempty"`
	DSLNumber    string       `gorm:"not null" json:"dslNumber" validate:"required"`
	SurveyYear   string       `json:"surveyYear"`
	Status       NoticeStatus `gorm:"not null;default:'PENDING'" json:"status" validate:"required,oneof=PENDING DISPATCHED FAILED"`
	DocumentPath string       `json:"documentPath,omitempty"`
	SignedURL    string       `gorm:"-" json:"signedUrl,omitempty"`
	DispatchedAt *time.Time   `json:"dispatchedAt,omitempty"`
}

func (n *Notice) AfterFind(tx *gorm.DB) error {
	return resolveSignedURL(tx, n.DocumentPath, &n.SignedURL)
}

// Notification is a user-facing message row written by event subscribers.
type Notification struct {
	Base
	UserID  string `gorm:"type:uuid;not null;index" json:"userId"`
	Title   string `gorm:"not null" json:"title"`
	Message string `json:"message"`
	Read    bool   `gorm:"default:false" json:"read"`
}

// AuditLog records who did what to which entity. Written by the audit
// event subscriber, never by handlers directly.
type AuditLog struct {
	Base
	UserID     string         `gorm:"type:uuid;default:NULL;index" json:"userId,omitempty"`
	Action     string         `gorm:"not null;index" json:"action"`
	EntityType string         `gorm:"not null" json:"entityType"`
	EntityID   string         `gorm:"index" json:"entityId"`
	Detail     datatypes.JSON `gorm:"type:jsonb" json:"detail,omitempty"`
	IPAddress  string         `json:"ipAddress,omitempty"`
}
