package models

import (
	"time"

	"gorm.io/datatypes"
)

// SurveyInstance is one enterprise's filled survey moving through the
// scrutiny workflow. Status is the sole driver of which role may act next.
type SurveyInstance struct {
	Base
	EnterpriseID  string          `gorm:"type:uuid;not null;index" json:"enterpriseId" validate:"required,uuid"`
	Enterprise    *Enterprise     `json:"enterprise,omitempty"`
	ScheduleID    string          `gorm:"type:uuid;not null;index" json:"scheduleId" validate:"required,uuid"`
	Schedule      *SurveySchedule `json:"schedule,omitempty"`
	WorkflowName  string          `json:"workflowName,omitempty"` // by name only, no FK
	Status        SurveyStatus    `gorm:"not null;default:'draft';index" json:"status" validate:"required,survey_status"`
	CompilerID    string          `gorm:"type:uuid;default:NULL" json:"compilerId,omitempty"`
	Compiler      *User           `json:"compiler,omitempty"`
	ScrutinizerID string          `gorm:"type:uuid;default:NULL" json:"scrutinizerId,omitempty"`
	Scrutinizer   *User           `json:"scrutinizer,omitempty"`
	SubmittedAt   *time.Time      `json:"submittedAt,omitempty"`
	DecidedAt     *time.Time      `json:"decidedAt,omitempty"`
	Responses     []SurveyResponse `gorm:"foreignKey:SurveyID;references:ID;constraint:OnDelete:CASCADE" json:"responses,omitempty"`
}

// SurveyResponse holds the entered values of one block of one survey
// instance. Values are keyed by field id for FIELDS blocks and by row id
// for GRID blocks.
type SurveyResponse struct {
	Base
	SurveyID string         `gorm:"type:uuid;not null;index:idx_survey_block,unique" json:"surveyId" validate:"required,uuid"`
	BlockID  string         `gorm:"type:uuid;not null;index:idx_survey_block,unique" json:"blockId" validate:"required,uuid"`
	Values   datatypes.JSON `gorm:"type:jsonb" json:"values,omitempty"`
	Complete bool           `gorm:"default:false" json:"complete"`
}

// UpdateColumns forces the complete flag into every update statement so that
// reopening a finished block persists.
func (r *SurveyResponse) UpdateColumns() []string {
	return []string{"survey_id", "block_id", "values", "complete"}
}

// ScrutinyComment is an advisory annotation a scrutinizer attaches to one
// field (or grid row) of one block. Comments never block a status
// transition on their own.
type ScrutinyComment struct {
	Base
	SurveyID      string `gorm:"type:uuid;not null;index" json:"surveyId" validate:"required,uuid"`
	BlockID       string `gorm:"type:uuid;not null;index" json:"blockId" validate:"required,uuid"`
	FieldID       string `gorm:"type:uuid;not null;index" json:"fieldId" validate:"required,uuid"`
	Comment       string `gorm:"not null" json:"comment" validate:"required"`
	ScrutinizerID string `gorm:"type:uuid;not null" json:"scrutinizerId" validate:"required,uuid"`
	Scrutinizer   *User  `json:"scrutinizer,omitempty"`
	Resolved      bool   `gorm:"default:false" json:"resolved"`
}
