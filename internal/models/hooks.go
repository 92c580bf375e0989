package models

import (
	"assse/internal/events"

	"gorm.io/gorm"
)

func (s *SurveyInstance) AfterCreate(tx *gorm.DB) error {
	events.Emit("survey_instances.created", s)
	return nil
}

func (c *ScrutinyComment) AfterCreate(tx *gorm.DB) error {
	events.Emit("scrutiny_comments.created", c)
	return nil
}

func (e *EnterpriseSurvey) AfterCreate(tx *gorm.DB) error {
	events.Emit("enterprise_surveys.created", e)
	return nil
}
