package services

import (
	"encoding/json"
	"fmt"

	"assse/internal/events"
	"assse/internal/models"
	console "assse/internal/utils/logger"

	"gorm.io/gorm"
)

// Notifier subscribes to domain events and writes notification and audit
// rows. Handlers never write these tables directly; everything funnels
// through the event bus so a failed notification cannot fail a request.
type Notifier struct {
	db  *gorm.DB
	log *console.Logger
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{
		db:  db,
		log: console.New("notifier"),
	}
}

// Register wires the subscribers onto the global event bus. Call once at
// startup.
func (n *Notifier) Register() {
	events.On("survey_instances.transitioned", n.onSurveyTransitioned)
	events.On("scrutiny_comments.added", n.onCommentAdded)
	events.On("scrutiny_comments.resolved", n.onCommentResolved)
	events.On("enterprise_surveys.overdue", n.onAssignmentOverdue)
	events.On("approval_workflows.created", n.onWorkflowChanged("workflow.create"))
	events.On("approval_workflows.updated", n.onWorkflowChanged("workflow.update"))
}

func (n *Notifier) onSurveyTransitioned(data interface{}) {
	event, ok := data.(*SurveyEvent)
	if !ok || event.Survey == nil {
		return
	}

	n.audit(event.ActorID, "survey."+string(event.Action), "survey_instances", event.Survey.ID, map[string]string{
		"status": string(event.Survey.Status),
		"detail": event.Detail,
	})

	// Terminal decisions and refer-backs go to the compiler; submissions go
	// to the assigned scrutinizer once one exists.
	switch event.Survey.Status {
	case models.SurveyStatusApproved:
		n.notify(event.Survey.CompilerID, "Survey approved",
			fmt.Sprintf("Survey %s has been approved.", event.Survey.ID))
	case models.SurveyStatusRejected:
		n.notify(event.Survey.CompilerID, "Survey rejected",
			fmt.Sprintf("Survey %s has been rejected. Check the scrutiny comments.", event.Survey.ID))
	case models.SurveyStatusDraft:
		n.notify(event.Survey.CompilerID, "Survey referred back",
			fmt.Sprintf("Survey %s was referred back for correction.", event.Survey.ID))
	case models.SurveyStatusScrutiny:
		if event.Survey.ScrutinizerID != "" && string(event.Action) == "start_scrutiny" {
			n.notify(event.Survey.ScrutinizerID, "Scrutiny started",
				fmt.Sprintf("You picked up survey %s for scrutiny.", event.Survey.ID))
		}
	}
}

func (n *Notifier) onCommentAdded(data interface{}) {
	c, ok := data.(*models.ScrutinyComment)
	if !ok {
		return
	}
	n.audit(c.ScrutinizerID, "scrutiny.comment", "scrutiny_comments", c.ID, map[string]string{
		"surveyId": c.SurveyID,
		"blockId":  c.BlockID,
		"fieldId":  c.FieldID,
	})
}

func (n *Notifier) onCommentResolved(data interface{}) {
	c, ok := data.(*models.ScrutinyComment)
	if !ok {
		return
	}
	n.audit("", "scrutiny.resolve", "scrutiny_comments", c.ID, nil)
}

func (n *Notifier) onAssignmentOverdue(data interface{}) {
	es, ok := data.(*models.EnterpriseSurvey)
	if !ok {
		return
	}
	n.audit("", "assignment.overdue", "enterprise_surveys", es.ID, map[string]string{
		"enterpriseId": es.EnterpriseID,
	})
	if es.AssignedBy != "" {
		n.notify(es.AssignedBy, "Assignment overdue",
			fmt.Sprintf("Enterprise survey %s is past its due date.", es.ID))
	}
}

func (n *Notifier) onWorkflowChanged(action string) events.EventHandler {
	return func(data interface{}) {
		wf, ok := data.(*models.ApprovalWorkflow)
		if !ok {
			return
		}
		n.audit("", action, "approval_workflows", wf.ID, map[string]string{"name": wf.Name})
	}
}

func (n *Notifier) notify(userID, title, message string) {
	if userID == "" {
		return
	}
	row := &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
	}
	if err := n.db.Create(row).Error; err != nil {
		n.log.Warn("failed to write notification for %s: %v", userID, err)
	}
}

func (n *Notifier) audit(userID, action, entityType, entityID string, detail map[string]string) {
	row := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if detail != nil {
		if data, err := json.Marshal(detail); err == nil {
			row.Detail = data
		}
	}
	if err := n.db.Create(row).Error; err != nil {
		n.log.Warn("failed to write audit row %s on %s/%s: %v", action, entityType, entityID, err)
	}
}
