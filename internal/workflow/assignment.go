package workflow

import (
	"fmt"

	"assse/internal/models"
)

// AssignmentAction is a trigger on an enterprise-survey assignment.
type AssignmentAction string

const (
	AssignmentActionStart    AssignmentAction = "start"
	AssignmentActionComplete AssignmentAction = "complete"
	AssignmentActionCancel   AssignmentAction = "cancel"
)

// assignment transitions; overdue never appears here because it is derived
// from the due date, not stored.
var assignmentTransitions = map[models.AssignmentStatus]map[AssignmentAction]models.AssignmentStatus{
	models.AssignmentStatusAssigned: {
		AssignmentActionStart:  models.AssignmentStatusInProgress,
		AssignmentActionCancel: models.AssignmentStatusCancelled,
	},
	models.AssignmentStatusInProgress: {
		AssignmentActionComplete: models.AssignmentStatusCompleted,
		AssignmentActionCancel:   models.AssignmentStatusCancelled,
	},
}

// TransitionAssignment returns the next stored status for an assignment
// action, or an error when the action is not permitted.
func TransitionAssignment(current models.AssignmentStatus, action AssignmentAction) (models.AssignmentStatus, error) {
	byAction, ok := assignmentTransitions[current]
	if !ok {
		return "", fmt.Errorf("assignment in terminal status %q", current)
	}
	next, ok := byAction[action]
	if !ok {
		return "", fmt.Errorf("action %q not permitted from assignment status %q", action, current)
	}
	return next, nil
}
