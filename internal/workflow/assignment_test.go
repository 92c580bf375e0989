package workflow

import (
	"testing"
	"time"

	"assse/internal/models"
)

func TestTransitionAssignment(t *testing.T) {
	tests := []struct {
		name    string
		current models.AssignmentStatus
		action  AssignmentAction
		want    models.AssignmentStatus
		wantErr bool
	}{
		{"start", models.AssignmentStatusAssigned, AssignmentActionStart, models.AssignmentStatusInProgress, false},
		{"cancel while assigned", models.AssignmentStatusAssigned, AssignmentActionCancel, models.AssignmentStatusCancelled, false},
		{"complete", models.AssignmentStatusInProgress, AssignmentActionComplete, models.AssignmentStatusCompleted, false},
		{"cancel while in progress", models.AssignmentStatusInProgress, AssignmentActionCancel, models.AssignmentStatusCancelled, false},
		{"cannot complete before start", models.AssignmentStatusAssigned, AssignmentActionComplete, "", true},
		{"completed is terminal", models.AssignmentStatusCompleted, AssignmentActionCancel, "", true},
		{"cancelled is terminal", models.AssignmentStatusCancelled, AssignmentActionStart, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TransitionAssignment(tt.current, tt.action)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("next = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEffectiveStatusDerivesOverdue(t *testing.T) {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name   string
		status models.AssignmentStatus
		due    *time.Time
		want   models.AssignmentStatus
	}{
		{"assigned past due", models.AssignmentStatusAssigned, &past, models.AssignmentStatusOverdue},
		{"in progress past due", models.AssignmentStatusInProgress, &past, models.AssignmentStatusOverdue},
		{"completed past due stays completed", models.AssignmentStatusCompleted, &past, models.AssignmentStatusCompleted},
		{"cancelled past due stays cancelled", models.AssignmentStatusCancelled, &past, models.AssignmentStatusCancelled},
		{"assigned before due", models.AssignmentStatusAssigned, &future, models.AssignmentStatusAssigned},
		{"no due date", models.AssignmentStatusAssigned, nil, models.AssignmentStatusAssigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			es := models.EnterpriseSurvey{Status: tt.status, DueDate: tt.due}
			if got := es.EffectiveStatus(now); got != tt.want {
				t.Fatalf("effective status = %q, want %q", got, tt.want)
			}
		})
	}
}
