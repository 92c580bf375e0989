package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assse/internal/events"
	"assse/internal/models"
	console "assse/internal/utils/logger"
	"assse/internal/workflow"
)

var ErrAssignmentNotFound = errors.New("enterprise survey not found")

// AssignmentRepository stores enterprise-survey assignments.
type AssignmentRepository interface {
	Create(ctx context.Context, es *models.EnterpriseSurvey) error
	Get(ctx context.Context, id string) (*models.EnterpriseSurvey, error)
	Save(ctx context.Context, es *models.EnterpriseSurvey) error
	Exists(ctx context.Context, enterpriseID, templateID string) (bool, error)
	ListDueBefore(ctx context.Context, cutoff time.Time) ([]models.EnterpriseSurvey, error)
	List(ctx context.Context, page PageParams) ([]models.EnterpriseSurvey, int64, error)
}

// EnterpriseRepository stores enterprises, used by bulk import.
type EnterpriseRepository interface {
	Create(ctx context.Context, e *models.Enterprise) error
	ExistsByDSL(ctx context.Context, dslNumber string) (bool, error)
	List(ctx context.Context, page PageParams) ([]models.Enterprise, int64, error)
}

// BulkResult reports a bulk operation row by row. Partial failure leaves
// the committed rows in place; there is no compensating rollback.
type BulkResult struct {
	Assigned int      `json:"assigned"`
	Errors   []string `json:"errors"`
}

// AssignmentService owns enterprise-survey assignments and the bulk
// operations over them.
type AssignmentService struct {
	repo        AssignmentRepository
	enterprises EnterpriseRepository
	log         *console.Logger
}

func NewAssignmentService(repo AssignmentRepository, enterprises EnterpriseRepository) *AssignmentService {
	return &AssignmentService{
		repo:        repo,
		enterprises: enterprises,
		log:         console.New("assignment_service"),
	}
}

// BulkAssign assigns a survey template to each enterprise in turn. Each row
// succeeds or fails independently; an enterprise that already has the
// template assigned is reported as an error, not skipped silently.
func (s *AssignmentService) BulkAssign(ctx context.Context, templateID string, enterpriseIDs []string, assignedBy string, dueDate *time.Time) (BulkResult, error) {
	result := BulkResult{Errors: []string{}}

	for _, enterpriseID := range enterpriseIDs {
		exists, err := s.repo.Exists(ctx, enterpriseID, templateID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("enterprise %s: %v", enterpriseID, err))
			continue
		}
		if exists {
			result.Errors = append(result.Errors, fmt.Sprintf("enterprise %s already has this survey assigned", enterpriseID))
			continue
		}

		es := &models.EnterpriseSurvey{
			EnterpriseID: enterpriseID,
			TemplateID:   templateID,
			Status:       models.AssignmentStatusAssigned,
			DueDate:      dueDate,
			AssignedBy:   assignedBy,
		}
		if err := s.repo.Create(ctx, es); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("enterprise %s: %v", enterpriseID, err))
			continue
		}
		result.Assigned++
	}

	s.log.Info("bulk assign template %s: %d assigned, %d errors", templateID, result.Assigned, len(result.Errors))
	return result, nil
}

// BulkImport creates enterprises row by row, rejecting duplicate DSL
// numbers.
func (s *AssignmentService) BulkImport(ctx context.Context, rows []models.Enterprise) (BulkResult, error) {
	result := BulkResult{Errors: []string{}}

	for i := range rows {
		row := rows[i]
		if row.DSLNumber == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: DSL number is required", i+1))
			continue
		}
		exists, err := s.enterprises.ExistsByDSL(ctx, row.DSLNumber)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		if exists {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: DSL %s already exists", i+1, row.DSLNumber))
			continue
		}
		if err := s.enterprises.Create(ctx, &row); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		result.Assigned++
	}

	return result, nil
}

// Transition applies an assignment action through the assignment state
// machine.
func (s *AssignmentService) Transition(ctx context.Context, id string, action workflow.AssignmentAction) (*models.EnterpriseSurvey, error) {
	es, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if es == nil {
		return nil, ErrAssignmentNotFound
	}

	next, err := workflow.TransitionAssignment(es.Status, action)
	if err != nil {
		return nil, err
	}

	es.Status = next
	if err := s.repo.Save(ctx, es); err != nil {
		return nil, err
	}

	events.Emit("enterprise_surveys.transitioned", es)
	return es, nil
}

// List pages assignments with their effective status materialized for the
// response only.
func (s *AssignmentService) List(ctx context.Context, page PageParams) (Paged[models.EnterpriseSurvey], error) {
	data, total, err := s.repo.List(ctx, page)
	if err != nil {
		return Paged[models.EnterpriseSurvey]{}, err
	}
	now := time.Now()
	for i := range data {
		data[i].Status = data[i].EffectiveStatus(now)
	}
	return NewPaged(data, total, page), nil
}

// ScanOverdue finds assignments past their due date that are still open and
// emits a notification event per row. Run nightly by the task scheduler.
func (s *AssignmentService) ScanOverdue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.ListDueBefore(ctx, now)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range due {
		if due[i].EffectiveStatus(now) != models.AssignmentStatusOverdue {
			continue
		}
		events.Emit("enterprise_surveys.overdue", &due[i])
		count++
	}

	if count > 0 {
		s.log.Warn("overdue scan found %d open assignments past due", count)
	}
	return count, nil
}
