package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"assse/internal/events"
	"assse/internal/models"
	console "assse/internal/utils/logger"
)

var (
	ErrWorkflowInvalid  = errors.New("invalid workflow definition")
	ErrWorkflowNotFound = errors.New("workflow not found")
)

// WorkflowRepository is the persistence contract for workflow definitions.
// Backed by the hosted store in production and an in-memory fake in tests.
type WorkflowRepository interface {
	Create(ctx context.Context, wf *models.ApprovalWorkflow) error
	Update(ctx context.Context, wf *models.ApprovalWorkflow) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.ApprovalWorkflow, error)
	GetByName(ctx context.Context, name string) (*models.ApprovalWorkflow, error)
	List(ctx context.Context, page PageParams) ([]models.ApprovalWorkflow, int64, error)
}

// RoleLookup resolves role codes. Kept narrow so tests can stub it.
type RoleLookup interface {
	RoleExists(ctx context.Context, code string) (bool, error)
}

// WorkflowService owns the approval-workflow definition store.
type WorkflowService struct {
	repo  WorkflowRepository
	roles RoleLookup
	log   *console.Logger
}

func NewWorkflowService(repo WorkflowRepository, roles RoleLookup) *WorkflowService {
	return &WorkflowService{
		repo:  repo,
		roles: roles,
		log:   console.New("workflow_service"),
	}
}

// Validate checks a workflow definition before any write. Step numbers are
// contiguous from 1 in creation order, every role code must exist and every
// successor pointer must land inside the workflow.
func (s *WorkflowService) Validate(ctx context.Context, wf *models.ApprovalWorkflow) error {
	if strings.TrimSpace(wf.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrWorkflowInvalid)
	}
	if len(wf.Steps) == 0 {
		return fmt.Errorf("%w: at least one step is required", ErrWorkflowInvalid)
	}

	ids := make(map[string]bool, len(wf.Steps))
	for i := range wf.Steps {
		if wf.Steps[i].ID != "" {
			ids[wf.Steps[i].ID] = true
		}
	}

	for i := range wf.Steps {
		step := &wf.Steps[i]
		if strings.TrimSpace(step.Name) == "" {
			return fmt.Errorf("%w: step %d has no name", ErrWorkflowInvalid, i+1)
		}
		if strings.TrimSpace(step.RoleCode) == "" {
			return fmt.Errorf("%w: step %q has no role binding", ErrWorkflowInvalid, step.Name)
		}
		exists, err := s.roles.RoleExists(ctx, step.RoleCode)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: step %q references unknown role %s", ErrWorkflowInvalid, step.Name, step.RoleCode)
		}
		if step.NextStepID != "" && !ids[step.NextStepID] {
			return fmt.Errorf("%w: step %q points outside the workflow", ErrWorkflowInvalid, step.Name)
		}
	}
	return nil
}

// Create numbers the steps in creation order and persists the workflow.
func (s *WorkflowService) Create(ctx context.Context, wf *models.ApprovalWorkflow) error {
	renumber(wf)
	if err := s.Validate(ctx, wf); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, wf); err != nil {
		return err
	}
	events.Emit("approval_workflows.created", wf)
	return nil
}

func (s *WorkflowService) Update(ctx context.Context, wf *models.ApprovalWorkflow) error {
	if err := s.Validate(ctx, wf); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, wf); err != nil {
		return err
	}
	events.Emit("approval_workflows.updated", wf)
	return nil
}

func (s *WorkflowService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	events.Emit("approval_workflows.deleted", id)
	return nil
}

func (s *WorkflowService) Get(ctx context.Context, id string) (*models.ApprovalWorkflow, error) {
	return s.repo.Get(ctx, id)
}

func (s *WorkflowService) GetByName(ctx context.Context, name string) (*models.ApprovalWorkflow, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *WorkflowService) List(ctx context.Context, page PageParams) (Paged[models.ApprovalWorkflow], error) {
	data, total, err := s.repo.List(ctx, page)
	if err != nil {
		return Paged[models.ApprovalWorkflow]{}, err
	}
	return NewPaged(data, total, page), nil
}

// ChainSteps rewrites the successor pointers so each step's approval path
// leads to the next step in order, with the last step terminal.
func (s *WorkflowService) ChainSteps(ctx context.Context, workflowID string) (*models.ApprovalWorkflow, error) {
	wf, err := s.repo.Get(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if wf == nil {
		return nil, ErrWorkflowNotFound
	}

	ordered := wf.OrderedSteps()
	for i := range ordered {
		if i < len(ordered)-1 {
			ordered[i].NextStepID = ordered[i+1].ID
		} else {
			ordered[i].NextStepID = ""
		}
	}
	wf.Steps = ordered

	if err := s.Update(ctx, wf); err != nil {
		return nil, err
	}
	return wf, nil
}

// AppendStep adds a step at the end of the workflow, numbered count+1.
// Successor pointers are left alone; call ChainSteps to relink.
func (s *WorkflowService) AppendStep(ctx context.Context, workflowID string, step models.ApprovalStep) (*models.ApprovalWorkflow, error) {
	wf, err := s.repo.Get(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if wf == nil {
		return nil, ErrWorkflowNotFound
	}

	step.WorkflowID = wf.ID
	step.StepNumber = len(wf.Steps) + 1
	wf.Steps = append(wf.Steps, step)

	if err := s.Update(ctx, wf); err != nil {
		return nil, err
	}
	return wf, nil
}

// RemoveStep deletes a step, renumbers the remaining steps contiguously and
// repairs successor pointers so the predecessor of the removed step points
// at its successor.
func (s *WorkflowService) RemoveStep(ctx context.Context, workflowID, stepID string) (*models.ApprovalWorkflow, error) {
	wf, err := s.repo.Get(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if wf == nil {
		return nil, ErrWorkflowNotFound
	}

	removed := wf.StepByID(stepID)
	if removed == nil {
		return nil, fmt.Errorf("%w: step %s", ErrWorkflowNotFound, stepID)
	}
	if len(wf.Steps) == 1 {
		return nil, fmt.Errorf("%w: cannot remove the only step", ErrWorkflowInvalid)
	}

	successor := removed.NextStepID
	kept := make([]models.ApprovalStep, 0, len(wf.Steps)-1)
	for _, step := range wf.OrderedSteps() {
		if step.ID == stepID {
			continue
		}
		if step.NextStepID == stepID {
			step.NextStepID = successor
		}
		kept = append(kept, step)
	}
	wf.Steps = kept
	renumber(wf)

	if err := s.Update(ctx, wf); err != nil {
		return nil, err
	}
	s.log.Info("removed step %s from workflow %s", stepID, wf.Name)
	return wf, nil
}

func renumber(wf *models.ApprovalWorkflow) {
	for i := range wf.Steps {
		wf.Steps[i].StepNumber = i + 1
	}
}
