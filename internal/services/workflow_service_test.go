package services

import (
	"context"
	"errors"
	"testing"

	"assse/internal/models"
)

func newWorkflowServiceForTest() (*WorkflowService, *fakeWorkflowRepo) {
	repo := newFakeWorkflowRepo()
	roles := newFakeRoleLookup(models.RoleCodeSSO, models.RoleCodeDS, models.RoleCodeRO)
	return NewWorkflowService(repo, roles), repo
}

func threeStepWorkflow() *models.ApprovalWorkflow {
	return &models.ApprovalWorkflow{
		Name: "District Industrial Survey",
		Steps: []models.ApprovalStep{
			{Name: "SSO scrutiny", RoleCode: models.RoleCodeSSO, CanReject: true, CanReferBack: true},
			{Name: "DS review", RoleCode: models.RoleCodeDS, CanReject: true},
			{Name: "RO approval", RoleCode: models.RoleCodeRO, CanReject: true},
		},
	}
}

func TestWorkflowValidation(t *testing.T) {
	svc, _ := newWorkflowServiceForTest()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(wf *models.ApprovalWorkflow)
	}{
		{"missing name", func(wf *models.ApprovalWorkflow) { wf.Name = "  " }},
		{"no steps", func(wf *models.ApprovalWorkflow) { wf.Steps = nil }},
		{"step without name", func(wf *models.ApprovalWorkflow) { wf.Steps[1].Name = "" }},
		{"step without role", func(wf *models.ApprovalWorkflow) { wf.Steps[0].RoleCode = "" }},
		{"unknown role code", func(wf *models.ApprovalWorkflow) { wf.Steps[2].RoleCode = "CLERK" }},
		{"successor outside workflow", func(wf *models.ApprovalWorkflow) { wf.Steps[0].NextStepID = "not-a-step" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf := threeStepWorkflow()
			tt.mutate(wf)
			err := svc.Create(ctx, wf)
			if !errors.Is(err, ErrWorkflowInvalid) {
				t.Fatalf("err = %v, want ErrWorkflowInvalid", err)
			}
		})
	}
}

func TestWorkflowCreateNumbersSteps(t *testing.T) {
	svc, repo := newWorkflowServiceForTest()
	ctx := context.Background()

	wf := threeStepWorkflow()
	if err := svc.Create(ctx, wf); err != nil {
		t.Fatalf("create: %v", err)
	}

	stored, err := repo.Get(ctx, wf.ID)
	if err != nil || stored == nil {
		t.Fatalf("get stored: %v, %v", stored, err)
	}
	for i, step := range stored.OrderedSteps() {
		if step.StepNumber != i+1 {
			t.Fatalf("step %q numbered %d, want %d", step.Name, step.StepNumber, i+1)
		}
	}
}

func TestChainSteps(t *testing.T) {
	svc, _ := newWorkflowServiceForTest()
	ctx := context.Background()

	wf := threeStepWorkflow()
	if err := svc.Create(ctx, wf); err != nil {
		t.Fatalf("create: %v", err)
	}

	chained, err := svc.ChainSteps(ctx, wf.ID)
	if err != nil {
		t.Fatalf("chain: %v", err)
	}

	ordered := chained.OrderedSteps()
	for i := 0; i < len(ordered)-1; i++ {
		if ordered[i].NextStepID != ordered[i+1].ID {
			t.Fatalf("step %d successor = %q, want %q", i+1, ordered[i].NextStepID, ordered[i+1].ID)
		}
	}
	if last := ordered[len(ordered)-1]; last.NextStepID != "" {
		t.Fatalf("last step should be terminal, has successor %q", last.NextStepID)
	}
}

func TestRemoveStepRenumbersAndRepairsChain(t *testing.T) {
	svc, _ := newWorkflowServiceForTest()
	ctx := context.Background()

	wf := threeStepWorkflow()
	if err := svc.Create(ctx, wf); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.ChainSteps(ctx, wf.ID); err != nil {
		t.Fatalf("chain: %v", err)
	}

	fresh, _ := svc.Get(ctx, wf.ID)
	ordered := fresh.OrderedSteps()
	middle := ordered[1]

	updated, err := svc.RemoveStep(ctx, wf.ID, middle.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}

	remaining := updated.OrderedSteps()
	if len(remaining) != 2 {
		t.Fatalf("got %d steps, want 2", len(remaining))
	}
	// contiguous renumbering from 1
	for i, step := range remaining {
		if step.StepNumber != i+1 {
			t.Fatalf("step %q numbered %d, want %d", step.Name, step.StepNumber, i+1)
		}
	}
	// predecessor now points at the removed step's successor
	if remaining[0].NextStepID != remaining[1].ID {
		t.Fatalf("chain broken: first step points at %q, want %q", remaining[0].NextStepID, remaining[1].ID)
	}
}

func TestRemoveOnlyStepRefused(t *testing.T) {
	svc, _ := newWorkflowServiceForTest()
	ctx := context.Background()

	wf := &models.ApprovalWorkflow{
		Name:  "Single Step",
		Steps: []models.ApprovalStep{{Name: "RO approval", RoleCode: models.RoleCodeRO}},
	}
	if err := svc.Create(ctx, wf); err != nil {
		t.Fatalf("create: %v", err)
	}

	stored, _ := svc.Get(ctx, wf.ID)
	if _, err := svc.RemoveStep(ctx, wf.ID, stored.Steps[0].ID); !errors.Is(err, ErrWorkflowInvalid) {
		t.Fatalf("err = %v, want ErrWorkflowInvalid", err)
	}
}

func TestAppendStepNumbersAfterExisting(t *testing.T) {
	svc, _ := newWorkflowServiceForTest()
	ctx := context.Background()

	wf := threeStepWorkflow()
	if err := svc.Create(ctx, wf); err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.AppendStep(ctx, wf.ID, models.ApprovalStep{
		Name:     "RO recheck",
		RoleCode: models.RoleCodeRO,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	ordered := updated.OrderedSteps()
	if got := ordered[len(ordered)-1]; got.Name != "RO recheck" || got.StepNumber != 4 {
		t.Fatalf("appended step = %q #%d, want \"RO recheck\" #4", got.Name, got.StepNumber)
	}
}

func TestWorkflowListPaged(t *testing.T) {
	svc, _ := newWorkflowServiceForTest()
	ctx := context.Background()

	for _, name := range []string{"Annual Survey", "Census Follow-up", "District Survey"} {
		wf := threeStepWorkflow()
		wf.Name = name
		if err := svc.Create(ctx, wf); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	page, err := svc.List(ctx, PageParams{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 3 || page.TotalPages != 2 || len(page.Data) != 1 {
		t.Fatalf("page = total %d, pages %d, rows %d; want 3, 2, 1", page.Total, page.TotalPages, len(page.Data))
	}
}
