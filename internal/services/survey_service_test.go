package services

import (
	"context"
	"errors"
	"testing"

	"assse/internal/models"
	"assse/internal/workflow"
)

var (
	testCompiler = workflow.Actor{UserID: "u-ent", RoleCodes: []string{models.RoleCodeEnterprise}}
	testSSO      = workflow.Actor{UserID: "u-sso", RoleCodes: []string{models.RoleCodeSSO}, Scrutinizer: true}
)

func newSurveyServiceForTest() (*SurveyService, *fakeSurveyRepo, *fakeCommentRepo) {
	repo := newFakeSurveyRepo()
	schedules := &fakeScheduleLookup{schedules: map[string]*models.SurveySchedule{
		"sch-1": {
			Base: models.Base{ID: "sch-1"},
			Name: "Annual Survey of Service Sector Enterprises",
			Blocks: []models.SurveyBlock{
				{
					Base:      models.Base{ID: "blk-identity"},
					Title:     "Enterprise Identity",
					BlockType: models.BlockTypeFields,
					Fields:    []models.SurveyField{{Label: "Name", Required: true}},
				},
				{
					Base:      models.Base{ID: "blk-remarks"},
					Title:     "Remarks",
					BlockType: models.BlockTypeFields,
					Fields:    []models.SurveyField{{Label: "Notes"}},
				},
			},
		},
	}}
	comments := newFakeCommentRepo()
	return NewSurveyService(repo, schedules, NewScrutinyService(comments)), repo, comments
}

func draftSurvey(repo *fakeSurveyRepo, responses ...models.SurveyResponse) *models.SurveyInstance {
	s := &models.SurveyInstance{
		Base:         models.Base{ID: "srv-1"},
		EnterpriseID: "ent-1",
		ScheduleID:   "sch-1",
		Status:       models.SurveyStatusDraft,
		CompilerID:   testCompiler.UserID,
	}
	repo.put(s)
	for i := range responses {
		responses[i].SurveyID = s.ID
	}
	repo.responses = responses
	return s
}

func ssoStep() *models.ApprovalStep {
	return &models.ApprovalStep{
		Base:         models.Base{ID: "step-1"},
		Name:         "SSO scrutiny",
		StepNumber:   1,
		RoleCode:     models.RoleCodeSSO,
		CanReject:    true,
		CanReferBack: true,
	}
}

func TestSubmitRequiresCompleteRequiredBlocks(t *testing.T) {
	svc, repo, _ := newSurveyServiceForTest()
	ctx := context.Background()

	draftSurvey(repo, models.SurveyResponse{BlockID: "blk-identity", Complete: false})

	_, err := svc.Submit(ctx, "srv-1", testCompiler)
	if !errors.Is(err, ErrIncompleteBlocks) {
		t.Fatalf("err = %v, want ErrIncompleteBlocks", err)
	}

	stored, _ := repo.Get(ctx, "srv-1")
	if stored.Status != models.SurveyStatusDraft {
		t.Fatalf("status = %q, want draft after refused submit", stored.Status)
	}
}

func TestScrutinyHappyPath(t *testing.T) {
	svc, repo, _ := newSurveyServiceForTest()
	ctx := context.Background()

	draftSurvey(repo, models.SurveyResponse{BlockID: "blk-identity", Complete: true})

	submitted, err := svc.Submit(ctx, "srv-1", testCompiler)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.Status != models.SurveyStatusSubmitted || submitted.SubmittedAt == nil {
		t.Fatalf("after submit: status=%q submittedAt=%v", submitted.Status, submitted.SubmittedAt)
	}

	// the compiler's draft list must no longer carry the instance
	drafts, err := svc.ListByStatus(ctx, models.SurveyStatusDraft, PageParams{})
	if err != nil {
		t.Fatalf("list drafts: %v", err)
	}
	for _, d := range drafts.Data {
		if d.ID == "srv-1" {
			t.Fatal("submitted survey must drop out of the draft list")
		}
	}

	inScrutiny, err := svc.StartScrutiny(ctx, "srv-1", testSSO, ssoStep())
	if err != nil {
		t.Fatalf("start scrutiny: %v", err)
	}
	if inScrutiny.Status != models.SurveyStatusScrutiny {
		t.Fatalf("status = %q, want scrutiny", inScrutiny.Status)
	}
	if inScrutiny.ScrutinizerID != testSSO.UserID {
		t.Fatalf("scrutinizer = %q, want %q", inScrutiny.ScrutinizerID, testSSO.UserID)
	}

	if _, err := svc.ApproveBlock(ctx, "srv-1", "blk-identity", testSSO, ssoStep()); err != nil {
		t.Fatalf("approve block: %v", err)
	}

	approved, err := svc.FinalApprove(ctx, "srv-1", testSSO, ssoStep())
	if err != nil {
		t.Fatalf("final approve: %v", err)
	}
	if approved.Status != models.SurveyStatusApproved || approved.DecidedAt == nil {
		t.Fatalf("after approval: status=%q decidedAt=%v", approved.Status, approved.DecidedAt)
	}

	// terminal: no further transitions
	if _, err := svc.Submit(ctx, "srv-1", testCompiler); err == nil {
		t.Fatal("approved survey must refuse further transitions")
	}
}

func TestRejectBlockAttachesComment(t *testing.T) {
	svc, repo, comments := newSurveyServiceForTest()
	ctx := context.Background()

	s := draftSurvey(repo)
	s.Status = models.SurveyStatusScrutiny
	repo.put(s)

	if _, err := svc.RejectBlock(ctx, "srv-1", "blk-identity", "f-name", "", testSSO, ssoStep()); !errors.Is(err, ErrMissingComment) {
		t.Fatalf("err = %v, want ErrMissingComment", err)
	}

	updated, err := svc.RejectBlock(ctx, "srv-1", "blk-identity", "f-name", "name does not match frame entry", testSSO, ssoStep())
	if err != nil {
		t.Fatalf("reject block: %v", err)
	}
	if updated.Status != models.SurveyStatusScrutiny {
		t.Fatalf("block rejection must keep instance in scrutiny, got %q", updated.Status)
	}

	attached, err := comments.ListByField(ctx, "srv-1", "blk-identity", "f-name")
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(attached) != 1 || attached[0].Resolved {
		t.Fatalf("expected one unresolved comment, got %+v", attached)
	}
}

func TestReferBackReturnsToDraft(t *testing.T) {
	svc, repo, _ := newSurveyServiceForTest()
	ctx := context.Background()

	s := draftSurvey(repo)
	s.Status = models.SurveyStatusScrutiny
	repo.put(s)

	back, err := svc.ReferBack(ctx, "srv-1", testSSO, ssoStep())
	if err != nil {
		t.Fatalf("refer back: %v", err)
	}
	if back.Status != models.SurveyStatusDraft {
		t.Fatalf("status = %q, want draft", back.Status)
	}
}

func TestStepCapabilityGatesRejection(t *testing.T) {
	svc, repo, _ := newSurveyServiceForTest()
	ctx := context.Background()

	s := draftSurvey(repo)
	s.Status = models.SurveyStatusScrutiny
	repo.put(s)

	step := ssoStep()
	step.CanReject = false

	if _, err := svc.Reject(ctx, "srv-1", testSSO, step); err == nil {
		t.Fatal("step without reject capability must not reject")
	}

	var rej *workflow.RejectedError
	_, err := svc.Reject(ctx, "srv-1", testSSO, step)
	if !errors.As(err, &rej) {
		t.Fatalf("err = %T, want *workflow.RejectedError", err)
	}

	stored, _ := repo.Get(ctx, "srv-1")
	if stored.Status != models.SurveyStatusScrutiny {
		t.Fatalf("refused transition must not change status, got %q", stored.Status)
	}
}

func TestSaveFailureRestoresStatus(t *testing.T) {
	svc, repo, _ := newSurveyServiceForTest()
	ctx := context.Background()

	draftSurvey(repo, models.SurveyResponse{BlockID: "blk-identity", Complete: true})
	repo.saveErr = errors.New("connection reset")

	if _, err := svc.Submit(ctx, "srv-1", testCompiler); err == nil {
		t.Fatal("expected save failure")
	}

	repo.saveErr = nil
	stored, _ := repo.Get(ctx, "srv-1")
	if stored.Status != models.SurveyStatusDraft {
		t.Fatalf("status = %q, want draft preserved in store", stored.Status)
	}
}

func TestSaveFailureLeavesSurveyUnchanged(t *testing.T) {
	svc, repo, _ := newSurveyServiceForTest()
	ctx := context.Background()

	draftSurvey(repo, models.SurveyResponse{BlockID: "blk-identity", Complete: true})
	repo.saveErr = errors.New("connection reset")

	held, _ := repo.Get(ctx, "srv-1")
	if _, err := svc.transition(ctx, held, workflow.ActionSubmit, testCompiler, nil, ""); err == nil {
		t.Fatal("expected save failure")
	}
	if held.Status != models.SurveyStatusDraft || held.SubmittedAt != nil {
		t.Fatalf("failed save must not mutate the survey: status=%q submittedAt=%v", held.Status, held.SubmittedAt)
	}

	held.Status = models.SurveyStatusSubmitted
	if _, err := svc.transition(ctx, held, workflow.ActionStartScrutiny, testSSO, ssoStep(), ""); err == nil {
		t.Fatal("expected save failure")
	}
	if held.Status != models.SurveyStatusSubmitted || held.ScrutinizerID != "" {
		t.Fatalf("failed save must not set scrutinizer: status=%q scrutinizer=%q", held.Status, held.ScrutinizerID)
	}

	held.Status = models.SurveyStatusScrutiny
	if _, err := svc.transition(ctx, held, workflow.ActionFinalApprove, testSSO, ssoStep(), ""); err == nil {
		t.Fatal("expected save failure")
	}
	if held.Status != models.SurveyStatusScrutiny || held.DecidedAt != nil {
		t.Fatalf("failed save must not mark decided: status=%q decidedAt=%v", held.Status, held.DecidedAt)
	}
}
