package workflow

import (
	"errors"
	"testing"

	"assse/internal/models"
)

var (
	compiler    = Actor{UserID: "u-compiler", RoleCodes: []string{models.RoleCodeEnterprise}}
	scrutinizer = Actor{UserID: "u-sso", RoleCodes: []string{models.RoleCodeSSO}, Scrutinizer: true}
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name    string
		current models.SurveyStatus
		action  Action
		actor   Actor
		want    models.SurveyStatus
		wantErr bool
	}{
		{"submit from draft", models.SurveyStatusDraft, ActionSubmit, compiler, models.SurveyStatusSubmitted, false},
		{"scrutinizer may not submit", models.SurveyStatusDraft, ActionSubmit, scrutinizer, "", true},
		{"start scrutiny", models.SurveyStatusSubmitted, ActionStartScrutiny, scrutinizer, models.SurveyStatusScrutiny, false},
		{"compiler may not start scrutiny", models.SurveyStatusSubmitted, ActionStartScrutiny, compiler, "", true},
		{"approve block is a no-op signal", models.SurveyStatusScrutiny, ActionApproveBlock, scrutinizer, models.SurveyStatusScrutiny, false},
		{"reject block keeps instance in scrutiny", models.SurveyStatusScrutiny, ActionRejectBlock, scrutinizer, models.SurveyStatusScrutiny, false},
		{"final approval", models.SurveyStatusScrutiny, ActionFinalApprove, scrutinizer, models.SurveyStatusApproved, false},
		{"instance rejection", models.SurveyStatusScrutiny, ActionReject, scrutinizer, models.SurveyStatusRejected, false},
		{"refer back returns to draft", models.SurveyStatusScrutiny, ActionReferBack, scrutinizer, models.SurveyStatusDraft, false},
		{"approved is terminal", models.SurveyStatusApproved, ActionSubmit, compiler, "", true},
		{"rejected is terminal", models.SurveyStatusRejected, ActionStartScrutiny, scrutinizer, "", true},
		{"no skipping draft to scrutiny", models.SurveyStatusDraft, ActionStartScrutiny, scrutinizer, "", true},
		{"unknown status", models.SurveyStatus("bogus"), ActionSubmit, compiler, "", true},
	}

	m := NewMachine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Transition(tt.current, tt.action, tt.actor, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected rejection, got next=%q", got.Next)
				}
				var rej *RejectedError
				if !errors.As(err, &rej) {
					t.Fatalf("expected *RejectedError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Next != tt.want {
				t.Fatalf("next = %q, want %q", got.Next, tt.want)
			}
		})
	}
}

func TestStepCapabilityGating(t *testing.T) {
	m := NewMachine()

	step := &models.ApprovalStep{
		Name:      "SSO Scrutiny",
		RoleCode:  models.RoleCodeSSO,
		CanReject: false,
	}

	if _, err := m.Transition(models.SurveyStatusScrutiny, ActionReject, scrutinizer, step); err == nil {
		t.Fatal("expected rejection when step lacks canReject")
	}

	step.CanReject = true
	res, err := m.Transition(models.SurveyStatusScrutiny, ActionReject, scrutinizer, step)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Next != models.SurveyStatusRejected {
		t.Fatalf("next = %q, want rejected", res.Next)
	}

	if _, err := m.Transition(models.SurveyStatusScrutiny, ActionReferBack, scrutinizer, step); err == nil {
		t.Fatal("expected rejection when step lacks canReferBack")
	}

	step.CanReferBack = true
	res, err = m.Transition(models.SurveyStatusScrutiny, ActionReferBack, scrutinizer, step)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Next != models.SurveyStatusDraft {
		t.Fatalf("refer back next = %q, want draft", res.Next)
	}

	// wrong role for the step
	dsStep := &models.ApprovalStep{Name: "DS Review", RoleCode: models.RoleCodeDS, CanReject: true}
	if _, err := m.Transition(models.SurveyStatusScrutiny, ActionFinalApprove, scrutinizer, dsStep); err == nil {
		t.Fatal("expected rejection when actor lacks the step role")
	}
}

func TestTransitionEffects(t *testing.T) {
	m := NewMachine()

	res, err := m.Transition(models.SurveyStatusDraft, ActionSubmit, compiler, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasEffect(res.Effects, EffectNotifyScrutinizer) || !hasEffect(res.Effects, EffectRecordAudit) {
		t.Fatalf("submit effects missing, got %v", res.Effects)
	}

	res, err = m.Transition(models.SurveyStatusScrutiny, ActionRejectBlock, scrutinizer, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasEffect(res.Effects, EffectAttachComment) {
		t.Fatalf("reject_block must carry a comment effect, got %v", res.Effects)
	}

	res, err = m.Transition(models.SurveyStatusScrutiny, ActionFinalApprove, scrutinizer, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasEffect(res.Effects, EffectMarkDecided) || !hasEffect(res.Effects, EffectNotifyCompiler) {
		t.Fatalf("final approval effects missing, got %v", res.Effects)
	}
}

func TestTerminal(t *testing.T) {
	if Terminal(models.SurveyStatusDraft) || Terminal(models.SurveyStatusScrutiny) {
		t.Fatal("draft and scrutiny must not be terminal")
	}
	if !Terminal(models.SurveyStatusApproved) || !Terminal(models.SurveyStatusRejected) {
		t.Fatal("approved and rejected must be terminal")
	}
}

func hasEffect(effects []Effect, typ EffectType) bool {
	for _, e := range effects {
		if e.Type == typ {
			return true
		}
	}
	return false
}
