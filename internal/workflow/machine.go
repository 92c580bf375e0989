// Package workflow holds the survey scrutiny state machine and the
// enterprise-survey assignment state machine. Both are pure transition
// tables with no persistence, so every status change in the system goes
// through one unit-testable place.
package workflow

import (
	"fmt"

	"assse/internal/models"
)

// Action is a workflow trigger invoked by a user.
type Action string

const (
	ActionSubmit        Action = "submit"
	ActionStartScrutiny Action = "start_scrutiny"
	ActionApproveBlock  Action = "approve_block"
	ActionRejectBlock   Action = "reject_block"
	ActionFinalApprove  Action = "final_approve"
	ActionReject        Action = "reject"
	ActionReferBack     Action = "refer_back"
)

// Actor is the user attempting a transition, reduced to what gating needs.
type Actor struct {
	UserID      string
	RoleCodes   []string
	Scrutinizer bool
}

// HasRole reports whether the actor holds the given role code.
func (a Actor) HasRole(code string) bool {
	for _, c := range a.RoleCodes {
		if c == code {
			return true
		}
	}
	return false
}

// EffectType enumerates side effects a transition asks its caller to apply.
// The machine itself never touches storage.
type EffectType string

const (
	EffectNotifyCompiler    EffectType = "notify_compiler"
	EffectNotifyScrutinizer EffectType = "notify_scrutinizer"
	EffectRecordAudit       EffectType = "record_audit"
	EffectAttachComment     EffectType = "attach_comment"
	EffectSetScrutinizer    EffectType = "set_scrutinizer"
	EffectMarkDecided       EffectType = "mark_decided"
)

// Effect is one side effect with an optional detail message.
type Effect struct {
	Type   EffectType
	Detail string
}

// Result is the outcome of a permitted transition.
type Result struct {
	Next    models.SurveyStatus
	Effects []Effect
}

// RejectedError reports a transition the machine refused, with the reason.
type RejectedError struct {
	Current models.SurveyStatus
	Action  Action
	Reason  string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("transition %q not permitted from status %q: %s", e.Action, e.Current, e.Reason)
}

func rejected(current models.SurveyStatus, action Action, reason string) (Result, error) {
	return Result{}, &RejectedError{Current: current, Action: action, Reason: reason}
}

type transitionRule struct {
	next            models.SurveyStatus
	scrutinizerOnly bool
	compilerOnly    bool
	effects         []Effect
}

// The central transition table. Block approval and rejection are no-op
// signals that keep the instance in scrutiny; only the terminal actions
// leave it.
var transitions = map[models.SurveyStatus]map[Action]transitionRule{
	models.SurveyStatusDraft: {
		ActionSubmit: {
			next:         models.SurveyStatusSubmitted,
			compilerOnly: true,
			effects: []Effect{
				{Type: EffectNotifyScrutinizer, Detail: "survey submitted for scrutiny"},
				{Type: EffectRecordAudit, Detail: "survey.submit"},
			},
		},
	},
	models.SurveyStatusSubmitted: {
		ActionStartScrutiny: {
			next:            models.SurveyStatusScrutiny,
			scrutinizerOnly: true,
			effects: []Effect{
				{Type: EffectSetScrutinizer},
				{Type: EffectRecordAudit, Detail: "survey.start_scrutiny"},
			},
		},
	},
	models.SurveyStatusScrutiny: {
		ActionApproveBlock: {
			next:            models.SurveyStatusScrutiny,
			scrutinizerOnly: true,
			effects: []Effect{
				{Type: EffectRecordAudit, Detail: "survey.approve_block"},
			},
		},
		ActionRejectBlock: {
			next:            models.SurveyStatusScrutiny,
			scrutinizerOnly: true,
			effects: []Effect{
				{Type: EffectAttachComment},
				{Type: EffectRecordAudit, Detail: "survey.reject_block"},
			},
		},
		ActionFinalApprove: {
			next:            models.SurveyStatusApproved,
			scrutinizerOnly: true,
			effects: []Effect{
				{Type: EffectMarkDecided},
				{Type: EffectNotifyCompiler, Detail: "survey approved"},
				{Type: EffectRecordAudit, Detail: "survey.final_approve"},
			},
		},
		ActionReject: {
			next:            models.SurveyStatusRejected,
			scrutinizerOnly: true,
			effects: []Effect{
				{Type: EffectMarkDecided},
				{Type: EffectNotifyCompiler, Detail: "survey rejected"},
				{Type: EffectRecordAudit, Detail: "survey.reject"},
			},
		},
		ActionReferBack: {
			next:            models.SurveyStatusScrutiny, // replaced per step capability, see Transition
			scrutinizerOnly: true,
			effects: []Effect{
				{Type: EffectNotifyCompiler, Detail: "survey referred back for correction"},
				{Type: EffectRecordAudit, Detail: "survey.refer_back"},
			},
		},
	},
}

// Machine evaluates transitions for survey instances. Step carries the
// workflow step the actor operates under when one is bound; a nil step
// applies role-agnostic gating only.
type Machine struct{}

func NewMachine() *Machine {
	return &Machine{}
}

// Transition validates that action is permitted from current for the given
// actor and returns the next status plus side effects. It never mutates
// anything.
func (m *Machine) Transition(current models.SurveyStatus, action Action, actor Actor, step *models.ApprovalStep) (Result, error) {
	if !models.IsValidSurveyStatus(current) {
		return rejected(current, action, "unknown status")
	}

	byAction, ok := transitions[current]
	if !ok {
		return rejected(current, action, "terminal status")
	}

	rule, ok := byAction[action]
	if !ok {
		return rejected(current, action, "no such transition")
	}

	if rule.compilerOnly && actor.Scrutinizer {
		return rejected(current, action, "only the compiling role may perform this")
	}
	if rule.scrutinizerOnly && !actor.Scrutinizer {
		return rejected(current, action, "only a scrutinizer may perform this")
	}

	// step-level capability gating
	if step != nil {
		if step.RoleCode != "" && !actor.HasRole(step.RoleCode) {
			return rejected(current, action, fmt.Sprintf("step %q requires role %s", step.Name, step.RoleCode))
		}
		switch action {
		case ActionReject, ActionRejectBlock:
			if !step.CanReject {
				return rejected(current, action, fmt.Sprintf("step %q may not reject", step.Name))
			}
		case ActionReferBack:
			if !step.CanReferBack {
				return rejected(current, action, fmt.Sprintf("step %q may not refer back", step.Name))
			}
		}
	}

	result := Result{Next: rule.next, Effects: rule.effects}

	// Refer-back has no modeled target of its own in the source design;
	// here it returns the instance to the compiler as a fresh draft.
	if action == ActionReferBack {
		result.Next = models.SurveyStatusDraft
		if step != nil {
			result.Effects = append([]Effect{{Type: EffectRecordAudit, Detail: "referred back from step " + step.Name}}, result.Effects...)
		}
	}

	return result, nil
}

// Terminal reports whether no transition leaves the given status.
func Terminal(status models.SurveyStatus) bool {
	rules, ok := transitions[status]
	return !ok || len(rules) == 0
}
