package models

// ApprovalWorkflow is a named, ordered sequence of role-gated approval
// steps. Survey instances reference workflows by name only; editing a
// workflow never touches in-flight instances.
type ApprovalWorkflow struct {
	Base
	Name        string         `gorm:"uniqueIndex;not null" json:"name" validate:"required,min=2"`
	Description string         `json:"description"`
	IsActive    bool           `gorm:"default:true" json:"isActive"`
	Steps       []ApprovalStep `gorm:"foreignKey:WorkflowID;references:ID;constraint:OnDelete:CASCADE" json:"steps,omitempty"`
}

// ApprovalStep binds one role (optionally constrained to an office type)
// to a position in the workflow. A step with no successor and no reject
// path is a terminal accepting state.
type ApprovalStep struct {
	Base
	WorkflowID   string `gorm:"type:uuid;not null;index" json:"workflowId"`
	StepNumber   int    `gorm:"not null" json:"stepNumber" validate:"min=1"`
	Name         string `gorm:"not null" json:"name" validate:"required"`
	RoleCode     string `gorm:"not null" json:"roleCode" validate:"required"`
	OfficeType   string `json:"officeType,omitempty"`
	Required     bool   `gorm:"default:true" json:"required"`
	CanReject    bool   `gorm:"default:false" json:"canReject"`
	CanReferBack bool   `gorm:"default:false" json:"canReferBack"`
	// NextStepID is the explicit successor on the approval path. Empty
	// means terminal step.
	NextStepID string `gorm:"type:uuid;default:NULL" json:"nextStepOnApproval,omitempty"`
}

// OrderedSteps returns the steps sorted by step number. Steps are stored in
// creation order with contiguous numbers starting at 1, but a defensive
// sort keeps callers honest after partial edits.
func (w *ApprovalWorkflow) OrderedSteps() []ApprovalStep {
	steps := make([]ApprovalStep, len(w.Steps))
	copy(steps, w.Steps)
	for i := 1; i < len(steps); i++ {
		for j := i; j > 0 && steps[j-1].StepNumber > steps[j].StepNumber; j-- {
			steps[j-1], steps[j] = steps[j], steps[j-1]
		}
	}
	return steps
}

// StepByID returns the step with the given id, or nil.
func (w *ApprovalWorkflow) StepByID(id string) *ApprovalStep {
	for i := range w.Steps {
		if w.Steps[i].ID == id {
			return &w.Steps[i]
		}
	}
	return nil
}
