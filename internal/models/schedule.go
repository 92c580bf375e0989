package models

import "gorm.io/datatypes"

// BlockType distinguishes flat field blocks from tabular grid blocks.
type BlockType string

const (
	BlockTypeFields BlockType = "FIELDS"
	BlockTypeGrid   BlockType = "GRID"
)

// SurveySchedule is the question schedule a survey instance is filled
// against. Not itself stateful.
type SurveySchedule struct {
	Base
	Name        string        `gorm:"not null" json:"name" validate:"required"`
	SurveyYear  string        `json:"surveyYear"`
	Description string        `json:"description"`
	Blocks      []SurveyBlock `gorm:"foreignKey:ScheduleID;references:ID;constraint:OnDelete:CASCADE" json:"blocks,omitempty"`
}

// SurveyBlock is one section of the schedule, either a flat set of labeled
// fields or a grid of rows by typed columns.
type SurveyBlock struct {
	Base
	ScheduleID string        `gorm:"type:uuid;not null;index" json:"scheduleId"`
	Title      string        `gorm:"not null" json:"title" validate:"required"`
	BlockType  BlockType     `gorm:"not null;default:'FIELDS'" json:"blockType" validate:"required,oneof=FIELDS GRID"`
	SortOrder  int           `gorm:"default:0" json:"sortOrder"`
	Fields     []SurveyField `gorm:"foreignKey:BlockID;references:ID;constraint:OnDelete:CASCADE" json:"fields,omitempty"`
	Columns    []GridColumn  `gorm:"foreignKey:BlockID;references:ID;constraint:OnDelete:CASCADE" json:"columns,omitempty"`
	Rows       []GridRow     `gorm:"foreignKey:BlockID;references:ID;constraint:OnDelete:CASCADE" json:"rows,omitempty"`
}

// SurveyField is a single labeled question in a FIELDS block. Validation
// holds an optional business-rule tag, e.g. restricting edits to a role.
type SurveyField struct {
	Base
	BlockID    string `gorm:"type:uuid;not null;index" json:"blockId"`
	Label      string `gorm:"not null" json:"label" validate:"required"`
	FieldType  string `gorm:"not null;default:'text'" json:"fieldType" validate:"required,oneof=text number date select textarea"`
	ReadOnly   bool   `gorm:"default:false" json:"readOnly"`
	Required   bool   `gorm:"default:false" json:"required"`
	Validation string `json:"validation,omitempty"`
	SortOrder  int    `gorm:"default:0" json:"sortOrder"`
}

// GridColumn is one typed column of a GRID block.
type GridColumn struct {
	Base
	BlockID    string `gorm:"type:uuid;not null;index" json:"blockId"`
	Label      string `gorm:"not null" json:"label" validate:"required"`
	ColumnType string `gorm:"not null;default:'text'" json:"columnType" validate:"required,oneof=text number date select"`
	ReadOnly   bool   `gorm:"default:false" json:"readOnly"`
	Required   bool   `gorm:"default:false" json:"required"`
	SortOrder  int    `gorm:"default:0" json:"sortOrder"`
}

// GridRow is one row of a GRID block. Values are keyed by column id.
type GridRow struct {
	Base
	BlockID   string         `gorm:"type:uuid;not null;index" json:"blockId"`
	Label     string         `json:"label"`
	Values    datatypes.JSON `gorm:"type:jsonb" json:"values,omitempty"`
	SortOrder int            `gorm:"default:0" json:"sortOrder"`
}

// RequiredBlockIDs returns the ids of blocks containing at least one
// required field or column.
func (s *SurveySchedule) RequiredBlockIDs() []string {
	var ids []string
	for _, b := range s.Blocks {
		required := false
		for _, f := range b.Fields {
			if f.Required {
				required = true
				break
			}
		}
		if !required {
			for _, c := range b.Columns {
				if c.Required {
					required = true
					break
				}
			}
		}
		if required {
			ids = append(ids, b.ID)
		}
	}
	return ids
}
