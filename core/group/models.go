package group

import (
	"time"

	"github.com/wkarobia/cantera/core"
)

type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AgeBracket  string    `json:"age_bracket"` // eg. "U-9", "U-13"
	CoachID     string    `json:"coach_id,omitempty"`
	Capacity    int       `json:"capacity"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewGroup contains information needed to create a new Group.
type NewGroup struct {
	Name        string `json:"name" validate:"required"`
	AgeBracket  string `json:"age_bracket" validate:"required"`
	CoachID     string `json:"coach_id"`
	Capacity    int    `json:"capacity" validate:"omitempty,min=1"`
	Description string `json:"description"`
}

func (ng *NewGroup) Validate(svc *Service) error {
	ng.Name = core.CleanString(ng.Name)
	ng.AgeBracket = core.CleanString(ng.AgeBracket)

	if err := core.Validate.Struct(ng); err != nil {
		return err
	}
	return svc.CheckNameUniqueness(ng.Name)
}

// UpdateGroup defines what information may be provided to modify an existing Group.
type UpdateGroup struct {
	Name        string  `json:"name"`
	AgeBracket  string  `json:"age_bracket"`
	CoachID     *string `json:"coach_id"`
	Capacity    *int    `json:"capacity" validate:"omitempty,min=1"`
	Description *string `json:"description"`
}

func (ug *UpdateGroup) Validate(orig Group, svc *Service) error {
	if name := core.CleanString(ug.Name); name != "" {
		ug.Name = name
	} else {
		ug.Name = orig.Name
	}
	if ab := core.CleanString(ug.AgeBracket); ab != "" {
		ug.AgeBracket = ab
	} else {
		ug.AgeBracket = orig.AgeBracket
	}

	if err := core.Validate.Struct(ug); err != nil {
		return err
	}
	return svc.CheckNameUniqueness(ug.Name, orig)
}

type QueryFilter struct {
	Search  string `query:"search"`
	CoachID string `query:"coach_id"`
}

func (qf *QueryFilter) IsEmpty() bool { return qf.Search == "" && qf.CoachID == "" }

func (qf *QueryFilter) Clean() { qf.Search = core.CleanString(qf.Search) }
