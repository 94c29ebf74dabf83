package student

import (
	"time"

	"github.com/wkarobia/cantera/core"
)

type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BirthDate time.Time `json:"birth_date"`
	GroupID   string    `json:"group_id,omitempty"` // empty = unassigned

	// primary parent/guardian contact
	ParentName  string `json:"parent_name"`
	ParentPhone string `json:"parent_phone"`
	ParentEmail string `json:"parent_email"`

	// optional secondary contact
	SecondaryContactName  string `json:"secondary_contact_name,omitempty"`
	SecondaryContactPhone string `json:"secondary_contact_phone,omitempty"`

	MedicalNotes string    `json:"medical_notes,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// GroupHistory is an append-only ledger entry recording a student's stay in a
// group. At most one record per student is open (EndDate == nil) at any time.
type GroupHistory struct {
	ID        string     `json:"id"`
	StudentID string     `json:"student_id"`
	GroupID   string     `json:"group_id"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Reason    string     `json:"reason,omitempty"`
}

func (gh GroupHistory) IsOpen() bool { return gh.EndDate == nil }

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	Name      string    `json:"name" validate:"required"`
	BirthDate time.Time `json:"birth_date" validate:"required"`
	GroupID   string    `json:"group_id"`

	ParentName  string `json:"parent_name" validate:"required"`
	ParentPhone string `json:"parent_phone" validate:"required"`
	ParentEmail string `json:"parent_email" validate:"omitempty,email"`

	SecondaryContactName  string `json:"secondary_contact_name"`
	SecondaryContactPhone string `json:"secondary_contact_phone"`

	MedicalNotes string `json:"medical_notes"`
}

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.ParentName = core.CleanString(ns.ParentName)
	ns.ParentPhone = core.CleanString(ns.ParentPhone)
	ns.ParentEmail = core.CleanString(ns.ParentEmail, true /* lower */)
	return core.Validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Group membership is not updatable here; transfers go through Service.Transfer.
type UpdateStudent struct {
	Name        string     `json:"name"`
	BirthDate   *time.Time `json:"birth_date"`
	ParentName  string     `json:"parent_name"`
	ParentPhone string     `json:"parent_phone"`
	ParentEmail string     `json:"parent_email" validate:"omitempty,email"`

	SecondaryContactName  *string `json:"secondary_contact_name"`
	SecondaryContactPhone *string `json:"secondary_contact_phone"`

	MedicalNotes *string `json:"medical_notes"`
	IsActive     *bool   `json:"is_active"`
}

func (us *UpdateStudent) Validate(orig Student) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if pn := core.CleanString(us.ParentName); pn != "" {
		us.ParentName = pn
	} else {
		us.ParentName = orig.ParentName
	}
	if pp := core.CleanString(us.ParentPhone); pp != "" {
		us.ParentPhone = pp
	} else {
		us.ParentPhone = orig.ParentPhone
	}
	if pe := core.CleanString(us.ParentEmail, true /* lower */); pe != "" {
		us.ParentEmail = pe
	} else {
		us.ParentEmail = orig.ParentEmail
	}
	return core.Validate.Struct(us)
}

// TransferRequest moves a student to a destination group.
type TransferRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	GroupID   string `json:"group_id" validate:"required"`
	Reason    string `json:"reason"`
}

func (tr *TransferRequest) Validate() error {
	tr.Reason = core.CleanString(tr.Reason)
	return core.Validate.Struct(tr)
}

type QueryFilter struct {
	Search   string `query:"search"`
	GroupID  string `query:"group_id"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.GroupID == "" && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() { qf.Search = core.CleanString(qf.Search) }
