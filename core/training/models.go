package training

import (
	"time"

	"github.com/wkarobia/cantera/core"
)

// Training is a recurring training slot for a group.
type Training struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	Title     string    `json:"title"`
	Weekday   int       `json:"weekday"`    // 0 = Sunday .. 6 = Saturday
	StartTime string    `json:"start_time"` // "HH:MM", local pitch time
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Session is one dated occurrence of a Training.
type Session struct {
	ID         string    `json:"id"`
	TrainingID string    `json:"training_id"`
	Date       time.Time `json:"date"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

// Attendance is one student's presence flag for a session.
type Attendance struct {
	SessionID string `json:"session_id"`
	StudentID string `json:"student_id"`
	Present   bool   `json:"present"`
	Remark    string `json:"remark,omitempty"`
}

type NewTraining struct {
	GroupID   string `json:"group_id" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Weekday   int    `json:"weekday" validate:"min=0,max=6"`
	StartTime string `json:"start_time" validate:"required"`
	Location  string `json:"location"`
}

func (nt *NewTraining) Validate() error {
	nt.Title = core.CleanString(nt.Title)
	nt.Location = core.CleanString(nt.Location)
	return core.Validate.Struct(nt)
}

type UpdateTraining struct {
	Title     string  `json:"title"`
	Weekday   *int    `json:"weekday" validate:"omitempty,min=0,max=6"`
	StartTime string  `json:"start_time"`
	Location  *string `json:"location"`
}

func (ut *UpdateTraining) Validate(orig Training) error {
	if title := core.CleanString(ut.Title); title != "" {
		ut.Title = title
	} else {
		ut.Title = orig.Title
	}
	if ut.StartTime == "" {
		ut.StartTime = orig.StartTime
	}
	return core.Validate.Struct(ut)
}

type NewSession struct {
	Date  time.Time `json:"date" validate:"required"`
	Notes string    `json:"notes"`
}

func (ns *NewSession) Validate() error {
	ns.Notes = core.CleanString(ns.Notes)
	return core.Validate.Struct(ns)
}

// AttendanceSheet is the bulk attendance payload for one session.
type AttendanceSheet struct {
	Entries []AttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}

type AttendanceEntry struct {
	StudentID string `json:"student_id" validate:"required"`
	Present   bool   `json:"present"`
	Remark    string `json:"remark"`
}

func (as *AttendanceSheet) Validate() error { return core.Validate.Struct(as) }

type QueryFilter struct {
	GroupID string `query:"group_id"`
	Search  string `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool { return qf.GroupID == "" && qf.Search == "" }

func (qf *QueryFilter) Clean() { qf.Search = core.CleanString(qf.Search) }
