package notification

import (
	"time"

	"github.com/wkarobia/cantera/core"
)

type (
	Status string
	Method string
)

const (
	StatusPending   Status = "PENDING"
	StatusSent      Status = "SENT"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"

	MethodEmail Method = "EMAIL"
	MethodSMS   Method = "SMS"
	MethodInApp Method = "IN_APP"
)

// Bulk actions
const (
	BulkSend   = "send"
	BulkCancel = "cancel"
	BulkDelete = "delete"
)

type Notification struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id,omitempty"`

	// contact details captured at creation time
	RecipientEmail string `json:"recipient_email,omitempty"`
	RecipientPhone string `json:"recipient_phone,omitempty"`

	Subject     string     `json:"subject"`
	Body        string     `json:"body"`
	Method      Method     `json:"method"`
	Status      Status     `json:"status"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	SentAt      *time.Time `json:"sent_at"`
	LastError   string     `json:"last_error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"` // UTC
	UpdatedAt   time.Time  `json:"updated_at"` // UTC
}

type NewNotification struct {
	StudentID      string    `json:"student_id"`
	RecipientEmail string    `json:"recipient_email" validate:"omitempty,email"`
	RecipientPhone string    `json:"recipient_phone"`
	Subject        string    `json:"subject" validate:"required"`
	Body           string    `json:"body" validate:"required"`
	Method         Method    `json:"method" validate:"required,oneof=EMAIL SMS IN_APP"`
	ScheduledAt    time.Time `json:"scheduled_at"` // defaults to now (send immediately on next processing)
}

func (nn *NewNotification) Validate() error {
	nn.Subject = core.CleanString(nn.Subject)
	nn.Body = core.CleanString(nn.Body)
	nn.RecipientEmail = core.CleanString(nn.RecipientEmail, true /* lower */)
	nn.RecipientPhone = core.CleanString(nn.RecipientPhone)
	return core.Validate.Struct(nn)
}

// BulkRequest applies one action to a set of notifications. Items whose
// current status does not match the action's required status are skipped
// silently; only matching rows count as affected.
type BulkRequest struct {
	Action string   `json:"action" validate:"required,oneof=send cancel delete"`
	IDs    []string `json:"ids" validate:"required,min=1"`
}

func (br *BulkRequest) Validate() error { return core.Validate.Struct(br) }

type BulkResult struct {
	Affected int `json:"affected"`
}

// ProcessResult aggregates one scheduled-processing run.
type ProcessResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

type QueryFilter struct {
	StudentID string `query:"student_id"`
	Status    Status `query:"status"`
	Method    Method `query:"method"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == "" && qf.Status == "" && qf.Method == ""
}
