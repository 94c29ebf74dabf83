package payment

import (
	"time"

	"github.com/wkarobia/cantera/core"
)

// Fee intervals
const (
	IntervalMonthly   = "MONTHLY"
	IntervalQuarterly = "QUARTERLY"
	IntervalAnnual    = "ANNUAL"
	IntervalOneOff    = "ONE_OFF"
)

// FeeType is a template for recurring charges. A FeeType referenced by
// existing payments is deactivated instead of deleted.
type FeeType struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Amount      float64   `json:"amount"`
	Interval    string    `json:"interval"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type Payment struct {
	ID         string     `json:"id"`
	StudentID  string     `json:"student_id"`
	FeeTypeID  string     `json:"fee_type_id"`
	Amount     float64    `json:"amount"`
	PaidAmount float64    `json:"paid_amount"`
	Status     Status     `json:"status"`
	Method     string     `json:"method,omitempty"` // eg. "cash", "mpesa", "bank"
	DueDate    time.Time  `json:"due_date"`
	PaidDate   *time.Time `json:"paid_date"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"` // UTC
	UpdatedAt  time.Time  `json:"updated_at"` // UTC
}

func (p Payment) Remaining() float64 {
	if rem := p.Amount - p.PaidAmount; rem > 0 {
		return rem
	}
	return 0
}

// NewFeeType contains information needed to create a new FeeType.
type NewFeeType struct {
	Name        string  `json:"name" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Interval    string  `json:"interval" validate:"required,oneof=MONTHLY QUARTERLY ANNUAL ONE_OFF"`
	Description string  `json:"description"`
}

func (nf *NewFeeType) Validate(svc *Service) error {
	nf.Name = core.CleanString(nf.Name)
	if err := core.Validate.Struct(nf); err != nil {
		return err
	}
	return svc.CheckFeeTypeNameUniqueness(nf.Name)
}

// UpdateFeeType defines what information may be provided to modify an existing FeeType.
type UpdateFeeType struct {
	Name        string   `json:"name"`
	Amount      *float64 `json:"amount" validate:"omitempty,gt=0"`
	Interval    string   `json:"interval" validate:"omitempty,oneof=MONTHLY QUARTERLY ANNUAL ONE_OFF"`
	Description *string  `json:"description"`
	IsActive    *bool    `json:"is_active"`
}

func (uf *UpdateFeeType) Validate(orig FeeType, svc *Service) error {
	if name := core.CleanString(uf.Name); name != "" {
		uf.Name = name
	} else {
		uf.Name = orig.Name
	}
	if uf.Interval == "" {
		uf.Interval = orig.Interval
	}
	if err := core.Validate.Struct(uf); err != nil {
		return err
	}
	return svc.CheckFeeTypeNameUniqueness(uf.Name, orig)
}

// NewPayment contains information needed to raise a payment against a student.
type NewPayment struct {
	StudentID string    `json:"student_id" validate:"required"`
	FeeTypeID string    `json:"fee_type_id" validate:"required"`
	Amount    float64   `json:"amount" validate:"omitempty,gt=0"` // defaults to the fee type amount
	DueDate   time.Time `json:"due_date"`
	Notes     string    `json:"notes"`
}

func (np *NewPayment) Validate() error {
	np.Notes = core.CleanString(np.Notes)
	return core.Validate.Struct(np)
}

// PaymentAction is the PATCH payload driving the payment state machine.
type PaymentAction struct {
	Action   Action     `json:"action" validate:"required"`
	Amount   *float64   `json:"amount" validate:"omitempty,gt=0"`
	Method   string     `json:"method"`
	PaidDate *time.Time `json:"paid_date"`
	Note     string     `json:"note"`
}

func (pa *PaymentAction) Validate() error {
	pa.Method = core.CleanString(pa.Method)
	pa.Note = core.CleanString(pa.Note)
	return core.Validate.Struct(pa)
}

type QueryFilter struct {
	StudentID string `query:"student_id"`
	FeeTypeID string `query:"fee_type_id"`
	Status    Status `query:"status"`
	Search    string `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == "" && qf.FeeTypeID == "" && qf.Status == "" && qf.Search == ""
}

func (qf *QueryFilter) Clean() { qf.Search = core.CleanString(qf.Search) }
