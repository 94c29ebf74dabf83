package payment

import (
	"errors"
	"strings"
	"time"
)

type (
	Status string
	Action string
)

const (
	StatusPending   Status = "PENDING"
	StatusPartial   Status = "PARTIAL"
	StatusPaid      Status = "PAID"
	StatusOverdue   Status = "OVERDUE"
	StatusCancelled Status = "CANCELLED"

	ActionRecordPayment Action = "record_payment"
	ActionMarkOverdue   Action = "mark_overdue"
	ActionCancel        Action = "cancel"
)

const (
	notesDelimiter = " | "
	cancelMarker   = "CANCELLED"
)

var (
	ErrInvalidAction     = errors.New("invalid payment action")
	ErrIllegalTransition = errors.New("action not allowed for current payment status")
)

// transitions lists the source statuses each action accepts.
// mark_overdue deliberately accepts every status, PAID and CANCELLED
// included; the original system never guarded it and callers may rely on
// forcing the flag. Known gap, kept as-is.
var transitions = map[Action]map[Status]bool{
	ActionRecordPayment: {
		StatusPending: true,
		StatusPartial: true,
		StatusOverdue: true,
	},
	ActionMarkOverdue: {
		StatusPending:   true,
		StatusPartial:   true,
		StatusPaid:      true,
		StatusOverdue:   true,
		StatusCancelled: true,
	},
	ActionCancel: {
		StatusPending: true,
		StatusPartial: true,
		StatusOverdue: true,
	},
}

// CanApply reports whether act is legal from status st.
// An unknown action yields ErrInvalidAction, a known action from a
// disallowed status yields ErrIllegalTransition.
func CanApply(act Action, st Status) error {
	allowed, ok := transitions[act]
	if !ok {
		return ErrInvalidAction
	}
	if !allowed[st] {
		return ErrIllegalTransition
	}
	return nil
}

// Apply mutates p according to act. The caller is expected to have bound and
// validated the action payload; Apply enforces the transition table.
func (p *Payment) Apply(pa PaymentAction, now time.Time) error {
	if err := CanApply(pa.Action, p.Status); err != nil {
		return err
	}

	switch pa.Action {
	case ActionRecordPayment:
		amt := p.Remaining()
		if pa.Amount != nil {
			amt = *pa.Amount
		}
		p.PaidAmount += amt
		switch {
		case p.PaidAmount >= p.Amount:
			p.Status = StatusPaid
		case p.PaidAmount > 0:
			p.Status = StatusPartial
		}
		if pa.Method != "" {
			p.Method = pa.Method
		}
		if pa.PaidDate != nil {
			d := pa.PaidDate.UTC()
			p.PaidDate = &d
		} else {
			d := now
			p.PaidDate = &d
		}
		p.appendNote(pa.Note)

	case ActionMarkOverdue:
		p.Status = StatusOverdue
		p.appendNote(pa.Note)

	case ActionCancel:
		p.Status = StatusCancelled
		note := cancelMarker
		if pa.Note != "" {
			note += ": " + pa.Note
		}
		p.appendNote(note)
	}

	p.UpdatedAt = now
	return nil
}

// appendNote joins a new note onto the existing log instead of overwriting it.
func (p *Payment) appendNote(note string) {
	if note == "" {
		return
	}
	if p.Notes == "" {
		p.Notes = note
		return
	}
	p.Notes = strings.Join([]string{p.Notes, note}, notesDelimiter)
}
