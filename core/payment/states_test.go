package payment

import (
	"testing"
	"time"
)

func TestCanApply(t *testing.T) {
	tests := []struct {
		name    string
		act     Action
		st      Status
		wantErr error
	}{
		{name: "unknown action", act: Action("refund"), st: StatusPending, wantErr: ErrInvalidAction},
		{name: "record on pending", act: ActionRecordPayment, st: StatusPending},
		{name: "record on partial", act: ActionRecordPayment, st: StatusPartial},
		{name: "record on overdue", act: ActionRecordPayment, st: StatusOverdue},
		{name: "record on paid", act: ActionRecordPayment, st: StatusPaid, wantErr: ErrIllegalTransition},
		{name: "record on cancelled", act: ActionRecordPayment, st: StatusCancelled, wantErr: ErrIllegalTransition},
		{name: "cancel on pending", act: ActionCancel, st: StatusPending},
		{name: "cancel on partial", act: ActionCancel, st: StatusPartial},
		{name: "cancel on overdue", act: ActionCancel, st: StatusOverdue},
		{name: "cancel on paid", act: ActionCancel, st: StatusPaid, wantErr: ErrIllegalTransition},
		{name: "cancel on cancelled", act: ActionCancel, st: StatusCancelled, wantErr: ErrIllegalTransition},
		{name: "overdue on pending", act: ActionMarkOverdue, st: StatusPending},
		{name: "overdue on paid", act: ActionMarkOverdue, st: StatusPaid},           // unguarded
		{name: "overdue on cancelled", act: ActionMarkOverdue, st: StatusCancelled}, // unguarded
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CanApply(tt.act, tt.st); err != tt.wantErr {
				t.Errorf("CanApply() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPayment_Apply_recordPayment(t *testing.T) {
	now := time.Now().UTC()

	t.Run("full payment defaults to remaining", func(t *testing.T) {
		p := Payment{Amount: 100, Status: StatusPending}
		err := p.Apply(PaymentAction{Action: ActionRecordPayment, Method: "cash"}, now)
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if p.Status != StatusPaid {
			t.Errorf("status = %v; want %v", p.Status, StatusPaid)
		}
		if p.PaidAmount != 100 {
			t.Errorf("paid amount = %v; want 100", p.PaidAmount)
		}
		if p.Method != "cash" {
			t.Errorf("method = %q; want cash", p.Method)
		}
		if p.PaidDate == nil || !p.PaidDate.Equal(now) {
			t.Errorf("paid date = %v; want %v", p.PaidDate, now)
		}
	})

	t.Run("partial payments accumulate", func(t *testing.T) {
		amt1, amt2 := 30.0, 70.0
		p := Payment{Amount: 100, Status: StatusPending}

		if err := p.Apply(PaymentAction{Action: ActionRecordPayment, Amount: &amt1}, now); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if p.Status != StatusPartial {
			t.Errorf("status = %v; want %v", p.Status, StatusPartial)
		}
		if p.Remaining() != 70 {
			t.Errorf("remaining = %v; want 70", p.Remaining())
		}

		if err := p.Apply(PaymentAction{Action: ActionRecordPayment, Amount: &amt2}, now); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if p.Status != StatusPaid {
			t.Errorf("status = %v; want %v", p.Status, StatusPaid)
		}
		if p.Remaining() != 0 {
			t.Errorf("remaining = %v; want 0", p.Remaining())
		}
	})

	t.Run("overpayment caps remaining at zero", func(t *testing.T) {
		amt := 150.0
		p := Payment{Amount: 100, Status: StatusOverdue}
		if err := p.Apply(PaymentAction{Action: ActionRecordPayment, Amount: &amt}, now); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if p.Status != StatusPaid {
			t.Errorf("status = %v; want %v", p.Status, StatusPaid)
		}
		if p.Remaining() != 0 {
			t.Errorf("remaining = %v; want 0", p.Remaining())
		}
	})

	t.Run("explicit paid date is kept", func(t *testing.T) {
		paid := now.AddDate(0, 0, -2)
		p := Payment{Amount: 50, Status: StatusPending}
		if err := p.Apply(PaymentAction{Action: ActionRecordPayment, PaidDate: &paid}, now); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if p.PaidDate == nil || !p.PaidDate.Equal(paid) {
			t.Errorf("paid date = %v; want %v", p.PaidDate, paid)
		}
	})
}

func TestPayment_Apply_cancel(t *testing.T) {
	now := time.Now().UTC()

	p := Payment{Amount: 100, Status: StatusPending, Notes: "Term 1"}
	if err := p.Apply(PaymentAction{Action: ActionCancel, Note: "left the academy"}, now); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if p.Status != StatusCancelled {
		t.Errorf("status = %v; want %v", p.Status, StatusCancelled)
	}
	want := "Term 1 | CANCELLED: left the academy"
	if p.Notes != want {
		t.Errorf("notes = %q; want %q", p.Notes, want)
	}
}

func TestPayment_Apply_markOverdue(t *testing.T) {
	now := time.Now().UTC()

	// mark_overdue is deliberately unguarded, a PAID payment can be forced
	p := Payment{Amount: 100, PaidAmount: 100, Status: StatusPaid}
	if err := p.Apply(PaymentAction{Action: ActionMarkOverdue}, now); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if p.Status != StatusOverdue {
		t.Errorf("status = %v; want %v", p.Status, StatusOverdue)
	}
}
