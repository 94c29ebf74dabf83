package payment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wkarobia/cantera/core"
	"github.com/wkarobia/cantera/core/payment"
	"github.com/wkarobia/cantera/storage/database/inmem"
	"github.com/wkarobia/cantera/tests"
)

func TestService_CreatePayment(t *testing.T) {
	ctx := context.Background()
	db := inmem.NewDB()
	repo := inmem.NewPaymentRepository(db)
	svc := payment.NewService(repo)

	ft := testutil.CreateFeeType(t, repo, "Monthly Fee", 2500, payment.IntervalMonthly)

	t.Run("amount defaults to the fee type amount", func(t *testing.T) {
		p, err := svc.CreatePayment(ctx, payment.NewPayment{StudentID: "stu1", FeeTypeID: ft.ID})
		if err != nil {
			t.Fatalf("CreatePayment() error = %v", err)
		}
		if p.Amount != ft.Amount {
			t.Errorf("amount = %v; want %v", p.Amount, ft.Amount)
		}
		if p.Status != payment.StatusPending {
			t.Errorf("status = %v; want %v", p.Status, payment.StatusPending)
		}
		if p.DueDate.IsZero() {
			t.Error("due date should default to now")
		}
	})

	t.Run("explicit amount wins", func(t *testing.T) {
		p, err := svc.CreatePayment(ctx, payment.NewPayment{StudentID: "stu1", FeeTypeID: ft.ID, Amount: 1000})
		if err != nil {
			t.Fatalf("CreatePayment() error = %v", err)
		}
		if p.Amount != 1000 {
			t.Errorf("amount = %v; want 1000", p.Amount)
		}
	})

	t.Run("unknown fee type", func(t *testing.T) {
		if _, err := svc.CreatePayment(ctx, payment.NewPayment{StudentID: "stu1", FeeTypeID: "nope"}); err != payment.ErrFeeTypeNotFound {
			t.Errorf("CreatePayment() error = %v; want %v", err, payment.ErrFeeTypeNotFound)
		}
	})
}

func TestService_DeleteFeeType(t *testing.T) {
	ctx := context.Background()
	db := inmem.NewDB()
	repo := inmem.NewPaymentRepository(db)
	svc := payment.NewService(repo)

	t.Run("unreferenced fee type is removed", func(t *testing.T) {
		ft := testutil.CreateFeeType(t, repo, "Trial Fee", 500, payment.IntervalOneOff)

		deleted, err := svc.DeleteFeeType(ctx, ft.ID)
		if err != nil {
			t.Fatalf("DeleteFeeType() error = %v", err)
		}
		if !deleted {
			t.Error("fee type should have been removed")
		}
		if _, err := svc.GetFeeType(ctx, ft.ID); err != payment.ErrFeeTypeNotFound {
			t.Errorf("GetFeeType() error = %v; want %v", err, payment.ErrFeeTypeNotFound)
		}
	})

	t.Run("referenced fee type is deactivated instead", func(t *testing.T) {
		ft := testutil.CreateFeeType(t, repo, "Annual Fee", 20000, payment.IntervalAnnual)
		testutil.CreatePayment(t, repo, "stu1", ft, time.Now().UTC())

		deleted, err := svc.DeleteFeeType(ctx, ft.ID)
		if err != nil {
			t.Fatalf("DeleteFeeType() error = %v", err)
		}
		if deleted {
			t.Error("fee type should have been kept")
		}
		refreshed, err := svc.GetFeeType(ctx, ft.ID)
		if err != nil {
			t.Fatalf("GetFeeType() error = %v", err)
		}
		if refreshed.IsActive {
			t.Error("fee type should be inactive")
		}
	})

	t.Run("unknown fee type", func(t *testing.T) {
		if _, err := svc.DeleteFeeType(ctx, "nope"); err != payment.ErrFeeTypeNotFound {
			t.Errorf("DeleteFeeType() error = %v; want %v", err, payment.ErrFeeTypeNotFound)
		}
	})
}

func TestService_ApplyAction(t *testing.T) {
	ctx := context.Background()
	db := inmem.NewDB()
	repo := inmem.NewPaymentRepository(db)
	svc := payment.NewService(repo)

	ft := testutil.CreateFeeType(t, repo, "Kit Fee", 3000, payment.IntervalOneOff)

	t.Run("record payment persists the new state", func(t *testing.T) {
		p := testutil.CreatePayment(t, repo, "stu1", ft, time.Now().UTC())

		amt := 1000.0
		updated, err := svc.ApplyAction(ctx, p.ID, payment.PaymentAction{Action: payment.ActionRecordPayment, Amount: &amt, Method: "mpesa"})
		if err != nil {
			t.Fatalf("ApplyAction() error = %v", err)
		}
		if updated.Status != payment.StatusPartial {
			t.Errorf("status = %v; want %v", updated.Status, payment.StatusPartial)
		}

		refreshed, err := svc.GetPayment(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetPayment() error = %v", err)
		}
		if refreshed.PaidAmount != 1000 {
			t.Errorf("paid amount = %v; want 1000", refreshed.PaidAmount)
		}
		if refreshed.Method != "mpesa" {
			t.Errorf("method = %q; want mpesa", refreshed.Method)
		}
	})

	t.Run("illegal transition is a validation error", func(t *testing.T) {
		p := testutil.CreatePayment(t, repo, "stu2", ft, time.Now().UTC())
		if _, err := svc.ApplyAction(ctx, p.ID, payment.PaymentAction{Action: payment.ActionCancel}); err != nil {
			t.Fatalf("ApplyAction() error = %v", err)
		}

		_, err := svc.ApplyAction(ctx, p.ID, payment.PaymentAction{Action: payment.ActionRecordPayment})
		var vErr *core.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("ApplyAction() error = %v; want ValidationError", err)
		}
		if vErr.Err != payment.ErrIllegalTransition {
			t.Errorf("cause = %v; want %v", vErr.Err, payment.ErrIllegalTransition)
		}
	})

	t.Run("unknown payment", func(t *testing.T) {
		if _, err := svc.ApplyAction(ctx, "nope", payment.PaymentAction{Action: payment.ActionCancel}); err != payment.ErrNotFound {
			t.Errorf("ApplyAction() error = %v; want %v", err, payment.ErrNotFound)
		}
	})
}
