package payment

import (
	"context"
	"errors"
	"time"

	"github.com/wkarobia/cantera/core"
)

var (
	ErrNotFound          = errors.New("payment not found")
	ErrFeeTypeNotFound   = errors.New("fee type not found")
	ErrFeeTypeNameExists = errors.New("a fee type with this name already exists")
)

type (
	Repository interface {
		CreateFeeType(ctx context.Context, ft FeeType) (FeeType, error)
		GetFeeTypeByID(ctx context.Context, id string) (FeeType, error)
		CheckFeeTypeNameUniqueness(ctx context.Context, name string, excluded ...FeeType) error
		QueryAllFeeTypes(ctx context.Context) ([]FeeType, error)
		UpdateFeeType(ctx context.Context, ft FeeType, isActive *bool) (FeeType, error)
		DeleteFeeTypeByID(ctx context.Context, id string) error
		CountPaymentsByFeeType(ctx context.Context, feeTypeID string) (int, error)

		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		GetPaymentByID(ctx context.Context, id string) (Payment, error)
		FilterPayments(ctx context.Context, filter QueryFilter) ([]Payment, error)
		UpdatePayment(ctx context.Context, p Payment) (Payment, error)
		CountPayments(ctx context.Context) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Fee types

func (svc *Service) CheckFeeTypeNameUniqueness(name string, excl ...FeeType) error {
	if err := svc.repo.CheckFeeTypeNameUniqueness(context.Background(), name, excl...); err != nil {
		if err == ErrFeeTypeNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) CreateFeeType(ctx context.Context, nf NewFeeType) (FeeType, error) {
	now := time.Now().UTC()
	ft := FeeType{
		Name:        nf.Name,
		Amount:      nf.Amount,
		Interval:    nf.Interval,
		Description: nf.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateFeeType(ctx, ft)
}

func (svc *Service) GetFeeType(ctx context.Context, id string) (FeeType, error) {
	return svc.repo.GetFeeTypeByID(ctx, id)
}

func (svc *Service) QueryAllFeeTypes(ctx context.Context) ([]FeeType, error) {
	return svc.repo.QueryAllFeeTypes(ctx)
}

func (svc *Service) UpdateFeeType(ctx context.Context, orig FeeType, uf UpdateFeeType) (FeeType, error) {
	ft := FeeType{
		ID:          orig.ID,
		Name:        uf.Name,
		Amount:      orig.Amount,
		Interval:    uf.Interval,
		Description: orig.Description,
		UpdatedAt:   time.Now().UTC(),
	}
	if uf.Amount != nil {
		ft.Amount = *uf.Amount
	}
	if uf.Description != nil {
		ft.Description = *uf.Description
	}
	return svc.repo.UpdateFeeType(ctx, ft, uf.IsActive)
}

// DeleteFeeType hard-deletes an unreferenced fee type. A fee type referenced
// by at least one payment is deactivated instead so payment history keeps a
// valid reference; there is no restore operation.
// Returns true when the fee type was actually removed.
func (svc *Service) DeleteFeeType(ctx context.Context, id string) (bool, error) {
	ft, err := svc.repo.GetFeeTypeByID(ctx, id)
	if err != nil {
		return false, err
	}
	refs, err := svc.repo.CountPaymentsByFeeType(ctx, ft.ID)
	if err != nil {
		return false, err
	}
	if refs > 0 {
		inactive := false
		ft.UpdatedAt = time.Now().UTC()
		if _, err = svc.repo.UpdateFeeType(ctx, ft, &inactive); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, svc.repo.DeleteFeeTypeByID(ctx, ft.ID)
}

// Payments

func (svc *Service) CreatePayment(ctx context.Context, np NewPayment) (Payment, error) {
	ft, err := svc.repo.GetFeeTypeByID(ctx, np.FeeTypeID)
	if err != nil {
		return Payment{}, err
	}

	now := time.Now().UTC()
	p := Payment{
		StudentID: np.StudentID,
		FeeTypeID: ft.ID,
		Amount:    np.Amount,
		Status:    StatusPending,
		DueDate:   np.DueDate,
		Notes:     np.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.Amount == 0 {
		p.Amount = ft.Amount
	}
	if p.DueDate.IsZero() {
		p.DueDate = now
	}
	return svc.repo.CreatePayment(ctx, p)
}

func (svc *Service) GetPayment(ctx context.Context, id string) (Payment, error) {
	return svc.repo.GetPaymentByID(ctx, id)
}

func (svc *Service) FilterPayments(ctx context.Context, filter QueryFilter) ([]Payment, error) {
	filter.Clean()
	return svc.repo.FilterPayments(ctx, filter)
}

func (svc *Service) CountPayments(ctx context.Context) (int, error) {
	return svc.repo.CountPayments(ctx)
}

// ApplyAction runs one state-machine action against a payment and persists
// the result.
func (svc *Service) ApplyAction(ctx context.Context, id string, pa PaymentAction) (Payment, error) {
	p, err := svc.repo.GetPaymentByID(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	if err = p.Apply(pa, time.Now().UTC()); err != nil {
		return Payment{}, core.NewValidationError(err, core.FieldError{Field: "action", Error: err.Error()})
	}
	return svc.repo.UpdatePayment(ctx, p)
}
