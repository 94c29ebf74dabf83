package inmem

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/wkarobia/cantera/core/payment"
)

type paymentRepository struct {
	db *DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *DB) *paymentRepository {
	return &paymentRepository{db: db}
}

// Fee types

func (repo paymentRepository) CreateFeeType(ctx context.Context, ft payment.FeeType) (payment.FeeType, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	ft.ID = uuid.New().String()
	repo.db.store.feeTypes[ft.ID] = ft
	return ft, nil
}

func (repo paymentRepository) GetFeeTypeByID(ctx context.Context, id string) (payment.FeeType, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	ft, ok := repo.db.store.feeTypes[id]
	if !ok {
		return payment.FeeType{}, payment.ErrFeeTypeNotFound
	}
	return ft, nil
}

func (repo paymentRepository) CheckFeeTypeNameUniqueness(ctx context.Context, name string, excluded ...payment.FeeType) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	skip := make(map[string]struct{}, len(excluded))
	for _, ft := range excluded {
		skip[ft.ID] = struct{}{}
	}
	for _, ft := range repo.db.store.feeTypes {
		if _, ok := skip[ft.ID]; ok {
			continue
		}
		if ft.Name == name {
			return payment.ErrFeeTypeNameExists
		}
	}
	return nil
}

func (repo paymentRepository) QueryAllFeeTypes(ctx context.Context) ([]payment.FeeType, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	feeTypes := make([]payment.FeeType, 0, len(repo.db.store.feeTypes))
	for _, ft := range repo.db.store.feeTypes {
		feeTypes = append(feeTypes, ft)
	}
	sort.Slice(feeTypes, func(i, j int) bool { return feeTypes[i].Name < feeTypes[j].Name })
	return feeTypes, nil
}

func (repo paymentRepository) UpdateFeeType(ctx context.Context, ft payment.FeeType, isActive *bool) (payment.FeeType, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.store.feeTypes[ft.ID]
	if !ok {
		return payment.FeeType{}, payment.ErrFeeTypeNotFound
	}
	if ft.Name != "" {
		orig.Name = ft.Name
	}
	if ft.Amount > 0 {
		orig.Amount = ft.Amount
	}
	if ft.Interval != "" {
		orig.Interval = ft.Interval
	}
	if ft.Description != "" {
		orig.Description = ft.Description
	}
	if isActive != nil {
		orig.IsActive = *isActive
	}
	orig.UpdatedAt = ft.UpdatedAt
	repo.db.store.feeTypes[ft.ID] = orig
	return orig, nil
}

func (repo paymentRepository) DeleteFeeTypeByID(ctx context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.store.feeTypes[id]; !ok {
		return payment.ErrFeeTypeNotFound
	}
	delete(repo.db.store.feeTypes, id)
	return nil
}

func (repo paymentRepository) CountPaymentsByFeeType(ctx context.Context, feeTypeID string) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var count int
	for _, p := range repo.db.store.payments {
		if p.FeeTypeID == feeTypeID {
			count++
		}
	}
	return count, nil
}

// Payments

func (repo paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p.ID = uuid.New().String()
	repo.db.store.payments[p.ID] = p
	return p, nil
}

func (repo paymentRepository) GetPaymentByID(ctx context.Context, id string) (payment.Payment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	p, ok := repo.db.store.payments[id]
	if !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	return p, nil
}

func (repo paymentRepository) FilterPayments(ctx context.Context, filter payment.QueryFilter) ([]payment.Payment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	payments := make([]payment.Payment, 0, len(repo.db.store.payments))
	for _, p := range repo.db.store.payments {
		if filter.StudentID != "" && p.StudentID != filter.StudentID {
			continue
		}
		if filter.FeeTypeID != "" && p.FeeTypeID != filter.FeeTypeID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !matchesAny(filter.Search, p.Notes, p.Method) {
			continue
		}
		payments = append(payments, p)
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].DueDate.After(payments[j].DueDate) })
	return payments, nil
}

func (repo paymentRepository) UpdatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.store.payments[p.ID]; !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	repo.db.store.payments[p.ID] = p
	return p, nil
}

func (repo paymentRepository) CountPayments(ctx context.Context) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.db.store.payments), nil
}
