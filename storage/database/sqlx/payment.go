package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/wkarobia/cantera/core"
	"github.com/wkarobia/cantera/core/payment"
)

type paymentRepository struct {
	exec core.DBExecutor
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(exec core.DBExecutor) *paymentRepository {
	return &paymentRepository{exec: exec}
}

type feeTypeRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Amount      float64   `db:"amount"`
	Interval    string    `db:"interval"`
	Description string    `db:"description"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   null.Time `db:"created_at"`
	UpdatedAt   null.Time `db:"updated_at"`
}

type paymentRow struct {
	ID         string    `db:"id"`
	StudentID  string    `db:"student_id"`
	FeeTypeID  string    `db:"fee_type_id"`
	Amount     float64   `db:"amount"`
	PaidAmount float64   `db:"paid_amount"`
	Status     string    `db:"status"`
	Method     string    `db:"method"`
	DueDate    time.Time `db:"due_date"`
	PaidDate   null.Time `db:"paid_date"`
	Notes      string    `db:"notes"`
	CreatedAt  null.Time `db:"created_at"`
	UpdatedAt  null.Time `db:"updated_at"`
}

func unrowFeeType(row feeTypeRow) payment.FeeType {
	return payment.FeeType{
		ID:          row.ID,
		Name:        row.Name,
		Amount:      row.Amount,
		Interval:    row.Interval,
		Description: row.Description,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

func unrowPayment(row paymentRow) payment.Payment {
	p := payment.Payment{
		ID:         row.ID,
		StudentID:  row.StudentID,
		FeeTypeID:  row.FeeTypeID,
		Amount:     row.Amount,
		PaidAmount: row.PaidAmount,
		Status:     payment.Status(row.Status),
		Method:     row.Method,
		DueDate:    row.DueDate,
		Notes:      row.Notes,
		CreatedAt:  row.CreatedAt.Time,
		UpdatedAt:  row.UpdatedAt.Time,
	}
	if row.PaidDate.Valid {
		d := row.PaidDate.Time
		p.PaidDate = &d
	}
	return p
}

// Fee types

func (repo paymentRepository) CreateFeeType(ctx context.Context, ft payment.FeeType) (payment.FeeType, error) {
	ft.ID = uuid.New().String()
	_, err := repo.exec.ExecContext(ctx,
		`INSERT INTO fee_type (id, name, amount, interval, description, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ft.ID, ft.Name, ft.Amount, ft.Interval, ft.Description, ft.IsActive, ft.CreatedAt.UTC(), ft.UpdatedAt.UTC(),
	)
	if err != nil {
		return payment.FeeType{}, errors.Wrap(err, "inserting fee type")
	}
	return ft, nil
}

func (repo paymentRepository) GetFeeTypeByID(ctx context.Context, id string) (payment.FeeType, error) {
	var row feeTypeRow
	err := sqlx.GetContext(ctx, repo.exec, &row, `SELECT * FROM fee_type WHERE id = $1`, id)
	if err != nil {
		return payment.FeeType{}, trapNoRowsErr(err, payment.ErrFeeTypeNotFound, "getting fee type by ID")
	}
	return unrowFeeType(row), nil
}

func (repo paymentRepository) CheckFeeTypeNameUniqueness(ctx context.Context, name string, excluded ...payment.FeeType) error {
	query := `SELECT EXISTS (SELECT 1 FROM fee_type WHERE name = $1`
	args := []interface{}{name}
	if len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, ft := range excluded {
			ids = append(ids, ft.ID)
		}
		query += ` AND NOT (id = ANY($2))`
		args = append(args, pq.StringArray(ids))
	}
	query += `)`

	var exists bool
	if err := sqlx.GetContext(ctx, repo.exec, &exists, query, args...); err != nil {
		return errors.Wrap(err, "checking fee type name uniqueness")
	}
	if exists {
		return payment.ErrFeeTypeNameExists
	}
	return nil
}

func (repo paymentRepository) QueryAllFeeTypes(ctx context.Context) ([]payment.FeeType, error) {
	var rows []feeTypeRow
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, `SELECT * FROM fee_type ORDER BY name ASC`); err != nil {
		return nil, errors.Wrap(err, "querying fee types")
	}
	feeTypes := make([]payment.FeeType, 0, len(rows))
	for _, row := range rows {
		feeTypes = append(feeTypes, unrowFeeType(row))
	}
	return feeTypes, nil
}

func (repo paymentRepository) UpdateFeeType(ctx context.Context, ft payment.FeeType, isActive *bool) (payment.FeeType, error) {
	query := `UPDATE fee_type SET name = $2, amount = $3, interval = $4, description = $5, updated_at = $6`
	args := []interface{}{ft.ID, ft.Name, ft.Amount, ft.Interval, ft.Description, ft.UpdatedAt.UTC()}
	if isActive != nil {
		query += `, is_active = $7`
		args = append(args, *isActive)
	}
	query += ` WHERE id = $1`

	res, err := repo.exec.ExecContext(ctx, query, args...)
	if err != nil {
		return payment.FeeType{}, errors.Wrap(err, "updating fee type")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payment.FeeType{}, payment.ErrFeeTypeNotFound
	}
	return repo.GetFeeTypeByID(ctx, ft.ID)
}

func (repo paymentRepository) DeleteFeeTypeByID(ctx context.Context, id string) error {
	_, err := repo.exec.ExecContext(ctx, `DELETE FROM fee_type WHERE id = $1`, id)
	return errors.Wrap(err, "deleting fee type")
}

func (repo paymentRepository) CountPaymentsByFeeType(ctx context.Context, feeTypeID string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, repo.exec, &n, `SELECT COUNT(*) FROM payment WHERE fee_type_id = $1`, feeTypeID)
	if err != nil {
		return 0, errors.Wrap(err, "counting payments by fee type")
	}
	return n, nil
}

// Payments

func (repo paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	p.ID = uuid.New().String()
	_, err := repo.exec.ExecContext(ctx,
		`INSERT INTO payment (id, student_id, fee_type_id, amount, paid_amount, status, method, due_date, paid_date, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.StudentID, p.FeeTypeID, p.Amount, p.PaidAmount, string(p.Status), p.Method,
		p.DueDate.UTC(), nullTimePtr(p.PaidDate), p.Notes, p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	)
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return p, nil
}

func (repo paymentRepository) GetPaymentByID(ctx context.Context, id string) (payment.Payment, error) {
	var row paymentRow
	err := sqlx.GetContext(ctx, repo.exec, &row, `SELECT * FROM payment WHERE id = $1`, id)
	if err != nil {
		return payment.Payment{}, trapNoRowsErr(err, payment.ErrNotFound, "getting payment by ID")
	}
	return unrowPayment(row), nil
}

func (repo paymentRepository) FilterPayments(ctx context.Context, filter payment.QueryFilter) ([]payment.Payment, error) {
	query := `SELECT * FROM payment`
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if filter.StudentID != "" {
		conds = append(conds, "student_id = "+arg(filter.StudentID))
	}
	if filter.FeeTypeID != "" {
		conds = append(conds, "fee_type_id = "+arg(filter.FeeTypeID))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(string(filter.Status)))
	}
	if filter.Search != "" {
		conds = append(conds, "notes ILIKE "+arg("%"+filter.Search+"%"))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + core.DBOrdering{Field: "due_date"}.String()

	var rows []paymentRow
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering payments")
	}
	payments := make([]payment.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, unrowPayment(row))
	}
	return payments, nil
}

func (repo paymentRepository) UpdatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	res, err := repo.exec.ExecContext(ctx,
		`UPDATE payment SET paid_amount = $2, status = $3, method = $4, paid_date = $5, notes = $6, updated_at = $7
		 WHERE id = $1`,
		p.ID, p.PaidAmount, string(p.Status), p.Method, nullTimePtr(p.PaidDate), p.Notes, p.UpdatedAt.UTC(),
	)
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "updating payment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payment.Payment{}, payment.ErrNotFound
	}
	return repo.GetPaymentByID(ctx, p.ID)
}

func (repo paymentRepository) CountPayments(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, repo.exec, &n, `SELECT COUNT(*) FROM payment`); err != nil {
		return 0, errors.Wrap(err, "counting payments")
	}
	return n, nil
}
