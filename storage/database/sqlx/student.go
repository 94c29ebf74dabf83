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
	"github.com/wkarobia/cantera/core/student"
)

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{exec: exec}
}

type studentRow struct {
	ID                    string      `db:"id"`
	Name                  string      `db:"name"`
	BirthDate             time.Time   `db:"birth_date"`
	GroupID               null.String `db:"group_id"`
	ParentName            string      `db:"parent_name"`
	ParentPhone           string      `db:"parent_phone"`
	ParentEmail           string      `db:"parent_email"`
	SecondaryContactName  string      `db:"secondary_contact_name"`
	SecondaryContactPhone string      `db:"secondary_contact_phone"`
	MedicalNotes          string      `db:"medical_notes"`
	IsActive              bool        `db:"is_active"`
	CreatedAt             null.Time   `db:"created_at"`
	UpdatedAt             null.Time   `db:"updated_at"`
}

type groupHistoryRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	GroupID   string    `db:"group_id"`
	StartDate time.Time `db:"start_date"`
	EndDate   null.Time `db:"end_date"`
	Reason    string    `db:"reason"`
}

func (repo studentRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo studentRepository) row(stu student.Student) studentRow {
	return studentRow{
		ID:                    stu.ID,
		Name:                  stu.Name,
		BirthDate:             stu.BirthDate,
		GroupID:               null.NewString(stu.GroupID, stu.GroupID != ""),
		ParentName:            stu.ParentName,
		ParentPhone:           stu.ParentPhone,
		ParentEmail:           stu.ParentEmail,
		SecondaryContactName:  stu.SecondaryContactName,
		SecondaryContactPhone: stu.SecondaryContactPhone,
		MedicalNotes:          stu.MedicalNotes,
		IsActive:              stu.IsActive,
		CreatedAt:             null.NewTime(stu.CreatedAt.UTC(), !stu.CreatedAt.IsZero()),
		UpdatedAt:             null.NewTime(stu.UpdatedAt.UTC(), !stu.UpdatedAt.IsZero()),
	}
}

func (repo studentRepository) unrow(row studentRow) student.Student {
	return student.Student{
		ID:                    row.ID,
		Name:                  row.Name,
		BirthDate:             row.BirthDate,
		GroupID:               row.GroupID.String,
		ParentName:            row.ParentName,
		ParentPhone:           row.ParentPhone,
		ParentEmail:           row.ParentEmail,
		SecondaryContactName:  row.SecondaryContactName,
		SecondaryContactPhone: row.SecondaryContactPhone,
		MedicalNotes:          row.MedicalNotes,
		IsActive:              row.IsActive,
		CreatedAt:             row.CreatedAt.Time,
		UpdatedAt:             row.UpdatedAt.Time,
	}
}

func (repo studentRepository) unrowHistory(row groupHistoryRow) student.GroupHistory {
	gh := student.GroupHistory{
		ID:        row.ID,
		StudentID: row.StudentID,
		GroupID:   row.GroupID,
		StartDate: row.StartDate,
		Reason:    row.Reason,
	}
	if row.EndDate.Valid {
		end := row.EndDate.Time
		gh.EndDate = &end
	}
	return gh
}

func (repo studentRepository) CreateStudent(ctx context.Context, stu student.Student, exec ...core.DBExecutor) (student.Student, error) {
	stu.ID = uuid.New().String()
	row := repo.row(stu)
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO student (id, name, birth_date, group_id, parent_name, parent_phone, parent_email,
		                      secondary_contact_name, secondary_contact_phone, medical_notes, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		row.ID, row.Name, row.BirthDate, row.GroupID, row.ParentName, row.ParentPhone, row.ParentEmail,
		row.SecondaryContactName, row.SecondaryContactPhone, row.MedicalNotes, row.IsActive, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return stu, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (student.Student, error) {
	var row studentRow
	err := sqlx.GetContext(ctx, repo.getExec(exec), &row, `SELECT * FROM student WHERE id = $1`, id)
	if err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "getting student by ID")
	}
	return repo.unrow(row), nil
}

func (repo studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	query := `SELECT * FROM student`
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, "(name ILIKE "+p+" OR parent_name ILIKE "+p+" OR parent_email ILIKE "+p+")")
	}
	if filter.GroupID != "" {
		conds = append(conds, "group_id = "+arg(filter.GroupID))
	}
	if filter.IsActive != nil {
		conds = append(conds, "is_active = "+arg(*filter.IsActive))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + core.DBOrdering{Field: "name", Ascending: true}.String()

	var rows []studentRow
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, repo.unrow(row))
	}
	return students, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, stu student.Student, isActive *bool) (student.Student, error) {
	row := repo.row(stu)
	query := `UPDATE student SET
		name = $2, birth_date = $3, parent_name = $4, parent_phone = $5, parent_email = $6,
		secondary_contact_name = $7, secondary_contact_phone = $8, medical_notes = $9, updated_at = $10`
	args := []interface{}{row.ID, row.Name, row.BirthDate, row.ParentName, row.ParentPhone, row.ParentEmail,
		row.SecondaryContactName, row.SecondaryContactPhone, row.MedicalNotes, row.UpdatedAt}
	if isActive != nil {
		query += `, is_active = $11`
		args = append(args, *isActive)
	}
	query += ` WHERE id = $1`

	res, err := repo.exec.ExecContext(ctx, query, args...)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudentByID(ctx, stu.ID)
}

func (repo studentRepository) SetStudentGroup(ctx context.Context, studentID, groupID string, exec ...core.DBExecutor) error {
	res, err := repo.getExec(exec).ExecContext(ctx,
		`UPDATE student SET group_id = $2, updated_at = NOW() WHERE id = $1`,
		studentID, null.NewString(groupID, groupID != ""),
	)
	if err != nil {
		return errors.Wrap(err, "setting student group")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.ErrNotFound
	}
	return nil
}

func (repo studentRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	_, err := repo.exec.ExecContext(ctx, `DELETE FROM student WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting students")
}

func (repo studentRepository) CountStudents(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, repo.exec, &n, `SELECT COUNT(*) FROM student`); err != nil {
		return 0, errors.Wrap(err, "counting students")
	}
	return n, nil
}

func (repo studentRepository) GetOpenGroupHistory(ctx context.Context, studentID string, exec ...core.DBExecutor) (student.GroupHistory, error) {
	var row groupHistoryRow
	err := sqlx.GetContext(ctx, repo.getExec(exec), &row,
		`SELECT * FROM group_history WHERE student_id = $1 AND end_date IS NULL`, studentID)
	if err != nil {
		return student.GroupHistory{}, trapNoRowsErr(err, student.ErrHistoryNotFound, "getting open group history")
	}
	return repo.unrowHistory(row), nil
}

func (repo studentRepository) CloseGroupHistory(ctx context.Context, id string, end time.Time, reason string, exec ...core.DBExecutor) error {
	res, err := repo.getExec(exec).ExecContext(ctx,
		`UPDATE group_history SET end_date = $2, reason = $3 WHERE id = $1 AND end_date IS NULL`,
		id, end.UTC(), reason,
	)
	if err != nil {
		return errors.Wrap(err, "closing group history")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.ErrHistoryNotFound
	}
	return nil
}

func (repo studentRepository) CreateGroupHistory(ctx context.Context, gh student.GroupHistory, exec ...core.DBExecutor) (student.GroupHistory, error) {
	gh.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO group_history (id, student_id, group_id, start_date, end_date, reason)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		gh.ID, gh.StudentID, gh.GroupID, gh.StartDate.UTC(), nullTimePtr(gh.EndDate), gh.Reason,
	)
	if err != nil {
		return student.GroupHistory{}, errors.Wrap(err, "inserting group history")
	}
	return gh, nil
}

func (repo studentRepository) ListGroupHistory(ctx context.Context, studentID string) ([]student.GroupHistory, error) {
	var rows []groupHistoryRow
	err := sqlx.SelectContext(ctx, repo.exec, &rows,
		`SELECT * FROM group_history WHERE student_id = $1 ORDER BY start_date ASC`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "listing group history")
	}
	history := make([]student.GroupHistory, 0, len(rows))
	for _, row := range rows {
		history = append(history, repo.unrowHistory(row))
	}
	return history, nil
}

func nullTimePtr(t *time.Time) null.Time {
	if t == nil {
		return null.Time{}
	}
	return null.TimeFrom(t.UTC())
}
