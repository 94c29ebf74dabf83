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
	"github.com/wkarobia/cantera/core/training"
)

type trainingRepository struct {
	exec core.DBExecutor
}

var _ training.Repository = (*trainingRepository)(nil) // interface compliance check

func NewTrainingRepository(exec core.DBExecutor) *trainingRepository {
	return &trainingRepository{exec: exec}
}

type trainingRow struct {
	ID        string      `db:"id"`
	GroupID   string      `db:"group_id"`
	Title     string      `db:"title"`
	Weekday   int         `db:"weekday"`
	StartTime string      `db:"start_time"`
	Location  null.String `db:"location"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

func unrowTraining(row trainingRow) training.Training {
	return training.Training{
		ID:        row.ID,
		GroupID:   row.GroupID,
		Title:     row.Title,
		Weekday:   row.Weekday,
		StartTime: row.StartTime,
		Location:  row.Location.String,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}

type sessionRow struct {
	ID         string      `db:"id"`
	TrainingID string      `db:"training_id"`
	Date       time.Time   `db:"date"`
	Notes      null.String `db:"notes"`
	CreatedAt  null.Time   `db:"created_at"`
}

func unrowSession(row sessionRow) training.Session {
	return training.Session{
		ID:         row.ID,
		TrainingID: row.TrainingID,
		Date:       row.Date,
		Notes:      row.Notes.String,
		CreatedAt:  row.CreatedAt.Time,
	}
}

type attendanceRow struct {
	SessionID string      `db:"session_id"`
	StudentID string      `db:"student_id"`
	Present   bool        `db:"present"`
	Remark    null.String `db:"remark"`
}

func (repo trainingRepository) CreateTraining(ctx context.Context, tr training.Training) (training.Training, error) {
	tr.ID = uuid.New().String()
	_, err := repo.exec.ExecContext(ctx,
		`INSERT INTO training (id, group_id, title, weekday, start_time, location, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		tr.ID, tr.GroupID, tr.Title, tr.Weekday, tr.StartTime,
		null.NewString(tr.Location, tr.Location != ""), tr.CreatedAt.UTC(), tr.UpdatedAt.UTC(),
	)
	if err != nil {
		return training.Training{}, errors.Wrap(err, "inserting training")
	}
	return tr, nil
}

func (repo trainingRepository) GetTrainingByID(ctx context.Context, id string) (training.Training, error) {
	var row trainingRow
	err := sqlx.GetContext(ctx, repo.exec, &row, `SELECT * FROM training WHERE id = $1`, id)
	if err != nil {
		return training.Training{}, trapNoRowsErr(err, training.ErrNotFound, "getting training by ID")
	}
	return unrowTraining(row), nil
}

func (repo trainingRepository) FilterTrainings(ctx context.Context, filter training.QueryFilter) ([]training.Training, error) {
	query := `SELECT * FROM training`
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if filter.GroupID != "" {
		conds = append(conds, "group_id = "+arg(filter.GroupID))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		conds = append(conds, "(title ILIKE "+arg(pattern)+" OR location ILIKE "+arg(pattern)+")")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY weekday, start_time"

	var rows []trainingRow
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering trainings")
	}
	trainings := make([]training.Training, 0, len(rows))
	for _, row := range rows {
		trainings = append(trainings, unrowTraining(row))
	}
	return trainings, nil
}

func (repo trainingRepository) UpdateTraining(ctx context.Context, tr training.Training) (training.Training, error) {
	res, err := repo.exec.ExecContext(ctx,
		`UPDATE training SET title = $2, weekday = $3, start_time = $4, location = $5, updated_at = $6
		 WHERE id = $1`,
		tr.ID, tr.Title, tr.Weekday, tr.StartTime,
		null.NewString(tr.Location, tr.Location != ""), tr.UpdatedAt.UTC(),
	)
	if err != nil {
		return training.Training{}, errors.Wrap(err, "updating training")
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return training.Training{}, training.ErrNotFound
	}
	return repo.GetTrainingByID(ctx, tr.ID)
}

func (repo trainingRepository) DeleteTrainingsByID(ctx context.Context, ids ...string) error {
	_, err := repo.exec.ExecContext(ctx, `DELETE FROM training WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting trainings")
}

func (repo trainingRepository) CountTrainings(ctx context.Context) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, repo.exec, &count, `SELECT COUNT(*) FROM training`)
	return count, errors.Wrap(err, "counting trainings")
}

func (repo trainingRepository) CreateSession(ctx context.Context, s training.Session) (training.Session, error) {
	s.ID = uuid.New().String()
	_, err := repo.exec.ExecContext(ctx,
		`INSERT INTO training_session (id, training_id, date, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.TrainingID, s.Date.UTC(), null.NewString(s.Notes, s.Notes != ""), s.CreatedAt.UTC(),
	)
	if err != nil {
		return training.Session{}, errors.Wrap(err, "inserting training session")
	}
	return s, nil
}

func (repo trainingRepository) GetSessionByID(ctx context.Context, id string) (training.Session, error) {
	var row sessionRow
	err := sqlx.GetContext(ctx, repo.exec, &row, `SELECT * FROM training_session WHERE id = $1`, id)
	if err != nil {
		return training.Session{}, trapNoRowsErr(err, training.ErrSessionNotFound, "getting training session by ID")
	}
	return unrowSession(row), nil
}

func (repo trainingRepository) ListSessions(ctx context.Context, trainingID string) ([]training.Session, error) {
	var rows []sessionRow
	err := sqlx.SelectContext(ctx, repo.exec, &rows,
		`SELECT * FROM training_session WHERE training_id = $1 ORDER BY date DESC`, trainingID)
	if err != nil {
		return nil, errors.Wrap(err, "listing training sessions")
	}
	sessions := make([]training.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, unrowSession(row))
	}
	return sessions, nil
}

func (repo trainingRepository) UpsertAttendance(ctx context.Context, records ...training.Attendance) error {
	for _, rec := range records {
		_, err := repo.exec.ExecContext(ctx,
			`INSERT INTO attendance (session_id, student_id, present, remark)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (session_id, student_id)
			 DO UPDATE SET present = EXCLUDED.present, remark = EXCLUDED.remark`,
			rec.SessionID, rec.StudentID, rec.Present, null.NewString(rec.Remark, rec.Remark != ""),
		)
		if err != nil {
			return errors.Wrap(err, "upserting attendance")
		}
	}
	return nil
}

func (repo trainingRepository) ListAttendance(ctx context.Context, sessionID string) ([]training.Attendance, error) {
	var rows []attendanceRow
	err := sqlx.SelectContext(ctx, repo.exec, &rows,
		`SELECT * FROM attendance WHERE session_id = $1 ORDER BY student_id`, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "listing attendance")
	}
	records := make([]training.Attendance, 0, len(rows))
	for _, row := range rows {
		records = append(records, training.Attendance{
			SessionID: row.SessionID,
			StudentID: row.StudentID,
			Present:   row.Present,
			Remark:    row.Remark.String,
		})
	}
	return records, nil
}
