package sqlxrepos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/wkarobia/cantera/core"
	"github.com/wkarobia/cantera/core/note"
)

type noteRepository struct {
	exec core.DBExecutor
}

var _ note.Repository = (*noteRepository)(nil) // interface compliance check

func NewNoteRepository(exec core.DBExecutor) *noteRepository {
	return &noteRepository{exec: exec}
}

type noteRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	AuthorID  string    `db:"author_id"`
	Body      string    `db:"body"`
	CreatedAt null.Time `db:"created_at"`
	UpdatedAt null.Time `db:"updated_at"`
}

func unrowNote(row noteRow) note.Note {
	return note.Note{
		ID:        row.ID,
		StudentID: row.StudentID,
		AuthorID:  row.AuthorID,
		Body:      row.Body,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}

func (repo noteRepository) CreateNote(ctx context.Context, n note.Note) (note.Note, error) {
	n.ID = uuid.New().String()
	_, err := repo.exec.ExecContext(ctx,
		`INSERT INTO note (id, student_id, author_id, body, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.StudentID, n.AuthorID, n.Body, n.CreatedAt.UTC(), n.UpdatedAt.UTC(),
	)
	if err != nil {
		return note.Note{}, errors.Wrap(err, "inserting note")
	}
	return n, nil
}

func (repo noteRepository) GetNoteByID(ctx context.Context, id string) (note.Note, error) {
	var row noteRow
	err := sqlx.GetContext(ctx, repo.exec, &row, `SELECT * FROM note WHERE id = $1`, id)
	if err != nil {
		return note.Note{}, trapNoRowsErr(err, note.ErrNotFound, "getting note by ID")
	}
	return unrowNote(row), nil
}

func (repo noteRepository) FilterNotes(ctx context.Context, filter note.QueryFilter) ([]note.Note, error) {
	query := `SELECT * FROM note`
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if filter.StudentID != "" {
		conds = append(conds, "student_id = "+arg(filter.StudentID))
	}
	if filter.AuthorID != "" {
		conds = append(conds, "author_id = "+arg(filter.AuthorID))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + core.DBOrdering{Field: "created_at"}.String()

	var rows []noteRow
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering notes")
	}
	notes := make([]note.Note, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, unrowNote(row))
	}
	return notes, nil
}

func (repo noteRepository) UpdateNote(ctx context.Context, n note.Note) (note.Note, error) {
	res, err := repo.exec.ExecContext(ctx,
		`UPDATE note SET body = $2, updated_at = $3 WHERE id = $1`,
		n.ID, n.Body, n.UpdatedAt.UTC(),
	)
	if err != nil {
		return note.Note{}, errors.Wrap(err, "updating note")
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return note.Note{}, note.ErrNotFound
	}
	return repo.GetNoteByID(ctx, n.ID)
}

func (repo noteRepository) DeleteNotesByID(ctx context.Context, ids ...string) error {
	_, err := repo.exec.ExecContext(ctx, `DELETE FROM note WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting notes")
}
