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
	"github.com/wkarobia/cantera/core/group"
)

type groupRepository struct {
	exec core.DBExecutor
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(exec core.DBExecutor) *groupRepository {
	return &groupRepository{exec: exec}
}

type groupRow struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	AgeBracket  string      `db:"age_bracket"`
	CoachID     null.String `db:"coach_id"`
	Capacity    int         `db:"capacity"`
	Description string      `db:"description"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

func (repo groupRepository) row(grp group.Group) groupRow {
	return groupRow{
		ID:          grp.ID,
		Name:        grp.Name,
		AgeBracket:  grp.AgeBracket,
		CoachID:     null.NewString(grp.CoachID, grp.CoachID != ""),
		Capacity:    grp.Capacity,
		Description: grp.Description,
		CreatedAt:   null.NewTime(grp.CreatedAt.UTC(), !grp.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(grp.UpdatedAt.UTC(), !grp.UpdatedAt.IsZero()),
	}
}

func (repo groupRepository) unrow(row groupRow) group.Group {
	return group.Group{
		ID:          row.ID,
		Name:        row.Name,
		AgeBracket:  row.AgeBracket,
		CoachID:     row.CoachID.String,
		Capacity:    row.Capacity,
		Description: row.Description,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

func (repo groupRepository) CheckNameUniqueness(ctx context.Context, name string, excludedGroups ...group.Group) error {
	query := `SELECT EXISTS (SELECT 1 FROM "group" WHERE name = $1`
	args := []interface{}{name}
	if len(excludedGroups) > 0 {
		ids := make([]string, 0, len(excludedGroups))
		for _, g := range excludedGroups {
			ids = append(ids, g.ID)
		}
		query += ` AND NOT (id = ANY($2))`
		args = append(args, pq.StringArray(ids))
	}
	query += `)`

	var exists bool
	if err := sqlx.GetContext(ctx, repo.exec, &exists, query, args...); err != nil {
		return errors.Wrap(err, "checking group name uniqueness")
	}
	if exists {
		return group.ErrNameExists
	}
	return nil
}

func (repo groupRepository) CreateGroup(ctx context.Context, grp group.Group) (group.Group, error) {
	grp.ID = uuid.New().String()
	row := repo.row(grp)
	_, err := repo.exec.ExecContext(ctx,
		`INSERT INTO "group" (id, name, age_bracket, coach_id, capacity, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		row.ID, row.Name, row.AgeBracket, row.CoachID, row.Capacity, row.Description, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return group.Group{}, errors.Wrap(err, "inserting group")
	}
	return grp, nil
}

func (repo groupRepository) GetGroupByID(ctx context.Context, id string) (group.Group, error) {
	var row groupRow
	err := sqlx.GetContext(ctx, repo.exec, &row, `SELECT * FROM "group" WHERE id = $1`, id)
	if err != nil {
		return group.Group{}, trapNoRowsErr(err, group.ErrNotFound, "getting group by ID")
	}
	return repo.unrow(row), nil
}

func (repo groupRepository) FilterGroups(ctx context.Context, filter group.QueryFilter) ([]group.Group, error) {
	query := `SELECT * FROM "group"`
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, "(name ILIKE "+p+" OR age_bracket ILIKE "+p+")")
	}
	if filter.CoachID != "" {
		conds = append(conds, "coach_id = "+arg(filter.CoachID))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + core.DBOrdering{Field: "name", Ascending: true}.String()

	var rows []groupRow
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering groups")
	}
	groups := make([]group.Group, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, repo.unrow(row))
	}
	return groups, nil
}

func (repo groupRepository) UpdateGroup(ctx context.Context, grp group.Group) (group.Group, error) {
	row := repo.row(grp)
	res, err := repo.exec.ExecContext(ctx,
		`UPDATE "group" SET name = $2, age_bracket = $3, coach_id = $4, capacity = $5, description = $6, updated_at = $7
		 WHERE id = $1`,
		row.ID, row.Name, row.AgeBracket, row.CoachID, row.Capacity, row.Description, row.UpdatedAt,
	)
	if err != nil {
		return group.Group{}, errors.Wrap(err, "updating group")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return group.Group{}, group.ErrNotFound
	}
	return repo.GetGroupByID(ctx, grp.ID)
}

func (repo groupRepository) DeleteGroupsByID(ctx context.Context, ids ...string) error {
	_, err := repo.exec.ExecContext(ctx, `DELETE FROM "group" WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting groups")
}

func (repo groupRepository) CountGroups(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, repo.exec, &n, `SELECT COUNT(*) FROM "group"`); err != nil {
		return 0, errors.Wrap(err, "counting groups")
	}
	return n, nil
}
