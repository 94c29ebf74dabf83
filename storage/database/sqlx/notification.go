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
	"github.com/wkarobia/cantera/core/notification"
)

type notificationRepository struct {
	exec core.DBExecutor
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(exec core.DBExecutor) *notificationRepository {
	return &notificationRepository{exec: exec}
}

type notificationRow struct {
	ID             string      `db:"id"`
	StudentID      null.String `db:"student_id"`
	RecipientEmail null.String `db:"recipient_email"`
	RecipientPhone null.String `db:"recipient_phone"`
	Subject        string      `db:"subject"`
	Body           string      `db:"body"`
	Method         string      `db:"method"`
	Status         string      `db:"status"`
	ScheduledAt    time.Time   `db:"scheduled_at"`
	SentAt         null.Time   `db:"sent_at"`
	LastError      null.String `db:"last_error"`
	CreatedAt      null.Time   `db:"created_at"`
	UpdatedAt      null.Time   `db:"updated_at"`
}

func rowNotification(n notification.Notification) notificationRow {
	return notificationRow{
		ID:             n.ID,
		StudentID:      null.NewString(n.StudentID, n.StudentID != ""),
		RecipientEmail: null.NewString(n.RecipientEmail, n.RecipientEmail != ""),
		RecipientPhone: null.NewString(n.RecipientPhone, n.RecipientPhone != ""),
		Subject:        n.Subject,
		Body:           n.Body,
		Method:         string(n.Method),
		Status:         string(n.Status),
		ScheduledAt:    n.ScheduledAt.UTC(),
		SentAt:         nullTimePtr(n.SentAt),
		LastError:      null.NewString(n.LastError, n.LastError != ""),
		CreatedAt:      null.TimeFrom(n.CreatedAt.UTC()),
		UpdatedAt:      null.TimeFrom(n.UpdatedAt.UTC()),
	}
}

func unrowNotification(row notificationRow) notification.Notification {
	n := notification.Notification{
		ID:             row.ID,
		StudentID:      row.StudentID.String,
		RecipientEmail: row.RecipientEmail.String,
		RecipientPhone: row.RecipientPhone.String,
		Subject:        row.Subject,
		Body:           row.Body,
		Method:         notification.Method(row.Method),
		Status:         notification.Status(row.Status),
		ScheduledAt:    row.ScheduledAt,
		LastError:      row.LastError.String,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
	if row.SentAt.Valid {
		t := row.SentAt.Time
		n.SentAt = &t
	}
	return n
}

func (repo notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	n.ID = uuid.New().String()
	row := rowNotification(n)
	_, err := repo.exec.ExecContext(ctx,
		`INSERT INTO notification (
			id, student_id, recipient_email, recipient_phone, subject, body,
			method, status, scheduled_at, sent_at, last_error, created_at, updated_at
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		row.ID, row.StudentID, row.RecipientEmail, row.RecipientPhone, row.Subject, row.Body,
		row.Method, row.Status, row.ScheduledAt, row.SentAt, row.LastError, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return n, nil
}

func (repo notificationRepository) GetNotificationByID(ctx context.Context, id string) (notification.Notification, error) {
	var row notificationRow
	err := sqlx.GetContext(ctx, repo.exec, &row, `SELECT * FROM notification WHERE id = $1`, id)
	if err != nil {
		return notification.Notification{}, trapNoRowsErr(err, notification.ErrNotFound, "getting notification by ID")
	}
	return unrowNotification(row), nil
}

func (repo notificationRepository) FilterNotifications(ctx context.Context, filter notification.QueryFilter) ([]notification.Notification, error) {
	query := `SELECT * FROM notification`
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if filter.StudentID != "" {
		conds = append(conds, "student_id = "+arg(filter.StudentID))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(string(filter.Status)))
	}
	if filter.Method != "" {
		conds = append(conds, "method = "+arg(string(filter.Method)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + core.DBOrdering{Field: "scheduled_at"}.String()

	var rows []notificationRow
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering notifications")
	}
	notifs := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		notifs = append(notifs, unrowNotification(row))
	}
	return notifs, nil
}

func (repo notificationRepository) UpdateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	row := rowNotification(n)
	row.ID = n.ID
	res, err := repo.exec.ExecContext(ctx,
		`UPDATE notification SET
			status = $2, scheduled_at = $3, sent_at = $4, last_error = $5,
			subject = $6, body = $7, updated_at = $8
		 WHERE id = $1`,
		n.ID, row.Status, row.ScheduledAt, row.SentAt, row.LastError,
		row.Subject, row.Body, row.UpdatedAt,
	)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "updating notification")
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return notification.Notification{}, notification.ErrNotFound
	}
	return repo.GetNotificationByID(ctx, n.ID)
}

func (repo notificationRepository) UpdateStatusByID(ctx context.Context, from []notification.Status, to notification.Status, ids ...string) (int, error) {
	res, err := repo.exec.ExecContext(ctx,
		`UPDATE notification SET status = $1, updated_at = NOW()
		 WHERE id = ANY($2) AND status = ANY($3)`,
		string(to), pq.StringArray(ids), pq.StringArray(statusStrings(from)),
	)
	if err != nil {
		return 0, errors.Wrap(err, "updating notification statuses")
	}
	affected, err := res.RowsAffected()
	return int(affected), errors.Wrap(err, "counting updated notifications")
}

func (repo notificationRepository) DeleteByIDWithStatus(ctx context.Context, statuses []notification.Status, ids ...string) (int, error) {
	res, err := repo.exec.ExecContext(ctx,
		`DELETE FROM notification WHERE id = ANY($1) AND status = ANY($2)`,
		pq.StringArray(ids), pq.StringArray(statusStrings(statuses)),
	)
	if err != nil {
		return 0, errors.Wrap(err, "deleting notifications")
	}
	affected, err := res.RowsAffected()
	return int(affected), errors.Wrap(err, "counting deleted notifications")
}

func (repo notificationRepository) ListDuePending(ctx context.Context, due time.Time) ([]notification.Notification, error) {
	var rows []notificationRow
	err := sqlx.SelectContext(ctx, repo.exec, &rows,
		`SELECT * FROM notification
		 WHERE status = $1 AND scheduled_at <= $2
		 ORDER BY scheduled_at`,
		string(notification.StatusPending), due.UTC(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "listing due pending notifications")
	}
	notifs := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		notifs = append(notifs, unrowNotification(row))
	}
	return notifs, nil
}

func (repo notificationRepository) CountNotifications(ctx context.Context) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, repo.exec, &count, `SELECT COUNT(*) FROM notification`)
	return count, errors.Wrap(err, "counting notifications")
}

func statusStrings(statuses []notification.Status) []string {
	ss := make([]string, len(statuses))
	for i, s := range statuses {
		ss[i] = string(s)
	}
	return ss
}
