// Package inmem provides an in-memory implementation of the core repositories
// and of core.DB, used by the test suites in place of a live database. A
// transaction snapshots the whole store on begin; Rollback restores the
// snapshot, Commit discards it.
package inmem

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/wkarobia/cantera/core"
	"github.com/wkarobia/cantera/core/group"
	"github.com/wkarobia/cantera/core/note"
	"github.com/wkarobia/cantera/core/notification"
	"github.com/wkarobia/cantera/core/payment"
	"github.com/wkarobia/cantera/core/student"
	"github.com/wkarobia/cantera/core/training"
	"github.com/wkarobia/cantera/core/user"
)

var errNoSQL = errors.New("inmem: raw SQL not supported")

type store struct {
	users         map[string]user.User
	groups        map[string]group.Group
	students      map[string]student.Student
	histories     map[string]student.GroupHistory
	feeTypes      map[string]payment.FeeType
	payments      map[string]payment.Payment
	notes         map[string]note.Note
	notifications map[string]notification.Notification
	trainings     map[string]training.Training
	sessions      map[string]training.Session
	attendance    map[string]training.Attendance // keyed sessionID + "|" + studentID
}

func newStore() *store {
	return &store{
		users:         make(map[string]user.User),
		groups:        make(map[string]group.Group),
		students:      make(map[string]student.Student),
		histories:     make(map[string]student.GroupHistory),
		feeTypes:      make(map[string]payment.FeeType),
		payments:      make(map[string]payment.Payment),
		notes:         make(map[string]note.Note),
		notifications: make(map[string]notification.Notification),
		trainings:     make(map[string]training.Training),
		sessions:      make(map[string]training.Session),
		attendance:    make(map[string]training.Attendance),
	}
}

func (s *store) clone() *store {
	c := newStore()
	for k, v := range s.users {
		v.Roles = append([]string(nil), v.Roles...)
		c.users[k] = v
	}
	for k, v := range s.groups {
		c.groups[k] = v
	}
	for k, v := range s.students {
		c.students[k] = v
	}
	for k, v := range s.histories {
		c.histories[k] = v
	}
	for k, v := range s.feeTypes {
		c.feeTypes[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.notes {
		c.notes[k] = v
	}
	for k, v := range s.notifications {
		c.notifications[k] = v
	}
	for k, v := range s.trainings {
		c.trainings[k] = v
	}
	for k, v := range s.sessions {
		c.sessions[k] = v
	}
	for k, v := range s.attendance {
		c.attendance[k] = v
	}
	return c
}

type DB struct {
	noopExecutor

	mu    sync.RWMutex
	store *store
}

var _ core.DB = (*DB)(nil) // interface compliance check

func NewDB() *DB {
	return &DB{store: newStore()}
}

func (db *DB) BeginTxx(ctx context.Context) (core.DBTransactor, error) {
	db.mu.Lock()
	snapshot := db.store.clone()
	db.mu.Unlock()
	return &Tx{db: db, snapshot: snapshot}, nil
}

// Reset drops all stored data. Test suites call it between cases.
func (db *DB) Reset() {
	db.mu.Lock()
	db.store = newStore()
	db.mu.Unlock()
}

type Tx struct {
	noopExecutor

	db       *DB
	snapshot *store
	done     bool
}

var _ core.DBTransactor = (*Tx)(nil) // interface compliance check

func (tx *Tx) Commit() error {
	if tx.done {
		return sql.ErrTxDone
	}
	tx.done = true
	return nil
}

func (tx *Tx) Rollback() error {
	if tx.done {
		return sql.ErrTxDone
	}
	tx.db.mu.Lock()
	tx.db.store = tx.snapshot
	tx.db.mu.Unlock()
	tx.done = true
	return nil
}

// noopExecutor satisfies sqlx.ExtContext; the in-memory repositories never
// issue SQL, so every method is a stub.
type noopExecutor struct{}

func (noopExecutor) DriverName() string     { return "inmem" }
func (noopExecutor) Rebind(q string) string { return q }
func (noopExecutor) BindNamed(q string, arg interface{}) (string, []interface{}, error) {
	return "", nil, errNoSQL
}
func (noopExecutor) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, errNoSQL
}
func (noopExecutor) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	return nil, errNoSQL
}
func (noopExecutor) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	return nil
}
func (noopExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, errNoSQL
}
