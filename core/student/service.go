package student

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/wkarobia/cantera/core"
)

var (
	ErrNotFound        = errors.New("student not found")
	ErrHistoryNotFound = errors.New("group history record not found")
	ErrNoOpTransfer    = errors.New("student is already in this group")
)

const (
	ReasonEnrollment      = "enrollment"
	defaultTransferReason = "transferred"
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, stu Student, exec ...core.DBExecutor) (Student, error)
		GetStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (Student, error)
		FilterStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
		UpdateStudent(ctx context.Context, stu Student, isActive *bool) (Student, error)
		SetStudentGroup(ctx context.Context, studentID, groupID string, exec ...core.DBExecutor) error
		DeleteStudentsByID(ctx context.Context, ids ...string) error
		CountStudents(ctx context.Context) (int, error)

		GetOpenGroupHistory(ctx context.Context, studentID string, exec ...core.DBExecutor) (GroupHistory, error)
		CloseGroupHistory(ctx context.Context, id string, end time.Time, reason string, exec ...core.DBExecutor) error
		CreateGroupHistory(ctx context.Context, gh GroupHistory, exec ...core.DBExecutor) (GroupHistory, error)
		ListGroupHistory(ctx context.Context, studentID string) ([]GroupHistory, error)
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

// Enroll creates a student and, when a group is assigned, opens the first
// GroupHistory record in the same transaction.
func (svc *Service) Enroll(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	stu := Student{
		Name:                  ns.Name,
		BirthDate:             ns.BirthDate,
		GroupID:               ns.GroupID,
		ParentName:            ns.ParentName,
		ParentPhone:           ns.ParentPhone,
		ParentEmail:           ns.ParentEmail,
		SecondaryContactName:  ns.SecondaryContactName,
		SecondaryContactPhone: ns.SecondaryContactPhone,
		MedicalNotes:          ns.MedicalNotes,
		IsActive:              true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if stu.GroupID == "" {
		return svc.repo.CreateStudent(ctx, stu)
	}

	tx, err := svc.db.BeginTxx(ctx)
	if err != nil {
		return Student{}, pkgerrors.Wrap(err, "beginning transaction")
	}
	stu, err = svc.repo.CreateStudent(ctx, stu, tx)
	if err != nil {
		_ = tx.Rollback()
		return Student{}, err
	}
	gh := GroupHistory{
		StudentID: stu.ID,
		GroupID:   stu.GroupID,
		StartDate: now,
		Reason:    ReasonEnrollment,
	}
	if _, err = svc.repo.CreateGroupHistory(ctx, gh, tx); err != nil {
		_ = tx.Rollback()
		return Student{}, err
	}
	if err = tx.Commit(); err != nil {
		return Student{}, pkgerrors.Wrap(err, "committing enrollment")
	}
	return stu, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Student, error) {
	filter.Clean()
	return svc.repo.FilterStudents(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, orig Student, us UpdateStudent) (Student, error) {
	stu := Student{
		ID:                    orig.ID,
		Name:                  us.Name,
		BirthDate:             orig.BirthDate,
		ParentName:            us.ParentName,
		ParentPhone:           us.ParentPhone,
		ParentEmail:           us.ParentEmail,
		SecondaryContactName:  orig.SecondaryContactName,
		SecondaryContactPhone: orig.SecondaryContactPhone,
		MedicalNotes:          orig.MedicalNotes,
		UpdatedAt:             time.Now().UTC(),
	}
	if us.BirthDate != nil {
		stu.BirthDate = *us.BirthDate
	}
	if us.SecondaryContactName != nil {
		stu.SecondaryContactName = *us.SecondaryContactName
	}
	if us.SecondaryContactPhone != nil {
		stu.SecondaryContactPhone = *us.SecondaryContactPhone
	}
	if us.MedicalNotes != nil {
		stu.MedicalNotes = *us.MedicalNotes
	}
	return svc.repo.UpdateStudent(ctx, stu, us.IsActive)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteStudentsByID(ctx, ids...)
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountStudents(ctx)
}

func (svc *Service) History(ctx context.Context, studentID string) ([]GroupHistory, error) {
	return svc.repo.ListGroupHistory(ctx, studentID)
}

// Transfer moves a student to destGroupID atomically: the open GroupHistory
// record (if any) is closed, the student's group is reassigned and a new open
// record is created. Either all three take effect or none does.
//
// Two concurrent transfers for the same student may both observe the same
// open record before either commits; serialization is left to the database's
// transaction isolation.
func (svc *Service) Transfer(ctx context.Context, req TransferRequest) (Student, error) {
	stu, err := svc.repo.GetStudentByID(ctx, req.StudentID)
	if err != nil {
		return Student{}, err
	}
	if stu.GroupID == req.GroupID {
		return Student{}, core.NewValidationError(ErrNoOpTransfer,
			core.FieldError{Field: "group_id", Error: ErrNoOpTransfer.Error()})
	}

	reason := req.Reason
	if reason == "" {
		reason = defaultTransferReason
	}
	now := time.Now().UTC()

	tx, err := svc.db.BeginTxx(ctx)
	if err != nil {
		return Student{}, pkgerrors.Wrap(err, "beginning transaction")
	}

	open, err := svc.repo.GetOpenGroupHistory(ctx, stu.ID, tx)
	switch err {
	case nil:
		if err = svc.repo.CloseGroupHistory(ctx, open.ID, now, reason, tx); err != nil {
			_ = tx.Rollback()
			return Student{}, err
		}
	case ErrHistoryNotFound:
		// unassigned student, nothing to close
	default:
		_ = tx.Rollback()
		return Student{}, err
	}

	if err = svc.repo.SetStudentGroup(ctx, stu.ID, req.GroupID, tx); err != nil {
		_ = tx.Rollback()
		return Student{}, err
	}

	gh := GroupHistory{
		StudentID: stu.ID,
		GroupID:   req.GroupID,
		StartDate: now,
	}
	if _, err = svc.repo.CreateGroupHistory(ctx, gh, tx); err != nil {
		_ = tx.Rollback()
		return Student{}, err
	}

	if err = tx.Commit(); err != nil {
		return Student{}, pkgerrors.Wrap(err, "committing transfer")
	}

	stu.GroupID = req.GroupID
	stu.UpdatedAt = now
	return stu, nil
}
