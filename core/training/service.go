package training

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("training not found")
	ErrSessionNotFound = errors.New("training session not found")
)

type (
	Repository interface {
		CreateTraining(ctx context.Context, tr Training) (Training, error)
		GetTrainingByID(ctx context.Context, id string) (Training, error)
		FilterTrainings(ctx context.Context, filter QueryFilter) ([]Training, error)
		UpdateTraining(ctx context.Context, tr Training) (Training, error)
		DeleteTrainingsByID(ctx context.Context, ids ...string) error
		CountTrainings(ctx context.Context) (int, error)

		CreateSession(ctx context.Context, s Session) (Session, error)
		GetSessionByID(ctx context.Context, id string) (Session, error)
		ListSessions(ctx context.Context, trainingID string) ([]Session, error)
		UpsertAttendance(ctx context.Context, records ...Attendance) error
		ListAttendance(ctx context.Context, sessionID string) ([]Attendance, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nt NewTraining) (Training, error) {
	now := time.Now().UTC()
	tr := Training{
		GroupID:   nt.GroupID,
		Title:     nt.Title,
		Weekday:   nt.Weekday,
		StartTime: nt.StartTime,
		Location:  nt.Location,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateTraining(ctx, tr)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Training, error) {
	return svc.repo.GetTrainingByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Training, error) {
	filter.Clean()
	return svc.repo.FilterTrainings(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, orig Training, ut UpdateTraining) (Training, error) {
	tr := Training{
		ID:        orig.ID,
		GroupID:   orig.GroupID,
		Title:     ut.Title,
		Weekday:   orig.Weekday,
		StartTime: ut.StartTime,
		Location:  orig.Location,
		UpdatedAt: time.Now().UTC(),
	}
	if ut.Weekday != nil {
		tr.Weekday = *ut.Weekday
	}
	if ut.Location != nil {
		tr.Location = *ut.Location
	}
	return svc.repo.UpdateTraining(ctx, tr)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteTrainingsByID(ctx, ids...)
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountTrainings(ctx)
}

func (svc *Service) AddSession(ctx context.Context, trainingID string, ns NewSession) (Session, error) {
	if _, err := svc.repo.GetTrainingByID(ctx, trainingID); err != nil {
		return Session{}, err
	}
	s := Session{
		TrainingID: trainingID,
		Date:       ns.Date.UTC(),
		Notes:      ns.Notes,
		CreatedAt:  time.Now().UTC(),
	}
	return svc.repo.CreateSession(ctx, s)
}

func (svc *Service) Sessions(ctx context.Context, trainingID string) ([]Session, error) {
	if _, err := svc.repo.GetTrainingByID(ctx, trainingID); err != nil {
		return nil, err
	}
	return svc.repo.ListSessions(ctx, trainingID)
}

// RecordAttendance upserts one presence record per sheet entry for a session.
func (svc *Service) RecordAttendance(ctx context.Context, sessionID string, sheet AttendanceSheet) ([]Attendance, error) {
	if _, err := svc.repo.GetSessionByID(ctx, sessionID); err != nil {
		return nil, err
	}
	records := make([]Attendance, 0, len(sheet.Entries))
	for _, e := range sheet.Entries {
		records = append(records, Attendance{
			SessionID: sessionID,
			StudentID: e.StudentID,
			Present:   e.Present,
			Remark:    e.Remark,
		})
	}
	if err := svc.repo.UpsertAttendance(ctx, records...); err != nil {
		return nil, err
	}
	return records, nil
}

func (svc *Service) Attendance(ctx context.Context, sessionID string) ([]Attendance, error) {
	if _, err := svc.repo.GetSessionByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return svc.repo.ListAttendance(ctx, sessionID)
}
