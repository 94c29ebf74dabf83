package inmem

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/wkarobia/cantera/core/training"
)

type trainingRepository struct {
	db *DB
}

var _ training.Repository = (*trainingRepository)(nil) // interface compliance check

func NewTrainingRepository(db *DB) *trainingRepository {
	return &trainingRepository{db: db}
}

func (repo trainingRepository) CreateTraining(ctx context.Context, tr training.Training) (training.Training, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	tr.ID = uuid.New().String()
	repo.db.store.trainings[tr.ID] = tr
	return tr, nil
}

func (repo trainingRepository) GetTrainingByID(ctx context.Context, id string) (training.Training, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	tr, ok := repo.db.store.trainings[id]
	if !ok {
		return training.Training{}, training.ErrNotFound
	}
	return tr, nil
}

func (repo trainingRepository) FilterTrainings(ctx context.Context, filter training.QueryFilter) ([]training.Training, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	trainings := make([]training.Training, 0, len(repo.db.store.trainings))
	for _, tr := range repo.db.store.trainings {
		if filter.GroupID != "" && tr.GroupID != filter.GroupID {
			continue
		}
		if filter.Search != "" && !matchesAny(filter.Search, tr.Title, tr.Location) {
			continue
		}
		trainings = append(trainings, tr)
	}
	sort.Slice(trainings, func(i, j int) bool {
		if trainings[i].Weekday != trainings[j].Weekday {
			return trainings[i].Weekday < trainings[j].Weekday
		}
		return trainings[i].StartTime < trainings[j].StartTime
	})
	return trainings, nil
}

func (repo trainingRepository) UpdateTraining(ctx context.Context, tr training.Training) (training.Training, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.store.trainings[tr.ID]
	if !ok {
		return training.Training{}, training.ErrNotFound
	}
	orig.Title = tr.Title
	orig.Weekday = tr.Weekday
	orig.StartTime = tr.StartTime
	orig.Location = tr.Location
	orig.UpdatedAt = tr.UpdatedAt
	repo.db.store.trainings[tr.ID] = orig
	return orig, nil
}

func (repo trainingRepository) DeleteTrainingsByID(ctx context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, id := range ids {
		delete(repo.db.store.trainings, id)
	}
	return nil
}

func (repo trainingRepository) CountTrainings(ctx context.Context) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.db.store.trainings), nil
}

func (repo trainingRepository) CreateSession(ctx context.Context, s training.Session) (training.Session, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	s.ID = uuid.New().String()
	repo.db.store.sessions[s.ID] = s
	return s, nil
}

func (repo trainingRepository) GetSessionByID(ctx context.Context, id string) (training.Session, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	s, ok := repo.db.store.sessions[id]
	if !ok {
		return training.Session{}, training.ErrSessionNotFound
	}
	return s, nil
}

func (repo trainingRepository) ListSessions(ctx context.Context, trainingID string) ([]training.Session, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var sessions []training.Session
	for _, s := range repo.db.store.sessions {
		if s.TrainingID == trainingID {
			sessions = append(sessions, s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Date.After(sessions[j].Date) })
	return sessions, nil
}

func (repo trainingRepository) UpsertAttendance(ctx context.Context, records ...training.Attendance) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, rec := range records {
		repo.db.store.attendance[rec.SessionID+"|"+rec.StudentID] = rec
	}
	return nil
}

func (repo trainingRepository) ListAttendance(ctx context.Context, sessionID string) ([]training.Attendance, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var records []training.Attendance
	for _, rec := range repo.db.store.attendance {
		if rec.SessionID == sessionID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].StudentID < records[j].StudentID })
	return records, nil
}
