package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/wkarobia/cantera/core"
	"github.com/wkarobia/cantera/core/student"
)

type studentRepository struct {
	db *DB

	// CreateGroupHistoryErr, when set, makes CreateGroupHistory fail with it.
	// Tests use it to exercise the rollback paths of enrollment and transfer.
	CreateGroupHistoryErr error
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, stu student.Student, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	stu.ID = uuid.New().String()
	repo.db.store.students[stu.ID] = stu
	return stu, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	stu, ok := repo.db.store.students[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	return stu, nil
}

func (repo *studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	students := make([]student.Student, 0, len(repo.db.store.students))
	for _, stu := range repo.db.store.students {
		if filter.Search != "" && !matchesAny(filter.Search, stu.Name, stu.ParentName) {
			continue
		}
		if filter.GroupID != "" && stu.GroupID != filter.GroupID {
			continue
		}
		if filter.IsActive != nil && stu.IsActive != *filter.IsActive {
			continue
		}
		students = append(students, stu)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, stu student.Student, isActive *bool) (student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.store.students[stu.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	orig.Name = stu.Name
	orig.BirthDate = stu.BirthDate
	orig.ParentName = stu.ParentName
	orig.ParentPhone = stu.ParentPhone
	orig.ParentEmail = stu.ParentEmail
	orig.SecondaryContactName = stu.SecondaryContactName
	orig.SecondaryContactPhone = stu.SecondaryContactPhone
	orig.MedicalNotes = stu.MedicalNotes
	if isActive != nil {
		orig.IsActive = *isActive
	}
	orig.UpdatedAt = stu.UpdatedAt
	repo.db.store.students[stu.ID] = orig
	return orig, nil
}

func (repo *studentRepository) SetStudentGroup(ctx context.Context, studentID, groupID string, exec ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	stu, ok := repo.db.store.students[studentID]
	if !ok {
		return student.ErrNotFound
	}
	stu.GroupID = groupID
	stu.UpdatedAt = time.Now().UTC()
	repo.db.store.students[studentID] = stu
	return nil
}

func (repo *studentRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, id := range ids {
		delete(repo.db.store.students, id)
	}
	return nil
}

func (repo *studentRepository) CountStudents(ctx context.Context) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.db.store.students), nil
}

func (repo *studentRepository) GetOpenGroupHistory(ctx context.Context, studentID string, exec ...core.DBExecutor) (student.GroupHistory, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, gh := range repo.db.store.histories {
		if gh.StudentID == studentID && gh.IsOpen() {
			return gh, nil
		}
	}
	return student.GroupHistory{}, student.ErrHistoryNotFound
}

func (repo *studentRepository) CloseGroupHistory(ctx context.Context, id string, end time.Time, reason string, exec ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	gh, ok := repo.db.store.histories[id]
	if !ok || !gh.IsOpen() {
		return student.ErrHistoryNotFound
	}
	end = end.UTC()
	gh.EndDate = &end
	gh.Reason = reason
	repo.db.store.histories[id] = gh
	return nil
}

func (repo *studentRepository) CreateGroupHistory(ctx context.Context, gh student.GroupHistory, exec ...core.DBExecutor) (student.GroupHistory, error) {
	if repo.CreateGroupHistoryErr != nil {
		return student.GroupHistory{}, repo.CreateGroupHistoryErr
	}

	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	gh.ID = uuid.New().String()
	repo.db.store.histories[gh.ID] = gh
	return gh, nil
}

func (repo *studentRepository) ListGroupHistory(ctx context.Context, studentID string) ([]student.GroupHistory, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var history []student.GroupHistory
	for _, gh := range repo.db.store.histories {
		if gh.StudentID == studentID {
			history = append(history, gh)
		}
	}
	sort.Slice(history, func(i, j int) bool { return history[i].StartDate.Before(history[j].StartDate) })
	return history, nil
}
