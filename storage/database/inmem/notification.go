package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/wkarobia/cantera/core/notification"
)

type notificationRepository struct {
	db *DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	n.ID = uuid.New().String()
	repo.db.store.notifications[n.ID] = n
	return n, nil
}

func (repo notificationRepository) GetNotificationByID(ctx context.Context, id string) (notification.Notification, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	n, ok := repo.db.store.notifications[id]
	if !ok {
		return notification.Notification{}, notification.ErrNotFound
	}
	return n, nil
}

func (repo notificationRepository) FilterNotifications(ctx context.Context, filter notification.QueryFilter) ([]notification.Notification, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	notifs := make([]notification.Notification, 0, len(repo.db.store.notifications))
	for _, n := range repo.db.store.notifications {
		if filter.StudentID != "" && n.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && n.Status != filter.Status {
			continue
		}
		if filter.Method != "" && n.Method != filter.Method {
			continue
		}
		notifs = append(notifs, n)
	}
	sort.Slice(notifs, func(i, j int) bool { return notifs[i].ScheduledAt.After(notifs[j].ScheduledAt) })
	return notifs, nil
}

func (repo notificationRepository) UpdateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.store.notifications[n.ID]; !ok {
		return notification.Notification{}, notification.ErrNotFound
	}
	repo.db.store.notifications[n.ID] = n
	return n, nil
}

func (repo notificationRepository) UpdateStatusByID(ctx context.Context, from []notification.Status, to notification.Status, ids ...string) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var affected int
	for _, id := range ids {
		n, ok := repo.db.store.notifications[id]
		if !ok || !statusIn(n.Status, from) {
			continue
		}
		n.Status = to
		n.UpdatedAt = time.Now().UTC()
		repo.db.store.notifications[id] = n
		affected++
	}
	return affected, nil
}

func (repo notificationRepository) DeleteByIDWithStatus(ctx context.Context, statuses []notification.Status, ids ...string) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var affected int
	for _, id := range ids {
		n, ok := repo.db.store.notifications[id]
		if !ok || !statusIn(n.Status, statuses) {
			continue
		}
		delete(repo.db.store.notifications, id)
		affected++
	}
	return affected, nil
}

func (repo notificationRepository) ListDuePending(ctx context.Context, due time.Time) ([]notification.Notification, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var notifs []notification.Notification
	for _, n := range repo.db.store.notifications {
		if n.Status == notification.StatusPending && !n.ScheduledAt.After(due) {
			notifs = append(notifs, n)
		}
	}
	sort.Slice(notifs, func(i, j int) bool { return notifs[i].ScheduledAt.Before(notifs[j].ScheduledAt) })
	return notifs, nil
}

func (repo notificationRepository) CountNotifications(ctx context.Context) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.db.store.notifications), nil
}

func statusIn(s notification.Status, statuses []notification.Status) bool {
	for _, st := range statuses {
		if s == st {
			return true
		}
	}
	return false
}
