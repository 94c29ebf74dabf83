package inmem

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/wkarobia/cantera/core/group"
)

type groupRepository struct {
	db *DB
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *DB) *groupRepository {
	return &groupRepository{db: db}
}

func (repo groupRepository) CheckNameUniqueness(ctx context.Context, name string, excludedGroups ...group.Group) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	excluded := make(map[string]struct{}, len(excludedGroups))
	for _, g := range excludedGroups {
		excluded[g.ID] = struct{}{}
	}
	for _, g := range repo.db.store.groups {
		if _, skip := excluded[g.ID]; skip {
			continue
		}
		if g.Name == name {
			return group.ErrNameExists
		}
	}
	return nil
}

func (repo groupRepository) CreateGroup(ctx context.Context, grp group.Group) (group.Group, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	grp.ID = uuid.New().String()
	repo.db.store.groups[grp.ID] = grp
	return grp, nil
}

func (repo groupRepository) GetGroupByID(ctx context.Context, id string) (group.Group, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	grp, ok := repo.db.store.groups[id]
	if !ok {
		return group.Group{}, group.ErrNotFound
	}
	return grp, nil
}

func (repo groupRepository) FilterGroups(ctx context.Context, filter group.QueryFilter) ([]group.Group, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	groups := make([]group.Group, 0, len(repo.db.store.groups))
	for _, grp := range repo.db.store.groups {
		if filter.Search != "" && !matchesAny(filter.Search, grp.Name, grp.AgeBracket) {
			continue
		}
		if filter.CoachID != "" && grp.CoachID != filter.CoachID {
			continue
		}
		groups = append(groups, grp)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func (repo groupRepository) UpdateGroup(ctx context.Context, grp group.Group) (group.Group, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.store.groups[grp.ID]; !ok {
		return group.Group{}, group.ErrNotFound
	}
	repo.db.store.groups[grp.ID] = grp
	return grp, nil
}

func (repo groupRepository) DeleteGroupsByID(ctx context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, id := range ids {
		delete(repo.db.store.groups, id)
	}
	return nil
}

func (repo groupRepository) CountGroups(ctx context.Context) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.db.store.groups), nil
}
