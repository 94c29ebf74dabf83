package group

import (
	"context"
	"errors"
	"time"

	"github.com/wkarobia/cantera/core"
)

var (
	ErrNotFound   = errors.New("group not found")
	ErrNameExists = errors.New("a group with this name already exists")
)

type (
	Repository interface {
		CheckNameUniqueness(ctx context.Context, name string, excludedGroups ...Group) error
		CreateGroup(ctx context.Context, grp Group) (Group, error)
		GetGroupByID(ctx context.Context, id string) (Group, error)
		FilterGroups(ctx context.Context, filter QueryFilter) ([]Group, error)
		UpdateGroup(ctx context.Context, grp Group) (Group, error)
		DeleteGroupsByID(ctx context.Context, ids ...string) error
		CountGroups(ctx context.Context) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckNameUniqueness(name string, exclGroups ...Group) error {
	if err := svc.repo.CheckNameUniqueness(context.Background(), name, exclGroups...); err != nil {
		if err == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ng NewGroup) (Group, error) {
	now := time.Now().UTC()
	grp := Group{
		Name:        ng.Name,
		AgeBracket:  ng.AgeBracket,
		CoachID:     ng.CoachID,
		Capacity:    ng.Capacity,
		Description: ng.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateGroup(ctx, grp)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Group, error) {
	return svc.repo.GetGroupByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Group, error) {
	filter.Clean()
	return svc.repo.FilterGroups(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, orig Group, ug UpdateGroup) (Group, error) {
	grp := Group{
		ID:          orig.ID,
		Name:        ug.Name,
		AgeBracket:  ug.AgeBracket,
		CoachID:     orig.CoachID,
		Capacity:    orig.Capacity,
		Description: orig.Description,
		UpdatedAt:   time.Now().UTC(),
	}
	if ug.CoachID != nil {
		grp.CoachID = *ug.CoachID
	}
	if ug.Capacity != nil {
		grp.Capacity = *ug.Capacity
	}
	if ug.Description != nil {
		grp.Description = *ug.Description
	}
	return svc.repo.UpdateGroup(ctx, grp)
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountGroups(ctx)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteGroupsByID(ctx, ids...)
}
