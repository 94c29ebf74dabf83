package note

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("note not found")

type (
	Repository interface {
		CreateNote(ctx context.Context, n Note) (Note, error)
		GetNoteByID(ctx context.Context, id string) (Note, error)
		FilterNotes(ctx context.Context, filter QueryFilter) ([]Note, error)
		UpdateNote(ctx context.Context, n Note) (Note, error)
		DeleteNotesByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, authorID string, nn NewNote) (Note, error) {
	now := time.Now().UTC()
	n := Note{
		StudentID: nn.StudentID,
		AuthorID:  authorID,
		Body:      nn.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateNote(ctx, n)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Note, error) {
	return svc.repo.GetNoteByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Note, error) {
	return svc.repo.FilterNotes(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, orig Note, un UpdateNote) (Note, error) {
	orig.Body = un.Body
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateNote(ctx, orig)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteNotesByID(ctx, ids...)
}
