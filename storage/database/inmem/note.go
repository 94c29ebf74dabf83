package inmem

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/wkarobia/cantera/core/note"
)

type noteRepository struct {
	db *DB
}

var _ note.Repository = (*noteRepository)(nil) // interface compliance check

func NewNoteRepository(db *DB) *noteRepository {
	return &noteRepository{db: db}
}

func (repo noteRepository) CreateNote(ctx context.Context, n note.Note) (note.Note, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	n.ID = uuid.New().String()
	repo.db.store.notes[n.ID] = n
	return n, nil
}

func (repo noteRepository) GetNoteByID(ctx context.Context, id string) (note.Note, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	n, ok := repo.db.store.notes[id]
	if !ok {
		return note.Note{}, note.ErrNotFound
	}
	return n, nil
}

func (repo noteRepository) FilterNotes(ctx context.Context, filter note.QueryFilter) ([]note.Note, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	notes := make([]note.Note, 0, len(repo.db.store.notes))
	for _, n := range repo.db.store.notes {
		if filter.StudentID != "" && n.StudentID != filter.StudentID {
			continue
		}
		if filter.AuthorID != "" && n.AuthorID != filter.AuthorID {
			continue
		}
		notes = append(notes, n)
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].CreatedAt.After(notes[j].CreatedAt) })
	return notes, nil
}

func (repo noteRepository) UpdateNote(ctx context.Context, n note.Note) (note.Note, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.store.notes[n.ID]
	if !ok {
		return note.Note{}, note.ErrNotFound
	}
	orig.Body = n.Body
	orig.UpdatedAt = n.UpdatedAt
	repo.db.store.notes[n.ID] = orig
	return orig, nil
}

func (repo noteRepository) DeleteNotesByID(ctx context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, id := range ids {
		delete(repo.db.store.notes, id)
	}
	return nil
}
