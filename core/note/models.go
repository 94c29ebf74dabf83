package note

import (
	"time"

	"github.com/wkarobia/cantera/core"
)

// Note is a free-text annotation on a student, owned by its author.
type Note struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// CanBeModifiedBy reports whether a user may edit or delete this note:
// the author, or any admin.
func (n Note) CanBeModifiedBy(userID string, isAdmin bool) bool {
	return isAdmin || n.AuthorID == userID
}

type NewNote struct {
	StudentID string `json:"student_id" validate:"required"`
	Body      string `json:"body" validate:"required"`
}

func (nn *NewNote) Validate() error {
	nn.Body = core.CleanString(nn.Body)
	return core.Validate.Struct(nn)
}

type UpdateNote struct {
	Body string `json:"body" validate:"required"`
}

func (un *UpdateNote) Validate() error {
	un.Body = core.CleanString(un.Body)
	return core.Validate.Struct(un)
}

type QueryFilter struct {
	StudentID string `query:"student_id"`
	AuthorID  string `query:"author_id"`
}

func (qf *QueryFilter) IsEmpty() bool { return qf.StudentID == "" && qf.AuthorID == "" }
