package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/wkarobia/cantera/core/note"
	"github.com/wkarobia/cantera/core/user"
)

type noteApi struct {
	svc     *note.Service
	userSvc *user.Service
}

func registerNoteAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *note.Service, userSvc *user.Service) {
	api := noteApi{svc: svc, userSvc: userSvc}

	ng := g.Group("/notes", jwt)
	ng.GET("", api.query)
	ng.POST("", api.create)
	ng.PATCH("/:id", api.update)
	ng.DELETE("/:id", api.destroy)
}

func (api *noteApi) create(ctx echo.Context) error {
	var data note.NewNote
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNote")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	n, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating note")
	}
	return ctx.JSON(http.StatusCreated, n)
}

func (api *noteApi) query(ctx echo.Context) error {
	filter := new(note.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []note.Note{})
	}

	notes, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying notes")
	}
	if notes == nil {
		notes = []note.Note{}
	}
	return ctx.JSON(http.StatusOK, notes)
}

// getModifiableNote fetches a note and checks the author-or-admin rule.
func (api *noteApi) getModifiableNote(ctx echo.Context) (note.Note, error) {
	n, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == note.ErrNotFound {
			return note.Note{}, errHttpNotFound
		}
		return note.Note{}, errors.Wrap(err, "finding note by ID")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return note.Note{}, errors.Wrap(err, "getting context claims")
	}
	if !n.CanBeModifiedBy(claims.Subject, claims.IsAdmin) {
		return note.Note{}, errHttpForbidden
	}
	return n, nil
}

func (api *noteApi) update(ctx echo.Context) error {
	n, err := api.getModifiableNote(ctx)
	if err != nil {
		return err
	}

	var data note.UpdateNote
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateNote")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	n, err = api.svc.Update(ctx.Request().Context(), n, data)
	if err != nil {
		return errors.Wrap(err, "updating note")
	}
	return ctx.JSON(http.StatusOK, n)
}

func (api *noteApi) destroy(ctx echo.Context) error {
	n, err := api.getModifiableNote(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), n.ID); err != nil {
		return errors.Wrap(err, "deleting note")
	}
	return ctx.NoContent(http.StatusNoContent)
}
