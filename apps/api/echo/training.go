package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/wkarobia/cantera/core/training"
	"github.com/wkarobia/cantera/core/user"
)

type trainingApi struct {
	svc *training.Service
}

func registerTrainingAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *training.Service) {
	api := trainingApi{svc: svc}
	manage := capabilityMiddleware(user.CapManageTraining)

	tg := g.Group("/trainings", jwt)
	tg.GET("", api.query)
	tg.POST("", api.create, manage)
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update, manage)
	tg.DELETE("/:id", api.destroy, manage)
	tg.GET("/:id/sessions", api.querySessions)
	tg.POST("/:id/sessions", api.addSession, manage)

	sg := g.Group("/sessions", jwt)
	sg.GET("/:id/attendance", api.queryAttendance)
	sg.PUT("/:id/attendance", api.recordAttendance, manage)
}

func (api *trainingApi) create(ctx echo.Context) error {
	var data training.NewTraining
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTraining")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	tr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating training")
	}
	return ctx.JSON(http.StatusCreated, tr)
}

func (api *trainingApi) query(ctx echo.Context) error {
	filter := new(training.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []training.Training{})
	}

	trainings, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying trainings")
	}
	if trainings == nil {
		trainings = []training.Training{}
	}
	return ctx.JSON(http.StatusOK, trainings)
}

func (api *trainingApi) retrieve(ctx echo.Context) error {
	tr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == training.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding training by ID")
	}
	return ctx.JSON(http.StatusOK, tr)
}

func (api *trainingApi) update(ctx echo.Context) error {
	tr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == training.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding training by ID")
	}

	var data training.UpdateTraining
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTraining")
	}
	if err := data.Validate(tr); err != nil {
		return err
	}

	tr, err = api.svc.Update(ctx.Request().Context(), tr, data)
	if err != nil {
		return errors.Wrap(err, "updating training")
	}
	return ctx.JSON(http.StatusOK, tr)
}

func (api *trainingApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == training.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding training by ID")
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting training")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *trainingApi) addSession(ctx echo.Context) error {
	var data training.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	s, err := api.svc.AddSession(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == training.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "adding training session")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *trainingApi) querySessions(ctx echo.Context) error {
	sessions, err := api.svc.Sessions(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == training.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying training sessions")
	}
	if sessions == nil {
		sessions = []training.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *trainingApi) recordAttendance(ctx echo.Context) error {
	var data training.AttendanceSheet
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AttendanceSheet")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	records, err := api.svc.RecordAttendance(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == training.ErrSessionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "recording attendance")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *trainingApi) queryAttendance(ctx echo.Context) error {
	records, err := api.svc.Attendance(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == training.ErrSessionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying attendance")
	}
	if records == nil {
		records = []training.Attendance{}
	}
	return ctx.JSON(http.StatusOK, records)
}
