package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type (
	healthApi struct {
		opts *Options
	}

	HealthResponse struct {
		Status string         `json:"status"`
		Counts map[string]int `json:"counts"`
	}
)

func registerHealthAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := healthApi{opts: opts}
	g.GET("/health", api.health, jwt)
}

func (api *healthApi) health(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	counts := make(map[string]int, 6)

	for name, count := range map[string]func() (int, error){
		"users":         func() (int, error) { return api.opts.UserSvc.Count(reqCtx) },
		"students":      func() (int, error) { return api.opts.StudentSvc.Count(reqCtx) },
		"groups":        func() (int, error) { return api.opts.GroupSvc.Count(reqCtx) },
		"payments":      func() (int, error) { return api.opts.PaymentSvc.CountPayments(reqCtx) },
		"notifications": func() (int, error) { return api.opts.NotificationSvc.Count(reqCtx) },
		"trainings":     func() (int, error) { return api.opts.TrainingSvc.Count(reqCtx) },
	} {
		n, err := count()
		if err != nil {
			return errors.Wrap(err, "counting "+name)
		}
		counts[name] = n
	}

	return ctx.JSON(http.StatusOK, HealthResponse{Status: "ok", Counts: counts})
}
