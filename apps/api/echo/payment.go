package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/wkarobia/cantera/core/payment"
	"github.com/wkarobia/cantera/core/user"
)

type paymentApi struct {
	svc *payment.Service
}

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *payment.Service) {
	api := paymentApi{svc: svc}
	manage := capabilityMiddleware(user.CapManagePayments)

	fg := g.Group("/fee-types", jwt)
	fg.GET("", api.queryFeeTypes)
	fg.POST("", api.createFeeType, manage)
	fg.GET("/:id", api.retrieveFeeType)
	fg.PUT("/:id", api.updateFeeType, manage)
	fg.DELETE("/:id", api.destroyFeeType, manage)

	pg := g.Group("/payments", jwt)
	pg.GET("", api.queryPayments)
	pg.POST("", api.createPayment, manage)
	pg.GET("/:id", api.retrievePayment)
	pg.PATCH("/:id", api.applyAction, manage)
}

// Fee types

func (api *paymentApi) createFeeType(ctx echo.Context) error {
	var data payment.NewFeeType
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFeeType")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	ft, err := api.svc.CreateFeeType(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating fee type")
	}
	return ctx.JSON(http.StatusCreated, ft)
}

func (api *paymentApi) queryFeeTypes(ctx echo.Context) error {
	feeTypes, err := api.svc.QueryAllFeeTypes(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying fee types")
	}
	if feeTypes == nil {
		feeTypes = []payment.FeeType{}
	}
	return ctx.JSON(http.StatusOK, feeTypes)
}

func (api *paymentApi) retrieveFeeType(ctx echo.Context) error {
	ft, err := api.svc.GetFeeType(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == payment.ErrFeeTypeNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding fee type by ID")
	}
	return ctx.JSON(http.StatusOK, ft)
}

func (api *paymentApi) updateFeeType(ctx echo.Context) error {
	ft, err := api.svc.GetFeeType(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == payment.ErrFeeTypeNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding fee type by ID")
	}

	var data payment.UpdateFeeType
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateFeeType")
	}
	if err := data.Validate(ft, api.svc); err != nil {
		return err
	}

	ft, err = api.svc.UpdateFeeType(ctx.Request().Context(), ft, data)
	if err != nil {
		return errors.Wrap(err, "updating fee type")
	}
	return ctx.JSON(http.StatusOK, ft)
}

// destroyFeeType hard-deletes an unreferenced fee type (204). A referenced
// one is deactivated instead and returned with isActive=false (200).
func (api *paymentApi) destroyFeeType(ctx echo.Context) error {
	deleted, err := api.svc.DeleteFeeType(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == payment.ErrFeeTypeNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting fee type")
	}
	if deleted {
		return ctx.NoContent(http.StatusNoContent)
	}

	ft, err := api.svc.GetFeeType(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding fee type by ID")
	}
	return ctx.JSON(http.StatusOK, ft)
}

// Payments

func (api *paymentApi) createPayment(ctx echo.Context) error {
	var data payment.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	p, err := api.svc.CreatePayment(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == payment.ErrFeeTypeNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "creating payment")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *paymentApi) queryPayments(ctx echo.Context) error {
	filter := new(payment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []payment.Payment{})
	}

	payments, err := api.svc.FilterPayments(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	if payments == nil {
		payments = []payment.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *paymentApi) retrievePayment(ctx echo.Context) error {
	p, err := api.svc.GetPayment(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == payment.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding payment by ID")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *paymentApi) applyAction(ctx echo.Context) error {
	var data payment.PaymentAction
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PaymentAction")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	p, err := api.svc.ApplyAction(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == payment.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}
