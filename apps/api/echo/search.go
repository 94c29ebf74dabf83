package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/wkarobia/cantera/core"
	"github.com/wkarobia/cantera/core/group"
	"github.com/wkarobia/cantera/core/payment"
	"github.com/wkarobia/cantera/core/student"
	"github.com/wkarobia/cantera/core/training"
)

// searchResultCap bounds the merged result list.
const searchResultCap = 10

type (
	searchApi struct {
		studentSvc  *student.Service
		groupSvc    *group.Service
		paymentSvc  *payment.Service
		trainingSvc *training.Service
	}

	SearchResult struct {
		Type  string `json:"type"` // student | group | payment | training
		ID    string `json:"id"`
		Label string `json:"label"`
	}

	SearchResponse struct {
		Query   string         `json:"query"`
		Results []SearchResult `json:"results"`
	}
)

func registerSearchAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	studentSvc *student.Service,
	groupSvc *group.Service,
	paymentSvc *payment.Service,
	trainingSvc *training.Service,
) {
	api := searchApi{
		studentSvc:  studentSvc,
		groupSvc:    groupSvc,
		paymentSvc:  paymentSvc,
		trainingSvc: trainingSvc,
	}
	g.GET("/search", api.search, jwt)
}

// search fans the query out over students, groups, payments and trainings and
// merges the hits in that order, capped at searchResultCap.
func (api *searchApi) search(ctx echo.Context) error {
	q := core.CleanString(ctx.QueryParam("q"))
	res := SearchResponse{Query: q, Results: []SearchResult{}}
	if q == "" {
		return ctx.JSON(http.StatusOK, res)
	}
	reqCtx := ctx.Request().Context()

	students, err := api.studentSvc.Filter(reqCtx, student.QueryFilter{Search: q})
	if err != nil {
		return errors.Wrap(err, "searching students")
	}
	for _, stu := range students {
		res.Results = append(res.Results, SearchResult{Type: "student", ID: stu.ID, Label: stu.Name})
	}

	groups, err := api.groupSvc.Filter(reqCtx, group.QueryFilter{Search: q})
	if err != nil {
		return errors.Wrap(err, "searching groups")
	}
	for _, grp := range groups {
		res.Results = append(res.Results, SearchResult{Type: "group", ID: grp.ID, Label: grp.Name})
	}

	payments, err := api.paymentSvc.FilterPayments(reqCtx, payment.QueryFilter{Search: q})
	if err != nil {
		return errors.Wrap(err, "searching payments")
	}
	for _, p := range payments {
		res.Results = append(res.Results, SearchResult{Type: "payment", ID: p.ID, Label: p.Notes})
	}

	trainings, err := api.trainingSvc.Filter(reqCtx, training.QueryFilter{Search: q})
	if err != nil {
		return errors.Wrap(err, "searching trainings")
	}
	for _, tr := range trainings {
		res.Results = append(res.Results, SearchResult{Type: "training", ID: tr.ID, Label: tr.Title})
	}

	if len(res.Results) > searchResultCap {
		res.Results = res.Results[:searchResultCap]
	}
	return ctx.JSON(http.StatusOK, res)
}
