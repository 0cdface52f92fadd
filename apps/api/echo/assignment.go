package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/assignment"
)

type assignmentApi struct {
	svc      *assignment.Service
	validate *validator.Validate
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := assignmentApi{
		svc:      deps.AssignSvc,
		validate: deps.Validate,
	}

	ag := g.Group("/assignments", jwt)
	ag.GET("", api.query)
	ag.GET("/:name", api.retrieve)
	ag.POST("", api.create, instructorMiddleware())
	ag.PUT("/:name", api.update, instructorMiddleware())
	ag.DELETE("/:name", api.destroy, instructorMiddleware())
	ag.POST("/:name/peer-review", api.togglePeerReview, instructorMiddleware())
}

func (api *assignmentApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	assignments, err := api.svc.QueryAll(claims.GuildID)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	a, err := api.svc.GetByName(claims.GuildID, ctx.Param("name"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data assignment.NewAssignment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	due, err := data.Validate(api.validate, api.svc, claims.GuildID)
	if err != nil {
		return err
	}

	a, err := api.svc.Create(claims.GuildID, data, due)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data assignment.UpdateAssignment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	due, err := data.Validate(api.validate)
	if err != nil {
		return err
	}

	a, err := api.svc.Update(claims.GuildID, ctx.Param("name"), data, due)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err = api.svc.Delete(claims.GuildID, ctx.Param("name")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assignmentApi) togglePeerReview(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data PeerReviewToggleRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PeerReviewToggleRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.SetPeerReview(claims.GuildID, ctx.Param("name"), *data.PeerReview)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}
