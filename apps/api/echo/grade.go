package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/grade"
)

type gradeApi struct {
	svc      *grade.Service
	validate *validator.Validate
}

func registerGradeAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := gradeApi{
		svc:      deps.GradeSvc,
		validate: deps.Validate,
	}

	gg := g.Group("/grades", jwt)
	gg.POST("", api.upsert)
	gg.GET("/:assignment", api.queryByAssignment, instructorMiddleware())
}

func (api *gradeApi) upsert(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data grade.NewGrade
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	g, err := api.svc.Upsert(claims.GuildID, claims.UserID, claims.Instructor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *gradeApi) queryByAssignment(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	grades, err := api.svc.QueryByAssignment(claims.GuildID, ctx.Param("assignment"))
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}
