package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/course"
)

type courseApi struct {
	svc      *course.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := courseApi{
		svc:      deps.CourseSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/course", jwt, instructorMiddleware())
	cg.GET("", api.retrieve)
	cg.POST("", api.create)
	cg.PUT("", api.update)
	cg.DELETE("", api.destroy)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	c, err := api.svc.Get(claims.GuildID, claims.UserID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data course.NewCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Create(claims.GuildID, claims.UserID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *courseApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Update(claims.GuildID, claims.UserID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err = api.svc.Delete(claims.GuildID, claims.UserID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
