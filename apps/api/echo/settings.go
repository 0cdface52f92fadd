package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/settings"
)

type settingsApi struct {
	svc      *settings.Service
	validate *validator.Validate
}

func registerSettingsAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := settingsApi{
		svc:      deps.SettingsSvc,
		validate: deps.Validate,
	}

	sg := g.Group("/settings", jwt, instructorMiddleware())
	sg.GET("", api.retrieve)
	sg.PUT("", api.update)
}

func (api *settingsApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	s, err := api.svc.Get(claims.GuildID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *settingsApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data settings.UpdateSettings
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSettings")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Update(claims.GuildID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}
