package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/review"
	"github.com/trezcool/darasa/core/team"
)

type teamApi struct {
	svc      *team.Service
	resolver *review.Resolver
	validate *validator.Validate
}

func registerTeamAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := teamApi{
		svc:      deps.TeamSvc,
		resolver: deps.Resolver,
		validate: deps.Validate,
	}

	tg := g.Group("/teams", jwt)
	tg.GET("", api.query)
	tg.POST("", api.create)
	tg.GET("/mine", api.mine)
	tg.POST("/leave", api.leave)
	tg.GET("/:name", api.retrieve)
	tg.POST("/:name/join", api.join)
	tg.PUT("/:name", api.rename, instructorMiddleware())
	tg.DELETE("/:name", api.destroy, instructorMiddleware())

	pg := g.Group("/peer-review", jwt)
	pg.GET("/session", api.session)
	pg.POST("/distribute", api.distribute, instructorMiddleware())
	pg.POST("/confirm", api.confirmDistribution, instructorMiddleware())
	pg.POST("/cancel", api.cancelDistribution, instructorMiddleware())
}

// teamNotFound enriches the plain 404 with the closest existing team name.
func (api *teamApi) teamNotFound(guildID int64, name string) error {
	if suggestion, ok := api.svc.ClosestTeamName(guildID, name); ok {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("team %q not found; did you mean %q?", name, suggestion))
	}
	return team.ErrNotFound
}

// Handlers

func (api *teamApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	teams, err := api.svc.QueryAll(claims.GuildID)
	if err != nil {
		return errors.Wrap(err, "querying teams")
	}
	return ctx.JSON(http.StatusOK, teams)
}

func (api *teamApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data team.NewTeam
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeam")
	}
	if err = data.Validate(api.validate, api.svc, claims.GuildID); err != nil {
		return err
	}

	t, err := api.svc.Create(claims.GuildID, data, claims.UserID, claims.Instructor)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *teamApi) mine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	t, err := api.svc.FindByMember(claims.GuildID, claims.UserID)
	if err != nil {
		if err == team.ErrNotFound {
			return team.ErrNotInTeam
		}
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *teamApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	name := ctx.Param("name")
	t, err := api.svc.GetByName(claims.GuildID, name)
	if err != nil {
		if err == team.ErrNotFound {
			return api.teamNotFound(claims.GuildID, name)
		}
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *teamApi) join(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	name := ctx.Param("name")
	t, err := api.svc.Join(claims.GuildID, name, claims.UserID, claims.Instructor)
	if err != nil {
		if err == team.ErrNotFound {
			return api.teamNotFound(claims.GuildID, name)
		}
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *teamApi) leave(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	t, err := api.svc.Leave(claims.GuildID, claims.UserID, claims.Instructor)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *teamApi) rename(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data team.RenameTeam
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RenameTeam")
	}
	if err = data.Validate(api.validate, api.svc, claims.GuildID); err != nil {
		return err
	}

	name := ctx.Param("name")
	t, err := api.svc.Rename(claims.GuildID, name, data)
	if err != nil {
		if err == team.ErrNotFound {
			return api.teamNotFound(claims.GuildID, name)
		}
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *teamApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	name := ctx.Param("name")
	if err = api.svc.Delete(claims.GuildID, name); err != nil {
		if err == team.ErrNotFound {
			return api.teamNotFound(claims.GuildID, name)
		}
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Peer review distribution

func (api *teamApi) session(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	session, err := api.resolver.Resolve(claims.GuildID, claims.UserID, claims.Instructor)
	if err != nil {
		return errors.Wrap(err, "resolving grading session")
	}
	return ctx.JSON(http.StatusOK, session)
}

func (api *teamApi) distribute(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	pd, err := api.svc.StartDistribution(claims.GuildID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, DistributionResponse{Token: pd.Token, Preview: pd.Preview})
}

func (api *teamApi) confirmDistribution(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data DistributionTokenRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DistributionTokenRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}
	token, err := uuid.Parse(data.Token)
	if err != nil {
		return team.ErrPendingNotFound
	}

	applied, preview, err := api.svc.ConfirmDistribution(claims.GuildID, token)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ConfirmDistributionResponse{Applied: applied, Preview: preview})
}

func (api *teamApi) cancelDistribution(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data DistributionTokenRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DistributionTokenRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}
	token, err := uuid.Parse(data.Token)
	if err != nil {
		return team.ErrPendingNotFound
	}

	if err = api.svc.CancelDistribution(claims.GuildID, token); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
