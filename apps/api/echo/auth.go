package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/settings"
)

const contextTokenKey = "guildToken"

// Claims represents the authorization claims transmitted via a JWT.
// The gateway authenticates with the guild's API key and vouches for the
// member it relays; GuildID scopes every subsequent call.
type Claims struct {
	jwt.StandardClaims
	GuildID    int64    `json:"guild_id"`
	UserID     int64    `json:"user_id"`
	Instructor bool     `json:"instructor,omitempty"`
	Roles      []string `json:"roles,omitempty"`
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

func GetGuildClaims(conf *core.Config, guildID, userID int64, instructor bool, roles []string) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		GuildID:    guildID,
		UserID:     userID,
		Instructor: instructor,
		Roles:      roles,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

type authApi struct {
	conf        *core.Config
	settingsSvc *settings.Service
	validate    *validator.Validate
}

func registerAuthAPI(g *echo.Group, deps ServerDeps) {
	api := authApi{
		conf:        deps.Conf,
		settingsSvc: deps.SettingsSvc,
		validate:    deps.Validate,
	}

	ag := g.Group("/auth")
	ag.POST("/token", api.token)
}

// token exchanges the guild's API key for a JWT carrying the relayed
// member's identity.
func (api *authApi) token(ctx echo.Context) error {
	var data TokenRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TokenRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.settingsSvc.CheckAPIKey(data.GuildID, data.APIKey); err != nil {
		if err == settings.ErrNotFound || err == settings.ErrInvalidAPIKey {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "checking API key")
	}

	claims := GetGuildClaims(api.conf, data.GuildID, data.UserID, data.Instructor, data.Roles)
	token, err := GenerateToken(api.conf, claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}
