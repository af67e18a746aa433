// app/echoServer/middleware.go
package echoServer

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"sharekori/app/echoServer/jwtx"
	"sharekori/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func RegisterMiddlewares(e *echo.Echo) {

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// image uploads are read fully into memory before sniffing
	e.Use(middleware.BodyLimit("8M"))

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	e.Use(Slog())
}

func Slog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			lat := time.Since(start).Milliseconds()

			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			slog.Info("http",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", lat,
				"req_id", rid,
				"ip", c.RealIP(),
				"ua", c.Request().UserAgent(),
			)
			return err
		}
	}
}

// UserSource lets the auth chain confirm the token's subject still exists.
type UserSource interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

// AuthRequired verifies the bearer token and resolves the caller. After
// it runs, "user_id" holds the caller id and "auth_user" the user row.
func AuthRequired(secret string, users UserSource) []echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(secret),
		TokenLookup: "header:Authorization",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return jwt.MapClaims{}
		},
	})

	resolve := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, err := jwtx.UserIDFromToken(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			u, err := users.ByID(c.Request().Context(), uid)
			if err != nil {
				rid := c.Response().Header().Get(echo.HeaderXRequestID)
				slog.Error("auth user lookup failed", "err", err, "req_id", rid)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			if u == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			c.Set("user_id", u.ID)
			c.Set("auth_user", u)
			return next(c)
		}
	}

	return []echo.MiddlewareFunc{verify, resolve}
}
