package server

import (
	"net/http"

	"app/internal/config"
	"app/internal/handler"
	"app/internal/middleware"
	"app/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ルート登録に必要なハンドラ一式
type Handlers struct {
	Auth       *handler.AuthHandler
	AdminUser  *handler.AdminUserHandler
	Categories *handler.CategoryHandler
	Items      *handler.ItemHandler
	ChangeLogs *handler.ChangeLogHandler
}

// echoを組み立てて返す。起動はしない（テストから使うため）。
func New(cfg config.Config, userRepo repository.UserRepository, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogging())
	e.Use(middleware.Metrics())

	// 運用系エンドポイント（認証なし）
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	h.Auth.RegisterRoutes(e, cfg, userRepo)
	h.AdminUser.RegisterRoutes(e, cfg, userRepo)
	h.Categories.RegisterRoutes(e, cfg, userRepo)
	h.Items.RegisterRoutes(e, cfg, userRepo)
	h.ChangeLogs.RegisterRoutes(e, cfg, userRepo)

	return e
}

func Start(addr string, e *echo.Echo) error {
	return e.Start(addr)
}
