package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /change-logs: 履歴の参照専用API。書き込みはサーバー内部（在庫更新）だけ。
type ChangeLogHandler struct {
	uc *usecase.ChangeLogUsecase
}

func NewChangeLogHandler(uc *usecase.ChangeLogUsecase) *ChangeLogHandler {
	return &ChangeLogHandler{uc: uc}
}

func (h *ChangeLogHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group(
		"/change-logs",
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	)

	g.GET("", h.list)
	g.GET("/:id", h.detail)

	// 履歴はクライアントから書き換え不可。管理者でも405。
	g.POST("", h.methodNotAllowed)
	g.PUT("/:id", h.methodNotAllowed)
	g.PATCH("/:id", h.methodNotAllowed)
	g.DELETE("/:id", h.methodNotAllowed)
}

func (h *ChangeLogHandler) methodNotAllowed(c echo.Context) error {
	return c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Error: "change logs are read-only"})
}

func (h *ChangeLogHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var in usecase.ListChangeLogsInput

	if v := c.QueryParam("inventory_item"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid inventory_item"})
		}
		in.InventoryItemID = &x
	}

	if v := c.QueryParam("change_type"); v != "" {
		in.ChangeType = &v
	}

	if v := c.QueryParam("limit"); v != "" {
		x, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		in.Limit = x
	}

	if v := c.QueryParam("offset"); v != "" {
		x, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
		}
		in.Offset = x
	}

	out, err := h.uc.List(c.Request().Context(), userID, in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ChangeLogHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.Get(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
