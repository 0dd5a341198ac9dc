package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/apps/shared"
	"github.com/trezcool/scorebook/apps/workspace"
	"github.com/trezcool/scorebook/core"
)

type dataApi struct {
	ws         *workspace.Workspace
	validate   *validator.Validate
	translator ut.Translator
}

func registerDataAPI(
	g *echo.Group,
	book echo.MiddlewareFunc,
	ws *workspace.Workspace,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := dataApi{ws: ws, validate: validate, translator: translator}

	g.GET("/stats", api.stats, book)
	g.GET("/export", api.export, book)
	g.DELETE("/data", api.clear)
	g.POST("/backup", api.backup, book)
}

func (api *dataApi) stats(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, getContextBook(ctx).Statistics())
}

func (api *dataApi) export(ctx echo.Context) error {
	file, err := api.ws.Export(ctx.Request().Context(), ctx.QueryParam("format"))
	if err != nil {
		return err
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return ctx.Blob(http.StatusOK, file.ContentType, file.Data)
}

func (api *dataApi) clear(ctx echo.Context) error {
	if err := api.ws.Clear(ctx.Request().Context()); err != nil {
		if errors.Is(err, workspace.ErrNotAuthenticated) {
			return errUnauthorized
		}
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *dataApi) backup(ctx echo.Context) error {
	var data shared.BackupRequest
	if err := ctx.Bind(&data); err != nil {
		return core.NewValidationError(errors.Wrap(err, "binding to BackupRequest"))
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}
	if err := api.ws.EmailBackup(ctx.Request().Context(), data.Address()); err != nil {
		return err
	}
	return ctx.JSON(http.StatusAccepted, echo.Map{"success": "Backup sent to " + data.Email})
}
