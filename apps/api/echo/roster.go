package echoapi

import (
	"net/http"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/apps/shared"
	"github.com/trezcool/scorebook/apps/workspace"
	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/roster"
)

type (
	rosterApi struct {
		ws         *workspace.Workspace
		validate   *validator.Validate
		translator ut.Translator
	}

	ScoreResponse struct {
		roster.Student
		MaxTotal int    `json:"maxTotal"`
		Band     string `json:"band"`
	}
)

func registerRosterAPI(
	g *echo.Group,
	book echo.MiddlewareFunc,
	ws *workspace.Workspace,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := rosterApi{ws: ws, validate: validate, translator: translator}

	cg := g.Group("/classes", book)
	cg.GET("", api.listClasses)
	cg.POST("", api.createClass)
	cg.POST("/reorder", api.reorderClasses)
	cg.POST("/import", api.importClass)

	// class detail endpoints
	dg := cg.Group("/:classID")
	dg.GET("", api.retrieveClass)
	dg.PUT("", api.renameClass)
	dg.DELETE("", api.destroyClass)

	sg := dg.Group("/students")
	sg.GET("", api.listStudents)
	sg.POST("", api.createStudent)
	sg.POST("/reorder", api.reorderStudents)
	sg.GET("/:studentID", api.retrieveStudent)
	sg.PUT("/:studentID", api.renameStudent)
	sg.DELETE("/:studentID", api.destroyStudent)
	sg.PUT("/:studentID/scores/:criterionID", api.updateScore)
}

func (api *rosterApi) bindName(ctx echo.Context) (shared.NameRequest, error) {
	var data shared.NameRequest
	if err := ctx.Bind(&data); err != nil {
		return data, core.NewValidationError(errors.Wrap(err, "binding to NameRequest"))
	}
	return data, data.Validate(api.validate, api.translator)
}

func (api *rosterApi) bindMove(ctx echo.Context) (from, to int, err error) {
	var data shared.MoveRequest
	if err = ctx.Bind(&data); err != nil {
		return 0, 0, core.NewValidationError(errors.Wrap(err, "binding to MoveRequest"))
	}
	if err = data.Validate(api.validate, api.translator); err != nil {
		return 0, 0, err
	}
	return *data.From, *data.To, nil
}

// Classes

func (api *rosterApi) listClasses(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, getContextBook(ctx).Classes())
}

func (api *rosterApi) createClass(ctx echo.Context) error {
	data, err := api.bindName(ctx)
	if err != nil {
		return err
	}
	cls, err := getContextBook(ctx).AddClass(ctx.Request().Context(), data.Name)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *rosterApi) reorderClasses(ctx echo.Context) error {
	from, to, err := api.bindMove(ctx)
	if err != nil {
		return err
	}
	book := getContextBook(ctx)
	if err = book.ReorderClasses(ctx.Request().Context(), from, to); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, book.Classes())
}

// importClass accepts either a multipart spreadsheet upload (`file`, optional `className`)
// or a json shared.ImportRequest.
func (api *rosterApi) importClass(ctx echo.Context) error {
	var (
		cls roster.Class
		err error
	)
	reqCtx := ctx.Request().Context()

	if strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, fErr := ctx.FormFile("file")
		if fErr != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "this field is required"})
		}
		f, fErr := fh.Open()
		if fErr != nil {
			return errors.Wrap(fErr, "opening upload")
		}
		defer func() { _ = f.Close() }()
		cls, err = api.ws.ImportFile(reqCtx, f, fh.Filename, ctx.FormValue("className"))
	} else {
		var data shared.ImportRequest
		if err = ctx.Bind(&data); err != nil {
			return core.NewValidationError(errors.Wrap(err, "binding to ImportRequest"))
		}
		if err = data.Validate(api.validate, api.translator); err != nil {
			return err
		}
		cls, err = api.ws.Import(reqCtx, data.ClassName, data.Names)
	}
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *rosterApi) retrieveClass(ctx echo.Context) error {
	cls, err := getContextBook(ctx).Class(ctx.Param("classID"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *rosterApi) renameClass(ctx echo.Context) error {
	data, err := api.bindName(ctx)
	if err != nil {
		return err
	}
	cls, err := getContextBook(ctx).RenameClass(ctx.Request().Context(), ctx.Param("classID"), data.Name)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *rosterApi) destroyClass(ctx echo.Context) error {
	if err := getContextBook(ctx).DeleteClass(ctx.Request().Context(), ctx.Param("classID")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Students

func (api *rosterApi) listStudents(ctx echo.Context) error {
	students, err := getContextBook(ctx).SearchStudents(ctx.Param("classID"), ctx.QueryParam("search"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *rosterApi) createStudent(ctx echo.Context) error {
	data, err := api.bindName(ctx)
	if err != nil {
		return err
	}
	s, err := getContextBook(ctx).AddStudent(ctx.Request().Context(), ctx.Param("classID"), data.Name)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *rosterApi) reorderStudents(ctx echo.Context) error {
	from, to, err := api.bindMove(ctx)
	if err != nil {
		return err
	}
	book := getContextBook(ctx)
	classID := ctx.Param("classID")
	if err = book.ReorderStudents(ctx.Request().Context(), classID, from, to); err != nil {
		return err
	}
	students, err := book.Students(classID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *rosterApi) retrieveStudent(ctx echo.Context) error {
	s, err := getContextBook(ctx).Student(ctx.Param("classID"), ctx.Param("studentID"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *rosterApi) renameStudent(ctx echo.Context) error {
	data, err := api.bindName(ctx)
	if err != nil {
		return err
	}
	s, err := getContextBook(ctx).RenameStudent(ctx.Request().Context(), ctx.Param("classID"), ctx.Param("studentID"), data.Name)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *rosterApi) destroyStudent(ctx echo.Context) error {
	err := getContextBook(ctx).DeleteStudent(ctx.Request().Context(), ctx.Param("classID"), ctx.Param("studentID"))
	if err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// updateScore answers with the student even when saving failed: the new score is kept in memory
// and the failure is reported in the `X-Storage-Error` header.
func (api *rosterApi) updateScore(ctx echo.Context) error {
	var data shared.ScoreRequest
	if err := ctx.Bind(&data); err != nil {
		return core.NewValidationError(errors.Wrap(err, "binding to ScoreRequest"))
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	book := getContextBook(ctx)
	s, err := book.UpdateScore(
		ctx.Request().Context(),
		ctx.Param("classID"), ctx.Param("studentID"), ctx.Param("criterionID"),
		*data.Value,
	)
	if err != nil {
		if !core.IsStorageError(err) || s.ID == "" {
			return err
		}
		ctx.Response().Header().Set("X-Storage-Error", errors.Cause(err).Error())
	}
	maxTotal := book.MaxTotal()
	return ctx.JSON(http.StatusOK, ScoreResponse{Student: s, MaxTotal: maxTotal, Band: roster.ScoreBand(s.Total, maxTotal)})
}
