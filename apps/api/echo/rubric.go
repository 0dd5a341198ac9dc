package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/apps/shared"
	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/rubric"
)

type (
	rubricApi struct {
		validate   *validator.Validate
		translator ut.Translator
	}

	CriteriaResponse struct {
		Criteria []rubric.Criterion `json:"criteria"`
		MaxTotal int                `json:"maxTotal"`
	}
)

func registerRubricAPI(g *echo.Group, book echo.MiddlewareFunc, validate *validator.Validate, translator ut.Translator) {
	api := rubricApi{validate: validate, translator: translator}

	cg := g.Group("/criteria", book)
	cg.GET("", api.list)
	cg.POST("", api.create)
	cg.POST("/reset", api.reset)
	cg.PUT("/:criterionID", api.update)
	cg.DELETE("/:criterionID", api.destroy)
}

func criteriaResponse(ctx echo.Context) CriteriaResponse {
	book := getContextBook(ctx)
	return CriteriaResponse{Criteria: book.Criteria(), MaxTotal: book.MaxTotal()}
}

func (api *rubricApi) list(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, criteriaResponse(ctx))
}

func (api *rubricApi) create(ctx echo.Context) error {
	var data shared.CriterionRequest
	if err := ctx.Bind(&data); err != nil {
		return core.NewValidationError(errors.Wrap(err, "binding to CriterionRequest"))
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}
	c, err := getContextBook(ctx).AddCriterion(ctx.Request().Context(), data.Name, data.MaxScore, data.Icon)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, c)
}

// update ignores unknown criteria and answers with the whole rubric.
func (api *rubricApi) update(ctx echo.Context) error {
	var data shared.CriterionUpdateRequest
	if err := ctx.Bind(&data); err != nil {
		return core.NewValidationError(errors.Wrap(err, "binding to CriterionUpdateRequest"))
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}
	if err := getContextBook(ctx).UpdateCriterion(ctx.Request().Context(), ctx.Param("criterionID"), data.Update()); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, criteriaResponse(ctx))
}

func (api *rubricApi) destroy(ctx echo.Context) error {
	if err := getContextBook(ctx).DeleteCriterion(ctx.Request().Context(), ctx.Param("criterionID")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *rubricApi) reset(ctx echo.Context) error {
	if err := getContextBook(ctx).ResetCriteria(ctx.Request().Context()); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, criteriaResponse(ctx))
}
