package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/apps/workspace"
	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/roster"
	"github.com/trezcool/scorebook/core/user"
)

const bookCtxKey = "book"

type (
	authApi struct {
		ws *workspace.Workspace
	}

	// UserResponse never carries the password verifier nor the roster.
	UserResponse struct {
		Username    string `json:"username"`
		DisplayName string `json:"displayName"`
	}

	MeResponse struct {
		Mode          string        `json:"mode"`
		Authenticated bool          `json:"authenticated"`
		User          *UserResponse `json:"user,omitempty"`
	}
)

func registerAuthAPI(g *echo.Group, ws *workspace.Workspace) {
	api := authApi{ws: ws}

	ag := g.Group("/auth")
	ag.POST("/signup", api.signup)
	ag.POST("/login", api.login)
	ag.POST("/logout", api.logout)
	ag.GET("/me", api.me)
}

// bookMiddleware resolves the book of the current scope and stores it in the echo.Context.
func bookMiddleware(ws *workspace.Workspace) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			book, err := ws.Book(ctx.Request().Context())
			if err != nil {
				if errors.Is(err, workspace.ErrNotAuthenticated) {
					return errUnauthorized
				}
				return errors.Wrap(err, "opening book")
			}
			ctx.Set(bookCtxKey, book)
			return next(ctx)
		}
	}
}

func getContextBook(ctx echo.Context) *roster.Book {
	book, _ := ctx.Get(bookCtxKey).(*roster.Book)
	return book
}

func newUserResponse(usr user.User) *UserResponse {
	return &UserResponse{Username: usr.Username, DisplayName: usr.DisplayName}
}

// Handlers

func (api *authApi) signup(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return core.NewValidationError(errors.Wrap(err, "binding to NewUser"))
	}
	usr, err := api.ws.Signup(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, newUserResponse(usr))
}

func (api *authApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return core.NewValidationError(errors.Wrap(err, "binding to Credentials"))
	}
	usr, err := api.ws.Login(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newUserResponse(usr))
}

func (api *authApi) logout(ctx echo.Context) error {
	if err := api.ws.Logout(ctx.Request().Context()); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *authApi) me(ctx echo.Context) error {
	resp := MeResponse{Mode: core.ModeSingle}
	if !api.ws.IsMultiUser() {
		return ctx.JSON(http.StatusOK, resp)
	}

	resp.Mode = core.ModeMulti
	users := api.ws.Users()
	if users.IsAuthenticated() {
		name, err := users.DisplayName(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "getting display name")
		}
		resp.Authenticated = true
		resp.User = &UserResponse{Username: users.Current(), DisplayName: name}
	}
	return ctx.JSON(http.StatusOK, resp)
}
