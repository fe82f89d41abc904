package controller

import (
	"errors"
	"net/http"
	"strconv"

	dto "github.com/vibast-solutions/ms-go-webauth/app/dto/http"
	"github.com/vibast-solutions/ms-go-webauth/app/session"
	"github.com/vibast-solutions/ms-go-webauth/app/view"

	"github.com/labstack/echo/v4"
)

func newPage(sess *session.Session, path, title string) *view.Page {
	page := &view.Page{Path: path, Title: title}
	if user, ok := sess.User(); ok {
		page.User = &user
	}
	return page
}

// renderInvalid re-renders a form with its first validation message. Errors
// that are not validation failures bubble up to the error handler.
func renderInvalid(ctx echo.Context, err error, name string, page *view.Page, old map[string]string) error {
	var verr *dto.ValidationError
	if !errors.As(err, &verr) {
		return internalError(err)
	}

	page.Error = verr.Message
	page.Invalid = verr.Fields
	page.Old = old
	return ctx.Render(http.StatusUnprocessableEntity, name, page)
}

func redirect(ctx echo.Context, to string) error {
	return ctx.Redirect(http.StatusSeeOther, to)
}

func internalError(err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
