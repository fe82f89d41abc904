package controller

import (
	"errors"
	"net/http"

	"github.com/vibast-solutions/ms-go-webauth/app/view"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// HTTPErrorHandler logs the failure and renders the error page.
func HTTPErrorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if he.Internal != nil {
			err = he.Internal
		}
	}

	entry := logrus.WithError(err).WithFields(logrus.Fields{
		"method": ctx.Request().Method,
		"uri":    ctx.Request().RequestURI,
		"status": status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}

	if ctx.Request().Method == http.MethodHead {
		err = ctx.NoContent(status)
	} else {
		err = ctx.Render(status, view.Error, view.ErrorPage(status))
	}
	if err != nil {
		logrus.WithError(err).Error("Failed to render error page")
		_ = ctx.String(status, http.StatusText(status))
	}
}
