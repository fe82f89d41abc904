package middleware

import (
	"net/http"

	"github.com/vibast-solutions/ms-go-webauth/app/session"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// GuestOnly sends logged-in users home instead of showing them the login,
// signup and reset forms.
func GuestOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session.FromContext(c)
		if err != nil {
			return err
		}

		if user, ok := sess.User(); ok {
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,
				"path":    c.Path(),
			}).Debug("Authenticated user redirected away from guest page")
			return c.Redirect(http.StatusSeeOther, "/")
		}

		return next(c)
	}
}
