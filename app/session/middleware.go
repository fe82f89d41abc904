package session

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const contextKey = "_session"

var ErrNoSession = errors.New("no session in context")

// Middleware loads the session before the handler runs and saves it, when
// modified, right before the response headers are written.
func Middleware(store *Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := store.Get(c.Request())
			if err != nil {
				return err
			}

			c.Set(contextKey, sess)
			c.Response().Before(func() {
				if !sess.NeedsSave() {
					return
				}
				if err := store.Save(c.Request(), c.Response().Writer, sess); err != nil {
					logrus.WithError(err).Error("Failed to save session")
				}
			})

			return next(c)
		}
	}
}

func FromContext(c echo.Context) (*Session, error) {
	sess, ok := c.Get(contextKey).(*Session)
	if !ok {
		return nil, ErrNoSession
	}
	return sess, nil
}
