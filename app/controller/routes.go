package controller

import (
	"github.com/vibast-solutions/ms-go-webauth/app/middleware"

	"github.com/labstack/echo/v4"
)

// Router is satisfied by both *echo.Echo and *echo.Group.
type Router interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

func RegisterRoutes(r Router, c *AuthController) {
	r.GET("/", c.Home)
	r.POST("/logout", c.Logout)

	r.GET("/login", c.GetLogin, middleware.GuestOnly)
	r.POST("/login", c.PostLogin, middleware.GuestOnly)
	r.GET("/signup", c.GetSignup, middleware.GuestOnly)
	r.POST("/signup", c.PostSignup, middleware.GuestOnly)
	r.GET("/reset", c.GetReset, middleware.GuestOnly)
	r.POST("/reset", c.PostReset, middleware.GuestOnly)
	r.GET("/reset/:token", c.GetNewPassword)
	r.POST("/new-password", c.PostNewPassword)
}
