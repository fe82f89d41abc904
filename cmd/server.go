package cmd

import (
	"database/sql"
	"net/http"

	"github.com/vibast-solutions/ms-go-webauth/app/controller"
	dto "github.com/vibast-solutions/ms-go-webauth/app/dto/http"
	"github.com/vibast-solutions/ms-go-webauth/app/mailer"
	"github.com/vibast-solutions/ms-go-webauth/app/metrics"
	"github.com/vibast-solutions/ms-go-webauth/app/repository"
	"github.com/vibast-solutions/ms-go-webauth/app/service"
	"github.com/vibast-solutions/ms-go-webauth/app/session"
	"github.com/vibast-solutions/ms-go-webauth/app/view"
	"github.com/vibast-solutions/ms-go-webauth/config"

	"github.com/gorilla/csrf"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

const (
	csrfCookieName = "webauth-csrf"
	csrfFieldName  = "_csrf"
)

func newMailer(cfg *config.Config) (mailer.Mailer, error) {
	if cfg.Mail.Driver == config.MailDriverSMTP {
		return mailer.NewSMTPMailer(cfg.Mail)
	}
	return mailer.NewLogMailer(cfg.Mail.From, logrus.StandardLogger()), nil
}

func newHTTPServer(cfg *config.Config, db *sql.DB, m mailer.Mailer, reg *metrics.Metrics) (*echo.Echo, error) {
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(db)
	notifier := service.NewNotifier(m, cfg, service.WithNotifierMetrics(reg))
	authService := service.NewAuthService(userRepo, notifier, cfg, service.WithMetrics(reg))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = dto.NewFormValidator(cfg.Password.Policy)
	e.HTTPErrorHandler = controller.HTTPErrorHandler

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())

	e.GET("/healthz", func(c echo.Context) error {
		if err := db.PingContext(c.Request().Context()); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable).SetInternal(err)
		}
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(reg.Handler()))

	var pageMiddleware []echo.MiddlewareFunc
	if !cfg.Session.Secure {
		pageMiddleware = append(pageMiddleware, markPlaintext)
	}
	pageMiddleware = append(pageMiddleware,
		echo.WrapMiddleware(csrf.Protect(
			[]byte(cfg.Session.CSRFKey),
			csrf.Secure(cfg.Session.Secure),
			csrf.Path("/"),
			csrf.SameSite(csrf.SameSiteLaxMode),
			csrf.CookieName(csrfCookieName),
			csrf.FieldName(csrfFieldName),
			csrf.ErrorHandler(csrfFailureHandler(e)),
		)),
		session.Middleware(session.NewCookieStore(cfg.Session)),
	)
	pages := e.Group("", pageMiddleware...)

	controller.RegisterRoutes(pages, controller.NewAuthController(authService))

	return e, nil
}

// markPlaintext tells gorilla/csrf the request did not arrive over TLS, so it
// skips the HTTPS-only referer check.
func markPlaintext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.SetRequest(csrf.PlaintextHTTPRequest(c.Request()))
		return next(c)
	}
}

func csrfFailureHandler(e *echo.Echo) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := e.NewContext(r, w)
		controller.HTTPErrorHandler(echo.NewHTTPError(http.StatusForbidden).SetInternal(csrf.FailureReason(r)), c)
	})
}
