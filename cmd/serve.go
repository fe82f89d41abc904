package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/vibast-solutions/ms-go-webauth/app/database"
	"github.com/vibast-solutions/ms-go-webauth/app/metrics"
	"github.com/vibast-solutions/ms-go-webauth/config"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the HTTP (Echo) server serving the login, signup and password reset pages.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := database.Open(ctx, cfg.MySQL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if cfg.MySQL.AutoMigrate {
		if err := database.Migrate(ctx, db, "up"); err != nil {
			logrus.WithError(err).Fatal("Failed to apply migrations")
		}
	}

	m, err := newMailer(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to configure mailer")
	}

	e, err := newHTTPServer(cfg, db, m, metrics.New())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to build HTTP server")
	}

	if err := startHTTPServer(ctx, cfg, e); err != nil {
		logrus.WithError(err).Fatal("HTTP server stopped with error")
	}
	logrus.Info("HTTP server stopped")
}

// startHTTPServer serves until ctx is cancelled, then shuts down gracefully.
func startHTTPServer(ctx context.Context, cfg *config.Config, e *echo.Echo) error {
	httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logrus.Info("Stopping HTTP server")

		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutCtx)
	})

	return g.Wait()
}
