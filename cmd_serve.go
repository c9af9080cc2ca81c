package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/mtheuszin1/adscale-deploy/handlers"
	"github.com/mtheuszin1/adscale-deploy/logger"
)

const (
	readTimeout     = 30 * time.Second
	writeTimeout    = 60 * time.Second
	shutdownTimeout = 15 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := &http.Server{
			Addr:         a.cfg.Server.Addr,
			Handler:      newRouter(a),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			a.log.Info("Starting AdScale server",
				logger.String("addr", srv.Addr),
				logger.String("mode", a.cfg.Server.Mode),
			)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		a.log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func newRouter(a *app) *gin.Engine {
	gin.SetMode(a.cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery(), handlers.RequestLogger(a.log, a.metrics))

	// Uploaded creatives
	if base := a.cfg.Import.MediaBaseURL; strings.HasPrefix(base, "/") {
		r.Static(strings.TrimSuffix(base, "/"), a.cfg.Import.MediaDir)
	}

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/api/dashboard")
	})

	handlers.New(a.store, a.snapshots, a.importer, a.log, a.metrics, a.cfg.Import).Register(r)
	return r
}
