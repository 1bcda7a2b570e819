// Package server exposes the chat and ingestion HTTP API.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"profadvisor/config"
)

// Run builds the application and serves it until the listener fails.
func Run(cfg *config.Config) error {
	app, err := NewApp(context.Background(), cfg)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Debug = cfg.General.Debug
	e.Logger.SetLevel(logLevel(cfg.General.LogLevel))
	if cfg.General.DefaultTimeout > 0 {
		// Do not set a write timeout: chat responses stream for as long as
		// the model generates.
		e.Server.ReadHeaderTimeout = cfg.General.DefaultTimeout
	}
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	Register(e, app)

	addr := cfg.Server.Address
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("listening on %s (backend %s, index %q, namespace %q)",
		addr, cfg.Vector.Backend, cfg.Vector.Index, cfg.Vector.Namespace)
	return e.Start(addr)
}

// logLevel maps the config's log_level string onto echo's logger levels,
// defaulting to info for unknown values.
func logLevel(name string) glog.Lvl {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return glog.DEBUG
	case "warn", "warning":
		return glog.WARN
	case "error":
		return glog.ERROR
	default:
		return glog.INFO
	}
}

// Register attaches the API routes to the echo instance.
func Register(e *echo.Echo, app *App) {
	api := e.Group("/api")

	ch := &ChatHandler{
		Answerer:  app.Querier,
		Extractor: app.Extractor,
		Ingestor:  app.chatIngestor,
	}
	api.POST("/chat", ch.Handle)

	ph := &ProfessorsHandler{Ingest: app.IngestLink}
	api.POST("/professors", ph.Handle)
}
