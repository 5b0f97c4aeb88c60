// Command relay runs the replication relay on its own: a websocket fan-out
// point for HOST and CLIENT stations.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"

	"github.com/iliyamo/tasting-service/internal/config"
	"github.com/iliyamo/tasting-service/internal/handler"
	"github.com/iliyamo/tasting-service/internal/middleware"
	"github.com/iliyamo/tasting-service/internal/relay"
	"github.com/iliyamo/tasting-service/internal/router"
)

func main() {
	cfg := config.Load()
	flags := pflag.NewFlagSet("relay", pflag.ExitOnError)
	flags.StringVar(&cfg.Port, "port", cfg.Port, "HTTP port to listen on")
	_ = flags.Parse(os.Args[1:])

	logger := cfg.NewLogger("relay")
	hub := relay.NewHub(logger)

	e := echo.New()
	e.HideBanner = true
	e.Logger = cfg.NewLogger("echo")
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.Recover())

	e.GET("/healthz", handler.Health)
	e.GET("/v1/relay", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"peers":       hub.Peers(),
			"hasSnapshot": hub.Snapshot() != nil,
		})
	})
	router.RegisterRelay(e, hub)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.Port
		logger.Infof("relay listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error(err)
	}
}
