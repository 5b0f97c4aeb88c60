// Command server runs one tasting-menu service station: the operator API
// plus, depending on its role, the replication socket and the embedded
// relay.
package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/spf13/pflag"

	"github.com/iliyamo/tasting-service/internal/config"
	"github.com/iliyamo/tasting-service/internal/database"
	"github.com/iliyamo/tasting-service/internal/event"
	"github.com/iliyamo/tasting-service/internal/handler"
	"github.com/iliyamo/tasting-service/internal/menu"
	"github.com/iliyamo/tasting-service/internal/middleware"
	"github.com/iliyamo/tasting-service/internal/relay"
	"github.com/iliyamo/tasting-service/internal/replication"
	"github.com/iliyamo/tasting-service/internal/repository"
	"github.com/iliyamo/tasting-service/internal/router"
	"github.com/iliyamo/tasting-service/internal/service"
)

func main() {
	cfg := config.Load()
	flags := pflag.NewFlagSet("server", pflag.ExitOnError)
	cfg.AddFlags(flags)
	_ = flags.Parse(os.Args[1:])

	logger := cfg.NewLogger("server")
	role, err := replication.ParseRole(cfg.Role)
	if err != nil {
		logger.Fatal(err)
	}

	seed := loadSeed(cfg, logger)
	catalog, menuSource, closeMenus := loadMenus(cfg, seed, logger)
	defer closeMenus()

	var snapshots *repository.SnapshotRepo
	initial := seed.State()
	if role == replication.RoleHost && cfg.SnapshotEnabled {
		if rdb := config.NewRedisClient(cfg.Redis); rdb != nil {
			defer rdb.Close()
			snapshots = repository.NewSnapshotRepo(rdb, cfg.SnapshotKey)
			if cfg.ResetSnapshot {
				resetSnapshot(snapshots, logger)
			} else {
				initial = restore(snapshots, initial, logger)
			}
		} else {
			logger.Warnf("redis unreachable at %s; snapshot persistence disabled", cfg.Redis.Addr)
		}
	}

	store := event.NewStore(initial, catalog)

	e := echo.New()
	e.HideBanner = true
	e.Logger = cfg.NewLogger("echo")
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(middleware.RequestLogger(cfg.NewLogger("http")))
	e.Use(echoMw.Recover())

	relayURL := cfg.RelayURL
	if role == replication.RoleHost && cfg.EmbedRelay {
		router.RegisterRelay(e, relay.NewHub(cfg.NewLogger("relay")))
		relayURL = "ws://127.0.0.1:" + cfg.Port + "/ws"
	}

	opts := replication.Options{
		Role:       role,
		RelayURL:   relayURL,
		Origin:     cfg.RelayOrigin,
		RetryDelay: cfg.RetryDelay,
		Debounce:   cfg.SnapshotDebounce,
		Logger:     cfg.NewLogger("replication"),
	}
	if snapshots != nil {
		opts.Snapshots = snapshots
	}
	node := replication.NewNode(store, opts)

	if role != replication.RoleClient && cfg.TicketsEnabled {
		tickets := &service.KitchenTickets{
			Publisher: service.AMQPPublisher{URL: cfg.AMQPURL},
			Log:       cfg.NewLogger("tickets"),
		}
		store.Subscribe(tickets.Observe)
	}

	router.RegisterRoutes(e, handler.NewServiceHandler(node, store, catalog, menuSource))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.Port
		logger.Infof("listening on %s (env=%s role=%s)", addr, cfg.Env, role)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(err)
		}
	}()
	node.Start(ctx)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error(err)
	}
}

// loadSeed reads the seed file.  A missing file starts an empty floor; a
// broken one is fatal.
func loadSeed(cfg config.Config, logger *log.Logger) repository.Seed {
	seed, err := repository.LoadSeed(cfg.SeedPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warnf("seed file %s not found; starting with an empty floor", cfg.SeedPath)
			return repository.Seed{}
		}
		logger.Fatal(err)
	}
	return seed
}

// loadMenus prefers the menu database when one is configured.  The
// database stays open for single-menu lookups; the returned func closes it.
func loadMenus(cfg config.Config, seed repository.Seed, logger *log.Logger) (menu.Catalog, handler.MenuSource, func()) {
	noop := func() {}
	if !cfg.DB.Enabled() {
		return seed.Catalog(), nil, noop
	}
	db, err := database.Open(cfg.DB)
	if err != nil {
		logger.Warnf("menu database unavailable (%v); using seed menus", err)
		return seed.Catalog(), nil, noop
	}
	closeDB := func() { _ = db.Close() }

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	repo := repository.NewMenuRepo(db)
	catalog, err := repo.LoadAll(ctx)
	if err != nil {
		logger.Warnf("load menus: %v; using seed menus", err)
		closeDB()
		return seed.Catalog(), nil, noop
	}
	logger.Infof("loaded %d menus from database", len(catalog))
	return catalog, repo, closeDB
}

func resetSnapshot(snapshots *repository.SnapshotRepo, logger *log.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := snapshots.Clear(ctx); err != nil {
		logger.Warnf("reset snapshot: %v", err)
		return
	}
	logger.Info("stored snapshot cleared; starting from seed")
}

func restore(snapshots *repository.SnapshotRepo, fallback event.State, logger *log.Logger) event.State {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := snapshots.Load(ctx)
	switch {
	case err == nil:
		logger.Infof("restored snapshot: %d tables, %d reservations", len(st.Tables), len(st.Reservations))
		return st
	case errors.Is(err, repository.ErrSnapshotNotFound):
		logger.Info("no stored snapshot; starting from seed")
	default:
		logger.Warnf("restore snapshot: %v; starting from seed", err)
	}
	return fallback
}
