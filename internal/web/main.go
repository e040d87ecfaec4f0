// Package web implements the console's Fiber web service.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/iam-console/iam-console/internal/config"
	fiberlogger "github.com/iam-console/iam-console/internal/logger/adapter/fiber"
	"github.com/iam-console/iam-console/internal/reconciler"
	apiaudit "github.com/iam-console/iam-console/internal/web/handler/api/audit"
	apiintegration "github.com/iam-console/iam-console/internal/web/handler/api/integration"
	apinotification "github.com/iam-console/iam-console/internal/web/handler/api/notification"
	apirole "github.com/iam-console/iam-console/internal/web/handler/api/role"
	apiuser "github.com/iam-console/iam-console/internal/web/handler/api/user"
	"github.com/iam-console/iam-console/internal/web/handler/login"
	"github.com/iam-console/iam-console/internal/web/handler/logout"
	"github.com/iam-console/iam-console/internal/web/middleware"
)

// CheckAlivePath is the liveness probe path used by load balancers.
const CheckAlivePath = "/checkalive"

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	reconciler   *reconciler.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the console.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	// Wait interrupt or shutdown request
	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        "iam-console",
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	// access logging
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	// rate limit mutating API calls per client
	app.Use(middleware.WriteRateLimiter(cfg.Webserver.WriteRateLimit, cfg.Webserver.WriteRateBurst))

	// session auth middleware for the API
	app.Use(AuthMiddleware)

	recon := reconciler.NewService(db)

	// init web service; dev mode skips the LB drain wait on shutdown
	service := &Service{
		cfg:          cfg,
		App:          app,
		db:           db,
		reconciler:   recon,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	// prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// LB-aware liveness probe
	app.Get(CheckAlivePath, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	// init handlers (they register their own routes)
	login.Handler.Init(app, cfg, db)
	logout.Handler.Init(app, cfg, db)
	apiuser.Handler.Init(app, cfg, db, recon)
	apirole.Handler.Init(app, cfg, db, recon)
	apiaudit.Handler.Init(app, cfg, db)
	apiintegration.Handler.Init(app, cfg, db, recon)
	apinotification.Handler.Init(app, cfg, db)

	return service
}
