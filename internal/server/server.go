package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kwachapos/fiscalgate/internal/config"
	offlinedomain "github.com/kwachapos/fiscalgate/internal/offline/domain"
	salesdomain "github.com/kwachapos/fiscalgate/internal/sales/domain"
	terminaldomain "github.com/kwachapos/fiscalgate/internal/terminal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	salesSvc    salesdomain.Service
	terminalSvc terminaldomain.Service
	terminals   terminaldomain.Repository
	offline     offlinedomain.Repository
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	SalesSvc    salesdomain.Service
	TerminalSvc terminaldomain.Service
	Terminals   terminaldomain.Repository
	Offline     offlinedomain.Repository
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("server"),
		salesSvc:    p.SalesSvc,
		terminalSvc: p.TerminalSvc,
		terminals:   p.Terminals,
		offline:     p.Offline,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Sales --------
	api.POST("/sales", s.SubmitSale)

	// -------- Terminal state --------
	api.GET("/terminal/status", s.TerminalStatus)
	api.POST("/terminal/poll-unblock", s.PollUnblock)
}
