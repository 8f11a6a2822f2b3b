package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	accounts "cardvault/contexts/account-management/account-service"
	"cardvault/internal/platform/config"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "cardvault/internal/platform/httpserver/docs"
)

type Server struct {
	engine   *gin.Engine
	logger   *slog.Logger
	cfg      config.HTTPConfig
	accounts accounts.Module
}

func New(accountsModule accounts.Module, logger *slog.Logger, cfg config.HTTPConfig) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), requestLogger(logger))

	s := &Server{
		engine:   engine,
		logger:   logger,
		cfg:      cfg,
		accounts: accountsModule,
	}
	s.registerRoutes()
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting",
			"event", "http_server_starting",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"addr", srv.Addr,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", "internal/platform/httpserver",
		"layer", "platform",
	)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.engine.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	)))
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/", authenticate(s.accounts.Authenticator))

	users := api.Group("/users")
	users.POST("", s.handleCreateUser)
	users.GET("", s.handleListUsers)
	users.GET("/by-email", s.handleGetUserByEmail)
	users.GET("/:id", s.handleGetUser)
	users.PUT("/:id", s.handleUpdateUser)
	users.PUT("/:id/activate", s.handleSetUserActive(true))
	users.PUT("/:id/deactivate", s.handleSetUserActive(false))
	users.DELETE("/:id", s.handleDeleteUser)

	cards := api.Group("/cards")
	cards.POST("/user/:userId", s.handleCreateCard)
	cards.GET("", s.handleListCards)
	cards.GET("/users/:userId", s.handleListUserCards)
	cards.GET("/:id", s.handleGetCard)
	cards.PUT("/:id", s.handleUpdateCard)
	cards.PUT("/:id/activate", s.handleSetCardActive(true))
	cards.PUT("/:id/deactivate", s.handleSetCardActive(false))
	cards.DELETE("/:id", s.handleDeleteCard)

	cache := api.Group("/cache")
	cache.GET("/:space/:key", s.handleInspectCache)
	cache.DELETE("/:kind", s.handleClearCache)
}
