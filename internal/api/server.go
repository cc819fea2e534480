package api

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/daisywatson/monopoly-game/internal/api/handlers"
	"github.com/daisywatson/monopoly-game/internal/api/middleware/auth"
	"github.com/daisywatson/monopoly-game/internal/config"
	"github.com/daisywatson/monopoly-game/internal/game/manager"
	"github.com/daisywatson/monopoly-game/internal/game/websocket"
)

// CustomValidator is the request validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// RequestMetrics tracks metrics for API requests
type RequestMetrics struct {
	RequestCount map[string]int     `json:"requestCount"`
	DurationSum  map[string]float64 `json:"durationSum"`
	mutex        sync.RWMutex
}

// Dependencies are the components the server routes requests to
type Dependencies struct {
	Games   *manager.GameManager
	Hub     *websocket.Hub
	History handlers.HistoryReader
	Mongo   handlers.MongoPinger
	Cache   Cache
	Queue   handlers.QueueStats
}

// Cache is the redis snapshot cache as seen by the handlers
type Cache interface {
	handlers.CachePinger
	handlers.SnapshotLoader
}

// Server represents the API server
type Server struct {
	echo    *echo.Echo
	cfg     *config.Config
	deps    Dependencies
	logger  *zap.SugaredLogger
	metrics *RequestMetrics
}

// NewServer creates a new API server
func NewServer(ctx context.Context, cfg *config.Config, deps Dependencies, logger *zap.SugaredLogger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}
	e.Server.ReadTimeout = time.Duration(cfg.Server.ReadTimeout) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.Server.WriteTimeout) * time.Second

	server := &Server{
		echo:   e,
		cfg:    cfg,
		deps:   deps,
		logger: logger,
		metrics: &RequestMetrics{
			RequestCount: make(map[string]int),
			DurationSum:  make(map[string]float64),
		},
	}

	server.configureMiddleware()
	server.configureRoutes(ctx)

	return server
}

// Echo exposes the router for tests
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// configureMiddleware sets up Echo middleware
func (s *Server) configureMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(s.metricsMiddleware)

	// structured access log
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"requestID", v.RequestID,
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				s.logger.Warnw("Request failed", append(fields, "error", v.Error)...)
				return nil
			}
			s.logger.Debugw("Request", fields...)
			return nil
		},
	}))
}

// metricsMiddleware records metrics for each request
func (s *Server) metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)

		duration := time.Since(start).Seconds()
		key := c.Request().Method + ":" + c.Path() + ":" + strconv.Itoa(c.Response().Status)

		s.metrics.mutex.Lock()
		s.metrics.RequestCount[key]++
		s.metrics.DurationSum[key] += duration
		s.metrics.mutex.Unlock()

		return err
	}
}

// commandLimiter throttles game commands per caller
func (s *Server) commandLimiter() echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:  rate.Limit(s.cfg.Game.CommandRate),
		Burst: s.cfg.Game.CommandBurst,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if id, ok := c.Get(auth.ContextUserID).(string); ok && id != "" {
				return id, nil
			}
			return c.RealIP(), nil
		},
	})
}

// configureRoutes sets up API routes
func (s *Server) configureRoutes(ctx context.Context) {
	gameHandler := handlers.NewGameHandler(s.deps.Games, s.deps.Cache, s.logger)
	historyHandler := handlers.NewHistoryHandler(s.deps.History, s.logger)
	authHandler := handlers.NewAuthHandler(s.cfg, s.logger)
	wsHandler := handlers.NewWebSocketHandler(s.deps.Hub, s.deps.Games, s.logger, s.cfg)
	healthHandler := handlers.NewHealthHandler(s.deps.Mongo, s.deps.Cache, s.deps.Queue, s.deps.Games, s.logger)

	wsHandler.StartPingPongMonitor(ctx)

	apiV1 := s.echo.Group("/api/v1")

	// Authentication routes (no JWT required)
	authGroup := apiV1.Group("/auth")
	authGroup.POST("/guest", authHandler.Guest)

	jwtMiddleware := auth.JWTMiddleware(s.cfg.JWT.Secret)
	apiV1.GET("/auth/refresh-token", authHandler.RefreshToken, jwtMiddleware)

	// Game routes (JWT required)
	gameGroup := apiV1.Group("/games", jwtMiddleware)
	gameGroup.POST("", gameHandler.CreateGame)
	gameGroup.GET("", gameHandler.ListGames)
	gameGroup.GET("/:gameId", gameHandler.GetGameDetails)
	gameGroup.POST("/:gameId/join", gameHandler.JoinGame)
	gameGroup.POST("/:gameId/leave", gameHandler.LeaveGame)
	gameGroup.POST("/:gameId/restart", gameHandler.RestartGame)
	gameGroup.GET("/:gameId/state", gameHandler.GetGameState)
	gameGroup.GET("/:gameId/options", gameHandler.GetOptions)
	gameGroup.POST("/:gameId/actions", gameHandler.PerformAction, s.commandLimiter())

	// Finished games (JWT required)
	historyGroup := apiV1.Group("/history", jwtMiddleware)
	historyGroup.GET("", historyHandler.ListRecords)
	historyGroup.GET("/:gameId", historyHandler.GetRecord)
	historyGroup.GET("/:gameId/events", historyHandler.GetEvents)

	// WebSocket route; the handler reads the token from the query string
	s.echo.GET("/ws/:gameId", wsHandler.HandleConnection)

	// Health check endpoint (no auth required)
	s.echo.GET("/health", healthHandler.Check)

	s.echo.GET("/metrics", func(c echo.Context) error {
		s.metrics.mutex.RLock()
		defer s.metrics.mutex.RUnlock()
		return c.JSON(http.StatusOK, s.metrics)
	})
}

// Start starts the API server
func (s *Server) Start() error {
	address := s.cfg.Server.Host + ":" + strconv.Itoa(s.cfg.Server.Port)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the API server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
