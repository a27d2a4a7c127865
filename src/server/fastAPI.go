package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"market-buzz/src/interfaces"
	"market-buzz/src/logger"
	"market-buzz/src/models"
	"market-buzz/src/utils"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// FastAPIServer
// -----------------------------------------------------------------------------

type FastAPIServer struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	Service interfaces.ICorrelationService
	History *utils.MemoryManager
	engine  *gin.Engine
	http    *http.Server

	// WebSocket clients, owned by the hub goroutine
	clients     map[*Client]struct{}
	connections atomic.Int64
	broadcast   chan *models.MServerMessage // Strongly typed and Buffered Queue
	register    chan *Client
	unregister  chan *Client
	replies     chan clientReply
	done        chan struct{}
	stopped     atomic.Bool
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewFastAPIServer(cfg *models.MConfig, service interfaces.ICorrelationService, history *utils.MemoryManager, log *logger.Logger) *FastAPIServer {
	// Set Gin mode
	if !strings.EqualFold(cfg.LogLevel, "DEBUG") {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = logger.NewLogger(cfg, "Server")
	}
	if history == nil {
		history = utils.NewMemoryManager(cfg.Refresh.HistorySize)
	}

	s := &FastAPIServer{
		Config:  cfg,
		Logger:  log,
		Service: service,
		History: history,
		engine:  gin.New(),
		clients: make(map[*Client]struct{}),
		// Queue size of 256 absorbs a full refresh of every pair
		broadcast:  make(chan *models.MServerMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		replies:    make(chan clientReply),
		done:       make(chan struct{}),
	}

	s.engine.Use(gin.Recovery(), s.requestLogger())

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *FastAPIServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/correlation", s.getCorrelation)
	api.GET("/volatility", s.getVolatility)
	api.GET("/popularity", s.getPopularity)
	api.GET("/latest", s.getLatest)
	api.GET("/history", s.getHistory)
	api.GET("/config", s.getConfig)
	api.GET("/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------

// Handler exposes the router, mainly for tests.
func (s *FastAPIServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start runs the hub and blocks serving HTTP until Stop is called.
func (s *FastAPIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.handleWebsockets()

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// Stop shuts the HTTP server down and disconnects every websocket client.
func (s *FastAPIServer) Stop() error {
	if !s.stopped.CompareAndSwap(false, true) {
		return nil
	}
	close(s.done)

	if s.http == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *FastAPIServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.URL.Path == "/ws" {
			return
		}
		s.Logger.Debug("%s %s -> %d (%v)", c.Request.Method, c.Request.URL.RequestURI(),
			c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *FastAPIServer) getCorrelation(c *gin.Context) {
	rangeDays, ok := s.rangeParam(c)
	if !ok {
		return
	}

	req := models.MCorrelationRequest{
		Symbol:    queryOr(c, "symbol", firstOf(s.Config.Market.Symbols)),
		Subreddit: queryOr(c, "subreddit", firstOf(s.Config.Social.Subreddits)),
		RangeDays: rangeDays,
	}

	snapshot, err := s.Service.Run(c.Request.Context(), req)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getVolatility(c *gin.Context) {
	rangeDays, ok := s.rangeParam(c)
	if !ok {
		return
	}
	symbol := queryOr(c, "symbol", firstOf(s.Config.Market.Symbols))

	series, err := s.Service.VolatilitySeries(c.Request.Context(), symbol, rangeDays)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":     symbol,
		"range_days": rangeDays,
		"series":     series,
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getPopularity(c *gin.Context) {
	rangeDays, ok := s.rangeParam(c)
	if !ok {
		return
	}
	subreddit := queryOr(c, "subreddit", firstOf(s.Config.Social.Subreddits))

	series, err := s.Service.PopularitySeries(c.Request.Context(), subreddit, rangeDays)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subreddit":  subreddit,
		"range_days": rangeDays,
		"series":     series,
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getLatest(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"snapshots": s.History.Latest(),
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getHistory(c *gin.Context) {
	symbol := c.Query("symbol")
	subreddit := c.Query("subreddit")
	if symbol == "" || subreddit == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol and subreddit are required"})
		return
	}

	limit, ok := intParam(c, "limit", 0)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":    symbol,
		"subreddit": subreddit,
		"snapshots": s.History.History(models.PairKey(symbol, subreddit), limit),
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getConfig(c *gin.Context) {
	pairs := make([]models.MCorrelationRequest, 0, len(s.Config.Market.Symbols)*len(s.Config.Social.Subreddits))
	for _, sym := range s.Config.Market.Symbols {
		for _, sub := range s.Config.Social.Subreddits {
			pairs = append(pairs, models.MCorrelationRequest{Symbol: sym, Subreddit: sub, RangeDays: s.Config.Refresh.RangeDays})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"symbols":            s.Config.Market.Symbols,
		"subreddits":         s.Config.Social.Subreddits,
		"pairs":              pairs,
		"default_range_days": s.Config.Market.DefaultRangeDays,
		"max_range_days":     utils.MaxRangeDays,
		"refresh_seconds":    s.Config.Refresh.IntervalSeconds,
		"significance":       s.Config.Significance,
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getHealth(c *gin.Context) {
	var latest int64
	for _, snap := range s.History.Latest() {
		if ts := snap.GeneratedAt.Unix(); ts > latest {
			latest = ts
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"connections":   s.connections.Load(),
		"latest_update": latest,
	})
}

// Websocket plumbing lives in hub.go
