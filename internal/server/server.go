package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"StockTracker/internal/auth"
	"StockTracker/internal/collector"
	"StockTracker/internal/dashboard"
	"StockTracker/internal/model"
	"StockTracker/internal/notifier"
	"StockTracker/internal/ticker"
)

// CookieName carries the session token issued on OTP verification.
const CookieName = "tracker_session"

// Server exposes the dashboard session over a JSON API.
type Server struct {
	Session *dashboard.Session
	engine  *gin.Engine
	http    *http.Server

	// token binds the signed-in session to the client that verified it
	tokenMu sync.RWMutex
	token   string
}

// NewServer creates the gin engine and registers routes.
func NewServer(session *dashboard.Session, debug bool) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{Session: session, engine: gin.New()}
	s.engine.Use(gin.Recovery(), requestLogger())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)
	api.GET("/config", s.getConfig)

	api.GET("/auth/status", s.getAuthStatus)
	api.POST("/auth/otp", s.postOtp)
	api.POST("/auth/verify", s.postVerify)
	api.POST("/auth/logout", s.postLogout)

	gated := api.Group("", s.requireSession)
	gated.GET("/lookup", s.getLookup)
	gated.GET("/watchlist", s.getWatchlist)
	gated.POST("/watchlist", s.postWatchlist)
	gated.DELETE("/watchlist", s.deleteWatchlist)
	gated.GET("/watchlist/refresh", s.getWatchlistRefresh)
	gated.GET("/history", s.getHistory)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Start serves on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("[INFO] http server listening on %s", addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	log.Println("[INFO] http server shutting down")
	return s.http.Shutdown(ctx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("[INFO] %s %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// ---------------------------------------------------------------------------
// Session token
// ---------------------------------------------------------------------------

func (s *Server) issueToken() string {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()
	s.token = uuid.NewString()
	return s.token
}

func (s *Server) revokeToken() {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()
	s.token = ""
}

func (s *Server) validToken(c *gin.Context) bool {
	presented, _ := c.Cookie(CookieName)
	if presented == "" {
		presented = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	s.tokenMu.RLock()
	defer s.tokenMu.RUnlock()
	return s.token != "" && subtle.ConstantTimeCompare([]byte(presented), []byte(s.token)) == 1
}

func (s *Server) requireSession(c *gin.Context) {
	if !s.validToken(c) || !s.Session.Authenticated() {
		writeError(c, dashboard.ErrUnauthenticated)
		c.Abort()
		return
	}
	c.Next()
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"email_configured": s.Session.Status().Configured,
		"time":             time.Now().Unix(),
	})
}

func (s *Server) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"regions":           []model.Region{model.RegionIndia, model.RegionUSA},
		"default_region":    s.Session.Region,
		"default_symbol":    ticker.DefaultSymbol(s.Session.Region),
		"timeframes":        model.Timeframes,
		"default_timeframe": model.DefaultTimeframe,
		"quick_picks":       ticker.QuickPicks,
		"disclaimer":        notifier.Disclaimer,
	})
}

func (s *Server) getAuthStatus(c *gin.Context) {
	st := s.Session.Status()
	if !st.Configured {
		c.JSON(http.StatusOK, gin.H{"status": st, "setup": notifier.SetupInstructions()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": st})
}

type otpRequest struct {
	Email string `json:"email"`
}

func (s *Server) postOtp(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.Session.RequestOtp(req.Email); err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			// SMTP relay failure, passed through as is
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent to " + strings.TrimSpace(req.Email), "status": s.Session.Status()})
}

type verifyRequest struct {
	Code string `json:"code"`
}

func (s *Server) postVerify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.Session.VerifyOtp(req.Code); err != nil {
		writeError(c, err)
		return
	}
	token := s.issueToken()
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, token, 0, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "OTP verified! You are now logged in.", "token": token, "status": s.Session.Status()})
}

func (s *Server) postLogout(c *gin.Context) {
	s.Session.Logout()
	s.revokeToken()
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": s.Session.Status()})
}

func (s *Server) getLookup(c *gin.Context) {
	region := s.Session.Region
	if v := c.Query("region"); v != "" {
		r, err := model.ParseRegion(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		region = r
	}
	tf, err := model.ParseTimeframe(c.Query("timeframe"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	l, err := s.Session.Lookup(c.Request.Context(), c.Query("symbol"), region, tf)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"headline":   notifier.FormatHeadline(l),
		"lookup":     l,
		"disclaimer": notifier.Disclaimer,
	})
}

func (s *Server) getWatchlist(c *gin.Context) {
	symbols, err := s.Session.WatchSymbols()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbols": symbols})
}

type watchRequest struct {
	Symbol string `json:"symbol"`
}

func (s *Server) postWatchlist(c *gin.Context) {
	var req watchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	added, err := s.Session.AddToWatchlist(req.Symbol)
	if err != nil {
		writeError(c, err)
		return
	}
	symbols, _ := s.Session.WatchSymbols()
	c.JSON(http.StatusOK, gin.H{"added": added, "symbols": symbols})
}

func (s *Server) deleteWatchlist(c *gin.Context) {
	if err := s.Session.ClearWatchlist(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbols": []string{}})
}

func (s *Server) getWatchlistRefresh(c *gin.Context) {
	rows, err := s.Session.RefreshWatchlist(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	resp := gin.H{"rows": rows}
	if len(rows) == 0 {
		resp["message"] = notifier.NoWatchData
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	recs, err := s.Session.History(limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lookups": recs})
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

// statusFor maps core errors to HTTP status codes.
func statusFor(err error) int {
	var te *collector.TransportError
	switch {
	case errors.Is(err, collector.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &te):
		return http.StatusBadGateway
	case errors.Is(err, auth.ErrConfigMissing):
		return http.StatusServiceUnavailable
	case errors.Is(err, dashboard.ErrUnauthenticated), errors.Is(err, auth.ErrMismatch):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrExpired):
		return http.StatusGone
	case errors.Is(err, auth.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, auth.ErrNoActiveRequest), errors.Is(err, auth.ErrEmptyEmail), errors.Is(err, dashboard.ErrEmptySymbol):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": dashboard.ErrorText(err)}
	if errors.Is(err, auth.ErrConfigMissing) {
		body["error"] = err.Error()
		body["setup"] = notifier.SetupInstructions()
	}
	c.JSON(status, body)
}
