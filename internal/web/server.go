// Package web provides the HTTP JSON API for the listing platform.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/evcraddock/realty/internal/account"
	"github.com/evcraddock/realty/internal/auth"
	"github.com/evcraddock/realty/internal/inquiry"
	"github.com/evcraddock/realty/internal/logging"
	"github.com/evcraddock/realty/internal/message"
	"github.com/evcraddock/realty/internal/models"
	"github.com/evcraddock/realty/internal/property"
	"github.com/evcraddock/realty/internal/storage"
)

// shutdownTimeout bounds how long in-flight requests may run after the
// server context is cancelled.
const shutdownTimeout = 10 * time.Second

// maxMultipartMemory is how much of an upload is buffered in memory.
const maxMultipartMemory = 32 << 20

// Options configures the server beyond its dependencies.
type Options struct {
	CORSOrigins []string
	LoginRate   float64 // attempts per minute per client
	LoginBurst  int
}

// Server is the JSON API server.
type Server struct {
	properties *property.Service
	inquiries  *inquiry.Service
	messages   *message.Service
	users      *account.Service
	tokens     *auth.TokenIssuer
	limiter    *auth.LoginLimiter
	engine     *gin.Engine
}

// NewServer wires repositories and services over db and builds the router.
// store may be nil, in which case image uploads fail.
func NewServer(db *gorm.DB, store storage.Store, tokens *auth.TokenIssuer, opts Options) *Server {
	registerValidation()

	s := &Server{
		properties: property.NewService(property.NewRepository(db), store),
		inquiries:  inquiry.NewService(inquiry.NewRepository(db)),
		messages:   message.NewService(message.NewRepository(db)),
		users:      account.NewService(account.NewRepository(db)),
		tokens:     tokens,
		limiter:    auth.NewLoginLimiter(opts.LoginRate, opts.LoginBurst),
	}

	r := gin.New()
	r.MaxMultipartMemory = maxMultipartMemory
	r.Use(
		gin.CustomRecovery(recovered),
		logging.RequestLogger(),
		cors(opts.CORSOrigins),
		auth.Authenticate(tokens),
	)

	if fs, ok := store.(*storage.FileStore); ok && strings.HasPrefix(fs.BaseURL(), "/") {
		r.Static(fs.BaseURL(), fs.Dir())
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.routes(r.Group("/api"))

	s.engine = r
	return s
}

// Users exposes the account service, for seeding at startup.
func (s *Server) Users() *account.Service {
	return s.users
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *Server) routes(api *gin.RouterGroup) {
	staff := auth.RequireRole(models.RoleAdmin, models.RoleAgent)
	admin := auth.RequireRole(models.RoleAdmin)
	authed := auth.RequireAuth()

	a := api.Group("/auth")
	a.POST("/register", s.handleRegister)
	a.POST("/login", s.limiter.Middleware(), s.handleLogin)
	a.GET("/me", authed, s.handleMe)

	p := api.Group("/properties")
	p.GET("", s.handleSearchProperties)
	p.GET("/featured", s.handleFeaturedProperties)
	p.GET("/statistics", s.handlePropertyStatistics)
	p.GET("/mine", staff, s.handleMyProperties)
	p.GET("/:id", s.handleGetProperty)
	p.POST("", staff, s.handleCreateProperty)
	p.PUT("/:id", staff, s.handleUpdateProperty)
	p.PUT("/:id/status", staff, s.handleUpdatePropertyStatus)
	p.DELETE("/:id", admin, s.handleDeleteProperty)
	p.POST("/:id/images", staff, s.handleUploadImages)
	p.PUT("/:id/images/:imageId/primary", staff, s.handleSetPrimaryImage)
	p.DELETE("/:id/images/:imageId", staff, s.handleDeleteImage)

	i := api.Group("/inquiries", authed)
	i.GET("", staff, s.handleListInquiries)
	i.GET("/mine", s.handleMyInquiries)
	i.GET("/pending-count", admin, s.handlePendingInquiryCount)
	i.GET("/:id", s.handleGetInquiry)
	i.POST("", s.handleCreateInquiry)
	i.PUT("/:id/status", s.handleUpdateInquiryStatus)
	i.DELETE("/:id", admin, s.handleDeleteInquiry)

	m := api.Group("/messages", authed)
	m.GET("/inbox", s.handleInbox)
	m.GET("/sent", s.handleSent)
	m.GET("/unread-count", s.handleUnreadCount)
	m.GET("/:id", s.handleGetMessage)
	m.POST("", s.handleSendMessage)
	m.PUT("/:id/read", s.handleMarkMessageRead)
	m.DELETE("/:id", s.handleDeleteMessage)

	u := api.Group("/users", admin)
	u.GET("", s.handleListUsers)
	u.GET("/recent", s.handleRecentUsers)
	u.GET("/statistics", s.handleUserStatistics)
	u.GET("/:id", s.handleGetUser)
	u.POST("", s.handleCreateUser)
	u.PUT("/:id", s.handleUpdateUser)
	u.DELETE("/:id", s.handleDeleteUser)
	u.PUT("/:id/status", s.handleSetUserActive)
	u.PUT("/:id/role", s.handleSetUserRole)
}

func recovered(c *gin.Context, err any) {
	slog.Error("panic serving request", "path", c.Request.URL.Path, "panic", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
