// Package httpapi exposes the wedding services over HTTP using gin.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/thabitrevor/wedding/internal/logging"
	"github.com/thabitrevor/wedding/internal/server/models"
	"github.com/thabitrevor/wedding/internal/server/notify"
	"github.com/thabitrevor/wedding/internal/server/services"
)

// RSVPs is the RSVP workflow as seen by the handlers.
type RSVPs interface {
	Submit(ctx context.Context, in services.RSVPInput) (*services.Confirmation, error)
	List(ctx context.Context) ([]*models.RSVP, error)
	Stats(ctx context.Context) (*models.RSVPStats, error)
}

// Photos is the photo wall as seen by the handlers.
type Photos interface {
	Upload(ctx context.Context, up services.PhotoUpload) (*models.Photo, error)
	ListApproved(ctx context.Context) ([]*services.ApprovedPhoto, error)
}

// Admin authenticates the couple.
type Admin interface {
	Login(ctx context.Context, password string) (string, error)
	Authorize(token string) error
}

// Mailer renders and sends one confirmation, returning the provider id.
type Mailer interface {
	Send(ctx context.Context, m notify.Message) (string, error)
}

// Deps bundles what the handlers call into.
type Deps struct {
	RSVPs  RSVPs
	Photos Photos
	Admin  Admin
	Mailer Mailer
}

// Server is the public HTTP API.
type Server struct {
	address        string
	allowedOrigins []string
	maxUpload      int64
	deps           Deps
	logger         logging.Logger
	engine         *gin.Engine
}

// Options configures NewServer.
type Options struct {
	Address        string
	AllowedOrigins []string
	// MaxUpload bounds multipart request bodies.
	MaxUpload int64
}

func NewServer(opts Options, l logging.Logger, deps Deps) *Server {
	s := &Server{
		address:        opts.Address,
		allowedOrigins: opts.AllowedOrigins,
		maxUpload:      opts.MaxUpload,
		deps:           deps,
		logger:         l.With("module", "http_server"),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.accessLog())
	if len(s.allowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  s.allowedOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Authorization", "Content-Type", "X-Client-Info", "Apikey"},
			ExposeHeaders: []string{"X-Request-ID"},
			MaxAge:        12 * time.Hour,
		}))
	}

	r.GET("/healthz", s.health)
	r.POST("/send-rsvp-email", s.sendRSVPEmail)
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	api := r.Group("/api")
	{
		api.POST("/rsvps", s.submitRSVP)
		api.GET("/photos", s.listPhotos)
		api.POST("/photos", s.uploadPhoto)
		api.POST("/admin/login", s.adminLogin)
	}

	admin := api.Group("/admin", s.adminOnly())
	{
		admin.GET("/rsvps", s.listRSVPs)
		admin.GET("/rsvps/stats", s.rsvpStats)
	}

	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
