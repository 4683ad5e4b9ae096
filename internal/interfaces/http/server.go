// Package http provides the HTTP server adapter for the application
// layer. It is a thin layer that translates requests into service calls
// and service errors into status codes.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lmasson/course-management/internal/application/service"
	"github.com/lmasson/course-management/internal/auth"
	"github.com/lmasson/course-management/internal/domain/entity"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config         ServerConfig
	httpServer     *http.Server
	router         *gin.Engine
	courseService  service.CourseService
	absenceService service.AbsenceService
	userService    service.UserService
	tokens         *auth.TokenManager
	logger         Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	courseService service.CourseService,
	absenceService service.AbsenceService,
	userService service.UserService,
	tokens *auth.TokenManager,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:         config,
		router:         gin.New(),
		courseService:  courseService,
		absenceService: absenceService,
		userService:    userService,
		tokens:         tokens,
		logger:         logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(corsMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes. Role gates mirror the
// workflow: admins drive approvals, teachers propose and decide their
// own proposals, Direction reads approved records.
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.courseService, s.absenceService, s.userService, s.tokens, s.logger)

	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", handlers.Login)
		authGroup.POST("/register", handlers.Register)
		authGroup.POST("/complete-registration", handlers.CompleteRegistration)
	}

	// Authenticated course catalogue, readable by every role.
	courses := api.Group("/courses", s.authRequired())
	{
		courses.GET("", handlers.ListCourses)
		courses.GET("/:id", handlers.GetCourse)
	}

	admin := api.Group("/admin", s.authRequired(), requireRole(entity.RoleAdmin))
	{
		admin.POST("/courses", handlers.SaveCourse)
		admin.POST("/courses/propose-makeup", handlers.ProposeMakeupByAdmin)
		admin.PUT("/courses/:id/status", handlers.UpdateCourseStatus)
		admin.POST("/courses/:id/approve", handlers.ApproveCourseByAdmin)
		admin.DELETE("/courses/:id", handlers.DeleteCourse)

		admin.GET("/absence-requests", handlers.ListAbsenceRequests)
		admin.PUT("/absence-requests/:id/status", handlers.UpdateAbsenceStatus)
		admin.POST("/absence-requests/:id/approve", handlers.ApproveAbsence)

		admin.POST("/invite-teacher", handlers.InviteTeacher)

		admin.GET("/export/courses", handlers.ExportCourses)
		admin.GET("/export/absence-requests", handlers.ExportAbsenceRequests)
	}

	teacher := api.Group("/teacher", s.authRequired(), requireRole(entity.RoleTeacher))
	{
		teacher.GET("/courses", handlers.ListOwnCourses)
		teacher.POST("/courses/propose-makeup", handlers.ProposeMakeupByTeacher)
		teacher.GET("/courses/pending-approval", handlers.ListPendingProposals)
		teacher.POST("/courses/:id/approve", handlers.ApproveCourseByTeacher)
		teacher.POST("/courses/:id/reject", handlers.RejectCourseByTeacher)

		teacher.GET("/absence-requests", handlers.ListOwnAbsenceRequests)
		teacher.GET("/absence-requests/status/:status", handlers.ListOwnAbsenceRequestsByStatus)
		teacher.POST("/absence-requests", handlers.SubmitAbsenceRequest)
	}

	direction := api.Group("/direction", s.authRequired(), requireRole(entity.RoleDirection))
	{
		direction.GET("/courses/approved", handlers.ListApprovedCourses)
		direction.GET("/absence-requests/approved", handlers.ListApprovedAbsenceRequests)
		direction.GET("/teachers/:id/courses", handlers.ListCoursesByTeacher)
		direction.GET("/teachers/:id/absence-requests", handlers.ListAbsenceRequestsByTeacher)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// server fails
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
