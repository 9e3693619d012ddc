package server

import (
	"context"

	"jamdash/internal/progress"
	"jamdash/internal/services/collections"
	"jamdash/internal/services/merge"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Server is the HTTP boundary of the dashboard backend
type Server struct {
	echo        *echo.Echo
	collections *collections.Service
	merge       *merge.Service
	hub         *progress.Hub
}

// New builds the echo server and registers all routes
func New(collectionsSvc *collections.Service, mergeSvc *merge.Service, hub *progress.Hub) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	// The dashboard frontend is served from another origin.
	e.Use(middleware.CORS())

	s := &Server{
		echo:        e,
		collections: collectionsSvc,
		merge:       mergeSvc,
		hub:         hub,
	}

	e.GET("/companies", s.handleListCompanies)
	e.GET("/collections", s.handleListCollections)
	e.GET("/collections/:id", s.handleGetCollection)

	ua := e.Group("/user_actions")
	ua.POST("/add-companies-to-collection", s.handleAddCompanies)
	ua.POST("/remove-companies-from-collection", s.handleRemoveCompanies)
	ua.POST("/like-company", s.handleLikeCompany)
	ua.POST("/unlike-company", s.handleUnlikeCompany)
	ua.POST("/add-collection-to-collection", s.handleRequestMerge)
	ua.GET("/task_in_progress", s.handleTaskInProgress)

	e.GET("/ws/progress/:task_id", s.handleProgressStream)

	return s
}

// Start begins serving on addr and blocks until shutdown
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the routing tree, mainly for tests.
func (s *Server) Handler() *echo.Echo {
	return s.echo
}
