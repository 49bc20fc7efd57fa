// Package api contains the HTTP handlers for the RPA control plane.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"rpa-agent/internal/logging"
	"rpa-agent/internal/repository"
	"rpa-agent/internal/runner"
	"rpa-agent/internal/services"
	"rpa-agent/pkg/models"
)

const serviceVersion = "2.0.0"

// Server holds the dependencies for the API server.
type Server struct {
	store      repository.WorkflowStore
	tasks      *services.TaskService
	workflows  *services.WorkflowService
	reporter   *runner.StatusReporter
	controller *runner.Controller
	registry   *runner.Registry
	env        *runner.Environment
	history    *runner.History
	logger     *logging.Logger
}

// NewServer creates a new Server.
func NewServer(
	store repository.WorkflowStore,
	tasks *services.TaskService,
	workflows *services.WorkflowService,
	reporter *runner.StatusReporter,
	controller *runner.Controller,
	registry *runner.Registry,
	env *runner.Environment,
	history *runner.History,
	logger *logging.Logger,
) *Server {
	return &Server{
		store:      store,
		tasks:      tasks,
		workflows:  workflows,
		reporter:   reporter,
		controller: controller,
		registry:   registry,
		env:        env,
		history:    history,
		logger:     logger,
	}
}

// RegisterRoutes mounts all handlers on the echo instance. Middleware is
// applied to the /api group only; the root liveness endpoint and the legacy
// pid-addressed endpoints stay open for backward compatibility.
func (s *Server) RegisterRoutes(e *echo.Echo, apiMiddleware ...echo.MiddlewareFunc) {
	e.GET("/", s.Root)

	g := e.Group("/api", apiMiddleware...)
	g.GET("/health", s.Health)

	g.POST("/rpa/:task_name", s.ExecuteTask)
	g.GET("/rpa/tasks", s.ListTasks)
	g.GET("/rpa/status/:task_id", s.TaskStatus)
	g.GET("/rpa/history", s.TaskHistory)

	g.POST("/workflows", s.CreateWorkflow)
	g.GET("/workflows", s.ListWorkflows)
	g.GET("/workflows/:id", s.GetWorkflow)
	g.PUT("/workflows/:id", s.UpdateWorkflow)
	g.DELETE("/workflows/:id", s.DeleteWorkflow)
	g.POST("/workflows/:id/run", s.RunWorkflow)

	e.POST("/workflows/start", s.LegacyStart)
	e.GET("/workflows", s.LegacyListRunning)
	e.GET("/workflows/status/:pid", s.LegacyStatus)
	e.POST("/workflows/stop", s.LegacyStop)
}

// Root is the liveness endpoint.
func (s *Server) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "running",
		"message":   "RPA Workflow Control Plane",
		"version":   serviceVersion,
		"timestamp": time.Now(),
	})
}

// Health is the detailed health check.
func (s *Server) Health(c echo.Context) error {
	total, err := s.store.Count(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, models.HealthStatus{
		Status:           "healthy",
		ProjectRoot:      s.env.ProjectRoot(),
		Interpreter:      s.env.Interpreter(),
		LogsDirectory:    s.env.LogsDir(),
		ScriptsDirectory: s.env.ScriptsDir(),
		RunningProcesses: len(s.registry.Running()),
		TotalWorkflows:   total,
		Timestamp:        time.Now(),
	})
}

// httpError maps domain errors onto HTTP status codes. Validation problems
// and unknown ids (including missing scripts) are client errors; everything
// else is a server error.
func httpError(err error) error {
	var verr *repository.ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Error())
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, runner.ErrTaskNotFound),
		errors.Is(err, runner.ErrNotTracked),
		errors.Is(err, runner.ErrScriptNotFound),
		errors.Is(err, services.ErrUnknownTask):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
