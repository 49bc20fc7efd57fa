package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"rpa-agent/internal/runner"
	"rpa-agent/pkg/models"
)

// ExecuteTask dispatches a predefined task by name.
// (POST /api/rpa/:task_name)
func (s *Server) ExecuteTask(c echo.Context) error {
	taskName := c.Param("task_name")

	var req models.TaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	async := req.AsyncExecution == nil || *req.AsyncExecution

	run, err := s.tasks.Dispatch(c.Request().Context(), taskName, req.Parameters, async)
	if err != nil {
		return httpError(err)
	}

	resp := models.TaskResponse{
		TaskID:    run.TaskID,
		TaskName:  taskName,
		Status:    "started",
		Message:   fmt.Sprintf("Task '%s' started successfully", taskName),
		StartedAt: run.Record.StartedAt,
	}
	if run.Final != nil {
		resp.Status = string(run.Final.Status)
		resp.Message = fmt.Sprintf("Task '%s' completed", taskName)
		resp.LogFile = run.Final.LogFile
	}
	return c.JSON(http.StatusOK, resp)
}

// ListTasks returns the known task-name to script mappings.
// (GET /api/rpa/tasks)
func (s *Server) ListTasks(c echo.Context) error {
	catalog := s.tasks.Catalog()
	names := catalog.Names()

	endpoints := make([]string, 0, len(names))
	for _, name := range names {
		endpoints = append(endpoints, "/api/rpa/"+name)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"tasks":               catalog.All(),
		"total_count":         len(names),
		"available_endpoints": endpoints,
	})
}

// TaskStatus returns the status and log tail for a dispatched task.
// (GET /api/rpa/status/:task_id)
func (s *Server) TaskStatus(c echo.Context) error {
	status, err := s.reporter.Query(c.Param("task_id"), runner.TaskLogTailLines)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, status)
}

// TaskHistory returns the append-only audit log of dispatched tasks.
// (GET /api/rpa/history)
func (s *Server) TaskHistory(c echo.Context) error {
	entries := s.history.List()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"history":     entries,
		"total_count": len(entries),
	})
}
