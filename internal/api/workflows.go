package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"rpa-agent/pkg/models"
)

// CreateWorkflowRequest is the body for creating a workflow definition.
type CreateWorkflowRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	ScriptPath  string                 `json:"script_path"`
	Parameters  map[string]interface{} `json:"parameters"`
	Tags        []string               `json:"tags"`
}

// CreateWorkflow creates a new workflow definition.
// (POST /api/workflows)
func (s *Server) CreateWorkflow(c echo.Context) error {
	var req CreateWorkflowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}

	wf := &models.Workflow{
		Name:        req.Name,
		Description: req.Description,
		ScriptPath:  req.ScriptPath,
		Parameters:  req.Parameters,
		Tags:        req.Tags,
	}
	if err := s.store.Create(c.Request().Context(), wf); err != nil {
		return httpError(err)
	}

	s.logger.Info("workflow created", "name", wf.Name, "id", wf.ID)
	return c.JSON(http.StatusCreated, wf)
}

// ListWorkflows returns all workflow definitions.
// (GET /api/workflows)
func (s *Server) ListWorkflows(c echo.Context) error {
	workflows, err := s.store.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if workflows == nil {
		workflows = []*models.Workflow{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"workflows":   workflows,
		"total_count": len(workflows),
	})
}

// GetWorkflow returns a single workflow definition.
// (GET /api/workflows/:id)
func (s *Server) GetWorkflow(c echo.Context) error {
	wf, err := s.store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, wf)
}

// UpdateWorkflow applies a partial update; omitted fields keep their value.
// (PUT /api/workflows/:id)
func (s *Server) UpdateWorkflow(c echo.Context) error {
	var upd models.WorkflowUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}

	wf, err := s.store.Update(c.Request().Context(), c.Param("id"), upd)
	if err != nil {
		return httpError(err)
	}

	s.logger.Info("workflow updated", "name", wf.Name, "id", wf.ID)
	return c.JSON(http.StatusOK, wf)
}

// DeleteWorkflow removes a workflow definition.
// (DELETE /api/workflows/:id)
func (s *Server) DeleteWorkflow(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	wf, err := s.store.Get(ctx, id)
	if err != nil {
		return httpError(err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return httpError(err)
	}

	s.logger.Info("workflow deleted", "name", wf.Name, "id", id)
	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Workflow '%s' deleted successfully", wf.Name),
	})
}

// RunWorkflow dispatches a stored workflow's script.
// (POST /api/workflows/:id/run)
func (s *Server) RunWorkflow(c echo.Context) error {
	id := c.Param("id")

	rec, wf, err := s.workflows.Run(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     fmt.Sprintf("Workflow '%s' started successfully", wf.Name),
		"task_id":     rec.TaskID,
		"workflow_id": id,
		"started_at":  rec.StartedAt,
	})
}
