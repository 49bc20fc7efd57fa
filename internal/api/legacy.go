package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"rpa-agent/internal/runner"
	"rpa-agent/pkg/models"
)

// The legacy surface re-exposes dispatch, listing, status and stop through
// the older pid-keyed API shape. It shares the registry with the primary
// task-id-addressed API and holds no state of its own.

// LegacyStart dispatches a raw script path, bypassing the workflow store.
// (POST /workflows/start)
func (s *Server) LegacyStart(c echo.Context) error {
	var req models.LegacyStartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}

	run, err := s.tasks.DispatchScript(c.Request().Context(), req.ScriptPath)
	if err != nil {
		return httpError(err)
	}
	rec := run.Record

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"proc_id":  run.TaskID,
		"pid":      rec.PID,
		"log_file": rec.LogFile,
	})
}

// LegacyListRunning lists currently running processes, pid-addressed.
// (GET /workflows)
func (s *Server) LegacyListRunning(c echo.Context) error {
	running := []models.LegacyProcInfo{}
	for _, rec := range s.registry.Running() {
		running = append(running, models.LegacyProcInfo{
			PID:        rec.PID,
			WorkflowID: rec.TaskID,
			ScriptPath: rec.ScriptPath,
			StartedAt:  rec.StartedAt,
			LogFile:    rec.LogFile,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"running": running})
}

// LegacyStatus reports liveness and the log tail for a pid. An untracked
// pid is reported as not running rather than as an error; legacy clients
// poll this after stopping a process.
// (GET /workflows/status/:pid)
func (s *Server) LegacyStatus(c echo.Context) error {
	pid, err := strconv.Atoi(c.Param("pid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid pid: "+c.Param("pid"))
	}

	status, err := s.reporter.QueryByPID(pid, runner.LegacyLogTailLines)
	if err != nil {
		if errors.Is(err, runner.ErrNotTracked) {
			return c.JSON(http.StatusOK, map[string]interface{}{
				"running": false,
				"logs":    []string{"Process not found"},
			})
		}
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"running": status.Status == models.ProcessStatusRunning,
		"logs":    status.Logs,
	})
}

// LegacyStop terminates a tracked process by pid and removes it from the
// registry.
// (POST /workflows/stop)
func (s *Server) LegacyStop(c echo.Context) error {
	var req models.LegacyStopRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}

	stopped, err := s.controller.Stop(req.PID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"stopped": stopped,
	})
}
