package runner

import (
	"fmt"

	"rpa-agent/internal/logging"
	"rpa-agent/pkg/models"
)

// Controller terminates tracked processes by OS pid, platform-appropriately.
// Termination is best-effort and immediate; the child is not asked to wind
// down gracefully.
type Controller struct {
	registry *Registry
	logger   *logging.Logger
}

// NewController creates a Controller over the given registry.
func NewController(registry *Registry, logger *logging.Logger) *Controller {
	return &Controller{registry: registry, logger: logger}
}

// Stop kills the process owning the given pid, marks its record stopped and
// removes it from the registry, returning the stopped record.
//
// Only running records are stoppable. A terminal record no longer owns its
// pid: it is zero after a spawn failure, and the OS may have recycled it to
// an unrelated process (pid 0 would signal our own process group).
func (c *Controller) Stop(pid int) (models.ProcessRecord, error) {
	rec, ok := c.registry.FindByPID(pid)
	if !ok || rec.Status != models.ProcessStatusRunning {
		return models.ProcessRecord{}, fmt.Errorf("%w: %d", ErrNotTracked, pid)
	}

	if err := killProcess(pid); err != nil {
		return models.ProcessRecord{}, fmt.Errorf("%w: %v", ErrTermination, err)
	}

	if stopped, ok := c.registry.MarkStopped(rec.TaskID); ok {
		rec = stopped
	}
	c.registry.Remove(rec.TaskID)

	c.logger.Info("process stopped", "pid", pid, "task_id", rec.TaskID, "script", rec.ScriptPath)
	return rec, nil
}
