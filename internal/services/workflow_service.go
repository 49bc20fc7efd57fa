package services

import (
	"context"

	"github.com/google/uuid"

	"rpa-agent/internal/logging"
	"rpa-agent/internal/repository"
	"rpa-agent/internal/runner"
	"rpa-agent/pkg/models"
)

// WorkflowService runs stored workflow definitions: it looks the workflow
// up, dispatches its script and flips the definition to running.
type WorkflowService struct {
	store      repository.WorkflowStore
	dispatcher *runner.Dispatcher
	history    *runner.History
	logger     *logging.Logger
}

// NewWorkflowService creates a WorkflowService.
func NewWorkflowService(store repository.WorkflowStore, dispatcher *runner.Dispatcher, history *runner.History, logger *logging.Logger) *WorkflowService {
	return &WorkflowService{
		store:      store,
		dispatcher: dispatcher,
		history:    history,
		logger:     logger,
	}
}

// Run dispatches the workflow's script under a fresh task id and marks the
// workflow as running with its last-run timestamp. The returned record
// carries the task id and the start timestamp of the spawned process.
func (s *WorkflowService) Run(ctx context.Context, workflowID string) (models.ProcessRecord, *models.Workflow, error) {
	wf, err := s.store.Get(ctx, workflowID)
	if err != nil {
		return models.ProcessRecord{}, nil, err
	}

	taskID := uuid.New().String()
	s.logger.Info("running workflow", "workflow", wf.Name, "workflow_id", workflowID, "task_id", taskID)

	rec, _, err := s.dispatcher.Dispatch(ctx, wf.ScriptPath, taskID, true)
	if err != nil {
		return models.ProcessRecord{}, nil, err
	}

	if err := s.store.MarkRunning(ctx, workflowID, rec.StartedAt); err != nil {
		// The process is already off and running; a lost status flip is
		// logged but does not fail the dispatch.
		s.logger.Warn("failed to mark workflow running", "workflow_id", workflowID, "error", err)
	}

	s.history.Append(models.TaskHistoryEntry{
		TaskID:     taskID,
		TaskName:   wf.Name,
		ScriptPath: wf.ScriptPath,
		Parameters: wf.Parameters,
		StartedAt:  rec.StartedAt,
	})

	return rec, wf, nil
}
