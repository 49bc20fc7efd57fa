package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rpa-agent/pkg/models"
)

// PostgresWorkflowStore is a PostgreSQL implementation of the WorkflowStore
// interface, for deployments that need workflow definitions to survive
// restarts. Process records stay in memory regardless of the store driver.
type PostgresWorkflowStore struct {
	db *pgxpool.Pool
}

// NewPostgresWorkflowStore creates a new PostgresWorkflowStore.
func NewPostgresWorkflowStore(db *pgxpool.Pool) *PostgresWorkflowStore {
	return &PostgresWorkflowStore{db: db}
}

// EnsureSchema creates the workflows table if it does not exist.
func (s *PostgresWorkflowStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS workflows (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		script_path TEXT NOT NULL DEFAULT '',
		parameters JSONB NOT NULL DEFAULT '{}',
		tags TEXT[] NOT NULL DEFAULT '{}',
		status TEXT NOT NULL DEFAULT 'idle',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		last_run TIMESTAMPTZ
	)`)
	return err
}

// Create stores a new workflow definition.
func (s *PostgresWorkflowStore) Create(ctx context.Context, wf *models.Workflow) error {
	name := strings.TrimSpace(wf.Name)
	if name == "" {
		return &ValidationError{Field: "name", Message: "workflow name cannot be empty"}
	}

	now := time.Now()
	wf.ID = uuid.New().String()
	wf.Name = name
	wf.Status = models.WorkflowStatusIdle
	wf.CreatedAt = now
	wf.UpdatedAt = now
	if wf.Parameters == nil {
		wf.Parameters = map[string]interface{}{}
	}
	if wf.Tags == nil {
		wf.Tags = []string{}
	}

	params, err := json.Marshal(wf.Parameters)
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO workflows (id, name, description, script_path, parameters, tags, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		wf.ID, wf.Name, wf.Description, wf.ScriptPath, params, wf.Tags, wf.Status, wf.CreatedAt, wf.UpdatedAt)
	return err
}

// Get retrieves a workflow by its id.
func (s *PostgresWorkflowStore) Get(ctx context.Context, id string) (*models.Workflow, error) {
	return scanWorkflow(s.db.QueryRow(ctx,
		`SELECT id, name, description, script_path, parameters, tags, status, created_at, updated_at, last_run
		 FROM workflows WHERE id = $1`, id))
}

// List returns all stored workflows.
func (s *PostgresWorkflowStore) List(ctx context.Context) ([]*models.Workflow, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, description, script_path, parameters, tags, status, created_at, updated_at, last_run
		 FROM workflows ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workflows []*models.Workflow
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, wf)
	}
	return workflows, rows.Err()
}

// Update applies a partial update inside a transaction so concurrent
// updates do not clobber each other's fields.
func (s *PostgresWorkflowStore) Update(ctx context.Context, id string, upd models.WorkflowUpdate) (*models.Workflow, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	wf, err := scanWorkflow(tx.QueryRow(ctx,
		`SELECT id, name, description, script_path, parameters, tags, status, created_at, updated_at, last_run
		 FROM workflows WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, &ValidationError{Field: "name", Message: "workflow name cannot be empty"}
		}
		wf.Name = name
	}
	if upd.Description != nil {
		wf.Description = *upd.Description
	}
	if upd.ScriptPath != nil {
		wf.ScriptPath = *upd.ScriptPath
	}
	if upd.Parameters != nil {
		wf.Parameters = *upd.Parameters
	}
	if upd.Tags != nil {
		wf.Tags = *upd.Tags
	}
	wf.UpdatedAt = time.Now()

	params, err := json.Marshal(wf.Parameters)
	if err != nil {
		return nil, fmt.Errorf("encode parameters: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE workflows SET name = $1, description = $2, script_path = $3, parameters = $4, tags = $5, updated_at = $6
		 WHERE id = $7`,
		wf.Name, wf.Description, wf.ScriptPath, params, wf.Tags, wf.UpdatedAt, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return wf, nil
}

// Delete removes a workflow by its id.
func (s *PostgresWorkflowStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkRunning sets the running status and the last-run timestamp.
func (s *PostgresWorkflowStore) MarkRunning(ctx context.Context, id string, at time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE workflows SET status = $1, last_run = $2 WHERE id = $3`,
		models.WorkflowStatusRunning, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored workflows.
func (s *PostgresWorkflowStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM workflows`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var wf models.Workflow
	var params []byte
	err := row.Scan(&wf.ID, &wf.Name, &wf.Description, &wf.ScriptPath, &params,
		&wf.Tags, &wf.Status, &wf.CreatedAt, &wf.UpdatedAt, &wf.LastRun)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(params, &wf.Parameters); err != nil {
		return nil, fmt.Errorf("decode parameters: %w", err)
	}
	return &wf, nil
}
