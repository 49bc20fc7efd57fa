package runner

import (
	"errors"
)

var (
	// ErrScriptNotFound is returned when the referenced script does not
	// exist on disk. Dispatch fails before any process is spawned.
	ErrScriptNotFound = errors.New("script not found")

	// ErrTaskNotFound is returned for status queries on unknown task ids.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNotTracked is returned when no tracked process owns the given pid.
	ErrNotTracked = errors.New("pid not tracked")

	// ErrSpawn wraps OS-level failures to start a child process.
	ErrSpawn = errors.New("failed to start process")

	// ErrTermination wraps OS-level failures to kill a tracked process.
	ErrTermination = errors.New("failed to stop process")
)
