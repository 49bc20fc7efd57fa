package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Environment resolves the executable, directories and environment
// variables used to launch child workflow processes. Resolution is a pure
// function of the filesystem and is recomputed per call.
type Environment struct {
	projectRoot string
	scriptsDir  string
	logsDir     string
	interpreter string
}

// NewEnvironment creates an Environment rooted at projectRoot. The logs and
// scripts directories are created if missing.
func NewEnvironment(projectRoot, scriptsDir, logsDir, interpreter string) (*Environment, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}

	env := &Environment{
		projectRoot: root,
		scriptsDir:  joinRoot(root, scriptsDir),
		logsDir:     joinRoot(root, logsDir),
		interpreter: interpreter,
	}

	for _, dir := range []string{env.scriptsDir, env.logsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return env, nil
}

func joinRoot(root, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}

// ProjectRoot returns the absolute project root used as the child's
// working directory.
func (e *Environment) ProjectRoot() string { return e.projectRoot }

// ScriptsDir returns the absolute scripts directory.
func (e *Environment) ScriptsDir() string { return e.scriptsDir }

// LogsDir returns the absolute logs directory.
func (e *Environment) LogsDir() string { return e.logsDir }

// Interpreter returns the executable used to run scripts, preferring a
// project-local virtual environment binary when present.
func (e *Environment) Interpreter() string {
	venv := filepath.Join(e.projectRoot, ".venv", "bin", "python")
	if runtime.GOOS == "windows" {
		venv = filepath.Join(e.projectRoot, ".venv", "Scripts", "python.exe")
	}
	if info, err := os.Stat(venv); err == nil && !info.IsDir() {
		return venv
	}
	return e.interpreter
}

// ResolveScript resolves a script reference to an absolute path under the
// project root, failing with ErrScriptNotFound if it does not exist.
func (e *Environment) ResolveScript(scriptRef string) (string, error) {
	full := scriptRef
	if !filepath.IsAbs(full) {
		full = filepath.Join(e.projectRoot, scriptRef)
	}
	if _, err := os.Stat(full); err != nil {
		return "", fmt.Errorf("%w: %s", ErrScriptNotFound, scriptRef)
	}
	return full, nil
}

// LogFilePath builds a deterministic log file path from the task id and a
// start timestamp.
func (e *Environment) LogFilePath(taskID string, at time.Time) string {
	return filepath.Join(e.logsDir, fmt.Sprintf("task_%s_%s.log", taskID, at.Format("20060102_150405")))
}

// ChildEnv returns the environment for a child process: the parent
// environment plus UTF-8 text encoding and a non-interactive flag so the
// child must not block on interactive prompts.
func (e *Environment) ChildEnv() []string {
	return append(os.Environ(),
		"PYTHONIOENCODING=utf-8",
		"PYTHONUTF8=1",
		"NON_INTERACTIVE=true",
	)
}
