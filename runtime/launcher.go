package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"syscall"

	"github.com/ashetkar/scalarun/iox"
	"github.com/ashetkar/scalarun/types"
)

// ProcessResult represents the result of a completed runner process.
type ProcessResult struct {
	// ExitCode is the process exit code. Nonzero is not an error here;
	// interpretation belongs to EvaluateOutcome.
	ExitCode int
}

// LaunchError indicates the runner process could not be started at all:
// missing binary, permission denied, invalid working directory. It is
// always propagated unmodified and never downgraded by IgnoreFailures.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("cannot launch runner %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// IsLaunchError returns true if the error is or wraps a LaunchError.
// Callers use this to distinguish launch failures from test failures.
func IsLaunchError(err error) bool {
	var launchErr *LaunchError
	return errors.As(err, &launchErr)
}

// Launcher abstracts runner process execution for testing.
type Launcher interface {
	Run(ctx context.Context, args []string) (*ProcessResult, error)
}

// LauncherFactory creates a Launcher. Used for test injection.
type LauncherFactory func(cfg *types.RunConfig) Launcher

// ProcessLauncher executes the ScalaTest runner as a JVM subprocess:
//
//	<java> [jvmArgs...] -cp <classpath> org.scalatest.tools.Runner [args...]
//
// in the configured working directory, with EXACTLY the configured
// environment. One subprocess per invocation; the calling goroutine
// blocks until the subprocess exits.
type ProcessLauncher struct {
	config *types.RunConfig
}

// NewProcessLauncher creates a launcher for one invocation.
func NewProcessLauncher(cfg *types.RunConfig) Launcher {
	return &ProcessLauncher{config: cfg}
}

// Run spawns the runner with the built argument list and waits for it.
// A nonzero exit code is returned in ProcessResult, never as an error.
// Output and error sinks, when configured, are opened truncate-and-create
// before launch and closed on every exit path before Run returns, so
// their content is durable when failure messages are composed.
func (l *ProcessLauncher) Run(ctx context.Context, args []string) (*ProcessResult, error) {
	java := l.config.Java()

	argv := make([]string, 0, len(l.config.JVMArgs)+3+len(args))
	argv = append(argv, l.config.JVMArgs...)
	argv = append(argv, "-cp", strings.Join(l.config.Classpath, string(os.PathListSeparator)))
	argv = append(argv, types.RunnerMainClass)
	argv = append(argv, args...)

	cmd := exec.CommandContext(ctx, java, argv...)
	cmd.Dir = l.config.WorkingDir
	cmd.Env = buildEnv(l.config.Environment)

	stdout, stderr, cleanup, err := l.openSinks()
	if err != nil {
		return nil, err
	}
	defer cleanup()
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Path: java, Err: err}
	}

	// Wait never raises merely because the exit code is nonzero.
	err = cmd.Wait()
	result := &ProcessResult{}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("runner wait failed: %w", err)
		}
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			result.ExitCode = status.ExitStatus()
		} else {
			result.ExitCode = -1
		}
	}

	return result, nil
}

// openSinks opens the configured stdout/stderr file sinks. When a path
// is empty the runner inherits the corresponding stream. The returned
// cleanup closes whatever was opened and is safe on partial failure.
func (l *ProcessLauncher) openSinks() (stdout, stderr *os.File, cleanup func(), err error) {
	stdout, stderr = os.Stdout, os.Stderr
	var opened []*os.File
	cleanup = func() {
		for _, f := range opened {
			iox.DiscardClose(f)
		}
	}

	if path := l.config.OutputFilePath; path != "" {
		f, createErr := os.Create(path)
		if createErr != nil {
			return nil, nil, func() {}, fmt.Errorf("open output sink %s: %w", path, createErr)
		}
		opened = append(opened, f)
		stdout = f
	}

	if path := l.config.ErrorFilePath; path != "" {
		f, createErr := os.Create(path)
		if createErr != nil {
			cleanup()
			return nil, nil, func() {}, fmt.Errorf("open error sink %s: %w", path, createErr)
		}
		opened = append(opened, f)
		stderr = f
	}

	return stdout, stderr, cleanup, nil
}

// buildEnv converts the environment map to the exec form. The slice is
// always non-nil: a nil cmd.Env would inherit the parent environment,
// and the runner must see only what the configuration supplies.
// Entries are sorted so the launch is reproducible.
func buildEnv(env map[string]string) []string {
	entries := make([]string, 0, len(env))
	for name, value := range env {
		entries = append(entries, name+"="+value)
	}
	sort.Strings(entries)
	return entries
}
