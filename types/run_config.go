// Package types defines core domain types for the scalarun runtime.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"errors"
	"fmt"
)

// RunnerMainClass is the JVM entry point of the ScalaTest runner.
// The runner is always invoked through this class; it is not configurable.
const RunnerMainClass = "org.scalatest.tools.Runner"

// DefaultJavaExecutable is used when RunConfig.JavaExecutable is empty.
const DefaultJavaExecutable = "java"

// ReportSettings describes which runner reports are requested and where
// their entry points live.
type ReportSettings struct {
	// JUnitXMLEnabled requests a JUnit-style XML report.
	JUnitXMLEnabled bool
	// JUnitXMLEntryPoint is the file where the XML report begins.
	JUnitXMLEntryPoint string
	// HTMLEnabled requests an HTML report.
	HTMLEnabled bool
	// HTMLEntryPoint is the file where the HTML report begins.
	// Used to build the human-facing link on failure.
	HTMLEntryPoint string
	// HTMLDestinationDir is the directory the runner writes the HTML
	// report into. Created recursively before launch if missing.
	HTMLDestinationDir string
}

// RunConfig is the immutable description of one runner invocation.
// It is constructed once per invocation and must not be mutated after
// being handed to the runtime; classpath, JVM flags, and environment are
// treated as a snapshot at launch time.
type RunConfig struct {
	// JavaExecutable is the JVM launcher binary. Empty means DefaultJavaExecutable.
	JavaExecutable string
	// Classpath entries, passed through unmodified in order.
	Classpath []string
	// JVMArgs are JVM-level flags, passed through unmodified in order.
	JVMArgs []string
	// Environment is the COMPLETE child environment. The runner inherits
	// nothing from the calling process beyond what is listed here.
	Environment map[string]string
	// WorkingDir is the working directory the runner starts in.
	WorkingDir string

	// MaxParallelForks requests concurrent worker forks inside the runner.
	// 0 means "use the runner's own default", not "zero workers".
	MaxParallelForks int
	// ColorOutput controls ANSI color in the runner's standard output.
	ColorOutput bool

	// TestRoot is the directory containing compiled tests (runpath).
	TestRoot string
	// IncludePatterns are test-name substring filters, in order.
	IncludePatterns []string
	// TagIncludes and TagExcludes select tests by tag, in order.
	TagIncludes []string
	TagExcludes []string
	// Suites are fully qualified suite class names. Duplicates collapse
	// to a set before argument emission.
	Suites []string
	// ConfigEntries are runner config map entries (-Dkey=value). Values
	// may be strings or numbers; emission order is sorted by key.
	ConfigEntries map[string]any

	// ResultFilePath receives the runner's machine-readable result file.
	// Empty means disabled.
	ResultFilePath string
	// OutputFilePath and ErrorFilePath redirect the runner's stdout and
	// stderr into truncate-and-create file sinks. Empty means inherit.
	OutputFilePath string
	ErrorFilePath  string

	Reports ReportSettings

	// IgnoreFailures downgrades a failing run from fatal to a warning.
	// It never affects launch failures.
	IgnoreFailures bool
}

// Java returns the configured JVM launcher, falling back to the default.
func (c *RunConfig) Java() string {
	if c.JavaExecutable == "" {
		return DefaultJavaExecutable
	}
	return c.JavaExecutable
}

// Validate checks the configuration once at construction time.
// Unset/empty paths and collections are valid ("feature disabled");
// only structurally impossible values are rejected.
func (c *RunConfig) Validate() error {
	if c.TestRoot == "" {
		return errors.New("test root is required")
	}
	if c.MaxParallelForks < 0 {
		return fmt.Errorf("max parallel forks must be >= 0, got %d", c.MaxParallelForks)
	}
	if c.Reports.JUnitXMLEnabled && c.Reports.JUnitXMLEntryPoint == "" {
		return errors.New("junit xml report enabled but entry point is empty")
	}
	if c.Reports.HTMLEnabled && c.Reports.HTMLDestinationDir == "" {
		return errors.New("html report enabled but destination dir is empty")
	}
	return nil
}
