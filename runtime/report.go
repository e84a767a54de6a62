package runtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ashetkar/scalarun/metrics"
	"github.com/ashetkar/scalarun/types"
)

// RunReport is the structured JSON report written by --report.
// It records the invocation itself (command, exit status, outcome,
// artifact locations); it never contains parsed test results.
type RunReport struct {
	Label      string              `json:"label"`
	Outcome    types.OutcomeStatus `json:"outcome"`
	Message    string              `json:"message"`
	ExitCode   int                 `json:"exit_code"`
	DurationMs int64               `json:"duration_ms"`
	Args       []string            `json:"args"`

	Artifacts *ReportArtifacts  `json:"artifacts,omitempty"`
	Metrics   *metrics.Snapshot `json:"metrics,omitempty"`

	Version string `json:"version"`
}

// ReportArtifacts lists the on-disk artifacts the invocation was
// configured to produce.
type ReportArtifacts struct {
	ResultFile string `json:"result_file,omitempty"`
	OutputFile string `json:"output_file,omitempty"`
	ErrorFile  string `json:"error_file,omitempty"`
	JUnitXML   string `json:"junit_xml,omitempty"`
	HTMLDir    string `json:"html_dir,omitempty"`
}

// BuildRunReport composes a RunReport from a RunResult and metrics snapshot.
func BuildRunReport(label string, cfg *types.RunConfig, result *RunResult, snap metrics.Snapshot) *RunReport {
	report := &RunReport{
		Label:      label,
		Outcome:    result.Outcome.Status,
		Message:    result.Outcome.Message,
		ExitCode:   result.ExitCode,
		DurationMs: result.Duration.Milliseconds(),
		Args:       result.Args,
		Metrics:    &snap,
		Version:    types.Version,
	}

	artifacts := &ReportArtifacts{
		ResultFile: cfg.ResultFilePath,
		OutputFile: cfg.OutputFilePath,
		ErrorFile:  cfg.ErrorFilePath,
	}
	if cfg.Reports.JUnitXMLEnabled {
		artifacts.JUnitXML = cfg.Reports.JUnitXMLEntryPoint
	}
	if cfg.Reports.HTMLEnabled {
		artifacts.HTMLDir = cfg.Reports.HTMLDestinationDir
	}
	if *artifacts != (ReportArtifacts{}) {
		report.Artifacts = artifacts
	}

	return report
}

// WriteRunReport writes the report as JSON to the specified path.
// If path is "-", writes to stderr.
func WriteRunReport(report *RunReport, path string) error {
	if path == "" {
		return errors.New("report path must not be empty")
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = os.Stderr.Write(data)
		if err != nil {
			return fmt.Errorf("failed to write report to stderr: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}

// writeRunReportTo writes report JSON to any writer (for testing).
func writeRunReportTo(report *RunReport, w io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
