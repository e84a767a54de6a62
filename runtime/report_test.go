package runtime

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashetkar/scalarun/metrics"
	"github.com/ashetkar/scalarun/types"
)

func sampleResult() *RunResult {
	return &RunResult{
		Args:     []string{"-oDW", "-PS", "-R", "/build/test-classes"},
		ExitCode: 1,
		Outcome: types.Outcome{
			Status:  types.OutcomeFailed,
			Message: "There were failing tests",
		},
		Duration: 1500 * time.Millisecond,
	}
}

func TestBuildRunReport(t *testing.T) {
	cfg := &types.RunConfig{
		TestRoot:       "/build/test-classes",
		ResultFilePath: "results.bin",
		Reports: types.ReportSettings{
			JUnitXMLEnabled:    true,
			JUnitXMLEntryPoint: "reports/junit.xml",
		},
	}
	collector := metrics.NewCollector("scalatest", cfg.TestRoot)
	collector.IncRunStarted()
	collector.IncRunFailed()

	report := BuildRunReport("unit", cfg, sampleResult(), collector.Snapshot())

	if report.Outcome != types.OutcomeFailed {
		t.Errorf("outcome = %s, want failed", report.Outcome)
	}
	if report.ExitCode != 1 {
		t.Errorf("exit code = %d, want 1", report.ExitCode)
	}
	if report.DurationMs != 1500 {
		t.Errorf("duration_ms = %d, want 1500", report.DurationMs)
	}
	if report.Artifacts == nil || report.Artifacts.JUnitXML != "reports/junit.xml" {
		t.Errorf("artifacts = %+v, want junit entry point", report.Artifacts)
	}
	if report.Artifacts.HTMLDir != "" {
		t.Errorf("html disabled but report lists dir %q", report.Artifacts.HTMLDir)
	}
	if report.Metrics == nil || report.Metrics.RunsFailed != 1 {
		t.Errorf("metrics snapshot missing or wrong: %+v", report.Metrics)
	}
	if report.Version != types.Version {
		t.Errorf("version = %q, want %q", report.Version, types.Version)
	}
}

func TestBuildRunReport_NoArtifacts(t *testing.T) {
	cfg := &types.RunConfig{TestRoot: "/build/test-classes"}
	report := BuildRunReport("unit", cfg, sampleResult(), metrics.Snapshot{})
	if report.Artifacts != nil {
		t.Errorf("no artifacts configured, got %+v", report.Artifacts)
	}
}

func TestWriteRunReport_File(t *testing.T) {
	cfg := &types.RunConfig{TestRoot: "/build/test-classes"}
	report := BuildRunReport("unit", cfg, sampleResult(), metrics.Snapshot{})

	path := filepath.Join(t.TempDir(), "report.json")
	if err := WriteRunReport(report, path); err != nil {
		t.Fatalf("WriteRunReport: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var decoded RunReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded.Outcome != types.OutcomeFailed {
		t.Errorf("round-tripped outcome = %s, want failed", decoded.Outcome)
	}
}

func TestWriteRunReport_EmptyPath(t *testing.T) {
	report := &RunReport{}
	if err := WriteRunReport(report, ""); err == nil {
		t.Fatal("WriteRunReport(\"\") = nil, want error")
	}
}

func TestWriteRunReportTo(t *testing.T) {
	var buf bytes.Buffer
	report := &RunReport{Label: "unit", Outcome: types.OutcomeSuccess}
	if err := writeRunReportTo(report, &buf); err != nil {
		t.Fatalf("writeRunReportTo: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"label": "unit"`)) {
		t.Errorf("report output missing label: %s", buf.String())
	}
	if !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
		t.Error("report output must end with newline")
	}
}
