package runtime

import (
	"github.com/ashetkar/scalarun/types"
)

// failingTestsMessage is the fixed prefix of every non-success message.
const failingTestsMessage = "There were failing tests"

// EvaluateOutcome maps a captured exit code plus report settings into the
// tri-state outcome. Exit code 0 means all tests passed; every nonzero
// code is treated identically (at least one test failed or the runner
// itself errored). IgnoreFailures downgrades a failure to a warning; the
// invocation is then still reported as successful to the caller.
func EvaluateOutcome(exitCode int, ignoreFailures bool, reports types.ReportSettings) types.Outcome {
	if exitCode == 0 {
		return types.Outcome{
			Status:  types.OutcomeSuccess,
			Message: "all tests passed",
		}
	}

	message := failingTestsMessage
	switch {
	case reports.HTMLEnabled:
		message += ". See the report at: file://" + absPath(reports.HTMLEntryPoint)
	case reports.JUnitXMLEnabled:
		message += ". See the report at: " + absPath(reports.JUnitXMLEntryPoint)
	}

	status := types.OutcomeFailed
	if ignoreFailures {
		status = types.OutcomeWarned
	}
	return types.Outcome{Status: status, Message: message}
}
