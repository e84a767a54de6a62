package types

// OutcomeStatus is the tri-state result of one runner invocation.
type OutcomeStatus string

const (
	// OutcomeSuccess indicates all tests passed (exit code 0).
	OutcomeSuccess OutcomeStatus = "success"
	// OutcomeWarned indicates tests failed but IgnoreFailures downgraded
	// the failure to a warning; the invocation is still reported as
	// successful to the caller.
	OutcomeWarned OutcomeStatus = "warned"
	// OutcomeFailed indicates tests failed and the failure is fatal.
	OutcomeFailed OutcomeStatus = "failed"
)

// Outcome is the evaluated result of a completed runner process.
type Outcome struct {
	// Status is the outcome status.
	Status OutcomeStatus `json:"status" yaml:"status"`
	// Message is a human-readable description. For Warned and Failed it
	// starts with "There were failing tests" and, when a report is
	// enabled, ends with a reference to the report entry point.
	Message string `json:"message" yaml:"message"`
}

// OK reports whether the invocation should be treated as successful by
// the enclosing build step. Warned counts as success.
func (o Outcome) OK() bool {
	return o.Status == OutcomeSuccess || o.Status == OutcomeWarned
}
