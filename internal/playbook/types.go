// Package playbook runs declarative, ordered browser-automation
// scripts: a named sequence of driver actions with guard predicates,
// wait-for selectors, and a per-step failure policy.
package playbook

import "time"

// OnFailureKind names how a step's failure is handled.
type OnFailureKind string

const (
	OnFailureAbort    OnFailureKind = "abort"
	OnFailureContinue OnFailureKind = "continue"
	OnFailureRetry    OnFailureKind = "retry"
)

// OnFailure describes what to do when a step errors. Retries, if any,
// count against RetryCount.
type OnFailure struct {
	Kind       OnFailureKind `yaml:"kind,omitempty"`
	RetryCount int           `yaml:"retry_count,omitempty"`
}

// Step is a single driver action plus the conditions under which it
// runs and recovers from failure.
type Step struct {
	Name string `yaml:"name"`
	// Action names a browserdriver.Driver.Dispatch action.
	Action string         `yaml:"action"`
	Params map[string]any `yaml:"params,omitempty"`
	// Guard, when non-empty, is an expr-lang boolean expression
	// evaluated against {state, results} before the step runs; a
	// false guard skips the step without error.
	Guard string `yaml:"guard,omitempty"`
	// WaitFor, when non-empty, is a selector the driver waits to
	// become visible after Action succeeds; a wait that times out
	// fails the attempt like an action error.
	WaitFor     string        `yaml:"wait_for,omitempty"`
	WaitTimeout time.Duration `yaml:"wait_timeout,omitempty"`
	OnFailure   OnFailure     `yaml:"on_failure,omitempty"`
	Description string        `yaml:"description,omitempty"`
}

// Playbook is a named, ordered sequence of Steps. Preconditions run
// before the first step and may navigate; a failing precondition
// aborts the playbook before any step runs. Postconditions run after
// the last step, and a failing postcondition marks the playbook failed
// even when every step succeeded.
type Playbook struct {
	Name           string         `yaml:"name"`
	Steps          []Step         `yaml:"steps"`
	Preconditions  []Step         `yaml:"preconditions,omitempty"`
	Postconditions []Step         `yaml:"postconditions,omitempty"`
	Metadata       map[string]any `yaml:"metadata,omitempty"`
}

// StepStatus is the terminal outcome of running one Step.
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepError   StepStatus = "error"
	StepSkipped StepStatus = "skipped"
)

// StepResult is what Run records for each step, regardless of outcome.
type StepResult struct {
	Step   string
	Action string
	Status StepStatus
	Result any
	Err    error
}
