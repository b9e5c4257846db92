package playbook

import (
	"context"
	"fmt"
	"time"

	"github.com/expr-lang/expr"

	"nerva/internal/browserdriver"
	"nerva/internal/logging"
)

var log = logging.New("playbook")

// defaultWaitTimeout applies when a step sets WaitFor but no
// WaitTimeout of its own.
const defaultWaitTimeout = 30 * time.Second

// retryBackoff is the pause between a failing step's retry attempts.
const retryBackoff = 500 * time.Millisecond

// Runner executes a Playbook's steps against a Driver in order.
type Runner struct {
	Driver *browserdriver.Driver
}

// NewRunner returns a Runner bound to the given driver.
func NewRunner(driver *browserdriver.Driver) *Runner {
	return &Runner{Driver: driver}
}

// Run executes every step of pb in order. state is made available to
// each step's Guard expression as the `state` variable, alongside
// `results`, the StepResults accumulated so far. Run stops early only
// when a step's OnFailure policy is abort (or a retry policy that
// exhausts its attempts); otherwise it keeps going and the returned
// error, if any, reflects the last aborting failure.
func (r *Runner) Run(ctx context.Context, pb Playbook, state map[string]any) ([]StepResult, error) {
	var results []StepResult

	for _, step := range pb.Preconditions {
		res, _ := r.runStep(ctx, step)
		results = append(results, res)
		if res.Status == StepError {
			return results, fmt.Errorf("playbook: precondition %q: %w", step.Name, res.Err)
		}
	}

	results, err := r.runSteps(ctx, pb, state, results)
	if err != nil {
		return results, err
	}

	for _, step := range pb.Postconditions {
		res, _ := r.runStep(ctx, step)
		results = append(results, res)
		if res.Status == StepError {
			return results, fmt.Errorf("playbook: postcondition %q: %w", step.Name, res.Err)
		}
	}

	return results, nil
}

func (r *Runner) runSteps(ctx context.Context, pb Playbook, state map[string]any, results []StepResult) ([]StepResult, error) {
	for _, step := range pb.Steps {
		if ctx.Err() != nil {
			results = append(results, StepResult{Step: step.Name, Action: step.Action, Status: StepSkipped, Err: ctx.Err()})
			continue
		}

		if step.Guard != "" {
			ok, err := evalGuard(step.Guard, state, results)
			if err != nil {
				log.Warn("guard evaluation failed, skipping step", "step", step.Name, "error", err)
				results = append(results, StepResult{Step: step.Name, Action: step.Action, Status: StepSkipped, Err: err})
				continue
			}
			if !ok {
				results = append(results, StepResult{Step: step.Name, Action: step.Action, Status: StepSkipped})
				continue
			}
		}

		res, aborted := r.runStep(ctx, step)
		results = append(results, res)
		if aborted {
			return results, fmt.Errorf("playbook: step %q: %w", step.Name, res.Err)
		}
	}

	return results, nil
}

func (r *Runner) runStep(ctx context.Context, step Step) (StepResult, bool) {
	attempts := 1
	if step.OnFailure.Kind == OnFailureRetry && step.OnFailure.RetryCount > 0 {
		attempts = step.OnFailure.RetryCount + 1
	}

	var lastErr error
	var lastResult any
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(retryBackoff):
			case <-ctx.Done():
			}
		}

		result, err := r.Driver.Dispatch(ctx, step.Action, step.Params)
		if err == nil && step.WaitFor != "" {
			timeout := step.WaitTimeout
			if timeout <= 0 {
				timeout = defaultWaitTimeout
			}
			if werr := r.Driver.WaitForSelector(ctx, step.WaitFor, int(timeout.Milliseconds())); werr != nil {
				err = fmt.Errorf("wait_for %q: %w", step.WaitFor, werr)
			}
		}
		if err == nil {
			return StepResult{Step: step.Name, Action: step.Action, Status: StepOK, Result: result}, false
		}
		lastErr, lastResult = err, result
		log.Debug("step attempt failed", "step", step.Name, "attempt", attempt, "error", err)
	}

	switch step.OnFailure.Kind {
	case OnFailureContinue:
		return StepResult{Step: step.Name, Action: step.Action, Status: StepError, Result: lastResult, Err: lastErr}, false
	default: // abort, or retry exhausted
		return StepResult{Step: step.Name, Action: step.Action, Status: StepError, Result: lastResult, Err: lastErr}, true
	}
}

func evalGuard(guardExpr string, state map[string]any, results []StepResult) (bool, error) {
	env := map[string]any{
		"state":   state,
		"results": results,
	}
	out, err := expr.Eval(guardExpr, env)
	if err != nil {
		return false, fmt.Errorf("playbook: evaluate guard %q: %w", guardExpr, err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("playbook: guard %q did not evaluate to a bool", guardExpr)
	}
	return ok, nil
}
