// Package visionagent implements the perception-action loop: screenshot,
// ask a vision model what to do next, parse its answer into a
// browser Action, execute it, repeat until the model says the task
// is complete or the step budget runs out.
package visionagent

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"nerva/internal/browserdriver"
	"nerva/internal/llmclient"
	"nerva/internal/logging"
	"nerva/internal/playbook"
)

var log = logging.New("visionagent")

// Status is the terminal outcome of ExecuteTask.
type Status string

const (
	StatusSuccess    Status = "success"
	StatusIncomplete Status = "incomplete"
)

// StepRecord captures one iteration of the perception-action loop.
type StepRecord struct {
	Step           int
	VisionResponse string
	Action         Action
	Verified       bool
	Err            error
}

// Result is what ExecuteTask returns.
type Result struct {
	Status Status
	Reason string
	Steps  int
	History []StepRecord
	Answer string
}

// Agent drives the perception-action loop over a Driver using a
// VisionLLM for perception and reasoning.
type Agent struct {
	Vision        llmclient.VisionLLM
	Driver        *browserdriver.Driver
	MaxSteps      int
	VerifyActions bool
	AnswerTask    bool
}

// New returns an Agent with nerva's default step budget (20, matching
// the original implementation) unless overridden.
func New(vision llmclient.VisionLLM, driver *browserdriver.Driver) *Agent {
	return &Agent{Vision: vision, Driver: driver, MaxSteps: 20, AnswerTask: true}
}

// ExecuteTask runs the perception-action loop against task, optionally
// starting from startingURL (Google search is used if empty).
func (a *Agent) ExecuteTask(ctx context.Context, task, startingURL string) (Result, error) {
	log.Info("starting vision-action task", "task", task)

	url := startingURL
	if url == "" {
		url = "https://www.google.com"
	}
	if err := a.Driver.Navigate(ctx, url); err != nil {
		return Result{}, fmt.Errorf("visionagent: navigate to start url: %w", err)
	}

	var history []StepRecord
	step := 0

	for step < a.MaxSteps {
		if ctx.Err() != nil {
			break
		}
		step++

		screenshot, err := a.Driver.Screenshot(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("visionagent: screenshot: %w", err)
		}

		visionResponse, err := a.Vision.AnalyzeScreenshot(ctx, screenshot, task)
		if err != nil {
			return Result{}, fmt.Errorf("visionagent: analyze screenshot: %w", err)
		}

		action, err := parseAction(ctx, a.Vision, screenshot, task, visionResponse)
		if err != nil {
			history = append(history, StepRecord{Step: step, VisionResponse: visionResponse, Err: err})
			log.Warn("could not parse vision response into an action", "step", step, "error", err)
			if step >= a.MaxSteps-1 {
				break
			}
			continue
		}

		record := StepRecord{Step: step, VisionResponse: visionResponse, Action: action}
		log.Info("vision-action step", "step", step, "action", action.Type, "target", action.Target, "confidence", action.Confidence)

		if action.IsComplete() {
			history = append(history, record)
			answer := a.maybeAnswer(ctx, task)
			return Result{Status: StatusSuccess, Reason: action.Reason, Steps: step, History: history, Answer: answer}, nil
		}

		if err := a.performAction(ctx, action); err != nil {
			record.Err = err
			log.Warn("action failed, continuing loop", "step", step, "action", action.Type, "error", err)
			history = append(history, record)
			if step >= a.MaxSteps-1 {
				break
			}
			time.Sleep(1 * time.Second)
			continue
		}

		if a.VerifyActions {
			a.verifyAction(ctx, task, &record)
		}

		history = append(history, record)
		time.Sleep(1 * time.Second)
	}

	if step == 0 {
		return Result{
			Status: StatusIncomplete,
			Reason: fmt.Sprintf("max steps (%d) reached", a.MaxSteps),
		}, nil
	}

	log.Warn("vision-action agent reached max steps", "max_steps", a.MaxSteps)
	answer := a.maybeAnswer(ctx, task)
	return Result{
		Status:  StatusIncomplete,
		Reason:  fmt.Sprintf("max steps (%d) reached", a.MaxSteps),
		Steps:   step,
		History: history,
		Answer:  answer,
	}, nil
}

// verifyAction re-screenshots the page and asks the vision model
// whether the step's action visibly took effect. A "no" is only
// recorded on the step — the loop self-corrects on its next iteration
// rather than aborting.
func (a *Agent) verifyAction(ctx context.Context, task string, record *StepRecord) {
	screenshot, err := a.Driver.Screenshot(ctx)
	if err != nil {
		log.Warn("verification screenshot failed", "step", record.Step, "error", err)
		return
	}
	question := fmt.Sprintf(
		"The goal is: %s. The last action was %s on %q. Did the page visibly change as expected? Answer YES or NO.",
		task, record.Action.Type, record.Action.Target,
	)
	verdict, err := a.Vision.AnswerQuestion(ctx, screenshot, question)
	if err != nil {
		log.Warn("verification request failed", "step", record.Step, "error", err)
		return
	}
	record.Verified = !strings.Contains(strings.ToUpper(verdict), "NO")
	if !record.Verified {
		log.Info("action did not verify, loop will self-correct", "step", record.Step, "action", record.Action.Type)
	}
}

func (a *Agent) maybeAnswer(ctx context.Context, task string) string {
	if !a.AnswerTask {
		return ""
	}
	screenshot, err := a.Driver.Screenshot(ctx)
	if err != nil {
		log.Warn("final answer screenshot failed", "error", err)
		return ""
	}
	answer, err := a.Vision.AnswerQuestion(ctx, screenshot, task)
	if err != nil {
		log.Warn("final answer extraction failed", "error", err)
		return ""
	}
	return answer
}

// RunPlaybook executes a predefined playbook against the agent's
// driver, for stateful multi-step flows a vision loop shouldn't guess
// its way through.
func (a *Agent) RunPlaybook(ctx context.Context, pb playbook.Playbook) ([]playbook.StepResult, error) {
	runner := playbook.NewRunner(a.Driver)
	return runner.Run(ctx, pb, nil)
}

// LookupPhoneNumber drives a search playbook, then scans the
// resulting page text for the best-matching phone number.
func (a *Agent) LookupPhoneNumber(ctx context.Context, query string) (Result, error) {
	pb := BuildLookupPlaybook(query)
	steps, err := a.RunPlaybook(ctx, pb)
	if err != nil {
		return Result{}, fmt.Errorf("visionagent: lookup playbook: %w", err)
	}

	pageText, _ := a.Driver.InnerText(ctx, "body")
	phone := extractPhoneNumber(pageText, query)

	answer := ""
	if phone != "" {
		answer = fmt.Sprintf("The phone number for %s is %s.", query, phone)
	} else if a.AnswerTask {
		answer = a.maybeAnswer(ctx, fmt.Sprintf("What is the phone number for %s?", query))
	}

	return Result{
		Status: StatusSuccess,
		Reason: fmt.Sprintf("lookup completed for %s", query),
		Answer: answer,
	}, recordPhoneInSteps(steps)
}

// ResearchTopic opens the top resultCount search results for query
// and, if AnswerTask is set, asks the vision model to summarize what
// it saw across all of them.
func (a *Agent) ResearchTopic(ctx context.Context, query string, resultCount int) (Result, error) {
	pb := BuildResearchPlaybook(query, resultCount)
	steps, err := a.RunPlaybook(ctx, pb)
	if err != nil {
		return Result{}, fmt.Errorf("visionagent: research playbook: %w", err)
	}

	answer := a.maybeAnswer(ctx, "Summarize the key findings from the captured search results.")
	return Result{
		Status: StatusSuccess,
		Reason: fmt.Sprintf("research run for %s", query),
		Answer: answer,
	}, recordPhoneInSteps(steps)
}

func recordPhoneInSteps(steps []playbook.StepResult) error {
	for _, s := range steps {
		if s.Status == playbook.StepError {
			return fmt.Errorf("visionagent: lookup playbook step %q failed: %w", s.Step, s.Err)
		}
	}
	return nil
}

func (a *Agent) performAction(ctx context.Context, action Action) error {
	switch action.Type {
	case "click":
		return a.clickByDescription(ctx, action.Target)
	case "type":
		if action.Value == "" {
			log.Warn("type action has no value")
			return nil
		}
		var result string
		script := fmt.Sprintf("document.activeElement && (document.activeElement.value += %q)", action.Value)
		return a.Driver.Evaluate(ctx, script, &result)
	case "scroll":
		direction := strings.ToLower(action.Target)
		dy := "300"
		if strings.Contains(direction, "up") {
			dy = "-300"
		}
		var result string
		return a.Driver.Evaluate(ctx, fmt.Sprintf("window.scrollBy(0, %s)", dy), &result)
	case "navigate":
		url := action.Target
		if strings.Contains(url, "://") && !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return fmt.Errorf("visionagent: refusing non-http navigation to %q", url)
		}
		if strings.HasPrefix(url, "about:") || strings.HasPrefix(url, "javascript:") {
			return fmt.Errorf("visionagent: refusing navigation to %q", url)
		}
		if !strings.HasPrefix(url, "http") {
			url = "https://" + url
		}
		return a.Driver.Navigate(ctx, url)
	case "wait":
		duration := 2
		if action.Value != "" && isDigits(action.Value) {
			if n, err := strconv.Atoi(action.Value); err == nil {
				duration = n
			}
		}
		select {
		case <-time.After(time.Duration(duration) * time.Second):
		case <-ctx.Done():
		}
		return nil
	default:
		log.Warn("unknown action type", "type", action.Type)
		return nil
	}
}

// clickByDescription builds a handful of candidate selectors from a
// natural-language description and tries each in turn, falling back
// to a text-content match.
func (a *Agent) clickByDescription(ctx context.Context, description string) error {
	descLower := strings.ToLower(description)
	keywords := keywordTokens(description, []int{3})

	var selectors []string
	switch {
	case strings.Contains(descLower, "button"):
		for _, kw := range keywords {
			selectors = append(selectors,
				fmt.Sprintf("button:has-text('%s')", kw),
				fmt.Sprintf("input[type='submit']:has-text('%s')", kw),
				fmt.Sprintf("a:has-text('%s')", kw),
			)
		}
	case strings.Contains(descLower, "link"):
		for _, kw := range keywords {
			selectors = append(selectors, fmt.Sprintf("a:has-text('%s')", kw))
		}
	case strings.Contains(descLower, "search"):
		selectors = append(selectors, "input[type='search']", "input[placeholder*='search' i]", "input[name*='search' i]")
	case strings.Contains(descLower, "input") || strings.Contains(descLower, "field"):
		for _, kw := range keywords {
			selectors = append(selectors,
				fmt.Sprintf("input[placeholder*='%s' i]", kw),
				fmt.Sprintf("input[name*='%s' i]", kw),
			)
		}
	default:
		for _, kw := range keywords {
			selectors = append(selectors, fmt.Sprintf("*:has-text('%s')", kw))
		}
	}

	var lastErr error
	for _, selector := range selectors {
		if err := a.Driver.Click(ctx, selector); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	log.Warn("could not find element by description, falling back to text match", "description", description)
	if err := a.Driver.Click(ctx, fmt.Sprintf("text=%s", description)); err != nil {
		return fmt.Errorf("visionagent: could not find element %q: %w", description, lastErr)
	}
	return nil
}
