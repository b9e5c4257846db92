package dispatcher

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

const clarifyPrompt = `You are a task clarifier. Determine if the user's request is ambiguous.
Respond with JSON like {"needs_clarification": true/false, "question": "follow-up question"}.
Only request clarification if it is absolutely necessary.

Request: %s`

// Clarifier asks a follow-up question and returns the user's answer.
// A nil Clarifier on Dispatcher falls back to a blocking stdin prompt,
// matching the same-channel clarification decision recorded in
// DESIGN.md: clarification happens over whatever channel the command
// arrived on, not a side channel.
type Clarifier func(ctx context.Context, question string) (string, error)

func (d *Dispatcher) clarifyCommand(ctx context.Context, command string) (string, error) {
	if d.LLM == nil {
		return command, nil
	}

	response, err := d.LLM.Complete(ctx, fmt.Sprintf(clarifyPrompt, command))
	if err != nil {
		log.Warn("clarification check failed, proceeding without it", "error", err)
		return command, nil
	}

	fields := extractJSONObject(response)
	if fields == nil {
		return command, nil
	}
	needsClarification, _ := fields["needs_clarification"].(bool)
	if !needsClarification {
		return command, nil
	}

	question, _ := fields["question"].(string)
	if question == "" {
		question = "Can you clarify?"
	}

	answer, err := d.askClarification(ctx, question)
	if err != nil {
		return command, fmt.Errorf("dispatcher: ask clarification: %w", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return command, nil
	}
	return fmt.Sprintf("%s\nClarification: %s", command, answer), nil
}

func (d *Dispatcher) askClarification(ctx context.Context, question string) (string, error) {
	if d.Clarifier != nil {
		return d.Clarifier(ctx, question)
	}
	return stdinClarifier(ctx, question)
}

func stdinClarifier(ctx context.Context, question string) (string, error) {
	fmt.Printf("[Clarify] %s ", question)

	done := make(chan struct {
		line string
		err  error
	}, 1)
	go func() {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		done <- struct {
			line string
			err  error
		}{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return strings.TrimSpace(r.line), r.err
	}
}

func extractJSONObject(text string) map[string]any {
	match := jsonObjectPattern.FindString(text)
	if match == "" {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(match), &out); err != nil {
		return nil
	}
	return out
}
