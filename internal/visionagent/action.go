package visionagent

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"nerva/internal/llmclient"
)

// Action is a single browser action parsed from a vision model's
// response.
type Action struct {
	Type       string
	Target     string
	Value      string
	Reason     string
	Confidence string
}

// IsComplete reports whether this action signals the task is done.
func (a Action) IsComplete() bool { return a.Type == "complete" }

var knownActionTypes = map[string]bool{
	"click": true, "type": true, "scroll": true,
	"navigate": true, "wait": true, "complete": true,
}

var fieldPattern = func(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + name + `:\s*\[?([^\]\n]+)\]?`)
}

var (
	actionField     = fieldPattern("ACTION")
	targetField     = fieldPattern("TARGET")
	valueField      = fieldPattern("VALUE")
	reasonField     = fieldPattern("REASON")
	confidenceField = fieldPattern("CONFIDENCE")
)

func extractField(text string, pattern *regexp.Regexp, def string) string {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return def
	}
	return strings.TrimSpace(m[1])
}

// parseStrict requires a recognized ACTION field and a non-empty
// TARGET (for any action type other than complete/wait); it is the
// first rung of the parsing ladder.
func parseStrict(text string) (Action, error) {
	actionType := strings.ToLower(extractField(text, actionField, ""))
	if actionType == "" || !knownActionTypes[actionType] {
		return Action{}, fmt.Errorf("visionagent: no recognized ACTION field in response")
	}

	target := extractField(text, targetField, "")
	if target == "" && actionType != "complete" && actionType != "wait" {
		return Action{}, fmt.Errorf("visionagent: ACTION %q requires a TARGET", actionType)
	}

	return buildAction(actionType, target, text), nil
}

// parseLenient fills in sane defaults instead of failing outright; it
// is the second rung, used once parseStrict has already failed once.
func parseLenient(text string) Action {
	actionType := strings.ToLower(extractField(text, actionField, "wait"))
	if !knownActionTypes[actionType] {
		actionType = "wait"
	}
	return buildAction(actionType, extractField(text, targetField, ""), text)
}

func buildAction(actionType, target, text string) Action {
	value := extractField(text, valueField, "")
	if strings.EqualFold(value, "N/A") {
		value = ""
	}
	return Action{
		Type:       actionType,
		Target:     target,
		Value:      value,
		Reason:     extractField(text, reasonField, ""),
		Confidence: strings.ToLower(extractField(text, confidenceField, "medium")),
	}
}

// parseAction runs the strict -> lenient -> retry-with-clarifier -> fail
// ladder: a structured response parses on the first try; a malformed
// one gets a lenient second pass; if even that has no usable ACTION,
// the vision model is asked once more with an explicit formatting
// reminder; if that also fails to parse, parseAction gives up.
func parseAction(ctx context.Context, vision llmclient.VisionLLM, screenshot []byte, task, response string) (Action, error) {
	if action, err := parseStrict(response); err == nil {
		return action, nil
	}

	lenient := parseLenient(response)
	if lenient.Type != "wait" || strings.Contains(strings.ToUpper(response), "ACTION") {
		return lenient, nil
	}

	clarified, err := vision.AnalyzeScreenshot(ctx, screenshot, clarifierPrompt(task))
	if err != nil {
		return Action{}, fmt.Errorf("visionagent: clarifier request failed: %w", err)
	}
	if action, err := parseStrict(clarified); err == nil {
		return action, nil
	}
	lenient = parseLenient(clarified)
	if lenient.Target != "" || lenient.Type == "complete" {
		return lenient, nil
	}

	return Action{}, fmt.Errorf("visionagent: could not parse an action from the vision response after clarification")
}

func clarifierPrompt(task string) string {
	return fmt.Sprintf(
		"%s\n\nRespond ONLY in this exact format:\nACTION: <click|type|scroll|navigate|wait|complete>\nTARGET: <element description>\nVALUE: <text to type, or N/A>\nREASON: <why>\nCONFIDENCE: <low|medium|high>",
		task,
	)
}

var phoneRegex = regexp.MustCompile(`(?:\+?1[-.\s]*)?(?:\(\d{3}\)|\d{3})[-.\s]*\d{3}[-.\s]*\d{4}`)

// extractPhoneNumber scores every phone-shaped match in pageText by
// whether the query's keywords appear in the 80 characters just before
// it (the label a listing puts ahead of its number) and returns the
// best formatted candidate, the earliest on a tie, or "" if none is
// found.
func extractPhoneNumber(pageText, query string) string {
	matches := phoneRegex.FindAllStringIndex(pageText, -1)
	if len(matches) == 0 {
		return ""
	}

	lowered := strings.ToLower(pageText)
	queryTokens := keywordTokens(query, nil)

	bestScore := -1
	best := ""
	for _, span := range matches {
		raw := pageText[span[0]:span[1]]
		digits := onlyDigits(raw)
		score := 1
		if len(digits) >= 10 {
			score++
		}
		start := span[0] - 80
		if start < 0 {
			start = 0
		}
		snippet := lowered[start:span[0]]
		for _, tok := range queryTokens {
			if strings.Contains(snippet, tok) {
				score += 2
				break
			}
		}
		if score > bestScore {
			bestScore = score
			best = formatPhone(digits)
		}
	}
	return best
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func formatPhone(digits string) string {
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	if len(digits) != 10 {
		return digits
	}
	return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "in": true, "on": true, "at": true,
	"to": true, "for": true, "of": true, "with": true,
	"button": true, "link": true, "input": true, "field": true, "box": true, "element": true,
}

// keywordTokens splits description into lowercase word tokens with
// stop words removed, capped at the first max (or 3 if max <= 0).
func keywordTokens(description string, max []int) []string {
	limit := 3
	if len(max) > 0 && max[0] > 0 {
		limit = max[0]
	}
	words := strings.Fields(strings.ToLower(description))
	var out []string
	for _, w := range words {
		w = strings.Trim(w, ".,!?\"'")
		if w == "" || stopWords[w] {
			continue
		}
		out = append(out, w)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}
