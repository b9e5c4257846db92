package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"nerva/internal/llmclient"
)

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// extractStructured pulls the first JSON object out of a prose LLM
// response and decodes it. LLMs routinely wrap JSON in markdown fences
// or a leading sentence, so a direct json.Unmarshal on the whole
// response is not reliable enough.
func extractStructured(text string) (map[string]any, error) {
	match := jsonObjectPattern.FindString(text)
	if match == "" {
		return nil, fmt.Errorf("skills: no JSON object found in response")
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(match), &out); err != nil {
		return nil, fmt.Errorf("skills: decode structured response: %w", err)
	}
	return out, nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func stringSliceField(m map[string]any, key string) []string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

const eventExtractionPrompt = `Extract a calendar event from the request below. Respond with only a JSON object with keys: title, date, start_time, end_time, location, description. Use empty strings for anything not mentioned.

Request: %s`

func interpretEvent(ctx context.Context, llm llmclient.TextLLM, command string) (CalendarEvent, error) {
	response, err := llm.Complete(ctx, fmt.Sprintf(eventExtractionPrompt, command))
	if err != nil {
		return CalendarEvent{}, fmt.Errorf("skills: interpret event: %w", err)
	}
	fields, err := extractStructured(response)
	if err != nil {
		return CalendarEvent{Title: command}, nil
	}
	return CalendarEvent{
		Title:       orDefault(stringField(fields, "title"), command),
		Date:        stringField(fields, "date"),
		StartTime:   stringField(fields, "start_time"),
		EndTime:     stringField(fields, "end_time"),
		Location:    stringField(fields, "location"),
		Description: stringField(fields, "description"),
	}, nil
}

const emailExtractionPrompt = `Extract an email draft from the request below. Respond with only a JSON object with keys: to (array), cc (array), bcc (array), subject, body.

Request: %s`

func interpretEmail(ctx context.Context, llm llmclient.TextLLM, command string) (EmailDraft, error) {
	response, err := llm.Complete(ctx, fmt.Sprintf(emailExtractionPrompt, command))
	if err != nil {
		return EmailDraft{}, fmt.Errorf("skills: interpret email: %w", err)
	}
	fields, err := extractStructured(response)
	if err != nil {
		return EmailDraft{Subject: command}, nil
	}
	return EmailDraft{
		To:      stringSliceField(fields, "to"),
		Cc:      stringSliceField(fields, "cc"),
		Bcc:     stringSliceField(fields, "bcc"),
		Subject: orDefault(stringField(fields, "subject"), command),
		Body:    stringField(fields, "body"),
	}, nil
}

const lookupExtractionPrompt = `Extract what is being looked up from the request below. Respond with only a JSON object with keys: query, kind (one of "phone", "business_hours", "weather", "general").

Request: %s`

// LookupQuery is what the lookup skill extracts before deciding which
// playbook family to run.
type LookupQuery struct {
	Query string
	Kind  string
}

func interpretLookup(ctx context.Context, llm llmclient.TextLLM, command string) (LookupQuery, error) {
	response, err := llm.Complete(ctx, fmt.Sprintf(lookupExtractionPrompt, command))
	if err != nil {
		return LookupQuery{}, fmt.Errorf("skills: interpret lookup: %w", err)
	}
	fields, err := extractStructured(response)
	if err != nil {
		return LookupQuery{Query: command, Kind: "general"}, nil
	}
	kind := strings.ToLower(stringField(fields, "kind"))
	if kind == "" {
		kind = "general"
	}
	return LookupQuery{
		Query: orDefault(stringField(fields, "query"), command),
		Kind:  kind,
	}, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
