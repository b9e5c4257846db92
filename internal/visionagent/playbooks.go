package visionagent

import (
	"fmt"

	"nerva/internal/playbook"
)

// BuildLookupPlaybook returns the deterministic search-and-open-first-result
// playbook the vision agent uses to back phone/business lookups: it
// never needs the vision loop because the DOM is predictable enough
// to script directly.
func BuildLookupPlaybook(query string) playbook.Playbook {
	return playbook.Playbook{
		Name: fmt.Sprintf("lookup:%s", query),
		Metadata: map[string]any{
			"description": "search for business info and open the first result",
		},
		Steps: []playbook.Step{
			{
				Name:    "goto_google",
				Action:  "navigate",
				Params:  map[string]any{"url": "https://www.google.com"},
				WaitFor: "textarea[name='q']",
			},
			{
				Name:   "focus_search",
				Action: "click",
				Params: map[string]any{"selector": "textarea[name='q']"},
			},
			{
				Name:   "type_query",
				Action: "fill",
				Params: map[string]any{"selector": "textarea[name='q']", "text": query},
			},
			{
				Name:   "submit_query",
				Action: "evaluate",
				Params: map[string]any{"script": `document.querySelector('textarea[name="q"]').form.submit();`},
			},
			{
				Name:      "wait_results",
				Action:    "wait_for_selector",
				Params:    map[string]any{"selector": "#search", "timeout": 15000},
				OnFailure: playbook.OnFailure{Kind: playbook.OnFailureAbort},
			},
			{
				Name:    "open_first_result",
				Action:  "click",
				Params:  map[string]any{"selector": "#search a"},
				WaitFor: "body",
			},
		},
	}
}
