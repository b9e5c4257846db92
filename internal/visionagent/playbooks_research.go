package visionagent

import (
	"fmt"

	"nerva/internal/playbook"
)

// BuildResearchPlaybook opens the top resultCount search results in
// turn and screenshots each, so a vision model can be asked to
// summarize what it saw across all of them.
func BuildResearchPlaybook(query string, resultCount int) playbook.Playbook {
	if resultCount <= 0 {
		resultCount = 3
	}

	steps := []playbook.Step{
		{Name: "goto_google", Action: "navigate", Params: map[string]any{"url": "https://www.google.com"}, WaitFor: "textarea[name='q']"},
		{Name: "focus_search", Action: "click", Params: map[string]any{"selector": "textarea[name='q']"}},
		{Name: "type_query", Action: "fill", Params: map[string]any{"selector": "textarea[name='q']", "text": query}},
		{Name: "submit", Action: "evaluate", Params: map[string]any{"script": `document.querySelector('textarea[name="q"]').form.submit();`}},
		{Name: "wait_results", Action: "wait_for_selector", Params: map[string]any{"selector": "#search", "timeout": 15000}},
	}

	for i := 1; i <= resultCount; i++ {
		steps = append(steps,
			playbook.Step{
				Name:      fmt.Sprintf("open_result_%d", i),
				Action:    "click",
				Params:    map[string]any{"selector": fmt.Sprintf("#search a:nth-of-type(%d)", i)},
				WaitFor:   "body",
				OnFailure: playbook.OnFailure{Kind: playbook.OnFailureContinue},
			},
			playbook.Step{
				Name:   fmt.Sprintf("capture_result_%d", i),
				Action: "screenshot",
				Params: map[string]any{"path": fmt.Sprintf("/tmp/research_result_%d.png", i)},
			},
			playbook.Step{
				Name:    fmt.Sprintf("back_%d", i),
				Action:  "evaluate",
				Params:  map[string]any{"script": "window.history.back();"},
				WaitFor: "#search",
			},
		)
	}

	return playbook.Playbook{
		Name:     fmt.Sprintf("research:%s", query),
		Metadata: map[string]any{"description": "open multiple search results and capture screenshots"},
		Steps:    steps,
	}
}
