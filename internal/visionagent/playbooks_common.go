package visionagent

import (
	"fmt"
	"net/url"

	"nerva/internal/playbook"
)

// BuildWeatherPlaybook searches for the current weather in a location
// and waits for the weather card Google renders inline.
func BuildWeatherPlaybook(location string) playbook.Playbook {
	return playbook.Playbook{
		Name:     fmt.Sprintf("weather:%s", location),
		Metadata: map[string]any{"description": "get current weather and forecast", "type": "weather"},
		Steps: []playbook.Step{
			{Name: "goto_google", Action: "navigate", Params: map[string]any{"url": "https://www.google.com"}, WaitFor: "textarea[name='q']"},
			{Name: "focus_search", Action: "click", Params: map[string]any{"selector": "textarea[name='q']"}},
			{Name: "type_query", Action: "fill", Params: map[string]any{"selector": "textarea[name='q']", "text": "weather " + location}},
			{Name: "submit_query", Action: "evaluate", Params: map[string]any{"script": `document.querySelector('textarea[name="q"]').form.submit();`}},
			{
				Name:      "wait_weather_card",
				Action:    "wait_for_selector",
				Params:    map[string]any{"selector": "#wob_wc", "timeout": 10000},
				OnFailure: playbook.OnFailure{Kind: playbook.OnFailureContinue},
			},
		},
	}
}

// BuildBusinessHoursPlaybook searches for a business's hours and open
// status via Google's knowledge panel.
func BuildBusinessHoursPlaybook(business string) playbook.Playbook {
	return playbook.Playbook{
		Name:     fmt.Sprintf("hours:%s", business),
		Metadata: map[string]any{"description": "get business hours and open/closed status", "type": "business_hours"},
		Steps: []playbook.Step{
			{Name: "goto_google", Action: "navigate", Params: map[string]any{"url": "https://www.google.com"}, WaitFor: "textarea[name='q']"},
			{Name: "search_hours", Action: "fill", Params: map[string]any{"selector": "textarea[name='q']", "text": business + " hours"}},
			{Name: "submit_query", Action: "evaluate", Params: map[string]any{"script": `document.querySelector('textarea[name="q"]').form.submit();`}},
			{
				Name:      "wait_info",
				Action:    "wait_for_selector",
				Params:    map[string]any{"selector": ".LrzXr, .YrbPuc, div[data-attrid='kc:/location/location:hours']", "timeout": 10000},
				OnFailure: playbook.OnFailure{Kind: playbook.OnFailureContinue},
			},
		},
	}
}

// BuildWikipediaPlaybook opens the Wikipedia search results for topic
// directly, skipping the Google hop since Wikipedia's own search is
// reliable enough to script against.
func BuildWikipediaPlaybook(topic string) playbook.Playbook {
	target := "https://en.wikipedia.org/wiki/Special:Search?search=" + url.QueryEscape(topic)
	return playbook.Playbook{
		Name:     fmt.Sprintf("wikipedia:%s", topic),
		Metadata: map[string]any{"description": "look up information on Wikipedia", "type": "wikipedia"},
		Steps: []playbook.Step{
			{Name: "goto_wikipedia", Action: "navigate", Params: map[string]any{"url": target}, WaitFor: "#mw-content-text"},
			{Name: "wait_content", Action: "wait_for_selector", Params: map[string]any{"selector": "#mw-content-text p, .searchresults", "timeout": 10000}},
		},
	}
}
