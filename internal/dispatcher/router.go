package dispatcher

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"nerva/internal/llmclient"
	"nerva/internal/skills"
)

var keywordRoutes = []struct {
	route    string
	keywords []string
}{
	{skills.RouteCalendar, []string{"calendar", "schedule", "meeting", "event"}},
	{skills.RouteMail, []string{"email", "gmail", "inbox", "message"}},
	{skills.RouteDrive, []string{"drive", "document", "file", "folder"}},
	{skills.RouteLookup, []string{
		"phone number", "call", "dial", "directions", "address",
		"where is", "location", "map", "drive to", "lookup", "search for",
	}},
	{skills.RouteResearch, []string{"research", "look into", "find out about"}},
	{skills.RouteGenericBrowser, []string{"screen", "browser", "click", "scroll", "tab", "search"}},
}

var routePattern = regexp.MustCompile(`"route"\s*:\s*"([^"]+)"`)

const routerPrompt = `You are a router for nerva. Valid routes:
1. calendar - schedule, meetings
2. mail - email
3. drive - google drive / files
4. lookup - phone numbers, addresses, business hours, weather
5. research - open-ended topic research
6. generic_browser - anything else that needs a browser
7. free_form - a question that needs no tool at all
8. daily_ops - "run my daily ops" / "give me my daily summary"
9. repo_query - questions about a code repository

Reply with only JSON: {"route": "...", "reason": "..."}.`

// Classify picks a route for command, trying a fast keyword match
// first and falling back to an LLM call only when nothing matches.
func Classify(ctx context.Context, llm llmclient.TextLLM, reg skills.Registry, command string) string {
	lower := strings.ToLower(command)

	for _, dailyOpsPhrase := range []string{"daily ops", "daily summary", "daily digest"} {
		if strings.Contains(lower, dailyOpsPhrase) {
			return skills.RouteDailyOps
		}
	}
	for _, repoPhrase := range []string{"in the repo", "in this repo", "codebase"} {
		if strings.Contains(lower, repoPhrase) {
			return skills.RouteRepoQuery
		}
	}

	for _, kr := range keywordRoutes {
		for _, kw := range kr.keywords {
			if strings.Contains(lower, kw) {
				return kr.route
			}
		}
	}

	if llm == nil {
		return skills.RouteFreeForm
	}

	response, err := llm.Complete(ctx, fmt.Sprintf("%s\n\nRequest: %s", routerPrompt, command))
	if err != nil {
		log.Warn("router LLM failed, defaulting to free_form", "error", err)
		return skills.RouteFreeForm
	}

	match := routePattern.FindStringSubmatch(response)
	if match == nil {
		return skills.RouteFreeForm
	}
	route := strings.ToLower(strings.TrimSpace(match[1]))
	for _, valid := range reg.Routes() {
		if valid == route {
			return route
		}
	}
	return skills.RouteFreeForm
}
