// Package skills implements the handlers a dispatched command is
// routed to: calendar, mail, drive, lookup, research, generic browser
// control, free-form LLM answers, daily-ops summaries and repo
// queries. Each handler is grounded on the corresponding _handle_*
// method of the original task dispatcher.
package skills

import (
	"context"
	"fmt"

	"nerva/internal/llmclient"
	"nerva/internal/logging"
	"nerva/internal/tasktypes"
	"nerva/internal/visionagent"
)

var log = logging.New("skills")

// Route names a dispatcher can route a command to.
const (
	RouteCalendar       = "calendar"
	RouteMail            = "mail"
	RouteDrive           = "drive"
	RouteLookup          = "lookup"
	RouteResearch        = "research"
	RouteGenericBrowser  = "generic_browser"
	RouteFreeForm        = "free_form"
	RouteDailyOps        = "daily_ops"
	RouteRepoQuery       = "repo_query"
)

// Handler executes a command once the dispatcher has routed it.
type Handler func(ctx context.Context, deps *Deps, command string, tc tasktypes.TaskContext) (tasktypes.TaskResult, error)

// Deps holds every external collaborator a skill might need. Fields
// left nil disable the skills that need them; the registry reports a
// RouteFreeForm-style error result rather than panicking.
type Deps struct {
	LLM      llmclient.TextLLM
	Vision   *visionagent.Agent
	Calendar CalendarSkill
	Gmail    GmailSkill
	Drive    DriveSkill

	DailyOps  func(ctx context.Context) (map[string]any, error)
	RepoQuery func(ctx context.Context, query string) (map[string]any, error)
}

// Registry maps route names to their handlers.
type Registry map[string]Handler

// NewRegistry returns the default registry wiring every route to its
// handler implementation.
func NewRegistry() Registry {
	return Registry{
		RouteCalendar:      handleCalendar,
		RouteMail:          handleMail,
		RouteDrive:         handleDrive,
		RouteLookup:        handleLookup,
		RouteResearch:      handleResearch,
		RouteGenericBrowser: handleGenericBrowser,
		RouteFreeForm:      handleFreeForm,
		RouteDailyOps:      handleDailyOps,
		RouteRepoQuery:     handleRepoQuery,
	}
}

// Routes reports the route names currently registered, used by the
// dispatcher's classifier to validate LLM-suggested routes.
func (r Registry) Routes() []string {
	out := make([]string, 0, len(r))
	for name := range r {
		out = append(out, name)
	}
	return out
}

func errorResult(route, command string, err error) (tasktypes.TaskResult, error) {
	return tasktypes.TaskResult{
		Command: command,
		Route:   route,
		Status:  "failed",
		Summary: fmt.Sprintf("%s failed: %v", route, err),
	}, err
}
