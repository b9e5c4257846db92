// Package tasktypes holds the TaskContext/TaskResult shapes shared
// between the dispatcher and every skill it routes to, kept in their
// own package so skills never need to import the dispatcher itself.
package tasktypes

import "nerva/pkg/engine"

// TaskContext carries metadata about where a command came from.
type TaskContext struct {
	Source   string // manual, voice, hotkey, ambient, cli, mcp
	ThreadID string
	Meta     map[string]any
}

// TaskResult is the summary payload every skill handler returns.
// Summary describes what happened; Answer, when set, is the extracted
// fact the user actually asked for (a phone number, a weather reading)
// and may differ from Summary. Steps carries the node-level trace of
// the dag run that produced the result, when the skill ran one.
type TaskResult struct {
	Command string
	Route   string
	Status  string
	Summary string
	Answer  string
	Payload map[string]any
	Context map[string]any
	Steps   []engine.NodeEvent
}
