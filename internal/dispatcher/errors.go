package dispatcher

import "errors"

// Sentinel errors surfaced by Dispatch and its clarifiers. An error
// returned by a skill handler is passed back to the caller as the
// handler produced it.
var (
	ErrAmbiguous  = errors.New("dispatcher: command remained ambiguous after clarification")
	ErrRefused    = errors.New("dispatcher: command refused by safety gate")
	ErrUnroutable = errors.New("dispatcher: no handler registered for route")
	ErrCancelled  = errors.New("dispatcher: cancelled")
)
