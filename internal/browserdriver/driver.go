// Package browserdriver is the boundary between nerva and an actual
// browser process. Everything above this package — the Playbook
// Runner, the Vision-Action Agent, the lookup/research/generic_browser
// skills — talks to a Driver, never to chromedp directly.
package browserdriver

import (
	"context"
	"time"
)

// Driver is the minimal set of browser actions nerva's automation
// layer needs. Action is dispatched by name so declarative
// PlaybookSteps can name an action as data (matching the original
// playbook runner's getattr(browser, step.action) dispatch) without
// the driver interface growing a method per action.
type Driver struct {
	Navigate         func(ctx context.Context, url string) error
	Click            func(ctx context.Context, selector string) error
	Fill             func(ctx context.Context, selector, text string) error
	Evaluate         func(ctx context.Context, script string, result *string) error
	WaitForSelector  func(ctx context.Context, selector string, timeoutMS int) error
	Screenshot       func(ctx context.Context) ([]byte, error)
	InnerText        func(ctx context.Context, selector string) (string, error)
	Title            func(ctx context.Context) (string, error)
	PressKey         func(ctx context.Context, key string) error
	Select           func(ctx context.Context, selector, value string) error
	Close            func(ctx context.Context) error
}

// Dispatch runs the named action against the driver with the given
// params, mirroring the original playbook runner's dynamic
// getattr(browser, step.action)(**params) call.
func (d *Driver) Dispatch(ctx context.Context, action string, params map[string]any) (any, error) {
	switch action {
	case "navigate":
		url, _ := params["url"].(string)
		return nil, d.Navigate(ctx, url)
	case "click":
		selector, _ := params["selector"].(string)
		return nil, d.Click(ctx, selector)
	case "fill":
		selector, _ := params["selector"].(string)
		text, _ := params["text"].(string)
		return nil, d.Fill(ctx, selector, text)
	case "evaluate":
		script, _ := params["script"].(string)
		var result string
		err := d.Evaluate(ctx, script, &result)
		return result, err
	case "wait_for_selector":
		selector, _ := params["selector"].(string)
		timeout, _ := params["timeout"].(int)
		if timeout == 0 {
			timeout = 45000
		}
		return nil, d.WaitForSelector(ctx, selector, timeout)
	case "wait":
		if selector, ok := params["selector"].(string); ok && selector != "" {
			timeout, _ := params["timeout"].(int)
			return nil, d.WaitForSelector(ctx, selector, timeout)
		}
		ms, _ := params["duration_ms"].(int)
		select {
		case <-time.After(time.Duration(ms) * time.Millisecond):
			return nil, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	case "press_key":
		key, _ := params["key"].(string)
		return nil, d.PressKey(ctx, key)
	case "select":
		selector, _ := params["selector"].(string)
		value, _ := params["value"].(string)
		return nil, d.Select(ctx, selector, value)
	case "screenshot":
		return d.Screenshot(ctx)
	case "inner_text":
		selector, _ := params["selector"].(string)
		return d.InnerText(ctx, selector)
	case "title":
		return d.Title(ctx)
	default:
		return nil, &UnknownActionError{Action: action}
	}
}

// UnknownActionError is returned when a PlaybookStep names an action
// the Driver does not implement.
type UnknownActionError struct {
	Action string
}

func (e *UnknownActionError) Error() string {
	return "browserdriver: unknown action " + e.Action
}
