package browserdriver

import "context"

// NewMockDriver returns a Driver whose actions just record what was
// called, for use in playbook/vision-agent tests without a real
// browser process.
func NewMockDriver() (*Driver, *MockLog) {
	ml := &MockLog{}
	d := &Driver{
		Navigate: func(ctx context.Context, url string) error {
			ml.Calls = append(ml.Calls, "navigate:"+url)
			return nil
		},
		Click: func(ctx context.Context, selector string) error {
			ml.Calls = append(ml.Calls, "click:"+selector)
			return nil
		},
		Fill: func(ctx context.Context, selector, text string) error {
			ml.Calls = append(ml.Calls, "fill:"+selector+"="+text)
			return nil
		},
		Evaluate: func(ctx context.Context, script string, result *string) error {
			ml.Calls = append(ml.Calls, "evaluate:"+script)
			*result = ml.EvaluateResult
			return nil
		},
		WaitForSelector: func(ctx context.Context, selector string, timeoutMS int) error {
			ml.Calls = append(ml.Calls, "wait_for_selector:"+selector)
			return ml.WaitErr
		},
		Screenshot: func(ctx context.Context) ([]byte, error) {
			ml.Calls = append(ml.Calls, "screenshot")
			return ml.ScreenshotBytes, nil
		},
		InnerText: func(ctx context.Context, selector string) (string, error) {
			ml.Calls = append(ml.Calls, "inner_text:"+selector)
			return ml.InnerTextResult, nil
		},
		Title: func(ctx context.Context) (string, error) {
			ml.Calls = append(ml.Calls, "title")
			return ml.TitleResult, nil
		},
		PressKey: func(ctx context.Context, key string) error {
			ml.Calls = append(ml.Calls, "press_key:"+key)
			return nil
		},
		Select: func(ctx context.Context, selector, value string) error {
			ml.Calls = append(ml.Calls, "select:"+selector+"="+value)
			return nil
		},
		Close: func(ctx context.Context) error {
			ml.Calls = append(ml.Calls, "close")
			return nil
		},
	}
	return d, ml
}

// MockLog records calls made against a mock Driver and lets tests
// script canned return values.
type MockLog struct {
	Calls           []string
	EvaluateResult  string
	ScreenshotBytes []byte
	InnerTextResult string
	TitleResult     string
	WaitErr         error
}
