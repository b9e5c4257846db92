package browserdriver

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"nerva/internal/logging"
)

var log = logging.New("browserdriver")

func msToDuration(ms int) time.Duration {
	if ms <= 0 {
		ms = 45000
	}
	return time.Duration(ms) * time.Millisecond
}

// NewChromeDriver starts a chromedp-controlled Chrome instance and
// returns a Driver backed by it, plus a close func the caller must
// invoke to tear the browser process down.
func NewChromeDriver(ctx context.Context, headless bool) (*Driver, func(), error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, nil, fmt.Errorf("browserdriver: start chrome: %w", err)
	}

	close := func() {
		cancelBrowser()
		cancelAlloc()
	}

	d := &Driver{
		Navigate: func(ctx context.Context, url string) error {
			log.Debug("navigate", "url", url)
			return chromedp.Run(browserCtx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery))
		},
		Click: func(ctx context.Context, selector string) error {
			log.Debug("click", "selector", selector)
			return chromedp.Run(browserCtx, chromedp.Click(selector, chromedp.ByQuery))
		},
		Fill: func(ctx context.Context, selector, text string) error {
			log.Debug("fill", "selector", selector)
			return chromedp.Run(browserCtx, chromedp.SetValue(selector, text, chromedp.ByQuery))
		},
		Evaluate: func(ctx context.Context, script string, result *string) error {
			return chromedp.Run(browserCtx, chromedp.Evaluate(script, result))
		},
		WaitForSelector: func(ctx context.Context, selector string, timeoutMS int) error {
			waitCtx, cancel := context.WithTimeout(browserCtx, msToDuration(timeoutMS))
			defer cancel()
			return chromedp.Run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery))
		},
		Screenshot: func(ctx context.Context) ([]byte, error) {
			var buf []byte
			err := chromedp.Run(browserCtx, chromedp.CaptureScreenshot(&buf))
			return buf, err
		},
		InnerText: func(ctx context.Context, selector string) (string, error) {
			var text string
			err := chromedp.Run(browserCtx, chromedp.Text(selector, &text, chromedp.ByQuery))
			return text, err
		},
		Title: func(ctx context.Context) (string, error) {
			var title string
			err := chromedp.Run(browserCtx, chromedp.Title(&title))
			return title, err
		},
		PressKey: func(ctx context.Context, key string) error {
			log.Debug("press_key", "key", key)
			return chromedp.Run(browserCtx, chromedp.KeyEvent(key))
		},
		Select: func(ctx context.Context, selector, value string) error {
			log.Debug("select", "selector", selector)
			return chromedp.Run(browserCtx, chromedp.SetValue(selector, value, chromedp.ByQuery))
		},
		Close: func(ctx context.Context) error {
			close()
			return nil
		},
	}

	return d, close, nil
}
