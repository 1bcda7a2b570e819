package scraper

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeFetcher renders a page in headless Chrome and returns its HTML.
// Professor pages are client-side rendered, so a plain GET is not enough.
type ChromeFetcher struct {
	Timeout   time.Duration
	UserAgent string
}

func (f ChromeFetcher) Fetch(ctx context.Context, link string) (string, error) {
	if strings.TrimSpace(link) == "" {
		return "", errors.New("invalid url")
	}

	timeout := f.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
	)
	if f.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(f.UserAgent))
	}
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(bctx,
		chromedp.Navigate(link),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", err
	}
	return html, nil
}
