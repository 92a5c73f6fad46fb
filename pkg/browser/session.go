// Package browser drives a single-page Chrome session over the DevTools
// protocol. It is sized for sequential scraping: one process, one page, every
// operation bounded by the session timeout.
package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Session owns a Chrome process and the page all operations run against.
// It is not safe for concurrent use.
type Session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	timeout  time.Duration
}

// Launch spawns Chrome with the given options, connects over CDP and opens
// the session page. The user data directory is created when missing so login
// cookies survive across sessions.
func Launch(ctx context.Context, opts Options) (*Session, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	l := launcher.New().
		Headless(opts.Headless).
		NoSandbox(opts.NoSandbox)
	if opts.ChromePath != "" {
		l = l.Bin(opts.ChromePath)
	}
	if opts.UserDataDir != "" {
		if err := os.MkdirAll(opts.UserDataDir, 0755); err != nil {
			return nil, &BrowserError{
				Code:    ErrCodeLaunch,
				Message: fmt.Sprintf("failed to create user data directory: %v", err),
			}
		}
		l = l.UserDataDir(opts.UserDataDir)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, &BrowserError{
			Code:    ErrCodeLaunch,
			Message: fmt.Sprintf("failed to launch Chrome: %v", err),
		}
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, &BrowserError{
			Code:    ErrCodeLaunch,
			Message: fmt.Sprintf("failed to connect to Chrome: %v", err),
		}
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		l.Kill()
		return nil, &BrowserError{
			Code:    ErrCodeLaunch,
			Message: fmt.Sprintf("failed to open page: %v", err),
		}
	}

	return &Session{
		launcher: l,
		browser:  b,
		page:     page,
		timeout:  timeout,
	}, nil
}

// Close shuts the browser down and releases the Chrome process. The user
// data directory stays in place for the next session.
func (s *Session) Close() error {
	err := s.browser.Close()
	s.launcher.Kill()
	if err != nil {
		return &BrowserError{
			Code:    ErrCodeShutdown,
			Message: fmt.Sprintf("failed to close browser: %v", err),
		}
	}
	return nil
}

// bind scopes the session page to the caller's context and the per-operation
// timeout.
func (s *Session) bind(ctx context.Context) *rod.Page {
	return s.page.Context(ctx).Timeout(s.timeout)
}

// Navigate opens the URL and waits for the page to finish loading.
func (s *Session) Navigate(ctx context.Context, url string) error {
	page := s.bind(ctx)
	if err := page.Navigate(url); err != nil {
		return &BrowserError{
			Code:    ErrCodeNavigation,
			Message: fmt.Sprintf("failed to navigate to %s: %v", url, err),
		}
	}
	if err := page.WaitLoad(); err != nil {
		return &BrowserError{
			Code:    ErrCodeTimeout,
			Message: fmt.Sprintf("page load timed out: %v", err),
		}
	}
	return nil
}

// Click waits for the first match of selector and clicks it.
func (s *Session) Click(ctx context.Context, selector string) error {
	elem, err := s.bind(ctx).Element(selector)
	if err != nil {
		return s.elementNotFound(selector, err)
	}
	if err := elem.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return &BrowserError{
			Code:    ErrCodeInteraction,
			Message: fmt.Sprintf("failed to click %s: %v", selector, err),
		}
	}
	return nil
}

// ClickAll clicks every current match of selector in document order and
// reports how many it clicked. Unlike Click it does not wait for a match.
func (s *Session) ClickAll(ctx context.Context, selector string) (int, error) {
	elems, err := s.bind(ctx).Elements(selector)
	if err != nil {
		return 0, &BrowserError{
			Code:    ErrCodeInteraction,
			Message: fmt.Sprintf("failed to query %s: %v", selector, err),
		}
	}
	for i, elem := range elems {
		if err := elem.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return i, &BrowserError{
				Code:    ErrCodeInteraction,
				Message: fmt.Sprintf("failed to click match %d of %s: %v", i, selector, err),
			}
		}
	}
	return len(elems), nil
}

// ClickNth clicks the current match of selector at the given index, without
// waiting for one to appear.
func (s *Session) ClickNth(ctx context.Context, selector string, index int) error {
	elems, err := s.bind(ctx).Elements(selector)
	if err != nil {
		return &BrowserError{
			Code:    ErrCodeInteraction,
			Message: fmt.Sprintf("failed to query %s: %v", selector, err),
		}
	}
	if index < 0 || index >= len(elems) {
		return &BrowserError{
			Code:    ErrCodeElementNotFound,
			Message: fmt.Sprintf("element not found: match %d of %s (%d present)", index, selector, len(elems)),
		}
	}
	if err := elems[index].Click(proto.InputMouseButtonLeft, 1); err != nil {
		return &BrowserError{
			Code:    ErrCodeInteraction,
			Message: fmt.Sprintf("failed to click match %d of %s: %v", index, selector, err),
		}
	}
	return nil
}

// Fill waits for the first match of selector and types value into it.
func (s *Session) Fill(ctx context.Context, selector, value string) error {
	elem, err := s.bind(ctx).Element(selector)
	if err != nil {
		return s.elementNotFound(selector, err)
	}
	if err := elem.Input(value); err != nil {
		return &BrowserError{
			Code:    ErrCodeInteraction,
			Message: fmt.Sprintf("failed to type into %s: %v", selector, err),
		}
	}
	return nil
}

// Texts returns the rendered text of every current match of selector.
func (s *Session) Texts(ctx context.Context, selector string) ([]string, error) {
	elems, err := s.bind(ctx).Elements(selector)
	if err != nil {
		return nil, &BrowserError{
			Code:    ErrCodeInteraction,
			Message: fmt.Sprintf("failed to query %s: %v", selector, err),
		}
	}
	texts := make([]string, 0, len(elems))
	for _, elem := range elems {
		text, err := elem.Text()
		if err != nil {
			return nil, &BrowserError{
				Code:    ErrCodeInteraction,
				Message: fmt.Sprintf("failed to read text of %s: %v", selector, err),
			}
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// HTML returns the serialized DOM of the current page.
func (s *Session) HTML(ctx context.Context) (string, error) {
	markup, err := s.bind(ctx).HTML()
	if err != nil {
		return "", &BrowserError{
			Code:    ErrCodeInteraction,
			Message: fmt.Sprintf("failed to read page HTML: %v", err),
		}
	}
	return markup, nil
}

// Exists reports whether selector matches anything right now.
func (s *Session) Exists(ctx context.Context, selector string) (bool, error) {
	has, _, err := s.page.Context(ctx).Has(selector)
	if err != nil {
		return false, &BrowserError{
			Code:    ErrCodeInteraction,
			Message: fmt.Sprintf("failed to query %s: %v", selector, err),
		}
	}
	return has, nil
}

func (s *Session) elementNotFound(selector string, err error) *BrowserError {
	return &BrowserError{
		Code:    ErrCodeElementNotFound,
		Message: fmt.Sprintf("element not found: %s", selector),
		Details: map[string]interface{}{
			"selector": selector,
			"timeout":  s.timeout.String(),
			"cause":    err.Error(),
		},
	}
}

// IsChromeInstalled checks if a usable browser binary can be found.
func IsChromeInstalled() bool {
	_, err := launcher.NewBrowser().Get()
	return err == nil
}
