package mlol

import "fmt"

// AuthenticationError reports a failed login: the site rejected the
// credentials, or the login page no longer matches the expected layout.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

// ScrapeError reports that a page did not contain the content the client
// expected, which usually means the site layout changed.
type ScrapeError struct {
	Page     string
	Selector string
	Err      error
}

func (e *ScrapeError) Error() string {
	msg := fmt.Sprintf("scrape failed on %s: expected element %q", e.Page, e.Selector)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// scrapeErr builds a ScrapeError without a cause.
func scrapeErr(page, selector string) *ScrapeError {
	return &ScrapeError{Page: page, Selector: selector}
}

// scrapeErrWrap builds a ScrapeError around a cause.
func scrapeErrWrap(page, selector string, err error) *ScrapeError {
	return &ScrapeError{Page: page, Selector: selector, Err: err}
}
