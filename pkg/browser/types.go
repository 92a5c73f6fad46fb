package browser

import "time"

// DefaultTimeout bounds a single browser operation when Options.Timeout is
// left unset.
const DefaultTimeout = 30 * time.Second

// Options configure a browser session.
type Options struct {
	Headless    bool
	NoSandbox   bool
	ChromePath  string        // empty lets rod locate or download a browser
	UserDataDir string        // empty uses a throwaway profile
	Timeout     time.Duration // per-operation budget, DefaultTimeout when zero
}

// BrowserError describes a failed browser operation.
type BrowserError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *BrowserError) Error() string {
	return e.Message
}

// Error codes
const (
	ErrCodeLaunch          = "LAUNCH_ERROR"
	ErrCodeShutdown        = "SHUTDOWN_ERROR"
	ErrCodeNavigation      = "NAVIGATION_ERROR"
	ErrCodeTimeout         = "TIMEOUT_ERROR"
	ErrCodeElementNotFound = "ELEMENT_NOT_FOUND"
	ErrCodeInteraction     = "INTERACTION_ERROR"
)
