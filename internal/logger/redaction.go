package logger

import (
	"io"
	"regexp"
	"strings"
	"sync"
)

const redactionMask = "[REDACTED]"

// Redactor masks credentials in log output. Besides generic patterns it
// masks exact literals registered via AddSecret, which keeps the account
// password out of the logs no matter which field carries it.
type Redactor struct {
	mu       sync.RWMutex
	patterns []*regexp.Regexp
	secrets  []string
}

// NewRedactor creates a redactor with the default credential patterns
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []*regexp.Regexp{
			// password/token/secret fields in JSON, form bodies or key=value dumps
			regexp.MustCompile(`(?i)"?(password|passwd|token|secret)"?\s*[:=]\s*"?[^"\s,}&]+"?`),

			// credentials embedded in URLs
			regexp.MustCompile(`://[^/\s:@]+:[^@\s]+@`),

			// environment-style credential assignments
			regexp.MustCompile(`MLOL_PASSWORD=\S+`),
		},
	}
}

// AddSecret registers an exact literal to mask. Short literals are ignored
// to avoid wiping out unrelated text.
func (r *Redactor) AddSecret(secret string) {
	if len(secret) < 4 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.secrets = append(r.secrets, secret)
}

// Redact masks credentials in a string
func (r *Redactor) Redact(s string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := s
	for _, secret := range r.secrets {
		result = strings.ReplaceAll(result, secret, redactionMask)
	}
	for _, pattern := range r.patterns {
		result = pattern.ReplaceAllString(result, redactionMask)
	}
	return result
}

// Wrap wraps an io.Writer to redact credentials on the way through
func (r *Redactor) Wrap(w io.Writer) io.Writer {
	return &redactingWriter{
		writer:   w,
		redactor: r,
	}
}

// redactingWriter is an io.Writer that redacts credentials
type redactingWriter struct {
	writer   io.Writer
	redactor *Redactor
}

func (w *redactingWriter) Write(p []byte) (n int, err error) {
	redacted := w.redactor.Redact(string(p))
	if _, err := w.writer.Write([]byte(redacted)); err != nil {
		return 0, err
	}
	// Masking shortens the payload; report the original length so callers
	// do not mistake the difference for a short write.
	return len(p), nil
}
