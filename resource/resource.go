// Package resource models one playable item bound to an engine handle.
package resource

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/anisan-cli/playerview/engine"
	"github.com/google/uuid"
)

// Resource is an immutable playable item. It is replaced, never mutated, on each play request.
type Resource struct {
	ID        string
	Handle    engine.Handle
	Locator   string
	CreatedAt time.Time
}

// New wraps an engine handle resolved from locator.
func New(handle engine.Handle, locator string) *Resource {
	return &Resource{
		ID:        uuid.NewString(),
		Handle:    handle,
		Locator:   locator,
		CreatedAt: time.Now(),
	}
}

// Valid reports whether r refers to an engine resource.
func (r *Resource) Valid() bool {
	return r != nil && r.Handle.Valid()
}

func (r *Resource) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s (#%d)", r.Locator, r.Handle)
}

// ParseLocator validates a raw source string and returns its canonical form.
// Remote sources must be http(s) URLs; file URLs and bare paths resolve to a cleaned local path.
// Every failure wraps engine.ErrInvalidLocator.
func ParseLocator(raw string) (string, error) {
	l := strings.TrimSpace(raw)
	if l == "" {
		return "", fmt.Errorf("%w: empty", engine.ErrInvalidLocator)
	}

	if strings.ContainsFunc(l, unicode.IsControl) {
		return "", fmt.Errorf("%w: control characters", engine.ErrInvalidLocator)
	}

	// Engines launched as processes would read a leading dash as a flag.
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("%w: must not start with '-'", engine.ErrInvalidLocator)
	}

	if strings.ContainsFunc(l, unicode.IsSpace) {
		return "", fmt.Errorf("%w: contains whitespace", engine.ErrInvalidLocator)
	}

	if !strings.Contains(l, "://") {
		return filepath.Clean(l), nil
	}

	u, err := url.Parse(l)
	if err != nil {
		return "", fmt.Errorf("%w: %w", engine.ErrInvalidLocator, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return "", fmt.Errorf("%w: missing host", engine.ErrInvalidLocator)
		}
		return u.String(), nil
	case "file":
		if u.Path == "" {
			return "", fmt.Errorf("%w: missing path", engine.ErrInvalidLocator)
		}
		return filepath.Clean(u.Path), nil
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", engine.ErrInvalidLocator, u.Scheme)
	}
}
