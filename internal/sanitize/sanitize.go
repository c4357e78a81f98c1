// Package sanitize cleans parameters arriving from front controllers before
// they reach a dispatch.
package sanitize

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxSize is the per-value limit in bytes.
	DefaultMaxSize = 4096
	// EnvMaxSize overrides DefaultMaxSize.
	EnvMaxSize = "HUMDRUM_MAX_PARAM_SIZE"
)

var (
	ErrTooLarge    = errors.New("value exceeds maximum allowed size")
	ErrInvalidUTF8 = errors.New("value contains invalid UTF-8 sequences")
)

// Sanitizer enforces a size limit and strips control characters.
type Sanitizer struct {
	MaxSize int
}

// New returns a Sanitizer using the limit from the environment, or
// DefaultMaxSize.
func New() *Sanitizer {
	return &Sanitizer{MaxSize: maxSizeFromEnv()}
}

// String validates one value. Values over the limit are rejected, not
// truncated. Newline, tab and carriage return survive; other control
// characters (ESC, NUL, BEL...) are removed.
func (s *Sanitizer) String(v string) (string, error) {
	limit := s.MaxSize
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	if len(v) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrTooLarge, len(v), limit)
	}
	if !utf8.ValidString(v) {
		return "", ErrInvalidUTF8
	}
	if strings.IndexFunc(v, unsafeControl) < 0 {
		return v, nil
	}

	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		if !unsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// Map sanitizes keys and values of params into a new map.
// The first failing entry aborts with an error naming the key.
func (s *Sanitizer) Map(params map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(params))
	for k, v := range params {
		key, err := s.String(k)
		if err != nil {
			return nil, fmt.Errorf("param name: %w", err)
		}
		val, err := s.String(v)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", key, err)
		}
		out[key] = val
	}
	return out, nil
}

// String sanitizes v with the default Sanitizer.
func String(v string) (string, error) {
	return New().String(v)
}

// Map sanitizes params with the default Sanitizer.
func Map(params map[string]string) (map[string]string, error) {
	return New().Map(params)
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

func maxSizeFromEnv() int {
	if val := os.Getenv(EnvMaxSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxSize
}
