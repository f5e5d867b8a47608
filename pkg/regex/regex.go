// Package regex provides the ECMA-262 regular expression dialect used by
// the pattern and patternProperties keywords.
package regex

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

// Engine checks and evaluates regular expressions.
type Engine interface {
	// IsValid reports whether pattern compiles.
	IsValid(pattern string) bool
	// Matches reports whether pattern matches anywhere in subject.
	// An invalid pattern matches nothing. An error means the match could not
	// be decided, for example because it ran out of time.
	Matches(pattern, subject string) (bool, error)
}

// ErrTimeout means a match ran longer than the engine's timeout.
var ErrTimeout = errors.New("regex match timed out")

// DefaultTimeout bounds a single match.
const DefaultTimeout = time.Second

// ECMA is an Engine backed by regexp2 in ECMAScript mode. Compiled patterns
// are memoized. It is safe for concurrent use.
type ECMA struct {
	timeout  time.Duration
	compiled sync.Map // pattern -> *regexp2.Regexp, or error
}

// Option configures an ECMA engine.
type Option func(*ECMA)

// WithTimeout sets the per-match timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(e *ECMA) { e.timeout = d }
}

// NewECMA returns a new ECMA engine.
func NewECMA(opts ...Option) *ECMA {
	e := &ECMA{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compile returns the compiled form of pattern.
func (e *ECMA) Compile(pattern string) (*regexp2.Regexp, error) {
	if v, ok := e.compiled.Load(pattern); ok {
		if err, isErr := v.(error); isErr {
			return nil, err
		}
		return v.(*regexp2.Regexp), nil
	}
	re, err := regexp2.Compile(pattern, regexp2.ECMAScript)
	if err != nil {
		e.compiled.Store(pattern, err)
		return nil, err
	}
	if e.timeout > 0 {
		re.MatchTimeout = e.timeout
	}
	v, _ := e.compiled.LoadOrStore(pattern, re)
	return v.(*regexp2.Regexp), nil
}

func (e *ECMA) IsValid(pattern string) bool {
	_, err := e.Compile(pattern)
	return err == nil
}

func (e *ECMA) Matches(pattern, subject string) (bool, error) {
	re, err := e.Compile(pattern)
	if err != nil {
		return false, nil
	}
	ok, err := re.MatchString(subject)
	if err != nil {
		// regexp2 only fails a match when MatchTimeout elapses.
		return false, fmt.Errorf("%w: pattern %q after %v", ErrTimeout, pattern, e.timeout)
	}
	return ok, nil
}
