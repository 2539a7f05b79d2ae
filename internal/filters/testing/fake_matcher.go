// Package testing provides test doubles for the filters package.
package testing

import (
	"sync"

	"github.com/xapi-tools/xenwrap/internal/filters"
)

// MatchCall records one Match invocation for assertions.
type MatchCall struct {
	Tokens   []string
	ExecDirs []string
}

// FakeMatcher is a configurable filters.Matcher for tests.
// It permits everything or nothing depending on Allow, and records
// every call so tests can assert the gate saw unmodified tokens and
// was consulted exactly once.
type FakeMatcher struct {
	mu sync.Mutex

	// Allow controls the verdict for every call.
	Allow bool

	// Rule is returned on a permitted match. Optional.
	Rule *filters.Rule

	// Calls holds every Match invocation in order.
	Calls []MatchCall
}

// Match implements filters.Matcher.
func (f *FakeMatcher) Match(tokens []string, execDirs []string) (*filters.Rule, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, MatchCall{
		Tokens:   append([]string(nil), tokens...),
		ExecDirs: append([]string(nil), execDirs...),
	})

	if !f.Allow {
		return nil, false
	}
	rule := f.Rule
	if rule == nil {
		rule = &filters.Rule{Name: "fake", Kind: filters.KindCommand, Exec: tokens[0], RunAs: "root"}
	}
	return rule, true
}
