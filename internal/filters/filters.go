// Package filters implements the command authorization gate.
//
// Rule definitions live in *.filters files under the configured search
// directories. Each file is sectioned key/value text with a [Filters]
// section, one rule per key:
//
//	[Filters]
//	ip: CommandFilter, ip, root
//	ip_netns: RegExpFilter, ip, root, ip, netns, exec, .+, .*
//	readlog: PathFilter, cat, root, /var/log
//
// Matching is first-rule-wins across files in directory order. The gate
// never rewrites the command tokens; it only returns a permit/deny
// verdict.
package filters

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Filter kinds understood by the rule loader.
const (
	KindCommand = "CommandFilter"
	KindRegExp  = "RegExpFilter"
	KindPath    = "PathFilter"
)

// Rule is one parsed filter definition.
type Rule struct {
	// Name is the rule's key in its [Filters] section.
	Name string

	// Kind is one of the Kind* constants.
	Kind string

	// Exec is the executable path or bare name the first token must
	// resolve to.
	Exec string

	// RunAs is the privilege the wrapped command runs under. Recorded
	// for the management plane; not enforced locally.
	RunAs string

	// Args are the kind-specific argument constraints.
	Args []string
}

// Matcher decides whether a command is permitted. The relay pipeline
// depends only on this interface so tests can substitute a fake.
type Matcher interface {
	// Match returns the first rule permitting tokens under the given
	// exec directories, or false when no rule matches.
	Match(tokens []string, execDirs []string) (*Rule, bool)
}

// RuleSet is the concrete Matcher over loaded rule definitions.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet builds a RuleSet from already-parsed rules, in order.
func NewRuleSet(rules []Rule) *RuleSet {
	return &RuleSet{rules: rules}
}

// Rules returns the loaded rules in evaluation order.
func (rs *RuleSet) Rules() []Rule {
	return rs.rules
}

// Match implements Matcher. Rules are evaluated in load order and the
// first match wins.
func (rs *RuleSet) Match(tokens []string, execDirs []string) (*Rule, bool) {
	if len(tokens) == 0 {
		return nil, false
	}
	for i := range rs.rules {
		if rs.rules[i].matches(tokens, execDirs) {
			return &rs.rules[i], true
		}
	}
	return nil, false
}

func (r *Rule) matches(tokens []string, execDirs []string) bool {
	resolved, ok := resolveExec(r.Exec, execDirs)
	if !ok || !commandMatches(tokens[0], resolved) {
		return false
	}

	switch r.Kind {
	case KindCommand:
		return r.matchCommandArgs(tokens[1:])
	case KindRegExp:
		return r.matchRegExpTokens(tokens)
	case KindPath:
		return r.matchPathArgs(tokens[1:])
	}
	return false
}

// matchCommandArgs permits any arguments when the rule lists none,
// otherwise requires an exact literal argument match.
func (r *Rule) matchCommandArgs(args []string) bool {
	if len(r.Args) == 0 {
		return true
	}
	if len(args) != len(r.Args) {
		return false
	}
	for i, want := range r.Args {
		if args[i] != want {
			return false
		}
	}
	return true
}

// matchRegExpTokens requires one anchored pattern per token, covering
// the command token itself.
func (r *Rule) matchRegExpTokens(tokens []string) bool {
	if len(tokens) != len(r.Args) {
		return false
	}
	for i, pattern := range r.Args {
		re, err := regexp.Compile("^(?:" + pattern + ")$")
		if err != nil {
			return false
		}
		if !re.MatchString(tokens[i]) {
			return false
		}
	}
	return true
}

// matchPathArgs requires one spec per argument: "pass" admits any
// token, an absolute directory requires the token to live under it,
// anything else must match literally.
func (r *Rule) matchPathArgs(args []string) bool {
	if len(args) != len(r.Args) {
		return false
	}
	for i, spec := range r.Args {
		switch {
		case spec == "pass":
			// any token allowed
		case filepath.IsAbs(spec):
			if !withinDir(args[i], spec) {
				return false
			}
		default:
			if args[i] != spec {
				return false
			}
		}
	}
	return true
}

// resolveExec resolves a rule's executable reference to an absolute
// path. An absolute reference must exist as given; a bare name is
// searched under the exec directories in order.
func resolveExec(exec string, execDirs []string) (string, bool) {
	if filepath.IsAbs(exec) {
		if fileExists(exec) {
			return exec, true
		}
		return "", false
	}
	for _, dir := range execDirs {
		candidate := filepath.Join(dir, exec)
		if fileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// commandMatches accepts the requested token as either the resolved
// absolute path or its bare name.
func commandMatches(token, resolved string) bool {
	return token == resolved || token == filepath.Base(resolved)
}

// withinDir reports whether path is an absolute path under dir.
func withinDir(path, dir string) bool {
	if !filepath.IsAbs(path) {
		return false
	}
	rel, err := filepath.Rel(dir, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
