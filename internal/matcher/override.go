package matcher

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/mvp-joe/memgrep/internal/pathutil"
)

// Override is an include/exclude rule set with whitelist semantics. Include
// rules are registered before exclude rules, so an exclude wins when both
// match. Rules are gitignore-style globs rooted at the search root.
type Override struct {
	patterns   []gitignore.Pattern
	whitelists int
}

// OverrideError reports the rule that failed to compile and whether it was
// an include or an exclude.
type OverrideError struct {
	Pattern string
	Exclude bool
	Cause   error
}

func (e *OverrideError) Error() string {
	kind := "override"
	if e.Exclude {
		kind = "exclude"
	}
	return "Invalid " + kind + " pattern '" + e.Pattern + "': " + e.Cause.Error()
}

func (e *OverrideError) Unwrap() error { return e.Cause }

// NewOverride compiles includes and excludes. Any invalid rule is fatal.
func NewOverride(includes, excludes []string) (*Override, error) {
	o := &Override{
		patterns: make([]gitignore.Pattern, 0, len(includes)+len(excludes)),
	}

	for _, pattern := range includes {
		if err := validateGlob(ruleBody(pattern)); err != nil {
			return nil, &OverrideError{Pattern: pattern, Cause: err}
		}
		// A plain gitignore rule "ignores"; overrides read that as a whitelist.
		// A "!" rule excludes and does not count as an include.
		o.patterns = append(o.patterns, gitignore.ParsePattern(pattern, nil))
		if !strings.HasPrefix(pattern, inclusionPrefix) {
			o.whitelists++
		}
	}

	for _, pattern := range excludes {
		if err := validateGlob(ruleBody(pattern)); err != nil {
			return nil, &OverrideError{Pattern: pattern, Exclude: true, Cause: err}
		}
		o.patterns = append(o.patterns, gitignore.ParsePattern(inclusionPrefix+pattern, nil))
	}

	return o, nil
}

// Match inverts the gitignore decision of the last matching rule.
func (o *Override) Match(relPath string) Decision {
	switch lastMatch(o.patterns, pathutil.SplitPath(relPath)) {
	case Ignore:
		return Whitelist
	case Whitelist:
		return Ignore
	default:
		return None
	}
}

// NumWhitelists reports the number of include rules.
func (o *Override) NumWhitelists() int { return o.whitelists }
