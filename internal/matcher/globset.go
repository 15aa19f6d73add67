package matcher

import (
	"fmt"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// GlobSet matches a path against any of a set of shell globs. Globs are
// compiled without separators, so "*" also crosses "/" and "*.js" matches
// "src/app.js".
type GlobSet struct {
	patterns []compiledPattern
}

// PatternError reports the glob that failed to compile.
type PatternError struct {
	Pattern string
	Cause   error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid glob %q: %v", e.Pattern, e.Cause)
}

func (e *PatternError) Unwrap() error { return e.Cause }

// NewGlobSet compiles every pattern. The first failure aborts compilation.
func NewGlobSet(patterns []string) (*GlobSet, error) {
	gs := &GlobSet{patterns: make([]compiledPattern, 0, len(patterns))}
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, &PatternError{Pattern: pattern, Cause: err}
		}
		gs.patterns = append(gs.patterns, compiledPattern{pattern: pattern, glob: g})
	}
	return gs, nil
}

// IsMatch reports whether any glob matches relPath.
func (gs *GlobSet) IsMatch(relPath string) bool {
	for _, cp := range gs.patterns {
		if cp.glob.Match(relPath) {
			return true
		}
	}
	return false
}

// Len returns the number of compiled globs.
func (gs *GlobSet) Len() int { return len(gs.patterns) }

// validateGlob checks that the glob body of a gitignore-style rule compiles.
func validateGlob(body string) error {
	if _, err := glob.Compile(body, '/'); err != nil {
		return &PatternError{Pattern: body, Cause: err}
	}
	return nil
}
