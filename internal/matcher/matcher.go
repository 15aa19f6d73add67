// Package matcher adapts third-party glob and gitignore engines to the
// tri-state decisions used by the entry filter pipeline.
//
// Compilation is reached through the Compiler interface so the pipeline's
// ordering logic does not depend on which libraries back it.
package matcher

// Decision is the verdict of a gitignore-style matcher for one path.
type Decision int

const (
	// None means no rule expressed an opinion.
	None Decision = iota
	// Ignore means a rule excluded the path.
	Ignore
	// Whitelist means a rule explicitly re-included the path.
	Whitelist
)

func (d Decision) String() string {
	switch d {
	case Ignore:
		return "ignore"
	case Whitelist:
		return "whitelist"
	default:
		return "none"
	}
}

// PathMatcher classifies a relative path.
type PathMatcher interface {
	Match(relPath string) Decision
}

// OverrideMatcher is a PathMatcher with whitelist semantics.
type OverrideMatcher interface {
	PathMatcher
	// NumWhitelists reports how many inclusion rules were registered.
	NumWhitelists() int
}

// Set is a yes/no membership predicate over a set of globs.
type Set interface {
	IsMatch(relPath string) bool
}

// Compiler builds matchers from raw pattern text.
type Compiler interface {
	// Gitignore compiles one .gitignore file located in dir. rootPath is the
	// directory candidates are made relative to. Lines that fail to compile
	// are dropped.
	Gitignore(rootPath, dir, content string) (PathMatcher, error)
	// Override compiles include rules and exclude rules into one matcher.
	Override(includes, excludes []string) (OverrideMatcher, error)
	// GlobSet compiles patterns into one membership predicate.
	GlobSet(patterns []string) (Set, error)
}
