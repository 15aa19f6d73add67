package matcher

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/mvp-joe/memgrep/internal/pathutil"
)

const (
	commentPrefix   = "#"
	inclusionPrefix = "!"
)

// Gitignore classifies paths against the rules of one .gitignore file using
// go-git's pattern matcher. Within a file the last matching rule wins.
type Gitignore struct {
	patterns []gitignore.Pattern
	dropped  []string
}

// NewGitignore compiles content as the .gitignore file of dir. dir is resolved
// against rootPath the same way candidate paths are, so rules only apply to
// paths beneath it. Blank lines and comments are skipped; a line whose glob
// does not compile is dropped and recorded in Dropped.
func NewGitignore(rootPath, dir, content string) *Gitignore {
	domain := resolveDomain(rootPath, dir)

	g := &Gitignore{}
	for _, line := range splitLines(content) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, commentPrefix) {
			continue
		}

		body := ruleBody(trimmed)
		if body == "" || validateGlob(body) != nil {
			g.dropped = append(g.dropped, line)
			continue
		}

		g.patterns = append(g.patterns, gitignore.ParsePattern(line, domain))
	}

	return g
}

// Match returns the decision of the last rule matching relPath.
func (g *Gitignore) Match(relPath string) Decision {
	return lastMatch(g.patterns, pathutil.SplitPath(relPath))
}

// Len returns the number of compiled rules.
func (g *Gitignore) Len() int { return len(g.patterns) }

// Dropped returns the raw lines that failed to compile.
func (g *Gitignore) Dropped() []string { return g.dropped }

func lastMatch(patterns []gitignore.Pattern, segments []string) Decision {
	for i := len(patterns) - 1; i >= 0; i-- {
		switch patterns[i].Match(segments, false) {
		case gitignore.Exclude:
			return Ignore
		case gitignore.Include:
			return Whitelist
		}
	}
	return None
}

// resolveDomain turns the directory of a rules file into path segments
// relative to rootPath.
func resolveDomain(rootPath, dir string) []string {
	rel := dir
	if pathutil.IsAbs(dir) && pathutil.IsAbs(rootPath) {
		if stripped, ok := pathutil.StripPrefix(dir, rootPath); ok {
			rel = stripped
		}
	}

	segs := pathutil.SplitPath(rel)
	if len(segs) == 0 {
		return nil
	}
	return segs
}

// ruleBody strips the negation, anchoring and directory markers from a rule
// so its glob can be validated on its own.
func ruleBody(rule string) string {
	body := strings.TrimPrefix(rule, inclusionPrefix)
	body = strings.TrimPrefix(body, "/")
	body = strings.TrimSuffix(body, "/")
	return body
}

// splitLines splits content into lines, handling both \n and \r\n line endings.
func splitLines(content string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, content[start:i])
			start = i + 1
		} else if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			lines = append(lines, content[start:i])
			start = i + 2
			i++
		}
	}
	if start < len(content) {
		lines = append(lines, content[start:])
	}
	return lines
}
