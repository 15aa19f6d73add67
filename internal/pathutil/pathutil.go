// Package pathutil holds slash-separated path helpers shared by the matchers
// and the filter pipeline. Paths are host-supplied strings, so "/" is the only
// separator regardless of the platform memgrep runs on.
package pathutil

import "strings"

const sep = "/"

// IsAbs reports whether p is rooted.
func IsAbs(p string) bool {
	return strings.HasPrefix(p, sep)
}

// SplitPath splits a path into segments.
// It filters out empty and "." segments.
func SplitPath(p string) []string {
	if p == "" {
		return []string{}
	}

	parts := strings.Split(p, sep)
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}

	return segments
}

// StripPrefix removes base from p component by component. It reports false
// when p is not base itself or a descendant of it. "/projectX/a" is not under
// "/project".
func StripPrefix(p, base string) (string, bool) {
	pathSegs := SplitPath(p)
	baseSegs := SplitPath(base)
	if IsAbs(p) != IsAbs(base) || len(baseSegs) > len(pathSegs) {
		return "", false
	}

	for i, seg := range baseSegs {
		if pathSegs[i] != seg {
			return "", false
		}
	}

	return strings.Join(pathSegs[len(baseSegs):], sep), true
}

// Depth counts separators after trimming one leading separator. An empty
// path has depth 0.
func Depth(rel string) int {
	trimmed := strings.TrimPrefix(rel, sep)
	if trimmed == "" {
		return 0
	}
	return strings.Count(trimmed, sep)
}

// FileName returns the final component of p, or "" when p has none
// ("", "/", "." and paths ending in "..").
func FileName(p string) string {
	segs := SplitPath(p)
	if len(segs) == 0 {
		return ""
	}
	last := segs[len(segs)-1]
	if last == ".." {
		return ""
	}
	return last
}
