// Package filter implements the directory entry filtering pipeline: given a
// root, a Config and candidate paths, it keeps the paths that pass the depth,
// hidden-file, gitignore, override, file-type and ignore-pattern stages, in
// that order.
package filter

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mvp-joe/memgrep/internal/matcher"
	"github.com/mvp-joe/memgrep/internal/pathutil"
)

// Stage names double as the config field that configures them.
const (
	StageMaxDepth       = "max_depth"
	StageGitignore      = "gitignore_files"
	StageOverride       = "override_patterns"
	StageExclude        = "exclude_patterns"
	StageFileTypes      = "file_types"
	StageIgnorePatterns = "ignore_patterns"
)

// BuildError reports a matcher that could not be constructed.
type BuildError struct {
	Stage   string
	Pattern string
	Cause   error
}

func (e *BuildError) Error() string {
	return e.Cause.Error()
}

func (e *BuildError) Unwrap() error { return e.Cause }

// Verdict explains why a candidate was kept or dropped.
type Verdict int

const (
	Accepted Verdict = iota
	RejectedDepth
	RejectedHidden
	RejectedGitignore
	RejectedOverride
	RejectedFileType
	RejectedIgnorePattern
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case RejectedDepth:
		return "depth"
	case RejectedHidden:
		return "hidden"
	case RejectedGitignore:
		return "gitignore"
	case RejectedOverride:
		return "override"
	case RejectedFileType:
		return "file_type"
	case RejectedIgnorePattern:
		return "ignore_pattern"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Pipeline holds the compiled matchers for one Config. It is immutable after
// New returns.
type Pipeline struct {
	cfg        Config
	gitignores []matcher.PathMatcher
	override   matcher.OverrideMatcher
	fileTypes  matcher.Set
	ignores    matcher.Set
	logger     *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for dropped gitignore lines and verdicts.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New compiles every matcher cfg asks for. Any failure aborts construction.
func New(cfg Config, compiler matcher.Compiler, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}

	if cfg.MaxDepth != nil && *cfg.MaxDepth < 0 {
		return nil, &BuildError{
			Stage: StageMaxDepth,
			Cause: fmt.Errorf("max_depth must not be negative, got %d", *cfg.MaxDepth),
		}
	}

	if cfg.RespectGitignore {
		for _, gf := range cfg.GitignoreFiles {
			gi, err := compiler.Gitignore(cfg.RootPath, gf.Path, gf.Content)
			if err != nil {
				return nil, &BuildError{
					Stage:   StageGitignore,
					Pattern: gf.Path,
					Cause:   fmt.Errorf("Failed to build gitignore '%s': %w", gf.Path, err),
				}
			}
			if d, ok := gi.(interface{ Dropped() []string }); ok && len(d.Dropped()) > 0 {
				p.logger.Debug("dropped malformed gitignore lines",
					zap.String("gitignore", gf.Path),
					zap.Strings("lines", d.Dropped()))
			}
			p.gitignores = append(p.gitignores, gi)
		}
	}

	if len(cfg.OverridePatterns) > 0 || len(cfg.ExcludePatterns) > 0 {
		o, err := compiler.Override(cfg.OverridePatterns, cfg.ExcludePatterns)
		if err != nil {
			return nil, overrideBuildError(err)
		}
		p.override = o
	}

	if len(cfg.FileTypes) > 0 {
		set, err := compiler.GlobSet(cfg.FileTypes)
		if err != nil {
			return nil, globBuildError(StageFileTypes, "file type", err)
		}
		p.fileTypes = set
	}

	if len(cfg.IgnorePatterns) > 0 {
		set, err := compiler.GlobSet(cfg.IgnorePatterns)
		if err != nil {
			return nil, globBuildError(StageIgnorePatterns, "ignore", err)
		}
		p.ignores = set
	}

	return p, nil
}

// Evaluate runs one candidate through every stage and returns the annotated
// entry together with the verdict. The entry is only meaningful when the
// verdict is Accepted.
func (p *Pipeline) Evaluate(candidate string) (FilePathEntry, Verdict) {
	rel := p.relativePath(candidate)
	entry := FilePathEntry{
		Path:         candidate,
		RelativePath: rel,
		Depth:        pathutil.Depth(rel),
	}

	if p.cfg.MaxDepth != nil && entry.Depth > *p.cfg.MaxDepth {
		return entry, RejectedDepth
	}

	if !p.cfg.IncludeHidden && strings.HasPrefix(pathutil.FileName(candidate), ".") {
		return entry, RejectedHidden
	}

	if p.gitignored(rel) {
		return entry, RejectedGitignore
	}

	if p.override != nil {
		switch p.override.Match(rel) {
		case matcher.Ignore:
			return entry, RejectedOverride
		case matcher.None:
			if p.override.NumWhitelists() > 0 {
				return entry, RejectedOverride
			}
		}
	}

	if p.fileTypes != nil && !p.fileTypes.IsMatch(rel) {
		return entry, RejectedFileType
	}

	if p.ignores != nil && p.ignores.IsMatch(rel) {
		return entry, RejectedIgnorePattern
	}

	return entry, Accepted
}

// Filter returns the accepted candidates in input order.
func (p *Pipeline) Filter(candidates []string) []FilePathEntry {
	out := make([]FilePathEntry, 0, len(candidates))
	for _, candidate := range candidates {
		entry, verdict := p.Evaluate(candidate)
		if verdict != Accepted {
			p.logger.Debug("path filtered",
				zap.String("path", candidate),
				zap.Stringer("stage", verdict))
			continue
		}
		out = append(out, entry)
	}
	return out
}

// relativePath strips the root when both paths are absolute, falling back to
// the raw candidate when it is not under the root.
func (p *Pipeline) relativePath(candidate string) string {
	if pathutil.IsAbs(candidate) && pathutil.IsAbs(p.cfg.RootPath) {
		if rel, ok := pathutil.StripPrefix(candidate, p.cfg.RootPath); ok {
			return rel
		}
	}
	return candidate
}

// gitignored consults the gitignore matchers in order. The first explicit
// decision settles the path.
func (p *Pipeline) gitignored(rel string) bool {
	for _, gi := range p.gitignores {
		switch gi.Match(rel) {
		case matcher.Ignore:
			return true
		case matcher.Whitelist:
			return false
		}
	}
	return false
}

func overrideBuildError(err error) *BuildError {
	be := &BuildError{Stage: StageOverride, Cause: err}
	if oe, ok := err.(*matcher.OverrideError); ok {
		be.Pattern = oe.Pattern
		if oe.Exclude {
			be.Stage = StageExclude
		}
	}
	return be
}

func globBuildError(stage, label string, err error) *BuildError {
	be := &BuildError{Stage: stage, Cause: err}
	if pe, ok := err.(*matcher.PatternError); ok {
		be.Pattern = pe.Pattern
		be.Cause = fmt.Errorf("Invalid %s pattern '%s': %w", label, pe.Pattern, pe.Cause)
	}
	return be
}
