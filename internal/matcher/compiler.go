package matcher

// Libraries is the Compiler backed by go-git gitignore patterns and gobwas
// globs.
type Libraries struct{}

// NewCompiler returns the default Compiler.
func NewCompiler() Compiler {
	return Libraries{}
}

func (Libraries) Gitignore(rootPath, dir, content string) (PathMatcher, error) {
	return NewGitignore(rootPath, dir, content), nil
}

func (Libraries) Override(includes, excludes []string) (OverrideMatcher, error) {
	o, err := NewOverride(includes, excludes)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (Libraries) GlobSet(patterns []string) (Set, error) {
	gs, err := NewGlobSet(patterns)
	if err != nil {
		return nil, err
	}
	return gs, nil
}
