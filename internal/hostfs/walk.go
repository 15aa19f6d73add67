// Package hostfs reads a directory tree from the local filesystem into the
// in-memory shapes the filter pipeline and the search engine consume.
package hostfs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mvp-joe/memgrep/internal/apierror"
	"github.com/mvp-joe/memgrep/internal/filter"
)

const gitignoreName = ".gitignore"

// Tree is the result of walking a directory.
type Tree struct {
	// Root is the absolute, slash-separated walk root.
	Root string
	// Files lists every regular file in lexical walk order.
	Files []string
	// Gitignores holds every .gitignore found, deepest directory first, so
	// nested rules are consulted before the ones above them.
	Gitignores []filter.GitignoreFile
}

// WalkOptions controls which directories Walk descends into.
type WalkOptions struct {
	// IncludeHidden enters directories whose name starts with a dot.
	IncludeHidden bool
}

// Walk collects the regular files under root along with the content of every
// .gitignore file. .git directories are never entered, and other hidden
// directories only when opts.IncludeHidden is set.
func Walk(ctx context.Context, root string, opts WalkOptions) (*Tree, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, apierror.File(fmt.Sprintf("Cannot access directory %s: %v", root, err), root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, apierror.File(fmt.Sprintf("Cannot access directory %s: %v", root, err), root, err)
	}
	if !info.IsDir() {
		return nil, apierror.File(fmt.Sprintf("%s is not a directory", root), root, nil)
	}

	tree := &Tree{Root: filepath.ToSlash(abs), Files: []string{}}

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if path == abs {
				return nil
			}
			if d.Name() == ".git" || (!opts.IncludeHidden && strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		slashPath := filepath.ToSlash(path)
		tree.Files = append(tree.Files, slashPath)

		if d.Name() == gitignoreName {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", slashPath, err)
			}
			tree.Gitignores = append(tree.Gitignores, filter.GitignoreFile{
				Path:    filepath.ToSlash(filepath.Dir(path)),
				Content: string(content),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.SliceStable(tree.Gitignores, func(i, j int) bool {
		return strings.Count(tree.Gitignores[i].Path, "/") > strings.Count(tree.Gitignores[j].Path, "/")
	})

	return tree, nil
}
