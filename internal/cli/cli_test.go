package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/memgrep/internal/apierror"
	"github.com/mvp-joe/memgrep/internal/filter"
	"github.com/mvp-joe/memgrep/internal/search"
)

const sampleFiles = `[
	{"path": "src/main.go", "content": "package main\n\nfunc main() {}\n"},
	{"path": "README.md", "content": "Run Main to start.\n"},
	{"path": "notes.txt", "content": "nothing here\n"}
]`

// runCLI executes the command tree with an isolated home directory so no
// user settings leak into the test.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestSearchCommand(t *testing.T) {
	out, err := runCLI(t, sampleFiles, "search", "main", "--files", "-")
	require.NoError(t, err)

	var result search.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 2, result.TotalMatches)
	assert.Equal(t, 1, result.FilesWithMatches)
}

func TestSearchCommand_Flags(t *testing.T) {
	out, err := runCLI(t, sampleFiles, "search", "-i", "-l", "main")
	require.NoError(t, err)
	assert.JSONEq(t, `["README.md", "src/main.go"]`, out)

	out, err = runCLI(t, sampleFiles, "search", "main", "--options", `{"word_boundary": true, "case_insensitive": true, "output_format": "files_only"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `["README.md", "src/main.go"]`, out)

	out, err = runCLI(t, sampleFiles, "search", "--no-line-number", "absent")
	require.NoError(t, err)
	assert.JSONEq(t, `{"matches": [], "total_matches": 0, "files_with_matches": 0}`, out)

	_, err = runCLI(t, sampleFiles, "search", "--no-line-number", "func")
	var apiErr *apierror.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apierror.KindSearch, apiErr.Kind)
	assert.Equal(t, "Search error in file 'src/main.go': line numbers not enabled", apiErr.Message)
}

func TestSearchCommand_InvalidPattern(t *testing.T) {
	_, err := runCLI(t, sampleFiles, "search", "[unclosed")

	var apiErr *apierror.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apierror.KindInvalidPattern, apiErr.Kind)
}

func TestSearchCommand_MissingFilesFile(t *testing.T) {
	_, err := runCLI(t, "", "search", "main", "--files", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestFilterCommand(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "dir.json")
	writeFile(t, configPath, `{"root_path": "/repo", "file_types": ["*.go"]}`)

	out, err := runCLI(t, `["/repo/a.go", "/repo/b.md", "/repo/.c.go", "/repo/pkg/d.go"]`,
		"filter", "--dir-config", configPath)
	require.NoError(t, err)

	var entries []filter.FilePathEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Equal(t, []filter.FilePathEntry{
		{Path: "/repo/a.go", RelativePath: "a.go", Depth: 0},
		{Path: "/repo/pkg/d.go", RelativePath: "pkg/d.go", Depth: 1},
	}, entries)
}

func TestFilterCommand_RequiresDirConfig(t *testing.T) {
	_, err := runCLI(t, `[]`, "filter")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dir-config")
}

func TestSearchDirCommand(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "dir.json")
	writeFile(t, configPath, `{"root_path": "", "file_types": ["*.md"]}`)

	out, err := runCLI(t, sampleFiles, "search-dir", "-i", "main", "--dir-config", configPath)
	require.NoError(t, err)

	var result search.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 3, result.TotalMatches)
	assert.Equal(t, 2, result.FilesWithMatches)
}

func TestGrepCommands(t *testing.T) {
	out, err := runCLI(t, sampleFiles, "grep", "-i", "main")
	require.NoError(t, err)
	assert.JSONEq(t, `["README.md", "src/main.go"]`, out)

	out, err = runCLI(t, sampleFiles, "grep-cmd", "--", "grep", "-iw", "main")
	require.NoError(t, err)
	assert.JSONEq(t, `["README.md", "src/main.go"]`, out)

	_, err = runCLI(t, sampleFiles, "grep-cmd", "--", "grep", "-v", "main")
	var apiErr *apierror.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apierror.KindInvalidConfig, apiErr.Kind)
	assert.Equal(t, "Unknown flag: -v", apiErr.Message)
}

// scanTree lays out a small project:
//
//	.gitignore      build/ and *.log
//	.hidden.go      hidden
//	bin.dat         binary
//	build/out.go    gitignored
//	debug.log       gitignored
//	main.go
//	pkg/util.go
func scanTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".gitignore"), "build/\n*.log\n")
	writeFile(t, filepath.Join(dir, ".hidden.go"), "main\n")
	writeFile(t, filepath.Join(dir, "bin.dat"), "main\x00\x01\x02")
	writeFile(t, filepath.Join(dir, "build", "out.go"), "func main() {}\n")
	writeFile(t, filepath.Join(dir, "debug.log"), "main\n")
	writeFile(t, filepath.Join(dir, "main.go"), "package main\n\nfunc main() {}\n")
	writeFile(t, filepath.Join(dir, "pkg", "util.go"), "package util\n// main helper\n")
	return dir
}

func TestScanCommand(t *testing.T) {
	dir := scanTree(t)

	out, err := runCLI(t, "", "scan", "main", dir)
	require.NoError(t, err)
	assert.Equal(t, "main.go:1:package main\nmain.go:3:func main() {}\npkg/util.go:2:// main helper\n", out)
}

func TestScanCommand_Flags(t *testing.T) {
	dir := scanTree(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "files only",
			args: []string{"-l"},
			want: "main.go\npkg/util.go\n",
		},
		{
			name: "max depth",
			args: []string{"-l", "--max-depth", "0"},
			want: "main.go\n",
		},
		{
			name: "no ignore",
			args: []string{"-l", "--no-ignore"},
			want: "build/out.go\ndebug.log\nmain.go\npkg/util.go\n",
		},
		{
			name: "hidden",
			args: []string{"-l", "--hidden"},
			want: ".hidden.go\nmain.go\npkg/util.go\n",
		},
		{
			name: "file type",
			args: []string{"-l", "-t", "pkg/*"},
			want: "pkg/util.go\n",
		},
		{
			name: "ignore glob",
			args: []string{"-l", "--ignore", "pkg/*"},
			want: "main.go\n",
		},
		{
			name: "exclude override",
			args: []string{"-l", "--include", "*.go", "--exclude", "*util.go"},
			want: "main.go\n",
		},
		{
			name: "no line numbers",
			args: []string{"--no-line-number", "-w", "helper"},
			want: "pkg/util.go:// main helper\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"scan"}, tt.args...)
			if tt.name != "no line numbers" {
				args = append(args, "main")
			}
			args = append(args, dir)

			out, err := runCLI(t, "", args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestScanCommand_HiddenDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".venv", "lib", "site.py"), "needle\n")
	writeFile(t, filepath.Join(dir, "main.go"), "needle\n")

	out, err := runCLI(t, "", "scan", "needle", dir)
	require.NoError(t, err)
	assert.Equal(t, "main.go:1:needle\n", out)

	out, err = runCLI(t, "", "scan", "--hidden", "needle", dir)
	require.NoError(t, err)
	assert.Equal(t, ".venv/lib/site.py:1:needle\nmain.go:1:needle\n", out)
}

func TestScanCommand_JSON(t *testing.T) {
	dir := scanTree(t)
	root := filepath.ToSlash(dir)

	out, err := runCLI(t, "", "scan", "--json", "-l", "main", dir)
	require.NoError(t, err)

	var paths []string
	require.NoError(t, json.Unmarshal([]byte(out), &paths))
	assert.Equal(t, []string{root + "/main.go", root + "/pkg/util.go"}, paths)

	out, err = runCLI(t, "", "scan", "--json", "nomatch", dir)
	require.NoError(t, err)
	assert.JSONEq(t, `{"matches": [], "total_matches": 0, "files_with_matches": 0}`, out)
}

func TestScanCommand_Errors(t *testing.T) {
	dir := scanTree(t)

	_, err := runCLI(t, "", "scan", "(", dir)
	var apiErr *apierror.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apierror.KindInvalidPattern, apiErr.Kind)

	_, err = runCLI(t, "", "scan", "main", filepath.Join(dir, "main.go"))
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apierror.KindFile, apiErr.Kind)

	_, err = runCLI(t, "", "scan", "main", dir, "-t", "[")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apierror.KindInvalidConfig, apiErr.Kind)
}

func TestScanCommand_ProjectConfig(t *testing.T) {
	dir := scanTree(t)
	writeFile(t, filepath.Join(dir, ".memgrep.yaml"), "search:\n  case_insensitive: true\ndirectory:\n  max_depth: 0\n")
	writeFile(t, filepath.Join(dir, "upper.go"), "MAIN\n")

	out, err := runCLI(t, "", "scan", "-l", "main", dir)
	require.NoError(t, err)
	assert.Equal(t, "main.go\nupper.go\n", out)
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "memgrep "+Version)
}

func TestPrintError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printError(&buf, apierror.InvalidConfig("args", "No pattern provided"))
	assert.JSONEq(t, `{"type": "InvalidConfiguration", "message": "No pattern provided", "details": {"field": "args", "message": "No pattern provided"}}`, buf.String())

	buf.Reset()
	printError(&buf, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	tests := map[int]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -4200: "-4,200"}
	for n, want := range tests {
		assert.Equal(t, want, formatNumber(n))
	}
}
