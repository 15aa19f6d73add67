package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{}, SplitPath(""))
	assert.Equal(t, []string{"a", "b"}, SplitPath("a/b"))
	assert.Equal(t, []string{"a", "b"}, SplitPath("/a//b/"))
	assert.Equal(t, []string{"a", "b"}, SplitPath("./a/./b"))
}

func TestStripPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   string
		base   string
		want   string
		wantOK bool
	}{
		{name: "child", path: "/project/src/main.go", base: "/project", want: "src/main.go", wantOK: true},
		{name: "base with trailing slash", path: "/project/src/main.go", base: "/project/", want: "src/main.go", wantOK: true},
		{name: "path equals base", path: "/project", base: "/project", want: "", wantOK: true},
		{name: "sibling with shared prefix", path: "/projectX/a.go", base: "/project", wantOK: false},
		{name: "outside base", path: "/other/a.go", base: "/project", wantOK: false},
		{name: "relative against absolute", path: "project/a.go", base: "/project", wantOK: false},
		{name: "root base", path: "/a/b", base: "/", want: "a/b", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := StripPrefix(tt.path, tt.base)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDepth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Depth(""))
	assert.Equal(t, 0, Depth("main.go"))
	assert.Equal(t, 2, Depth("a/b/c.txt"))
	assert.Equal(t, 1, Depth("/a/b"))
	assert.Equal(t, 0, Depth("/"))
}

func TestFileName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "c.txt", FileName("a/b/c.txt"))
	assert.Equal(t, ".env", FileName("/project/.env"))
	assert.Equal(t, "b", FileName("a/b/"))
	assert.Equal(t, "", FileName(""))
	assert.Equal(t, "", FileName("/"))
	assert.Equal(t, "", FileName("."))
	assert.Equal(t, "", FileName("a/.."))
}
