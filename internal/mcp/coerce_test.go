package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/memgrep/internal/search"
)

type mockArgumentGetter struct {
	args map[string]interface{}
}

func (m *mockArgumentGetter) GetArguments() map[string]interface{} {
	return m.args
}

func TestCoerceBindArguments(t *testing.T) {
	t.Parallel()

	t.Run("native types", func(t *testing.T) {
		request := &mockArgumentGetter{args: map[string]interface{}{
			"pattern": "main",
			"files": []interface{}{
				map[string]interface{}{"path": "a.go", "content": "package main"},
			},
			"options": map[string]interface{}{"case_insensitive": true},
		}}

		var args searchArgs
		require.NoError(t, CoerceBindArguments(request, &args))
		assert.Equal(t, "main", args.Pattern)
		assert.Equal(t, []search.FileEntry{{Path: "a.go", Content: "package main"}}, args.Files)
		assert.Equal(t, map[string]interface{}{"case_insensitive": true}, args.Options)
	})

	t.Run("JSON-encoded strings", func(t *testing.T) {
		request := &mockArgumentGetter{args: map[string]interface{}{
			"pattern": "main",
			"files":   `[{"path": "a.go", "content": "package main"}]`,
			"options": `{"word_boundary": true}`,
		}}

		var args searchArgs
		require.NoError(t, CoerceBindArguments(request, &args))
		assert.Equal(t, []search.FileEntry{{Path: "a.go", Content: "package main"}}, args.Files)
		assert.Equal(t, map[string]interface{}{"word_boundary": true}, args.Options)
	})

	t.Run("comma separated list", func(t *testing.T) {
		request := &mockArgumentGetter{args: map[string]interface{}{
			"paths": "a.go,b.go",
		}}

		var args filterArgs
		require.NoError(t, CoerceBindArguments(request, &args))
		assert.Equal(t, []string{"a.go", "b.go"}, args.Paths)
	})

	t.Run("wrong shape", func(t *testing.T) {
		request := &mockArgumentGetter{args: map[string]interface{}{
			"files": 42,
		}}

		var args searchArgs
		assert.Error(t, CoerceBindArguments(request, &args))
	})
}

func TestJSONStringHookBool(t *testing.T) {
	t.Parallel()

	type flags struct {
		Enabled bool `json:"enabled"`
	}
	var f flags
	require.NoError(t, CoerceBindArguments(&mockArgumentGetter{args: map[string]interface{}{"enabled": "true"}}, &f))
	assert.True(t, f.Enabled)
}
