package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreview(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "short input unchanged", input: `[{"path":1}]`, want: `[{"path":1}]`},
		{name: "exactly 100 bytes", input: strings.Repeat("a", 100), want: strings.Repeat("a", 100)},
		{name: "long input truncated", input: strings.Repeat("b", 150), want: strings.Repeat("b", 100) + "..."},
		{name: "multibyte under 100 chars but over 100 bytes", input: strings.Repeat("é", 60), want: strings.Repeat("é", 60) + "..."},
		{name: "multibyte truncated on character boundary", input: strings.Repeat("é", 120), want: strings.Repeat("é", 100) + "..."},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preview(tt.input))
		})
	}
}

func TestJSON_Shapes(t *testing.T) {
	t.Parallel()

	t.Run("parse error carries preview", func(t *testing.T) {
		payload := JSON(Parse("Failed to parse files: boom", "not json", nil))

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(payload), &got))
		assert.Equal(t, "ParseError", got["type"])
		assert.Equal(t, "Failed to parse files: boom", got["message"])
		details := got["details"].(map[string]any)
		assert.Equal(t, "not json", details["input_preview"])
		assert.NotContains(t, details, "pattern")
	})

	t.Run("invalid pattern carries raw pattern", func(t *testing.T) {
		payload := JSON(InvalidPattern("(abc", "Invalid regex pattern: missing )", nil))

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(payload), &got))
		assert.Equal(t, "InvalidPattern", got["type"])
		details := got["details"].(map[string]any)
		assert.Equal(t, "(abc", details["pattern"])
		assert.Equal(t, "Invalid regex pattern: missing )", details["message"])
	})

	t.Run("invalid configuration names field", func(t *testing.T) {
		payload := JSON(InvalidConfig("args", "No pattern provided"))
		assert.JSONEq(t,
			`{"type":"InvalidConfiguration","details":{"field":"args","message":"No pattern provided"},"message":"No pattern provided"}`,
			payload)
	})

	t.Run("file error omits empty path", func(t *testing.T) {
		assert.JSONEq(t,
			`{"type":"FileError","details":{"message":"gone"},"message":"gone"}`,
			JSON(File("gone", "", nil)))
		assert.JSONEq(t,
			`{"type":"FileError","details":{"message":"gone","path":"a.txt"},"message":"gone"}`,
			JSON(File("gone", "a.txt", nil)))
	})

	t.Run("nil error renders empty", func(t *testing.T) {
		assert.Empty(t, JSON(nil))
	})
}

func TestJSON_FallbackWhenPayloadCannotBeEncoded(t *testing.T) {
	orig := marshal
	marshal = func(*Error) ([]byte, error) { return nil, errors.New("encoder down") }
	defer func() { marshal = orig }()

	assert.Equal(t, "Error: search exploded", JSON(Search("search exploded", nil)))
}

func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("keeps structured errors", func(t *testing.T) {
		orig := InvalidConfig("max_depth", "must not be negative")
		wrapped := fmt.Errorf("filter: %w", orig)
		assert.Same(t, orig, Wrap(wrapped))
	})

	t.Run("plain errors become search errors", func(t *testing.T) {
		cause := errors.New("disk on fire")
		e := Wrap(cause)
		assert.Equal(t, KindSearch, e.Kind)
		assert.ErrorIs(t, e, cause)
		assert.ErrorIs(t, e, ErrSearch)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil))
	})
}

func TestIs(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("call failed: %w", InvalidPattern("[", "bad", nil))
	assert.ErrorIs(t, err, ErrInvalidPattern)
	assert.NotErrorIs(t, err, ErrParse)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindInvalidPattern, e.Kind)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	orig := Serialization("Failed to serialize result: x", nil)
	got, err := Decode(JSON(orig))
	require.NoError(t, err)
	assert.Equal(t, orig.Kind, got.Kind)
	assert.Equal(t, orig.Message, got.Message)

	_, err = Decode(`{"type":"Nope","details":{},"message":""}`)
	assert.Error(t, err)

	_, err = Decode("Error: plain")
	assert.Error(t, err)
}
