package grepargs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/memgrep/internal/search"
)

func TestParse(t *testing.T) {
	t.Parallel()

	withOpts := func(mutate func(*search.Options)) search.Options {
		o := search.DefaultOptions()
		mutate(&o)
		return o
	}

	tests := []struct {
		name        string
		args        []string
		wantPattern string
		wantOpts    search.Options
	}{
		{
			name:        "pattern only",
			args:        []string{"main"},
			wantPattern: "main",
			wantOpts:    search.DefaultOptions(),
		},
		{
			name:        "combined short flags after command name",
			args:        []string{"grep", "-iw", "main"},
			wantPattern: "main",
			wantOpts: withOpts(func(o *search.Options) {
				o.CaseInsensitive = true
				o.WordBoundary = true
			}),
		},
		{
			name:        "command name prefix",
			args:        []string{"grep.exe", "-F", "a.b"},
			wantPattern: "a.b",
			wantOpts:    withOpts(func(o *search.Options) { o.FixedStrings = true }),
		},
		{
			name:        "long flags",
			args:        []string{"--ignore-case", "--word-regexp", "--fixed-strings", "--no-line-number", "x"},
			wantPattern: "x",
			wantOpts: withOpts(func(o *search.Options) {
				o.CaseInsensitive = true
				o.WordBoundary = true
				o.FixedStrings = true
				o.LineNumbers = false
			}),
		},
		{
			name:        "line number re-enabled",
			args:        []string{"--no-line-number", "-n", "x"},
			wantPattern: "x",
			wantOpts:    search.DefaultOptions(),
		},
		{
			name:        "unknown long flag becomes pattern",
			args:        []string{"--color", "-i"},
			wantPattern: "--color",
			wantOpts:    withOpts(func(o *search.Options) { o.CaseInsensitive = true }),
		},
		{
			name:        "lone dash sets nothing",
			args:        []string{"-", "x"},
			wantPattern: "x",
			wantOpts:    search.DefaultOptions(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pattern, opts, err := Parse(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPattern, pattern)
			assert.Equal(t, tt.wantOpts, opts)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "no arguments", args: nil, wantMsg: "No arguments provided"},
		{name: "only command name", args: []string{"grep"}, wantMsg: "No pattern provided"},
		{name: "only flags", args: []string{"-i"}, wantMsg: "No pattern provided"},
		{name: "unknown short flag", args: []string{"-iv", "x"}, wantMsg: "Unknown flag: -v"},
		{name: "second positional", args: []string{"a", "b"}, wantMsg: "Unexpected argument: b"},
		{name: "unknown long after pattern", args: []string{"a", "--color"}, wantMsg: "Unexpected argument: --color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.args)
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}

	_, _, err := Parse([]string{})
	assert.ErrorIs(t, err, ErrNoArguments)
}
