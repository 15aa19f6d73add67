// Package grepargs turns a grep-style argument vector into a pattern and
// search options.
package grepargs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mvp-joe/memgrep/internal/search"
)

var (
	ErrNoArguments = errors.New("No arguments provided")
	ErrNoPattern   = errors.New("No pattern provided")
)

// Parse reads args the way a minimal grep would. A leading token starting
// with "grep" is treated as the command name. Short flags may be combined
// ("-iw"). An unrecognised long flag is taken as the pattern when no pattern
// has been seen yet.
func Parse(args []string) (string, search.Options, error) {
	opts := search.DefaultOptions()
	if len(args) == 0 {
		return "", opts, ErrNoArguments
	}

	if strings.HasPrefix(args[0], "grep") {
		args = args[1:]
	}

	var (
		pattern    string
		hasPattern bool
	)
	takePattern := func(arg string) error {
		if hasPattern {
			return fmt.Errorf("Unexpected argument: %s", arg)
		}
		pattern, hasPattern = arg, true
		return nil
	}

	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "--"):
			switch arg {
			case "--ignore-case":
				opts.CaseInsensitive = true
			case "--word-regexp":
				opts.WordBoundary = true
			case "--fixed-strings":
				opts.FixedStrings = true
			case "--line-number":
				opts.LineNumbers = true
			case "--no-line-number":
				opts.LineNumbers = false
			default:
				if err := takePattern(arg); err != nil {
					return "", opts, err
				}
			}
		case strings.HasPrefix(arg, "-"):
			for _, flag := range arg[1:] {
				switch flag {
				case 'i':
					opts.CaseInsensitive = true
				case 'w':
					opts.WordBoundary = true
				case 'F':
					opts.FixedStrings = true
				case 'n':
					opts.LineNumbers = true
				default:
					return "", opts, fmt.Errorf("Unknown flag: -%c", flag)
				}
			}
		default:
			if err := takePattern(arg); err != nil {
				return "", opts, err
			}
		}
	}

	if !hasPattern {
		return "", opts, ErrNoPattern
	}
	return pattern, opts, nil
}
