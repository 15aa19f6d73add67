package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mvp-joe/memgrep/internal/apierror"
	"github.com/mvp-joe/memgrep/internal/filter"
	"github.com/mvp-joe/memgrep/internal/search"
)

func decodeFiles(filesJSON string) ([]search.FileEntry, error) {
	var files []search.FileEntry
	if err := json.Unmarshal([]byte(filesJSON), &files); err != nil {
		return nil, apierror.Parse("Failed to parse files: "+err.Error(), filesJSON, err)
	}
	return files, nil
}

// decodeOptions treats an empty or null payload as "use the defaults".
func decodeOptions(optionsJSON string) (search.Options, error) {
	trimmed := strings.TrimSpace(optionsJSON)
	if trimmed == "" || trimmed == "null" {
		return search.DefaultOptions(), nil
	}
	var opts search.Options
	if err := json.Unmarshal([]byte(optionsJSON), &opts); err != nil {
		return opts, apierror.Parse("Failed to parse options: "+err.Error(), optionsJSON, err)
	}
	return opts, nil
}

func decodeConfig(configJSON string) (filter.Config, error) {
	var cfg filter.Config
	if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
		return cfg, apierror.Parse("Failed to parse config: "+err.Error(), configJSON, err)
	}
	if cfg.MaxDepth != nil && *cfg.MaxDepth < 0 {
		msg := fmt.Sprintf("Failed to parse config: invalid value: integer `%d`, expected usize for field `max_depth`", *cfg.MaxDepth)
		return cfg, apierror.Parse(msg, configJSON, nil)
	}
	return cfg, nil
}

func decodePaths(pathsJSON string) ([]string, error) {
	var paths []string
	if err := json.Unmarshal([]byte(pathsJSON), &paths); err != nil {
		return nil, apierror.Parse("Failed to parse file paths: "+err.Error(), pathsJSON, err)
	}
	return paths, nil
}

func decodeArgs(argsJSON string) ([]string, error) {
	var args []string
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return nil, apierror.Parse("Failed to parse arguments: "+err.Error(), argsJSON, err)
	}
	return args, nil
}

var marshal = json.Marshal

func encodeResult(result *search.Result) (string, error) {
	data, err := marshal(result)
	if err != nil {
		return "", apierror.Serialization("Failed to serialize result: "+err.Error(), err)
	}
	return string(data), nil
}

func encodePaths(paths []string) (string, error) {
	if paths == nil {
		paths = []string{}
	}
	data, err := marshal(paths)
	if err != nil {
		return "", apierror.Serialization("Failed to serialize file paths: "+err.Error(), err)
	}
	return string(data), nil
}

func encodeEntries(entries []filter.FilePathEntry) (string, error) {
	if entries == nil {
		entries = []filter.FilePathEntry{}
	}
	data, err := marshal(entries)
	if err != nil {
		return "", apierror.Serialization("Failed to serialize entries: "+err.Error(), err)
	}
	return string(data), nil
}

// fromSearchError maps engine failures onto the boundary error kinds.
func fromSearchError(err error) error {
	var pe *search.PatternError
	if errors.As(err, &pe) {
		return apierror.InvalidPattern(pe.Pattern, pe.Error(), err)
	}
	return apierror.Search(err.Error(), err)
}

func fromBuildError(err error) error {
	var be *filter.BuildError
	if errors.As(err, &be) {
		return apierror.InvalidConfig(be.Stage, be.Error())
	}
	return apierror.Wrap(err)
}
