package api

import "context"

var defaultService = NewService()

// Search runs Service.Search on a default Service.
func Search(pattern, filesJSON, optionsJSON string) (string, error) {
	return defaultService.Search(context.Background(), pattern, filesJSON, optionsJSON)
}

// SearchDirectory runs Service.SearchDirectory on a default Service.
func SearchDirectory(pattern, configJSON, filesJSON, optionsJSON string) (string, error) {
	return defaultService.SearchDirectory(context.Background(), pattern, configJSON, filesJSON, optionsJSON)
}

// FilterDirectoryFiles runs Service.FilterDirectoryFiles on a default Service.
func FilterDirectoryFiles(configJSON, pathsJSON string) (string, error) {
	return defaultService.FilterDirectoryFiles(context.Background(), configJSON, pathsJSON)
}

// Grep runs Service.Grep on a default Service.
func Grep(pattern, filesJSON, optionsJSON string) (string, error) {
	return defaultService.Grep(context.Background(), pattern, filesJSON, optionsJSON)
}

// GrepCmd runs Service.GrepCmd on a default Service.
func GrepCmd(argsJSON, filesJSON string) (string, error) {
	return defaultService.GrepCmd(context.Background(), argsJSON, filesJSON)
}
