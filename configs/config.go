// Package configs holds static configuration documents shipped with the binary.
package configs

import (
	_ "embed"
	"fmt"
	"os"
)

//go:embed packages.yaml
var defaultPackages []byte

// PackagesYAML returns the package catalog document. When path is empty the
// embedded default is returned, otherwise the file at path is read.
func PackagesYAML(path string) ([]byte, error) {
	if path == "" {
		return defaultPackages, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading package catalog %s: %w", path, err)
	}
	return data, nil
}
