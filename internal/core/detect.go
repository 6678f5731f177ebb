// ABOUTME: Technology detection from well-known project marker files
// ABOUTME: Used when registering a project without explicit technology tags

package core

import (
	"os"
	"path/filepath"
	"sort"
)

// techMarkers maps build/config files to the technology they indicate.
var techMarkers = map[string]string{
	"go.mod":           "go",
	"package.json":     "javascript",
	"tsconfig.json":    "typescript",
	"requirements.txt": "python",
	"pyproject.toml":   "python",
	"Package.swift":    "swift",
	"Cargo.toml":       "rust",
	"pom.xml":          "java",
	"build.gradle":     "java",
	"Gemfile":          "ruby",
}

// DetectTechnologies inspects a project root for known marker files and
// returns the matched technologies, sorted for stable output.
func DetectTechnologies(rootPath string) []string {
	seen := make(map[string]bool)
	for marker, tech := range techMarkers {
		if _, err := os.Stat(filepath.Join(rootPath, marker)); err == nil {
			seen[tech] = true
		}
	}

	technologies := make([]string, 0, len(seen))
	for tech := range seen {
		technologies = append(technologies, tech)
	}
	sort.Strings(technologies)
	return technologies
}
