// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"
)

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	// Find a user config path (contains go-md2enex) to suggest
	for _, p := range searchedPaths {
		if strings.Contains(p, "go-md2enex") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForNoDocuments returns hints when a scan finds no markdown files.
func ForNoDocuments() string {
	return format("check the source path; hidden directories and resource folders are skipped")
}

// ForMissingResources returns hints when notes reference attachments that
// could not be resolved.
func ForMissingResources() string {
	return formatHints([]string{
		"verify --resource-dir matches the vault's attachment folder",
		"unresolved references keep a placeholder image unless --keep-unknown=false",
	})
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
