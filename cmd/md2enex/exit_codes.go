package main

import (
	"errors"
	"os"

	md2enex "github.com/alnah/go-md2enex"
	"github.com/alnah/go-md2enex/internal/config"
	"github.com/alnah/go-md2enex/internal/scanner"
)

// Exit codes for md2enex CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitConvert = 4 // Conversion pipeline errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Conversion pipeline errors (exit 4)
	if errors.Is(err, md2enex.ErrMarkdownConversion) ||
		errors.Is(err, md2enex.ErrENMLConversion) ||
		errors.Is(err, md2enex.ErrEnexEncode) ||
		errors.Is(err, ErrConversionFailed) {
		return ExitConvert
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, scanner.ErrSourceNotFound) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteArchive) ||
		errors.Is(err, ErrCreateOutputDir) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoDocuments) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, scanner.ErrInvalidExtension) ||
		errors.Is(err, md2enex.ErrMissingPath) ||
		errors.Is(err, md2enex.ErrInvalidGroupStrategy) ||
		errors.Is(err, md2enex.ErrInvalidSplitSize) ||
		errors.Is(err, md2enex.ErrInvalidNamePattern) ||
		errors.Is(err, md2enex.ErrInvalidResourceSize) ||
		errors.Is(err, ErrInvalidWorkerCount) {
		return ExitUsage
	}

	return ExitGeneral
}
