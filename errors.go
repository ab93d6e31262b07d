package md2enex

import "errors"

// Sentinel errors for library operations.
var (
	ErrMissingPath        = errors.New("document path cannot be empty")
	ErrMarkdownConversion = errors.New("markdown conversion failed")
	ErrENMLConversion     = errors.New("ENML conversion failed")
	ErrEnexEncode         = errors.New("ENEX encoding failed")

	// Resource resolution errors.
	ErrResourceNotFound = errors.New("resource not found")
	ErrResourceRead     = errors.New("failed to read resource file")
	ErrResourceTooLarge = errors.New("resource exceeds size limit")

	// Options validation errors.
	ErrInvalidGroupStrategy = errors.New("invalid group strategy")
	ErrInvalidSplitSize     = errors.New("invalid notes-per-file limit")
	ErrInvalidNamePattern   = errors.New("invalid naming pattern")
	ErrInvalidResourceSize  = errors.New("invalid resource size limit")
)
