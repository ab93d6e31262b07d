package hints

import (
	"strings"
	"testing"
)

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		paths    []string
		contains string
	}{
		{
			name:     "empty paths",
			paths:    []string{},
			contains: "--config",
		},
		{
			name:     "with user config path",
			paths:    []string{"./foo.yaml", "~/.config/go-md2enex/foo.yaml"},
			contains: "go-md2enex/foo.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			hint := ForConfigNotFound(tt.paths)

			if !strings.Contains(hint, "hint:") {
				t.Error("expected hint prefix")
			}
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("expected hint to contain %q, got %q", tt.contains, hint)
			}
		})
	}
}

func TestForConfigNotFound_IgnoresLocalPaths(t *testing.T) {
	t.Parallel()
	hint := ForConfigNotFound([]string{"export.yaml", "export.yml"})

	if strings.Contains(hint, "or create") {
		t.Errorf("local-only paths should not produce a create suggestion, got %q", hint)
	}
}

func TestForOutputDirectory(t *testing.T) {
	t.Parallel()
	hint := ForOutputDirectory()

	if !strings.Contains(hint, "hint:") {
		t.Error("expected hint prefix")
	}
	if !strings.Contains(hint, "parent directory") {
		t.Error("expected parent directory mention")
	}
}

func TestForNoDocuments(t *testing.T) {
	t.Parallel()
	hint := ForNoDocuments()

	if !strings.Contains(hint, "hint:") {
		t.Error("expected hint prefix")
	}
	if !strings.Contains(hint, "hidden") {
		t.Error("expected mention of skipped hidden directories")
	}
}

func TestForMissingResources(t *testing.T) {
	t.Parallel()
	hint := ForMissingResources()

	if !strings.Contains(hint, "hint:") {
		t.Error("expected hint prefix")
	}
	if !strings.Contains(hint, "--resource-dir") {
		t.Error("expected --resource-dir flag mention")
	}
	if !strings.Contains(hint, "--keep-unknown") {
		t.Error("expected --keep-unknown flag mention")
	}
}

func TestFormat_Consistency(t *testing.T) {
	t.Parallel()
	// All hints should start with newline, spaces, and "hint:"
	hints := []string{
		ForOutputDirectory(),
		ForNoDocuments(),
		ForMissingResources(),
		ForConfigNotFound(nil),
	}

	for _, h := range hints {
		if !strings.HasPrefix(h, "\n  hint: ") {
			t.Errorf("hint format inconsistent: %q", h)
		}
	}
}
