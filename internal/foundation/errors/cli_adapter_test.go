package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation error", ValidationError("bad flag").Build(), 2},
		{"config error", ConfigError("bad config").Build(), 7},
		{"manifest error", ManifestError("dump failed").Build(), 8},
		{"generation error", GenerationError("docc failed").Build(), 11},
		{"output error", OutputError("write failed").Build(), 11},
		{"publish error", PublishError("upload failed").Build(), 12},
		{"internal error", InternalError("bug").Build(), 10},
		{"unclassified error", errors.New("unknown error"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	err := GenerationError("documentation generation failed").
		WithContext("target", "Core").
		Build()
	got := adapter.FormatError(err)

	if !strings.Contains(got, "generation") || !strings.Contains(got, "[target Core]") {
		t.Errorf("FormatError() = %q, want stage and target", got)
	}
	if adapter.FormatError(nil) != "" {
		t.Error("expected empty message for nil error")
	}
	if got := adapter.FormatError(errors.New("boom")); got != "Error: boom" {
		t.Errorf("FormatError() = %q", got)
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logs, out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ManifestError("dump-package failed").WithContext("exit_code", 1).Build())

	if code != 8 {
		t.Fatalf("exit code = %d, want 8", code)
	}
	if !strings.Contains(out.String(), "dump-package failed") {
		t.Errorf("stderr output = %q", out.String())
	}
	if !strings.Contains(logs.String(), "exit_code=1") {
		t.Errorf("expected context in log output, got %q", logs.String())
	}
}

func TestCLIErrorAdapter_HandleError_ValidationNotLogged(t *testing.T) {
	var logs, out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ValidationError("unknown access level").WithContext("value", "secret").Build())

	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if !strings.Contains(out.String(), "unknown access level") {
		t.Errorf("stderr output = %q", out.String())
	}
	if logs.Len() != 0 {
		t.Errorf("expected no log output for validation errors, got %q", logs.String())
	}
}
