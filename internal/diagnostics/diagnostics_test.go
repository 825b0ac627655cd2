package diagnostics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sourcelang/corec/internal/token"
)

func TestCompileErrorFormatsLocation(t *testing.T) {
	err := New(StageTypeCheck, token.SourceLocation{File: "a.src", Line: 3, Column: 5}, "bad type %s", "i9")
	if !strings.Contains(err.Error(), "a.src:3:5") {
		t.Fatalf("expected location in error, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "bad type i9") {
		t.Fatalf("expected formatted message, got %q", err.Error())
	}
}

func TestInternalErrorPrefixed(t *testing.T) {
	err := Internal(StageAnalyze, "did not converge")
	if !strings.HasPrefix(err.Message, "internal error:") {
		t.Fatalf("expected internal error prefix, got %q", err.Message)
	}
}

func TestPrintPlainToBuffer(t *testing.T) {
	var buf bytes.Buffer
	err := New(StageResolve, token.SourceLocation{Line: 1, Column: 1}, "oops")
	Print(&buf, err)
	if !strings.Contains(buf.String(), "oops") {
		t.Fatalf("expected message in output, got %q", buf.String())
	}
	// A bytes.Buffer is never a terminal, so no ANSI codes should appear.
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatal("non-terminal writer must not receive ANSI color codes")
	}
}
