package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-123")
	ctx = logg.WithUserID(ctx, "user-9")
	logg.Info(ctx, "hola")

	out := buf.String()
	for _, want := range []string{"req-123", "user-9", "hola", `"service":"test"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got %s", want, out)
		}
	}
}

func TestErrorIncludesStack(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf})

	logg.Error(context.Background(), "fallo", errors.New("boom"))

	out := buf.String()
	if !strings.Contains(out, "boom") {
		t.Fatalf("expected error message, got %s", out)
	}
	if !strings.Contains(out, "stack") {
		t.Fatalf("expected stack field, got %s", out)
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if lvl := ParseLevel("nonsense"); lvl.String() != "info" {
		t.Fatalf("expected info fallback, got %s", lvl)
	}
	if lvl := ParseLevel("debug"); lvl.String() != "debug" {
		t.Fatalf("expected debug, got %s", lvl)
	}
}
