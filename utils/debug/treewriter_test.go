package debug

import (
	"strings"
	"testing"
)

func TestTreeWriterLineIndents(t *testing.T) {
	tw := NewTreeWriter()
	tw.Line(0, "root")
	tw.Line(2, "nested %d", 3)

	got := tw.String()
	want := "root\n    nested 3\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTreeWriterTextBlockQuotesValue(t *testing.T) {
	tw := NewTreeWriter()
	tw.TextBlock(1, "label", "a b")

	got := tw.String()
	if !strings.HasPrefix(got, "  label: ") {
		t.Fatalf("expected indented label prefix, got %q", got)
	}
	if !strings.Contains(got, `"a b"`) {
		t.Fatalf("expected quoted value, got %q", got)
	}
}

func TestTreeWriterTextBlockEmptyValue(t *testing.T) {
	tw := NewTreeWriter()
	tw.TextBlock(0, "label", "")

	if got := tw.String(); got != "label: \n" {
		t.Fatalf("got %q", got)
	}
}
