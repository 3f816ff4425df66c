package search

import (
	"strings"
	"testing"
)

func TestBuildSnippet_WindowsAroundHit(t *testing.T) {
	text := strings.Repeat("alpha beta gamma ", 20) +
		"the needle sits here " +
		strings.Repeat("delta epsilon ", 20)

	snippet := buildSnippet(text, []string{"needle"})
	if !strings.Contains(snippet, "needle") {
		t.Fatalf("expected snippet to contain the hit, got %q", snippet)
	}
	if !strings.HasPrefix(snippet, "...") {
		t.Fatalf("expected leading ellipsis for mid-text window, got %q", snippet)
	}
	if !strings.HasSuffix(snippet, "...") {
		t.Fatalf("expected trailing ellipsis for mid-text window, got %q", snippet)
	}
}

func TestBuildSnippet_NoHitFallsBackToLeadingWindow(t *testing.T) {
	text := strings.Repeat("word ", 60)

	snippet := buildSnippet(text, []string{"zzz"})
	if snippet == "" {
		t.Fatal("expected a leading-window snippet")
	}
	if strings.HasPrefix(snippet, "...") {
		t.Fatalf("expected no leading ellipsis at text start, got %q", snippet)
	}
	if !strings.HasSuffix(snippet, "...") {
		t.Fatalf("expected trailing ellipsis, got %q", snippet)
	}
}

func TestBuildSnippet_ShortTextReturnedWhole(t *testing.T) {
	snippet := buildSnippet("tiny filing note", []string{"tiny"})
	if snippet != "tiny filing note" {
		t.Fatalf("expected the whole text untouched, got %q", snippet)
	}
}

func TestBuildSnippet_EmptyText(t *testing.T) {
	if snippet := buildSnippet("   ", []string{"anything"}); snippet != "" {
		t.Fatalf("expected empty snippet, got %q", snippet)
	}
}

func TestBuildSnippet_MultiByteSafe(t *testing.T) {
	text := strings.Repeat("Überprüfung der Verträge und Unterlagen ", 10)

	snippet := buildSnippet(text, []string{"verträge"})
	if snippet == "" {
		t.Fatal("expected a snippet")
	}
	if !strings.Contains(snippet, "Verträge") {
		t.Fatalf("expected snippet to contain the hit, got %q", snippet)
	}
}
