package util

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

var safeBase = regexp.MustCompile(`^[A-Za-z0-9_-]*$`)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "spaces and parens", in: "report (final).pdf", want: "report__final_.pdf"},
		{name: "no extension", in: "notes", want: "notes"},
		{name: "multiple dots", in: "a.b.c.txt", want: "a_b_c.txt"},
		{name: "unicode base", in: "简历.pdf", want: "__.pdf"},
		{name: "dots in base", in: "my.report v2.pdf", want: "my_report_v2.pdf"},
		{name: "extension untouched", in: "data.tar gz", want: "data.tar gz"},
		{name: "dotfile", in: ".env", want: ".env"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFileName(tt.in); got != tt.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeFileNameOnlySafeCharacters(t *testing.T) {
	got := SanitizeFileName("report (final).pdf")
	if !strings.HasSuffix(got, ".pdf") {
		t.Fatalf("expected .pdf suffix, got %q", got)
	}
	base := strings.TrimSuffix(got, ".pdf")
	if !safeBase.MatchString(base) {
		t.Fatalf("unsafe characters in %q", base)
	}
	if strings.ContainsAny(got, " ()") {
		t.Fatalf("expected no spaces or parentheses, got %q", got)
	}
}

func TestSanitizeFileNameIdempotent(t *testing.T) {
	once := SanitizeFileName("Quarterly Report #3 (draft).docx")
	twice := SanitizeFileName(once)
	if once != twice {
		t.Fatalf("expected sanitize to be idempotent, got %q then %q", once, twice)
	}
}

func TestSanitizeFileNameTruncatesBase(t *testing.T) {
	long := strings.Repeat("a", 250) + ".pdf"
	got := SanitizeFileName(long)
	if got != strings.Repeat("a", MaxBaseNameLength)+".pdf" {
		t.Fatalf("expected base truncated to %d chars, got len %d", MaxBaseNameLength, len(got))
	}
}

func TestStorageKeyUnique(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	a := StorageKey(now, "report.pdf")
	b := StorageKey(now, "report.pdf")
	if a == b {
		t.Fatalf("expected distinct keys for identical names, got %q twice", a)
	}
	if !strings.HasPrefix(a, "1700000000000-") {
		t.Fatalf("expected millisecond prefix, got %q", a)
	}
	if !strings.HasSuffix(a, "_report.pdf") {
		t.Fatalf("expected sanitized name suffix, got %q", a)
	}
}
