package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestKindForPath(t *testing.T) {
	cases := []struct {
		path string
		kind DocumentKind
	}{
		{"notes.txt", KindText},
		{"NOTES.TXT", KindText},
		{"readme.md", KindMarkdown},
		{"report.pdf", KindPDF},
	}
	for _, tc := range cases {
		kind, err := KindForPath(tc.path)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.path, err)
		}
		if kind != tc.kind {
			t.Fatalf("%s: expected kind %d, got %d", tc.path, tc.kind, kind)
		}
	}
}

func TestKindForPathUnsupported(t *testing.T) {
	for _, path := range []string{"report.docx", "sheet.xlsx", "archive.zip", "noext"} {
		_, err := KindForPath(path)
		if err == nil {
			t.Fatalf("%s: expected error", path)
		}
		var ufe *UnsupportedFormatError
		if !errors.As(err, &ufe) {
			t.Fatalf("%s: expected UnsupportedFormatError, got %T", path, err)
		}
	}
}

func TestOpenUnsupportedFormat(t *testing.T) {
	if _, err := Open("report.docx"); err == nil {
		t.Fatal("expected error for .docx")
	}
}

func TestLoadText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fact.txt")
	content := "The secret code is BlueSky.\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	text, err := doc.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if text != content {
		t.Fatalf("expected %q, got %q", content, text)
	}
}

func TestLoadMarkdownStripsFormatting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	md := "# Heading\n\nSome **bold** text and a [link](https://example.com).\n\n```\ncode line\n```\n"
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	text, err := doc.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	for _, want := range []string{"Heading", "bold", "link", "code line"} {
		if !strings.Contains(text, want) {
			t.Fatalf("plain text missing %q: %q", want, text)
		}
	}
	for _, unwanted := range []string{"#", "**", "](", "```"} {
		if strings.Contains(text, unwanted) {
			t.Fatalf("plain text still contains markup %q: %q", unwanted, text)
		}
	}
}
