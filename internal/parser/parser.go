package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// DocumentKind is the tagged variant behind extension dispatch. Every kind
// knows how to load itself into plain text; new formats are added by
// extending the mapping in KindForPath, not by branching at call sites.
type DocumentKind int

const (
	KindText DocumentKind = iota
	KindMarkdown
	KindPDF
)

// UnsupportedFormatError is returned when a document's extension maps to no
// known kind. Ingestion of that document fails; nothing is written.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format: %s (only .txt, .md and .pdf are supported)", filepath.Ext(e.Path))
}

// KindForPath maps a file extension to its document kind.
func KindForPath(path string) (DocumentKind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return KindText, nil
	case ".md":
		return KindMarkdown, nil
	case ".pdf":
		return KindPDF, nil
	default:
		return 0, &UnsupportedFormatError{Path: path}
	}
}

// Document is a source file awaiting ingestion. It is read once at load
// time and not retained afterwards.
type Document struct {
	Path string
	Kind DocumentKind
}

func Open(path string) (*Document, error) {
	kind, err := KindForPath(path)
	if err != nil {
		return nil, err
	}
	return &Document{Path: path, Kind: kind}, nil
}

// Load reads the document and returns its plain-text content.
func (d *Document) Load() (string, error) {
	switch d.Kind {
	case KindText:
		return loadText(d.Path)
	case KindMarkdown:
		return loadMarkdown(d.Path)
	case KindPDF:
		return loadPDF(d.Path)
	default:
		return "", &UnsupportedFormatError{Path: d.Path}
	}
}

func loadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func loadMarkdown(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return markdownToPlainText(data)
}

// loadPDF extracts text page by page and joins pages with a blank line so
// chunk boundaries can still prefer paragraph breaks.
func loadPDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return "", err
	}

	var pages []string
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		if strings.TrimSpace(pageText) != "" {
			pages = append(pages, pageText)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

// markdownToPlainText walks the goldmark AST and collects text segments,
// separating blocks with blank lines.
func markdownToPlainText(src []byte) (string, error) {
	root := goldmark.New().Parser().Parse(gmtext.NewReader(src))

	var sb strings.Builder
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n\n") {
				sb.WriteString("\n\n")
			}
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte('\n')
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				sb.Write(seg.Value(src))
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	return strings.TrimRight(sb.String(), "\n") + "\n", nil
}
