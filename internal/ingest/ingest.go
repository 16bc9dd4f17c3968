// Package ingest parses non-docx source files (Markdown, HTML, plain
// text, PDF) into a draft paragraph sequence that the formatter can
// materialize as a fresh docx. Levels known from markup (Markdown/HTML
// headings) are carried through; everything else is left for the text
// classifier to decide.
package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mfeng-dev/thesisfmt/internal/classify"
)

// Draft is a parsed source document awaiting formatting.
type Draft struct {
	Title      string
	Paragraphs []Paragraph
}

// Paragraph is one draft paragraph. Level is meaningful only when Known
// is set; otherwise the classifier assigns one from the text.
type Paragraph struct {
	Text  string
	Level classify.Level
	Known bool
}

// Parser converts raw source bytes into a Draft.
type Parser interface {
	Parse(r io.Reader, filename string) (*Draft, error)
}

// SupportedExtensions lists the importable source formats. CSV has no
// paragraph semantics and is deliberately absent; docx goes through the
// in-place converter instead.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
}

// ForFile returns the parser for a filename.
func ForFile(filename string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(filename))
	}
}

// IsSupportedExtension checks if a file can be imported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// headingLevel maps a markup heading depth onto a document level. The
// first depth-1 heading of a document is taken as its main title;
// everything below depth 3 flattens to Heading3, the deepest level the
// numbering convention distinguishes.
func headingLevel(depth int, seenAny bool) classify.Level {
	switch {
	case depth <= 1 && !seenAny:
		return classify.MainTitle
	case depth <= 1:
		return classify.Heading1
	case depth == 2:
		return classify.Heading2
	default:
		return classify.Heading3
	}
}

// Resolve assigns a level to every paragraph whose markup did not
// declare one. Imported text carries no font size or boldness cues, so
// those default to zero and the numbering rules do the work.
func Resolve(d *Draft) []classify.Level {
	input := make([]classify.Paragraph, len(d.Paragraphs))
	for i, p := range d.Paragraphs {
		input[i] = classify.Paragraph{Text: p.Text}
	}
	sizes := classify.Profile(input)

	levels := make([]classify.Level, len(d.Paragraphs))
	for i, p := range d.Paragraphs {
		if p.Known {
			levels[i] = p.Level
			continue
		}
		levels[i] = classify.Classify(input, sizes, i)
	}
	return levels
}
