// Package wordml reads and rewrites WordprocessingML (.docx) documents at
// the paragraph/run formatting level. It deliberately models only the
// capability surface the formatter needs — ordered body paragraphs, run
// text/size/bold, paragraph spacing and first-line indent — and leaves
// every other byte of the package untouched: word/document.xml is spliced
// token by token and all other archive entries are copied verbatim, so a
// rewrite can never lose content it does not understand.
package wordml

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const documentPath = "word/document.xml"

// Run is a contiguous span of text inside a paragraph.
type Run struct {
	Text string
	// Size is the declared w:sz value in half-points, 0 when absent.
	Size int
	Bold bool
}

// Paragraph is one ordered body paragraph. Paragraphs inside tables are
// out of scope and never appear here.
type Paragraph struct {
	Text string
	Runs []Run
	// FirstLine is the raw w:firstLine attribute of w:ind, "" when absent.
	FirstLine string
}

// MaxRunSize returns the largest run size in half-points, 0 with no runs.
func (p *Paragraph) MaxRunSize() int {
	max := 0
	for _, r := range p.Runs {
		if r.Size > max {
			max = r.Size
		}
	}
	return max
}

// IsBold reports whether any run of the paragraph is bold.
func (p *Paragraph) IsBold() bool {
	for _, r := range p.Runs {
		if r.Bold {
			return true
		}
	}
	return false
}

// RunFormat is the character formatting written onto every run of a
// paragraph. A single declaration pair covers both scripts: Word picks
// the East-Asian or western face per character range on its own.
type RunFormat struct {
	SizeHalfPt int
	EastAsia   string
	ASCII      string
}

// ParagraphFormat is the paragraph-level formatting in twentieths of a
// point. FirstLineTwips of 0 clears any existing first-line indent.
type ParagraphFormat struct {
	BeforeTwips    int
	AfterTwips     int
	LineTwips      int
	FirstLineTwips int
}

// Format pairs the run- and paragraph-level targets for one paragraph.
type Format struct {
	Run  RunFormat
	Para ParagraphFormat
}

// Document is a loaded docx held fully in memory. Formatting is recorded
// with SetFormat and applied in one pass when Bytes or Save is called,
// so a failed conversion never produces a partially written file.
type Document struct {
	source  []byte
	docXML  []byte
	paras   []Paragraph
	formats map[int]Format
}

// Open reads a docx from disk.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	doc, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return doc, nil
}

// Load parses a docx from raw bytes.
func Load(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read docx archive: %w", err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == documentPath {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", documentPath, err)
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", documentPath, err)
			}
			break
		}
	}
	if docXML == nil {
		return nil, fmt.Errorf("not a docx: %s missing", documentPath)
	}

	paras, err := scanParagraphs(docXML)
	if err != nil {
		return nil, err
	}

	return &Document{
		source:  data,
		docXML:  docXML,
		paras:   paras,
		formats: make(map[int]Format),
	}, nil
}

// Paragraphs returns the ordered body paragraphs.
func (d *Document) Paragraphs() []Paragraph {
	return d.paras
}

// SetFormat records target formatting for paragraph i, applied on save.
func (d *Document) SetFormat(i int, f Format) {
	d.formats[i] = f
}

// Bytes produces the rewritten docx. With no recorded formats the
// document.xml is still re-emitted through the splicer, which normalizes
// self-closing tags but changes nothing semantically.
func (d *Document) Bytes() ([]byte, error) {
	newXML, err := rewriteDocument(d.docXML, d.formats)
	if err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(d.source), int64(len(d.source)))
	if err != nil {
		return nil, fmt.Errorf("reopen docx archive: %w", err)
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for _, f := range zr.File {
		if f.Name == documentPath {
			w, err := zw.Create(f.Name)
			if err != nil {
				return nil, fmt.Errorf("write %s: %w", f.Name, err)
			}
			if _, err := w.Write(newXML); err != nil {
				return nil, fmt.Errorf("write %s: %w", f.Name, err)
			}
			continue
		}
		fh := f.FileHeader
		w, err := zw.CreateHeader(&fh)
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("copy %s: %w", f.Name, err)
		}
		_, err = io.Copy(w, rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("copy %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize docx archive: %w", err)
	}
	return out.Bytes(), nil
}

// Save writes the rewritten docx to path. The file appears atomically:
// the content goes to a temp file in the target directory first and is
// renamed into place only after a complete write.
func (d *Document) Save(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".thesisfmt-*.docx")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write output: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("save output: %w", err)
	}
	return nil
}
