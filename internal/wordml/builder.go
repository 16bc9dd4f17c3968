package wordml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
)

// NewParagraph describes one paragraph of a document built from scratch,
// with its formatting already decided.
type NewParagraph struct {
	Text   string
	Bold   bool
	Format Format
}

const contentTypesXML = xml.Header +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`</Types>`

const relsXML = xml.Header +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

// BuildDocument assembles a complete minimal docx from formatted
// paragraphs. Each paragraph carries a single run; the result loads
// back through Load, so built documents can be re-checked and
// re-converted like any other.
func BuildDocument(paras []NewParagraph) ([]byte, error) {
	var doc bytes.Buffer
	doc.WriteString(xml.Header)
	doc.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`)
	doc.WriteString(`<w:body>`)

	for _, p := range paras {
		writeBuiltParagraph(&doc, p)
	}

	// A4 page with 2.5cm margins.
	doc.WriteString(`<w:sectPr>` +
		`<w:pgSz w:w="11906" w:h="16838"/>` +
		`<w:pgMar w:top="1418" w:right="1418" w:bottom="1418" w:left="1418"/>` +
		`</w:sectPr>`)

	doc.WriteString(`</w:body></w:document>`)

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	entries := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(relsXML)},
		{documentPath, doc.Bytes()},
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", e.name, err)
		}
		if _, err := w.Write(e.data); err != nil {
			return nil, fmt.Errorf("write %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize docx archive: %w", err)
	}
	return out.Bytes(), nil
}

func writeBuiltParagraph(buf *bytes.Buffer, p NewParagraph) {
	pf := p.Format.Para
	rf := p.Format.Run

	buf.WriteString(`<w:p><w:pPr>`)
	spacing := []xml.Attr{
		wAttr("before", strconv.Itoa(pf.BeforeTwips)),
		wAttr("after", strconv.Itoa(pf.AfterTwips)),
		wAttr("line", strconv.Itoa(pf.LineTwips)),
		wAttr("lineRule", "auto"),
	}
	writeEmpty(buf, "w:spacing", spacing)
	if pf.FirstLineTwips > 0 {
		writeEmpty(buf, "w:ind", []xml.Attr{
			wAttr("firstLine", strconv.Itoa(pf.FirstLineTwips)),
		})
	}
	buf.WriteString(`</w:pPr>`)

	buf.WriteString(`<w:r><w:rPr>`)
	writeEmpty(buf, "w:rFonts", []xml.Attr{
		wAttr("ascii", rf.ASCII),
		wAttr("hAnsi", rf.ASCII),
		wAttr("eastAsia", rf.EastAsia),
		wAttr("cs", rf.ASCII),
	})
	if p.Bold {
		writeEmpty(buf, "w:b", nil)
	}
	writeEmpty(buf, "w:sz", []xml.Attr{wAttr("val", strconv.Itoa(rf.SizeHalfPt))})
	writeEmpty(buf, "w:szCs", []xml.Attr{wAttr("val", strconv.Itoa(rf.SizeHalfPt))})
	buf.WriteString(`</w:rPr>`)

	writeStart(buf, "w:t", []xml.Attr{{
		Name:  xml.Name{Space: "xml", Local: "space"},
		Value: "preserve",
	}})
	xml.EscapeText(buf, []byte(p.Text))
	writeEnd(buf, "w:t")
	buf.WriteString(`</w:r></w:p>`)
}
