package wordml

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// zipDocx wraps a raw word/document.xml payload in a minimal archive,
// together with a marker entry to prove untouched parts survive rewrites.
func zipDocx(t *testing.T, docXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range []struct{ name, data string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/marker.xml", "<marker/>"},
		{documentPath, docXML},
	} {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(e.data)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

const docHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
const docFooter = `</w:body></w:document>`

func TestLoadScansParagraphs(t *testing.T) {
	docXML := docHeader +
		`<w:p><w:pPr><w:ind w:firstLine="400"/></w:pPr>` +
		`<w:r><w:rPr><w:sz w:val="44"/><w:b/></w:rPr><w:t>第一章 绪论</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>这是正文，</w:t></w:r><w:r><w:rPr><w:sz w:val="24"/></w:rPr><w:t>分两个片段。</w:t></w:r></w:p>` +
		docFooter

	doc, err := Load(zipDocx(t, docXML))
	if err != nil {
		t.Fatal(err)
	}

	paras := doc.Paragraphs()
	if len(paras) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(paras))
	}

	if paras[0].Text != "第一章 绪论" {
		t.Errorf("para 0 text = %q", paras[0].Text)
	}
	if !paras[0].IsBold() {
		t.Error("para 0 should be bold")
	}
	if paras[0].MaxRunSize() != 44 {
		t.Errorf("para 0 max size = %d, want 44", paras[0].MaxRunSize())
	}
	if paras[0].FirstLine != "400" {
		t.Errorf("para 0 firstLine = %q, want 400", paras[0].FirstLine)
	}

	if paras[1].Text != "这是正文，分两个片段。" {
		t.Errorf("para 1 text = %q", paras[1].Text)
	}
	if len(paras[1].Runs) != 2 {
		t.Fatalf("para 1 has %d runs, want 2", len(paras[1].Runs))
	}
	if paras[1].Runs[0].Size != 0 || paras[1].Runs[1].Size != 24 {
		t.Errorf("para 1 run sizes = %d,%d", paras[1].Runs[0].Size, paras[1].Runs[1].Size)
	}
	if paras[1].IsBold() {
		t.Error("para 1 should not be bold")
	}
}

func TestLoadSkipsTableParagraphs(t *testing.T) {
	docXML := docHeader +
		`<w:p><w:r><w:t>表格前</w:t></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>单元格内容</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
		`<w:p><w:r><w:t>表格后</w:t></w:r></w:p>` +
		docFooter

	doc, err := Load(zipDocx(t, docXML))
	if err != nil {
		t.Fatal(err)
	}
	paras := doc.Paragraphs()
	if len(paras) != 2 {
		t.Fatalf("got %d paragraphs, want 2 (table cell excluded)", len(paras))
	}
	if paras[0].Text != "表格前" || paras[1].Text != "表格后" {
		t.Errorf("texts = %q, %q", paras[0].Text, paras[1].Text)
	}
}

func TestLoadNotDocx(t *testing.T) {
	if _, err := Load([]byte("not a zip")); err == nil {
		t.Fatal("expected error for non-zip input")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("other.txt")
	w.Write([]byte("hi"))
	zw.Close()
	if _, err := Load(buf.Bytes()); err == nil {
		t.Fatal("expected error for zip without document.xml")
	}
}

func TestRewriteOverridesExistingProperties(t *testing.T) {
	docXML := docHeader +
		`<w:p><w:pPr><w:spacing w:before="100" w:after="100" w:line="480" w:lineRule="auto"/><w:ind w:left="200" w:firstLine="999"/></w:pPr>` +
		`<w:r><w:rPr><w:rFonts w:ascii="Arial" w:eastAsia="黑体"/><w:sz w:val="28"/><w:szCs w:val="28"/></w:rPr><w:t>正文段落内容</w:t></w:r></w:p>` +
		docFooter

	doc, err := Load(zipDocx(t, docXML))
	if err != nil {
		t.Fatal(err)
	}

	doc.SetFormat(0, Format{
		Run:  RunFormat{SizeHalfPt: 21, EastAsia: "宋体", ASCII: "Times New Roman"},
		Para: ParagraphFormat{BeforeTwips: 0, AfterTwips: 0, LineTwips: 360, FirstLineTwips: 420},
	})

	out, err := doc.Bytes()
	if err != nil {
		t.Fatal(err)
	}

	doc2, err := Load(out)
	if err != nil {
		t.Fatalf("rewritten document does not load: %v", err)
	}
	paras := doc2.Paragraphs()
	if len(paras) != 1 {
		t.Fatalf("got %d paragraphs, want 1", len(paras))
	}
	if paras[0].Text != "正文段落内容" {
		t.Errorf("text = %q", paras[0].Text)
	}
	if got := paras[0].Runs[0].Size; got != 21 {
		t.Errorf("run size = %d, want 21", got)
	}
	if paras[0].FirstLine != "420" {
		t.Errorf("firstLine = %q, want 420", paras[0].FirstLine)
	}

	xmlOut := extractDocumentXML(t, out)
	for _, want := range []string{
		`w:line="360"`, `w:eastAsia="宋体"`, `w:ascii="Times New Roman"`,
		`w:left="200"`, // unmanaged indent attribute survives
	} {
		if !strings.Contains(xmlOut, want) {
			t.Errorf("rewritten xml missing %s", want)
		}
	}
	if strings.Contains(xmlOut, `w:firstLine="999"`) {
		t.Error("old firstLine value still present")
	}
}

func TestRewriteInjectsMissingProperties(t *testing.T) {
	docXML := docHeader +
		`<w:p><w:r><w:t>没有任何属性的段落</w:t></w:r></w:p>` +
		docFooter

	doc, err := Load(zipDocx(t, docXML))
	if err != nil {
		t.Fatal(err)
	}
	doc.SetFormat(0, Format{
		Run:  RunFormat{SizeHalfPt: 24, EastAsia: "宋体", ASCII: "Times New Roman"},
		Para: ParagraphFormat{LineTwips: 240},
	})

	out, err := doc.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	doc2, err := Load(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := doc2.Paragraphs()[0].Runs[0].Size; got != 24 {
		t.Errorf("injected run size = %d, want 24", got)
	}

	xmlOut := extractDocumentXML(t, out)
	if !strings.Contains(xmlOut, `<w:pPr>`) || !strings.Contains(xmlOut, `<w:rPr>`) {
		t.Error("property containers were not injected")
	}
	if strings.Contains(xmlOut, `<w:ind`) {
		t.Error("indent injected although FirstLineTwips is 0")
	}
}

func TestRewritePreservesOtherEntries(t *testing.T) {
	docXML := docHeader + `<w:p><w:r><w:t>内容</w:t></w:r></w:p>` + docFooter
	doc, err := Load(zipDocx(t, docXML))
	if err != nil {
		t.Fatal(err)
	}
	out, err := doc.Bytes()
	if err != nil {
		t.Fatal(err)
	}

	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range zr.File {
		if f.Name == "word/marker.xml" {
			found = true
		}
	}
	if !found {
		t.Error("unrelated archive entry was dropped")
	}
}

func TestRewriteLeavesTableParagraphsAlone(t *testing.T) {
	docXML := docHeader +
		`<w:p><w:r><w:rPr><w:sz w:val="28"/></w:rPr><w:t>正文</w:t></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:rPr><w:sz w:val="18"/></w:rPr><w:t>单元格</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
		docFooter

	doc, err := Load(zipDocx(t, docXML))
	if err != nil {
		t.Fatal(err)
	}
	doc.SetFormat(0, Format{
		Run:  RunFormat{SizeHalfPt: 21, EastAsia: "宋体", ASCII: "Times New Roman"},
		Para: ParagraphFormat{LineTwips: 360},
	})
	out, err := doc.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(extractDocumentXML(t, out), `w:val="18"`) {
		t.Error("table cell run size was modified")
	}
}

func TestBuildDocumentRoundTrip(t *testing.T) {
	paras := []NewParagraph{
		{
			Text: "论文标题",
			Bold: true,
			Format: Format{
				Run:  RunFormat{SizeHalfPt: 32, EastAsia: "宋体", ASCII: "Times New Roman"},
				Para: ParagraphFormat{BeforeTwips: 480, AfterTwips: 240, LineTwips: 240},
			},
		},
		{
			Text: "正文第一段。",
			Format: Format{
				Run:  RunFormat{SizeHalfPt: 21, EastAsia: "宋体", ASCII: "Times New Roman"},
				Para: ParagraphFormat{LineTwips: 360, FirstLineTwips: 420},
			},
		},
	}

	data, err := BuildDocument(paras)
	if err != nil {
		t.Fatal(err)
	}

	doc, err := Load(data)
	if err != nil {
		t.Fatalf("built document does not load: %v", err)
	}
	got := doc.Paragraphs()
	if len(got) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(got))
	}
	if got[0].Text != "论文标题" || !got[0].IsBold() || got[0].MaxRunSize() != 32 {
		t.Errorf("para 0 = %+v", got[0])
	}
	if got[1].Text != "正文第一段。" || got[1].IsBold() {
		t.Errorf("para 1 = %+v", got[1])
	}
	if got[1].FirstLine != "420" {
		t.Errorf("para 1 firstLine = %q, want 420", got[1].FirstLine)
	}
}

// extractDocumentXML pulls word/document.xml back out of a docx.
func extractDocumentXML(t *testing.T, data []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range zr.File {
		if f.Name == documentPath {
			rc, err := f.Open()
			if err != nil {
				t.Fatal(err)
			}
			defer rc.Close()
			var buf bytes.Buffer
			if _, err := buf.ReadFrom(rc); err != nil {
				t.Fatal(err)
			}
			return buf.String()
		}
	}
	t.Fatalf("%s not found", documentPath)
	return ""
}

func TestSaveAtomic(t *testing.T) {
	docXML := docHeader + `<w:p><w:r><w:t>内容</w:t></w:r></w:p>` + docFooter
	doc, err := Load(zipDocx(t, docXML))
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	out := filepath.Join(dir, "out.docx")
	if err := doc.Save(out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Load(data); err != nil {
		t.Fatalf("saved file does not load: %v", err)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the output file, found %d entries", len(entries))
	}
}
